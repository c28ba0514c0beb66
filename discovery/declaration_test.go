package discovery

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Ngone6325/gofac/v2"
)

func TestServiceDeclaration_String(t *testing.T) {
	d := ServiceDeclaration{contract: tIFoo, implementation: tFooImpl, lifetime: gofac.Singleton}
	require.Equal(t, "discovery.IFoo <= *discovery.FooImpl as singleton", d.String())
}

func TestServiceDeclaration_Equal(t *testing.T) {
	base := ServiceDeclaration{contract: tIFoo, implementation: tFooImpl, lifetime: gofac.Scoped}
	require.True(t, base.Equal(base))

	withCtor := base
	withCtor.constructor = newFooImpl
	require.False(t, base.Equal(withCtor))
	require.True(t, withCtor.Equal(ServiceDeclaration{contract: tIFoo, implementation: tFooImpl, lifetime: gofac.Scoped, constructor: newFooImpl}))

	other := base
	other.lifetime = gofac.Transient
	require.False(t, base.Equal(other))
}

func TestRegistrationPlan(t *testing.T) {
	a := ServiceDeclaration{contract: tIFoo, implementation: tFooImpl, lifetime: gofac.Scoped}
	b := ServiceDeclaration{contract: tIBar, implementation: tBarImpl, lifetime: gofac.Transient}
	p := RegistrationPlan{decls: []ServiceDeclaration{a, b}}

	require.Equal(t, 2, p.Len())
	require.Equal(t, b, p.At(1))

	got, ok := p.Lookup(tBarImpl)
	require.True(t, ok)
	require.Equal(t, b, got)
	_, ok = p.Lookup(reflect.TypeOf(0))
	require.False(t, ok)

	decls := p.Declarations()
	decls[0] = b
	require.Equal(t, a, p.At(0), "Declarations returns a copy")

	var seen []reflect.Type
	for _, d := range p.All() {
		seen = append(seen, d.Implementation())
		break
	}
	require.Equal(t, []reflect.Type{tFooImpl}, seen)

	require.True(t, p.Equal(RegistrationPlan{decls: []ServiceDeclaration{a, b}}))
	require.False(t, p.Equal(RegistrationPlan{decls: []ServiceDeclaration{b, a}}))
	require.False(t, p.Equal(RegistrationPlan{}))
}

func TestServiceDeclaration_EqualClosures(t *testing.T) {
	ctorFor := func(name string) func() *FooImpl {
		return func() *FooImpl { return &FooImpl{name: name} }
	}
	a := ServiceDeclaration{contract: tIFoo, implementation: tFooImpl, lifetime: gofac.Scoped, constructor: ctorFor("a")}
	b := ServiceDeclaration{contract: tIFoo, implementation: tFooImpl, lifetime: gofac.Scoped, constructor: ctorFor("b")}

	require.True(t, a.Equal(b), "constructors compare by code, not captured state")
	require.False(t, a.Equal(ServiceDeclaration{contract: tIFoo, implementation: tFooImpl, lifetime: gofac.Scoped, constructor: newFooImpl}))
}
