package discovery

import "reflect"

// Contracts
type IFoo interface{ Foo() string }
type IBar interface{ Bar() string }
type IBarExtra interface{ Extra() string }
type IQux interface{ Qux() string }

// FooImpl implements only IFoo.
type FooImpl struct{ name string }

func (f *FooImpl) Foo() string { return "foo" + f.name }

// BarImpl implements IBar and IBarExtra.
type BarImpl struct{}

func (*BarImpl) Bar() string   { return "bar" }
func (*BarImpl) Extra() string { return "extra" }

// BazImpl implements none of the contracts.
type BazImpl struct{}

func (*BazImpl) Baz() string { return "baz" }

// notAnInterface is a named non-interface type used as a bogus contract.
type notAnInterface struct{}

type fooSingleton struct{}

func (*fooSingleton) Foo() string { return "singleton" }

type fooTransient struct{}

func (*fooTransient) Foo() string { return "transient" }

type plainStruct struct{}

func (*plainStruct) Foo() string { return "plain" }

type taggedFoo struct {
	Marker `gofac:"contract=discovery.IFoo,lifetime=singleton"`
}

func (*taggedFoo) Foo() string { return "tagged" }

type taggedInferred struct {
	Marker
	hits int
}

func (t *taggedInferred) Qux() string {
	t.hits++
	return "qux"
}

type taggedBadLifetime struct {
	Marker `gofac:"lifetime=forever"`
}

type taggedUnknownKey struct {
	Marker `gofac:"scope=request"`
}

type taggedUnknownContract struct {
	Marker `gofac:"contract=nope.Missing"`
}

func (*taggedUnknownContract) Foo() string { return "unknown" }

func newFooImpl() *FooImpl { return &FooImpl{name: "-ctor"} }

var (
	tIFoo      = reflect.TypeOf((*IFoo)(nil)).Elem()
	tIBar      = reflect.TypeOf((*IBar)(nil)).Elem()
	tIBarExtra = reflect.TypeOf((*IBarExtra)(nil)).Elem()
	tIQux      = reflect.TypeOf((*IQux)(nil)).Elem()
	tFooImpl   = reflect.TypeOf((*FooImpl)(nil))
	tBarImpl   = reflect.TypeOf((*BarImpl)(nil))
	tBazImpl   = reflect.TypeOf((*BazImpl)(nil))
)

// sliceSource is a Source over fixed slices; it does not deduplicate.
type sliceSource struct {
	candidates []Candidate
	contracts  []reflect.Type
}

func (s sliceSource) Candidates() []Candidate   { return s.candidates }
func (s sliceSource) Contracts() []reflect.Type { return s.contracts }

func marked(t reflect.Type, opts ...Option) Candidate {
	svc := NewService(opts...)
	return Candidate{Type: t, Marker: &svc}
}

func allContracts() []reflect.Type {
	return []reflect.Type{tIFoo, tIBar, tIBarExtra, tIQux}
}
