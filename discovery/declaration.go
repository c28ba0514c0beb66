package discovery

import (
	"fmt"
	"iter"
	"reflect"

	"github.com/Ngone6325/gofac/v2"
)

// ServiceDeclaration binds one implementation to its contract. It is
// immutable; build it through discovery only.
type ServiceDeclaration struct {
	contract       reflect.Type
	implementation reflect.Type
	lifetime       gofac.Lifetime
	constructor    any
}

// Contract is the interface the implementation is resolved through.
func (d ServiceDeclaration) Contract() reflect.Type { return d.contract }

// Implementation is the concrete type to instantiate.
func (d ServiceDeclaration) Implementation() reflect.Type { return d.implementation }

// Lifetime is the caching policy the container applies.
func (d ServiceDeclaration) Lifetime() gofac.Lifetime { return d.lifetime }

// Constructor is the declared constructor, or nil.
func (d ServiceDeclaration) Constructor() any { return d.constructor }

func (d ServiceDeclaration) String() string {
	return fmt.Sprintf("%s <= %s as %s", d.contract, d.implementation, d.lifetime)
}

// Equal compares contract, implementation, lifetime and constructor identity.
// Constructors compare by code pointer: two closures from the same function
// literal are equal even when they capture different values.
func (d ServiceDeclaration) Equal(o ServiceDeclaration) bool {
	if d.contract != o.contract || d.implementation != o.implementation || d.lifetime != o.lifetime {
		return false
	}
	if (d.constructor == nil) != (o.constructor == nil) {
		return false
	}
	if d.constructor == nil {
		return true
	}
	return reflect.ValueOf(d.constructor).Pointer() == reflect.ValueOf(o.constructor).Pointer()
}

// RegistrationPlan is the ordered result of a discovery pass. Order follows
// the source; no implementation appears twice.
type RegistrationPlan struct {
	decls []ServiceDeclaration
}

// Len returns the number of declarations.
func (p RegistrationPlan) Len() int { return len(p.decls) }

// At returns the i-th declaration.
func (p RegistrationPlan) At(i int) ServiceDeclaration { return p.decls[i] }

// All iterates declarations with their index.
func (p RegistrationPlan) All() iter.Seq2[int, ServiceDeclaration] {
	return func(yield func(int, ServiceDeclaration) bool) {
		for i, d := range p.decls {
			if !yield(i, d) {
				return
			}
		}
	}
}

// Declarations returns a copy of the declarations.
func (p RegistrationPlan) Declarations() []ServiceDeclaration {
	out := make([]ServiceDeclaration, len(p.decls))
	copy(out, p.decls)
	return out
}

// Lookup finds the declaration of implementation.
func (p RegistrationPlan) Lookup(implementation reflect.Type) (ServiceDeclaration, bool) {
	for _, d := range p.decls {
		if d.implementation == implementation {
			return d, true
		}
	}
	return ServiceDeclaration{}, false
}

// Equal reports element-wise equality.
func (p RegistrationPlan) Equal(o RegistrationPlan) bool {
	if len(p.decls) != len(o.decls) {
		return false
	}
	for i := range p.decls {
		if !p.decls[i].Equal(o.decls[i]) {
			return false
		}
	}
	return true
}
