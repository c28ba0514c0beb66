package discovery

import (
	"fmt"
	"reflect"

	"github.com/Ngone6325/gofac/v2"
)

// ContractSet is a deduplicated, ordered contract universe with a name index.
type ContractSet struct {
	types  []reflect.Type
	byName map[string][]reflect.Type
}

// NewContractSet indexes types by both their short ("pkg.Name") and fully
// qualified ("path/to/pkg.Name") names. Duplicates are dropped. A short name
// shared by contracts of different packages stays indexed under all of them.
func NewContractSet(types []reflect.Type) *ContractSet {
	cs := &ContractSet{byName: make(map[string][]reflect.Type)}
	seen := make(map[reflect.Type]struct{}, len(types))
	for _, t := range types {
		if t == nil {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		cs.types = append(cs.types, t)
		cs.index(typeName(t), t)
		cs.index(t.String(), t)
	}
	return cs
}

func (cs *ContractSet) index(name string, t reflect.Type) {
	for _, have := range cs.byName[name] {
		if have == t {
			return
		}
	}
	cs.byName[name] = append(cs.byName[name], t)
}

// Lookup resolves a contract name. Unknown and ambiguous names report false.
func (cs *ContractSet) Lookup(name string) (reflect.Type, bool) {
	if ts := cs.byName[name]; len(ts) == 1 {
		return ts[0], true
	}
	return nil, false
}

// Named lists every contract name may refer to, in set order.
func (cs *ContractSet) Named(name string) []reflect.Type {
	return append([]reflect.Type(nil), cs.byName[name]...)
}

// ImplementedBy lists the interface contracts t implements, in set order.
func (cs *ContractSet) ImplementedBy(t reflect.Type) []reflect.Type {
	var found []reflect.Type
	for _, c := range cs.types {
		if c.Kind() == reflect.Interface && t.Implements(c) {
			found = append(found, c)
		}
	}
	return found
}

// ResolveContract decides the contract of t and builds its declaration.
// An explicit contract must be an interface that t implements; otherwise
// exactly one contract of the set must be implemented. Unset lifetimes take
// defaultLifetime.
func ResolveContract(t reflect.Type, raw RawMetadata, contracts *ContractSet, defaultLifetime gofac.Lifetime) (ServiceDeclaration, error) {
	lifetime := raw.Lifetime
	if lifetime == gofac.LifetimeUnset {
		lifetime = defaultLifetime
	}
	if !lifetime.Valid() {
		return ServiceDeclaration{}, &InvalidMarkerError{Type: t, Reason: fmt.Sprintf("lifetime %s", lifetime)}
	}

	var contract reflect.Type
	if raw.HasExplicit() {
		c, err := explicitContract(t, raw, contracts)
		if err != nil {
			return ServiceDeclaration{}, err
		}
		contract = c
	} else {
		found := contracts.ImplementedBy(t)
		if len(found) != 1 {
			return ServiceDeclaration{}, &AmbiguousContractError{Type: t, Found: found}
		}
		contract = found[0]
	}

	if raw.Constructor != nil {
		if err := checkConstructor(t, raw.Constructor); err != nil {
			return ServiceDeclaration{}, err
		}
	}

	return ServiceDeclaration{
		contract:       contract,
		implementation: t,
		lifetime:       lifetime,
		constructor:    raw.Constructor,
	}, nil
}

func explicitContract(t reflect.Type, raw RawMetadata, contracts *ContractSet) (reflect.Type, error) {
	contract := raw.Explicit
	if contract == nil {
		switch found := contracts.Named(raw.ExplicitName); len(found) {
		case 0:
			return nil, &InvalidContractError{Type: t, ContractName: raw.ExplicitName, Reason: "which is not a known contract"}
		case 1:
			contract = found[0]
		default:
			return nil, &InvalidContractError{Type: t, ContractName: raw.ExplicitName, Candidates: found,
				Reason: "which is ambiguous, use the fully qualified name"}
		}
	}
	if contract.Kind() != reflect.Interface {
		return nil, &InvalidContractError{Type: t, Contract: contract, Reason: "which is not an interface"}
	}
	if !t.Implements(contract) {
		return nil, &InvalidContractError{Type: t, Contract: contract, Reason: "but does not implement it"}
	}
	return contract, nil
}

func checkConstructor(t reflect.Type, ctor any) error {
	ct := reflect.TypeOf(ctor)
	if ct.Kind() != reflect.Func {
		return &InvalidConstructorError{Type: t, Constructor: ct, Reason: "not a function"}
	}
	if reflect.ValueOf(ctor).IsNil() {
		return &InvalidConstructorError{Type: t, Constructor: ct, Reason: "nil function"}
	}
	if ct.NumOut() != 1 {
		return &InvalidConstructorError{Type: t, Constructor: ct, Reason: fmt.Sprintf("must return exactly one value, returns %d", ct.NumOut())}
	}
	if !ct.Out(0).AssignableTo(t) {
		return &InvalidConstructorError{Type: t, Constructor: ct, Reason: fmt.Sprintf("returns %s", ct.Out(0))}
	}
	if ct.IsVariadic() {
		return &InvalidConstructorError{Type: t, Constructor: ct, Reason: "variadic constructors are not supported"}
	}
	return nil
}
