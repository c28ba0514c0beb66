package discovery

import (
	"fmt"
	"reflect"
	"sync"
)

// Candidate is one type offered for discovery. Marker is nil for types that
// were only considered; they are discovered only if they embed a Marker field.
type Candidate struct {
	Type   reflect.Type
	Marker *Service
}

// Source supplies a finite, deterministic sequence of candidates and the
// universe of contracts used for inference and for resolving contract names.
type Source interface {
	Candidates() []Candidate
	Contracts() []reflect.Type
}

// Catalog is the in-process Source. Packages populate it from init() and the
// composition root freezes it before discovery.
type Catalog struct {
	mu         sync.Mutex
	candidates []Candidate
	seen       map[reflect.Type]struct{}
	contracts  []reflect.Type
	known      map[reflect.Type]struct{}
	frozen     bool
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		seen:  make(map[reflect.Type]struct{}),
		known: make(map[reflect.Type]struct{}),
	}
}

// Default is the catalog filled by Register, Consider and Contract.
var Default = NewCatalog()

// Add appends t with its marker. Adding the same type twice fails with
// ErrDuplicateCandidate; the first registration stays in place.
func (c *Catalog) Add(t reflect.Type, svc Service) error {
	return c.add(Candidate{Type: t, Marker: &svc})
}

// Consider appends t without a registration marker.
func (c *Catalog) Consider(t reflect.Type) error {
	return c.add(Candidate{Type: t})
}

func (c *Catalog) add(cand Candidate) error {
	if cand.Type == nil {
		return ErrNilType
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.frozen {
		return fmt.Errorf("%w: cannot add %s", ErrCatalogFrozen, typeName(cand.Type))
	}
	if _, dup := c.seen[cand.Type]; dup {
		return fmt.Errorf("%w: %s", ErrDuplicateCandidate, typeName(cand.Type))
	}
	c.seen[cand.Type] = struct{}{}
	c.candidates = append(c.candidates, cand)
	return nil
}

// AddContract adds t to the contract universe. Re-adding is a no-op.
// Non-interface types may be added so that tags can name them; they never
// take part in inference.
func (c *Catalog) AddContract(t reflect.Type) error {
	if t == nil {
		return ErrNilType
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.frozen {
		return fmt.Errorf("%w: cannot add contract %s", ErrCatalogFrozen, typeName(t))
	}
	if _, ok := c.known[t]; ok {
		return nil
	}
	c.known[t] = struct{}{}
	c.contracts = append(c.contracts, t)
	return nil
}

// Freeze rejects further additions.
func (c *Catalog) Freeze() {
	c.mu.Lock()
	c.frozen = true
	c.mu.Unlock()
}

// Frozen reports whether Freeze was called.
func (c *Catalog) Frozen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frozen
}

// Candidates returns a copy of the candidates in insertion order.
func (c *Catalog) Candidates() []Candidate {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Candidate, len(c.candidates))
	copy(out, c.candidates)
	return out
}

// Contracts returns a copy of the contract universe in insertion order.
func (c *Catalog) Contracts() []reflect.Type {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]reflect.Type, len(c.contracts))
	copy(out, c.contracts)
	return out
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// RegisterIn marks T as discoverable in c.
func RegisterIn[T any](c *Catalog, opts ...Option) error {
	return c.Add(typeOf[T](), NewService(opts...))
}

// ConsiderIn offers T to c without a registration marker.
func ConsiderIn[T any](c *Catalog) error {
	return c.Consider(typeOf[T]())
}

// ContractIn adds I to the contract universe of c.
func ContractIn[I any](c *Catalog) error {
	return c.AddContract(typeOf[I]())
}

// Register marks T as discoverable in Default. It is meant for init() and
// panics on error, like a failed package initialisation.
func Register[T any](opts ...Option) {
	if err := RegisterIn[T](Default, opts...); err != nil {
		panic(err)
	}
}

// Consider offers T to Default without a registration marker; T is
// discovered only if it embeds a Marker field.
func Consider[T any]() {
	if err := ConsiderIn[T](Default); err != nil {
		panic(err)
	}
}

// Contract adds I to the contract universe of Default.
func Contract[I any]() {
	if err := ContractIn[I](Default); err != nil {
		panic(err)
	}
}
