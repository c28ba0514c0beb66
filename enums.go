package gofac

import (
	"fmt"
	"strings"
)

// Lifetime controls how the container caches a bound implementation.
type Lifetime int

const (
	LifetimeUnset Lifetime = iota // not declared; discovery substitutes its default
	Singleton                     // Singleton: one instance per container, cached in the root
	Scoped                        // Scoped: one instance per Scope, isolated between scopes
	Transient                     // Transient: new instance on every resolution
)

var lifetimeNames = map[Lifetime]string{
	LifetimeUnset: "unset",
	Singleton:     "singleton",
	Scoped:        "scoped",
	Transient:     "transient",
}

func (l Lifetime) String() string {
	if name, ok := lifetimeNames[l]; ok {
		return name
	}
	return fmt.Sprintf("Lifetime(%d)", int(l))
}

// Valid reports whether l is one of Singleton, Scoped or Transient.
func (l Lifetime) Valid() bool {
	return l == Singleton || l == Scoped || l == Transient
}

// ParseLifetime parses a lifetime name case-insensitively.
func ParseLifetime(s string) (Lifetime, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "singleton":
		return Singleton, nil
	case "scoped":
		return Scoped, nil
	case "transient":
		return Transient, nil
	}
	return LifetimeUnset, fmt.Errorf("%w: %q", ErrInvalidLifetime, s)
}

// MarshalText implements encoding.TextMarshaler.
func (l Lifetime) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidLifetime, l)
	}
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so lifetimes can be
// decoded from config files and flags.
func (l *Lifetime) UnmarshalText(text []byte) error {
	parsed, err := ParseLifetime(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
