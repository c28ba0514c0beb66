package discovery

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/Ngone6325/gofac/v2"
)

// TagKey is the struct tag key read from Marker fields.
const TagKey = "gofac"

// Service is the discoverability marker attached to a candidate: zero or one
// explicit contract and zero or one lifetime. It is data only.
type Service struct {
	// Contract is the explicit contract type, nil to infer one.
	Contract reflect.Type
	// ContractName names the contract when it is given by name (struct tags);
	// it is resolved against the source's contracts.
	ContractName string
	// Lifetime is gofac.LifetimeUnset to take the engine default.
	Lifetime gofac.Lifetime
	// Constructor optionally builds the implementation; its parameters are
	// resolved by the container.
	Constructor any
}

// Option configures a Service marker.
type Option func(*Service)

// NewService builds a marker from opts.
func NewService(opts ...Option) Service {
	var s Service
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// As declares I as the explicit contract.
func As[I any]() Option {
	return AsType(reflect.TypeOf((*I)(nil)).Elem())
}

// AsType declares t as the explicit contract.
func AsType(t reflect.Type) Option {
	return func(s *Service) {
		s.Contract = t
		s.ContractName = ""
	}
}

// AsNamed declares the explicit contract by name, resolved at discovery time.
func AsNamed(name string) Option {
	return func(s *Service) {
		s.Contract = nil
		s.ContractName = name
	}
}

// WithLifetime sets the lifetime.
func WithLifetime(l gofac.Lifetime) Option {
	return func(s *Service) { s.Lifetime = l }
}

// WithConstructor sets the constructor, a func returning the implementation.
func WithConstructor(fn any) Option {
	return func(s *Service) { s.Constructor = fn }
}

// Marker marks a struct as discoverable when embedded (or declared as a
// field). The field's struct tag may carry "contract=<name>" and
// "lifetime=<singleton|scoped|transient>", comma separated.
type Marker struct{}

var markerType = reflect.TypeOf(Marker{})

// markerTag returns the tag of the first Marker field of t (or of *t).
func markerTag(t reflect.Type) (tag string, ok bool) {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return "", false
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Type == markerType {
			return f.Tag.Get(TagKey), true
		}
	}
	return "", false
}

// parseTag decodes a marker tag into a Service.
func parseTag(tag string) (Service, error) {
	var s Service
	if strings.TrimSpace(tag) == "" {
		return s, nil
	}
	seen := make(map[string]bool)
	for _, part := range strings.Split(tag, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if !found || value == "" {
			return s, fmt.Errorf("expected key=value, got %q", part)
		}
		if seen[key] {
			return s, fmt.Errorf("duplicate key %q", key)
		}
		seen[key] = true

		switch key {
		case "contract":
			s.ContractName = value
		case "lifetime":
			l, err := gofac.ParseLifetime(value)
			if err != nil {
				return s, err
			}
			s.Lifetime = l
		default:
			return s, fmt.Errorf("unknown key %q", key)
		}
	}
	return s, nil
}
