package discovery

import (
	"reflect"

	"github.com/Ngone6325/gofac/v2"
)

// RawMetadata is a candidate's marker data as declared, not yet validated.
type RawMetadata struct {
	Explicit     reflect.Type
	ExplicitName string
	Lifetime     gofac.Lifetime // LifetimeUnset when not declared
	Constructor  any
}

// HasExplicit reports whether the author declared a contract.
func (m RawMetadata) HasExplicit() bool {
	return m.Explicit != nil || m.ExplicitName != ""
}

// ReadMetadata extracts the marker of c. ok is false, with a nil error, for
// candidates that are not eligible: nil or interface types, and types with
// neither a registration marker nor a Marker field. A registration marker
// takes precedence over a tagged Marker field.
func ReadMetadata(c Candidate) (raw RawMetadata, ok bool, err error) {
	t := c.Type
	if t == nil || t.Kind() == reflect.Interface {
		return RawMetadata{}, false, nil
	}

	if c.Marker != nil {
		return RawMetadata{
			Explicit:     c.Marker.Contract,
			ExplicitName: c.Marker.ContractName,
			Lifetime:     c.Marker.Lifetime,
			Constructor:  c.Marker.Constructor,
		}, true, nil
	}

	tag, found := markerTag(t)
	if !found {
		return RawMetadata{}, false, nil
	}
	svc, perr := parseTag(tag)
	if perr != nil {
		return RawMetadata{}, false, &InvalidMarkerError{Type: t, Tag: tag, Reason: perr.Error()}
	}
	return RawMetadata{
		ExplicitName: svc.ContractName,
		Lifetime:     svc.Lifetime,
	}, true, nil
}
