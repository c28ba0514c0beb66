package discovery

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

var (
	// ErrInvalidContract matches every InvalidContractError.
	ErrInvalidContract = errors.New("discovery: invalid contract")
	// ErrAmbiguousContract matches every AmbiguousContractError.
	ErrAmbiguousContract = errors.New("discovery: ambiguous contract")
	// ErrInvalidMarker matches every InvalidMarkerError.
	ErrInvalidMarker = errors.New("discovery: invalid marker")
	// ErrInvalidConstructor matches every InvalidConstructorError.
	ErrInvalidConstructor = errors.New("discovery: invalid constructor")

	ErrNilType                 = errors.New("discovery: nil type")
	ErrDuplicateCandidate      = errors.New("discovery: candidate already in catalog")
	ErrDuplicateImplementation = errors.New("discovery: implementation discovered twice")
	ErrCatalogFrozen           = errors.New("discovery: catalog is frozen")
)

// InvalidContractError reports an explicit contract that is not an interface,
// cannot be resolved by name, or is not implemented by the candidate.
type InvalidContractError struct {
	// Type is the candidate implementation.
	Type reflect.Type
	// Contract is the declared contract; nil when a tag name did not resolve.
	Contract reflect.Type
	// ContractName is the contract as written in a struct tag, if any.
	ContractName string
	// Candidates lists the contracts an ambiguous tag name matched.
	Candidates []reflect.Type
	// Reason is a short human-readable cause.
	Reason string
}

func (e *InvalidContractError) Error() string {
	declared := e.ContractName
	if e.Contract != nil {
		declared = e.Contract.String()
	}
	msg := fmt.Sprintf("discovery: service %s declares contract %s, %s", typeName(e.Type), declared, e.Reason)
	if len(e.Candidates) > 0 {
		names := make([]string, len(e.Candidates))
		for i, c := range e.Candidates {
			names[i] = typeName(c)
		}
		msg += " (" + strings.Join(names, ", ") + ")"
	}
	return msg
}

// Is makes errors.Is(err, ErrInvalidContract) hold.
func (e *InvalidContractError) Is(target error) bool { return target == ErrInvalidContract }

// AmbiguousContractError reports a candidate without an explicit contract
// that implements zero or several known contracts.
type AmbiguousContractError struct {
	Type  reflect.Type
	Found []reflect.Type
}

// Count is the number of contracts the candidate implements.
func (e *AmbiguousContractError) Count() int { return len(e.Found) }

func (e *AmbiguousContractError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "discovery: cannot infer a single contract for %s: found %d", typeName(e.Type), len(e.Found))
	if len(e.Found) > 1 {
		names := make([]string, len(e.Found))
		for i, t := range e.Found {
			names[i] = t.String()
		}
		fmt.Fprintf(&b, " (%s)", strings.Join(names, ", "))
	}
	b.WriteString("; declare one explicitly with discovery.As")
	return b.String()
}

// Is makes errors.Is(err, ErrAmbiguousContract) hold.
func (e *AmbiguousContractError) Is(target error) bool { return target == ErrAmbiguousContract }

// InvalidMarkerError reports a malformed marker: a bad struct tag or an
// out-of-range lifetime.
type InvalidMarkerError struct {
	Type   reflect.Type
	Tag    string
	Reason string
}

func (e *InvalidMarkerError) Error() string {
	if e.Tag != "" {
		return fmt.Sprintf("discovery: service %s has invalid marker tag %q: %s", typeName(e.Type), e.Tag, e.Reason)
	}
	return fmt.Sprintf("discovery: service %s has invalid marker: %s", typeName(e.Type), e.Reason)
}

// Is makes errors.Is(err, ErrInvalidMarker) hold.
func (e *InvalidMarkerError) Is(target error) bool { return target == ErrInvalidMarker }

// InvalidConstructorError reports a declared constructor that cannot build
// the implementation.
type InvalidConstructorError struct {
	Type        reflect.Type
	Constructor reflect.Type
	Reason      string
}

func (e *InvalidConstructorError) Error() string {
	return fmt.Sprintf("discovery: service %s has invalid constructor %v: %s", typeName(e.Type), e.Constructor, e.Reason)
}

// Is makes errors.Is(err, ErrInvalidConstructor) hold.
func (e *InvalidConstructorError) Is(target error) bool { return target == ErrInvalidConstructor }

// CandidateError carries the catalog position of the candidate that aborted
// a discovery pass.
type CandidateError struct {
	Index int
	Type  reflect.Type
	Err   error
}

func (e *CandidateError) Error() string {
	return fmt.Sprintf("candidate #%d (%s): %v", e.Index, typeName(e.Type), e.Err)
}

func (e *CandidateError) Unwrap() error { return e.Err }

// typeName renders t with its full package path so that identically named
// types from different packages stay distinguishable in diagnostics.
func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	if t.Kind() == reflect.Ptr && t.Name() == "" {
		return "*" + typeName(t.Elem())
	}
	if t.Name() != "" && t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	return t.String()
}
