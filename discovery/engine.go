package discovery

import (
	"context"
	"fmt"
	"io"
	"reflect"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/Ngone6325/gofac/v2"
)

// DefaultLifetime is applied to markers that do not declare a lifetime.
const DefaultLifetime = gofac.Scoped

// Engine runs discovery passes. The zero value is not usable; call New.
type Engine struct {
	logger          *log.Logger
	tracer          trace.Tracer
	defaultLifetime gofac.Lifetime
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger receiving the advisory per-declaration records.
func WithLogger(l *log.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithTracer sets the tracer used for the discovery span.
func WithTracer(t trace.Tracer) EngineOption {
	return func(e *Engine) {
		if t != nil {
			e.tracer = t
		}
	}
}

// WithDefaultLifetime overrides DefaultLifetime.
func WithDefaultLifetime(l gofac.Lifetime) EngineOption {
	return func(e *Engine) { e.defaultLifetime = l }
}

// New creates an engine. Without options it logs nowhere and does not trace.
func New(opts ...EngineOption) *Engine {
	e := &Engine{
		logger:          log.New(io.Discard),
		tracer:          noop.NewTracerProvider().Tracer("gofac/discovery"),
		defaultLifetime: DefaultLifetime,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Discover makes one pass over src. The first invalid candidate aborts the
// pass with a *CandidateError; no partial plan is returned.
func (e *Engine) Discover(ctx context.Context, src Source) (plan RegistrationPlan, err error) {
	ctx, span := e.tracer.Start(ctx, "discovery.Discover")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if !e.defaultLifetime.Valid() {
		return RegistrationPlan{}, fmt.Errorf("discovery: default lifetime: %w", gofac.ErrInvalidLifetime)
	}

	candidates := src.Candidates()
	contracts := NewContractSet(src.Contracts())
	span.SetAttributes(
		attribute.Int("discovery.candidates", len(candidates)),
		attribute.String("discovery.default_lifetime", e.defaultLifetime.String()),
	)

	var (
		decls   []ServiceDeclaration
		seen    = make(map[reflect.Type]struct{}, len(candidates))
		skipped int
	)
	for i, cand := range candidates {
		if err := ctx.Err(); err != nil {
			return RegistrationPlan{}, err
		}

		raw, ok, err := ReadMetadata(cand)
		if err != nil {
			e.logger.Error("discovery aborted", "type", typeName(cand.Type), "err", err)
			return RegistrationPlan{}, &CandidateError{Index: i, Type: cand.Type, Err: err}
		}
		if !ok {
			skipped++
			e.logger.Debug("skipping candidate", "type", typeName(cand.Type))
			continue
		}
		if _, dup := seen[cand.Type]; dup {
			return RegistrationPlan{}, &CandidateError{Index: i, Type: cand.Type, Err: ErrDuplicateImplementation}
		}

		decl, err := ResolveContract(cand.Type, raw, contracts, e.defaultLifetime)
		if err != nil {
			e.logger.Error("discovery aborted", "type", typeName(cand.Type), "err", err)
			return RegistrationPlan{}, &CandidateError{Index: i, Type: cand.Type, Err: err}
		}
		seen[cand.Type] = struct{}{}
		decls = append(decls, decl)
		e.logger.Info(fmt.Sprintf("registering %s <= %s as %s", decl.Contract(), decl.Implementation(), decl.Lifetime()))
	}

	span.SetAttributes(
		attribute.Int("discovery.accepted", len(decls)),
		attribute.Int("discovery.skipped", skipped),
	)
	return RegistrationPlan{decls: decls}, nil
}

// Discover runs a pass over Default with a default engine.
func Discover(ctx context.Context, opts ...EngineOption) (RegistrationPlan, error) {
	return New(opts...).Discover(ctx, Default)
}
