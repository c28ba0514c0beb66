package discovery

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"pgregory.net/rapid"

	"github.com/Ngone6325/gofac/v2"
)

func TestDiscover_InferredDefaultsToScoped(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, ContractIn[IFoo](c))
	require.NoError(t, RegisterIn[*FooImpl](c))

	plan, err := New().Discover(context.Background(), c)
	require.NoError(t, err)
	require.Equal(t, 1, plan.Len())

	d := plan.At(0)
	require.Equal(t, tIFoo, d.Contract())
	require.Equal(t, tFooImpl, d.Implementation())
	require.Equal(t, gofac.Scoped, d.Lifetime())
}

func TestDiscover_AmbiguousBar(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, ContractIn[IBar](c))
	require.NoError(t, ContractIn[IBarExtra](c))
	require.NoError(t, RegisterIn[*BarImpl](c))

	plan, err := New().Discover(context.Background(), c)
	require.ErrorIs(t, err, ErrAmbiguousContract)
	require.Zero(t, plan.Len())

	var ace *AmbiguousContractError
	require.True(t, errors.As(err, &ace))
	require.Equal(t, tBarImpl, ace.Type)
	require.Equal(t, 2, ace.Count())
	require.ElementsMatch(t, []reflect.Type{tIBar, tIBarExtra}, ace.Found)
}

func TestDiscover_ExplicitContractNotImplemented(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, ContractIn[IQux](c))
	require.NoError(t, RegisterIn[*BazImpl](c, As[IQux]()))

	_, err := New().Discover(context.Background(), c)
	require.ErrorIs(t, err, ErrInvalidContract)

	var ce *CandidateError
	require.True(t, errors.As(err, &ce))
	require.Equal(t, 0, ce.Index)
	require.Equal(t, tBazImpl, ce.Type)
}

func TestDiscover_ExplicitContractNotInterface(t *testing.T) {
	src := sliceSource{
		candidates: []Candidate{marked(tFooImpl, As[notAnInterface]())},
		contracts:  allContracts(),
	}
	_, err := New().Discover(context.Background(), src)
	require.ErrorIs(t, err, ErrInvalidContract)
}

func TestDiscover_AbortsBeforeLaterCandidates(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})

	src := sliceSource{
		candidates: []Candidate{
			marked(reflect.TypeOf((*fooSingleton)(nil)), As[IFoo]()),
			marked(tFooImpl, As[notAnInterface]()),
			marked(tBarImpl), // would be ambiguous
			marked(reflect.TypeOf((*fooTransient)(nil)), As[IFoo]()),
		},
		contracts: allContracts(),
	}

	plan, err := New(WithLogger(logger)).Discover(context.Background(), src)
	require.ErrorIs(t, err, ErrInvalidContract)
	require.NotErrorIs(t, err, ErrAmbiguousContract)
	require.Zero(t, plan.Len(), "no partial plan")

	var ce *CandidateError
	require.True(t, errors.As(err, &ce))
	require.Equal(t, 1, ce.Index)

	require.Contains(t, buf.String(), "fooSingleton")
	require.NotContains(t, buf.String(), "fooTransient")
}

func TestDiscover_SkipsUnmarkedAndAbstract(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, ContractIn[IFoo](c))
	require.NoError(t, ConsiderIn[*plainStruct](c))
	require.NoError(t, RegisterIn[IFoo](c))
	require.NoError(t, RegisterIn[*FooImpl](c))

	plan, err := New().Discover(context.Background(), c)
	require.NoError(t, err)
	require.Equal(t, 1, plan.Len())
	require.Equal(t, tFooImpl, plan.At(0).Implementation())
}

func TestDiscover_TaggedMarkers(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, ContractIn[IFoo](c))
	require.NoError(t, ContractIn[IQux](c))
	require.NoError(t, ConsiderIn[*taggedFoo](c))
	require.NoError(t, ConsiderIn[*taggedInferred](c))

	plan, err := New(WithDefaultLifetime(gofac.Transient)).Discover(context.Background(), c)
	require.NoError(t, err)
	require.Equal(t, 2, plan.Len())

	require.Equal(t, tIFoo, plan.At(0).Contract())
	require.Equal(t, gofac.Singleton, plan.At(0).Lifetime())
	require.Equal(t, tIQux, plan.At(1).Contract())
	require.Equal(t, gofac.Transient, plan.At(1).Lifetime())
}

func TestDiscover_TaggedUnknownContract(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, ContractIn[IFoo](c))
	require.NoError(t, ConsiderIn[*taggedUnknownContract](c))

	_, err := New().Discover(context.Background(), c)
	require.ErrorIs(t, err, ErrInvalidContract)
	require.ErrorContains(t, err, "nope.Missing")
}

func TestDiscover_DuplicateImplementationInSource(t *testing.T) {
	src := sliceSource{
		candidates: []Candidate{marked(tFooImpl), marked(tFooImpl)},
		contracts:  allContracts(),
	}
	_, err := New().Discover(context.Background(), src)
	require.ErrorIs(t, err, ErrDuplicateImplementation)
}

func TestDiscover_DuplicateContractsAllowed(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, RegisterIn[*FooImpl](c, As[IFoo]()))
	require.NoError(t, RegisterIn[*fooSingleton](c, As[IFoo](), WithLifetime(gofac.Singleton)))

	plan, err := New().Discover(context.Background(), c)
	require.NoError(t, err)
	require.Equal(t, 2, plan.Len())
	require.Equal(t, plan.At(0).Contract(), plan.At(1).Contract())
}

func TestDiscover_InvalidDefaultLifetime(t *testing.T) {
	_, err := New(WithDefaultLifetime(gofac.LifetimeUnset)).Discover(context.Background(), NewCatalog())
	require.ErrorIs(t, err, gofac.ErrInvalidLifetime)
}

func TestDiscover_ContextCanceled(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, ContractIn[IFoo](c))
	require.NoError(t, RegisterIn[*FooImpl](c))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().Discover(ctx, c)
	require.ErrorIs(t, err, context.Canceled)
}

func TestDiscover_LogsAdvisoryRecord(t *testing.T) {
	var buf bytes.Buffer
	c := NewCatalog()
	require.NoError(t, ContractIn[IFoo](c))
	require.NoError(t, RegisterIn[*FooImpl](c))

	_, err := New(WithLogger(log.New(&buf))).Discover(context.Background(), c)
	require.NoError(t, err)
	require.Contains(t, buf.String(), "registering discovery.IFoo <= *discovery.FooImpl as scoped")
}

func TestDiscover_RecordsSpan(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := trace.NewTracerProvider(trace.WithSpanProcessor(rec))

	c := NewCatalog()
	require.NoError(t, ContractIn[IBar](c))
	require.NoError(t, ContractIn[IBarExtra](c))
	require.NoError(t, RegisterIn[*BarImpl](c))

	_, err := New(WithTracer(tp.Tracer("test"))).Discover(context.Background(), c)
	require.Error(t, err)

	spans := rec.Ended()
	require.Len(t, spans, 1)
	require.Equal(t, "discovery.Discover", spans[0].Name())
	require.NotEmpty(t, spans[0].Events(), "error recorded as event")
}

func TestDiscover_Idempotent(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, ContractIn[IFoo](c))
	require.NoError(t, ContractIn[IQux](c))
	require.NoError(t, RegisterIn[*FooImpl](c, WithConstructor(newFooImpl)))
	require.NoError(t, ConsiderIn[*taggedInferred](c))

	e := New()
	first, err := e.Discover(context.Background(), c)
	require.NoError(t, err)
	second, err := e.Discover(context.Background(), c)
	require.NoError(t, err)
	require.True(t, first.Equal(second))
}

// fixture is one candidate the property tests can place in a catalog.
type fixture struct {
	add      func(*Catalog) error
	typ      reflect.Type
	accepted bool
}

var fixtures = []fixture{
	{func(c *Catalog) error { return RegisterIn[*FooImpl](c) }, tFooImpl, true},
	{func(c *Catalog) error { return RegisterIn[*fooSingleton](c, As[IFoo](), WithLifetime(gofac.Singleton)) }, reflect.TypeOf((*fooSingleton)(nil)), true},
	{func(c *Catalog) error { return RegisterIn[*fooTransient](c, AsNamed("discovery.IFoo")) }, reflect.TypeOf((*fooTransient)(nil)), true},
	{func(c *Catalog) error { return ConsiderIn[*taggedFoo](c) }, reflect.TypeOf((*taggedFoo)(nil)), true},
	{func(c *Catalog) error { return ConsiderIn[*taggedInferred](c) }, reflect.TypeOf((*taggedInferred)(nil)), true},
	{func(c *Catalog) error { return ConsiderIn[*plainStruct](c) }, reflect.TypeOf((*plainStruct)(nil)), false},
	{func(c *Catalog) error { return RegisterIn[IFoo](c) }, tIFoo, false},
	{func(c *Catalog) error { return ConsiderIn[*BarImpl](c) }, tBarImpl, false},
}

func drawCatalog(t *rapid.T) (*Catalog, []fixture) {
	idx := rapid.SliceOfNDistinct(rapid.IntRange(0, len(fixtures)-1), 0, len(fixtures), rapid.ID[int]).Draw(t, "fixtures")
	c := NewCatalog()
	for _, contract := range allContracts() {
		if err := c.AddContract(contract); err != nil {
			t.Fatal(err)
		}
	}
	picked := make([]fixture, 0, len(idx))
	for _, i := range idx {
		if err := fixtures[i].add(c); err != nil {
			t.Fatal(err)
		}
		picked = append(picked, fixtures[i])
	}
	return c, picked
}

func TestDiscover_Properties(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		c, picked := drawCatalog(rt)

		plan, err := New().Discover(context.Background(), c)
		if err != nil {
			rt.Fatalf("unexpected error: %v", err)
		}

		// exactly the marked, concrete candidates appear, in catalog order
		var want []reflect.Type
		for _, f := range picked {
			if f.accepted {
				want = append(want, f.typ)
			}
		}
		if plan.Len() != len(want) {
			rt.Fatalf("plan has %d declarations, want %d", plan.Len(), len(want))
		}
		for i, d := range plan.All() {
			if d.Implementation() != want[i] {
				rt.Fatalf("declaration %d is %s, want %s", i, d.Implementation(), want[i])
			}
			if d.Contract().Kind() != reflect.Interface || !d.Implementation().Implements(d.Contract()) {
				rt.Fatalf("declaration %s violates the contract invariant", d)
			}
		}

		again, err := New().Discover(context.Background(), c)
		if err != nil {
			rt.Fatalf("second pass: %v", err)
		}
		if !plan.Equal(again) {
			rt.Fatalf("passes differ")
		}
	})
}

func TestDiscover_InferenceCountProperty(t *testing.T) {
	contracts := allContracts()
	rapid.Check(t, func(rt *rapid.T) {
		// BarImpl implements IBar and IBarExtra; vary which of them are known.
		withBar := rapid.Bool().Draw(rt, "bar")
		withExtra := rapid.Bool().Draw(rt, "extra")

		var known []reflect.Type
		for _, ct := range contracts {
			if (ct == tIBar && !withBar) || (ct == tIBarExtra && !withExtra) {
				continue
			}
			known = append(known, ct)
		}
		src := sliceSource{candidates: []Candidate{marked(tBarImpl)}, contracts: known}

		_, err := New().Discover(context.Background(), src)
		count := 0
		if withBar {
			count++
		}
		if withExtra {
			count++
		}
		if count == 1 {
			if err != nil {
				rt.Fatalf("expected inference to succeed: %v", err)
			}
			return
		}
		var ace *AmbiguousContractError
		if !errors.As(err, &ace) || ace.Count() != count {
			rt.Fatalf("expected AmbiguousContractError with count %d, got %v", count, err)
		}
	})
}
