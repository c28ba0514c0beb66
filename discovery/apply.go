package discovery

import (
	"context"
	"fmt"
	"reflect"

	"github.com/Ngone6325/gofac/v2"
)

// Binder is the composition root consuming a plan. *gofac.Container
// implements it.
type Binder interface {
	Bind(contract, implementation reflect.Type, ctor any, lifetime gofac.Lifetime) error
}

var _ Binder = (*gofac.Container)(nil)

// Apply binds every declaration of plan in order and stops at the first
// failure.
func Apply(plan RegistrationPlan, b Binder) error {
	for i, d := range plan.All() {
		if err := b.Bind(d.Contract(), d.Implementation(), d.Constructor(), d.Lifetime()); err != nil {
			return fmt.Errorf("discovery: bind declaration #%d (%s): %w", i, d, err)
		}
	}
	return nil
}

// Compose discovers src with e and binds the plan into a new container.
func Compose(ctx context.Context, e *Engine, src Source) (*gofac.Container, RegistrationPlan, error) {
	plan, err := e.Discover(ctx, src)
	if err != nil {
		return nil, RegistrationPlan{}, err
	}
	c := gofac.NewContainer()
	if err := Apply(plan, c); err != nil {
		return nil, RegistrationPlan{}, err
	}
	return c, plan, nil
}
