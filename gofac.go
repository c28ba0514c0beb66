package gofac

import (
	"fmt"
	"reflect"
	"sync"
)

// ServiceDef stores the registration metadata of one service type together
// with its cached constructor parameters and singleton instance.
type ServiceDef struct {
	implType   reflect.Type   // implementation type (constructor result or instance type)
	scope      Lifetime       // lifetime
	instance   reflect.Value  // singleton cache or pre-registered instance
	err        error          // sticky singleton construction error
	ctor       reflect.Value  // constructor (empty for instance registrations)
	ctorType   reflect.Type   // constructor type (empty for instance registrations)
	once       sync.Once      // singleton initialisation
	paramTypes []reflect.Type // cached constructor parameter types
	paramOnce  sync.Once      // parameter types are computed once
	isInstance bool           // true: use instance, never call ctor
}

// Binding is a read-only view of one registration, in registration order.
type Binding struct {
	Service        reflect.Type
	Implementation reflect.Type
	Lifetime       Lifetime
}

// Container is the DI container; it is safe for concurrent use.
type Container struct {
	services map[reflect.Type]*ServiceDef
	order    []reflect.Type
	mu       sync.RWMutex
}

// Scope caches Scoped instances; different scopes are isolated from each other.
type Scope struct {
	root       *Container                     // shared registrations
	scopedInst map[reflect.Type]reflect.Value // Scoped instances of this scope
	mu         sync.RWMutex
}

// NewContainer creates an empty container.
func NewContainer() *Container {
	return &Container{
		services: make(map[reflect.Type]*ServiceDef),
	}
}

// Register registers ctor under its own return type.
func (c *Container) Register(ctor any, scope Lifetime) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.register(ctor, nil, scope)
}

// RegisterAs registers ctor under the interface designated by interfaceType,
// which must be a nil pointer to an interface: (*IService)(nil).
func (c *Container) RegisterAs(ctor any, interfaceType any, scope Lifetime) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.register(ctor, interfaceType, scope)
}

func (c *Container) register(ctor any, interfaceType any, scope Lifetime) error {
	if ctor == nil {
		return ErrNotFunc
	}
	ctorVal := reflect.ValueOf(ctor)
	ctorType := ctorVal.Type()
	if ctorType.Kind() != reflect.Func {
		return ErrNotFunc
	}

	numOut := ctorType.NumOut()
	if numOut != 1 {
		return fmt.Errorf("%w, got %d return values", ErrNoReturn, numOut)
	}
	implType := ctorType.Out(0)
	if implType.Kind() == reflect.Interface {
		return fmt.Errorf("%w, constructor returns interface %s", ErrNotConcreteType, implType)
	}

	svcType := implType
	if interfaceType != nil {
		ifaceType, err := interfaceOf(interfaceType)
		if err != nil {
			return err
		}
		if !implType.Implements(ifaceType) {
			return fmt.Errorf("%w: %s does not implement %s", ErrNotImplemented, implType, ifaceType)
		}
		svcType = ifaceType
	}

	return c.add(svcType, &ServiceDef{
		implType: implType,
		scope:    scope,
		ctor:     ctorVal,
		ctorType: ctorType,
	})
}

// Bind registers implementation under contract. A nil ctor makes the
// container construct the zero value of implementation (a freshly allocated
// struct for pointer implementations). A non-nil ctor must return a value
// assignable to contract; its parameters are resolved from the container.
func (c *Container) Bind(contract, implementation reflect.Type, ctor any, scope Lifetime) error {
	if contract == nil || contract.Kind() != reflect.Interface {
		return ErrInvalidInterfaceType
	}
	if implementation == nil || implementation.Kind() == reflect.Interface {
		return fmt.Errorf("%w: %v", ErrNotConcreteType, implementation)
	}
	if !implementation.Implements(contract) {
		return fmt.Errorf("%w: %s does not implement %s", ErrNotImplemented, implementation, contract)
	}

	var ctorVal reflect.Value
	if ctor == nil {
		ctorVal = zeroConstructor(implementation)
	} else {
		ctorVal = reflect.ValueOf(ctor)
		if ctorVal.Kind() != reflect.Func {
			return ErrNotFunc
		}
		if ctorVal.IsNil() {
			return fmt.Errorf("%w: nil function", ErrNotFunc)
		}
		if n := ctorVal.Type().NumOut(); n != 1 {
			return fmt.Errorf("%w, got %d return values", ErrNoReturn, n)
		}
		if out := ctorVal.Type().Out(0); !out.AssignableTo(contract) {
			return fmt.Errorf("%w: constructor returns %s, want %s", ErrNotImplemented, out, contract)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.add(contract, &ServiceDef{
		implType: implementation,
		scope:    scope,
		ctor:     ctorVal,
		ctorType: ctorVal.Type(),
	})
}

// zeroConstructor builds func() T returning a new zero value of t.
func zeroConstructor(t reflect.Type) reflect.Value {
	fnType := reflect.FuncOf(nil, []reflect.Type{t}, false)
	return reflect.MakeFunc(fnType, func([]reflect.Value) []reflect.Value {
		if t.Kind() == reflect.Ptr {
			return []reflect.Value{reflect.New(t.Elem())}
		}
		return []reflect.Value{reflect.New(t).Elem()}
	})
}

// RegisterInstance registers an already built instance under its own type.
// Transient is rejected: an existing instance cannot be re-created.
func (c *Container) RegisterInstance(instance any, scope Lifetime) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registerInstance(instance, nil, scope)
}

// RegisterInstanceAs registers an already built instance under an interface.
func (c *Container) RegisterInstanceAs(instance any, interfaceType any, scope Lifetime) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registerInstance(instance, interfaceType, scope)
}

func (c *Container) registerInstance(instance any, interfaceType any, scope Lifetime) error {
	if scope == Transient {
		return ErrTransientInstance
	}
	if instance == nil {
		return ErrNilInstance
	}

	instVal := reflect.ValueOf(instance)
	implType := instVal.Type()

	svcType := implType
	if interfaceType != nil {
		ifaceType, err := interfaceOf(interfaceType)
		if err != nil {
			return err
		}
		if !implType.Implements(ifaceType) {
			return fmt.Errorf("%w: instance type %s does not implement %s", ErrNotImplemented, implType, ifaceType)
		}
		svcType = ifaceType
	}

	return c.add(svcType, &ServiceDef{
		implType:   implType,
		scope:      scope,
		instance:   instVal,
		isInstance: true,
	})
}

// interfaceOf extracts I from a (*I)(nil) marker.
func interfaceOf(interfaceType any) (reflect.Type, error) {
	t := reflect.TypeOf(interfaceType)
	if t == nil || t.Kind() != reflect.Ptr || t.Elem().Kind() != reflect.Interface {
		return nil, ErrInvalidInterfaceType
	}
	return t.Elem(), nil
}

// add stores def under svcType; callers hold c.mu.
func (c *Container) add(svcType reflect.Type, def *ServiceDef) error {
	if !def.scope.Valid() {
		return fmt.Errorf("%w, got %s", ErrInvalidLifetime, def.scope)
	}
	if _, exists := c.services[svcType]; exists {
		return fmt.Errorf("%w, type: %s", ErrRegisterDuplicate, svcType)
	}
	c.services[svcType] = def
	c.order = append(c.order, svcType)
	return nil
}

// Bindings returns the registrations in the order they were made.
func (c *Container) Bindings() []Binding {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Binding, 0, len(c.order))
	for _, t := range c.order {
		def := c.services[t]
		out = append(out, Binding{Service: t, Implementation: def.implType, Lifetime: def.scope})
	}
	return out
}

// Resolve resolves the service type pointed to by out and stores it there.
func (c *Container) Resolve(out any) error {
	outVal, err := outPointer(out)
	if err != nil {
		return err
	}
	instance, err := c.resolve(outVal.Elem().Type(), nil, make(map[reflect.Type]bool))
	if err != nil {
		return err
	}
	outVal.Elem().Set(instance)
	return nil
}

func outPointer(out any) (reflect.Value, error) {
	outVal := reflect.ValueOf(out)
	if outVal.Kind() != reflect.Ptr || outVal.IsNil() {
		return reflect.Value{}, ErrInvalidOutPtr
	}
	return outVal, nil
}

// resolve is the recursive resolution core shared by the root container
// (scope == nil) and scopes.
func (c *Container) resolve(svcType reflect.Type, scope *Scope, track map[reflect.Type]bool) (reflect.Value, error) {
	c.mu.RLock()
	def, exists := c.services[svcType]
	c.mu.RUnlock()
	if !exists {
		return reflect.Value{}, fmt.Errorf("%w, type: %s", ErrServiceNotRegistered, svcType)
	}

	if track[svcType] {
		return reflect.Value{}, fmt.Errorf("%w, chain contains: %s", ErrResolveCircularDependency, svcType)
	}
	track[svcType] = true
	defer delete(track, svcType)

	if def.scope == Scoped && scope == nil {
		return reflect.Value{}, ErrScopedOnRootContainer
	}

	switch def.scope {
	case Singleton:
		if def.isInstance {
			return def.instance, nil
		}
		// singletons never capture scoped dependencies
		def.once.Do(func() {
			def.instance, def.err = c.construct(def, nil, track)
		})
		return def.instance, def.err

	case Scoped:
		scope.mu.RLock()
		inst, ok := scope.scopedInst[svcType]
		scope.mu.RUnlock()
		if ok {
			return inst, nil
		}
		if def.isInstance {
			inst = def.instance
		} else {
			var err error
			if inst, err = c.construct(def, scope, track); err != nil {
				return reflect.Value{}, err
			}
		}
		scope.mu.Lock()
		defer scope.mu.Unlock()
		// another goroutine may have won the race
		if existing, ok := scope.scopedInst[svcType]; ok {
			return existing, nil
		}
		scope.scopedInst[svcType] = inst
		return inst, nil
	}

	return c.construct(def, scope, track)
}

// construct resolves the constructor parameters and calls it.
func (c *Container) construct(def *ServiceDef, scope *Scope, track map[reflect.Type]bool) (reflect.Value, error) {
	def.paramOnce.Do(func() {
		numIn := def.ctorType.NumIn()
		params := make([]reflect.Type, numIn)
		for i := 0; i < numIn; i++ {
			params[i] = def.ctorType.In(i)
		}
		def.paramTypes = params
	})

	params := make([]reflect.Value, len(def.paramTypes))
	for i, pType := range def.paramTypes {
		pInstance, err := c.resolve(pType, scope, track)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("resolve dependency %s: %w", pType, err)
		}
		params[i] = pInstance
	}

	results := def.ctor.Call(params)
	if len(results) != 1 {
		return reflect.Value{}, fmt.Errorf("%w, unexpected constructor results", ErrCreateInstanceFailed)
	}
	return results[0], nil
}

// NewScope creates a scope for Scoped services, typically one per request.
func (c *Container) NewScope() *Scope {
	return &Scope{
		root:       c,
		scopedInst: make(map[reflect.Type]reflect.Value),
	}
}

// Resolve resolves any lifetime; Scoped instances are cached in s.
func (s *Scope) Resolve(out any) error {
	outVal, err := outPointer(out)
	if err != nil {
		return err
	}
	instance, err := s.root.resolve(outVal.Elem().Type(), s, make(map[reflect.Type]bool))
	if err != nil {
		return err
	}
	outVal.Elem().Set(instance)
	return nil
}

// ResolveType resolves svcType without a typed destination.
func (s *Scope) ResolveType(svcType reflect.Type) (any, error) {
	instance, err := s.root.resolve(svcType, s, make(map[reflect.Type]bool))
	if err != nil {
		return nil, err
	}
	return instance.Interface(), nil
}

// getTyped converts a resolved instance to T.
func getTyped[T any](svcType reflect.Type, instance reflect.Value) (T, error) {
	var zero T
	it := instance.Type()
	if svcType.Kind() == reflect.Interface {
		if it.Implements(svcType) {
			return instance.Interface().(T), nil
		}
		if it.Kind() != reflect.Ptr && reflect.PointerTo(it).Implements(svcType) {
			ptr := reflect.New(it)
			ptr.Elem().Set(instance)
			return ptr.Interface().(T), nil
		}
		return zero, fmt.Errorf("%w: instance %s cannot be used as %s", ErrTypeConvertFailed, it, svcType)
	}

	if it.AssignableTo(svcType) {
		return instance.Interface().(T), nil
	}
	if it.ConvertibleTo(svcType) {
		return instance.Convert(svcType).Interface().(T), nil
	}
	return zero, fmt.Errorf("%w: instance %s cannot be converted to %s", ErrTypeConvertFailed, it, svcType)
}

// MustRegister registers ctor or panics.
func (c *Container) MustRegister(ctor any, scope Lifetime) {
	if err := c.Register(ctor, scope); err != nil {
		panic(fmt.Sprintf("gofac: register failed: %v", err))
	}
}

// MustRegisterAs registers ctor under an interface or panics.
func (c *Container) MustRegisterAs(ctor any, interfaceType any, scope Lifetime) {
	if err := c.RegisterAs(ctor, interfaceType, scope); err != nil {
		panic(fmt.Sprintf("gofac: register as interface failed: %v", err))
	}
}

// MustRegisterInstance registers instance or panics.
func (c *Container) MustRegisterInstance(instance any, scope Lifetime) {
	if err := c.RegisterInstance(instance, scope); err != nil {
		panic(fmt.Sprintf("gofac: register instance failed: %v", err))
	}
}

// MustResolve resolves out or panics.
func (c *Container) MustResolve(out any) {
	if err := c.Resolve(out); err != nil {
		panic(fmt.Sprintf("gofac: resolve failed: %v", err))
	}
}

// MustResolve resolves out within the scope or panics.
func (s *Scope) MustResolve(out any) {
	if err := s.Resolve(out); err != nil {
		panic(fmt.Sprintf("gofac: scope resolve failed: %v", err))
	}
}

// Get resolves T from the root container.
func Get[T any](c *Container) (T, error) {
	var zero T
	svcType := reflect.TypeOf((*T)(nil)).Elem()
	instance, err := c.resolve(svcType, nil, make(map[reflect.Type]bool))
	if err != nil {
		return zero, fmt.Errorf("gofac: get %s: %w", svcType, err)
	}
	return getTyped[T](svcType, instance)
}

// MustGet resolves T or panics.
func MustGet[T any](c *Container) T {
	inst, err := Get[T](c)
	if err != nil {
		panic(err)
	}
	return inst
}

// ScopeGet resolves T within s, supporting Scoped lifetimes.
func ScopeGet[T any](s *Scope) (T, error) {
	var zero T
	svcType := reflect.TypeOf((*T)(nil)).Elem()
	instance, err := s.root.resolve(svcType, s, make(map[reflect.Type]bool))
	if err != nil {
		return zero, fmt.Errorf("gofac: scope get %s: %w", svcType, err)
	}
	return getTyped[T](svcType, instance)
}

// ScopeMustGet resolves T within s or panics.
func ScopeMustGet[T any](s *Scope) T {
	inst, err := ScopeGet[T](s)
	if err != nil {
		panic(err)
	}
	return inst
}

// Reset clears all registrations and caches (tests only).
func (c *Container) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.services = make(map[reflect.Type]*ServiceDef)
	c.order = nil
}

// Reset drops the Scoped instances cached in s.
func (s *Scope) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scopedInst = make(map[reflect.Type]reflect.Value)
}
