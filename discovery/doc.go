// Package discovery turns marked service implementations into a validated,
// ordered registration plan for the gofac container.
//
// # Marking a type
//
// Go has no attributes, so the discoverability marker is plain data attached
// to a type descriptor. A package marks its implementations from init():
//
//	func init() {
//		discovery.Contract[UserRepo]()
//		discovery.Register[*userRepo](discovery.WithLifetime(gofac.Singleton))
//		discovery.Register[*userService](discovery.As[UserService]())
//	}
//
// or by embedding a Marker field whose struct tag carries the same data:
//
//	type userLog struct {
//		discovery.Marker `gofac:"contract=model.UserLog,lifetime=scoped"`
//	}
//	func init() { discovery.Consider[*userLog]() }
//
// # Contracts
//
// Interfaces in Go are satisfied structurally, so "the interfaces a type
// implements" is only meaningful against a known universe. Every Source
// supplies that universe through Contracts. A candidate without an explicit
// contract is bound to the single contract of the universe it implements;
// zero or several matches fail with an AmbiguousContractError.
//
// # Discovery pass
//
// Engine.Discover walks the source once, in order. Each candidate is skipped
// (no marker, or an interface type), accepted (appended to the plan) or
// aborts the pass with the error identifying the offending type. No partial
// plan is ever returned. Apply hands the plan to a Binder, normally a
// *gofac.Container.
package discovery
