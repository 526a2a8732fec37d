// Package shopfront implements the client-side state layer of a storefront:
// the session manager, the cart synchronizer, and the transient notification
// channel. Each owns its state exclusively and exposes it as copied
// snapshots; consumers dispatch operations and re-render from the results.
//
// The design favors consistency over round trips: cart mutations never
// guess at outcomes, they re-read the backend's authoritative snapshot
// after every write. Session state lives in a persistent credential store
// (see credstore) so a restart picks up where the user left off.
//
// Cross-invalidation is the caller's responsibility by convention: after a
// login the view layer reloads the cart, after a logout it resets the cart
// view. The managers never mutate each other's state.
//
// Subpackages:
//
//	import "github.com/oakmart/shopfront/api"       // backend HTTP collaborator
//	import "github.com/oakmart/shopfront/core"      // shared data model
//	import "github.com/oakmart/shopfront/credstore" // persistent credential store
//	import "github.com/oakmart/shopfront/bus"       // state-change event bus
package shopfront
