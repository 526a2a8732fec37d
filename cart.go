package shopfront

import (
	"context"
	"log/slog"
	"sync"

	"github.com/oakmart/shopfront/api"
	"github.com/oakmart/shopfront/core"
)

// Operation-specific fallback messages for cart failures.
const (
	loadCartFallbackMessage   = "Failed to load cart."
	addCartFallbackMessage    = "Failed to add item to cart."
	updateCartFallbackMessage = "Failed to update cart item."
	removeCartFallbackMessage = "Failed to remove item from cart."
	clearCartFallbackMessage  = "Failed to clear cart."
)

// CartState is a copied view of the cart synchronizer's state.
type CartState struct {
	Items     []core.CartLine
	Subtotal  float64
	ItemCount int
	Loading   bool
	Err       string
}

// CartConfig configures a Cart.
type CartConfig struct {
	// Client is the backend API client. Required.
	Client *api.Client

	// Emitter receives cart.changed and op.failed events. Optional.
	Emitter Emitter

	Logger *slog.Logger
}

// Cart owns the local cart snapshot and keeps it consistent with the
// backend. Every mutation is read-after-write: the mutating call's
// response body is ignored and a fresh GET /cart supplies the state that
// becomes visible. The snapshot is therefore always backend ground truth,
// never a locally guessed value, at the cost of one extra round trip per
// mutation.
//
// Like the session manager, operations are not serialized end-to-end;
// overlapping mutations resolve last-response-wins.
type Cart struct {
	client  *api.Client
	emitter Emitter
	logger  *slog.Logger

	mu      sync.Mutex
	snap    core.CartSnapshot
	loading bool
	err     string
}

// NewCart creates a cart synchronizer with an empty snapshot.
func NewCart(cfg CartConfig) *Cart {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Cart{
		client:  cfg.Client,
		emitter: cfg.Emitter,
		logger:  logger,
		snap:    core.CartSnapshot{Items: []core.CartLine{}},
	}
}

// State returns a copy of the current cart state.
func (c *Cart) State() CartState {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := c.snap.Clone()
	return CartState{
		Items:     snap.Items,
		Subtotal:  snap.Subtotal,
		ItemCount: snap.ItemCount,
		Loading:   c.loading,
		Err:       c.err,
	}
}

// Reset clears the local snapshot without touching the backend. The view
// layer calls this after logout by convention; the session manager never
// reaches into cart state itself.
func (c *Cart) Reset() {
	c.mu.Lock()
	c.snap = core.CartSnapshot{Items: []core.CartLine{}}
	c.err = ""
	c.loading = false
	c.mu.Unlock()

	emit(c.emitter, NewEvent(EventCartChanged).WithPayload("reason", "reset"))
}

// Load fetches the cart and replaces items, subtotal, and itemCount
// wholesale.
func (c *Cart) Load(ctx context.Context) bool {
	return c.run(ctx, "cart.load", loadCartFallbackMessage, nil)
}

// Add puts a product in the cart (or increases its quantity), then
// re-reads the cart. Quantity must be a positive integer; no upper bound
// is enforced here; stock limits are the backend's call.
func (c *Cart) Add(ctx context.Context, productID string, quantity int) bool {
	return c.run(ctx, "cart.add", addCartFallbackMessage, func() error {
		return c.client.AddToCart(ctx, productID, quantity)
	})
}

// UpdateItem sets the quantity for a product, then re-reads the cart.
// Clamping is the caller's contract: callers must not invoke this with a
// quantity below one (decrement-to-zero is rejected at the call site).
func (c *Cart) UpdateItem(ctx context.Context, productID string, quantity int) bool {
	return c.run(ctx, "cart.update", updateCartFallbackMessage, func() error {
		return c.client.UpdateCartItem(ctx, productID, quantity)
	})
}

// Remove deletes a product from the cart, then re-reads the cart.
func (c *Cart) Remove(ctx context.Context, productID string) bool {
	return c.run(ctx, "cart.remove", removeCartFallbackMessage, func() error {
		return c.client.RemoveFromCart(ctx, productID)
	})
}

// Clear empties the cart, then re-reads it.
func (c *Cart) Clear(ctx context.Context) bool {
	return c.run(ctx, "cart.clear", clearCartFallbackMessage, func() error {
		return c.client.ClearCart(ctx)
	})
}

// run executes one cart operation: clear the previous error, perform the
// mutation (nil for plain loads), then apply a fresh authoritative read.
// On failure the prior snapshot stays visible untouched.
func (c *Cart) run(ctx context.Context, op, fallback string, mutate func() error) bool {
	c.mu.Lock()
	c.loading = true
	c.err = ""
	c.mu.Unlock()

	fail := func(err error) bool {
		message := api.ErrorMessage(err, fallback)
		c.mu.Lock()
		c.loading = false
		c.err = message
		c.mu.Unlock()

		c.logger.Debug("cart operation failed", "op", op, "error", err)
		emit(c.emitter, NewEvent(EventOpFailed).
			WithPayload("op", op).
			WithPayload("message", message))
		return false
	}

	if mutate != nil {
		if err := mutate(); err != nil {
			return fail(err)
		}
	}

	snap, err := c.client.GetCart(ctx)
	if err != nil {
		return fail(err)
	}

	c.mu.Lock()
	c.snap = snap
	c.loading = false
	c.mu.Unlock()

	emit(c.emitter, NewEvent(EventCartChanged).
		WithPayload("reason", op).
		WithPayload("itemCount", snap.ItemCount))
	return true
}
