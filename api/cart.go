package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/oakmart/shopfront/core"
)

// GetCart fetches the authoritative cart snapshot. Missing itemCount is
// derived as len(items); missing subtotal stays zero rather than being
// summed client-side.
func (c *Client) GetCart(ctx context.Context) (core.CartSnapshot, error) {
	body, err := c.do(ctx, http.MethodGet, "/cart", nil, nil)
	if err != nil {
		return core.CartSnapshot{}, err
	}
	return core.CartSnapshotFromMap(core.Unwrap(body)), nil
}

// AddToCart adds a product (or increases its quantity). The response body
// is deliberately discarded: callers re-read the cart for ground truth.
func (c *Client) AddToCart(ctx context.Context, productID string, quantity int) error {
	if strings.TrimSpace(productID) == "" {
		return &ValidationError{Message: "product id is required"}
	}
	if quantity < 1 {
		return &ValidationError{Message: "quantity must be a positive integer"}
	}

	_, err := c.do(ctx, http.MethodPost, "/cart", nil, map[string]any{
		"productId": productID,
		"quantity":  quantity,
	})
	return err
}

// UpdateCartItem sets the quantity for a product already in the cart.
// Quantity clamping is the caller's contract; this method only rejects
// values the wire format cannot express.
func (c *Client) UpdateCartItem(ctx context.Context, productID string, quantity int) error {
	if strings.TrimSpace(productID) == "" {
		return &ValidationError{Message: "product id is required"}
	}

	_, err := c.do(ctx, http.MethodPut, "/cart/"+url.PathEscape(productID), nil, map[string]any{
		"quantity": quantity,
	})
	return err
}

// RemoveFromCart removes a single product from the cart.
func (c *Client) RemoveFromCart(ctx context.Context, productID string) error {
	if strings.TrimSpace(productID) == "" {
		return &ValidationError{Message: "product id is required"}
	}

	_, err := c.do(ctx, http.MethodDelete, "/cart/"+url.PathEscape(productID), nil, nil)
	return err
}

// ClearCart empties the cart.
func (c *Client) ClearCart(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodDelete, "/cart", nil, nil)
	return err
}
