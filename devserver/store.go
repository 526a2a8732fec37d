// Package devserver implements a local stub of the storefront backend:
// the same REST contract the production backend exposes (auth, catalog,
// cart), backed by SQLite, so the client can be exercised end-to-end
// without network access to a real deployment. It is a development
// convenience, not a stand-in for the production service.
package devserver

import (
	"context"
	"errors"
	"time"

	"github.com/oakmart/shopfront/core"
)

// User is a stored demo account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Address      string    `json:"address,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Record converts the user to the wire-format profile mapping.
func (u User) Record() core.UserRecord {
	rec := core.UserRecord{
		"id":    u.ID,
		"email": u.Email,
	}
	if u.Name != "" {
		rec["name"] = u.Name
	}
	if u.Phone != "" {
		rec["phone"] = u.Phone
	}
	if u.Address != "" {
		rec["address"] = u.Address
	}
	return rec
}

// Session is an active bearer-token session.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// CartItem is one stored cart row. The product snapshot is joined in at
// read time.
type CartItem struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Sentinel errors for store operations.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrUserExists      = errors.New("user already exists")
	ErrSessionNotFound = errors.New("session not found")
	ErrProductNotFound = errors.New("product not found")
	ErrItemNotFound    = errors.New("cart item not found")
)

// Store defines the persistence interface for the stub backend.
type Store interface {
	// CreateUser adds a new user record.
	CreateUser(ctx context.Context, u User) error

	// GetUserByEmail retrieves a user by email address.
	GetUserByEmail(ctx context.Context, email string) (User, bool, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id string) (User, bool, error)

	// UpdateUser modifies an existing user record.
	UpdateUser(ctx context.Context, u User) error

	// CreateSession creates a new session for a user.
	CreateSession(ctx context.Context, sess Session) error

	// GetSessionByToken retrieves a session by token.
	GetSessionByToken(ctx context.Context, token string) (Session, bool, error)

	// DeleteSession removes a session by ID.
	DeleteSession(ctx context.Context, id string) error

	// CleanExpiredSessions removes all expired sessions and reports how
	// many were dropped.
	CleanExpiredSessions(ctx context.Context) (int, error)

	// UpsertProduct inserts or replaces a catalog product.
	UpsertProduct(ctx context.Context, p core.Product) error

	// ListProducts returns one catalog page plus the total product count.
	ListProducts(ctx context.Context, page, limit int) ([]core.Product, int, error)

	// GetProduct retrieves a product by ID.
	GetProduct(ctx context.Context, id string) (core.Product, bool, error)

	// ListCartItems returns a user's cart rows in insertion order.
	ListCartItems(ctx context.Context, userID string) ([]CartItem, error)

	// GetCartItem retrieves one cart row by product.
	GetCartItem(ctx context.Context, userID, productID string) (CartItem, bool, error)

	// UpsertCartItem inserts or replaces a cart row.
	UpsertCartItem(ctx context.Context, item CartItem) error

	// DeleteCartItem removes a product from a user's cart. Deleting a
	// product that is not in the cart returns ErrItemNotFound.
	DeleteCartItem(ctx context.Context, userID, productID string) error

	// ClearCart removes all rows from a user's cart.
	ClearCart(ctx context.Context, userID string) error

	// Close releases store resources.
	Close() error
}
