package devserver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/oakmart/shopfront/core"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL DEFAULT '',
	phone TEXT NOT NULL DEFAULT '',
	address TEXT NOT NULL DEFAULT '',
	password_hash TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	token TEXT NOT NULL UNIQUE,
	expires_at TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS products (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	price REAL NOT NULL,
	stock INTEGER NOT NULL DEFAULT 0,
	image TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS cart_items (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	product_id TEXT NOT NULL,
	quantity INTEGER NOT NULL,
	created_at TEXT NOT NULL,
	UNIQUE(user_id, product_id)
);`

// SQLiteStoreConfig configures the SQLite-backed stub store.
type SQLiteStoreConfig struct {
	DSN string
}

// SQLiteStore persists stub backend state in SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// DefaultSQLitePath returns the default database path for the devserver.
func DefaultSQLitePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("devserver: resolve user home: %w", err)
	}
	return filepath.Join(home, ".shopfront", "devserver.db"), nil
}

// NewSQLiteStore opens (or creates) the stub backend database.
func NewSQLiteStore(cfg SQLiteStoreConfig) (*SQLiteStore, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, errors.New("devserver: sqlite store dsn is required")
	}

	if dir := filepath.Dir(cfg.DSN); dir != "." && !strings.HasPrefix(cfg.DSN, "file:") {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("devserver: create store dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("devserver: sqlite open: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("devserver: sqlite set WAL mode: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("devserver: sqlite create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// CreateUser adds a new user record.
func (s *SQLiteStore) CreateUser(ctx context.Context, u User) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO users (id, email, name, phone, address, password_hash, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.Name, u.Phone, u.Address, u.PasswordHash,
		formatTime(u.CreatedAt), formatTime(u.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return ErrUserExists
		}
		return fmt.Errorf("devserver: sqlite create user: %w", err)
	}
	return nil
}

// GetUserByEmail retrieves a user by email address.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (User, bool, error) {
	return s.getUser(ctx, `WHERE email = ?`, email)
}

// GetUserByID retrieves a user by ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (User, bool, error) {
	return s.getUser(ctx, `WHERE id = ?`, id)
}

func (s *SQLiteStore) getUser(ctx context.Context, where string, arg any) (User, bool, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, email, name, phone, address, password_hash, created_at, updated_at
FROM users `+where, arg)

	var u User
	var createdAt, updatedAt string
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Phone, &u.Address, &u.PasswordHash, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, false, nil
		}
		return User{}, false, fmt.Errorf("devserver: sqlite get user: %w", err)
	}
	u.CreatedAt = parseTime(createdAt)
	u.UpdatedAt = parseTime(updatedAt)
	return u, true, nil
}

// UpdateUser modifies an existing user record.
func (s *SQLiteStore) UpdateUser(ctx context.Context, u User) error {
	res, err := s.db.ExecContext(ctx, `
UPDATE users SET name = ?, phone = ?, address = ?, updated_at = ?
WHERE id = ?`,
		u.Name, u.Phone, u.Address, formatTime(time.Now().UTC()), u.ID,
	)
	if err != nil {
		return fmt.Errorf("devserver: sqlite update user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("devserver: sqlite update user: %w", err)
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// CreateSession creates a new session for a user.
func (s *SQLiteStore) CreateSession(ctx context.Context, sess Session) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO sessions (id, user_id, token, expires_at, created_at)
VALUES (?, ?, ?, ?, ?)`,
		sess.ID, sess.UserID, sess.Token, formatTime(sess.ExpiresAt), formatTime(sess.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("devserver: sqlite create session: %w", err)
	}
	return nil
}

// GetSessionByToken retrieves a session by token.
func (s *SQLiteStore) GetSessionByToken(ctx context.Context, token string) (Session, bool, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, user_id, token, expires_at, created_at
FROM sessions WHERE token = ?`, token)

	var sess Session
	var expiresAt, createdAt string
	err := row.Scan(&sess.ID, &sess.UserID, &sess.Token, &expiresAt, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, false, nil
		}
		return Session{}, false, fmt.Errorf("devserver: sqlite get session: %w", err)
	}
	sess.ExpiresAt = parseTime(expiresAt)
	sess.CreatedAt = parseTime(createdAt)
	return sess, true, nil
}

// DeleteSession removes a session by ID.
func (s *SQLiteStore) DeleteSession(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("devserver: sqlite delete session: %w", err)
	}
	return nil
}

// CleanExpiredSessions removes all expired sessions.
func (s *SQLiteStore) CleanExpiredSessions(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < ?`,
		formatTime(time.Now().UTC()))
	if err != nil {
		return 0, fmt.Errorf("devserver: sqlite clean sessions: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("devserver: sqlite clean sessions: %w", err)
	}
	return int(affected), nil
}

// UpsertProduct inserts or replaces a catalog product.
func (s *SQLiteStore) UpsertProduct(ctx context.Context, p core.Product) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO products (id, name, description, price, stock, image, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	name = excluded.name,
	description = excluded.description,
	price = excluded.price,
	stock = excluded.stock,
	image = excluded.image`,
		p.ID, p.Name, p.Description, p.Price, p.Stock, p.Image,
		formatTime(time.Now().UTC()),
	)
	if err != nil {
		return fmt.Errorf("devserver: sqlite upsert product: %w", err)
	}
	return nil
}

// ListProducts returns one catalog page plus the total product count.
func (s *SQLiteStore) ListProducts(ctx context.Context, page, limit int) ([]core.Product, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("devserver: sqlite count products: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT id, name, description, price, stock, image
FROM products
ORDER BY name ASC
LIMIT ? OFFSET ?`, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("devserver: sqlite list products: %w", err)
	}
	defer rows.Close()

	var products []core.Product
	for rows.Next() {
		var p core.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.Image); err != nil {
			return nil, 0, fmt.Errorf("devserver: sqlite scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("devserver: sqlite product rows: %w", err)
	}
	return products, total, nil
}

// GetProduct retrieves a product by ID.
func (s *SQLiteStore) GetProduct(ctx context.Context, id string) (core.Product, bool, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, name, description, price, stock, image
FROM products WHERE id = ?`, id)

	var p core.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.Image)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Product{}, false, nil
		}
		return core.Product{}, false, fmt.Errorf("devserver: sqlite get product: %w", err)
	}
	return p, true, nil
}

// ListCartItems returns a user's cart rows in insertion order.
func (s *SQLiteStore) ListCartItems(ctx context.Context, userID string) ([]CartItem, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, user_id, product_id, quantity
FROM cart_items
WHERE user_id = ?
ORDER BY created_at ASC, id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("devserver: sqlite list cart items: %w", err)
	}
	defer rows.Close()

	var items []CartItem
	for rows.Next() {
		var item CartItem
		if err := rows.Scan(&item.ID, &item.UserID, &item.ProductID, &item.Quantity); err != nil {
			return nil, fmt.Errorf("devserver: sqlite scan cart item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("devserver: sqlite cart item rows: %w", err)
	}
	return items, nil
}

// GetCartItem retrieves one cart row by product.
func (s *SQLiteStore) GetCartItem(ctx context.Context, userID, productID string) (CartItem, bool, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, user_id, product_id, quantity
FROM cart_items WHERE user_id = ? AND product_id = ?`, userID, productID)

	var item CartItem
	err := row.Scan(&item.ID, &item.UserID, &item.ProductID, &item.Quantity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CartItem{}, false, nil
		}
		return CartItem{}, false, fmt.Errorf("devserver: sqlite get cart item: %w", err)
	}
	return item, true, nil
}

// UpsertCartItem inserts or replaces a cart row.
func (s *SQLiteStore) UpsertCartItem(ctx context.Context, item CartItem) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO cart_items (id, user_id, product_id, quantity, created_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(user_id, product_id) DO UPDATE SET
	quantity = excluded.quantity`,
		item.ID, item.UserID, item.ProductID, item.Quantity,
		formatTime(time.Now().UTC()),
	)
	if err != nil {
		return fmt.Errorf("devserver: sqlite upsert cart item: %w", err)
	}
	return nil
}

// DeleteCartItem removes a product from a user's cart. Returns
// ErrItemNotFound when no row matched.
func (s *SQLiteStore) DeleteCartItem(ctx context.Context, userID, productID string) error {
	res, err := s.db.ExecContext(ctx, `
DELETE FROM cart_items WHERE user_id = ? AND product_id = ?`, userID, productID)
	if err != nil {
		return fmt.Errorf("devserver: sqlite delete cart item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("devserver: sqlite delete cart item: %w", err)
	}
	if affected == 0 {
		return ErrItemNotFound
	}
	return nil
}

// ClearCart removes all rows from a user's cart.
func (s *SQLiteStore) ClearCart(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("devserver: sqlite clear cart: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) time.Time {
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return parsed.UTC()
}

var _ Store = (*SQLiteStore)(nil)
