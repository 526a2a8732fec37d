package devserver

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/oakmart/shopfront/core"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(SQLiteStoreConfig{
		DSN: filepath.Join(t.TempDir(), "devserver.db"),
	})
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func testUser(email string) User {
	now := time.Now().UTC()
	return User{
		ID:           "u-" + email,
		Email:        email,
		Name:         "Tester",
		PasswordHash: "hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestSQLiteStore_UserLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := testUser("a@b.c")
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Duplicate email is rejected with the sentinel.
	dup := testUser("a@b.c")
	dup.ID = "u-other"
	if err := store.CreateUser(ctx, dup); !errors.Is(err, ErrUserExists) {
		t.Fatalf("got %v, want ErrUserExists", err)
	}

	got, ok, err := store.GetUserByEmail(ctx, "a@b.c")
	if err != nil || !ok {
		t.Fatalf("get by email: %v/%v", ok, err)
	}
	if got.ID != user.ID || got.PasswordHash != "hash" {
		t.Errorf("got %+v", got)
	}

	got.Name = "Renamed"
	got.Phone = "555"
	if err := store.UpdateUser(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _, _ = store.GetUserByID(ctx, user.ID)
	if got.Name != "Renamed" || got.Phone != "555" {
		t.Errorf("got %+v after update", got)
	}

	missing := testUser("missing@b.c")
	if err := store.UpdateUser(ctx, missing); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("got %v, want ErrUserNotFound", err)
	}
}

func TestSQLiteStore_SessionLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	live := Session{ID: "s1", UserID: "u1", Token: "tok-live", ExpiresAt: now.Add(time.Hour), CreatedAt: now}
	expired := Session{ID: "s2", UserID: "u1", Token: "tok-dead", ExpiresAt: now.Add(-time.Hour), CreatedAt: now}
	for _, sess := range []Session{live, expired} {
		if err := store.CreateSession(ctx, sess); err != nil {
			t.Fatalf("create session: %v", err)
		}
	}

	got, ok, err := store.GetSessionByToken(ctx, "tok-live")
	if err != nil || !ok || got.UserID != "u1" {
		t.Fatalf("get session: %+v/%v/%v", got, ok, err)
	}

	dropped, err := store.CleanExpiredSessions(ctx)
	if err != nil {
		t.Fatalf("clean: %v", err)
	}
	if dropped != 1 {
		t.Errorf("got %d dropped, want 1", dropped)
	}
	if _, ok, _ := store.GetSessionByToken(ctx, "tok-dead"); ok {
		t.Error("expired session survived cleanup")
	}
	if _, ok, _ := store.GetSessionByToken(ctx, "tok-live"); !ok {
		t.Error("live session was cleaned up")
	}

	if err := store.DeleteSession(ctx, "s1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := store.GetSessionByToken(ctx, "tok-live"); ok {
		t.Error("deleted session still resolvable")
	}
}

func TestSQLiteStore_ProductPaging(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	names := []string{"Alpha", "Bravo", "Charlie", "Delta", "Echo"}
	for i, name := range names {
		err := store.UpsertProduct(ctx, core.Product{ID: name, Name: name, Price: float64(i + 1)})
		if err != nil {
			t.Fatalf("upsert %s: %v", name, err)
		}
	}

	products, total, err := store.ListProducts(ctx, 2, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 5 {
		t.Errorf("got total %d, want 5", total)
	}
	if len(products) != 2 || products[0].Name != "Charlie" || products[1].Name != "Delta" {
		t.Errorf("got page %+v", products)
	}

	// Upsert replaces in place.
	if err := store.UpsertProduct(ctx, core.Product{ID: "Alpha", Name: "Alpha", Price: 99, Stock: 7}); err != nil {
		t.Fatalf("re-upsert: %v", err)
	}
	got, ok, err := store.GetProduct(ctx, "Alpha")
	if err != nil || !ok {
		t.Fatalf("get: %v/%v", ok, err)
	}
	if got.Price != 99 || got.Stock != 7 {
		t.Errorf("got %+v", got)
	}

	if _, ok, _ := store.GetProduct(ctx, "absent"); ok {
		t.Error("expected missing product")
	}
}

func TestSQLiteStore_CartRows(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	items := []CartItem{
		{ID: "c1", UserID: "u1", ProductID: "p1", Quantity: 2},
		{ID: "c2", UserID: "u1", ProductID: "p2", Quantity: 1},
		{ID: "c3", UserID: "u2", ProductID: "p1", Quantity: 5},
	}
	for _, item := range items {
		if err := store.UpsertCartItem(ctx, item); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	// Upsert on the same (user, product) replaces the quantity.
	if err := store.UpsertCartItem(ctx, CartItem{ID: "c9", UserID: "u1", ProductID: "p1", Quantity: 4}); err != nil {
		t.Fatalf("re-upsert: %v", err)
	}
	got, ok, err := store.GetCartItem(ctx, "u1", "p1")
	if err != nil || !ok || got.Quantity != 4 {
		t.Fatalf("got %+v/%v/%v", got, ok, err)
	}

	rows, err := store.ListCartItems(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows for u1, want 2", len(rows))
	}

	if err := store.DeleteCartItem(ctx, "u1", "p2"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.DeleteCartItem(ctx, "u1", "p2"); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("got %v, want ErrItemNotFound", err)
	}

	if err := store.ClearCart(ctx, "u1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	rows, _ = store.ListCartItems(ctx, "u1")
	if len(rows) != 0 {
		t.Errorf("got %d rows after clear", len(rows))
	}

	// The other user's cart is untouched.
	rows, _ = store.ListCartItems(ctx, "u2")
	if len(rows) != 1 {
		t.Errorf("u2 cart affected: %d rows", len(rows))
	}
}
