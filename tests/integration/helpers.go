//go:build integration

// Package integration contains end-to-end tests that drive the full client
// stack against an in-process devserver backed by a real SQLite database.
// They are excluded from normal `go test ./...` runs:
//
//	go test -tags=integration ./tests/integration/... -v -count=1
package integration

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/oakmart/shopfront"
	"github.com/oakmart/shopfront/api"
	"github.com/oakmart/shopfront/credstore"
	"github.com/oakmart/shopfront/devserver"
)

// newBackend starts a seeded devserver over httptest and returns its API
// base URL.
func newBackend(t *testing.T) string {
	t.Helper()

	store, err := devserver.NewSQLiteStore(devserver.SQLiteStoreConfig{
		DSN: filepath.Join(t.TempDir(), "devserver.db"),
	})
	if err != nil {
		t.Fatalf("opening devserver store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	if err := devserver.Seed(context.Background(), store); err != nil {
		t.Fatalf("seeding devserver: %v", err)
	}

	server := devserver.NewServer(devserver.ServerConfig{Store: store})
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	return ts.URL + "/api"
}

// stack is the wired client side: credential store, API client, session,
// and cart sharing one token source.
type stack struct {
	store   credstore.Store
	client  *api.Client
	session *shopfront.Session
	cart    *shopfront.Cart
}

func newStack(t *testing.T, baseURL string) *stack {
	t.Helper()

	store := credstore.NewMemStore()
	t.Cleanup(func() {
		_ = store.Close()
	})

	client, err := api.NewClient(api.Config{
		BaseURL:     baseURL,
		TokenSource: shopfront.StoreTokenSource(store),
	})
	if err != nil {
		t.Fatalf("creating client: %v", err)
	}

	return &stack{
		store:  store,
		client: client,
		session: shopfront.NewSession(shopfront.SessionConfig{
			Store:  store,
			Client: client,
		}),
		cart: shopfront.NewCart(shopfront.CartConfig{Client: client}),
	}
}

// login authenticates the stack as the seeded demo account.
func (s *stack) login(t *testing.T) {
	t.Helper()
	if !s.session.Login(context.Background(), devserver.DemoEmail, devserver.DemoPassword) {
		t.Fatalf("demo login failed: %s", s.session.State().Err)
	}
}
