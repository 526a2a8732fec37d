//go:build integration

package integration

import (
	"context"
	"testing"

	"github.com/oakmart/shopfront"
	"github.com/oakmart/shopfront/credstore"
)

func TestLoginBrowseCartFlow(t *testing.T) {
	baseURL := newBackend(t)
	s := newStack(t, baseURL)
	ctx := context.Background()

	s.login(t)
	if got := s.session.State().User.Email(); got == "" {
		t.Fatal("expected user email after login")
	}

	page, err := s.client.ListProducts(ctx, 1, 3)
	if err != nil {
		t.Fatalf("listing products: %v", err)
	}
	if len(page.Products) == 0 {
		t.Fatal("expected seeded products")
	}
	first := page.Products[0]

	if !s.cart.Add(ctx, first.ID, 2) {
		t.Fatalf("adding to cart: %s", s.cart.State().Err)
	}
	state := s.cart.State()
	if state.ItemCount != 2 {
		t.Fatalf("expected itemCount 2, got %d", state.ItemCount)
	}
	wantSubtotal := first.Price * 2
	if state.Subtotal != wantSubtotal {
		t.Fatalf("expected subtotal %.2f, got %.2f", wantSubtotal, state.Subtotal)
	}

	if !s.cart.UpdateItem(ctx, first.ID, 1) {
		t.Fatalf("updating cart: %s", s.cart.State().Err)
	}
	if got := s.cart.State().ItemCount; got != 1 {
		t.Fatalf("expected itemCount 1 after update, got %d", got)
	}

	if !s.cart.Remove(ctx, first.ID) {
		t.Fatalf("removing from cart: %s", s.cart.State().Err)
	}
	if got := len(s.cart.State().Items); got != 0 {
		t.Fatalf("expected empty cart, got %d items", got)
	}
}

func TestSessionPersistsAcrossStacks(t *testing.T) {
	baseURL := newBackend(t)
	s := newStack(t, baseURL)
	ctx := context.Background()

	s.login(t)
	token, ok := s.session.Token()
	if !ok {
		t.Fatal("expected token after login")
	}

	// A second session sharing the credential store restores the same
	// token without logging in again.
	restored := shopfront.NewSession(shopfront.SessionConfig{
		Store:  s.store,
		Client: s.client,
	})
	if err := restored.Restore(ctx); err != nil {
		t.Fatalf("restoring session: %v", err)
	}
	if got, _ := restored.Token(); got != token {
		t.Fatalf("expected restored token %q, got %q", token, got)
	}

	if !restored.RefreshProfile(ctx) {
		t.Fatalf("refreshing profile: %s", restored.State().Err)
	}
	if got := restored.State().User.Email(); got == "" {
		t.Fatal("expected email on refreshed profile")
	}
}

func TestProfileUpdateRoundTrip(t *testing.T) {
	baseURL := newBackend(t)
	s := newStack(t, baseURL)
	ctx := context.Background()

	s.login(t)
	if !s.session.UpdateProfile(ctx, map[string]any{"name": "Integration Shopper", "phone": "555-0100"}) {
		t.Fatalf("updating profile: %s", s.session.State().Err)
	}
	if got := s.session.State().User.Name(); got != "Integration Shopper" {
		t.Fatalf("expected updated name, got %q", got)
	}

	// Email updates are rejected client-side before any request is made.
	if s.session.UpdateProfile(ctx, map[string]any{"email": "new@example.com"}) {
		t.Fatal("expected email update to fail")
	}
}

func TestLogoutClearsCredentials(t *testing.T) {
	baseURL := newBackend(t)
	s := newStack(t, baseURL)
	ctx := context.Background()

	s.login(t)
	s.session.Logout(ctx)
	s.cart.Reset()

	if s.session.Authenticated() {
		t.Fatal("expected unauthenticated session after logout")
	}
	if _, ok, _ := s.store.Get(ctx, credstore.KeyToken); ok {
		t.Fatal("expected token removed from store")
	}
	if got := s.cart.State().ItemCount; got != 0 {
		t.Fatalf("expected reset cart, got itemCount %d", got)
	}

	// The backend session is gone too: authenticated calls now fail.
	if _, err := s.client.GetCart(ctx); err == nil {
		t.Fatal("expected cart fetch to fail after logout")
	}
}
