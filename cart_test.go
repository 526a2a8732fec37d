package shopfront

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/oakmart/shopfront/api"
)

// cartBackend is a minimal in-memory cart endpoint: mutations adjust a
// line map and every GET returns the authoritative snapshot.
type cartBackend struct {
	mu        sync.Mutex
	lines     map[string]int
	prices    map[string]float64
	failNext  bool
	mutations int
	reads     int
}

func newCartBackend() *cartBackend {
	return &cartBackend{
		lines:  map[string]int{},
		prices: map[string]float64{"p1": 9.99, "p2": 25.00},
	}
}

func (b *cartBackend) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()

		if b.failNext {
			b.failNext = false
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"success":false,"message":"Not enough stock available"}`))
			return
		}

		if r.Method == http.MethodGet {
			b.reads++
			items := []map[string]any{}
			var subtotal float64
			var count int
			for id, qty := range b.lines {
				items = append(items, map[string]any{
					"id":        "line-" + id,
					"productId": id,
					"quantity":  qty,
					"product":   map[string]any{"id": id, "price": b.prices[id]},
				})
				subtotal += b.prices[id] * float64(qty)
				count += qty
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"success": true,
				"data":    map[string]any{"items": items, "subtotal": subtotal, "itemCount": count},
			})
			return
		}

		b.mutations++
		var body struct {
			ProductID string `json:"productId"`
			Quantity  int    `json:"quantity"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)

		switch r.Method {
		case http.MethodPost:
			b.lines[body.ProductID] += body.Quantity
		case http.MethodPut:
			id := r.URL.Path[len("/cart/"):]
			b.lines[id] = body.Quantity
		case http.MethodDelete:
			if r.URL.Path == "/cart" {
				b.lines = map[string]int{}
			} else {
				delete(b.lines, r.URL.Path[len("/cart/"):])
			}
		}
		w.Write([]byte(`{"success":true}`))
	}
}

func newTestCart(t *testing.T, backend *cartBackend, emitter Emitter) *Cart {
	t.Helper()
	ts := httptest.NewServer(backend.handler())
	t.Cleanup(ts.Close)
	client, err := api.NewClient(api.Config{BaseURL: ts.URL})
	if err != nil {
		t.Fatalf("creating client: %v", err)
	}
	return NewCart(CartConfig{Client: client, Emitter: emitter})
}

func TestCartAdd_MirrorsBackendSnapshot(t *testing.T) {
	backend := newCartBackend()
	rec := &eventRecorder{}
	cart := newTestCart(t, backend, rec.emitter())

	if !cart.Add(context.Background(), "p1", 1) {
		t.Fatalf("add failed: %s", cart.State().Err)
	}

	state := cart.State()
	if len(state.Items) != 1 || state.Items[0].ProductID != "p1" {
		t.Fatalf("got items %+v", state.Items)
	}
	if state.Subtotal != 9.99 {
		t.Errorf("got subtotal %v, want the backend's 9.99", state.Subtotal)
	}
	if state.ItemCount != 1 {
		t.Errorf("got itemCount %d, want 1", state.ItemCount)
	}

	event, _ := rec.last()
	if event.Kind != EventCartChanged || event.Payload["reason"] != "cart.add" {
		t.Errorf("got event %+v", event)
	}
}

func TestCartMutation_AlwaysReReads(t *testing.T) {
	backend := newCartBackend()
	cart := newTestCart(t, backend, nil)
	ctx := context.Background()

	cart.Add(ctx, "p1", 2)
	cart.UpdateItem(ctx, "p1", 5)
	cart.Remove(ctx, "p1")
	cart.Clear(ctx)

	backend.mu.Lock()
	defer backend.mu.Unlock()
	if backend.mutations != 4 {
		t.Errorf("got %d mutations, want 4", backend.mutations)
	}
	if backend.reads != 4 {
		t.Errorf("got %d reads, want one per mutation", backend.reads)
	}
}

func TestCartFailure_KeepsPriorSnapshot(t *testing.T) {
	backend := newCartBackend()
	rec := &eventRecorder{}
	cart := newTestCart(t, backend, rec.emitter())
	ctx := context.Background()

	if !cart.Add(ctx, "p1", 1) {
		t.Fatalf("add failed: %s", cart.State().Err)
	}
	before := cart.State()

	backend.mu.Lock()
	backend.failNext = true
	backend.mu.Unlock()

	if cart.Add(ctx, "p2", 1) {
		t.Fatal("expected add to fail")
	}

	after := cart.State()
	if len(after.Items) != len(before.Items) || after.Subtotal != before.Subtotal {
		t.Errorf("snapshot changed on failure: %+v -> %+v", before, after)
	}
	if after.Err != "Not enough stock available" {
		t.Errorf("got err %q, want the backend message", after.Err)
	}

	event, _ := rec.last()
	if event.Kind != EventOpFailed || event.Payload["op"] != "cart.add" {
		t.Errorf("got event %+v", event)
	}
}

func TestCartTransportFailure_UsesErrorMessage(t *testing.T) {
	client, err := api.NewClient(api.Config{BaseURL: "http://127.0.0.1:1"})
	if err != nil {
		t.Fatalf("creating client: %v", err)
	}
	cart := NewCart(CartConfig{Client: client})

	before := cart.State()
	if cart.Load(context.Background()) {
		t.Fatal("expected load to fail")
	}

	after := cart.State()
	if len(after.Items) != len(before.Items) {
		t.Error("snapshot changed on transport failure")
	}
	if after.Err == "" {
		t.Error("expected a user-facing error message")
	}
}

func TestCartReset(t *testing.T) {
	backend := newCartBackend()
	rec := &eventRecorder{}
	cart := newTestCart(t, backend, rec.emitter())
	ctx := context.Background()

	cart.Add(ctx, "p1", 3)
	cart.Reset()

	state := cart.State()
	if len(state.Items) != 0 || state.ItemCount != 0 || state.Subtotal != 0 {
		t.Errorf("got state %+v, want empty", state)
	}

	event, _ := rec.last()
	if event.Kind != EventCartChanged || event.Payload["reason"] != "reset" {
		t.Errorf("got event %+v", event)
	}

	// Reset is local only: the backend still holds the lines.
	backend.mu.Lock()
	defer backend.mu.Unlock()
	if backend.lines["p1"] != 3 {
		t.Errorf("backend lines %v, want untouched", backend.lines)
	}
}

func TestCartState_CopyIsolation(t *testing.T) {
	backend := newCartBackend()
	cart := newTestCart(t, backend, nil)

	cart.Add(context.Background(), "p1", 1)
	state := cart.State()
	state.Items[0].Quantity = 99

	if cart.State().Items[0].Quantity != 1 {
		t.Error("mutating a returned state leaked into the cart")
	}
}
