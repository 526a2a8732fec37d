package core

import "testing"

func TestCartSnapshotFromMap_Complete(t *testing.T) {
	snap := CartSnapshotFromMap(map[string]any{
		"items": []any{
			map[string]any{
				"id":        "line-1",
				"productId": "p1",
				"quantity":  2,
				"product":   map[string]any{"id": "p1", "name": "Cup", "price": 9.99},
			},
		},
		"subtotal":  19.98,
		"itemCount": 2,
	})

	if len(snap.Items) != 1 {
		t.Fatalf("got %d items, want 1", len(snap.Items))
	}
	line := snap.Items[0]
	if line.ProductID != "p1" || line.Quantity != 2 {
		t.Errorf("got line %+v", line)
	}
	if line.Product.Name != "Cup" || line.Product.Price != 9.99 {
		t.Errorf("got product %+v", line.Product)
	}
	if snap.Subtotal != 19.98 {
		t.Errorf("got subtotal %v, want 19.98", snap.Subtotal)
	}
	if snap.ItemCount != 2 {
		t.Errorf("got itemCount %v, want 2", snap.ItemCount)
	}
}

func TestCartSnapshotFromMap_MissingItemCountFallsBackToLen(t *testing.T) {
	snap := CartSnapshotFromMap(map[string]any{
		"items": []any{
			map[string]any{"productId": "p1", "quantity": 5},
			map[string]any{"productId": "p2", "quantity": 1},
		},
	})
	if snap.ItemCount != 2 {
		t.Errorf("got itemCount %d, want len(items) fallback of 2", snap.ItemCount)
	}
}

func TestCartSnapshotFromMap_MissingSubtotalStaysZero(t *testing.T) {
	snap := CartSnapshotFromMap(map[string]any{
		"items": []any{
			map[string]any{"productId": "p1", "quantity": 3, "product": map[string]any{"price": 10.0}},
		},
	})
	if snap.Subtotal != 0 {
		t.Errorf("got subtotal %v, want 0 (never derived client-side)", snap.Subtotal)
	}
}

func TestCartSnapshotFromMap_EmptyBody(t *testing.T) {
	snap := CartSnapshotFromMap(map[string]any{})
	if snap.Items == nil {
		t.Error("items should be an empty slice, not nil")
	}
	if snap.ItemCount != 0 || snap.Subtotal != 0 {
		t.Errorf("got %+v, want zero snapshot", snap)
	}
}

func TestCartSnapshotClone_Isolation(t *testing.T) {
	original := CartSnapshot{
		Items:     []CartLine{{ProductID: "p1", Quantity: 1}},
		Subtotal:  5,
		ItemCount: 1,
	}
	clone := original.Clone()
	clone.Items[0].Quantity = 99
	if original.Items[0].Quantity != 1 {
		t.Error("mutating a clone leaked into the original")
	}
}

func TestProductFromMap(t *testing.T) {
	p := ProductFromMap(map[string]any{
		"id":     "p1",
		"name":   "Kettle",
		"price":  54.0,
		"stock":  25,
		"images": []any{"a.jpg", 7, "b.jpg"},
	})
	if p.ID != "p1" || p.Name != "Kettle" || p.Price != 54.0 || p.Stock != 25 {
		t.Errorf("got %+v", p)
	}
	if len(p.Images) != 2 {
		t.Errorf("got images %v, want non-strings skipped", p.Images)
	}
}

func TestUserRecordClone_Nil(t *testing.T) {
	var rec UserRecord
	if rec.Clone() != nil {
		t.Error("nil record should clone to nil")
	}
}

func TestUserRecordAccessors(t *testing.T) {
	rec := UserRecord{"email": "a@b.c", "name": "Ada"}
	if rec.Email() != "a@b.c" || rec.Name() != "Ada" {
		t.Errorf("got %q / %q", rec.Email(), rec.Name())
	}
}
