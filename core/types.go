// Package core defines the shared data model for the shopfront client:
// user records, products, cart snapshots, and the envelope extraction
// helpers that normalize the backend's polymorphic response shapes.
package core

// UserRecord is the opaque profile mapping owned by the session. It is
// replaced wholesale on login or profile refresh and never partially
// mutated.
type UserRecord map[string]any

// Clone returns a shallow copy of the record. A nil record clones to nil.
func (u UserRecord) Clone() UserRecord {
	if u == nil {
		return nil
	}
	out := make(UserRecord, len(u))
	for k, v := range u {
		out[k] = v
	}
	return out
}

// Email returns the record's email field, or "" when absent.
func (u UserRecord) Email() string {
	return StringField(u, "email")
}

// Name returns the record's name field, or "" when absent.
func (u UserRecord) Name() string {
	return StringField(u, "name")
}

// Product is a catalog item snapshot as reported by the backend.
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Price       float64  `json:"price"`
	Stock       int      `json:"stock"`
	Image       string   `json:"image,omitempty"`
	Images      []string `json:"images,omitempty"`
}

// ProductFromMap builds a Product from a decoded response object.
func ProductFromMap(m map[string]any) Product {
	p := Product{
		ID:          StringField(m, "id"),
		Name:        StringField(m, "name"),
		Description: StringField(m, "description"),
		Image:       StringField(m, "image"),
	}
	if price, ok := NumberField(m, "price"); ok {
		p.Price = price
	}
	if stock, ok := IntField(m, "stock"); ok {
		p.Stock = stock
	}
	if raw, ok := m["images"].([]any); ok {
		for _, item := range raw {
			if s, ok := item.(string); ok {
				p.Images = append(p.Images, s)
			}
		}
	}
	return p
}

// ProductPage is one page of the catalog listing.
type ProductPage struct {
	Products   []Product `json:"products"`
	Page       int       `json:"page"`
	TotalPages int       `json:"totalPages"`
}

// CartLine is one entry in the cart. Identity is ProductID for mutation
// addressing and ID for rendering keys. Lines are owned exclusively by
// their CartSnapshot.
type CartLine struct {
	ID        string  `json:"id"`
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Product   Product `json:"product"`
}

// CartLineFromMap builds a CartLine from a decoded response object.
func CartLineFromMap(m map[string]any) CartLine {
	line := CartLine{
		ID:        StringField(m, "id"),
		ProductID: StringField(m, "productId"),
	}
	if qty, ok := IntField(m, "quantity"); ok {
		line.Quantity = qty
	}
	if product := MapField(m, "product"); product != nil {
		line.Product = ProductFromMap(product)
	}
	return line
}

// CartSnapshot mirrors the backend's last cart read. Subtotal and
// ItemCount are whatever the backend reported; the client never derives
// them from Items, with one sanctioned exception: a response missing
// itemCount falls back to len(items). A missing subtotal stays zero.
type CartSnapshot struct {
	Items     []CartLine `json:"items"`
	Subtotal  float64    `json:"subtotal"`
	ItemCount int        `json:"itemCount"`
}

// CartSnapshotFromMap builds a CartSnapshot from an unwrapped cart payload.
func CartSnapshotFromMap(m map[string]any) CartSnapshot {
	snap := CartSnapshot{Items: []CartLine{}}
	for _, item := range SliceField(m, "items") {
		snap.Items = append(snap.Items, CartLineFromMap(item))
	}
	if subtotal, ok := NumberField(m, "subtotal"); ok {
		snap.Subtotal = subtotal
	}
	if count, ok := IntField(m, "itemCount"); ok {
		snap.ItemCount = count
	} else {
		snap.ItemCount = len(snap.Items)
	}
	return snap
}

// Clone returns a deep-enough copy: the items slice is copied so callers
// can hold a snapshot while the owner replaces its own.
func (s CartSnapshot) Clone() CartSnapshot {
	out := s
	out.Items = make([]CartLine, len(s.Items))
	copy(out.Items, s.Items)
	return out
}
