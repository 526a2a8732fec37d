package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/oakmart/shopfront/core"
)

type cartMutationRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func (s *Server) handleGetCart(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	s.writeCart(r.Context(), w, user.ID)
}

func (s *Server) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req cartMutationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.ProductID = strings.TrimSpace(req.ProductID)
	if req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "productId is required")
		return
	}
	if req.Quantity < 1 {
		req.Quantity = 1
	}

	product, found, err := s.store.GetProduct(r.Context(), req.ProductID)
	if err != nil {
		s.logger.Error("product lookup failed", "product_id", req.ProductID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to add to cart")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}

	item, exists, err := s.store.GetCartItem(r.Context(), user.ID, req.ProductID)
	if err != nil {
		s.logger.Error("cart lookup failed", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to add to cart")
		return
	}
	if exists {
		item.Quantity += req.Quantity
	} else {
		item = CartItem{
			ID:        uuid.NewString(),
			UserID:    user.ID,
			ProductID: req.ProductID,
			Quantity:  req.Quantity,
		}
	}
	if product.Stock > 0 && item.Quantity > product.Stock {
		writeError(w, http.StatusBadRequest, "Not enough stock available")
		return
	}

	if err := s.store.UpsertCartItem(r.Context(), item); err != nil {
		s.logger.Error("cart upsert failed", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to add to cart")
		return
	}

	s.writeCart(r.Context(), w, user.ID)
}

func (s *Server) handleUpdateCartItem(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	productID := r.PathValue("productId")

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Quantity < 1 {
		writeError(w, http.StatusBadRequest, "quantity must be at least 1")
		return
	}

	item, exists, err := s.store.GetCartItem(r.Context(), user.ID, productID)
	if err != nil {
		s.logger.Error("cart lookup failed", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update cart")
		return
	}
	if !exists {
		writeError(w, http.StatusNotFound, "Item not found in cart")
		return
	}

	item.Quantity = req.Quantity
	if err := s.store.UpsertCartItem(r.Context(), item); err != nil {
		s.logger.Error("cart upsert failed", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update cart")
		return
	}

	s.writeCart(r.Context(), w, user.ID)
}

func (s *Server) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	productID := r.PathValue("productId")

	if err := s.store.DeleteCartItem(r.Context(), user.ID, productID); err != nil {
		if errors.Is(err, ErrItemNotFound) {
			writeError(w, http.StatusNotFound, "Item not found in cart")
			return
		}
		s.logger.Error("cart delete failed", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to remove from cart")
		return
	}

	s.writeCart(r.Context(), w, user.ID)
}

func (s *Server) handleClearCart(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := s.store.ClearCart(r.Context(), user.ID); err != nil {
		s.logger.Error("cart clear failed", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to clear cart")
		return
	}

	s.writeCart(r.Context(), w, user.ID)
}

// writeCart joins cart rows with their product snapshots and responds with
// the full cart payload. Subtotal and item count are computed server-side;
// clients mirror them verbatim.
func (s *Server) writeCart(ctx context.Context, w http.ResponseWriter, userID string) {
	rows, err := s.store.ListCartItems(ctx, userID)
	if err != nil {
		s.logger.Error("cart list failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load cart")
		return
	}

	items := make([]core.CartLine, 0, len(rows))
	var subtotal float64
	var itemCount int
	for _, row := range rows {
		product, found, err := s.store.GetProduct(ctx, row.ProductID)
		if err != nil {
			s.logger.Error("product join failed", "product_id", row.ProductID, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to load cart")
			return
		}
		if !found {
			// Product removed from catalog after it was carted; skip the row.
			continue
		}
		items = append(items, core.CartLine{
			ID:        row.ID,
			ProductID: row.ProductID,
			Quantity:  row.Quantity,
			Product:   product,
		})
		subtotal += product.Price * float64(row.Quantity)
		itemCount += row.Quantity
	}

	writeData(w, http.StatusOK, map[string]any{
		"items":     items,
		"subtotal":  math.Round(subtotal*100) / 100,
		"itemCount": itemCount,
		"updatedAt": time.Now().UTC().Format(time.RFC3339),
	})
}
