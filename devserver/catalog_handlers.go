package devserver

import (
	"net/http"
	"strconv"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", defaultPageLimit)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	products, total, err := s.store.ListProducts(r.Context(), page, limit)
	if err != nil {
		s.logger.Error("product list failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	totalPages := (total + limit - 1) / limit
	writeData(w, http.StatusOK, map[string]any{
		"products":   products,
		"page":       page,
		"totalPages": totalPages,
		"total":      total,
	})
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	product, ok, err := s.store.GetProduct(r.Context(), id)
	if err != nil {
		s.logger.Error("product lookup failed", "product_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load product")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}

	writeData(w, http.StatusOK, map[string]any{"product": product})
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
