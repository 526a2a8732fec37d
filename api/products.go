package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/oakmart/shopfront/core"
)

// ListProducts fetches one catalog page. Zero page or limit leaves the
// parameter off so the backend applies its own defaults.
func (c *Client) ListProducts(ctx context.Context, page, limit int) (core.ProductPage, error) {
	query := url.Values{}
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	body, err := c.do(ctx, http.MethodGet, "/products", query, nil)
	if err != nil {
		return core.ProductPage{}, err
	}

	payload := core.Unwrap(body)
	result := core.ProductPage{Products: []core.Product{}}
	for _, item := range core.SliceField(payload, "products") {
		result.Products = append(result.Products, core.ProductFromMap(item))
	}
	if p, ok := core.IntField(payload, "page"); ok {
		result.Page = p
	}
	if tp, ok := core.IntField(payload, "totalPages"); ok {
		result.TotalPages = tp
	}
	return result, nil
}

// GetProduct fetches one product by ID, tolerating every nesting shape the
// backend has been seen to produce.
func (c *Client) GetProduct(ctx context.Context, id string) (core.Product, error) {
	if strings.TrimSpace(id) == "" {
		return core.Product{}, &ValidationError{Message: "product id is required"}
	}

	body, err := c.do(ctx, http.MethodGet, "/products/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return core.Product{}, err
	}
	return core.ProductFromMap(core.UnwrapProduct(body)), nil
}
