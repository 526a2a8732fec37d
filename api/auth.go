package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/oakmart/shopfront/core"
)

// LoginResult is the extracted outcome of a successful login call.
type LoginResult struct {
	Token string
	// User may be nil: the backend is allowed to omit it even on success.
	User core.UserRecord
}

// Login authenticates with the backend. It accepts both response shapes
// transparently: {data: {token, user}} and {token, user}. A response with
// no token in either shape is an *AuthError even when the call itself
// returned 2xx.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return LoginResult{}, &ValidationError{Message: "email and password are required"}
	}

	body, err := c.do(ctx, http.MethodPost, "/auth/login", nil, map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return LoginResult{}, err
	}

	payload := core.Unwrap(body)
	token := core.StringField(payload, "token")
	if token == "" {
		return LoginResult{}, &AuthError{Message: "token not found in response"}
	}

	result := LoginResult{Token: token}
	if user := core.MapField(payload, "user"); user != nil {
		result.User = core.UserRecord(user)
	}
	return result, nil
}

// Profile fetches the authenticated user's profile, tolerating flat and
// nested envelopes.
func (c *Client) Profile(ctx context.Context) (core.UserRecord, error) {
	body, err := c.do(ctx, http.MethodGet, "/auth/profile", nil, nil)
	if err != nil {
		return nil, err
	}
	payload := core.Unwrap(body)
	if user := core.MapField(payload, "user"); user != nil {
		return core.UserRecord(user), nil
	}
	return core.UserRecord(payload), nil
}

// UpdateProfile sends a partial profile update. Email is immutable by
// contract, so the field is stripped before the request goes out. Returns
// the backend's view of the updated profile.
func (c *Client) UpdateProfile(ctx context.Context, fields map[string]any) (core.UserRecord, error) {
	if len(fields) == 0 {
		return nil, &ValidationError{Message: "no profile fields to update"}
	}

	update := make(map[string]any, len(fields))
	for k, v := range fields {
		if strings.EqualFold(k, "email") {
			continue
		}
		update[k] = v
	}
	if len(update) == 0 {
		return nil, &ValidationError{Message: "email cannot be updated"}
	}

	body, err := c.do(ctx, http.MethodPut, "/auth/profile", nil, update)
	if err != nil {
		return nil, err
	}
	payload := core.Unwrap(body)
	if user := core.MapField(payload, "user"); user != nil {
		return core.UserRecord(user), nil
	}
	return core.UserRecord(payload), nil
}
