package shopfront

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/oakmart/shopfront/api"
	"github.com/oakmart/shopfront/core"
	"github.com/oakmart/shopfront/credstore"
)

// Operation-specific fallback messages, used only when neither the backend
// nor the transport produced one.
const (
	loginFallbackMessage   = "Login failed. Please check your credentials."
	profileFallbackMessage = "Failed to load profile."
	updateFallbackMessage  = "Failed to update profile."
)

// SessionState is a copied view of the session manager's state.
type SessionState struct {
	Token         string
	User          core.UserRecord
	Loading       bool
	Err           string
	Authenticated bool
}

// SessionConfig configures a Session.
type SessionConfig struct {
	// Store is the persistent credential store. Required.
	Store credstore.Store

	// Client is the backend API client. Required for Login and the
	// profile operations; Restore and Logout work without it.
	Client *api.Client

	// Emitter receives session.changed and op.failed events. Optional.
	Emitter Emitter

	Logger *slog.Logger
}

// Session owns authentication state: who is logged in, the cached user
// record, and the in-flight/error bookkeeping around login. It is shared
// read-only by all consumers; writes go through its operations.
//
// Overlapping Login calls are deliberately not serialized end-to-end: the
// mutex guards state words only, so two racing logins finish in completion
// order and the last write wins.
type Session struct {
	store   credstore.Store
	client  *api.Client
	emitter Emitter
	logger  *slog.Logger

	mu      sync.Mutex
	token   string
	user    core.UserRecord
	loading bool
	err     string
}

// NewSession creates a session manager. State starts empty; call Restore
// to pick up persisted credentials.
func NewSession(cfg SessionConfig) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		store:   cfg.Store,
		client:  cfg.Client,
		emitter: cfg.Emitter,
		logger:  logger,
	}
}

// State returns a copy of the current session state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SessionState{
		Token:         s.token,
		User:          s.user.Clone(),
		Loading:       s.loading,
		Err:           s.err,
		Authenticated: s.token != "",
	}
}

// Authenticated reports whether a token is present.
func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != ""
}

// Token returns the current token. Usable as an api.TokenSource via
// TokenSource.
func (s *Session) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.token != ""
}

// TokenSource adapts the session for api.Config.TokenSource.
func (s *Session) TokenSource() api.TokenSource {
	return func(context.Context) (string, bool) {
		return s.Token()
	}
}

// Restore loads persisted credentials at startup. A corrupt stored user
// record must not lock the user out: the token is restored first and kept
// even when the user payload fails to parse. Only store read failures are
// returned.
func (s *Session) Restore(ctx context.Context) error {
	if s.store == nil {
		return nil
	}

	token, hasToken, err := s.store.Get(ctx, credstore.KeyToken)
	if err != nil {
		return err
	}

	var user core.UserRecord
	rawUser, hasUser, err := s.store.Get(ctx, credstore.KeyUser)
	if err != nil {
		return err
	}
	if hasUser {
		if jsonErr := json.Unmarshal([]byte(rawUser), &user); jsonErr != nil {
			// Fail open on the user record only; the token stays valid.
			s.logger.Warn("discarding unparseable stored user record", "error", jsonErr)
			user = nil
		}
	}

	if !hasToken {
		return nil
	}

	s.mu.Lock()
	s.token = token
	s.user = user
	s.mu.Unlock()

	emit(s.emitter, NewEvent(EventSessionChanged).WithPayload("reason", "restore"))
	return nil
}

// Login authenticates against the backend. On success it persists the
// token (and user, when the backend sent one), replaces in-memory state,
// and returns true. On any failure it records a user-facing error string
// and returns false; it never panics or surfaces a raw transport error.
func (s *Session) Login(ctx context.Context, email, password string) bool {
	s.mu.Lock()
	s.loading = true
	s.err = ""
	s.mu.Unlock()

	result, err := s.client.Login(ctx, email, password)
	if err != nil {
		message := api.ErrorMessage(err, loginFallbackMessage)
		s.mu.Lock()
		s.loading = false
		s.err = message
		s.mu.Unlock()

		s.logger.Debug("login failed", "error", err)
		emit(s.emitter, NewEvent(EventOpFailed).
			WithPayload("op", "login").
			WithPayload("message", message))
		return false
	}

	s.persistCredentials(ctx, result.Token, result.User)

	s.mu.Lock()
	s.token = result.Token
	s.user = result.User
	s.loading = false
	s.mu.Unlock()

	emit(s.emitter, NewEvent(EventSessionChanged).WithPayload("reason", "login"))
	return true
}

// Logout clears in-memory credentials and removes both persisted entries.
// It is synchronous and never fails; store deletion problems are logged
// and swallowed.
func (s *Session) Logout(ctx context.Context) {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.err = ""
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.Delete(ctx, credstore.KeyToken); err != nil {
			s.logger.Warn("deleting stored token", "error", err)
		}
		if err := s.store.Delete(ctx, credstore.KeyUser); err != nil {
			s.logger.Warn("deleting stored user", "error", err)
		}
	}

	emit(s.emitter, NewEvent(EventSessionChanged).WithPayload("reason", "logout"))
}

// RefreshProfile re-reads the profile from the backend and replaces the
// cached user record wholesale.
func (s *Session) RefreshProfile(ctx context.Context) bool {
	return s.replaceProfile(ctx, "profile", profileFallbackMessage, func() (core.UserRecord, error) {
		return s.client.Profile(ctx)
	})
}

// UpdateProfile sends a partial profile update (email is immutable and
// stripped by the client) and replaces the cached user record with the
// backend's response.
func (s *Session) UpdateProfile(ctx context.Context, fields map[string]any) bool {
	return s.replaceProfile(ctx, "profile.update", updateFallbackMessage, func() (core.UserRecord, error) {
		return s.client.UpdateProfile(ctx, fields)
	})
}

func (s *Session) replaceProfile(ctx context.Context, op, fallback string, call func() (core.UserRecord, error)) bool {
	s.mu.Lock()
	s.loading = true
	s.err = ""
	s.mu.Unlock()

	user, err := call()
	if err != nil {
		message := api.ErrorMessage(err, fallback)
		s.mu.Lock()
		s.loading = false
		s.err = message
		s.mu.Unlock()

		emit(s.emitter, NewEvent(EventOpFailed).
			WithPayload("op", op).
			WithPayload("message", message))
		return false
	}

	s.persistUser(ctx, user)

	s.mu.Lock()
	s.user = user
	s.loading = false
	s.mu.Unlock()

	emit(s.emitter, NewEvent(EventSessionChanged).WithPayload("reason", op))
	return true
}

// persistCredentials writes the token and user to the store. Persistence
// problems degrade to a warning: the in-memory session is still valid for
// this process lifetime.
func (s *Session) persistCredentials(ctx context.Context, token string, user core.UserRecord) {
	if s.store == nil {
		return
	}
	if err := s.store.Set(ctx, credstore.KeyToken, token); err != nil {
		s.logger.Warn("persisting token", "error", err)
	}
	if user != nil {
		s.persistUser(ctx, user)
		return
	}
	// The backend omitted the user; drop any stale cached record.
	if err := s.store.Delete(ctx, credstore.KeyUser); err != nil {
		s.logger.Warn("removing stale stored user", "error", err)
	}
}

func (s *Session) persistUser(ctx context.Context, user core.UserRecord) {
	if s.store == nil || user == nil {
		return
	}
	data, err := json.Marshal(user)
	if err != nil {
		s.logger.Warn("encoding user record", "error", err)
		return
	}
	if err := s.store.Set(ctx, credstore.KeyUser, string(data)); err != nil {
		s.logger.Warn("persisting user record", "error", err)
	}
}

// StoreTokenSource reads the bearer token directly from a credential
// store, for clients wired before a Session exists.
func StoreTokenSource(store credstore.Store) api.TokenSource {
	return func(ctx context.Context) (string, bool) {
		if store == nil {
			return "", false
		}
		token, ok, err := store.Get(ctx, credstore.KeyToken)
		if err != nil || token == "" {
			return "", false
		}
		return token, ok
	}
}
