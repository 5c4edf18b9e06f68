// Package session owns the authentication state machine of the client:
// anonymous -> authenticating -> authenticated, with demotion back to
// anonymous on logout or on any 401 from the backend.
package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/dharitri-health/portal-cli/internal/client/api"
	"github.com/dharitri-health/portal-cli/internal/client/models"
	"github.com/dharitri-health/portal-cli/internal/common"
	"github.com/dharitri-health/portal-cli/internal/logging"
)

type Status int

const (
	StatusAnonymous Status = iota
	StatusAuthenticating
	StatusAuthenticated
)

func (s Status) String() string {
	switch s {
	case StatusAuthenticating:
		return "authenticating"
	case StatusAuthenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// Manager drives the session lifecycle. Logout hooks let dependents (the
// report cache, the chat history) discard their state before a new session
// can request anything; no data crosses session boundaries.
type Manager struct {
	client api.Client
	store  Store
	logger logging.Logger

	mu       sync.Mutex
	status   Status
	token    string
	username string
	role     string
	onLogout []func(context.Context)
}

func NewManager(client api.Client, store Store, logger logging.Logger) *Manager {
	return &Manager{client: client, store: store, logger: logger}
}

// OnLogout registers fn to run whenever the session ends, both on explicit
// logout and on a 401 cascade.
func (m *Manager) OnLogout(fn func(context.Context)) {
	m.mu.Lock()
	m.onLogout = append(m.onLogout, fn)
	m.mu.Unlock()
}

func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

func (m *Manager) IsAuthenticated() bool {
	return m.Status() == StatusAuthenticated
}

func (m *Manager) Username() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.username
}

func (m *Manager) Role() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.role
}

// Restore initializes the session from the persisted token, if any.
//
// The token is trusted without a validation round trip: the session becomes
// authenticated immediately and the first 401 demotes it. This trades a
// possibly stale first screen for a fast start and is intentional, matching
// the portal's historical behavior.
func (m *Manager) Restore(ctx context.Context) error {
	token, err := m.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("restoring session: %w", err)
	}
	if token == "" {
		return nil
	}

	m.client.SetAccessToken(token)

	username, role := claimsFromToken(token)
	m.mu.Lock()
	m.token = token
	m.status = StatusAuthenticated
	m.username = username
	m.role = role
	m.mu.Unlock()

	m.logger.Info(ctx, "session restored", "user", username)
	return nil
}

// Login authenticates against the backend and persists the returned token.
// On failure the session stays anonymous and the error distinguishes
// rejected credentials from an unreachable server.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	m.mu.Lock()
	m.status = StatusAuthenticating
	m.mu.Unlock()

	tok, err := m.client.Login(ctx, username, password)
	if err != nil {
		m.mu.Lock()
		m.status = StatusAnonymous
		m.mu.Unlock()

		switch {
		case errors.Is(err, common.ErrUnauthorized):
			return fmt.Errorf("invalid username or password: %w", err)
		case errors.Is(err, common.ErrUnavailable):
			return fmt.Errorf("could not reach the server: %w", err)
		default:
			return fmt.Errorf("login failed: %w", err)
		}
	}

	if err := m.store.Save(ctx, tok.AccessToken); err != nil {
		// Session still works for this run, it just won't survive a restart.
		m.logger.Warn(ctx, "could not persist token", "error", err)
	}

	sub, role := claimsFromToken(tok.AccessToken)
	if sub == "" {
		sub = username
	}
	if role == "" {
		role = tok.UserRole
	}

	m.mu.Lock()
	m.token = tok.AccessToken
	m.status = StatusAuthenticated
	m.username = sub
	m.role = role
	m.mu.Unlock()

	m.logger.Info(ctx, "logged in", "user", sub, "role", role)
	return nil
}

// Register creates an account. It never authenticates: the caller logs in
// separately afterwards.
func (m *Manager) Register(ctx context.Context, reg models.Registration) error {
	if err := m.client.Register(ctx, reg); err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}
	return nil
}

// Logout clears the persisted token and resets the session. Logout hooks
// run after the state flips, so dependents always observe an anonymous
// session while discarding their data.
func (m *Manager) Logout(ctx context.Context) error {
	err := m.store.Clear(ctx)
	m.reset(ctx)
	if err != nil {
		return fmt.Errorf("clearing stored token: %w", err)
	}
	return nil
}

// HandleAuthError is the 401 cascade target. Any component that sees
// common.ErrUnauthorized calls this; the session ends exactly as if the
// user had logged out.
func (m *Manager) HandleAuthError(ctx context.Context) {
	m.mu.Lock()
	active := m.status != StatusAnonymous
	m.mu.Unlock()
	if !active {
		return
	}

	m.logger.Warn(ctx, "credential rejected by the backend, ending session")
	if err := m.store.Clear(ctx); err != nil {
		m.logger.Warn(ctx, "could not clear stored token", "error", err)
	}
	m.reset(ctx)
}

func (m *Manager) reset(ctx context.Context) {
	m.mu.Lock()
	m.token = ""
	m.username = ""
	m.role = ""
	m.status = StatusAnonymous
	hooks := slices.Clone(m.onLogout)
	m.mu.Unlock()

	m.client.SetAccessToken("")
	for _, fn := range hooks {
		fn(ctx)
	}
}
