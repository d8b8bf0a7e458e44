// Package session owns the authenticated identity and the durable token:
// login, restore-on-startup, and logout. Every failure path ends in "not
// authenticated"; the manager never retries with stale credentials.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"sge-console/config"
	"sge-console/core/localstore"
	"sge-console/core/rbac"
	"sge-console/core/restapi"
	"sge-console/core/state"
	"sge-console/core/utils"
)

// ErrNoSession means there is nothing to restore; the caller shows login.
var ErrNoSession = errors.New("no saved session")

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string        `json:"access_token"`
	TokenType   string        `json:"token_type"`
	User        rbac.Identity `json:"user"`
}

type Manager struct {
	client   *restapi.Client
	store    *state.Store
	sessions *localstore.SessionStore
	vault    tokenVault
	logger   *utils.Logger

	mu    sync.RWMutex
	token string

	// bootstrap runs the dashboard fan-out after a successful login or
	// restore; wired by the gateway bundle.
	bootstrap func(context.Context)
}

func NewManager(cfg *config.AppConfig, store *state.Store, sessions *localstore.SessionStore, logger *utils.Logger) *Manager {
	return &Manager{
		store:    store,
		sessions: sessions,
		vault:    newTokenVault(cfg.State.TokenSecret),
		logger:   logger,
	}
}

// SetClient breaks the construction cycle: the REST client needs the
// manager as its token provider.
func (m *Manager) SetClient(c *restapi.Client) { m.client = c }

func (m *Manager) SetBootstrap(fn func(context.Context)) { m.bootstrap = fn }

// Token implements restapi.TokenProvider.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

func (m *Manager) setToken(tok string) {
	m.mu.Lock()
	m.token = tok
	m.mu.Unlock()
}

func (m *Manager) Login(ctx context.Context, username, password string) error {
	if err := utils.ValidateUsername(username); err != nil {
		m.store.PostError("Username non valido")
		return err
	}
	var resp loginResponse
	err := m.client.PostJSON(ctx, "/api/auth/login", loginRequest{Username: username, Password: password}, &resp)
	if err != nil {
		m.store.PostError(err.Error())
		return err
	}
	if resp.AccessToken == "" {
		err := errors.New("login response carried no token")
		m.store.PostError("Errore durante il login")
		return err
	}
	resp.User.Active = true
	m.setToken(resp.AccessToken)
	m.persist(ctx, resp.User, resp.AccessToken)
	m.store.Dispatch(state.LoginSucceeded{Identity: resp.User})
	m.store.PostSuccess("Login effettuato con successo!")
	if m.bootstrap != nil {
		m.bootstrap(ctx)
	}
	return nil
}

// Restore validates a saved token against the backend. Any failure clears
// the token first: a stale credential is never kept for a second try.
func (m *Manager) Restore(ctx context.Context) error {
	saved, ok, err := m.sessions.Load(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoSession
	}
	token, err := m.vault.open(saved.TokenBlob, saved.KeySalt)
	if err != nil {
		m.discard(ctx)
		return err
	}
	if expired(token, time.Now()) {
		m.discard(ctx)
		return errors.New("saved token is expired")
	}
	m.setToken(token)
	var identity rbac.Identity
	if err := m.client.GetJSON(ctx, "/api/auth/me", nil, &identity); err != nil {
		m.setToken("")
		m.discard(ctx)
		return err
	}
	identity.Active = true
	m.store.Dispatch(state.SessionRestored{Identity: identity})
	if m.bootstrap != nil {
		m.bootstrap(ctx)
	}
	return nil
}

// Logout clears identity and token synchronously; the reducer lands the
// console back on the login view.
func (m *Manager) Logout(ctx context.Context) {
	m.setToken("")
	m.discard(ctx)
	m.store.Dispatch(state.LoggedOut{})
}

// Invalidate handles a backend 401 on any call: the session is gone.
func (m *Manager) Invalidate(ctx context.Context) {
	m.Logout(ctx)
	m.store.PostError("Sessione scaduta, effettuare di nuovo il login")
}

func (m *Manager) persist(ctx context.Context, identity rbac.Identity, token string) {
	blob, salt, err := m.vault.seal(token)
	if err != nil {
		if m.logger != nil {
			m.logger.Errorf("token seal: %v", err)
		}
		return
	}
	err = m.sessions.Save(ctx, localstore.SavedSession{
		Identity:  identity,
		TokenBlob: blob,
		KeySalt:   salt,
		SavedAt:   time.Now().UTC(),
	})
	if err != nil && m.logger != nil {
		m.logger.Errorf("session save: %v", err)
	}
}

func (m *Manager) discard(ctx context.Context) {
	if err := m.sessions.Clear(ctx); err != nil && m.logger != nil {
		m.logger.Errorf("session clear: %v", err)
	}
}

// expired inspects the token's exp claim without verifying the signature;
// verification is the backend's job, this only skips a round trip that is
// certain to fail.
func expired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return false // opaque token, let the backend decide
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}
