package session

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"sge-console/config"
	"sge-console/core/localstore"
	"sge-console/core/rbac"
	"sge-console/core/restapi"
	"sge-console/core/state"
	"sge-console/core/utils"
	"sge-console/core/view"
)

type env struct {
	cfg      *config.AppConfig
	mgr      *Manager
	store    *state.Store
	sessions *localstore.SessionStore
	logger   *utils.Logger
}

func newEnv(t *testing.T, handler http.Handler) *env {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.AppConfig{
		BaseURL:        srv.URL,
		RequestTimeout: 2 * time.Second,
		RateLimit:      config.RateLimitConfig{PerSecond: 100, Burst: 100},
		State: config.StateConfig{
			Driver:      "sqlite",
			Path:        filepath.Join(t.TempDir(), "console.db"),
			TokenSecret: "test-secret",
		},
	}
	logger := utils.NewLoggerTo(io.Discard)
	db, err := localstore.NewDB(cfg, logger)
	if err != nil {
		t.Fatalf("local db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := localstore.ApplyMigrations(context.Background(), db, cfg, logger); err != nil {
		t.Fatalf("migrations: %v", err)
	}

	store := state.NewStore()
	store.SetNoticeTTL(10 * time.Millisecond)
	sessions := localstore.NewSessionStore(db)
	mgr := NewManager(cfg, store, sessions, logger)
	mgr.SetClient(restapi.NewClient(cfg, logger, mgr.Token))
	return &env{cfg: cfg, mgr: mgr, store: store, sessions: sessions, logger: logger}
}

// freshManager simulates a process restart over the same saved session.
func (e *env) freshManager() (*Manager, *state.Store) {
	store := state.NewStore()
	mgr := NewManager(e.cfg, store, e.sessions, e.logger)
	mgr.SetClient(restapi.NewClient(e.cfg, e.logger, mgr.Token))
	return mgr, store
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "admin",
		"exp": exp.Unix(),
	})
	s, err := tok.SignedString([]byte("backend-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func loginHandler(token string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Username != "admin" || req.Password != "admin123" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Credenziali non valide"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": token,
			"token_type":   "bearer",
			"user": map[string]any{
				"username":  "admin",
				"role":      "admin",
				"full_name": "Amministratore Sistema",
			},
		})
	})
	mux.HandleFunc("/api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+token {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Token non valido"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"username":  "admin",
			"role":      "admin",
			"full_name": "Amministratore Sistema",
		})
	})
	return mux
}

func TestLoginSuccess(t *testing.T) {
	token := signedToken(t, time.Now().Add(time.Hour))
	e := newEnv(t, loginHandler(token))

	if err := e.mgr.Login(context.Background(), "admin", "admin123"); err != nil {
		t.Fatalf("login: %v", err)
	}
	st := e.store.Snapshot()
	if st.Identity == nil || st.Identity.Role != "admin" {
		t.Fatalf("identity not established")
	}
	if st.ActiveView != view.Dashboard {
		t.Fatalf("login should land on dashboard, got %s", st.ActiveView)
	}
	if st.Notice == nil || st.Notice.Kind != state.NoticeSuccess {
		t.Fatalf("success notice missing")
	}
	if e.mgr.Token() != token {
		t.Fatalf("token not held")
	}
	if _, ok, err := e.sessions.Load(context.Background()); err != nil || !ok {
		t.Fatalf("session not persisted (ok=%v err=%v)", ok, err)
	}
}

func TestLoginFailure(t *testing.T) {
	e := newEnv(t, loginHandler(signedToken(t, time.Now().Add(time.Hour))))

	if err := e.mgr.Login(context.Background(), "admin", "wrong"); err == nil {
		t.Fatalf("expected login failure")
	}
	st := e.store.Snapshot()
	if st.Identity != nil || st.ActiveView != view.Login {
		t.Fatalf("failed login must stay unauthenticated")
	}
	if st.Notice == nil || st.Notice.Kind != state.NoticeError {
		t.Fatalf("error notice missing")
	}
	if e.mgr.Token() != "" {
		t.Fatalf("token must not be set on failure")
	}
	if _, ok, _ := e.sessions.Load(context.Background()); ok {
		t.Fatalf("failed login must not persist a session")
	}
}

func TestLoginRejectsBadUsername(t *testing.T) {
	e := newEnv(t, loginHandler("tok"))
	if err := e.mgr.Login(context.Background(), "a b!", "x"); err == nil {
		t.Fatalf("expected validation failure")
	}
	if n := e.store.Snapshot().Notice; n == nil || n.Text != "Username non valido" {
		t.Fatalf("validation notice missing")
	}
}

func TestRestoreSuccess(t *testing.T) {
	token := signedToken(t, time.Now().Add(time.Hour))
	e := newEnv(t, loginHandler(token))

	if err := e.mgr.Login(context.Background(), "admin", "admin123"); err != nil {
		t.Fatalf("login: %v", err)
	}
	mgr, store := e.freshManager()
	if err := mgr.Restore(context.Background()); err != nil {
		t.Fatalf("restore: %v", err)
	}
	st := store.Snapshot()
	if st.Identity == nil || st.Identity.Username != "admin" {
		t.Fatalf("restore did not establish identity")
	}
	if st.ActiveView != view.Dashboard {
		t.Fatalf("restore should land on dashboard, got %s", st.ActiveView)
	}
	if mgr.Token() != token {
		t.Fatalf("restored token mismatch")
	}
}

func TestRestoreNothingSaved(t *testing.T) {
	e := newEnv(t, loginHandler("tok"))
	if err := e.mgr.Restore(context.Background()); err != ErrNoSession {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

func TestRestoreExpiredTokenDiscards(t *testing.T) {
	token := signedToken(t, time.Now().Add(-time.Hour))
	e := newEnv(t, loginHandler(token))

	if err := e.mgr.Login(context.Background(), "admin", "admin123"); err != nil {
		t.Fatalf("login: %v", err)
	}
	mgr, _ := e.freshManager()
	if err := mgr.Restore(context.Background()); err == nil {
		t.Fatalf("expired token must not restore")
	}
	if _, ok, _ := e.sessions.Load(context.Background()); ok {
		t.Fatalf("expired session must be discarded")
	}
	if mgr.Token() != "" {
		t.Fatalf("token must stay cleared")
	}
}

func TestRestoreRejectedTokenClears(t *testing.T) {
	good := signedToken(t, time.Now().Add(time.Hour))
	e := newEnv(t, loginHandler("another-token"))

	// persist a token the backend will reject
	e.mgr.persist(context.Background(), rbac.Identity{Username: "admin", Role: "admin", Active: true}, good)
	mgr, _ := e.freshManager()
	if err := mgr.Restore(context.Background()); err == nil {
		t.Fatalf("rejected token must not restore")
	}
	if mgr.Token() != "" {
		t.Fatalf("rejected token must be cleared, never retried")
	}
	if _, ok, _ := e.sessions.Load(context.Background()); ok {
		t.Fatalf("rejected session must be discarded")
	}
}

func TestLogoutResets(t *testing.T) {
	token := signedToken(t, time.Now().Add(time.Hour))
	e := newEnv(t, loginHandler(token))
	if err := e.mgr.Login(context.Background(), "admin", "admin123"); err != nil {
		t.Fatalf("login: %v", err)
	}
	e.mgr.Logout(context.Background())
	if e.mgr.Token() != "" {
		t.Fatalf("logout must clear the token")
	}
	if st := e.store.Snapshot(); st.Identity != nil || st.ActiveView != view.Login {
		t.Fatalf("logout must reset the state")
	}
	if _, ok, _ := e.sessions.Load(context.Background()); ok {
		t.Fatalf("logout must clear the saved session")
	}
}
