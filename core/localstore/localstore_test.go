package localstore

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"sge-console/config"
	"sge-console/core/rbac"
	"sge-console/core/utils"
)

func testDB(t *testing.T) *SessionStore {
	t.Helper()
	cfg := &config.AppConfig{State: config.StateConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "console.db"),
	}}
	logger := utils.NewLoggerTo(io.Discard)
	db, err := NewDB(cfg, logger)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := ApplyMigrations(context.Background(), db, cfg, logger); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	return NewSessionStore(db)
}

func TestSessionRoundTrip(t *testing.T) {
	s := testDB(t)
	ctx := context.Background()

	if _, ok, err := s.Load(ctx); err != nil || ok {
		t.Fatalf("empty store must load nothing (ok=%v err=%v)", ok, err)
	}

	saved := SavedSession{
		Identity:  rbac.Identity{Username: "mario", FullName: "Mario Rossi", Role: "operator"},
		TokenBlob: "YmxvYg==",
		KeySalt:   "c2FsdA==",
		SavedAt:   time.Now().UTC().Truncate(time.Second),
	}
	if err := s.Save(ctx, saved); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, ok, err := s.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if got.Identity.Username != "mario" || got.Identity.Role != "operator" {
		t.Fatalf("identity mismatch: %+v", got.Identity)
	}
	if !got.Identity.Active {
		t.Fatalf("loaded identity must be marked active")
	}
	if got.TokenBlob != saved.TokenBlob || got.KeySalt != saved.KeySalt {
		t.Fatalf("token material mismatch")
	}
}

func TestSaveReplacesPrevious(t *testing.T) {
	s := testDB(t)
	ctx := context.Background()

	first := SavedSession{Identity: rbac.Identity{Username: "a", Role: "admin"}, TokenBlob: "b1", KeySalt: "s1", SavedAt: time.Now()}
	second := SavedSession{Identity: rbac.Identity{Username: "b", Role: "viewer"}, TokenBlob: "b2", KeySalt: "s2", SavedAt: time.Now()}
	if err := s.Save(ctx, first); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Save(ctx, second); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, ok, _ := s.Load(ctx)
	if !ok || got.Identity.Username != "b" {
		t.Fatalf("save must replace, got %+v", got.Identity)
	}
}

func TestClear(t *testing.T) {
	s := testDB(t)
	ctx := context.Background()

	_ = s.Save(ctx, SavedSession{Identity: rbac.Identity{Username: "a", Role: "admin"}, TokenBlob: "b", KeySalt: "s", SavedAt: time.Now()})
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok, _ := s.Load(ctx); ok {
		t.Fatalf("clear must remove the session")
	}
}

func TestPrefsRoundTrip(t *testing.T) {
	cfg := &config.AppConfig{State: config.StateConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "console.db"),
	}}
	logger := utils.NewLoggerTo(io.Discard)
	db, err := NewDB(cfg, logger)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	if err := ApplyMigrations(context.Background(), db, cfg, logger); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	p := NewPrefsStore(db)
	ctx := context.Background()

	if _, ok, err := p.Get(ctx, "last_view"); err != nil || ok {
		t.Fatalf("missing pref must report ok=false")
	}
	if err := p.Set(ctx, "last_view", "events"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := p.Set(ctx, "last_view", "inventory"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	v, ok, err := p.Get(ctx, "last_view")
	if err != nil || !ok || v != "inventory" {
		t.Fatalf("get: %q ok=%v err=%v", v, ok, err)
	}
}
