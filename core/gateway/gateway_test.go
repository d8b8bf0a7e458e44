package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"sge-console/config"
	"sge-console/core/localstore"
	"sge-console/core/rbac"
	"sge-console/core/restapi"
	"sge-console/core/session"
	"sge-console/core/state"
	"sge-console/core/utils"
	"sge-console/core/view"
)

// backend is a scriptable stand-in for the REST API. It records every
// request body so tests can assert on serialization.
type backend struct {
	mu       sync.Mutex
	mux      *http.ServeMux
	requests []recorded
}

type recorded struct {
	Method string
	Path   string
	Body   []byte
}

func newBackend() *backend {
	return &backend{mux: http.NewServeMux()}
}

func (b *backend) handle(pattern string, status int, response any) {
	b.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		b.mu.Lock()
		b.requests = append(b.requests, recorded{Method: r.Method, Path: r.URL.Path, Body: body})
		b.mu.Unlock()
		w.WriteHeader(status)
		if response != nil {
			_ = json.NewEncoder(w).Encode(response)
		}
	})
}

func (b *backend) hits(method, path string) []recorded {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []recorded
	for _, r := range b.requests {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

type env struct {
	bundle  *Bundle
	store   *state.Store
	backend *backend
	confirm *bool
}

func newEnv(t *testing.T, role string) *env {
	t.Helper()
	b := newBackend()
	srv := httptest.NewServer(b.mux)
	t.Cleanup(srv.Close)

	cfg := &config.AppConfig{
		BaseURL:        srv.URL,
		RequestTimeout: 2 * time.Second,
		RateLimit:      config.RateLimitConfig{PerSecond: 1000, Burst: 1000},
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
	mgr := session.NewManager(cfg, store, localstore.NewSessionStore(db), logger)
	client := restapi.NewClient(cfg, logger, mgr.Token)
	mgr.SetClient(client)

	answer := true
	policy := rbac.NewPolicy(rbac.DefaultRoles())
	bundle := NewBundle(client, store, mgr, policy, ConfirmFunc(func(string) bool { return answer }), logger)

	if role != "" {
		store.Dispatch(state.LoginSucceeded{Identity: rbac.Identity{Username: "mario", Role: role, Active: true}})
	}
	return &env{bundle: bundle, store: store, backend: b, confirm: &answer}
}

func TestEventCreateSerializesCoordinatesAsNull(t *testing.T) {
	e := newEnv(t, "operator")
	e.backend.handle("POST /api/events", http.StatusOK, map[string]any{"id": "e1"})
	e.backend.handle("GET /api/events", http.StatusOK, []map[string]any{})
	e.store.Navigate(view.CreateEvent)

	err := e.bundle.Events.Create(context.Background(), EventDraft{
		Title:       "Allagamento",
		Description: "Sottopasso allagato",
		EventType:   "alluvione",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	posts := e.backend.hits(http.MethodPost, "/api/events")
	if len(posts) != 1 {
		t.Fatalf("expected one POST, got %d", len(posts))
	}
	var payload map[string]any
	if err := json.Unmarshal(posts[0].Body, &payload); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if v, present := payload["latitude"]; !present || v != nil {
		t.Fatalf("empty latitude must serialize as null, got %v", payload["latitude"])
	}
	if v, present := payload["longitude"]; !present || v != nil {
		t.Fatalf("empty longitude must serialize as null, got %v", payload["longitude"])
	}
	if payload["severity"] != "media" {
		t.Fatalf("severity must default to media, got %v", payload["severity"])
	}
	if payload["status"] != "aperto" {
		t.Fatalf("new events must open as aperto, got %v", payload["status"])
	}
	if payload["created_by"] != "mario" {
		t.Fatalf("created_by must carry the identity, got %v", payload["created_by"])
	}
}

func TestEventCreateParsesCoordinates(t *testing.T) {
	e := newEnv(t, "operator")
	e.backend.handle("POST /api/events", http.StatusOK, map[string]any{"id": "e1"})
	e.backend.handle("GET /api/events", http.StatusOK, []map[string]any{})

	err := e.bundle.Events.Create(context.Background(), EventDraft{
		Title:       "Incendio",
		Description: "Capannone",
		EventType:   "incendio",
		Severity:    "critica",
		Latitude:    "45.4642",
		Longitude:   "9.1900",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	var payload map[string]any
	_ = json.Unmarshal(e.backend.hits(http.MethodPost, "/api/events")[0].Body, &payload)
	if payload["latitude"] != 45.4642 || payload["longitude"] != 9.19 {
		t.Fatalf("coordinates must serialize as numbers, got %v %v", payload["latitude"], payload["longitude"])
	}
}

func TestEventCreateRejectsBadCoordinate(t *testing.T) {
	e := newEnv(t, "operator")
	e.backend.handle("POST /api/events", http.StatusOK, nil)

	err := e.bundle.Events.Create(context.Background(), EventDraft{
		Title:       "X",
		Description: "Y",
		EventType:   "altro",
		Latitude:    "nord",
	})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if len(e.backend.hits(http.MethodPost, "/api/events")) != 0 {
		t.Fatalf("invalid draft must not reach the backend")
	}
	if n := e.store.Snapshot().Notice; n == nil || n.Kind != state.NoticeError {
		t.Fatalf("validation failures must post an error notice")
	}
}

func TestMutationMovesToListingView(t *testing.T) {
	e := newEnv(t, "operator")
	e.backend.handle("POST /api/events", http.StatusOK, map[string]any{"id": "e2"})
	e.backend.handle("GET /api/events", http.StatusOK, []map[string]any{})
	e.store.Navigate(view.CreateEvent)

	err := e.bundle.Events.Create(context.Background(), EventDraft{
		Title: "T", Description: "D", EventType: "altro",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got := e.store.ActiveView(); got != view.Events {
		t.Fatalf("create should land on events listing, got %s", got)
	}
	if n := e.store.Snapshot().Notice; n == nil || n.Kind != state.NoticeSuccess {
		t.Fatalf("success notice missing")
	}
	// the create triggers a listing reload
	if len(e.backend.hits(http.MethodGet, "/api/events")) == 0 {
		t.Fatalf("listing reload missing after create")
	}
}

func TestDeleteConfirmDeclinedIssuesNoRequest(t *testing.T) {
	e := newEnv(t, "admin")
	e.backend.handle("DELETE /api/events/e1", http.StatusOK, nil)
	*e.confirm = false

	if err := e.bundle.Events.Delete(context.Background(), "e1", "Incendio"); err != nil {
		t.Fatalf("declined delete must be a silent no-op, got %v", err)
	}
	if len(e.backend.hits(http.MethodDelete, "/api/events/e1")) != 0 {
		t.Fatalf("declined confirmation must not reach the backend")
	}
	if e.store.Snapshot().Notice != nil {
		t.Fatalf("declined confirmation must not post a notice")
	}
}

func TestDeleteConfirmed(t *testing.T) {
	e := newEnv(t, "admin")
	e.backend.handle("DELETE /api/events/e1", http.StatusOK, map[string]string{"message": "ok"})
	e.backend.handle("GET /api/events", http.StatusOK, []map[string]any{})

	if err := e.bundle.Events.Delete(context.Background(), "e1", "Incendio"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(e.backend.hits(http.MethodDelete, "/api/events/e1")) != 1 {
		t.Fatalf("confirmed delete must reach the backend")
	}
}

func TestLogCreateNullEventID(t *testing.T) {
	e := newEnv(t, "operator")
	e.backend.handle("POST /api/logs", http.StatusOK, map[string]any{"message": "Log creato con successo"})
	e.backend.handle("GET /api/logs", http.StatusOK, []map[string]any{})

	err := e.bundle.Logs.Create(context.Background(), LogDraft{
		Action:  "Verifica impianti",
		Details: "Controllo settimanale",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	var payload map[string]any
	_ = json.Unmarshal(e.backend.hits(http.MethodPost, "/api/logs")[0].Body, &payload)
	if v, present := payload["event_id"]; !present || v != nil {
		t.Fatalf("unlinked log must serialize event_id as null, got %v", payload["event_id"])
	}
	if payload["priority"] != "normale" {
		t.Fatalf("priority must default to normale, got %v", payload["priority"])
	}
}

func TestAuthErrorInvalidatesSession(t *testing.T) {
	e := newEnv(t, "operator")
	e.backend.handle("GET /api/logs", http.StatusUnauthorized, map[string]string{"detail": "Token scaduto"})

	if err := e.bundle.Logs.List(context.Background()); err == nil {
		t.Fatalf("expected auth error")
	}
	st := e.store.Snapshot()
	if st.Identity != nil || st.ActiveView != view.Login {
		t.Fatalf("401 must tear the session down")
	}
	if st.Notice == nil || st.Notice.Text != "Sessione scaduta, effettuare di nuovo il login" {
		t.Fatalf("session-expired notice missing, got %+v", st.Notice)
	}
}

func TestForbiddenPostsNotice(t *testing.T) {
	e := newEnv(t, "viewer")
	e.backend.handle("GET /api/admin/users", http.StatusForbidden, map[string]string{"detail": "Permessi insufficienti"})

	if err := e.bundle.Users.List(context.Background()); err == nil {
		t.Fatalf("expected forbidden error")
	}
	st := e.store.Snapshot()
	if st.Identity == nil {
		t.Fatalf("403 must not tear the session down")
	}
	if st.Notice == nil || st.Notice.Text != "Permessi insufficienti" {
		t.Fatalf("backend detail must surface verbatim, got %+v", st.Notice)
	}
}

func TestDashboardFanOut(t *testing.T) {
	e := newEnv(t, "admin")
	e.backend.handle("GET /api/dashboard/stats", http.StatusOK, map[string]any{
		"total_events": 7, "open_events": 3, "critical_events": 1,
	})
	e.backend.handle("GET /api/events", http.StatusOK, []map[string]any{{"id": "e1", "title": "T"}})
	e.backend.handle("GET /api/logs", http.StatusOK, []map[string]any{{"id": "l1", "action": "A"}})

	e.bundle.LoadDashboard(context.Background())
	st := e.store.Snapshot()
	if st.Stats == nil || st.Stats.TotalEvents != 7 {
		t.Fatalf("stats not loaded")
	}
	if len(st.Events) != 1 || len(st.Logs) != 1 {
		t.Fatalf("events/logs not loaded: %d %d", len(st.Events), len(st.Logs))
	}
}

func TestInventoryQuantityUpdate(t *testing.T) {
	e := newEnv(t, "warehouse")
	e.backend.handle("POST /api/inventory/i1/update-quantity", http.StatusOK, map[string]any{
		"message": "Quantità aggiornata", "new_quantity": 12,
	})
	e.backend.handle("GET /api/inventory", http.StatusOK, []map[string]any{})

	err := e.bundle.Inventory.AdjustQuantity(context.Background(), "i1", -5, "consumo esercitazione", "")
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	var payload map[string]any
	_ = json.Unmarshal(e.backend.hits(http.MethodPost, "/api/inventory/i1/update-quantity")[0].Body, &payload)
	if payload["quantity_change"] != float64(-5) {
		t.Fatalf("quantity_change mismatch: %v", payload["quantity_change"])
	}
	if payload["reason"] != "consumo esercitazione" {
		t.Fatalf("reason mismatch: %v", payload["reason"])
	}
	if _, present := payload["location"]; present {
		t.Fatalf("empty location must be omitted, got %v", payload["location"])
	}
}

func TestInventoryAdjustRequiresReason(t *testing.T) {
	e := newEnv(t, "warehouse")
	e.backend.handle("POST /api/inventory/i1/update-quantity", http.StatusOK, nil)

	if err := e.bundle.Inventory.AdjustQuantity(context.Background(), "i1", 3, "", ""); err == nil {
		t.Fatalf("expected missing-reason error")
	}
	if len(e.backend.hits(http.MethodPost, "/api/inventory/i1/update-quantity")) != 0 {
		t.Fatalf("missing reason must not reach the backend")
	}
}

func TestPermissionsCatalogSyncsPolicy(t *testing.T) {
	e := newEnv(t, "admin")
	e.backend.handle("GET /api/admin/permissions", http.StatusOK, map[string]any{
		"all_permissions":     []string{"events.read", "events.create"},
		"current_permissions": map[string][]string{"viewer": {"events.create"}},
		"roles":               map[string]string{"viewer": "Visualizzatore"},
	})

	if err := e.bundle.Permissions.Catalog(context.Background()); err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if e.store.Snapshot().Permissions == nil {
		t.Fatalf("catalog not cached")
	}
	// policy must now reflect the fetched assignment, not the defaults
	if !e.bundle.Events.d.policy.Allowed("viewer", "events.create") {
		t.Fatalf("policy not updated from catalog")
	}
	if e.bundle.Events.d.policy.Allowed("viewer", "events.read") {
		t.Fatalf("policy replace must overwrite the whole role")
	}
}

func TestReplaceForRoleRejectsUnknownPermission(t *testing.T) {
	e := newEnv(t, "admin")
	e.backend.handle("POST /api/admin/permissions/viewer", http.StatusOK, nil)

	err := e.bundle.Permissions.ReplaceForRole(context.Background(), "viewer", []string{"events.read", "warp.speed"})
	if err == nil {
		t.Fatalf("expected unknown-permission error")
	}
	if len(e.backend.hits(http.MethodPost, "/api/admin/permissions/viewer")) != 0 {
		t.Fatalf("unknown permissions must not reach the backend")
	}
}
