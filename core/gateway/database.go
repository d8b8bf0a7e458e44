package gateway

import (
	"context"

	"sge-console/core/model"
)

// DatabaseGateway exposes the backend's storage administration surface.
// Switching databases is the most disruptive operation the console can
// issue, so Update is confirm-gated like a delete.
type DatabaseGateway struct {
	d *deps
}

func (g *DatabaseGateway) Config(ctx context.Context) (*model.DatabaseConfig, error) {
	var cfg model.DatabaseConfig
	if err := g.d.client.GetJSON(ctx, "/api/admin/database/config", nil, &cfg); err != nil {
		return nil, g.d.fail(ctx, err)
	}
	return &cfg, nil
}

func (g *DatabaseGateway) Status(ctx context.Context) (*model.DatabaseStatus, error) {
	var status model.DatabaseStatus
	if err := g.d.client.GetJSON(ctx, "/api/admin/database/status", nil, &status); err != nil {
		return nil, g.d.fail(ctx, err)
	}
	return &status, nil
}

type databaseTestPayload struct {
	MongoURL          string `json:"mongo_url"`
	DatabaseName      string `json:"database_name"`
	ConnectionTimeout int    `json:"connection_timeout,omitempty"`
}

// Test probes a candidate connection without switching to it.
func (g *DatabaseGateway) Test(ctx context.Context, mongoURL, name string) (*model.DatabaseStatus, error) {
	if err := requireFields(map[string]string{
		"mongo_url":     mongoURL,
		"database_name": name,
	}); err != nil {
		g.d.store.PostError(err.Error())
		return nil, err
	}
	payload := databaseTestPayload{MongoURL: mongoURL, DatabaseName: name}
	var status model.DatabaseStatus
	if err := g.d.client.PostJSON(ctx, "/api/admin/database/test", payload, &status); err != nil {
		return nil, g.d.fail(ctx, err)
	}
	return &status, nil
}

type DatabaseUpdate struct {
	MongoURL          string `json:"mongo_url"`
	DatabaseName      string `json:"database_name"`
	TestConnection    bool   `json:"test_connection"`
	CreateIfNotExists bool   `json:"create_if_not_exists"`
}

func (g *DatabaseGateway) Update(ctx context.Context, upd DatabaseUpdate) error {
	if err := requireFields(map[string]string{
		"mongo_url":     upd.MongoURL,
		"database_name": upd.DatabaseName,
	}); err != nil {
		g.d.store.PostError(err.Error())
		return err
	}
	if !g.d.confirm.Confirm("Cambiare il database attivo? Le sessioni correnti potrebbero essere invalidate.") {
		return nil
	}
	if !g.d.guard.begin("update-database") {
		return ErrSubmissionInFlight
	}
	defer g.d.guard.end("update-database")

	var resp struct {
		Message      string `json:"message"`
		DatabaseName string `json:"database_name"`
	}
	if err := g.d.client.PostJSON(ctx, "/api/admin/database/update", upd, &resp); err != nil {
		return g.d.fail(ctx, err)
	}
	if resp.Message != "" {
		g.d.store.PostSuccess(resp.Message)
	} else {
		g.d.store.PostSuccess("Configurazione database aggiornata con successo")
	}
	return nil
}
