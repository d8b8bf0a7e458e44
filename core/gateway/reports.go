package gateway

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"sge-console/core/model"
	"sge-console/core/state"
)

// ReportsGateway drives report generation. Reports download as binary
// blobs (PDF or Excel) and land on disk; nothing about them enters the
// state cache except the template catalog.
type ReportsGateway struct {
	d *deps
}

type ReportRequest struct {
	ReportType string  `json:"report_type"`
	Format     string  `json:"format"`
	StartDate  *string `json:"start_date"`
	EndDate    *string `json:"end_date"`
	EventType  *string `json:"event_type"`
	Severity   *string `json:"severity"`
	Priority   *string `json:"priority"`
	Operator   *string `json:"operator"`
	Status     *string `json:"status"`
}

func (g *ReportsGateway) Templates(ctx context.Context) error {
	var catalog model.ReportCatalog
	if err := g.d.client.GetJSON(ctx, "/api/reports/templates", nil, &catalog); err != nil {
		return g.d.fail(ctx, err)
	}
	g.d.store.Dispatch(state.ReportsLoaded{Catalog: catalog})
	return nil
}

// Generate requests a report and writes it under dir, using the server's
// attachment filename when one is sent.
func (g *ReportsGateway) Generate(ctx context.Context, req ReportRequest, dir string) (string, error) {
	if !g.d.guard.begin("generate-report") {
		return "", ErrSubmissionInFlight
	}
	defer g.d.guard.end("generate-report")

	if req.ReportType == "" {
		err := fmt.Errorf("campi obbligatori mancanti: report_type")
		g.d.store.PostError(err.Error())
		return "", err
	}
	if req.Format == "" {
		req.Format = "pdf"
	}
	fallback := fmt.Sprintf("report_%s.%s", req.ReportType, req.Format)
	data, filename, err := g.d.client.PostBinary(ctx, "/api/reports/generate", req, fallback)
	if err != nil {
		return "", g.d.fail(ctx, err)
	}
	dest := filepath.Join(dir, filepath.Base(filename))
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		g.d.store.PostError("impossibile salvare il report: " + err.Error())
		return "", err
	}
	g.d.store.PostSuccess("Report generato con successo: " + dest)
	return dest, nil
}
