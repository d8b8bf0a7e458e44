package localstore

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"

	"github.com/pressly/goose/v3"

	"sge-console/config"
	"sge-console/core/utils"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

func ApplyMigrations(ctx context.Context, db *sql.DB, cfg *config.AppConfig, logger *utils.Logger) error {
	if db == nil {
		return fmt.Errorf("nil db")
	}
	dialect := "sqlite3"
	driver := strings.ToLower(strings.TrimSpace(cfg.State.Driver))
	if driver == "postgres" || driver == "pg" || (driver == "" && strings.TrimSpace(cfg.State.DBURL) != "") {
		dialect = "postgres"
	}
	if err := goose.SetDialect(dialect); err != nil {
		return err
	}
	goose.SetBaseFS(migrationsFS)
	if logger != nil {
		logger.Printf("applying state migrations dialect=%s", dialect)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return err
	}
	return nil
}
