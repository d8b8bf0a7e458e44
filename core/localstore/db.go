// Package localstore is the console's durable local state: the encrypted
// session token and operator preferences. Sqlite is the normal deployment;
// postgres is supported for shared operator workstations.
package localstore

import (
	"database/sql"
	"errors"
	"strings"

	"sge-console/config"
	"sge-console/core/utils"

	_ "modernc.org/sqlite"
)

func NewDB(cfg *config.AppConfig, logger *utils.Logger) (*sql.DB, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.State.Driver))
	if driver == "" {
		if strings.TrimSpace(cfg.State.DBURL) != "" {
			driver = "postgres"
		} else {
			driver = "sqlite"
		}
	}
	switch driver {
	case "postgres", "pg":
		if strings.TrimSpace(cfg.State.DBURL) == "" {
			return nil, errors.New("state.db_url is required for postgres")
		}
		db, err := sql.Open(postgresDriverName, cfg.State.DBURL)
		if err != nil {
			if logger != nil {
				logger.Errorf("state db open failed: %v", err)
			}
			return nil, err
		}
		if logger != nil {
			logger.Printf("state db open postgres")
		}
		return db, nil
	case "sqlite":
		if strings.TrimSpace(cfg.State.Path) == "" {
			return nil, errors.New("state.path is required for sqlite")
		}
		db, err := sql.Open("sqlite", cfg.State.Path)
		if err != nil {
			if logger != nil {
				logger.Errorf("state db open failed: %v", err)
			}
			return nil, err
		}
		// Local state is single-writer.
		db.SetMaxOpenConns(1)
		if logger != nil {
			logger.Printf("state db open sqlite path=%s", cfg.State.Path)
		}
		return db, nil
	default:
		return nil, errors.New("unsupported state driver: " + driver)
	}
}
