package config

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/robfig/cron/v3"
)

func Validate(cfg *AppConfig) error {
	if cfg == nil {
		return errors.New("nil config")
	}
	if cfg.BaseURL == "" {
		return errors.New("base_url is required (SGE_BASE_URL)")
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Host == "" {
		return fmt.Errorf("base_url is not a valid URL: %q", cfg.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base_url must be http or https, got %q", u.Scheme)
	}
	switch cfg.State.Driver {
	case "", "sqlite":
		if cfg.State.Path == "" {
			return errors.New("state.path is required for sqlite")
		}
	case "postgres", "pg":
		if cfg.State.DBURL == "" {
			return errors.New("state.db_url is required for postgres")
		}
	default:
		return fmt.Errorf("unsupported state driver: %q", cfg.State.Driver)
	}
	if cfg.Refresh.Enabled {
		parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
		if _, err := parser.Parse(cfg.Refresh.Cron); err != nil {
			return fmt.Errorf("refresh.cron: %w", err)
		}
	}
	return nil
}
