package config

import (
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	defaultConfigPath = "config/app.yaml"
	envPrefix         = "SGE_"
)

func Load() (*AppConfig, error) {
	cfg := &AppConfig{}
	cfgPath := resolveConfigPath()
	if st, err := os.Stat(cfgPath); err == nil && !st.IsDir() {
		if err := cleanenv.ReadConfig(cfgPath, cfg); err != nil {
			return nil, err
		}
	}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, err
	}
	applyEnvAliases(cfg)
	normalizeConfig(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func resolveConfigPath() string {
	if v := strings.TrimSpace(os.Getenv(envPrefix + "CONFIG")); v != "" {
		return v
	}
	return defaultConfigPath
}

// Aliases kept for parity with the backend deployment scripts, which export
// the React-era variable names.
func applyEnvAliases(cfg *AppConfig) {
	if cfg == nil {
		return
	}
	if v := getEnv("BACKEND_URL", "REACT_APP_BACKEND_URL"); v != "" {
		cfg.BaseURL = strings.TrimSpace(v)
	}
	if v := getEnv("ENV", "APP_ENV"); v != "" {
		cfg.AppEnv = strings.TrimSpace(v)
	}
	if v := getEnv("DATA_PATH"); v != "" {
		cfg.State.Path = filepathJoin(strings.TrimSpace(v), "console.db")
	}
}

func normalizeConfig(cfg *AppConfig) {
	if cfg == nil {
		return
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	cfg.AppEnv = strings.ToLower(strings.TrimSpace(cfg.AppEnv))
	cfg.State.Driver = strings.ToLower(strings.TrimSpace(cfg.State.Driver))
	cfg.State.Path = strings.TrimSpace(cfg.State.Path)
	cfg.State.DBURL = strings.TrimSpace(cfg.State.DBURL)
	cfg.State.TokenSecret = strings.TrimSpace(cfg.State.TokenSecret)
	cfg.Refresh.Cron = strings.TrimSpace(cfg.Refresh.Cron)
	cfg.Observability.ListenAddr = strings.TrimSpace(cfg.Observability.ListenAddr)
	cfg.Observability.MetricsToken = strings.TrimSpace(cfg.Observability.MetricsToken)
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 15 * time.Second
	}
	if cfg.RateLimit.PerSecond <= 0 {
		cfg.RateLimit.PerSecond = 20
	}
	if cfg.RateLimit.Burst <= 0 {
		cfg.RateLimit.Burst = 40
	}
	if cfg.State.Path == "" {
		cfg.State.Path = "console.db"
	}
	if cfg.Refresh.Enabled && cfg.Refresh.Cron == "" {
		cfg.Refresh.Cron = "*/5 * * * *"
	}
	if cfg.Observability.Enabled && cfg.Observability.ListenAddr == "" {
		cfg.Observability.ListenAddr = "127.0.0.1:9475"
	}
}

func getEnv(names ...string) string {
	for _, n := range names {
		if v := os.Getenv(n); strings.TrimSpace(v) != "" {
			return v
		}
		if v := os.Getenv(envPrefix + n); strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func filepathJoin(a, b string) string {
	a = strings.TrimRight(a, "/")
	if a == "" {
		return b
	}
	return a + "/" + b
}
