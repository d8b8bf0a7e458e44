package config

import "time"

type AppConfig struct {
	BaseURL        string        `yaml:"base_url" env:"SGE_BASE_URL"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"SGE_REQUEST_TIMEOUT"`
	AppEnv         string        `yaml:"app_env" env:"SGE_APP_ENV"`

	RateLimit     RateLimitConfig     `yaml:"rate_limit"`
	State         StateConfig         `yaml:"state"`
	Refresh       RefreshConfig       `yaml:"refresh"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// RateLimitConfig caps outbound request rate toward the backend.
type RateLimitConfig struct {
	PerSecond float64 `yaml:"per_second" env:"SGE_RATE_PER_SECOND"`
	Burst     int     `yaml:"burst" env:"SGE_RATE_BURST"`
}

// StateConfig describes the local durable store holding the session token
// and console preferences. Sqlite is the default; a shared postgres instance
// can be pointed at with db_url.
type StateConfig struct {
	Driver      string `yaml:"driver" env:"SGE_STATE_DRIVER"`
	Path        string `yaml:"path" env:"SGE_STATE_PATH"`
	DBURL       string `yaml:"db_url" env:"SGE_STATE_DB_URL"`
	TokenSecret string `yaml:"token_secret" env:"SGE_TOKEN_SECRET"`
}

type RefreshConfig struct {
	Enabled bool   `yaml:"enabled" env:"SGE_REFRESH_ENABLED"`
	Cron    string `yaml:"cron" env:"SGE_REFRESH_CRON"`
}

type ObservabilityConfig struct {
	Enabled      bool   `yaml:"enabled" env:"SGE_OBS_ENABLED"`
	ListenAddr   string `yaml:"listen_addr" env:"SGE_OBS_LISTEN_ADDR"`
	MetricsToken string `yaml:"metrics_token" env:"SGE_METRICS_TOKEN"`
}
