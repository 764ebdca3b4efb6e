// Package config defines server configuration and its loading order.
package config

// Config contains process configuration for the planning server.
type Config struct {
	// Addr is the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DBPath is the SQLite database path. ":memory:" for ephemeral runs.
	DBPath string `koanf:"db_path"`

	// AllowedOrigins lists CORS origins for the SPA front end.
	AllowedOrigins []string `koanf:"allowed_origins"`

	// ReadTimeoutSec / WriteTimeoutSec / IdleTimeoutSec bound the HTTP server.
	ReadTimeoutSec  int `koanf:"read_timeout_sec"`
	WriteTimeoutSec int `koanf:"write_timeout_sec"`
	IdleTimeoutSec  int `koanf:"idle_timeout_sec"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Addr:            ":8080",
		DBPath:          "planner.db",
		AllowedOrigins:  []string{"http://localhost:5173", "http://localhost:8080"},
		ReadTimeoutSec:  15,
		WriteTimeoutSec: 15,
		IdleTimeoutSec:  60,
	}
}
