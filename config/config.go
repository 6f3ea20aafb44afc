// Package config loads and watches the arena configuration.
//
// Configuration comes from a TOML file (arena.toml), overridable with
// ARENA_-prefixed environment variables. The build API section can be
// hot-reloaded at runtime through the fsnotify-based Watcher.
package config

// Config represents the arena configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	BuildAPI BuildAPIConfig `mapstructure:"build_api"`
}

// ServerConfig configures the HTTP/WebSocket server
type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`

	// TriggerRatePerMinute bounds how many build triggers the webhook
	// endpoint accepts; CI retry storms must not fan out into an
	// unbounded number of orchestrator goroutines.
	TriggerRatePerMinute int `mapstructure:"trigger_rate_per_minute"`
	TriggerBurst         int `mapstructure:"trigger_burst"`
}

// DatabaseConfig configures the SQLite database
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// BuildAPIConfig configures access to the external build system
type BuildAPIConfig struct {
	// BaseURL serves the job query and package-run endpoints
	BaseURL string `mapstructure:"base_url"`
	// ReportBaseURL serves the report summary endpoint
	ReportBaseURL string `mapstructure:"report_base_url"`

	QueryJobEndpoint        string `mapstructure:"query_job_endpoint"`
	QueryPackageRunEndpoint string `mapstructure:"query_package_run_endpoint"`
	QueryReportEndpoint     string `mapstructure:"query_report_endpoint"`

	// PrivateToken is sent as the PRIVATE-TOKEN header on job queries
	PrivateToken string `mapstructure:"private_token"`

	// InsecureSkipVerify disables TLS certificate validation for the
	// build API client only. Scoped to that client, never process-wide.
	InsecureSkipVerify bool `mapstructure:"insecure_skip_verify"`

	TimeoutSeconds int `mapstructure:"timeout_seconds"`

	// DefaultUserID receives submissions whose submitter handle cannot
	// be resolved to a registered participant.
	DefaultUserID int64 `mapstructure:"default_user_id"`
}

// DefaultServerPort is used when no port is configured
const DefaultServerPort = 8080

// QueryJobURL returns the full URL of the stage-1 job query endpoint
func (c BuildAPIConfig) QueryJobURL() string {
	return c.BaseURL + c.QueryJobEndpoint
}

// QueryPackageRunURL returns the full URL of the stage-2 package-run endpoint
func (c BuildAPIConfig) QueryPackageRunURL() string {
	return c.BaseURL + c.QueryPackageRunEndpoint
}

// QueryReportURL returns the full URL of the stage-3 report endpoint
func (c BuildAPIConfig) QueryReportURL() string {
	return c.ReportBaseURL + c.QueryReportEndpoint
}
