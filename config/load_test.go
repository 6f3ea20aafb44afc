package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func TestSetDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	tests := []struct {
		key      string
		expected interface{}
	}{
		{"server.port", DefaultServerPort},
		{"server.trigger_rate_per_minute", 30},
		{"server.trigger_burst", 5},
		{"database.path", "arena.db"},
		{"build_api.query_job_endpoint", "/build/query"},
		{"build_api.query_package_run_endpoint", "/build/package-run"},
		{"build_api.query_report_endpoint", "/data-api/report-fail"},
		{"build_api.insecure_skip_verify", false},
		{"build_api.timeout_seconds", 10},
		{"build_api.default_user_id", 4},
	}

	for _, tt := range tests {
		if got := v.Get(tt.key); got != tt.expected {
			t.Errorf("default %s = %v, want %v", tt.key, got, tt.expected)
		}
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "arena.toml")

	content := `
[server]
port = 9090
allowed_origins = ["http://localhost:3000"]

[database]
path = "/tmp/arena-test.db"

[build_api]
base_url = "https://build.internal/api/v4"
private_token = "secret-token"
default_user_id = 7
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if len(cfg.Server.AllowedOrigins) != 1 || cfg.Server.AllowedOrigins[0] != "http://localhost:3000" {
		t.Errorf("allowed_origins = %v", cfg.Server.AllowedOrigins)
	}
	if cfg.Database.Path != "/tmp/arena-test.db" {
		t.Errorf("database path = %q", cfg.Database.Path)
	}
	if cfg.BuildAPI.BaseURL != "https://build.internal/api/v4" {
		t.Errorf("base_url = %q", cfg.BuildAPI.BaseURL)
	}
	if cfg.BuildAPI.PrivateToken != "secret-token" {
		t.Errorf("private_token = %q", cfg.BuildAPI.PrivateToken)
	}
	if cfg.BuildAPI.DefaultUserID != 7 {
		t.Errorf("default_user_id = %d, want 7", cfg.BuildAPI.DefaultUserID)
	}

	// Keys absent from the file fall back to defaults
	if cfg.BuildAPI.TimeoutSeconds != 10 {
		t.Errorf("timeout_seconds = %d, want default 10", cfg.BuildAPI.TimeoutSeconds)
	}
	if cfg.Server.TriggerRatePerMinute != 30 {
		t.Errorf("trigger_rate_per_minute = %d, want default 30", cfg.Server.TriggerRatePerMinute)
	}
}

func TestLoadFromFile_Missing(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestBuildAPIURLs(t *testing.T) {
	cfg := BuildAPIConfig{
		BaseURL:                 "https://build.internal/api/v4",
		ReportBaseURL:           "https://report.internal/api/v4",
		QueryJobEndpoint:        "/build/query",
		QueryPackageRunEndpoint: "/build/package-run",
		QueryReportEndpoint:     "/data-api/report-fail",
	}

	if got := cfg.QueryJobURL(); got != "https://build.internal/api/v4/build/query" {
		t.Errorf("QueryJobURL() = %q", got)
	}
	if got := cfg.QueryPackageRunURL(); got != "https://build.internal/api/v4/build/package-run" {
		t.Errorf("QueryPackageRunURL() = %q", got)
	}
	if got := cfg.QueryReportURL(); got != "https://report.internal/api/v4/data-api/report-fail" {
		t.Errorf("QueryReportURL() = %q", got)
	}
}
