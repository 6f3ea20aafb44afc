package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"

	"github.com/nanhai/arena/errors"
)

var (
	globalConfig  *Config
	viperInstance *viper.Viper
	globalMu      sync.Mutex
)

// Load reads the arena configuration using Viper
func Load() (*Config, error) {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalConfig != nil {
		return globalConfig, nil
	}

	v := initViper()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	globalConfig = &cfg
	return globalConfig, nil
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", configPath)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal config from %s", configPath)
	}

	return &cfg, nil
}

// Reset clears the cached configuration (useful for testing and hot reload)
func Reset() {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalConfig = nil
	viperInstance = nil
}

// initViper initializes Viper with configuration sources and defaults.
// Callers must hold globalMu.
func initViper() *viper.Viper {
	if viperInstance != nil {
		return viperInstance
	}

	v := viper.New()

	v.SetEnvPrefix("ARENA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Token is sensitive; always bindable from the environment even when
	// no config file mentions it.
	v.BindEnv("build_api.private_token", "ARENA_BUILD_API_PRIVATE_TOKEN")

	SetDefaults(v)

	// Merge config files in precedence order: system < user < project
	mergeConfigFiles(v)

	viperInstance = v
	return v
}

// ProjectConfigPath returns the project arena.toml in effect, or an
// empty string when none exists. The serve command watches this file
// for hot reloads.
func ProjectConfigPath() string {
	return findProjectConfig()
}

// findProjectConfig searches for arena.toml by walking up the directory tree
func findProjectConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(dir, "arena.toml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// mergeConfigFiles merges configuration files in the correct precedence order
func mergeConfigFiles(v *viper.Viper) {
	homeDir, _ := os.UserHomeDir()

	configPaths := []string{
		"/etc/arena/arena.toml",
		filepath.Join(homeDir, ".arena", "arena.toml"),
	}

	if projectConfig := findProjectConfig(); projectConfig != "" {
		configPaths = append(configPaths, projectConfig)
	}

	for _, configPath := range configPaths {
		if _, err := os.Stat(configPath); err != nil {
			continue
		}

		tempViper := viper.New()
		tempViper.SetConfigFile(configPath)
		tempViper.SetConfigType("toml")

		if err := tempViper.ReadInConfig(); err == nil {
			for key, value := range tempViper.AllSettings() {
				v.Set(key, value)
			}
		}
	}
}

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("server.trigger_rate_per_minute", 30)
	v.SetDefault("server.trigger_burst", 5)

	v.SetDefault("database.path", "arena.db")

	v.SetDefault("build_api.base_url", "https://example.com/api/v1")
	v.SetDefault("build_api.report_base_url", "https://example.com/api/v1")
	v.SetDefault("build_api.query_job_endpoint", "/build/query")
	v.SetDefault("build_api.query_package_run_endpoint", "/build/package-run")
	v.SetDefault("build_api.query_report_endpoint", "/data-api/report-fail")
	v.SetDefault("build_api.insecure_skip_verify", false)
	v.SetDefault("build_api.timeout_seconds", 10)
	v.SetDefault("build_api.default_user_id", 4)
}
