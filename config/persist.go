package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/nanhai/arena/errors"
)

// createBackup rotates backups (.back1, .back2, .back3) before modifying config
func createBackup(configPath string) error {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil
	}

	back3 := configPath + ".back3"
	back2 := configPath + ".back2"
	back1 := configPath + ".back1"

	if err := os.Remove(back3); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to delete oldest backup")
	}

	if _, err := os.Stat(back2); err == nil {
		if err := os.Rename(back2, back3); err != nil {
			return errors.Wrap(err, "failed to rotate .back2 to .back3")
		}
	}

	if _, err := os.Stat(back1); err == nil {
		if err := os.Rename(back1, back2); err != nil {
			return errors.Wrap(err, "failed to rotate .back1 to .back2")
		}
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		return errors.Wrap(err, "failed to read config for backup")
	}

	if err := os.WriteFile(back1, content, 0644); err != nil {
		return errors.Wrap(err, "failed to create .back1")
	}

	return nil
}

// loadOrInitialize reads the config file as a raw TOML map, creating the
// parent directory if needed. Missing file yields an empty map.
func loadOrInitialize(configPath string) (map[string]interface{}, error) {
	if err := os.MkdirAll(filepath.Dir(configPath), 0750); err != nil {
		return nil, errors.Wrap(err, "failed to create config directory")
	}

	var cfg map[string]interface{}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, errors.Wrap(err, "failed to parse config file")
		}
	} else {
		cfg = make(map[string]interface{})
	}

	return cfg, nil
}

// save writes the config map back to disk with a rotated backup
func save(cfg map[string]interface{}, configPath string) error {
	if err := createBackup(configPath); err != nil {
		return errors.Wrap(err, "failed to create backup")
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	// Our own write must not bounce back through the watcher
	globalWatcherMu.Lock()
	if globalWatcher != nil {
		globalWatcher.MarkOwnWrite()
	}
	globalWatcherMu.Unlock()

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return errors.Wrap(err, "failed to write config")
	}

	return nil
}

// updateSection merges a key into a named section of the config file
func updateSection(configPath, section, key string, value interface{}) error {
	cfg, err := loadOrInitialize(configPath)
	if err != nil {
		return err
	}

	var sec map[string]interface{}
	if s, ok := cfg[section].(map[string]interface{}); ok {
		sec = s
	} else {
		sec = make(map[string]interface{})
	}

	sec[key] = value
	cfg[section] = sec

	return save(cfg, configPath)
}

// UpdateBuildAPIToken persists a new build API token to the config file
func UpdateBuildAPIToken(configPath, token string) error {
	return updateSection(configPath, "build_api", "private_token", token)
}

// UpdateBuildAPIBaseURL persists a new build API base URL to the config file
func UpdateBuildAPIBaseURL(configPath, baseURL string) error {
	return updateSection(configPath, "build_api", "base_url", baseURL)
}

// UpdateServerPort persists a new server port to the config file
func UpdateServerPort(configPath string, port int) error {
	return updateSection(configPath, "server", "port", port)
}
