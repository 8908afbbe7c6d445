package tunebridge

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Config is the persisted state co-located with the engine's working
// directory: just the backend install path, matching the original
// bootstrap's single-key config document.
type Config struct {
	NeutrinoPath string `json:"neutrinoPath"`
}

const configFileName = "config.json"

// LoadOrCreateConfig reads config.json from dir. If it doesn't exist, a
// zero-value Config is written and returned.
func LoadOrCreateConfig(dir string) (*Config, error) {
	path := filepath.Join(dir, configFileName)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		cfg := &Config{}
		if err := cfg.Save(dir); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	if err != nil {
		return nil, &ConfigurationError{Path: path, Message: "failed to read config file: " + err.Error()}
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, &ConfigurationError{Path: path, Message: "failed to parse config file: " + err.Error()}
	}
	return &cfg, nil
}

// Save persists the config as indented JSON under dir/config.json.
func (c *Config) Save(dir string) error {
	path := filepath.Join(dir, configFileName)
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return &ConfigurationError{Path: path, Message: "failed to encode config: " + err.Error()}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &ConfigurationError{Path: path, Message: "failed to write config file: " + err.Error()}
	}
	return nil
}
