package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/agrosub/agrosub-backend/internal/logger"
)

// File is the optional YAML deployment config. Values only seed environment
// variables that are not already set, so the environment always wins.
type File struct {
	Env map[string]string `yaml:"env"`
}

func Apply(path string, log *logger.Logger) error {
	if path == "" {
		return nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("Failed to read config file %q: %w", path, err)
	}
	var cfg File
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return fmt.Errorf("Failed to parse config file %q: %w", path, err)
	}
	for key, val := range cfg.Env {
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		if err := os.Setenv(key, val); err != nil {
			return fmt.Errorf("Failed to set %s from config: %w", key, err)
		}
		if log != nil {
			log.Debug("Seeded environment variable from config file", "env_var", key)
		}
	}
	return nil
}
