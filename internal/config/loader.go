package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// Load builds the board configuration. Environment variables win over planboard.yaml,
// which wins over the env-default tags. PLANBOARD_CONFIG names the file; when it is unset
// and ./planboard.yaml is missing, the board runs on environment and defaults alone, but
// a PLANBOARD_CONFIG pointing at a missing file is an error.
func Load() (*Config, error) {
	var cfg Config

	path := os.Getenv("PLANBOARD_CONFIG")
	explicitPath := path != ""
	if !explicitPath {
		path = "./planboard.yaml"
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicitPath {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	return &cfg, nil
}

// expandHome resolves a leading ~ and makes the path absolute.
func expandHome(p string) string {
	if p == "" {
		return p
	}
	if strings.HasPrefix(p, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	return p
}
