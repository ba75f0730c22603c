package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"planboard/internal/config"
)

// loadSettings reads the configuration, honouring an explicit -config path.
func loadSettings(path string) (*config.Config, error) {
	if path != "" {
		if err := os.Setenv("PLANBOARD_CONFIG", path); err != nil {
			return nil, fmt.Errorf("set config path: %w", err)
		}
	}
	return config.Load()
}

// saveDir is where exported files go and where the import picker looks.
func saveDir(cfg *config.Config) string {
	if cfg.Store.SaveDirectory == "" {
		return "."
	}
	return cfg.Store.SaveDirectory
}

// savePath resolves name against the save directory unless it is already absolute.
func savePath(cfg *config.Config, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(saveDir(cfg), name)
}

// listFiles returns the sorted names in dir ending in one of exts. With no exts every
// regular file is listed.
func listFiles(dir string, exts ...string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if len(exts) == 0 || hasExt(entry.Name(), exts) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names
}

func hasExt(name string, exts []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range exts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
