// Package config loads the optional YAML configuration file whose lists
// are appended to the corresponding CLI-derived ones.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config mirrors the YAML file layout. Every key is optional.
type Config struct {
	ClangArgs        []string `yaml:"clang_args"`
	ExcludedPrefixes []string `yaml:"excluded_prefixes"`
	ExcludedPaths    []string `yaml:"excluded_paths"`
}

// Load reads and parses a YAML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &cfg, nil
}
