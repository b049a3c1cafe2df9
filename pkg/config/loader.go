// Copyright 2026 Flaky Test Toolkit. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package config

import (
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

const (
	// EnvPrefix is the prefix for all environment variables.
	EnvPrefix = "FLAKE_DETECTOR"
	// ProjectConfigFile is the project-level config file name.
	ProjectConfigFile = ".flake-detector.yaml"
)

// Loader loads configuration from files and environment.
type Loader struct {
	projectRoot string
}

// NewLoader creates a new config loader.
func NewLoader() *Loader {
	return &Loader{}
}

// WithProjectRoot sets the project root directory.
func (l *Loader) WithProjectRoot(root string) *Loader {
	l.projectRoot = root
	return l
}

// Load loads configuration with full precedence order:
// 1. Defaults
// 2. Project Config (./.flake-detector.yaml)
// 3. Environment Variables (FLAKE_DETECTOR_*)
func (l *Loader) Load() (*Config, error) {
	// Start with defaults
	cfg := DefaultConfig()

	// Load project config
	projectCfg, err := l.loadProjectConfig()
	if err == nil {
		mergeConfig(cfg, projectCfg)
	}
	// Ignore errors for project config (it's optional)

	// Apply environment overrides
	l.applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific path.
func (l *Loader) LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	fileCfg := &Config{}
	if err := yaml.Unmarshal(data, fileCfg); err != nil {
		return nil, err
	}
	mergeConfig(cfg, fileCfg)

	l.applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (l *Loader) loadProjectConfig() (*Config, error) {
	root := l.projectRoot
	if root == "" {
		root = "."
	}

	data, err := os.ReadFile(filepath.Join(root, ProjectConfigFile))
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies FLAKE_DETECTOR_* environment variables.
// Environment always wins over file-based config.
func (l *Loader) applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvPrefix + "_BASELINE_BRANCH"); v != "" {
		cfg.Baseline.Branch = v
	}
	if v := os.Getenv(EnvPrefix + "_BASELINE_REMOTE"); v != "" {
		cfg.Baseline.Remote = v
	}
	if v := os.Getenv(EnvPrefix + "_UPSTREAM_REPO"); v != "" {
		cfg.Baseline.UpstreamRepo = v
	}
	if v := os.Getenv(EnvPrefix + "_FETCH_DEPTH"); v != "" {
		if depth, err := strconv.Atoi(v); err == nil {
			cfg.Baseline.FetchDepth = depth
		}
	}
	if v := os.Getenv(EnvPrefix + "_TEST_DIR"); v != "" {
		cfg.Tests.Dir = v
	}
	if v := os.Getenv(EnvPrefix + "_LOG_LEVEL"); v != "" {
		cfg.Global.LogLevel = v
	}
	if v := os.Getenv(EnvPrefix + "_REPO_DIR"); v != "" {
		cfg.Global.RepoDir = v
	}
}

// mergeConfig merges non-zero values of src into dst.
func mergeConfig(dst, src *Config) {
	if src.Baseline.Branch != "" {
		dst.Baseline.Branch = src.Baseline.Branch
	}
	if src.Baseline.Remote != "" {
		dst.Baseline.Remote = src.Baseline.Remote
	}
	if src.Baseline.UpstreamRepo != "" {
		dst.Baseline.UpstreamRepo = src.Baseline.UpstreamRepo
	}
	if src.Baseline.FetchDepth != 0 {
		dst.Baseline.FetchDepth = src.Baseline.FetchDepth
	}
	if src.Tests.Dir != "" {
		dst.Tests.Dir = src.Tests.Dir
	}
	if len(src.Tests.Extensions) > 0 {
		dst.Tests.Extensions = src.Tests.Extensions
	}
	if src.Global.LogLevel != "" {
		dst.Global.LogLevel = src.Global.LogLevel
	}
	if src.Global.RepoDir != "" {
		dst.Global.RepoDir = src.Global.RepoDir
	}
}
