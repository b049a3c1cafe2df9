// Copyright 2026 Flaky Test Toolkit. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package config provides configuration management for flake-detector.
//
// Configuration Loading Order (later overrides earlier):
// 1. Defaults (hardcoded)
// 2. Project Config: ./.flake-detector.yaml
// 3. Environment Variables: FLAKE_DETECTOR_*
package config

// Config represents the complete application configuration.
type Config struct {
	Baseline BaselineConfig `yaml:"baseline"`
	Tests    TestsConfig    `yaml:"tests"`
	Global   GlobalConfig   `yaml:"global"`
}

// BaselineConfig describes the branch the working tree is diffed against.
type BaselineConfig struct {
	// Branch is the baseline branch name, e.g. "canary".
	Branch string `yaml:"branch"`
	// Remote is the git remote carrying the baseline branch.
	Remote string `yaml:"remote"`
	// UpstreamRepo is the "owner/repo" identifier of the upstream
	// repository. When the current branch IS the baseline branch and the
	// remote URL contains this identifier, detection is skipped entirely.
	// Empty disables the skip.
	UpstreamRepo string `yaml:"upstream_repo"`
	// FetchDepth is the shallow fetch depth for the baseline branch.
	FetchDepth int `yaml:"fetch_depth"`
}

// TestsConfig describes where test files live and how they are matched.
type TestsConfig struct {
	// Dir is the test root directory relative to the repository root.
	Dir string `yaml:"dir"`
	// Extensions are the test file extensions considered, without dots.
	Extensions []string `yaml:"extensions"`
}

// GlobalConfig contains global application settings.
type GlobalConfig struct {
	LogLevel string `yaml:"log_level"` // debug, info, warn, error
	RepoDir  string `yaml:"repo_dir"`  // Working directory for git commands
}
