// Copyright 2026 Flaky Test Toolkit. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package config

// DefaultConfig returns the default configuration.
// These values are used when no config file is present.
func DefaultConfig() *Config {
	return &Config{
		Baseline: DefaultBaselineConfig(),
		Tests:    DefaultTestsConfig(),
		Global: GlobalConfig{
			LogLevel: "info",
			RepoDir:  ".",
		},
	}
}

// DefaultBaselineConfig returns default baseline branch configuration.
func DefaultBaselineConfig() BaselineConfig {
	return BaselineConfig{
		Branch:       "canary",
		Remote:       "origin",
		UpstreamRepo: "", // must be set to enable the baseline-branch skip
		FetchDepth:   20,
	}
}

// DefaultTestsConfig returns default test matching configuration.
func DefaultTestsConfig() TestsConfig {
	return TestsConfig{
		Dir:        "test",
		Extensions: []string{"js", "ts", "tsx"},
	}
}
