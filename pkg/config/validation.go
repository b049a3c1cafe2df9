// Package config handles configuration loading and validation
package config

import (
	"fmt"
	"path"
	"strings"
)

const (
	// MaxFetchDepth is the maximum allowed shallow fetch depth
	MaxFetchDepth = 1000
)

// Validate validates the configuration
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config is nil")
	}

	if err := c.Baseline.Validate(); err != nil {
		return fmt.Errorf("baseline config: %w", err)
	}

	if err := c.Tests.Validate(); err != nil {
		return fmt.Errorf("tests config: %w", err)
	}

	if err := c.Global.Validate(); err != nil {
		return fmt.Errorf("global config: %w", err)
	}

	return nil
}

// Validate validates baseline branch settings
func (b *BaselineConfig) Validate() error {
	if strings.TrimSpace(b.Branch) == "" {
		return fmt.Errorf("branch is required")
	}
	if strings.TrimSpace(b.Remote) == "" {
		return fmt.Errorf("remote is required")
	}
	if b.FetchDepth <= 0 {
		return fmt.Errorf("fetch_depth must be positive, got %d", b.FetchDepth)
	}
	if b.FetchDepth > MaxFetchDepth {
		return fmt.Errorf("fetch_depth %d exceeds maximum %d", b.FetchDepth, MaxFetchDepth)
	}
	return nil
}

// Validate validates test matching settings
func (tc *TestsConfig) Validate() error {
	if tc.Dir == "" {
		return fmt.Errorf("dir is required")
	}
	if path.IsAbs(tc.Dir) || strings.Contains(tc.Dir, "..") {
		return fmt.Errorf("dir must be a relative path inside the repository: %q", tc.Dir)
	}
	if len(tc.Extensions) == 0 {
		return fmt.Errorf("at least one extension is required")
	}
	for _, ext := range tc.Extensions {
		if ext == "" || strings.HasPrefix(ext, ".") {
			return fmt.Errorf("extensions must be bare suffixes like \"ts\", got %q", ext)
		}
	}
	return nil
}

// Validate validates global settings
func (g *GlobalConfig) Validate() error {
	switch g.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level: %q", g.LogLevel)
	}
	return nil
}
