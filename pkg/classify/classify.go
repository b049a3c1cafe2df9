// Copyright 2026 Flaky Test Toolkit. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package classify buckets changed test files by build mode.
package classify

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Buckets holds classified test file paths. Order follows the order in
// which paths were added, which the detector keeps aligned with git diff
// output. Paths are not deduplicated.
type Buckets struct {
	DevTests  []string `json:"devTests"`
	ProdTests []string `json:"prodTests"`
}

// Classifier matches changed paths against the test layout and assigns
// them to build-mode buckets.
type Classifier struct {
	testDir string
	pattern *regexp.Regexp

	// fileExists is swapped out in tests.
	fileExists func(path string) bool
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithFileExists overrides the on-disk existence check.
func WithFileExists(fn func(path string) bool) Option {
	return func(c *Classifier) {
		c.fileExists = fn
	}
}

// New creates a Classifier for test files under testDir with the given
// extensions (bare suffixes like "ts"). repoDir is where existence checks
// resolve relative paths; empty means the process working directory.
func New(repoDir, testDir string, extensions []string, opts ...Option) *Classifier {
	quoted := make([]string, len(extensions))
	for i, ext := range extensions {
		quoted[i] = regexp.QuoteMeta(ext)
	}
	pattern := regexp.MustCompile(
		"^" + regexp.QuoteMeta(testDir) + "/.*\\.test\\.(" + strings.Join(quoted, "|") + ")$")

	c := &Classifier{
		testDir: testDir,
		pattern: pattern,
		fileExists: func(path string) bool {
			info, err := os.Stat(filepath.Join(repoDir, filepath.FromSlash(path)))
			return err == nil && !info.IsDir()
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// EmptyBuckets returns buckets with allocated, empty slices. Consumers
// iterate the JSON arrays, so an empty classification must marshal as
// [] rather than null.
func EmptyBuckets() Buckets {
	return Buckets{DevTests: []string{}, ProdTests: []string{}}
}

// Normalize rewrites backslash separators to forward slashes so paths
// reported by git on Windows match the same rules.
func Normalize(path string) string {
	return strings.ReplaceAll(path, "\\", "/")
}

// Matches reports whether a normalized path is a test file the detector
// cares about.
func (c *Classifier) Matches(path string) bool {
	return c.pattern.MatchString(path)
}

// Add classifies one changed path into the buckets. Paths that do not
// match the test pattern, or that no longer exist on disk (the diff may
// report deleted files), are discarded.
//
// Rules are evaluated in order, first match wins:
//   - <testDir>/e2e/        -> both buckets
//   - <testDir>/prod        -> prod only
//   - <testDir>/development -> dev only
//   - anything else         -> discarded
func (c *Classifier) Add(buckets *Buckets, path string) {
	normalized := Normalize(path)

	if !c.Matches(normalized) {
		return
	}
	if !c.fileExists(normalized) {
		return
	}

	switch {
	case strings.HasPrefix(normalized, c.testDir+"/e2e/"):
		buckets.DevTests = append(buckets.DevTests, normalized)
		buckets.ProdTests = append(buckets.ProdTests, normalized)
	case strings.HasPrefix(normalized, c.testDir+"/prod"):
		buckets.ProdTests = append(buckets.ProdTests, normalized)
	case strings.HasPrefix(normalized, c.testDir+"/development"):
		buckets.DevTests = append(buckets.DevTests, normalized)
	}
}

// Classify buckets a full list of changed paths, preserving input order.
func (c *Classifier) Classify(paths []string) Buckets {
	buckets := EmptyBuckets()
	for _, path := range paths {
		c.Add(&buckets, path)
	}
	return buckets
}
