// Copyright 2026 Flaky Test Toolkit. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package detector finds test files changed relative to a baseline branch
// and classifies them into development-mode and production-mode buckets
// for downstream flaky-test detection.
//
// Detection is best-effort. Once the run context (branch, remote URL,
// commit) has been resolved, nothing fails the run: a broken fetch or
// diff degrades to an empty classification with diagnostics in the log.
package detector

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/flaky-test-toolkit/flake-detector/pkg/classify"
	"github.com/flaky-test-toolkit/flake-detector/pkg/config"
	"github.com/flaky-test-toolkit/flake-detector/pkg/errors"
	"github.com/flaky-test-toolkit/flake-detector/pkg/event"
	"github.com/flaky-test-toolkit/flake-detector/pkg/gitx"
	"github.com/flaky-test-toolkit/flake-detector/pkg/platform"
)

// Result is the classification returned to the orchestrating step.
// Bucket order follows git diff output order; paths are not deduplicated.
type Result struct {
	classify.Buckets
	// CommitSHA identifies the head commit the classification was made
	// for. Empty when the run was skipped on the baseline branch.
	CommitSHA string `json:"commitSha,omitempty"`
}

// Detector classifies changed test files against a baseline branch.
type Detector struct {
	cfg        *config.Config
	repo       *gitx.Repo
	classifier *classify.Classifier
	logger     *zap.Logger

	loadEvent func() *event.PullRequestEvent
	getenv    func(string) string
}

// Option configures a Detector.
type Option func(*Detector)

// WithLogger sets the diagnostics logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Detector) {
		d.logger = logger
	}
}

// WithClassifier overrides the classifier built from the config.
func WithClassifier(c *classify.Classifier) Option {
	return func(d *Detector) {
		d.classifier = c
	}
}

// WithEventLoader overrides how the pull-request event payload is read.
func WithEventLoader(fn func() *event.PullRequestEvent) Option {
	return func(d *Detector) {
		d.loadEvent = fn
	}
}

// WithGetenv overrides environment lookups, for tests.
func WithGetenv(fn func(string) string) Option {
	return func(d *Detector) {
		d.getenv = fn
	}
}

// New creates a Detector running git through the given runner.
func New(cfg *config.Config, runner gitx.Runner, opts ...Option) *Detector {
	d := &Detector{
		cfg:       cfg,
		repo:      gitx.NewRepo(runner),
		logger:    zap.NewNop(),
		loadEvent: event.Load,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.classifier == nil {
		d.classifier = classify.New(cfg.Global.RepoDir, cfg.Tests.Dir, cfg.Tests.Extensions)
	}
	if d.getenv == nil {
		d.getenv = defaultGetenv
	}
	return d
}

// Detect resolves the run context, diffs against the baseline branch, and
// classifies the changed test files.
//
// The only error it returns is a fatal one from context resolution or
// configuration. Baseline fetch and diff failures are logged and degrade
// to an empty, well-formed Result.
func (d *Detector) Detect(ctx context.Context) (*Result, error) {
	logger := d.logger.With(zap.String("run_id", uuid.NewString()))
	logger.Debug("starting change detection",
		zap.String("platform", platform.DetectPlatform()),
		zap.String("baseline", d.cfg.Baseline.Branch))

	rc, err := d.resolveContext(ctx)
	if err != nil {
		return nil, err
	}
	logger.Info("resolved run context",
		zap.String("branch", rc.Branch),
		zap.String("remote_url", rc.RemoteURL),
		zap.String("commit", rc.SHA))

	// Running flake detection against the baseline itself is pointless:
	// there is nothing to diff. Skip the run entirely.
	if d.onBaseline(rc) {
		logger.Info("on baseline branch of upstream repository, skipping",
			zap.String("branch", rc.Branch))
		return &Result{Buckets: classify.EmptyBuckets()}, nil
	}

	files := d.changedFiles(ctx, logger)
	logger.Debug("changed files from diff", zap.Strings("files", files))

	result := &Result{
		Buckets:   d.classifier.Classify(files),
		CommitSHA: rc.SHA,
	}
	logger.Info("classified changed tests",
		zap.Int("dev_tests", len(result.DevTests)),
		zap.Int("prod_tests", len(result.ProdTests)),
		zap.Strings("dev", result.DevTests),
		zap.Strings("prod", result.ProdTests))
	return result, nil
}

// onBaseline reports whether the resolved context is the baseline branch
// of the configured upstream repository. An unset upstream_repo disables
// the check. Forks never match: their remote URL carries the fork name.
func (d *Detector) onBaseline(rc *RunContext) bool {
	if d.cfg.Baseline.UpstreamRepo == "" {
		return false
	}
	return strings.TrimSpace(rc.Branch) == d.cfg.Baseline.Branch &&
		strings.Contains(rc.RemoteURL, d.cfg.Baseline.UpstreamRepo)
}

// changedFiles fetches the baseline branch and diffs against it.
// Both steps are best-effort.
func (d *Detector) changedFiles(ctx context.Context, logger *zap.Logger) []string {
	baseline := d.cfg.Baseline

	if err := d.repo.TrackBranch(ctx, baseline.Remote, baseline.Branch); err != nil {
		d.logFetchFailure(ctx, logger, err)
	} else if err := d.repo.FetchBranch(ctx, baseline.Remote, baseline.Branch, baseline.FetchDepth); err != nil {
		d.logFetchFailure(ctx, logger, err)
	}
	// Keep going either way: the diff runs against whatever is locally
	// available, which may be nothing.

	files, err := d.repo.DiffNameOnly(ctx, baseline.Remote+"/"+baseline.Branch)
	if err != nil {
		logger.Warn("diff against baseline failed, classifying nothing",
			zap.Error(errors.DiffError("git diff failed", err)))
		return nil
	}
	return files
}

// logFetchFailure logs a failed baseline fetch together with the remote
// configuration, which is the first thing needed to debug it.
func (d *Detector) logFetchFailure(ctx context.Context, logger *zap.Logger, cause error) {
	fields := []zap.Field{
		zap.Error(errors.FetchError("baseline fetch failed", cause)),
		zap.String("branch", d.cfg.Baseline.Branch),
	}
	if remotes, err := d.repo.RemoteDump(ctx); err == nil {
		fields = append(fields, zap.String("remotes", remotes))
	}
	logger.Warn("could not fetch baseline branch", fields...)
}
