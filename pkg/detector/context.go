// Copyright 2026 Flaky Test Toolkit. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");

package detector

import (
	"context"
	"os"

	"github.com/flaky-test-toolkit/flake-detector/pkg/errors"
)

// Environment variables provided by GitHub Actions, used as the middle
// rung of the fallback chain.
const (
	EnvRefName    = "GITHUB_REF_NAME"
	EnvRepository = "GITHUB_REPOSITORY"
	EnvSHA        = "GITHUB_SHA"
)

// RunContext identifies what is being tested. Resolved once per run and
// immutable afterwards.
type RunContext struct {
	// Branch is the working branch name.
	Branch string
	// RemoteURL locates the repository the branch belongs to. May be a
	// full git URL or a bare "owner/repo" identifier depending on which
	// provider won.
	RemoteURL string
	// SHA is the head commit hash.
	SHA string
}

// provider lazily yields one candidate value for a context field.
type provider func(ctx context.Context) (string, error)

// fromValue wraps an already-known value, typically from the event payload.
func fromValue(v string) provider {
	return func(context.Context) (string, error) {
		return v, nil
	}
}

// fromEnv reads an environment variable through the detector's getenv.
func (d *Detector) fromEnv(name string) provider {
	return func(context.Context) (string, error) {
		return d.getenv(name), nil
	}
}

// firstNonEmpty evaluates providers in order and returns the first
// non-empty value. Providers after the winner are never invoked. A
// provider error propagates: the chain ends in live git queries, and a
// failing git query during context resolution is fatal.
func firstNonEmpty(ctx context.Context, providers ...provider) (string, error) {
	for _, p := range providers {
		v, err := p(ctx)
		if err != nil {
			return "", err
		}
		if v != "" {
			return v, nil
		}
	}
	return "", nil
}

// resolveContext builds the RunContext. Each field falls back through
// event payload, environment variable, then a live git query.
func (d *Detector) resolveContext(ctx context.Context) (*RunContext, error) {
	evt := d.loadEvent()

	branch, err := firstNonEmpty(ctx,
		fromValue(evt.HeadRef()),
		d.fromEnv(EnvRefName),
		d.repo.CurrentBranch,
	)
	if err != nil {
		return nil, errors.ContextError("resolving branch name", err)
	}

	remoteURL, err := firstNonEmpty(ctx,
		fromValue(evt.HeadRepo()),
		d.fromEnv(EnvRepository),
		func(ctx context.Context) (string, error) {
			return d.repo.RemoteURL(ctx, d.cfg.Baseline.Remote)
		},
	)
	if err != nil {
		return nil, errors.ContextError("resolving remote URL", err)
	}

	sha, err := firstNonEmpty(ctx,
		fromValue(evt.HeadSHA()),
		d.fromEnv(EnvSHA),
		d.repo.HeadSHA,
	)
	if err != nil {
		return nil, errors.ContextError("resolving head commit", err)
	}

	return &RunContext{Branch: branch, RemoteURL: remoteURL, SHA: sha}, nil
}

func defaultGetenv(name string) string {
	return os.Getenv(name)
}
