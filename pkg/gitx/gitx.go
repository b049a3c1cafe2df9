// Copyright 2026 Flaky Test Toolkit. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package gitx shells out to the git binary.
//
// Detection logic depends only on the Runner interface so tests can
// substitute a fake without a git executable or a real repository.
package gitx

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Runner executes git commands in a repository working directory.
type Runner interface {
	// Output runs git with the given arguments and returns trimmed stdout.
	Output(ctx context.Context, args ...string) (string, error)

	// Run runs git with the given arguments, discarding stdout.
	Run(ctx context.Context, args ...string) error
}

// CLI is the Runner implementation backed by the git executable.
type CLI struct {
	binary string
	dir    string
}

// NewCLI creates a git runner operating in dir. An empty dir means the
// process working directory.
func NewCLI(dir string) *CLI {
	return &CLI{binary: "git", dir: dir}
}

// WithBinary sets a custom git binary path.
func (c *CLI) WithBinary(binary string) *CLI {
	c.binary = binary
	return c
}

// Output runs git and returns trimmed stdout. On failure the error
// includes captured stderr, which is where git writes its diagnostics.
func (c *CLI) Output(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, c.binary, args...)
	cmd.Dir = c.dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %w: %s",
			strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}

// Run runs git, discarding stdout.
func (c *CLI) Run(ctx context.Context, args ...string) error {
	_, err := c.Output(ctx, args...)
	return err
}

// Repo exposes the git operations the detector needs, bound to a Runner.
type Repo struct {
	runner Runner
}

// NewRepo creates a Repo on top of a Runner.
func NewRepo(runner Runner) *Repo {
	return &Repo{runner: runner}
}

// CurrentBranch returns the checked-out branch name.
func (r *Repo) CurrentBranch(ctx context.Context) (string, error) {
	return r.runner.Output(ctx, "rev-parse", "--abbrev-ref", "HEAD")
}

// RemoteURL returns the fetch URL of the named remote.
func (r *Repo) RemoteURL(ctx context.Context, remote string) (string, error) {
	return r.runner.Output(ctx, "remote", "get-url", remote)
}

// HeadSHA returns the commit hash of HEAD.
func (r *Repo) HeadSHA(ctx context.Context) (string, error) {
	return r.runner.Output(ctx, "rev-parse", "HEAD")
}

// TrackBranch registers branch as a tracked branch of the remote so a
// subsequent fetch picks it up in shallow clones.
func (r *Repo) TrackBranch(ctx context.Context, remote, branch string) error {
	return r.runner.Run(ctx, "remote", "set-branches", "--add", remote, branch)
}

// FetchBranch fetches branch from the remote with a shallow depth.
func (r *Repo) FetchBranch(ctx context.Context, remote, branch string, depth int) error {
	return r.runner.Run(ctx, "fetch", remote, branch, "--depth="+strconv.Itoa(depth))
}

// DiffNameOnly returns the paths changed between the working tree and ref,
// one path per element, in diff output order.
func (r *Repo) DiffNameOnly(ctx context.Context, ref string) ([]string, error) {
	out, err := r.runner.Output(ctx, "diff", ref, "--name-only")
	if err != nil {
		return nil, err
	}
	return SplitLines(out), nil
}

// RemoteDump returns the `git remote -v` output, used for diagnostics
// when a fetch fails.
func (r *Repo) RemoteDump(ctx context.Context) (string, error) {
	return r.runner.Output(ctx, "remote", "-v")
}

// SplitLines splits command output into non-empty trimmed lines.
func SplitLines(out string) []string {
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
