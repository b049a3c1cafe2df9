//go:build tools

// Package tools pins development tool dependencies for flake-detector.
// Nothing here ships in the binary; the build tag keeps the imports out
// of ordinary builds.
package tools

import (
// Lint and formatting tools, enabled per-checkout with go mod tidy:
// _ "github.com/golangci/golangci-lint/cmd/golangci-lint"
// _ "mvdan.cc/gofumpt"
)
