// Package main provides the flake-detector CLI application.
package main

import (
	"github.com/flaky-test-toolkit/flake-detector/pkg/version"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "flake-detector",
	Short: "Flaky Test Toolkit change detector",
	Long: `Flaky Test Toolkit change detector.

Determines which test files changed relative to a baseline branch and
classifies them into development-mode and production-mode buckets for
downstream flake detection.`,
	Version: version.FullString(),
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}
