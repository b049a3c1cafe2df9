// Package main provides the flake-detector CLI application.
package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/flaky-test-toolkit/flake-detector/pkg/config"
	"github.com/flaky-test-toolkit/flake-detector/pkg/detector"
	"github.com/flaky-test-toolkit/flake-detector/pkg/gitx"
	"github.com/flaky-test-toolkit/flake-detector/pkg/logging"
	"github.com/flaky-test-toolkit/flake-detector/pkg/platform"
)

// detectCmd represents the detect command
var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Classify test files changed against the baseline branch",
	Long: `Classify test files changed against the baseline branch.

Resolves the working branch, remote and commit from the CI event payload,
environment variables or git, diffs against the baseline branch, and
prints the dev/prod test classification as JSON on stdout. Diagnostics go
to stderr.

Fetch and diff problems degrade to an empty classification; only
configuration and context-resolution failures exit non-zero.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		logger, err := logging.New(cfg.Global.LogLevel)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		platformName, err := resolvePlatform(detectOpts.platform)
		if err != nil {
			return err
		}
		info := platform.DetectPlatformInfo()
		logger.Debug("CI platform",
			zap.String("platform", platformName),
			zap.String("detected_via", info.VarName))
		if !info.IsCI {
			logger.Info("not running in a known CI environment, event payload and CI variables not expected")
		}

		runner := gitx.NewCLI(cfg.Global.RepoDir)
		d := detector.New(cfg, runner, detector.WithLogger(logger))

		result, err := d.Detect(cmd.Context())
		if err != nil {
			return err
		}

		out, err := json.Marshal(result)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

// detectFlags holds the flags for the detect command
type detectFlags struct {
	config   string
	repoDir  string
	logLevel string
	platform string
}

var detectOpts detectFlags

// resolvePlatform turns the --platform flag into a concrete platform
// name, auto-detecting from the environment when unset or "auto".
func resolvePlatform(name string) (string, error) {
	if name == "" || name == "auto" {
		return platform.DetectPlatform(), nil
	}
	if err := platform.ValidatePlatform(name); err != nil {
		return "", err
	}
	return name, nil
}

func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if detectOpts.config != "" {
		cfg, err = config.NewLoader().LoadFromPath(detectOpts.config)
	} else {
		cfg, err = config.NewLoader().WithProjectRoot(detectOpts.repoDir).Load()
	}
	if err != nil {
		return nil, err
	}

	// Flags win over file and environment.
	if detectOpts.repoDir != "" {
		cfg.Global.RepoDir = detectOpts.repoDir
	}
	if detectOpts.logLevel != "" {
		cfg.Global.LogLevel = detectOpts.logLevel
	}
	return cfg, nil
}

func init() {
	rootCmd.AddCommand(detectCmd)

	// Local flags for the detect command
	detectCmd.Flags().StringVarP(&detectOpts.config, "config", "c", "", "Path to configuration file")
	detectCmd.Flags().StringVar(&detectOpts.repoDir, "repo-dir", "", "Repository working directory (default is the current directory)")
	detectCmd.Flags().StringVar(&detectOpts.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	detectCmd.Flags().StringVar(&detectOpts.platform, "platform", "auto", "CI platform: auto, github, gitlab, jenkins, circleci, local")
}
