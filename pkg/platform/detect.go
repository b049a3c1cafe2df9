// Package platform provides CI platform detection functionality
package platform

import (
	"fmt"
	"os"
)

// DetectPlatform auto-detects the current CI platform from environment variables
func DetectPlatform() string {
	// Check GitHub Actions
	if os.Getenv("GITHUB_ACTIONS") == "true" {
		return "github"
	}

	// Check GitLab CI
	if os.Getenv("GITLAB_CI") == "true" {
		return "gitlab"
	}

	// Check Jenkins
	if os.Getenv("JENKINS_HOME") != "" || os.Getenv("JENKINS_URL") != "" {
		return "jenkins"
	}

	// Check CircleCI
	if os.Getenv("CIRCLECI") == "true" {
		return "circleci"
	}

	// Default to local/unknown
	return "local"
}

// IsRunningInCI returns true if running in any known CI environment
func IsRunningInCI() bool {
	return DetectPlatform() != "local"
}

// PlatformInfo contains information about the detected platform
type PlatformInfo struct {
	Name     string
	IsCI     bool
	VarName  string // Name of the environment variable that was detected
	VarValue string // Value of the environment variable
}

// DetectPlatformInfo returns detailed platform detection information
func DetectPlatformInfo() *PlatformInfo {
	info := &PlatformInfo{}

	checks := []struct {
		name    string
		varName string
		detect  func() (bool, string, string)
	}{
		{"github", "GITHUB_ACTIONS", func() (bool, string, string) {
			val := os.Getenv("GITHUB_ACTIONS")
			return val == "true", "GITHUB_ACTIONS", val
		}},
		{"gitlab", "GITLAB_CI", func() (bool, string, string) {
			val := os.Getenv("GITLAB_CI")
			return val == "true", "GITLAB_CI", val
		}},
		{"jenkins", "JENKINS_HOME", func() (bool, string, string) {
			val := os.Getenv("JENKINS_HOME")
			if val != "" {
				return true, "JENKINS_HOME", val
			}
			val = os.Getenv("JENKINS_URL")
			return val != "", "JENKINS_URL", val
		}},
		{"circleci", "CIRCLECI", func() (bool, string, string) {
			val := os.Getenv("CIRCLECI")
			return val == "true", "CIRCLECI", val
		}},
	}

	for _, check := range checks {
		if detected, varName, varValue := check.detect(); detected {
			info.Name = check.name
			info.IsCI = true
			info.VarName = varName
			info.VarValue = varValue
			return info
		}
	}

	// No CI detected
	info.Name = "local"
	info.IsCI = false
	return info
}

// GetSupportedPlatforms returns list of supported platform names
func GetSupportedPlatforms() []string {
	return []string{
		"github",
		"gitlab",
		"jenkins",
		"circleci",
		"local",
	}
}

// ValidatePlatform checks if a platform name is supported
func ValidatePlatform(platform string) error {
	supported := GetSupportedPlatforms()
	for _, name := range supported {
		if platform == name {
			return nil
		}
	}
	return fmt.Errorf("unsupported platform: %s (supported: %v)", platform, supported)
}
