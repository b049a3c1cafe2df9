// Package event reads CI pull-request event payloads
package event

import (
	"encoding/json"
	"os"
)

// EventPathVar is the environment variable naming the event payload file.
const EventPathVar = "GITHUB_EVENT_PATH"

// MaxPayloadSize limits how much of the event file is read (10MB).
const MaxPayloadSize = 10 * 1024 * 1024

// PullRequestEvent is the subset of the GitHub pull_request event payload
// needed to resolve the run context. All fields are optional; a zero value
// means the payload did not carry the field.
type PullRequestEvent struct {
	PullRequest struct {
		Head struct {
			Ref  string `json:"ref"`
			SHA  string `json:"sha"`
			Repo struct {
				FullName string `json:"full_name"`
			} `json:"repo"`
		} `json:"head"`
	} `json:"pull_request"`
}

// HeadRef returns the PR head branch name, if present.
func (e *PullRequestEvent) HeadRef() string {
	return e.PullRequest.Head.Ref
}

// HeadSHA returns the PR head commit hash, if present.
func (e *PullRequestEvent) HeadSHA() string {
	return e.PullRequest.Head.SHA
}

// HeadRepo returns the "owner/repo" name of the PR head repository, if present.
func (e *PullRequestEvent) HeadRepo() string {
	return e.PullRequest.Head.Repo.FullName
}

// Load reads the pull-request event payload from the file named by
// GITHUB_EVENT_PATH. A missing variable, unreadable file, or malformed
// payload all yield an empty event: the caller falls back to environment
// variables and live git queries, so none of these are errors.
func Load() *PullRequestEvent {
	return LoadFromPath(os.Getenv(EventPathVar))
}

// LoadFromPath reads a pull-request event payload from an explicit path.
// Never fails; any problem yields an empty event.
func LoadFromPath(path string) *PullRequestEvent {
	evt := &PullRequestEvent{}
	if path == "" {
		return evt
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return evt
	}
	if len(data) > MaxPayloadSize {
		data = data[:MaxPayloadSize]
	}

	if err := json.Unmarshal(data, evt); err != nil {
		// Malformed payload, treat as empty
		return &PullRequestEvent{}
	}
	return evt
}
