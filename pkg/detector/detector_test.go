package detector

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/flaky-test-toolkit/flake-detector/pkg/classify"
	"github.com/flaky-test-toolkit/flake-detector/pkg/config"
	detecterrors "github.com/flaky-test-toolkit/flake-detector/pkg/errors"
	"github.com/flaky-test-toolkit/flake-detector/pkg/event"
)

// fakeGit replays canned git output keyed by the joined argument string
// and records every invocation.
type fakeGit struct {
	calls     [][]string
	responses map[string]string
	failures  map[string]error
}

func newFakeGit() *fakeGit {
	return &fakeGit{
		responses: map[string]string{},
		failures:  map[string]error{},
	}
}

func (f *fakeGit) Output(ctx context.Context, args ...string) (string, error) {
	f.calls = append(f.calls, args)
	key := strings.Join(args, " ")
	if err, ok := f.failures[key]; ok {
		return "", err
	}
	return f.responses[key], nil
}

func (f *fakeGit) Run(ctx context.Context, args ...string) error {
	_, err := f.Output(ctx, args...)
	return err
}

func (f *fakeGit) called(key string) bool {
	for _, call := range f.calls {
		if strings.Join(call, " ") == key {
			return true
		}
	}
	return false
}

func emptyEvent() *event.PullRequestEvent {
	return &event.PullRequestEvent{}
}

func prEvent(ref, repo, sha string) *event.PullRequestEvent {
	evt := &event.PullRequestEvent{}
	evt.PullRequest.Head.Ref = ref
	evt.PullRequest.Head.Repo.FullName = repo
	evt.PullRequest.Head.SHA = sha
	return evt
}

func noEnv(string) string { return "" }

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Baseline.UpstreamRepo = "acme/webapp"
	return cfg
}

func newTestDetector(cfg *config.Config, git *fakeGit, evt *event.PullRequestEvent, env func(string) string) *Detector {
	return New(cfg, git,
		WithEventLoader(func() *event.PullRequestEvent { return evt }),
		WithGetenv(env),
		WithClassifier(classify.New(".", "test", []string{"js", "ts", "tsx"},
			classify.WithFileExists(func(string) bool { return true }))),
	)
}

func TestDetectClassifiesChangedTests(t *testing.T) {
	git := newFakeGit()
	git.responses["diff origin/canary --name-only"] = strings.Join([]string{
		"test/e2e/foo.test.ts",
		"test/prod/bar.test.js",
		"test/development/baz.test.tsx",
		"test/unit/util.test.js",
		"packages/core/index.ts",
	}, "\n")

	d := newTestDetector(testConfig(), git,
		prEvent("fix/button", "contributor/webapp", "abc123"), noEnv)

	result, err := d.Detect(context.Background())
	if err != nil {
		t.Fatalf("Detect() error: %v", err)
	}

	wantDev := []string{"test/e2e/foo.test.ts", "test/development/baz.test.tsx"}
	wantProd := []string{"test/e2e/foo.test.ts", "test/prod/bar.test.js"}
	if !reflect.DeepEqual(result.DevTests, wantDev) {
		t.Errorf("DevTests = %v, want %v", result.DevTests, wantDev)
	}
	if !reflect.DeepEqual(result.ProdTests, wantProd) {
		t.Errorf("ProdTests = %v, want %v", result.ProdTests, wantProd)
	}
	if result.CommitSHA != "abc123" {
		t.Errorf("CommitSHA = %s, want abc123", result.CommitSHA)
	}

	// Baseline registration and shallow fetch ran before the diff.
	if !git.called("remote set-branches --add origin canary") {
		t.Error("expected baseline branch registration")
	}
	if !git.called("fetch origin canary --depth=20") {
		t.Error("expected shallow fetch of baseline")
	}
}

func TestDetectSkipsOnBaselineBranch(t *testing.T) {
	git := newFakeGit()
	d := newTestDetector(testConfig(), git,
		prEvent(" canary ", "git@github.com:acme/webapp.git", "abc123"), noEnv)

	result, err := d.Detect(context.Background())
	if err != nil {
		t.Fatalf("Detect() error: %v", err)
	}

	if len(result.DevTests) != 0 || len(result.ProdTests) != 0 {
		t.Errorf("expected empty buckets, got %+v", result)
	}
	if result.CommitSHA != "" {
		t.Errorf("CommitSHA = %q, want empty on baseline skip", result.CommitSHA)
	}
	// Everything came from the payload, so no git command at all.
	if len(git.calls) != 0 {
		t.Errorf("expected no git calls, got %v", git.calls)
	}
}

func TestDetectNoSkipOnBaselineBranchOfFork(t *testing.T) {
	git := newFakeGit()
	d := newTestDetector(testConfig(), git,
		prEvent("canary", "fork/webapp", "abc123"), noEnv)

	result, err := d.Detect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	// A fork's canary branch still gets diffed.
	if result.CommitSHA != "abc123" {
		t.Errorf("CommitSHA = %q, want abc123", result.CommitSHA)
	}
	if !git.called("diff origin/canary --name-only") {
		t.Error("expected diff to run for a fork's baseline-named branch")
	}
}

func TestDetectNoSkipWithoutUpstreamRepo(t *testing.T) {
	cfg := testConfig()
	cfg.Baseline.UpstreamRepo = ""

	git := newFakeGit()
	d := newTestDetector(cfg, git, prEvent("canary", "acme/webapp", "abc123"), noEnv)

	if _, err := d.Detect(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !git.called("diff origin/canary --name-only") {
		t.Error("skip must be disabled when upstream_repo is not configured")
	}
}

// TestContextFallbackChain verifies payload beats env beats git for each field.
func TestContextFallbackChain(t *testing.T) {
	env := func(name string) string {
		switch name {
		case EnvRefName:
			return "env-branch"
		case EnvRepository:
			return "env/repo"
		case EnvSHA:
			return "env-sha"
		}
		return ""
	}

	t.Run("payload wins", func(t *testing.T) {
		git := newFakeGit()
		d := newTestDetector(testConfig(), git,
			prEvent("pr-branch", "pr/repo", "pr-sha"), env)

		rc, err := d.resolveContext(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		want := &RunContext{Branch: "pr-branch", RemoteURL: "pr/repo", SHA: "pr-sha"}
		if !reflect.DeepEqual(rc, want) {
			t.Errorf("context = %+v, want %+v", rc, want)
		}
		if len(git.calls) != 0 {
			t.Errorf("git should not be queried, got %v", git.calls)
		}
	})

	t.Run("env wins over git", func(t *testing.T) {
		git := newFakeGit()
		d := newTestDetector(testConfig(), git, emptyEvent(), env)

		rc, err := d.resolveContext(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		want := &RunContext{Branch: "env-branch", RemoteURL: "env/repo", SHA: "env-sha"}
		if !reflect.DeepEqual(rc, want) {
			t.Errorf("context = %+v, want %+v", rc, want)
		}
		if len(git.calls) != 0 {
			t.Errorf("git should not be queried, got %v", git.calls)
		}
	})

	t.Run("git is the last resort", func(t *testing.T) {
		git := newFakeGit()
		git.responses["rev-parse --abbrev-ref HEAD"] = "local-branch"
		git.responses["remote get-url origin"] = "git@github.com:local/repo.git"
		git.responses["rev-parse HEAD"] = "local-sha"

		d := newTestDetector(testConfig(), git, emptyEvent(), noEnv)

		rc, err := d.resolveContext(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		want := &RunContext{
			Branch:    "local-branch",
			RemoteURL: "git@github.com:local/repo.git",
			SHA:       "local-sha",
		}
		if !reflect.DeepEqual(rc, want) {
			t.Errorf("context = %+v, want %+v", rc, want)
		}
	})
}

// TestContextResolutionFailureIsFatal verifies the error asymmetry: a git
// failure while resolving context aborts the run.
func TestContextResolutionFailureIsFatal(t *testing.T) {
	git := newFakeGit()
	git.failures["rev-parse --abbrev-ref HEAD"] = errors.New("not a git repository")

	d := newTestDetector(testConfig(), git, emptyEvent(), noEnv)

	_, err := d.Detect(context.Background())
	if err == nil {
		t.Fatal("expected fatal error")
	}
	if !detecterrors.IsType(err, detecterrors.ErrContext) {
		t.Errorf("error type = %v, want ErrContext", err)
	}
	if !detecterrors.IsFatal(err) {
		t.Error("context resolution errors must be fatal")
	}
}

// TestFetchFailureDegrades verifies a failed baseline fetch does not abort
// and the remote configuration is dumped for diagnostics.
func TestFetchFailureDegrades(t *testing.T) {
	git := newFakeGit()
	git.failures["fetch origin canary --depth=20"] = errors.New("could not resolve host")
	git.responses["remote -v"] = "origin\tgit@github.com:fork/webapp.git (fetch)"
	git.responses["diff origin/canary --name-only"] = "test/e2e/foo.test.ts"

	d := newTestDetector(testConfig(), git,
		prEvent("fix/button", "fork/webapp", "abc123"), noEnv)

	result, err := d.Detect(context.Background())
	if err != nil {
		t.Fatalf("fetch failure must not abort: %v", err)
	}
	if !git.called("remote -v") {
		t.Error("expected remote configuration dump after fetch failure")
	}
	// Diff still ran against what was locally available.
	want := []string{"test/e2e/foo.test.ts"}
	if !reflect.DeepEqual(result.DevTests, want) {
		t.Errorf("DevTests = %v, want %v", result.DevTests, want)
	}
}

func TestDiffFailureYieldsEmptyResult(t *testing.T) {
	git := newFakeGit()
	git.failures["diff origin/canary --name-only"] = errors.New("unknown revision")

	d := newTestDetector(testConfig(), git,
		prEvent("fix/button", "fork/webapp", "abc123"), noEnv)

	result, err := d.Detect(context.Background())
	if err != nil {
		t.Fatalf("diff failure must not abort: %v", err)
	}
	if len(result.DevTests) != 0 || len(result.ProdTests) != 0 {
		t.Errorf("expected empty buckets, got %+v", result)
	}
	if result.CommitSHA != "abc123" {
		t.Errorf("CommitSHA = %s, want abc123", result.CommitSHA)
	}
}

// TestSkippedRunJSONShape verifies a baseline-branch skip still emits
// iterable arrays and omits the commit hash.
func TestSkippedRunJSONShape(t *testing.T) {
	git := newFakeGit()
	d := newTestDetector(testConfig(), git,
		prEvent("canary", "git@github.com:acme/webapp.git", "abc123"), noEnv)

	result, err := d.Detect(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	data, err := json.Marshal(result)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"devTests":[],"prodTests":[]}`
	if string(data) != want {
		t.Errorf("json = %s, want %s", data, want)
	}
}

// TestDegradedRunJSONShape verifies a failed diff degrades to the same
// empty-array wire format.
func TestDegradedRunJSONShape(t *testing.T) {
	git := newFakeGit()
	git.failures["diff origin/canary --name-only"] = errors.New("unknown revision")

	d := newTestDetector(testConfig(), git,
		prEvent("fix/button", "fork/webapp", "abc123"), noEnv)

	result, err := d.Detect(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	data, err := json.Marshal(result)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"devTests":[],"prodTests":[],"commitSha":"abc123"}`
	if string(data) != want {
		t.Errorf("json = %s, want %s", data, want)
	}
}

// TestResultJSONShape pins the wire format consumed by the orchestrator.
func TestResultJSONShape(t *testing.T) {
	result := &Result{
		Buckets: classify.Buckets{
			DevTests:  []string{"test/e2e/foo.test.ts"},
			ProdTests: []string{"test/e2e/foo.test.ts", "test/prod/bar.test.js"},
		},
		CommitSHA: "abc123",
	}

	data, err := json.Marshal(result)
	if err != nil {
		t.Fatal(err)
	}
	got := string(data)
	want := `{"devTests":["test/e2e/foo.test.ts"],"prodTests":["test/e2e/foo.test.ts","test/prod/bar.test.js"],"commitSha":"abc123"}`
	if got != want {
		t.Errorf("json = %s, want %s", got, want)
	}
}
