package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tidwall/gjson"

	"taskmill/internal/run"
)

func writeFixture(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func TestExecute_EndToEndBuildThenSkip(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, filepath.Join(dir, "src.txt"), "source\n")
	writeFixture(t, filepath.Join(dir, "Tasks.json"), `{
	  "tasks": [
	    {"name": "build", "run": "cp src.txt out.bin", "inputs": ["src.txt"], "outputs": ["out.bin"]}
	  ]
	}`)

	inv, err := ParseInvocation([]string{
		"--workdir", dir,
		"--manifest", "Tasks.json",
		"--trace", "report.json",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var progress bytes.Buffer
	result, err := execute(context.Background(), inv, &progress)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ExitCode != ExitSuccess {
		t.Fatalf("unexpected exit code %d", result.ExitCode)
	}
	if result.RunID == "" {
		t.Fatalf("run id must be assigned")
	}
	if !strings.Contains(progress.String(), "Running task build (missing outputs: ") {
		t.Fatalf("run not reported:\n%s", progress.String())
	}
	if _, err := os.Stat(filepath.Join(dir, "out.bin")); err != nil {
		t.Fatalf("output not produced: %v", err)
	}

	report, err := os.ReadFile(filepath.Join(dir, "report.json"))
	if err != nil {
		t.Fatalf("run report not written: %v", err)
	}
	if got := gjson.GetBytes(report, "runId").String(); got != result.RunID {
		t.Fatalf("report run id mismatch: %q vs %q", got, result.RunID)
	}
	if got := gjson.GetBytes(report, "events.0.kind").String(); got != "TaskRan" {
		t.Fatalf("unexpected first event: %s", report)
	}

	// Second invocation: the output is fresh, the manifest unchanged.
	progress.Reset()
	result, err = execute(context.Background(), inv, &progress)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ExitCode != ExitSuccess {
		t.Fatalf("unexpected exit code %d", result.ExitCode)
	}
	if !strings.Contains(progress.String(), "Skipped task build") {
		t.Fatalf("skip not reported:\n%s", progress.String())
	}

	report, err = os.ReadFile(filepath.Join(dir, "report.json"))
	if err != nil {
		t.Fatalf("run report not rewritten: %v", err)
	}
	if got := gjson.GetBytes(report, "events.0.kind").String(); got != "TaskSkipped" {
		t.Fatalf("expected a skip event, got: %s", report)
	}
}

func TestExecute_MissingInputIsRunFailure(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, filepath.Join(dir, "Tasks.json"), `{
	  "tasks": [
	    {"name": "build", "run": "true", "inputs": ["absent.txt"], "outputs": ["out.bin"]}
	  ]
	}`)

	inv, err := ParseInvocation([]string{"--workdir", dir, "--manifest", "Tasks.json"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var progress bytes.Buffer
	result, err := execute(context.Background(), inv, &progress)
	if err == nil {
		t.Fatalf("expected missing-input failure")
	}
	if !errors.Is(err, run.ErrMissingInput) {
		t.Fatalf("expected ErrMissingInput, got %v", err)
	}
	if result.ExitCode != ExitRunFailure {
		t.Fatalf("unexpected exit code %d", result.ExitCode)
	}
}

func TestExecute_FailingTaskIsRunFailure(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, filepath.Join(dir, "Tasks.json"), `{
	  "tasks": [
	    {"name": "explode", "run": "exit 7"},
	    {"name": "later", "run": "touch later.txt", "outputs": ["later.txt"]}
	  ]
	}`)

	inv, err := ParseInvocation([]string{"--workdir", dir, "--manifest", "Tasks.json"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var progress bytes.Buffer
	result, err := execute(context.Background(), inv, &progress)
	if err == nil {
		t.Fatalf("expected task failure")
	}
	if result.ExitCode != ExitRunFailure {
		t.Fatalf("unexpected exit code %d", result.ExitCode)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "later.txt")); statErr == nil {
		t.Fatalf("tasks after a failure must not execute")
	}
}

func TestExecute_BadManifestIsManifestError(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, filepath.Join(dir, "Tasks.json"), `{nope`)

	inv, err := ParseInvocation([]string{"--workdir", dir, "--manifest", "Tasks.json"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var progress bytes.Buffer
	result, err := execute(context.Background(), inv, &progress)
	if err == nil {
		t.Fatalf("expected manifest error")
	}
	if result.ExitCode != ExitManifestError {
		t.Fatalf("unexpected exit code %d", result.ExitCode)
	}
}

func TestExecute_ForceRerunsFreshTask(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, filepath.Join(dir, "src.txt"), "source\n")
	writeFixture(t, filepath.Join(dir, "Tasks.json"), `{
	  "tasks": [
	    {"name": "build", "run": "cp src.txt out.bin", "inputs": ["src.txt"], "outputs": ["out.bin"]}
	  ]
	}`)

	base := []string{"--workdir", dir, "--manifest", "Tasks.json"}
	inv, err := ParseInvocation(base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var progress bytes.Buffer
	if _, err := execute(context.Background(), inv, &progress); err != nil {
		t.Fatalf("first run: %v", err)
	}

	forced, err := ParseInvocation(append(base, "--force"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	progress.Reset()
	if _, err := execute(context.Background(), forced, &progress); err != nil {
		t.Fatalf("forced run: %v", err)
	}
	if !strings.Contains(progress.String(), "Running task build (forced)...") {
		t.Fatalf("forced rerun not reported:\n%s", progress.String())
	}
}
