package cli

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestParseInvocation_ResolvesRelativePaths(t *testing.T) {
	inv, err := ParseInvocation([]string{
		"--workdir", "/work",
		"--manifest", "Tasks.json",
		"--trace", "reports/run.json",
		"--force",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if inv.ManifestPath != filepath.Join("/work", "Tasks.json") {
		t.Fatalf("manifest not resolved under workdir: %q", inv.ManifestPath)
	}
	if inv.TracePath != filepath.Join("/work", "reports", "run.json") {
		t.Fatalf("trace not resolved under workdir: %q", inv.TracePath)
	}
	if !inv.Force {
		t.Fatalf("force flag not carried")
	}
}

func TestParseInvocation_AbsolutePathsAcceptedAsIs(t *testing.T) {
	inv, err := ParseInvocation([]string{
		"--workdir", "/work",
		"--manifest", "/elsewhere/Tasks.json",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inv.ManifestPath != "/elsewhere/Tasks.json" {
		t.Fatalf("absolute manifest path must be kept: %q", inv.ManifestPath)
	}
}

func TestParseInvocation_Rejections(t *testing.T) {
	cases := []struct {
		name string
		args []string
	}{
		{"no workdir", []string{"--manifest", "Tasks.json"}},
		{"relative workdir", []string{"--workdir", "work", "--manifest", "Tasks.json"}},
		{"no manifest", []string{"--workdir", "/work"}},
		{"unknown flag", []string{"--workdir", "/work", "--manifest", "m", "--bogus"}},
		{"positional args", []string{"--workdir", "/work", "--manifest", "m", "stray"}},
	}

	for _, tc := range cases {
		_, err := ParseInvocation(tc.args)
		if err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		var invErr *InvocationError
		if !errors.As(err, &invErr) {
			t.Fatalf("%s: expected *InvocationError, got %T", tc.name, err)
		}
		if invErr.ExitCode != ExitInvalidInvocation {
			t.Fatalf("%s: unexpected exit code %d", tc.name, invErr.ExitCode)
		}
	}
}

func TestExitCode_Mapping(t *testing.T) {
	if got := ExitCode(nil); got != ExitSuccess {
		t.Fatalf("nil error must map to success, got %d", got)
	}
	if got := ExitCode(invalidInvocationf("bad")); got != ExitInvalidInvocation {
		t.Fatalf("invocation error must keep its code, got %d", got)
	}
	if got := ExitCode(errors.New("boom")); got != ExitInternalError {
		t.Fatalf("unknown error must map to internal, got %d", got)
	}
}
