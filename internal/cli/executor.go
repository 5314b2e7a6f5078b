package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"taskmill/internal/ids"
	"taskmill/internal/manifest"
	"taskmill/internal/obs"
	"taskmill/internal/run"
	"taskmill/internal/trace"
)

// CLIResult is the outcome of one invocation.
type CLIResult struct {
	ExitCode int

	// RunID labels the run in the report and is stable for its lifetime.
	RunID string
}

// Execute loads the manifest, runs the registry and optionally writes the
// canonical run report.
//
// Exit code mapping:
//   - missing inputs or a failing task  -> ExitRunFailure
//   - unreadable or malformed manifest  -> ExitManifestError
//   - anything else                     -> ExitInternalError
func Execute(ctx context.Context, inv Invocation) (CLIResult, error) {
	return execute(ctx, inv, os.Stdout)
}

func execute(ctx context.Context, inv Invocation, progress io.Writer) (CLIResult, error) {
	runID := ids.NewRunID()

	if inv.MetricsAddr != "" {
		obs.Init()
		mux := http.NewServeMux()
		mux.Handle("/metrics", obs.Handler())
		srv := &http.Server{Addr: inv.MetricsAddr, Handler: mux}
		go func() { _ = srv.ListenAndServe() }()
		defer srv.Close()
	}

	reg, err := manifest.Load(ctx, inv.ManifestPath, inv.WorkDir)
	if err != nil {
		return CLIResult{ExitCode: ExitManifestError, RunID: runID}, err
	}

	recorder := trace.NewRecorder()
	runner := &run.Runner{
		Registry: reg,
		FS:       run.OS(),
		Progress: progress,
		Sink:     recorder,
	}

	runErr := runner.RunAll(inv.Force)

	if inv.TracePath != "" {
		if err := writeReport(recorder.Report(runID), inv.TracePath); err != nil {
			if runErr == nil {
				return CLIResult{ExitCode: ExitInternalError, RunID: runID}, err
			}
			// The run failure is the primary outcome; the report loss is
			// secondary and reported alongside it.
			fmt.Fprintf(progress, "Writing run report failed: %v\n", err)
		}
	}

	if runErr != nil {
		return CLIResult{ExitCode: classify(runErr), RunID: runID}, runErr
	}
	return CLIResult{ExitCode: ExitSuccess, RunID: runID}, nil
}

func writeReport(report trace.RunReport, path string) error {
	data, err := report.CanonicalJSON()
	if err != nil {
		return fmt.Errorf("encoding run report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing run report: %w", err)
	}
	return nil
}

// classify maps an execution error to its semantic exit code; errors that
// already carry an InvocationError keep their code.
func classify(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var invErr *InvocationError
	if errors.As(err, &invErr) {
		return invErr.ExitCode
	}
	if errors.Is(err, manifest.ErrInvalidManifest) {
		return ExitManifestError
	}
	return ExitRunFailure
}
