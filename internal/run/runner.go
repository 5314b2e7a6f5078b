package run

import (
	"fmt"
	"io"
	"os"

	"taskmill/internal/obs"
	"taskmill/internal/task"
	"taskmill/internal/trace"
)

// Runner walks a registry in registration order, running stale tasks and
// skipping fresh ones.
//
// The zero-value fields have useful defaults: a nil FS means the real
// filesystem, a nil Progress means os.Stdout, a nil Sink means no trace.
type Runner struct {
	// Registry supplies the tasks. Required.
	Registry *task.Registry

	// FS answers the existence and modification-time queries.
	FS FileSystem

	// Progress receives the human-readable run/skip lines.
	Progress io.Writer

	// Sink receives one trace event per decision. Recording is inert: a
	// broken sink can never change what runs.
	Sink trace.Sink
}

// RunAll evaluates every registered task in registration order.
//
// For each task, in order:
//  1. Every declared input must exist; otherwise RunAll stops with a
//     *MissingInputError naming the task and all of its missing inputs.
//     No later task is evaluated.
//  2. The run/skip decision is computed (see decide). force overrides
//     everything and runs the task unconditionally.
//  3. A running task gets a progress line with the reason, then its work
//     routine is invoked. A work error aborts the run and is returned
//     exactly as the routine produced it, so callers can inspect the
//     original value. No retry, no continuation.
//  4. A skipped task gets a progress line naming it.
//
// RunAll is synchronous and single-threaded; tasks run one at a time, each
// to completion.
func (r *Runner) RunAll(force bool) error {
	out := r.Progress
	if out == nil {
		out = os.Stdout
	}
	fs := r.FS
	if fs == nil {
		fs = OS()
	}

	for _, t := range r.Registry.Tasks() {
		if missing := missingPaths(fs, t.Inputs); len(missing) > 0 {
			err := &MissingInputError{Task: t.Name, Missing: missing}
			fmt.Fprintln(out, err.Error())
			obs.RunFailed("missing_input")
			trace.SafeRecord(r.Sink, trace.Event{
				Kind:   trace.EventRunAborted,
				Task:   t.Name,
				Reason: "missing inputs",
				Paths:  missing,
			})
			return err
		}

		d, err := decide(fs, t, force)
		if err != nil {
			obs.RunFailed("stat")
			return fmt.Errorf("evaluating task %s: %w", t.Name, err)
		}

		if !d.Run {
			fmt.Fprintf(out, "Skipped task %s\n", t.Name)
			obs.TaskSkipped()
			trace.SafeRecord(r.Sink, trace.Event{Kind: trace.EventTaskSkipped, Task: t.Name})
			continue
		}

		fmt.Fprintf(out, "Running task %s (%s)...\n", t.Name, d.Describe())
		if err := t.Work(); err != nil {
			fmt.Fprintf(out, "Task %s failed: %v\n", t.Name, err)
			obs.RunFailed("task")
			trace.SafeRecord(r.Sink, trace.Event{
				Kind:   trace.EventTaskFailed,
				Task:   t.Name,
				Reason: string(d.Reason),
			})
			// Propagated unmodified: the caller sees the routine's error.
			return err
		}

		obs.TaskRan(string(d.Reason))
		trace.SafeRecord(r.Sink, trace.Event{
			Kind:   trace.EventTaskRan,
			Task:   t.Name,
			Reason: string(d.Reason),
			Paths:  d.Paths,
		})
	}
	return nil
}
