package run

import (
	"fmt"
	"strings"
	"time"

	"taskmill/internal/task"
)

// Reason is the stable code for why a task ran or was skipped.
type Reason string

const (
	ReasonForced           Reason = "forced"
	ReasonMissingOutputs   Reason = "missing outputs"
	ReasonOutOfDateOutputs Reason = "out of date outputs"
	ReasonNoOutputs        Reason = "no declared outputs"
	ReasonFresh            Reason = "fresh"
)

// Decision is the evaluated run/skip outcome for a single task.
type Decision struct {
	Task string

	// Run reports whether the work routine should be invoked.
	Run bool

	// Reason is the first applicable reason in priority order:
	// forced, missing outputs, out of date outputs, no declared outputs.
	// ReasonFresh means skip.
	Reason Reason

	// Paths lists the implicated outputs for the missing and out-of-date
	// reasons, in declared order. Nil otherwise.
	Paths []string
}

// Describe renders the reason for progress lines, e.g.
// "missing outputs: a.txt, b.txt".
func (d Decision) Describe() string {
	switch d.Reason {
	case ReasonMissingOutputs, ReasonOutOfDateOutputs:
		return fmt.Sprintf("%s: %s", d.Reason, strings.Join(d.Paths, ", "))
	default:
		return string(d.Reason)
	}
}

// decide evaluates the run/skip decision for a single task.
//
// It is a pure function of the one task it is given: every check, including
// the no-outputs check, is recomputed from that task's own data. Nothing is
// carried over from any previous evaluation.
//
// The caller has already verified that all inputs exist; decide only stats
// outputs that exist and inputs, so a vanished path surfaces as a ModTime
// error rather than a crash.
func decide(fs FileSystem, t task.Task, force bool) (Decision, error) {
	if force {
		return Decision{Task: t.Name, Run: true, Reason: ReasonForced}, nil
	}

	if missing := missingPaths(fs, t.Outputs); len(missing) > 0 {
		return Decision{Task: t.Name, Run: true, Reason: ReasonMissingOutputs, Paths: missing}, nil
	}

	outdated, err := outOfDateOutputs(fs, t)
	if err != nil {
		return Decision{}, err
	}
	if len(outdated) > 0 {
		return Decision{Task: t.Name, Run: true, Reason: ReasonOutOfDateOutputs, Paths: outdated}, nil
	}

	if len(t.Outputs) == 0 {
		return Decision{Task: t.Name, Run: true, Reason: ReasonNoOutputs}, nil
	}

	return Decision{Task: t.Name, Run: false, Reason: ReasonFresh}, nil
}

// outOfDateOutputs returns the task's existing outputs whose modification
// time is strictly before the staleness threshold.
//
// The threshold is the later of:
//   - the newest modification time among the task's inputs
//   - the modification time of the task's Source artifact
//
// Either contributes the zero time when absent, so a task with no inputs
// and no source baseline is never stale by time comparison alone.
func outOfDateOutputs(fs FileSystem, t task.Task) ([]string, error) {
	var threshold time.Time

	for _, in := range t.Inputs {
		mt, err := fs.ModTime(in)
		if err != nil {
			return nil, fmt.Errorf("reading input %q: %w", in, err)
		}
		if mt.After(threshold) {
			threshold = mt
		}
	}

	if t.Source != "" && fs.Exists(t.Source) {
		mt, err := fs.ModTime(t.Source)
		if err != nil {
			return nil, fmt.Errorf("reading source %q: %w", t.Source, err)
		}
		if mt.After(threshold) {
			threshold = mt
		}
	}

	var outdated []string
	for _, out := range t.Outputs {
		if !fs.Exists(out) {
			// Handled by the missing-outputs check; never stat it here.
			continue
		}
		mt, err := fs.ModTime(out)
		if err != nil {
			return nil, fmt.Errorf("reading output %q: %w", out, err)
		}
		if mt.Before(threshold) {
			outdated = append(outdated, out)
		}
	}
	return outdated, nil
}
