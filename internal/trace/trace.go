package trace

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// RunReport is the canonical, deterministic record of a single run.
//
// Invariants:
//   - Must capture the run identifier and an ordered list of events.
//   - Must contain logical decisions (ran/skipped/failed and why), not
//     runtime-dependent details.
//   - Must not include timestamps, pointers, or any runtime-dependent values
//     other than the RunID label itself.
//
// Events keep their recorded order: the runner is strictly serial, so the
// recorded order is the registration order and is already deterministic.
// Canonicalization therefore only normalizes event payloads; it never
// reorders.
//
// The report is observational only and must never affect execution behavior.
type RunReport struct {
	RunID  string
	Events []Event
}

// EventKind is the stable, canonical discriminator for Event.
//
// The string values are part of the report's canonical bytes; do not rename.
type EventKind string

const (
	EventTaskRan     EventKind = "TaskRan"
	EventTaskFailed  EventKind = "TaskFailed"
	EventTaskSkipped EventKind = "TaskSkipped"
	EventRunAborted  EventKind = "RunAborted"
)

// Event is a single logical decision.
//
// Determinism constraints:
//   - No timestamps.
//   - No error strings or stack traces.
//   - No fields derived from pointer identity or map iteration.
type Event struct {
	Kind EventKind

	// Task names the task this event refers to. Required for every kind.
	Task string

	// Reason is a stable reason code for run and abort decisions
	// (e.g. "forced", "missing outputs", "missing inputs").
	Reason string

	// Paths lists the implicated file paths: missing or out-of-date outputs
	// for TaskRan, missing inputs for RunAborted. The declared order is
	// preserved.
	Paths []string
}

// Validate checks basic invariants and returns a descriptive error.
func (r *RunReport) Validate() error {
	if r == nil {
		return errors.New("report is nil")
	}
	if r.RunID == "" {
		return errors.New("runId is required")
	}
	for i := range r.Events {
		e := r.Events[i]
		if e.Kind == "" {
			return fmt.Errorf("events[%d].kind is required", i)
		}
		if e.Task == "" {
			return fmt.Errorf("events[%d].task is required", i)
		}
		for j, p := range e.Paths {
			if p == "" {
				return fmt.Errorf("events[%d].paths[%d] is empty", i, j)
			}
		}
	}
	return nil
}

// Canonicalize normalizes the report into its canonical form.
//
// Rules:
//   - Paths slices are copied; empty slices are normalized to nil.
//   - Event order is preserved (it is the serial decision order).
func (r *RunReport) Canonicalize() {
	if r == nil {
		return
	}
	for i := range r.Events {
		if len(r.Events[i].Paths) == 0 {
			r.Events[i].Paths = nil
			continue
		}
		paths := make([]string, len(r.Events[i].Paths))
		copy(paths, r.Events[i].Paths)
		r.Events[i].Paths = paths
	}
}

// CanonicalJSON returns the canonical JSON encoding of the report.
// It canonicalizes a copy to avoid mutating the caller's slices.
func (r RunReport) CanonicalJSON() ([]byte, error) {
	cp := RunReport{RunID: r.RunID}
	cp.Events = make([]Event, len(r.Events))
	copy(cp.Events, r.Events)
	cp.Canonicalize()
	if err := cp.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(&cp)
}

// Hash returns the deterministic report hash (sha256 hex) of the canonical
// JSON bytes.
func (r RunReport) Hash() (string, error) {
	b, err := r.CanonicalJSON()
	if err != nil {
		return "", err
	}
	return ComputeReportHash(b), nil
}

// MarshalJSON ensures canonical field ordering.
func (r RunReport) MarshalJSON() ([]byte, error) {
	if r.RunID == "" {
		return nil, errors.New("runId is required")
	}
	var buf bytes.Buffer
	buf.WriteByte('{')

	buf.WriteString("\"runId\":")
	id, _ := json.Marshal(r.RunID)
	buf.Write(id)
	buf.WriteByte(',')

	buf.WriteString("\"events\":[")
	for i := range r.Events {
		if i > 0 {
			buf.WriteByte(',')
		}
		eb, err := json.Marshal(r.Events[i])
		if err != nil {
			return nil, err
		}
		buf.Write(eb)
	}
	buf.WriteByte(']')

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON ensures canonical field ordering and omission of empty
// optional fields.
func (e Event) MarshalJSON() ([]byte, error) {
	if e.Kind == "" {
		return nil, errors.New("kind is required")
	}

	var buf bytes.Buffer
	buf.WriteByte('{')

	buf.WriteString("\"kind\":")
	kb, _ := json.Marshal(string(e.Kind))
	buf.Write(kb)

	if e.Task != "" {
		buf.WriteByte(',')
		buf.WriteString("\"task\":")
		tb, _ := json.Marshal(e.Task)
		buf.Write(tb)
	}

	if e.Reason != "" {
		buf.WriteByte(',')
		buf.WriteString("\"reason\":")
		rb, _ := json.Marshal(e.Reason)
		buf.Write(rb)
	}

	if len(e.Paths) > 0 {
		buf.WriteByte(',')
		buf.WriteString("\"paths\":[")
		for i := range e.Paths {
			if i > 0 {
				buf.WriteByte(',')
			}
			pb, _ := json.Marshal(e.Paths[i])
			buf.Write(pb)
		}
		buf.WriteByte(']')
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}
