// Package task defines the declarative task model and the ordered registry
// that holds it.
//
// It is intentionally split into:
//   - Immutable task definitions (Task): name + declared file inputs/outputs
//     + the work routine + an explicit origin artifact
//   - The Registry: an insertion-ordered collection that determines the
//     execution order
//
// A task's identity (Fingerprint) is computed from its declarative fields
// only; the work routine itself contributes nothing to identity.
package task

// Task represents a declarative definition of a named unit of work.
//
// Inputs and Outputs are file paths. Inputs are the files the work routine
// reads; the task may only run when all of them exist. Outputs are the files
// the work routine produces; they drive the run/skip decision.
type Task struct {
	// Name is the unique identifier within a Registry.
	// Used as the registry key and in progress and error messages.
	Name string

	// Inputs is the list of file paths the task reads.
	// Semantically a set: duplicates are not rejected and order does not
	// affect behavior.
	Inputs []string

	// Outputs is the list of file paths the task produces.
	// A task with no outputs is considered always stale and runs on every
	// invocation.
	Outputs []string

	// Work performs the task's effect. It takes no arguments; a non-nil
	// error aborts the remainder of the run.
	Work func() error

	// Source is the path of the artifact the task definition came from
	// (for example a manifest file). Its modification time contributes to
	// the staleness baseline: outputs older than Source are out of date.
	// Empty or nonexistent Source contributes nothing.
	Source string
}
