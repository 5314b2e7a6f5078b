// Package run executes a task registry in registration order.
//
// It is intentionally split into:
//   - The FileSystem capability: the two read-only queries (existence and
//     modification time) the staleness policy needs
//   - The pure per-task decision (decide): force / missing outputs /
//     out-of-date outputs / no declared outputs / skip
//   - The Runner: the serial walk over the registry, progress reporting,
//     trace events and fail-fast error handling
//
// Execution is single-threaded and synchronous. The registry is only read;
// nothing here mutates it. Tasks run one at a time, each to completion,
// until either the whole registry has been evaluated or a missing-input
// precondition or a failing work routine aborts the run.
package run
