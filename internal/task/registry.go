package task

import "fmt"

// Registry is an insertion-ordered collection of tasks.
//
// It is an explicit value constructed by the caller; there is no package
// global. Registration order is the execution order: iteration is stable
// and deterministic across runs of the same program.
//
// Re-registering a name replaces the earlier entry and moves the task to
// the end of the order (last write wins). This mirrors updating a keyed,
// insertion-ordered mapping and is documented behavior, not an accident.
//
// The registry is not safe for concurrent use. The intended lifecycle is a
// single-threaded registration phase followed by a single-threaded
// execution phase; the two never overlap.
type Registry struct {
	tasks  []Task
	byName map[string]int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]int)}
}

// Register records t under t.Name.
//
// Only structural validation happens here: the name must be non-empty and
// the work routine non-nil. Input and output paths are not checked for
// existence; that is the runner's job at execution time.
//
// The task's slices are copied, so the caller may reuse its own.
func (r *Registry) Register(t Task) error {
	if t.Name == "" {
		return fmt.Errorf("task name is required")
	}
	if t.Work == nil {
		return fmt.Errorf("task %q: work routine is required", t.Name)
	}

	t.Inputs = copyPaths(t.Inputs)
	t.Outputs = copyPaths(t.Outputs)

	if idx, ok := r.byName[t.Name]; ok {
		// Last write wins: drop the old entry and re-append, so the task
		// takes the position of its latest registration.
		r.tasks = append(r.tasks[:idx], r.tasks[idx+1:]...)
		for i := idx; i < len(r.tasks); i++ {
			r.byName[r.tasks[i].Name] = i
		}
	}

	r.byName[t.Name] = len(r.tasks)
	r.tasks = append(r.tasks, t)
	return nil
}

// MustRegister is Register for program-fixed task sets, panicking on
// structurally invalid definitions.
func (r *Registry) MustRegister(t Task) {
	if err := r.Register(t); err != nil {
		panic(err)
	}
}

// Tasks returns all registered tasks in registration order.
// The returned slice is a copy; the registry is never mutated by a run.
func (r *Registry) Tasks() []Task {
	out := make([]Task, len(r.tasks))
	copy(out, r.tasks)
	return out
}

// Lookup returns the task registered under name.
func (r *Registry) Lookup(name string) (Task, bool) {
	idx, ok := r.byName[name]
	if !ok {
		return Task{}, false
	}
	return r.tasks[idx], true
}

// Len returns the number of registered tasks.
func (r *Registry) Len() int { return len(r.tasks) }

func copyPaths(paths []string) []string {
	if len(paths) == 0 {
		return nil
	}
	out := make([]string, len(paths))
	copy(out, paths)
	return out
}
