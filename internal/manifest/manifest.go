// Package manifest loads task definitions from a JSON manifest and turns
// them into registered shell-command tasks.
//
// Manifest shape:
//
//	{
//	  "tasks": [
//	    {
//	      "name": "compile",
//	      "run": "cc -o out.bin src.c",
//	      "inputs": ["src.c"],
//	      "outputs": ["out.bin"],
//	      "env": {"CC_FLAGS": "-O2"},
//	      "retries": 2
//	    }
//	  ]
//	}
//
// name and run are required; the rest is optional. Relative input/output
// paths resolve under the working directory. The manifest file itself
// becomes each task's Source, so editing the manifest invalidates outputs
// produced before the edit.
package manifest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"

	"taskmill/internal/task"
)

// ErrInvalidManifest is the sentinel for malformed manifest content,
// usable with errors.Is.
var ErrInvalidManifest = errors.New("invalid manifest")

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidManifest, fmt.Sprintf(format, args...))
}

// Load reads the manifest at path and registers one command task per entry
// into a fresh registry, preserving the manifest's declaration order.
//
// ctx bounds the lifetime of every command the returned tasks will start;
// cancelling it kills the running command's whole process group.
func Load(ctx context.Context, path, workDir string) (*task.Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	if !gjson.ValidBytes(data) {
		return nil, invalidf("%s is not valid JSON", path)
	}

	tasksField := gjson.GetBytes(data, "tasks")
	if !tasksField.Exists() {
		return nil, invalidf("%s has no tasks array", path)
	}
	if !tasksField.IsArray() {
		return nil, invalidf("tasks must be an array")
	}

	reg := task.NewRegistry()
	var loadErr error
	index := 0
	tasksField.ForEach(func(_, entry gjson.Result) bool {
		t, err := buildTask(ctx, entry, index, path, workDir)
		if err != nil {
			loadErr = err
			return false
		}
		if err := reg.Register(t); err != nil {
			loadErr = invalidf("tasks[%d]: %v", index, err)
			return false
		}
		index++
		return true
	})
	if loadErr != nil {
		return nil, loadErr
	}
	return reg, nil
}

func buildTask(ctx context.Context, entry gjson.Result, index int, manifestPath, workDir string) (task.Task, error) {
	if !entry.IsObject() {
		return task.Task{}, invalidf("tasks[%d] must be an object", index)
	}

	name := entry.Get("name").String()
	if name == "" {
		return task.Task{}, invalidf("tasks[%d]: name is required", index)
	}
	command := entry.Get("run").String()
	if command == "" {
		return task.Task{}, invalidf("tasks[%d] (%s): run is required", index, name)
	}

	retries := entry.Get("retries").Int()
	if retries < 0 {
		return task.Task{}, invalidf("tasks[%d] (%s): retries must not be negative", index, name)
	}

	env := map[string]string{}
	entry.Get("env").ForEach(func(k, v gjson.Result) bool {
		env[k.String()] = v.String()
		return true
	})

	cmd := &commandTask{
		Name:    name,
		Command: command,
		Env:     env,
		WorkDir: workDir,
		Retries: uint64(retries),
	}

	return task.Task{
		Name:    name,
		Inputs:  resolvePaths(workDir, entry.Get("inputs")),
		Outputs: resolvePaths(workDir, entry.Get("outputs")),
		Source:  manifestPath,
		Work:    func() error { return cmd.Run(ctx) },
	}, nil
}

func resolvePaths(workDir string, field gjson.Result) []string {
	var out []string
	field.ForEach(func(_, v gjson.Result) bool {
		p := filepath.Clean(v.String())
		if !filepath.IsAbs(p) {
			p = filepath.Join(workDir, p)
		}
		out = append(out, p)
		return true
	})
	return out
}
