package run

import (
	"os"
	"time"
)

// FileSystem is the read-only capability the staleness policy depends on.
//
// Exists mirrors the usual existence probe: any stat failure (including
// permission errors) reads as "does not exist". ModTime is only called for
// paths that were just observed to exist; a stat failure there (a race, a
// transient I/O error) is surfaced to the caller and aborts the run.
type FileSystem interface {
	Exists(path string) bool
	ModTime(path string) (time.Time, error)
}

type osFS struct{}

// OS returns the real operating-system filesystem.
func OS() FileSystem { return osFS{} }

func (osFS) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (osFS) ModTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

// missingPaths returns the subset of paths that do not exist, in declared
// order.
func missingPaths(fs FileSystem, paths []string) []string {
	var missing []string
	for _, p := range paths {
		if !fs.Exists(p) {
			missing = append(missing, p)
		}
	}
	return missing
}
