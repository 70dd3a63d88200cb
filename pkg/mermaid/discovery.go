package mermaid

import (
	"os"
	"path/filepath"
)

// DefaultCandidates returns the ordered list of mmdc locations:
// the project-local node_modules install, then the system locations.
func DefaultCandidates(baseDir string) []string {
	return []string{
		filepath.Join(baseDir, "node_modules", ".bin", DefaultExecutable),
		"/usr/local/bin/" + DefaultExecutable,
		"/usr/bin/" + DefaultExecutable,
	}
}

// FindExecutable returns the first candidate that exists,
// or the fallback to be resolved via PATH at launch time.
func FindExecutable(candidates []string, fallback string) string {
	for _, path := range candidates {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return fallback
}
