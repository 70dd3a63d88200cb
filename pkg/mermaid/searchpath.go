package mermaid

import (
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
)

// DefaultSearchPath is used when PATH is not set
const DefaultSearchPath = "/usr/local/bin:/usr/bin:/bin"

// RepairSearchPath prepends knownDirs that are not yet in the current search path.
// The order of knownDirs is preserved.
func RepairSearchPath(current string, knownDirs []string) string {
	if current == "" {
		current = DefaultSearchPath
	}

	sep := string(filepath.ListSeparator)
	existing := filepath.SplitList(current)

	var prepend []string
	for _, dir := range knownDirs {
		if dir == "" || slices.Contains(existing, dir) || slices.Contains(prepend, dir) {
			continue
		}
		prepend = append(prepend, dir)
	}
	if len(prepend) == 0 {
		return current
	}
	return strings.Join(prepend, sep) + sep + current
}

// ExistingDirs returns the dirs that exist on disk
func ExistingDirs(dirs []string) []string {
	var res []string
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if fi, err := os.Stat(dir); err == nil && fi.IsDir() {
			res = append(res, dir)
		}
	}
	return res
}

// WithSearchPath returns a copy of env with PATH set to path
func WithSearchPath(env []string, path string) []string {
	res := make([]string, 0, len(env)+1)
	for _, kv := range env {
		key, _, _ := strings.Cut(kv, "=")
		if isPathKey(key) {
			continue
		}
		res = append(res, kv)
	}
	return append(res, "PATH="+path)
}

// isPathKey returns true for the PATH variable,
// the names are case-insensitive on Windows only
func isPathKey(key string) bool {
	if runtime.GOOS == "windows" {
		return strings.EqualFold(key, "PATH")
	}
	return key == "PATH"
}

// executableDir returns the folder of the running binary,
// or empty string if it can not be determined
func executableDir() string {
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	return filepath.Dir(exe)
}
