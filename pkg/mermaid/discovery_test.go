package mermaid_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/effective-security/gogentic-mermaid/pkg/mermaid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCandidates(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{
		"/srv/app/node_modules/.bin/mmdc",
		"/usr/local/bin/mmdc",
		"/usr/bin/mmdc",
	}, mermaid.DefaultCandidates("/srv/app"))
}

func TestFindExecutable(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	local := filepath.Join(dir, "node_modules", ".bin", "mmdc")
	system := filepath.Join(dir, "usr", "bin", "mmdc")
	missing := filepath.Join(dir, "missing", "mmdc")

	assert.Equal(t, "mmdc", mermaid.FindExecutable(nil, "mmdc"))
	assert.Equal(t, "mmdc", mermaid.FindExecutable([]string{"", missing, local, system}, "mmdc"))

	require.NoError(t, os.MkdirAll(filepath.Dir(system), 0o755))
	require.NoError(t, os.WriteFile(system, []byte("#!/bin/sh\n"), 0o755))
	assert.Equal(t, system, mermaid.FindExecutable([]string{missing, local, system}, "mmdc"))

	require.NoError(t, os.MkdirAll(filepath.Dir(local), 0o755))
	require.NoError(t, os.WriteFile(local, []byte("#!/bin/sh\n"), 0o755))
	// the order of candidates wins
	assert.Equal(t, local, mermaid.FindExecutable([]string{missing, local, system}, "mmdc"))
	assert.Equal(t, system, mermaid.FindExecutable([]string{system, local}, "mmdc"))
}

func TestRenderer_Executable(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	exe := filepath.Join(dir, "mmdc")
	require.NoError(t, os.WriteFile(exe, []byte("#!/bin/sh\n"), 0o755))

	r, err := mermaid.New(&mermaid.Config{
		StorageRoot: dir,
		Candidates:  []string{filepath.Join(dir, "missing"), exe},
	})
	require.NoError(t, err)
	assert.Equal(t, exe, r.Executable())

	r, err = mermaid.New(&mermaid.Config{
		StorageRoot: dir,
		Candidates:  []string{filepath.Join(dir, "missing")},
	})
	require.NoError(t, err)
	assert.Equal(t, "mmdc", r.Executable())
}
