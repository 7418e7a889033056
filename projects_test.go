package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeSessionFile(t *testing.T, dir, project, id string, mod time.Time) string {
	t.Helper()
	path := filepath.Join(dir, project, id+".jsonl")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(sampleSession), 0o644))
	require.NoError(t, os.Chtimes(path, mod, mod))
	return path
}

func TestScanProjects(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	older := writeSessionFile(t, dir, "-home-me-app", "aaa", now.Add(-time.Hour))
	newer := writeSessionFile(t, dir, "-home-me-lib", "bbb", now)
	// Not matched: wrong extension and wrong depth.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "-home-me-app", "notes.txt"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "top.jsonl"), nil, 0o644))

	files, err := ScanProjects(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)

	require.Equal(t, "-home-me-lib", files[0].Project)
	require.Equal(t, "bbb", files[0].ID)
	require.Equal(t, newer, files[0].Path)
	require.Equal(t, int64(len(sampleSession)), files[0].Size)

	require.Equal(t, "aaa", files[1].ID)
	require.Equal(t, older, files[1].Path)
}

func TestScanProjectsMissingDir(t *testing.T) {
	files, err := ScanProjects(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	require.Empty(t, files)
}

func TestProjectPath(t *testing.T) {
	existing := map[string]bool{
		"/home":                  true,
		"/home/me":               true,
		"/home/me/my-app":        true,
		"/home/me/my-app/web-ui": true,
	}
	exists := func(p string) bool { return existing[p] }

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "dashed directory", in: "-home-me-my-app", want: "/home/me/my-app"},
		{name: "nested dashed directory", in: "-home-me-my-app-web-ui", want: "/home/me/my-app/web-ui"},
		{name: "unknown components split on dashes", in: "-srv-data-x", want: "/srv/data/x"},
		{name: "not encoded", in: "plain", want: "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ProjectPath(tt.in, exists))
		})
	}
}
