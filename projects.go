package main

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// SessionFile is a session log found under a projects directory.
type SessionFile struct {
	Project string    `json:"project"`
	ID      string    `json:"id"`
	Path    string    `json:"path"`
	ModTime time.Time `json:"mod_time"`
	Size    int64     `json:"size"`
}

// sessionGlob matches one level of project directories, each holding session logs.
const sessionGlob = "*/*.jsonl"

// DefaultProjectsDir returns ~/.claude/projects.
func DefaultProjectsDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".claude", "projects")
	}
	return filepath.Join(home, ".claude", "projects")
}

// ScanProjects lists the session files under dir, newest first.
func ScanProjects(dir string) ([]SessionFile, error) {
	fsys := os.DirFS(dir)
	matches, err := doublestar.Glob(fsys, sessionGlob)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}

	files := make([]SessionFile, 0, len(matches))
	for _, m := range matches {
		info, err := fs.Stat(fsys, m)
		if err != nil || info.IsDir() {
			continue
		}
		files = append(files, SessionFile{
			Project: path.Dir(m),
			ID:      strings.TrimSuffix(path.Base(m), ".jsonl"),
			Path:    filepath.Join(dir, filepath.FromSlash(m)),
			ModTime: info.ModTime(),
			Size:    info.Size(),
		})
	}

	slices.SortFunc(files, func(a, b SessionFile) int {
		return b.ModTime.Compare(a.ModTime)
	})
	return files, nil
}

// ProjectPath recovers the working directory a project directory name was derived from.
// Claude stores "/home/me/my-app" as "-home-me-my-app", so dashes are ambiguous; exists is
// consulted to rejoin components that were dashes in the original path. Names that do not
// look like an encoded absolute path are returned unchanged.
func ProjectPath(name string, exists func(string) bool) string {
	if !strings.HasPrefix(name, "-") {
		return name
	}
	parts := strings.Split(strings.TrimPrefix(name, "-"), "-")
	resolved := "/"
	for i := 0; i < len(parts); {
		// Prefer the longest run of components that names an existing entry.
		j := len(parts)
		for ; j > i+1; j-- {
			if exists(path.Join(resolved, strings.Join(parts[i:j], "-"))) {
				break
			}
		}
		resolved = path.Join(resolved, strings.Join(parts[i:j], "-"))
		i = j
	}
	return resolved
}

func pathExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
