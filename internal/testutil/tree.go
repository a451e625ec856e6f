// Package testutil holds helpers for tests that build sites on disk.
package testutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

// WriteFile writes data to the slash-separated path rel below root, creating
// parent directories.
func WriteFile(t testing.TB, root, rel, data string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(data), 0o644))
}

// WriteTree writes every rel -> content pair of files below root.
func WriteTree(t testing.TB, root string, files map[string]string) {
	t.Helper()
	for rel, data := range files {
		WriteFile(t, root, rel, data)
	}
}

// FileAssertions checks the state of a directory tree, usually a build output.
type FileAssertions struct {
	t       testing.TB
	baseDir string
}

// NewFileAssertions creates a new file assertions helper rooted at baseDir.
func NewFileAssertions(t testing.TB, baseDir string) *FileAssertions {
	return &FileAssertions{t: t, baseDir: baseDir}
}

func (fa *FileAssertions) path(rel string) string {
	return filepath.Join(fa.baseDir, filepath.FromSlash(rel))
}

// AssertFileExists validates that a regular file exists.
func (fa *FileAssertions) AssertFileExists(rel string) *FileAssertions {
	fa.t.Helper()
	require.FileExists(fa.t, fa.path(rel))
	return fa
}

// AssertFileNotExists validates that nothing exists at rel.
func (fa *FileAssertions) AssertFileNotExists(rel string) *FileAssertions {
	fa.t.Helper()
	require.NoFileExists(fa.t, fa.path(rel))
	return fa
}

// AssertFileContains validates that a file contains expected content.
func (fa *FileAssertions) AssertFileContains(rel, expected string) *FileAssertions {
	fa.t.Helper()
	require.Contains(fa.t, fa.Content(rel), expected)
	return fa
}

// AssertFiles validates the complete set of files below the root.
func (fa *FileAssertions) AssertFiles(expected ...string) *FileAssertions {
	fa.t.Helper()
	sort.Strings(expected)
	require.Equal(fa.t, expected, fa.Files())
	return fa
}

// Content reads and returns the content of a file.
func (fa *FileAssertions) Content(rel string) string {
	fa.t.Helper()
	data, err := os.ReadFile(fa.path(rel))
	require.NoError(fa.t, err)
	return string(data)
}

// Files lists every regular file below the root as sorted slash paths.
func (fa *FileAssertions) Files() []string {
	fa.t.Helper()
	files := []string{}
	err := filepath.WalkDir(fa.baseDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			rel, err := filepath.Rel(fa.baseDir, p)
			if err != nil {
				return err
			}
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	require.NoError(fa.t, err)
	sort.Strings(files)
	return files
}
