package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func TestWalk_EmptyDirectoryProducesNoDescriptors(t *testing.T) {
	descriptors, err := NewDirectory(t.TempDir()).Walk()
	require.NoError(t, err)
	require.Empty(t, descriptors)
}

func TestWalk_RoutesAreRelativeToRoot(t *testing.T) {
	for _, rel := range []string{
		"index.html",
		"index.md",
		"main.css",
		"main.js",
		"path/index.html",
		"path/index.md",
		"path/main.css",
		"path/main.js",
	} {
		t.Run(rel, func(t *testing.T) {
			root := t.TempDir()
			writeFile(t, root, rel, "content")

			descriptors, err := NewDirectory(root).Walk()
			require.NoError(t, err)
			require.Len(t, descriptors, 1)
			require.Equal(t, rel, descriptors[0].Route)
			require.Equal(t, filepath.Join(root, filepath.FromSlash(rel)), descriptors[0].SourcePath)
		})
	}
}

func TestWalk_SkipsDirectoriesAndSortsLexically(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "posts/b.md", "b")
	writeFile(t, root, "posts/a.md", "a")
	writeFile(t, root, "index.md", "i")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty", "deeper"), 0o755))

	descriptors, err := NewDirectory(root).Walk()
	require.NoError(t, err)

	routes := make([]string, 0, len(descriptors))
	for _, d := range descriptors {
		routes = append(routes, d.Route)
	}
	require.Equal(t, []string{"index.md", "posts/a.md", "posts/b.md"}, routes)
}

func TestWalk_MissingRoot(t *testing.T) {
	_, err := NewDirectory(filepath.Join(t.TempDir(), "missing")).Walk()
	require.ErrorIs(t, err, ErrRootNotFound)
}

func TestWalk_RootIsAFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "site", "not a dir")

	_, err := NewDirectory(filepath.Join(root, "site")).Walk()
	require.ErrorIs(t, err, ErrRootNotDirectory)
}
