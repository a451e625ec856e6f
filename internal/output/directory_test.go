package output

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClear_CreatesMissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "out_dir")
	require.NoError(t, NewDirectory(root).Clear())

	info, err := os.Stat(root)
	require.NoError(t, err)
	require.True(t, info.IsDir())
}

func TestWrite_RoutesWithExtensionAreUsedVerbatim(t *testing.T) {
	for _, r := range []string{
		"main.css",
		"section/main.css",
		"section/subsection/main.css",
		"section/subsection/subsection/subsection/main.js",
	} {
		t.Run(r, func(t *testing.T) {
			root := filepath.Join(t.TempDir(), "out_dir")
			dir := NewDirectory(root)

			written, err := dir.Write(r, []byte("content"))
			require.NoError(t, err)
			require.Equal(t, filepath.Join(root, filepath.FromSlash(r)), written)

			data, err := os.ReadFile(written)
			require.NoError(t, err)
			require.Equal(t, "content", string(data))
		})
	}
}

func TestWrite_RoutesWithoutExtensionGetIndex(t *testing.T) {
	root := t.TempDir()
	written, err := NewDirectory(root).Write("page3/subpage", []byte("x"))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "page3", "subpage", "index.html"), written)
}

func TestWrite_Overwrites(t *testing.T) {
	dir := NewDirectory(t.TempDir())
	_, err := dir.Write("index.html", []byte("first"))
	require.NoError(t, err)
	written, err := dir.Write("index.html", []byte("second"))
	require.NoError(t, err)

	data, err := os.ReadFile(written)
	require.NoError(t, err)
	require.Equal(t, "second", string(data))
}

func TestWrite_RejectsEscapingRoutes(t *testing.T) {
	_, err := NewDirectory(t.TempDir()).Write("../outside.css", []byte("x"))
	require.ErrorIs(t, err, ErrRouteEscapes)
}

func TestClear_RemovesEverythingWritten(t *testing.T) {
	root := filepath.Join(t.TempDir(), "out_dir")
	dir := NewDirectory(root)

	for _, r := range []string{"index.html", "page1", "page2", "page3/subpage"} {
		_, err := dir.Write(r, []byte("content"))
		require.NoError(t, err)
	}

	require.NoError(t, dir.Clear())

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Empty(t, entries, "output directory is not empty")
}

func TestIsInside(t *testing.T) {
	root := t.TempDir()
	dir := NewDirectory(root)
	require.True(t, dir.IsInside(filepath.Join(root, "a", "b.html")))
	require.True(t, dir.IsInside(root))
	require.False(t, dir.IsInside(filepath.Dir(root)))
}
