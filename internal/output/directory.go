// Package output owns the directory a site is written into.
package output

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/route"
)

var (
	// ErrClearFailed indicates the output directory could not be created or emptied.
	ErrClearFailed = errors.New("failed to clear output directory")

	// ErrWriteFailed indicates an artifact could not be written.
	ErrWriteFailed = errors.New("failed to write output file")

	// ErrRouteEscapes indicates a route that would resolve outside the output root.
	ErrRouteEscapes = errors.New("route escapes output directory")
)

// Directory is the output root of a build.
type Directory struct {
	root string
}

// NewDirectory creates a Directory rooted at root.
func NewDirectory(root string) *Directory {
	return &Directory{root: root}
}

// Root returns the output root.
func (d *Directory) Root() string {
	return d.root
}

// Clear creates the root if needed and removes everything inside it. The root
// itself is kept so servers holding it open keep working.
func (d *Directory) Clear() error {
	if err := os.MkdirAll(d.root, 0o755); err != nil {
		return fmt.Errorf("%w: %w", ErrClearFailed, err)
	}
	entries, err := os.ReadDir(d.root)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrClearFailed, err)
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(d.root, entry.Name())); err != nil {
			return fmt.Errorf("%w: %w", ErrClearFailed, err)
		}
	}
	return nil
}

// Write stores data at the resolved route, creating parent directories and
// replacing any existing file.
func (d *Directory) Write(r string, data []byte) (string, error) {
	target, err := d.Path(r)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrWriteFailed, r, err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrWriteFailed, r, err)
	}
	return target, nil
}

// Path returns the filesystem path a route is written to.
func (d *Directory) Path(r string) (string, error) {
	rel := filepath.FromSlash(route.Resolve(r))
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%w: %s", ErrRouteEscapes, r)
	}
	return filepath.Join(d.root, rel), nil
}

// IsInside reports whether path lies within the output root.
func (d *Directory) IsInside(path string) bool {
	rel, err := filepath.Rel(d.root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
