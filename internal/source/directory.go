// Package source discovers the files that make up a site.
package source

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

// Descriptor identifies one source file of the site.
type Descriptor struct {
	SourcePath string // Path on disk, rooted at the site directory
	Route      string // Slash-separated path relative to the site directory
}

// Directory is a site source tree on disk.
type Directory struct {
	root string
}

// NewDirectory creates a Directory rooted at root.
func NewDirectory(root string) *Directory {
	return &Directory{root: root}
}

// Root returns the directory the site is read from.
func (d *Directory) Root() string {
	return d.root
}

// Walk returns a descriptor for every regular file below the root, in lexical
// order. Directories are traversed but never reported.
func (d *Directory) Walk() ([]Descriptor, error) {
	info, err := os.Stat(d.root)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrRootNotFound, d.root)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrWalkFailed, d.root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrRootNotDirectory, d.root)
	}

	var descriptors []Descriptor
	err = filepath.WalkDir(d.root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(d.root, path)
		if err != nil {
			return err
		}

		descriptors = append(descriptors, Descriptor{
			SourcePath: path,
			Route:      filepath.ToSlash(rel),
		})
		slog.Debug("Discovered source file", logfields.Source(path))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrWalkFailed, d.root, err)
	}

	slog.Debug("Source directory walked", logfields.Path(d.root), logfields.Count(len(descriptors)))
	return descriptors, nil
}
