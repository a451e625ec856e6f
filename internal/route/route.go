// Package route maps source-relative paths to output paths and public URLs.
//
// Routes are always slash-separated and relative to the site root.
package route

import (
	"path"
	"strings"
)

const indexFile = "index.html"

// Normalize returns the output route for a source route.
//
// Opaque files keep their route unchanged. Templated files lose their extension
// and become pretty URLs: a stem named "index" maps to "<dir>/index.html", any
// other stem maps to "<dir>/<stem>/index.html".
func Normalize(r string, templated bool) string {
	if !templated {
		return r
	}

	stem := strings.TrimSuffix(r, path.Ext(r))
	if path.Base(stem) == "index" {
		return stem + ".html"
	}
	return path.Join(stem, indexFile)
}

// Resolve returns the concrete file path an output route is written to. Routes
// whose last element contains a dot (including opaque dotfiles such as
// ".htaccess") are used verbatim; anything else is treated as a directory and
// gets index.html appended.
func Resolve(r string) string {
	if path.Ext(r) != "" {
		return r
	}
	return path.Join(r, indexFile)
}

// URL returns the public URL of a normalized route.
func URL(r string) string {
	if r == indexFile {
		return "/"
	}
	if strings.HasSuffix(r, "/"+indexFile) {
		return "/" + strings.TrimSuffix(r, indexFile)
	}
	return "/" + r
}

// Ext returns the extension of the last path element without the dot, or ""
// when there is none. A leading dot does not start an extension, so ".md" and
// "section/.html" have no extension.
func Ext(r string) string {
	base := path.Base(r)
	i := strings.LastIndexByte(base, '.')
	if i <= 0 {
		return ""
	}
	return base[i+1:]
}

// Stem returns the file name of a source route without directory or extension.
func Stem(r string) string {
	base := path.Base(r)
	return strings.TrimSuffix(base, path.Ext(base))
}
