// Package build runs a complete site build: clear the output directory, walk
// the source tree, classify every file, render templated pages through their
// layouts and write every page exactly once.
//
// Per-file failures (unreadable files, malformed frontmatter, unknown layouts)
// are logged and the file is skipped unless fail-fast is enabled. Failures
// that make the whole run meaningless (bad layouts directory, missing source
// directory, output directory that cannot be cleared) abort the run.
package build
