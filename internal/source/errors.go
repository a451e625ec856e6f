package source

import "errors"

var (
	// ErrRootNotFound indicates the configured source directory does not exist.
	ErrRootNotFound = errors.New("source directory not found")

	// ErrRootNotDirectory indicates the configured source path is a regular file.
	ErrRootNotDirectory = errors.New("source path is not a directory")

	// ErrWalkFailed indicates filesystem traversal of the source directory failed.
	ErrWalkFailed = errors.New("source directory walk failed")
)
