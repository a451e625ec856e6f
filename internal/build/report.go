package build

import (
	"fmt"
	"time"
)

// Status is the outcome of a build.
type Status string

const (
	// StatusSuccess indicates every source file was written.
	StatusSuccess Status = "success"

	// StatusPartial indicates the build finished but some files were skipped.
	StatusPartial Status = "partial"

	// StatusFailed indicates the build was aborted.
	StatusFailed Status = "failed"

	// StatusCancelled indicates the context was cancelled mid-build.
	StatusCancelled Status = "cancelled"
)

// Failure records a source file that could not be processed.
type Failure struct {
	Source string
	Stage  string
	Err    error
}

// Report summarizes a build.
type Report struct {
	BuildID   string
	Status    Status
	Start     time.Time
	End       time.Time
	Duration  time.Duration
	Sources   int
	Templated int
	Opaque    int
	Written   int
	Failures  []Failure
	Manifest  string // Path of the written manifest, if any

	// ManifestHash identifies the written output independent of build ID and
	// timing. Unchanged is set when it matches the previous manifest.
	ManifestHash string
	Unchanged    bool
}

func (r *Report) fail(source, stage string, err error) {
	r.Failures = append(r.Failures, Failure{Source: source, Stage: stage, Err: err})
}

func (r *Report) finish(status Status) {
	r.End = time.Now()
	r.Duration = r.End.Sub(r.Start)
	r.Status = status
}

// Summary returns a one-line description of the build.
func (r *Report) Summary() string {
	return fmt.Sprintf("build %s %s: %d written (%d templated, %d opaque), %d failed in %s",
		r.BuildID, r.Status, r.Written, r.Templated, r.Opaque, len(r.Failures), r.Duration.Round(time.Millisecond))
}
