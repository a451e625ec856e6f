package preview

import (
	"sync"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/build"
	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// buildStatus tracks the outcome of the most recent build for the status endpoint.
type buildStatus struct {
	mu           sync.RWMutex
	lastError    error
	lastReport   *build.Report
	hasGoodBuild bool // true if at least one build finished without aborting
	builds       int
}

func (bs *buildStatus) record(report *build.Report, err error) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.builds++
	bs.lastReport = report
	bs.lastError = err
	if err == nil {
		bs.hasGoodBuild = true
	}
}

// StatusSnapshot is the JSON body of the status endpoint.
type StatusSnapshot struct {
	Builds       int       `json:"builds"`
	HasGoodBuild bool      `json:"has_good_build"`
	BuildID      string    `json:"build_id,omitempty"`
	Status       string    `json:"status,omitempty"`
	Written      int       `json:"written"`
	Failed       int       `json:"failed"`
	Failures     []string  `json:"failures,omitempty"`
	Error        string    `json:"error,omitempty"`
	Category     string    `json:"category,omitempty"`
	FinishedAt   time.Time `json:"finished_at,omitempty"`
}

func (bs *buildStatus) snapshot() StatusSnapshot {
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	snap := StatusSnapshot{Builds: bs.builds, HasGoodBuild: bs.hasGoodBuild}
	if bs.lastError != nil {
		snap.Error = bs.lastError.Error()
		snap.Category = string(ferrors.GetCategory(bs.lastError))
	}
	if r := bs.lastReport; r != nil {
		snap.BuildID = r.BuildID
		snap.Status = string(r.Status)
		snap.Written = r.Written
		snap.Failed = len(r.Failures)
		snap.FinishedAt = r.End
		for _, f := range r.Failures {
			snap.Failures = append(snap.Failures, f.Source+": "+f.Err.Error())
		}
	}
	return snap
}
