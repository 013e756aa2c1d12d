package planner

import (
	"errors"
	"fmt"
	"time"

	"github.com/semidx/semidx/internal/runlog"
	"github.com/semidx/semidx/internal/store"
)

// ScanMode is the planner's verdict on how much scanning the next
// indexing run needs.
type ScanMode string

const (
	// ModeFull walks and indexes everything; no usable history exists.
	ModeFull ScanMode = "full"
	// ModeIncrementalRecent reindexes only the change work list; a run
	// completed within the last hour.
	ModeIncrementalRecent ScanMode = "incremental-recent"
	// ModeIncrementalCheck walks the tree and reindexes changes; the
	// last run is hours old.
	ModeIncrementalCheck ScanMode = "incremental-check"
	// ModeFullCheck walks the whole tree and verifies every entry; the
	// last run is approaching staleness.
	ModeFullCheck ScanMode = "full-check"
	// ModeNone skips scanning entirely; a fresh run proved the index
	// current.
	ModeNone ScanMode = "none"
)

// Age buckets for the latest completed run.
const (
	RecentWindow    = 1 * time.Hour
	CheckWindow     = 6 * time.Hour
	FreshnessWindow = 24 * time.Hour
)

// Decision is a scan mode with the evidence behind it.
type Decision struct {
	Mode    ScanMode
	Reason  string
	LastRun *runlog.Run
}

// Planner decides the next run's scan mode from run history and the
// state of the metadata store. It only avoids redundant full walks;
// change detection during the run itself stays authoritative.
type Planner struct {
	journal *runlog.Journal
	store   *store.Store

	// now is swappable for tests.
	now func() time.Time
}

// New creates a planner over the given journal and store.
func New(journal *runlog.Journal, st *store.Store) *Planner {
	return &Planner{journal: journal, store: st, now: time.Now}
}

// DecideScanMode buckets the latest completed run by age. No completed
// run within the freshness window falls back on whether the store has
// entries at all: an existing index still prefers an incremental pass
// over a full rebuild.
func (p *Planner) DecideScanMode() (Decision, error) {
	last, err := p.journal.LatestCompleted()
	if err != nil {
		if !errors.Is(err, runlog.ErrNoRuns) {
			return Decision{}, fmt.Errorf("read run history: %w", err)
		}
		return p.decideWithoutHistory(nil), nil
	}

	age := p.now().Sub(last.Timestamp)
	switch {
	case age < RecentWindow:
		if quietRun(last) {
			return Decision{
				Mode:    ModeNone,
				Reason:  fmt.Sprintf("run %s completed %s ago with no changes", last.RunID, roundAge(age)),
				LastRun: last,
			}, nil
		}
		return Decision{
			Mode:    ModeIncrementalRecent,
			Reason:  fmt.Sprintf("run completed %s ago", roundAge(age)),
			LastRun: last,
		}, nil
	case age < CheckWindow:
		return Decision{
			Mode:    ModeIncrementalCheck,
			Reason:  fmt.Sprintf("last run %s ago", roundAge(age)),
			LastRun: last,
		}, nil
	case age < FreshnessWindow:
		return Decision{
			Mode:    ModeFullCheck,
			Reason:  fmt.Sprintf("last run %s ago, verifying whole tree", roundAge(age)),
			LastRun: last,
		}, nil
	default:
		return p.decideWithoutHistory(last), nil
	}
}

// decideWithoutHistory handles the no-recent-log cases.
func (p *Planner) decideWithoutHistory(stale *runlog.Run) Decision {
	if p.store.HasEntries() {
		return Decision{
			Mode:    ModeIncrementalCheck,
			Reason:  "no recent run but index entries exist",
			LastRun: stale,
		}
	}
	return Decision{
		Mode:   ModeFull,
		Reason: "no run history and no index entries",
	}
}

// quietRun reports whether a run observed nothing to do.
func quietRun(run *runlog.Run) bool {
	s := run.Stats
	return s.FilesIndexed == 0 && s.FilesFailed == 0 && s.FilesDeleted == 0
}

func roundAge(age time.Duration) time.Duration {
	return age.Round(time.Minute)
}
