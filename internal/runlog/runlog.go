package runlog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Run status values.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// Per-file event outcomes.
const (
	EventIndexed = "indexed"
	EventFailed  = "failed"
	EventSkipped = "skipped"
	EventDeleted = "deleted"
)

// ErrNoRuns is returned when no run log exists yet.
var ErrNoRuns = errors.New("no run logs")

// timestampLayout names log files; lexicographic order is
// chronological order.
const timestampLayout = "20060102-150405"

var unsafeName = regexp.MustCompile(`[^\w-]`)

// FileEvent records the outcome for one file during a run.
type FileEvent struct {
	Path   string `json:"path"`
	Status string `json:"status"`
	Size   int64  `json:"size,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Stats aggregates a run's outcome.
type Stats struct {
	FilesIndexed   int   `json:"filesIndexed"`
	FilesIgnored   int   `json:"filesIgnored"`
	FilesFailed    int   `json:"filesFailed"`
	FilesDeleted   int   `json:"filesDeleted"`
	TotalSize      int64 `json:"totalSize"`
	ProcessingTime int64 `json:"processingTimeMs"`
}

// Run is the record of one indexing run. Runs are immutable once
// appended; the scan planner only reads them.
type Run struct {
	RunID     string      `json:"runId"`
	Project   string      `json:"project"`
	Timestamp time.Time   `json:"timestamp"`
	Status    string      `json:"status"`
	Stats     Stats       `json:"statistics"`
	Events    []FileEvent `json:"events,omitempty"`
}

// NewRun creates a run record with a fresh ID, stamped now.
func NewRun(project string) *Run {
	return &Run{
		RunID:     uuid.NewString(),
		Project:   project,
		Timestamp: time.Now(),
	}
}

// AddEvent appends a per-file event and folds it into the statistics.
func (r *Run) AddEvent(path, status string, size int64, err error) {
	event := FileEvent{Path: path, Status: status, Size: size}
	if err != nil {
		event.Error = err.Error()
	}
	r.Events = append(r.Events, event)

	switch status {
	case EventIndexed:
		r.Stats.FilesIndexed++
		r.Stats.TotalSize += size
	case EventFailed:
		r.Stats.FilesFailed++
	case EventSkipped:
		r.Stats.FilesIgnored++
	case EventDeleted:
		r.Stats.FilesDeleted++
	}
}

// Journal reads and appends run logs for one project. Each run lands
// as a JSON record plus a plain-text twin named
// <project>_<timestamp>.{json,txt} under the log directory.
type Journal struct {
	dir     string
	project string
}

// NewJournal creates a journal writing to dir.
func NewJournal(dir, project string) *Journal {
	return &Journal{dir: dir, project: project}
}

// Append persists a finished run. The run's status must be set; the
// record is never modified afterwards.
func (j *Journal) Append(run *Run) error {
	if run.Status == "" {
		return fmt.Errorf("run %s has no status", run.RunID)
	}
	if err := os.MkdirAll(j.dir, 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}

	base := j.baseName(run.Timestamp)

	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("encode run log: %w", err)
	}
	if err := os.WriteFile(filepath.Join(j.dir, base+".json"), data, 0o644); err != nil {
		return fmt.Errorf("write run log: %w", err)
	}
	if err := os.WriteFile(filepath.Join(j.dir, base+".txt"), []byte(run.Summary()), 0o644); err != nil {
		return fmt.Errorf("write run log text: %w", err)
	}
	return nil
}

// List returns every persisted run, newest first. Undecodable logs are
// skipped.
func (j *Journal) List() ([]*Run, error) {
	entries, err := os.ReadDir(j.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var runs []*Run
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(j.dir, entry.Name()))
		if err != nil {
			continue
		}
		var run Run
		if err := json.Unmarshal(data, &run); err != nil {
			continue
		}
		runs = append(runs, &run)
	}

	sort.Slice(runs, func(i, k int) bool {
		return runs[i].Timestamp.After(runs[k].Timestamp)
	})
	return runs, nil
}

// Latest returns the newest run of any status, or ErrNoRuns.
func (j *Journal) Latest() (*Run, error) {
	runs, err := j.List()
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, ErrNoRuns
	}
	return runs[0], nil
}

// LatestCompleted returns the newest run that finished successfully,
// or ErrNoRuns. The scan planner plans from completed runs only; a
// failed run proves nothing about index freshness.
func (j *Journal) LatestCompleted() (*Run, error) {
	runs, err := j.List()
	if err != nil {
		return nil, err
	}
	for _, run := range runs {
		if run.Status == StatusCompleted {
			return run, nil
		}
	}
	return nil, ErrNoRuns
}

// PruneOlderThan removes run logs (both twins) older than age.
// Returns the number of runs removed.
func (j *Journal) PruneOlderThan(age time.Duration) (int, error) {
	runs, err := j.List()
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-age)
	pruned := 0
	for _, run := range runs {
		if run.Timestamp.After(cutoff) {
			continue
		}
		base := j.baseName(run.Timestamp)
		for _, ext := range []string{".json", ".txt"} {
			if err := os.Remove(filepath.Join(j.dir, base+ext)); err != nil && !os.IsNotExist(err) {
				return pruned, err
			}
		}
		pruned++
	}
	return pruned, nil
}

func (j *Journal) baseName(ts time.Time) string {
	project := unsafeName.ReplaceAllString(j.project, "_")
	return fmt.Sprintf("%s_%s", project, ts.Format(timestampLayout))
}

// Summary renders the human-readable twin of the JSON record.
func (r *Run) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Indexing run %s\n", r.RunID)
	fmt.Fprintf(&b, "Project:   %s\n", r.Project)
	fmt.Fprintf(&b, "Started:   %s\n", r.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(&b, "Status:    %s\n", r.Status)
	fmt.Fprintf(&b, "Indexed:   %d\n", r.Stats.FilesIndexed)
	fmt.Fprintf(&b, "Ignored:   %d\n", r.Stats.FilesIgnored)
	fmt.Fprintf(&b, "Failed:    %d\n", r.Stats.FilesFailed)
	fmt.Fprintf(&b, "Deleted:   %d\n", r.Stats.FilesDeleted)
	fmt.Fprintf(&b, "Total size: %d bytes\n", r.Stats.TotalSize)
	fmt.Fprintf(&b, "Duration:  %dms\n", r.Stats.ProcessingTime)

	if len(r.Events) > 0 {
		b.WriteString("\nFiles:\n")
		for _, event := range r.Events {
			if event.Error != "" {
				fmt.Fprintf(&b, "  [%s] %s: %s\n", event.Status, event.Path, event.Error)
			} else {
				fmt.Fprintf(&b, "  [%s] %s\n", event.Status, event.Path)
			}
		}
	}
	return b.String()
}
