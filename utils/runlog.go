package utils

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Stage names used by the run log.
const (
	StageGeometry = "geometry"
	StageDetect   = "detect"
	StageTopology = "topology"
	StageRegion   = "region"
	StageContact  = "contact"
	StageExport   = "export"
)

// LogEntry records one item that was excluded from the output.
type LogEntry struct {
	Stage   string `json:"stage"`
	Subject string `json:"subject"`
	Reason  string `json:"reason"`
}

func (e LogEntry) String() string {
	return fmt.Sprintf("[%s] %s: %s", e.Stage, e.Subject, e.Reason)
}

// RunLog collects the skippable failures of a single invocation. Fatal
// errors are returned to the caller and never recorded here.
type RunLog struct {
	ID uuid.UUID

	mu      sync.Mutex
	entries []LogEntry
	logger  *slog.Logger
}

func NewRunLog() *RunLog {
	id := uuid.New()
	return &RunLog{
		ID:     id,
		logger: slog.Default().With("run", id.String()),
	}
}

// Skip records that subject was dropped during stage. A nil RunLog is a
// valid sink and discards the entry.
func (l *RunLog) Skip(stage, subject string, reason error) {
	if l == nil {
		return
	}
	msg := "skipped"
	if reason != nil {
		msg = reason.Error()
	}
	l.mu.Lock()
	l.entries = append(l.entries, LogEntry{Stage: stage, Subject: subject, Reason: msg})
	l.mu.Unlock()
	l.logger.Warn("skipped", "stage", stage, "subject", subject, "reason", msg)
}

// Skipf is Skip with a formatted reason.
func (l *RunLog) Skipf(stage, subject, format string, args ...any) {
	l.Skip(stage, subject, fmt.Errorf(format, args...))
}

// Entries returns a copy of the recorded entries in insertion order.
func (l *RunLog) Entries() []LogEntry {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len is the number of recorded entries.
func (l *RunLog) Len() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// CountByStage returns the number of entries per stage.
func (l *RunLog) CountByStage() map[string]int {
	counts := make(map[string]int)
	for _, e := range l.Entries() {
		counts[e.Stage]++
	}
	return counts
}

func (l *RunLog) Print() {
	counts := l.CountByStage()
	stages := make([]string, 0, len(counts))
	for s := range counts {
		stages = append(stages, s)
	}
	sort.Strings(stages)
	fmt.Printf("Run %s: %d skipped items\n", l.ID, l.Len())
	for _, s := range stages {
		fmt.Printf("  %-10s %d\n", s, counts[s])
	}
	for _, e := range l.Entries() {
		fmt.Printf("    %s\n", e)
	}
}
