// Package report turns run events into log lines and an end-of-run summary.
package report

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/mcncl/credscrub/internal/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// EventKind identifies a run event
type EventKind string

const (
	EventProcessed         EventKind = "processed"
	EventParseError        EventKind = "parse_error"
	EventIOError           EventKind = "io_error"
	EventDirectoryNotFound EventKind = "directory_not_found"
	EventCompleted         EventKind = "completed"
)

// Event is emitted once per file, plus once per run for discovery failures and completion
type Event struct {
	Kind     EventKind
	Path     string
	Replaced int
	Changed  bool
	Written  bool
	Err      error
}

// Message returns the error text carried by the event, if any
func (e Event) Message() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

// Reporter receives run events
type Reporter interface {
	Report(Event)
}

// FileEvent classifies the outcome of processing one file
func FileEvent(path string, replaced int, changed, written bool, err error) Event {
	if err == nil {
		return Event{Kind: EventProcessed, Path: path, Replaced: replaced, Changed: changed, Written: written}
	}
	if errors.TypeOf(err) == errors.ErrorTypeParsing {
		return Event{Kind: EventParseError, Path: path, Err: err}
	}
	return Event{Kind: EventIOError, Path: path, Err: err}
}

// Skipped is a file that could not be processed
type Skipped struct {
	Path   string
	Reason string
	Err    error
}

// Summary totals a run
type Summary struct {
	Root      string
	Found     int
	Processed []string
	Skipped   []Skipped
	Replaced  int
	Unchanged int
	DryRun    bool
	// DirectoryNotFound is set when discovery could not open the root
	DirectoryNotFound bool
}

// Err combines every per-file failure, or returns nil when all files were processed
func (s *Summary) Err() error {
	var err error
	for _, sk := range s.Skipped {
		err = multierr.Append(err, fmt.Errorf("%s: %w", sk.Path, sk.Err))
	}
	return err
}

// Recorder logs events and accumulates a Summary. It is safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	log     *zap.Logger
	summary Summary
}

// NewRecorder creates a Recorder for a run over root
func NewRecorder(log *zap.Logger, root string, dryRun bool) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Recorder{
		log:     log,
		summary: Summary{Root: root, DryRun: dryRun},
	}
}

// Report implements Reporter
func (r *Recorder) Report(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch e.Kind {
	case EventProcessed:
		r.summary.Found++
		r.summary.Processed = append(r.summary.Processed, e.Path)
		r.summary.Replaced += e.Replaced
		if !e.Changed {
			r.summary.Unchanged++
		}
		r.log.Info("Processed",
			zap.String("path", e.Path),
			zap.Int("replaced", e.Replaced),
			zap.Bool("changed", e.Changed),
			zap.Bool("written", e.Written))
	case EventParseError, EventIOError:
		r.summary.Found++
		reason := "parse error"
		if e.Kind == EventIOError {
			reason = "io error"
		}
		r.summary.Skipped = append(r.summary.Skipped, Skipped{Path: e.Path, Reason: reason, Err: e.Err})
		r.log.Error("Error processing file", zap.String("path", e.Path), zap.String("reason", reason), zap.Error(e.Err))
	case EventDirectoryNotFound:
		r.summary.DirectoryNotFound = true
		r.log.Error("Directory not found", zap.String("root", e.Path), zap.Error(e.Err))
	case EventCompleted:
		r.log.Info("Processing completed",
			zap.String("root", r.summary.Root),
			zap.Int("processed", len(r.summary.Processed)),
			zap.Int("skipped", len(r.summary.Skipped)),
			zap.Int("replaced", r.summary.Replaced),
			zap.Bool("dry_run", r.summary.DryRun))
	default:
		r.log.Warn("Unknown event", zap.String("kind", string(e.Kind)), zap.String("path", e.Path))
	}
}

// Summary returns a copy of the totals so far
func (r *Recorder) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.summary
	s.Processed = append([]string(nil), r.summary.Processed...)
	s.Skipped = append([]Skipped(nil), r.summary.Skipped...)
	return s
}

// Render writes a human readable summary to w
func Render(w io.Writer, s Summary) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	if s.DirectoryNotFound {
		fmt.Fprintf(w, "%s %s\n", red("✗"), bold(fmt.Sprintf("Directory not found: %s", s.Root)))
		return
	}

	verb := "Scrubbed"
	if s.DryRun {
		verb = "Would scrub"
	}

	fmt.Fprintf(w, "%s\n", bold(fmt.Sprintf("%s %d field(s) in %d of %d file(s) under %s", verb, s.Replaced, len(s.Processed), s.Found, s.Root)))
	for _, p := range s.Processed {
		fmt.Fprintf(w, "  %s %s\n", green("✓"), p)
	}
	for _, sk := range s.Skipped {
		fmt.Fprintf(w, "  %s %s %s\n", red("✗"), sk.Path, yellow(fmt.Sprintf("(%s: %s)", sk.Reason, errors.UserFriendlyError(sk.Err))))
	}
	if s.Unchanged > 0 {
		fmt.Fprintf(w, "  %d file(s) already clean\n", s.Unchanged)
	}
	if s.Found == 0 {
		fmt.Fprintf(w, "  %s\n", yellow("no matching files found"))
	}
	if s.DryRun {
		fmt.Fprintf(w, "%s\n", yellow("Dry run: no files were modified."))
	}
}
