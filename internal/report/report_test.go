package report

import (
	"bytes"
	stderrors "errors"
	"sync"
	"testing"

	"github.com/fatih/color"
	"github.com/mcncl/credscrub/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObserved() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func TestFileEvent(t *testing.T) {
	assert.Equal(t, EventProcessed, FileEvent("a", 1, true, true, nil).Kind)
	assert.Equal(t, EventParseError, FileEvent("a", 0, false, false, errors.NewParsingError("bad", errors.ErrInvalidJSON)).Kind)
	assert.Equal(t, EventIOError, FileEvent("a", 0, false, false, errors.NewIOError("denied", nil)).Kind)
	assert.Equal(t, EventIOError, FileEvent("a", 0, false, false, stderrors.New("other")).Kind)
}

func TestRecorder_AccumulatesSummary(t *testing.T) {
	log, logs := newObserved()
	r := NewRecorder(log, "/repo", false)

	parseErr := errors.NewParsingError("JSON syntax error at offset 3", errors.ErrInvalidJSON)
	ioErr := errors.NewIOError("failed to write", stderrors.New("disk full"))

	r.Report(FileEvent("/repo/a.json", 2, true, true, nil))
	r.Report(FileEvent("/repo/b.json", 0, false, true, nil))
	r.Report(FileEvent("/repo/c.json", 0, false, false, parseErr))
	r.Report(FileEvent("/repo/d.json", 0, false, false, ioErr))
	r.Report(Event{Kind: EventCompleted})

	s := r.Summary()
	assert.Equal(t, 4, s.Found)
	assert.Equal(t, []string{"/repo/a.json", "/repo/b.json"}, s.Processed)
	assert.Equal(t, 2, s.Replaced)
	assert.Equal(t, 1, s.Unchanged)
	require.Len(t, s.Skipped, 2)
	assert.Equal(t, "parse error", s.Skipped[0].Reason)
	assert.Equal(t, "io error", s.Skipped[1].Reason)

	err := s.Err()
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)
	assert.ErrorIs(t, err, errors.ErrInvalidJSON)

	assert.Equal(t, 2, logs.FilterMessage("Processed").Len())
	assert.Equal(t, 2, logs.FilterMessage("Error processing file").Len())
	completed := logs.FilterMessage("Processing completed").All()
	require.Len(t, completed, 1)
	assert.Equal(t, int64(2), completed[0].ContextMap()["processed"])
}

func TestRecorder_DirectoryNotFound(t *testing.T) {
	log, logs := newObserved()
	r := NewRecorder(log, "/missing", false)

	r.Report(Event{Kind: EventDirectoryNotFound, Path: "/missing", Err: errors.ErrDirectoryNotFound})

	s := r.Summary()
	assert.True(t, s.DirectoryNotFound)
	assert.NoError(t, s.Err())
	assert.Equal(t, 1, logs.FilterMessage("Directory not found").Len())
}

func TestRecorder_NilLogger(t *testing.T) {
	r := NewRecorder(nil, ".", true)
	r.Report(FileEvent("x", 1, true, false, nil))
	assert.Equal(t, 1, r.Summary().Replaced)
}

func TestRecorder_ConcurrentReports(t *testing.T) {
	r := NewRecorder(zap.NewNop(), ".", false)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Report(FileEvent("f", 1, true, true, nil))
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, r.Summary().Replaced)
}

func TestRecorder_SummaryIsACopy(t *testing.T) {
	r := NewRecorder(zap.NewNop(), ".", false)
	r.Report(FileEvent("a", 1, true, true, nil))

	s := r.Summary()
	s.Processed[0] = "changed"

	assert.Equal(t, "a", r.Summary().Processed[0])
}

func TestRender(t *testing.T) {
	color.NoColor = true

	s := Summary{
		Root:      "/repo",
		Found:     2,
		Processed: []string{"/repo/a.json"},
		Skipped:   []Skipped{{Path: "/repo/b.json", Reason: "parse error", Err: errors.NewParsingError("unexpected end of JSON input", errors.ErrInvalidJSON)}},
		Replaced:  3,
	}

	var buf bytes.Buffer
	Render(&buf, s)
	out := buf.String()

	assert.Contains(t, out, "Scrubbed 3 field(s) in 1 of 2 file(s) under /repo")
	assert.Contains(t, out, "✓ /repo/a.json")
	assert.Contains(t, out, "✗ /repo/b.json (parse error: JSON parsing error: unexpected end of JSON input)")
	assert.NotContains(t, out, "Dry run")
	assert.NotContains(t, out, "already clean")
}

func TestRender_Unchanged(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	Render(&buf, Summary{Root: "/repo", Found: 2, Processed: []string{"/repo/a.json", "/repo/b.json"}, Replaced: 1, Unchanged: 1})
	out := buf.String()

	assert.Contains(t, out, "Scrubbed 1 field(s) in 2 of 2 file(s) under /repo")
	assert.Contains(t, out, "  1 file(s) already clean\n")
}

func TestRender_DryRunAndEmpty(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	Render(&buf, Summary{Root: ".", DryRun: true})
	out := buf.String()

	assert.Contains(t, out, "Would scrub 0 field(s) in 0 of 0 file(s)")
	assert.Contains(t, out, "no matching files found")
	assert.Contains(t, out, "Dry run: no files were modified.")
}

func TestRender_DirectoryNotFound(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	Render(&buf, Summary{Root: "/nope", DirectoryNotFound: true})
	assert.Equal(t, "✗ Directory not found: /nope\n", buf.String())
}

func TestEvent_Message(t *testing.T) {
	assert.Equal(t, "", Event{}.Message())
	assert.Equal(t, "boom", Event{Err: stderrors.New("boom")}.Message())
}
