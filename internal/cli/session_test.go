package cli

import (
	"bytes"
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/mcncl/credscrub/internal/config"
	"github.com/mcncl/credscrub/internal/errors"
	"github.com/mcncl/credscrub/internal/strategy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRun struct {
	configs []*config.Config
	err     error
}

func (r *recordingRun) run(_ context.Context, cfg *config.Config) error {
	r.configs = append(r.configs, cfg)
	return r.err
}

func newTestSession(input string, rec *recordingRun) (*Session, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return NewSession(strings.NewReader(input), out, config.NewConfig(), rec.run), out
}

func TestSession_SingleRun(t *testing.T) {
	rec := &recordingRun{}
	s, out := newTestSession("y\n/srv/app\n1\ny\nn\n", rec)

	require.NoError(t, s.Start(context.Background()))

	require.Len(t, rec.configs, 1)
	cfg := rec.configs[0]
	assert.Equal(t, "/srv/app", cfg.Root)
	assert.Equal(t, config.ReplaceFor{Secret: true}, cfg.ReplaceFor)
	assert.Equal(t, "appsettings.json", cfg.FilePattern)

	text := out.String()
	assert.Contains(t, text, "Start program? (y/n)")
	assert.Contains(t, text, "Enter the directory path:")
	assert.Contains(t, text, "[1] Placeholder (<SECRET>)")
	assert.Contains(t, text, "[2] Hash (SHA-256)")
	assert.Contains(t, text, "[3] Blank")
	assert.Contains(t, text, "Continue? (y/n)")
	assert.Contains(t, text, "Restart program? (y/n)")
}

func TestSession_DeclineStart(t *testing.T) {
	rec := &recordingRun{}
	s, out := newTestSession("n\n", rec)

	require.NoError(t, s.Start(context.Background()))
	assert.Empty(t, rec.configs)
	assert.NotContains(t, out.String(), "Enter the directory path:")
}

func TestSession_RestartLoop(t *testing.T) {
	rec := &recordingRun{}
	input := strings.Join([]string{
		"y",
		`"/path with spaces"`,
		"2",
		"y",
		"y",
		"'/other'",
		"3",
		"y",
		"n",
	}, "\n") + "\n"
	s, _ := newTestSession(input, rec)

	require.NoError(t, s.Start(context.Background()))

	require.Len(t, rec.configs, 2)
	assert.Equal(t, "/path with spaces", rec.configs[0].Root)
	assert.Equal(t, config.ReplaceFor{Hash: true}, rec.configs[0].ReplaceFor)
	assert.Equal(t, "/other", rec.configs[1].Root)
	assert.Equal(t, config.ReplaceFor{Blank: true}, rec.configs[1].ReplaceFor)
}

func TestSession_RepromptsOnInvalidInput(t *testing.T) {
	rec := &recordingRun{}
	s, out := newTestSession("maybe\ny\n\n/srv\n9\nhash\ny\nn\n", rec)

	require.NoError(t, s.Start(context.Background()))

	require.Len(t, rec.configs, 1)
	assert.Equal(t, config.ReplaceFor{Hash: true}, rec.configs[0].ReplaceFor)

	text := out.String()
	assert.Contains(t, text, "Please answer y or n.")
	assert.Contains(t, text, "Please enter a directory.")
	assert.Contains(t, text, "Invalid choice.")
}

func TestSession_DeclineConfirmation(t *testing.T) {
	rec := &recordingRun{}
	s, _ := newTestSession("y\n/srv\n1\nn\nn\n", rec)

	require.NoError(t, s.Start(context.Background()))
	assert.Empty(t, rec.configs)
}

func TestSession_SkipConfirm(t *testing.T) {
	rec := &recordingRun{}
	s, out := newTestSession("y\n/srv\n1\nn\n", rec)
	s.SkipConfirm = true

	require.NoError(t, s.Start(context.Background()))
	require.Len(t, rec.configs, 1)
	assert.NotContains(t, out.String(), "Continue? (y/n)")
}

func TestSession_EndOfInput(t *testing.T) {
	rec := &recordingRun{}
	s, _ := newTestSession("y\n/srv\n", rec)

	assert.NoError(t, s.Start(context.Background()))
	assert.Empty(t, rec.configs)
}

func TestSession_LastLineWithoutNewline(t *testing.T) {
	rec := &recordingRun{}
	s, _ := newTestSession("y\n/srv\n3\ny\nn", rec)

	require.NoError(t, s.Start(context.Background()))
	assert.Len(t, rec.configs, 1)
}

func TestSession_RunErrorKeepsSessionAlive(t *testing.T) {
	rec := &recordingRun{err: errors.NewDiscoveryError("directory '/missing' does not exist", errors.ErrDirectoryNotFound)}
	s, out := newTestSession("y\n/missing\n1\ny\ny\n/missing\n1\ny\nn\n", rec)

	require.NoError(t, s.Start(context.Background()))
	assert.Len(t, rec.configs, 2)
	assert.Equal(t, 2, strings.Count(out.String(), "Discovery error: directory '/missing' does not exist"))
}

func TestSession_ConfigCopiesAreIndependent(t *testing.T) {
	base := config.NewConfig()
	base.Workers = 3
	rec := &recordingRun{}
	s := NewSession(strings.NewReader("y\n/a\n1\ny\nn\n"), &bytes.Buffer{}, base, rec.run)

	require.NoError(t, s.Start(context.Background()))
	require.Len(t, rec.configs, 1)

	assert.Equal(t, 3, rec.configs[0].Workers)
	assert.Equal(t, ".", base.Root)
	assert.Equal(t, config.ReplaceFor{}, base.ReplaceFor)

	rec.configs[0].ExcludeDirs[0] = "changed"
	assert.Equal(t, ".git", base.ExcludeDirs[0])
}

func TestSession_CancelledContext(t *testing.T) {
	rec := &recordingRun{}
	s, _ := newTestSession("y\n/srv\n1\ny\nn\n", rec)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Start(ctx), context.Canceled)
	assert.Empty(t, rec.configs)
}

func TestCleanPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/srv/app", "/srv/app"},
		{"  /srv/app  ", "/srv/app"},
		{`"/srv/my app"`, "/srv/my app"},
		{"'/srv/app'", "/srv/app"},
		{`"/srv/app'`, `"/srv/app'`},
		{`"`, `"`},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanPath(tt.in))
		})
	}
}

func TestMenuChoice(t *testing.T) {
	for i, want := range strategy.All {
		got, ok := menuChoice(strconv.Itoa(i + 1))
		require.True(t, ok)
		assert.Equal(t, want, got)
	}

	got, ok := menuChoice("sha256")
	require.True(t, ok)
	assert.Equal(t, strategy.HashStrategy, got)

	for _, bad := range []string{"0", "4", "-1", "rot13"} {
		_, ok := menuChoice(bad)
		assert.False(t, ok, bad)
	}
}
