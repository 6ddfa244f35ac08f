// Package cli implements the interactive console session: it asks for a
// directory and a replacement strategy, runs a scrub and offers to start over.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mcncl/credscrub/internal/config"
	"github.com/mcncl/credscrub/internal/errors"
	"github.com/mcncl/credscrub/internal/strategy"
)

// RunFunc executes one scrub with the configuration collected by the session
type RunFunc func(ctx context.Context, cfg *config.Config) error

// Session is an interactive prompt loop over in and out
type Session struct {
	in   *bufio.Reader
	out  io.Writer
	base *config.Config
	run  RunFunc

	// SkipConfirm disables the destructive-action question
	SkipConfirm bool
}

// NewSession creates a session. Every run starts from a copy of base with
// the root and strategy the user entered.
func NewSession(in io.Reader, out io.Writer, base *config.Config, run RunFunc) *Session {
	if base == nil {
		base = config.NewConfig()
	}
	return &Session{
		in:   bufio.NewReader(in),
		out:  out,
		base: base,
		run:  run,
	}
}

// Start runs the prompt loop until the user declines to (re)start, the
// input ends or ctx is cancelled. Run failures are printed and do not end
// the session.
func (s *Session) Start(ctx context.Context) error {
	fmt.Fprintln(s.out, "credscrub interactive mode")

	ok, err := s.askYesNo("Start program? (y/n)")
	if err != nil || !ok {
		return ignoreEOF(err)
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		cfg, proceed, err := s.collect()
		if err != nil {
			return ignoreEOF(err)
		}

		if proceed {
			if err := s.run(ctx, cfg); err != nil {
				fmt.Fprintln(s.out, errors.UserFriendlyError(err))
			}
		}

		again, err := s.askYesNo("Restart program? (y/n)")
		if err != nil || !again {
			return ignoreEOF(err)
		}
	}
}

// collect asks for everything one run needs. proceed is false when the
// user declined the confirmation.
func (s *Session) collect() (*config.Config, bool, error) {
	root, err := s.askDirectory()
	if err != nil {
		return nil, false, err
	}
	st, err := s.askStrategy()
	if err != nil {
		return nil, false, err
	}

	cfg := *s.base
	cfg.ExcludeDirs = append([]string(nil), s.base.ExcludeDirs...)
	cfg.Root = root
	cfg.ReplaceFor = config.ForStrategy(st)

	if s.SkipConfirm || cfg.DryRun {
		return &cfg, true, nil
	}
	ok, err := s.askYesNo(fmt.Sprintf("Files named %s under %s will be overwritten. Continue? (y/n)", cfg.FilePattern, root))
	if err != nil {
		return nil, false, err
	}
	return &cfg, ok, nil
}

func (s *Session) askDirectory() (string, error) {
	for {
		line, err := s.prompt("Enter the directory path:")
		if err != nil {
			return "", err
		}
		if dir := cleanPath(line); dir != "" {
			return dir, nil
		}
		fmt.Fprintln(s.out, "Please enter a directory.")
	}
}

// menuChoice resolves a menu number or a strategy name
func menuChoice(line string) (strategy.Strategy, bool) {
	if n, err := strconv.Atoi(line); err == nil {
		if n < 1 || n > len(strategy.All) {
			return strategy.None, false
		}
		return strategy.All[n-1], true
	}
	st, err := strategy.Parse(line)
	return st, err == nil
}

func (s *Session) askStrategy() (strategy.Strategy, error) {
	for {
		fmt.Fprintln(s.out, "Select the replacement for sensitive values:")
		for i, st := range strategy.All {
			fmt.Fprintf(s.out, "[%d] %s\n", i+1, st.Label())
		}

		line, err := s.prompt("Choice:")
		if err != nil {
			return strategy.None, err
		}
		if st, ok := menuChoice(line); ok {
			return st, nil
		}
		fmt.Fprintln(s.out, "Invalid choice.")
	}
}

func (s *Session) askYesNo(question string) (bool, error) {
	for {
		line, err := s.prompt(question)
		if err != nil {
			return false, err
		}
		switch strings.ToLower(line) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(s.out, "Please answer y or n.")
	}
}

// prompt prints question and reads one trimmed line. A final line without
// a newline is still returned; io.EOF is only reported once nothing is left.
func (s *Session) prompt(question string) (string, error) {
	fmt.Fprintf(s.out, "%s ", question)
	line, err := s.in.ReadString('\n')
	if err != nil && !(err == io.EOF && line != "") {
		fmt.Fprintln(s.out)
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// cleanPath strips the quotes terminals add around dragged-in paths
func cleanPath(line string) string {
	line = strings.TrimSpace(line)
	if len(line) >= 2 {
		first, last := line[0], line[len(line)-1]
		if (first == '"' || first == '\'') && first == last {
			line = strings.TrimSpace(line[1 : len(line)-1])
		}
	}
	return line
}

func ignoreEOF(err error) error {
	if err == io.EOF {
		return nil
	}
	return err
}
