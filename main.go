package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"
	"github.com/mcncl/credscrub/internal/classifier"
	"github.com/mcncl/credscrub/internal/cli"
	"github.com/mcncl/credscrub/internal/config"
	"github.com/mcncl/credscrub/internal/errors"
	"github.com/mcncl/credscrub/internal/logging"
	"github.com/mcncl/credscrub/internal/report"
	"github.com/mcncl/credscrub/internal/runner"
	"go.uber.org/multierr"
)

// Flags defines the command-line interface
type Flags struct {
	Root        string   `arg:"" optional:"" help:"Directory to scan recursively. Defaults to the configured root. Values under keys containing ${markers} are scrubbed."`
	Config      string   `help:"Path to a YAML or TOML config file. If not specified, .credscrub.yml is searched for upwards." short:"c" type:"path"`
	Pattern     string   `help:"File name pattern to scrub (glob)." short:"p"`
	Secret      bool     `help:"Replace sensitive values with the <SECRET> placeholder."`
	Hash        bool     `help:"Replace sensitive values with their SHA-256 hex digest."`
	Blank       bool     `help:"Replace sensitive values with an empty string."`
	Strategy    string   `help:"Replacement strategy by name (placeholder, hash, blank)." short:"s"`
	Exclude     []string `help:"Directory names to skip. Replaces the configured list." short:"e"`
	Workers     int      `help:"Number of files processed in parallel." short:"w"`
	DryRun      bool     `help:"Report what would change without writing any file." short:"n"`
	LogDir      string   `help:"Directory for the run log."`
	NoLogFile   bool     `help:"Do not persist a run log."`
	LogLevel    string   `help:"Console log level (debug, info, warn, error)."`
	Debug       bool     `help:"Enable debug logging." short:"d"`
	Interactive bool     `help:"Run in interactive mode, prompting for the directory and strategy." short:"I"`
	Yes         bool     `help:"Do not warn or ask before overwriting files." short:"y"`
	Version     bool     `help:"Show version information." short:"v"`
}

// Version information
const (
	Version = "0.1.0"
)

const processName = "credscrub"

// Exit codes
const (
	exitOK     = 0
	exitFailed = 1
	exitConfig = 2
)

func main() {
	flags, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: error: %s\n", processName, err)
		fmt.Fprintf(os.Stderr, "Run '%s --help' for usage.\n", processName)
		os.Exit(exitConfig)
	}

	if flags.Version {
		fmt.Printf("%s version %s\n", processName, Version)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, flags, os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func newParser(flags *Flags) (*kong.Kong, error) {
	return kong.New(flags,
		kong.Name(processName),
		kong.Description("Scrub credentials from JSON configuration files"),
		kong.Vars{"markers": strings.Join(classifier.Markers(), ", ")},
	)
}

// parseArgs parses the command line. kong resets every flag to its default
// during Parse, so the no-argument fallback to the interactive prompt is
// applied afterwards.
func parseArgs(args []string) (Flags, error) {
	var flags Flags
	parser, err := newParser(&flags)
	if err != nil {
		return Flags{}, err
	}
	if _, err := parser.Parse(args); err != nil {
		return Flags{}, err
	}
	if len(args) == 0 {
		flags.Interactive = true
	}
	return flags, nil
}

// overrides maps the flags onto config overrides
func (f Flags) overrides() config.Overrides {
	o := config.Overrides{
		Root:        f.Root,
		FilePattern: f.Pattern,
		ExcludeDirs: f.Exclude,
		Workers:     f.Workers,
		LogLevel:    f.LogLevel,
		LogDir:      f.LogDir,
		NoLogFile:   f.NoLogFile,
		Secret:      f.Secret,
		Hash:        f.Hash,
		Blank:       f.Blank,
		Strategy:    f.Strategy,
	}
	if f.DryRun {
		dryRun := true
		o.DryRun = &dryRun
	}
	if f.Debug {
		o.LogLevel = "debug"
	}
	return o
}

// execute runs the program and returns the process exit code
func execute(ctx context.Context, flags Flags, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := config.Load(flags.Config, flags.overrides())
	if err != nil {
		fmt.Fprintln(stderr, errors.UserFriendlyError(err))
		return exitCode(err)
	}

	if flags.Interactive {
		session := cli.NewSession(stdin, stdout, cfg, func(ctx context.Context, c *config.Config) error {
			summary, err := scrub(ctx, c, stdout, stderr)
			if err == nil {
				if skipped := summary.Err(); skipped != nil {
					reportSkipped(stderr, skipped)
				}
			}
			if alreadyRendered(err) {
				return nil
			}
			return err
		})
		session.SkipConfirm = flags.Yes
		if err := session.Start(ctx); err != nil {
			fmt.Fprintln(stderr, errors.UserFriendlyError(err))
			return exitCode(err)
		}
		return exitOK
	}

	if _, err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, errors.UserFriendlyError(err))
		return exitCode(err)
	}

	if !flags.Yes && !cfg.DryRun {
		yellow := color.New(color.FgYellow).SprintFunc()
		fmt.Fprintln(stderr, yellow(fmt.Sprintf("Warning: files named %s under %s are overwritten in place. Use --dry-run to preview.", cfg.FilePattern, cfg.Root)))
	}

	summary, err := scrub(ctx, cfg, stdout, stderr)
	if err != nil {
		if !alreadyRendered(err) {
			fmt.Fprintln(stderr, errors.UserFriendlyError(err))
		}
		return exitCode(err)
	}
	if err := summary.Err(); err != nil {
		reportSkipped(stderr, err)
		return exitCode(err)
	}
	return exitOK
}

// scrub performs one run and renders its summary. The returned error is
// set for configuration, discovery and cancellation failures only; skipped
// files are reported in the summary.
func scrub(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer) (report.Summary, error) {
	// Validate before the run log is created so a bad config touches nothing
	if _, err := cfg.Validate(); err != nil {
		return report.Summary{}, err
	}

	log, err := logging.New(cfg.Log, processName, stderr)
	if err != nil {
		return report.Summary{}, errors.NewIOError("failed to set up logging", err)
	}
	defer log.Close()

	r, err := runner.New(cfg, log.Logger)
	if err != nil {
		return report.Summary{}, err
	}

	rec := report.NewRecorder(log.Logger, cfg.Root, cfg.DryRun)
	runErr := r.Run(ctx, rec)

	summary := rec.Summary()
	report.Render(stdout, summary)
	if path := log.Path(); path != "" {
		fmt.Fprintf(stderr, "Run log saved to %s\n", path)
	}
	return summary, runErr
}

// reportSkipped lists every file that could not be processed
func reportSkipped(w io.Writer, err error) {
	errs := multierr.Errors(err)
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintln(w, red(fmt.Sprintf("%d file(s) could not be processed:", len(errs))))
	for _, e := range errs {
		fmt.Fprintf(w, "  %s\n", e)
	}
}

// alreadyRendered reports whether err is already visible in the summary output
func alreadyRendered(err error) bool {
	return errors.TypeOf(err) == errors.ErrorTypeDiscovery
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.IsConfiguration(err):
		return exitConfig
	default:
		return exitFailed
	}
}
