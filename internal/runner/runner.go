// Package runner drives a complete scrub run: it validates the
// configuration, discovers files and feeds each one through the pipeline.
package runner

import (
	"context"
	stderrors "errors"

	"github.com/mcncl/credscrub/internal/config"
	"github.com/mcncl/credscrub/internal/discovery"
	"github.com/mcncl/credscrub/internal/errors"
	"github.com/mcncl/credscrub/internal/pipeline"
	"github.com/mcncl/credscrub/internal/report"
	"github.com/mcncl/credscrub/internal/rewriter"
	"github.com/mcncl/credscrub/internal/strategy"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Runner holds everything a run needs once the configuration is known to be valid
type Runner struct {
	cfg      *config.Config
	finder   *discovery.Finder
	pipeline *pipeline.Pipeline
	strategy strategy.Strategy
	log      *zap.Logger
}

// New validates cfg and prepares a Runner. Any configuration error is
// returned here, before a single file is opened.
func New(cfg *config.Config, log *zap.Logger) (*Runner, error) {
	s, err := cfg.Validate()
	if err != nil {
		return nil, err
	}
	rw, err := rewriter.New(s)
	if err != nil {
		return nil, err
	}
	finder, err := discovery.NewFinder(cfg.FilePattern, cfg.ExcludeDirs)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{
		cfg:      cfg,
		finder:   finder,
		pipeline: pipeline.New(rw, pipeline.WithDryRun(cfg.DryRun)),
		strategy: rw.Strategy(),
		log:      log,
	}, nil
}

// outcome is the result of one file, kept so events can be reported in discovery order
type outcome struct {
	res pipeline.Result
	err error
}

// Run processes every matching file under the configured root and reports
// each outcome to rep. Per-file failures never stop the run; the returned
// error is only set for discovery failures and cancellation.
func (r *Runner) Run(ctx context.Context, rep report.Reporter) error {
	root := r.cfg.Root
	paths, err := r.finder.Find(root)
	if err != nil {
		if stderrors.Is(err, errors.ErrDirectoryNotFound) {
			rep.Report(report.Event{Kind: report.EventDirectoryNotFound, Path: root, Err: err})
		}
		return err
	}
	r.log.Debug("Directory found",
		zap.String("root", root),
		zap.String("pattern", r.cfg.FilePattern),
		zap.Stringer("strategy", r.strategy),
		zap.Int("files", len(paths)))

	outcomes := make([]outcome, len(paths))
	started := make([]bool, len(paths))

	g := new(errgroup.Group)
	g.SetLimit(r.cfg.Workers)

	for i, path := range paths {
		if ctx.Err() != nil {
			break
		}
		started[i] = true
		g.Go(func() error {
			res, err := r.pipeline.ProcessFile(path)
			outcomes[i] = outcome{res: res, err: err}
			return nil
		})
	}
	_ = g.Wait()

	for i, path := range paths {
		if !started[i] {
			continue
		}
		o := outcomes[i]
		rep.Report(report.FileEvent(path, o.res.Stats.Replaced, o.res.Changed, o.res.Written, o.err))
	}

	if err := ctx.Err(); err != nil {
		r.log.Warn("Run interrupted", zap.Error(err))
		return err
	}
	rep.Report(report.Event{Kind: report.EventCompleted})
	return nil
}
