// Package pipeline runs the read, parse, rewrite, format and write cycle for
// a single file.
package pipeline

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mcncl/credscrub/internal/errors"
	"github.com/mcncl/credscrub/internal/formatter"
	"github.com/mcncl/credscrub/internal/models"
	"github.com/mcncl/credscrub/internal/parser"
	"github.com/mcncl/credscrub/internal/rewriter"
)

// Result describes one processed file
type Result struct {
	Path  string
	Stats rewriter.Stats
	// Changed is true when the rewritten text differs from the original bytes
	Changed bool
	// Written is false in dry-run mode
	Written bool
}

// Pipeline processes documents with a fixed rewriter
type Pipeline struct {
	rewriter  *rewriter.Rewriter
	formatter *formatter.Formatter
	dryRun    bool
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithDryRun makes ProcessFile compute the result without writing it
func WithDryRun(dryRun bool) Option {
	return func(p *Pipeline) {
		p.dryRun = dryRun
	}
}

// New creates a Pipeline that rewrites with r
func New(r *rewriter.Rewriter, opts ...Option) *Pipeline {
	p := &Pipeline{
		rewriter:  r,
		formatter: formatter.NewFormatter(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProcessFile rewrites the JSON document at path in place. The file is
// replaced atomically, so a failure at any step leaves the original intact.
func (p *Pipeline) ProcessFile(path string) (Result, error) {
	result := Result{Path: path}

	info, err := os.Stat(path)
	if err != nil {
		return result, errors.NewIOError(fmt.Sprintf("failed to stat '%s'", path), err)
	}

	original, err := os.ReadFile(path)
	if err != nil {
		return result, errors.NewIOError(fmt.Sprintf("failed to read '%s'", path), err)
	}

	rewritten, stats, err := p.Process(original)
	if err != nil {
		return result, err
	}
	result.Stats = stats
	result.Changed = !bytes.Equal(original, rewritten)

	if p.dryRun {
		return result, nil
	}

	if err := writeAtomic(path, rewritten, info.Mode().Perm()); err != nil {
		return result, errors.NewIOError(fmt.Sprintf("failed to write '%s'", path), err)
	}
	result.Written = true
	return result, nil
}

// Process rewrites a document held in memory and returns the new text
func (p *Pipeline) Process(data []byte) ([]byte, rewriter.Stats, error) {
	doc, err := parser.ParseBytes(data)
	if err != nil {
		return nil, rewriter.Stats{}, err
	}

	stats := p.rewriter.Rewrite(doc.Root)

	out, err := p.render(doc.Root)
	if err != nil {
		return nil, rewriter.Stats{}, err
	}
	return out, stats, nil
}

// render serializes a rewritten tree. A failure here means nothing can be
// written, so it is reported like any other write failure.
func (p *Pipeline) render(root models.JSONValue) ([]byte, error) {
	out, err := p.formatter.Format(root)
	if err != nil {
		return nil, errors.NewIOError("failed to serialize document", err)
	}
	return out, nil
}

// writeAtomic writes data to a temporary file next to path and renames it
// over path once it has been flushed to disk
func writeAtomic(path string, data []byte, perm os.FileMode) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmpName, perm); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
