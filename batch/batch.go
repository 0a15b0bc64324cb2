// Package batch runs the rewrite engines over files on disk. It owns
// every filesystem side effect: discovery, reading, atomic writes and
// removal of superseded files.
package batch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lestrrat-go/xmlshape"
	"github.com/lestrrat-go/xmlshape/internal/trace"
	"github.com/lestrrat-go/xmlshape/node"
	"github.com/lestrrat-go/xmlshape/rewrite"
	"github.com/lestrrat-go/xmlshape/s11n"
)

var (
	ErrInputNotFound = errors.New("input file not found")
	ErrNotADirectory = errors.New("not a directory")
)

// Result describes what happened to one document
type Result struct {
	Input  string
	Output string
	// Removed is true when Input was deleted after Output was written
	Removed bool
	// Filter holds the counters of a filter run
	Filter rewrite.Report
	// Path holds the outcome of a path rule run
	Path rewrite.PathResult
	// DryRun is true when nothing was written. Diff then holds the
	// changes that would have been made.
	DryRun bool
	Diff   string
	Err    error
}

// Changed reports whether the document content was modified
func (r Result) Changed() bool {
	return r.Path.Changed || r.Filter.Mutations() > 0
}

type Driver struct {
	parser *xmlshape.Parser
	dumper s11n.Dumper
	dryRun bool
}

type Option func(*Driver)

func WithParser(p *xmlshape.Parser) Option {
	return func(d *Driver) {
		d.parser = p
	}
}

func WithDumper(dumper s11n.Dumper) Option {
	return func(d *Driver) {
		d.dumper = dumper
	}
}

// WithDryRun makes the driver compute the new contents and a diff
// without writing or removing anything
func WithDryRun(v bool) Option {
	return func(d *Driver) {
		d.dryRun = v
	}
}

func NewDriver(options ...Option) *Driver {
	d := &Driver{
		parser: xmlshape.NewParser(),
	}
	for _, option := range options {
		option(d)
	}
	return d
}

func (d *Driver) DryRun() bool {
	return d.dryRun
}

// Discover lists the regular files in dir whose name ends with suffix,
// sorted by name (os.ReadDir order)
func (d *Driver) Discover(dir, suffix string) ([]string, error) {
	st, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, dir)
		}
		return nil, err
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotADirectory, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if !strings.HasSuffix(e.Name(), suffix) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}

// RunFilter applies f to the document in `in` and writes the result
// to `out`, or back to `in` when out is empty. A missing input is
// reported as ErrInputNotFound. Any other failure is returned and also
// recorded in the Result.
func (d *Driver) RunFilter(ctx context.Context, f *rewrite.Filter, in, out string) (Result, error) {
	if out == "" {
		out = in
	}
	res := Result{Input: in, Output: out}

	src, err := readInput(in)
	if err != nil {
		res.Err = err
		return res, err
	}

	res.Err = d.process(ctx, &res, src, func(doc *node.Document) {
		res.Filter = f.Apply(ctx, doc)
	})
	return res, res.Err
}

// RunRename applies the rule to every .xml file in dir. Documents are
// processed one at a time; a failed document is recorded in its Result
// and the rest of the batch still runs. The returned error is only set when the batch could not run
// at all, or was cancelled.
func (d *Driver) RunRename(ctx context.Context, rule rewrite.PathRule, dir string) ([]Result, error) {
	files, err := d.Discover(dir, ".xml")
	if err != nil {
		return nil, err
	}

	trace.Event(ctx, "discovered files", slog.String("dir", dir), slog.Int("count", len(files)))

	results := make([]Result, 0, len(files))
	for _, in := range files {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		results = append(results, d.rename(ctx, rule, in))
	}
	return results, nil
}

func (d *Driver) rename(ctx context.Context, rule rewrite.PathRule, in string) Result {
	res := Result{Input: in, Output: in}

	src, err := readInput(in)
	if err != nil {
		res.Err = err
		return res
	}

	res.Err = d.process(ctx, &res, src, func(doc *node.Document) {
		var name string
		res.Path, name = rule.Apply(ctx, doc, filepath.Base(in))
		res.Output = filepath.Join(filepath.Dir(in), name)
	})
	if res.Err == nil && !d.dryRun && res.Output != res.Input {
		// written first, then removed, so a failure never loses the document
		if err := os.Remove(in); err != nil {
			res.Err = fmt.Errorf("failed to remove %s: %w", in, err)
		} else {
			res.Removed = true
		}
	}
	return res
}

// process runs parse, mutate, serialize and write for one document.
// Nothing is written unless every step before succeeded.
func (d *Driver) process(ctx context.Context, res *Result, src []byte, mutate func(*node.Document)) error {
	doc, err := d.parser.Parse(ctx, src)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", res.Input, err)
	}

	mutate(doc)

	var buf bytes.Buffer
	if err := d.dumper.DumpDoc(&buf, doc); err != nil {
		return fmt.Errorf("failed to serialize %s: %w", res.Input, err)
	}

	if d.dryRun {
		res.DryRun = true
		res.Diff = Diff(string(src), buf.String())
		return nil
	}

	if err := writeAtomic(ctx, res.Output, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write %s: %w", res.Output, err)
	}
	trace.Event(ctx, "wrote document",
		slog.String("input", res.Input),
		slog.String("output", res.Output),
		slog.Int("bytes", buf.Len()),
	)
	return nil
}

func readInput(in string) ([]byte, error) {
	src, err := os.ReadFile(in)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, in)
		}
		return nil, fmt.Errorf("failed to read %s: %w", in, err)
	}
	return src, nil
}
