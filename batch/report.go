package batch

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/lestrrat-go/xmlshape/rewrite"
	"github.com/mattn/go-isatty"
)

// Reporter prints results for a human operator. Colors are only used
// when writing to a terminal.
type Reporter struct {
	w     io.Writer
	ok    *color.Color
	warn  *color.Color
	fail  *color.Color
	value *color.Color
}

func NewReporter(w io.Writer) *Reporter {
	r := &Reporter{
		w:     w,
		ok:    color.New(color.FgGreen),
		warn:  color.New(color.FgYellow),
		fail:  color.New(color.FgRed, color.Bold),
		value: color.New(color.FgCyan),
	}
	r.SetColor(isTerminal(w))
	return r
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// SetColor forces colors on or off
func (r *Reporter) SetColor(v bool) {
	for _, c := range []*color.Color{r.ok, r.warn, r.fail, r.value} {
		if v {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
}

// Error prints a per-document failure
func (r *Reporter) Error(res Result) {
	fmt.Fprintf(r.w, "%s %s: %v\n", r.fail.Sprint("✘"), res.Input, res.Err)
}

// Filter prints the summary of a filter run
func (r *Reporter) Filter(f *rewrite.Filter, res Result) {
	if res.Err != nil {
		r.Error(res)
		return
	}

	fmt.Fprintf(r.w, "%s Done\n", r.ok.Sprint("✔"))
	fmt.Fprintf(r.w, "Matched objects (%s == %q): %s\n", f.Field(), f.Value(), r.count(res.Filter.Matched))
	for _, a := range f.Assignments() {
		line := fmt.Sprintf("%s @value updated: %s => %s", a.Field, r.count(res.Filter.Fields[a.Field]), r.value.Sprintf("%q", a.Value))
		if n := res.Filter.Created[a.Field]; n > 0 {
			line += fmt.Sprintf(" (%d created)", n)
		}
		fmt.Fprintln(r.w, line)
	}
	r.diff(res)
	fmt.Fprintf(r.w, "Output: %s\n", r.output(res))
}

// Rename prints what happened to one file of a rename batch
func (r *Reporter) Rename(res Result) {
	if res.Err != nil {
		r.Error(res)
		return
	}

	fmt.Fprintf(r.w, "file_name: %s\n", filepath.Base(res.Input))
	if res.Path.Changed {
		fmt.Fprintf(r.w, "  value: %s\n", r.value.Sprint(res.Path.NewValue))
	}
	r.diff(res)
	if res.Removed {
		fmt.Fprintf(r.w, "  %s removed old file: %s\n", r.warn.Sprint("-"), filepath.Base(res.Input))
	}
	fmt.Fprintf(r.w, "  %s created file: %s\n", r.ok.Sprint("+"), filepath.Base(r.output(res)))
}

// Summary prints the totals of a batch
func (r *Reporter) Summary(results []Result) {
	var changed, failed int
	for _, res := range results {
		switch {
		case res.Err != nil:
			failed++
		case res.Changed():
			changed++
		}
	}
	line := fmt.Sprintf("%d files, %d changed", len(results), changed)
	if failed > 0 {
		line += ", " + r.fail.Sprintf("%d failed", failed)
	}
	fmt.Fprintln(r.w, line)
}

func (r *Reporter) count(n int) string {
	if n == 0 {
		return r.warn.Sprint(n)
	}
	return r.ok.Sprint(n)
}

func (r *Reporter) output(res Result) string {
	if res.DryRun {
		return res.Output + " (dry run)"
	}
	return res.Output
}

func (r *Reporter) diff(res Result) {
	if res.Diff == "" {
		return
	}
	for _, line := range strings.Split(strings.TrimSuffix(res.Diff, "\n"), "\n") {
		switch {
		case len(line) > 0 && line[0] == '+':
			fmt.Fprintln(r.w, r.ok.Sprint(line))
		case len(line) > 0 && line[0] == '-':
			fmt.Fprintln(r.w, r.fail.Sprint(line))
		default:
			fmt.Fprintln(r.w, line)
		}
	}
}
