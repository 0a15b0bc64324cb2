package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/lestrrat-go/xmlshape"
	"github.com/lestrrat-go/xmlshape/batch"
	"github.com/lestrrat-go/xmlshape/internal/trace"
)

// Exit codes
const (
	exitOK = iota
	exitUsage
	exitNotFound
	exitDocument
)

type globalOpts struct {
	Version bool `long:"version" description:"display the version and exit"`
	Verbose bool `short:"v" long:"verbose" description:"log debug messages to stderr"`
}

// app is shared by all subcommands
type app struct {
	opts   globalOpts
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func (a *app) context() context.Context {
	level := slog.LevelInfo
	if a.opts.Verbose {
		level = slog.LevelDebug
	}
	l := slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))
	return trace.WithLogger(context.Background(), l)
}

func (a *app) batchReporter() *batch.Reporter {
	return batch.NewReporter(a.stdout)
}

// usageError is raised for invalid invocations, before anything is
// read or written
type usageError struct {
	msg string
}

func (e usageError) Error() string {
	return e.msg
}

func usageErrorf(format string, args ...any) error {
	return usageError{msg: fmt.Sprintf(format, args...)}
}

// errDocument means at least one document could not be processed
var errDocument = errors.New("one or more documents failed")

func main() {
	os.Exit(_main(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func newParser(a *app) *flags.Parser {
	p := flags.NewParser(&a.opts, flags.HelpFlag|flags.PassDoubleDash)
	p.Name = "xmlshape"
	p.SubcommandsOptional = true

	_, _ = p.AddCommand("filter",
		"rewrite fields of matching objects",
		"Find every object whose filter field has the given value and set the given fields on it, keeping the shape each field already has.",
		&filterCmd{app: a})
	_, _ = p.AddCommand("rename",
		"strip a marker from a known field and the file names",
		"Strip the marker from the end of the field at --field in every .xml file of --dir, and write the file under a name without the marker.",
		&renameCmd{app: a})
	_, _ = p.AddCommand("run",
		"run the jobs of a YAML file",
		"Run the filter and rename jobs described in a YAML job file.",
		&runCmd{app: a})
	_, _ = p.AddCommand("lint",
		"parse and dump documents",
		"Parse the documents and write them back to stdout. Reads stdin when no file is given.",
		&lintCmd{app: a})
	return p
}

func _main(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}
	p := newParser(a)

	if _, err := p.ParseArgs(args); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			fmt.Fprintln(stdout, ferr.Message)
			return exitOK
		}
		fmt.Fprintf(stderr, "xmlshape: %s\n", err)
		return exitCode(err)
	}

	if a.opts.Version {
		fmt.Fprintf(stdout, "xmlshape version %s\n", xmlshape.Version)
		return exitOK
	}

	if p.Active == nil {
		p.WriteHelp(stderr)
		return exitUsage
	}
	return exitOK
}

func exitCode(err error) int {
	var uerr usageError
	var ferr *flags.Error
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &uerr), errors.As(err, &ferr):
		return exitUsage
	case errors.Is(err, batch.ErrInputNotFound):
		return exitNotFound
	}
	return exitDocument
}
