package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/lestrrat-go/xmlshape"
	"github.com/lestrrat-go/xmlshape/batch"
	"github.com/lestrrat-go/xmlshape/s11n"
	"github.com/mattn/go-isatty"
)

type lintCmd struct {
	app *app

	Compact bool   `long:"compact" description:"write each document on a single line"`
	Indent  string `long:"indent" value-name:"STRING" description:"indentation (default: four spaces)"`
	Quiet   bool   `short:"q" long:"quiet" description:"only report errors, do not dump the documents"`
}

func isTty(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (c *lintCmd) Execute(args []string) error {
	a := c.app
	ctx := a.context()

	type input struct {
		name string
		data []byte
	}

	var inputs []input
	switch {
	case len(args) > 0: // filename present
		for _, f := range args {
			buf, err := os.ReadFile(f)
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					return fmt.Errorf("%w: %s", batch.ErrInputNotFound, f)
				}
				return err
			}
			inputs = append(inputs, input{name: f, data: buf})
		}
	case !isTty(a.stdin):
		buf, err := io.ReadAll(a.stdin)
		if err != nil {
			return err
		}
		inputs = append(inputs, input{name: "-", data: buf})
	default:
		return usageErrorf("no input: give file names or pipe a document to stdin")
	}

	p := xmlshape.NewParser()
	d := s11n.Dumper{Indent: c.Indent, Compact: c.Compact}

	var failed bool
	for _, in := range inputs {
		doc, err := p.Parse(ctx, in.data)
		if err != nil {
			fmt.Fprintf(a.stderr, "%s: %s\n", in.name, err)
			failed = true
			continue
		}
		if c.Quiet {
			continue
		}
		if err := d.DumpDoc(a.stdout, doc); err != nil {
			fmt.Fprintf(a.stderr, "%s: %s\n", in.name, err)
			failed = true
		}
	}

	if failed {
		return errDocument
	}
	return nil
}
