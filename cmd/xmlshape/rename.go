package main

import (
	"github.com/lestrrat-go/xmlshape/batch"
	"github.com/lestrrat-go/xmlshape/rewrite"
)

type renameCmd struct {
	app *app

	Dir    string `long:"dir" value-name:"DIR" default:"files" description:"directory the documents are in"`
	Field  string `long:"field" value-name:"PATH" default:"Drawable.Name" description:"dotted path of the field to rewrite"`
	Marker string `long:"marker" value-name:"MARKER" default:".model" description:"suffix removed from the field and the file name"`
	Suffix string `long:"suffix" value-name:"SUFFIX" default:".ydr.xml" description:"file name suffix the marker must come right before"`
	DryRun bool   `long:"dry-run" description:"show the changes without writing or removing files"`
}

func (c *renameCmd) Execute(_ []string) error {
	if c.Marker == "" {
		return usageErrorf("--marker must not be empty")
	}
	rule := rewrite.NewSuffixRule(c.Field, c.Marker, c.Suffix)
	return runRename(c.app, batch.NewDriver(batch.WithDryRun(c.DryRun)), rule, c.Dir)
}

func runRename(a *app, d *batch.Driver, rule rewrite.PathRule, dir string) error {
	ctx := a.context()

	results, err := d.RunRename(ctx, rule, dir)
	r := a.batchReporter()
	for _, res := range results {
		r.Rename(res)
	}
	if err != nil {
		return err
	}
	r.Summary(results)

	for _, res := range results {
		if res.Err != nil {
			return errDocument
		}
	}
	return nil
}
