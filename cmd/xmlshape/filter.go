package main

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/lestrrat-go/xmlshape/batch"
	"github.com/lestrrat-go/xmlshape/config"
	"github.com/lestrrat-go/xmlshape/rewrite"
)

type filterCmd struct {
	app *app

	File        string   `long:"file" value-name:"FILE" description:"input document, relative to --dir"`
	Archetype   string   `long:"archetype" value-name:"VALUE" description:"only objects whose filter field equals this value are updated"`
	FilterField string   `long:"filter-field" value-name:"NAME" default:"archetypeName" description:"field compared against --archetype"`
	Flags       *string  `long:"flags" value-name:"VALUE" description:"new value for flags"`
	LodDist     *string  `long:"lodDist" value-name:"VALUE" description:"new value for lodDist"`
	Set         []string `long:"set" value-name:"NAME=VALUE" description:"new value for any other field (repeatable)"`
	Out         string   `long:"out" value-name:"FILE" description:"output document, relative to --dir (default: overwrite the input)"`
	Dir         string   `long:"dir" value-name:"DIR" default:"files" description:"directory the documents are in"`
	DryRun      bool     `long:"dry-run" description:"show the changes without writing them"`
	Missing     string   `long:"missing" value-name:"POLICY" default:"create" choice:"create" choice:"skip" description:"what to do with fields a matched object does not have"`
}

func (c *filterCmd) assignments() ([]rewrite.Assignment, error) {
	var list []rewrite.Assignment
	// nil when the flag was not given; an empty value is still a value
	if c.Flags != nil {
		list = append(list, rewrite.Assignment{Field: "flags", Value: *c.Flags})
	}
	if c.LodDist != nil {
		list = append(list, rewrite.Assignment{Field: "lodDist", Value: *c.LodDist})
	}
	for _, s := range c.Set {
		name, value, ok := strings.Cut(s, "=")
		if !ok || name == "" {
			return nil, usageErrorf("--set expects NAME=VALUE, got %q", s)
		}
		list = append(list, rewrite.Assignment{Field: name, Value: value})
	}
	return list, nil
}

func (c *filterCmd) job() (config.FilterJob, []rewrite.Assignment, error) {
	if c.File == "" {
		return config.FilterJob{}, nil, usageErrorf("--file is required")
	}
	if c.Archetype == "" {
		return config.FilterJob{}, nil, usageErrorf("--archetype is required")
	}

	assignments, err := c.assignments()
	if err != nil {
		return config.FilterJob{}, nil, err
	}
	if len(assignments) == 0 {
		return config.FilterJob{}, nil, usageErrorf("nothing to set: use --flags, --lodDist or --set")
	}

	job := config.FilterJob{
		File:    c.File,
		Out:     c.Out,
		Field:   c.FilterField,
		Value:   c.Archetype,
		Missing: c.Missing,
	}
	return job, assignments, nil
}

func (c *filterCmd) Execute(_ []string) error {
	job, assignments, err := c.job()
	if err != nil {
		return err
	}

	policy, err := rewrite.ParseMissingPolicy(job.Missing)
	if err != nil {
		return usageErrorf("%s", err)
	}
	f, err := rewrite.NewFilter(job.Field, job.Value, assignments, rewrite.WithMissingField(policy))
	if err != nil {
		return usageErrorf("%s", err)
	}

	in, out := job.Paths(c.Dir)
	return runFilter(c.app, batch.NewDriver(batch.WithDryRun(c.DryRun)), f, in, out)
}

func runFilter(a *app, d *batch.Driver, f *rewrite.Filter, in, out string) error {
	ctx := a.context()
	in, _ = filepath.Abs(in)
	out, _ = filepath.Abs(out)

	res, err := d.RunFilter(ctx, f, in, out)
	if errors.Is(err, batch.ErrInputNotFound) {
		return err
	}
	a.batchReporter().Filter(f, res)
	if err != nil {
		return errDocument
	}
	return nil
}
