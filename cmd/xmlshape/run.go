package main

import (
	"errors"

	"github.com/lestrrat-go/xmlshape/batch"
	"github.com/lestrrat-go/xmlshape/config"
)

type runCmd struct {
	app *app

	DryRun bool `long:"dry-run" description:"show the changes without writing them, whatever the job file says"`

	Args struct {
		Config string `positional-arg-name:"JOBFILE" description:"YAML job file"`
	} `positional-args:"yes" required:"yes"`
}

// Execute runs every filter job, then the rename job. A failed
// document does not stop the remaining jobs.
func (c *runCmd) Execute(_ []string) error {
	cfg, err := config.Load(c.Args.Config)
	if err != nil {
		if errors.Is(err, config.ErrInvalidConfig) {
			return usageErrorf("%s", err)
		}
		return err
	}

	d := batch.NewDriver(batch.WithDryRun(c.DryRun || cfg.DryRun))

	var failed bool
	for _, job := range cfg.Filters {
		// already validated by Load
		f, err := job.Filter()
		if err != nil {
			return usageErrorf("%s", err)
		}
		in, out := job.Paths(cfg.Dir)
		if err := runFilter(c.app, d, f, in, out); err != nil {
			if !errors.Is(err, errDocument) {
				return err
			}
			failed = true
		}
	}

	if cfg.Rename != nil {
		if err := runRename(c.app, d, cfg.Rename.Rule(), cfg.Rename.Dir); err != nil {
			if !errors.Is(err, errDocument) {
				return err
			}
			failed = true
		}
	}

	if failed {
		return errDocument
	}
	return nil
}
