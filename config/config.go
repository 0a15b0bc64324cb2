// Package config loads job files, which describe several rewrites to
// run in one go:
//
//	dir: files
//	filters:
//	  - file: map.ymap.xml
//	    value: propA
//	    set:
//	      flags: 545
//	      lodDist: 300
//	rename:
//	  field: Drawable.Name
//	  marker: .model
//	  suffix: .ydr.xml
//
// Assignments under `set` are applied in the order they are written.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"
	"github.com/lestrrat-go/xmlshape/rewrite"
)

// Defaults, matching the command line
const (
	DefaultDir         = "files"
	DefaultFilterField = "archetypeName"
	DefaultRenameField = "Drawable.Name"
	DefaultMarker      = ".model"
	DefaultSuffix      = ".ydr.xml"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Dir     string      `yaml:"dir"`
	DryRun  bool        `yaml:"dryRun"`
	Filters []FilterJob `yaml:"filters"`
	Rename  *RenameJob  `yaml:"rename"`
}

// FilterJob is one predicate rewrite over a single file
type FilterJob struct {
	File    string   `yaml:"file"`
	Out     string   `yaml:"out"`
	Field   string   `yaml:"field"`
	Value   string   `yaml:"value"`
	Missing string   `yaml:"missing"`
	Set     Settings `yaml:"set"`
}

// Settings is the `set` mapping of a filter job. Values keep the text
// they have in the file: `flags: 0545` sets "0545", not 357.
type Settings []rewrite.Assignment

// UnmarshalYAML implements yaml.BytesUnmarshaler. The mapping is parsed
// again so that every scalar can be read from its token.
func (s *Settings) UnmarshalYAML(b []byte) error {
	f, err := parser.ParseBytes(b, 0)
	if err != nil {
		return err
	}
	*s = nil
	if len(f.Docs) == 0 || f.Docs[0].Body == nil {
		return nil
	}

	var values []*ast.MappingValueNode
	switch n := f.Docs[0].Body.(type) {
	case *ast.MappingNode:
		values = n.Values
	case *ast.MappingValueNode:
		values = []*ast.MappingValueNode{n}
	case *ast.NullNode:
		return nil
	default:
		return fmt.Errorf("set must be a mapping, got %s", n.Type())
	}

	list := make(Settings, 0, len(values))
	for _, mv := range values {
		field, err := scalarText(mv.Key)
		if err != nil {
			return fmt.Errorf("field name: %w", err)
		}
		value, err := scalarText(mv.Value)
		if err != nil {
			return fmt.Errorf("value of %q: %w", field, err)
		}
		list = append(list, rewrite.Assignment{Field: field, Value: value})
	}
	*s = list
	return nil
}

// scalarText returns a scalar the way it is written in the source,
// minus quotes
func scalarText(n ast.Node) (string, error) {
	switch v := n.(type) {
	case *ast.StringNode:
		return v.Value, nil
	case *ast.LiteralNode:
		return v.Value.Value, nil
	case *ast.TagNode:
		return scalarText(v.Value)
	case *ast.NullNode:
		return "", nil
	case *ast.IntegerNode, *ast.FloatNode, *ast.BoolNode, *ast.InfinityNode, *ast.NanNode:
		return v.GetToken().Value, nil
	case nil:
		return "", errors.New("missing scalar")
	}
	return "", fmt.Errorf("must be a scalar, got %s", n.Type())
}

// RenameJob is a path rule run over every file of a directory
type RenameJob struct {
	Dir    string `yaml:"dir"`
	Field  string `yaml:"field"`
	Marker string `yaml:"marker"`
	Suffix string `yaml:"suffix"`
}

// Load reads and validates the job file at path
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	c, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a job file, fills in defaults and validates the result
func Parse(b []byte) (*Config, error) {
	var c Config
	if err := yaml.UnmarshalWithOptions(b, &c, yaml.DisallowUnknownField()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Dir == "" {
		c.Dir = DefaultDir
	}
	for i := range c.Filters {
		if c.Filters[i].Field == "" {
			c.Filters[i].Field = DefaultFilterField
		}
	}
	if r := c.Rename; r != nil {
		if r.Dir == "" {
			r.Dir = c.Dir
		}
		if r.Field == "" {
			r.Field = DefaultRenameField
		}
		if r.Marker == "" {
			r.Marker = DefaultMarker
		}
		if r.Suffix == "" {
			r.Suffix = DefaultSuffix
		}
	}
}

// Validate checks that every job can run. It is called by Parse and
// Load.
func (c *Config) Validate() error {
	if len(c.Filters) == 0 && c.Rename == nil {
		return fmt.Errorf("%w: no jobs", ErrInvalidConfig)
	}
	for i, job := range c.Filters {
		if err := job.validate(); err != nil {
			return fmt.Errorf("%w: filters[%d]: %w", ErrInvalidConfig, i, err)
		}
	}
	return nil
}

func (j FilterJob) validate() error {
	if j.File == "" {
		return errors.New("file is required")
	}
	if j.Value == "" {
		return errors.New("value is required")
	}
	if _, err := rewrite.ParseMissingPolicy(j.Missing); err != nil {
		return err
	}
	assignments, err := j.Assignments()
	if err != nil {
		return err
	}
	// NewFilter has the remaining checks
	_, err = rewrite.NewFilter(j.Field, j.Value, assignments)
	return err
}

// Assignments returns the entries of `set` in document order
func (j FilterJob) Assignments() ([]rewrite.Assignment, error) {
	if len(j.Set) == 0 {
		return nil, nil
	}
	return append([]rewrite.Assignment(nil), j.Set...), nil
}

// Filter builds the filter described by the job
func (j FilterJob) Filter() (*rewrite.Filter, error) {
	assignments, err := j.Assignments()
	if err != nil {
		return nil, err
	}
	policy, err := rewrite.ParseMissingPolicy(j.Missing)
	if err != nil {
		return nil, err
	}
	return rewrite.NewFilter(j.Field, j.Value, assignments, rewrite.WithMissingField(policy))
}

// Paths resolves the input and output file of the job under dir
func (j FilterJob) Paths(dir string) (in, out string) {
	in = filepath.Join(dir, j.File)
	out = in
	if j.Out != "" {
		out = filepath.Join(dir, j.Out)
	}
	return in, out
}

func (j RenameJob) Rule() rewrite.PathRule {
	return rewrite.NewSuffixRule(j.Field, j.Marker, j.Suffix)
}
