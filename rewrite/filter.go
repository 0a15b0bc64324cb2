package rewrite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"

	"github.com/lestrrat-go/xmlshape/internal/debug"
	"github.com/lestrrat-go/xmlshape/internal/trace"
	"github.com/lestrrat-go/xmlshape/node"
)

var (
	ErrNoFilterField     = errors.New("filter field is required")
	ErrNoAssignments     = errors.New("at least one assignment is required")
	ErrAssignFilterField = errors.New("the filter field cannot be assigned")
	ErrEmptyAssignment   = errors.New("assignment has no field name")
)

// Assignment is one `field = value` pair applied to matching records
type Assignment struct {
	Field string
	Value string
}

func (a Assignment) String() string {
	return a.Field + "=" + a.Value
}

// AssignmentsFromMap turns a map into assignments sorted by field name
func AssignmentsFromMap(m map[string]string) []Assignment {
	list := make([]Assignment, 0, len(m))
	for field, value := range m {
		list = append(list, Assignment{Field: field, Value: value})
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Field < list[j].Field
	})
	return list
}

// Report holds the counters of a single Filter.Apply call.
// Fields counts every occurrence written per field, including the
// ones in Created.
type Report struct {
	Matched int
	Fields  map[string]int
	Created map[string]int
}

func newReport() Report {
	return Report{
		Fields:  make(map[string]int),
		Created: make(map[string]int),
	}
}

// Mutations returns the total number of occurrences written
func (r Report) Mutations() int {
	var n int
	for _, c := range r.Fields {
		n += c
	}
	return n
}

// Filter rewrites fields of every record whose filter field has the
// filter value. The filter field itself is never written.
type Filter struct {
	field       string
	value       string
	assignments []Assignment
	setter      *Setter
}

func NewFilter(field, value string, assignments []Assignment, options ...SetterOption) (*Filter, error) {
	if field == "" {
		return nil, ErrNoFilterField
	}
	if len(assignments) == 0 {
		return nil, ErrNoAssignments
	}
	for _, a := range assignments {
		if a.Field == "" {
			return nil, ErrEmptyAssignment
		}
		if a.Field == field {
			return nil, fmt.Errorf("%w: '%s'", ErrAssignFilterField, field)
		}
	}

	return &Filter{
		field:       field,
		value:       value,
		assignments: slices.Clone(assignments),
		setter:      NewSetter(options...),
	}, nil
}

func (f *Filter) Field() string {
	return f.field
}

func (f *Filter) Value() string {
	return f.value
}

func (f *Filter) Assignments() []Assignment {
	return slices.Clone(f.assignments)
}

// Match reports whether rec is selected by the filter
func (f *Filter) Match(rec *node.Record) bool {
	return node.FieldEquals(f.field, f.value, f.setter.ValueAttribute())(rec)
}

// Apply scans the whole document and applies the assignments to every
// match. Finding nothing is not an error; the report just says so.
func (f *Filter) Apply(ctx context.Context, doc *node.Document) Report {
	report := newReport()
	if doc == nil {
		return report
	}

	report.Matched = node.ForEachMatch(doc.Root(), f.Match, func(rec *node.Record) {
		for _, a := range f.assignments {
			res := f.setter.Set(rec, a.Field, a.Value)
			if res.Mutations == 0 {
				continue
			}
			report.Fields[a.Field] += res.Mutations
			if res.Created {
				report.Created[a.Field]++
			}
		}
	})

	if debug.Enabled {
		debug.Dump(report)
	}
	trace.Event(ctx, "applied filter",
		slog.String("field", f.field),
		slog.String("value", f.value),
		slog.Int("matched", report.Matched),
		slog.Int("mutations", report.Mutations()),
	)
	return report
}

// RewriteByFilter is a shorthand for NewFilter followed by Apply, with
// the default setter options
func RewriteByFilter(ctx context.Context, doc *node.Document, field, value string, assignments map[string]string) (Report, error) {
	f, err := NewFilter(field, value, AssignmentsFromMap(assignments))
	if err != nil {
		return Report{}, err
	}
	return f.Apply(ctx, doc), nil
}
