// Package rewrite implements the two mutation disciplines applied to a
// parsed document: rewriting a field at a known path, and rewriting
// fields of every record that matches a predicate.
package rewrite

import (
	"errors"
	"fmt"

	"github.com/lestrrat-go/xmlshape/node"
)

var ErrInvalidPolicy = errors.New("invalid missing field policy")

// MissingPolicy decides what the setter does with a field that the
// record does not have at all
type MissingPolicy int

const (
	// MissingCreate adds the field as a value-bearing record
	MissingCreate MissingPolicy = iota
	// MissingSkip leaves the record alone
	MissingSkip
)

func (p MissingPolicy) String() string {
	switch p {
	case MissingCreate:
		return "create"
	case MissingSkip:
		return "skip"
	}
	return "invalid"
}

// ParseMissingPolicy parses "create" or "skip". The empty string is
// MissingCreate.
func ParseMissingPolicy(s string) (MissingPolicy, error) {
	switch s {
	case "", "create":
		return MissingCreate, nil
	case "skip":
		return MissingSkip, nil
	}
	return MissingCreate, fmt.Errorf("%w: %q", ErrInvalidPolicy, s)
}

// SetResult describes what a single Set call did
type SetResult struct {
	// Mutations is the number of occurrences written. A Repeated
	// field counts once per item.
	Mutations int
	// Created is true if the field did not exist before
	Created bool
}

// Setter writes field values using the shape the field already has.
// A Setter is immutable and may be shared.
type Setter struct {
	valueAttr string
	missing   MissingPolicy
}

type SetterOption func(*Setter)

// WithValueAttribute changes the attribute that carries the payload of
// a value-bearing record. The default is node.DefaultValueAttribute.
func WithValueAttribute(name string) SetterOption {
	return func(s *Setter) {
		if name != "" {
			s.valueAttr = name
		}
	}
}

func WithMissingField(p MissingPolicy) SetterOption {
	return func(s *Setter) {
		s.missing = p
	}
}

func NewSetter(options ...SetterOption) *Setter {
	s := &Setter{
		valueAttr: node.DefaultValueAttribute,
		missing:   MissingCreate,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

func (s *Setter) ValueAttribute() string {
	return s.valueAttr
}

func (s *Setter) MissingPolicy() MissingPolicy {
	return s.missing
}

// Set writes value into the field of rec. The checks happen in this
// order:
//
//  1. field absent: a value-bearing record is appended (unless the
//     policy is MissingSkip)
//  2. Repeated: every item is written; record items get their value
//     attribute set, scalar items are replaced by value-bearing records
//  3. Record: its value attribute is set in place
//  4. anything else: replaced by a value-bearing record
//
// A record without the value attribute gets one added, and any #text
// it holds is kept. `<lodDist unit="m">100</lodDist>` set to 300
// becomes `<lodDist unit="m" value="300">100</lodDist>`, for which
// node.ValueOf still reports "100".
//
// Set never fails. A nil record is left alone.
func (s *Setter) Set(rec *node.Record, field, value string) SetResult {
	if rec == nil {
		return SetResult{}
	}

	cur, ok := rec.Get(field)
	if !ok {
		if s.missing == MissingSkip {
			return SetResult{}
		}
		rec.Set(field, node.NewValueRecord(s.valueAttr, value))
		return SetResult{Mutations: 1, Created: true}
	}

	switch v := cur.(type) {
	case *node.Repeated:
		var n int
		for i, item := range v.Items() {
			if r, ok := item.(*node.Record); ok {
				r.SetAttribute(s.valueAttr, value)
			} else {
				// Replace only fails for out of range indices or list
				// values, neither of which can happen here
				_ = v.Replace(i, node.NewValueRecord(s.valueAttr, value))
			}
			n++
		}
		return SetResult{Mutations: n}
	case *node.Record:
		v.SetAttribute(s.valueAttr, value)
		return SetResult{Mutations: 1}
	default:
		rec.Set(field, node.NewValueRecord(s.valueAttr, value))
		return SetResult{Mutations: 1}
	}
}
