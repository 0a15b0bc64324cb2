package node

import (
	"iter"

	"github.com/lestrrat-go/xmlshape/internal/orderedmap"
)

// Record is an ordered mapping from field name to Node, the analogue
// of a markup element. Attribute fields and element fields share the
// mapping and are told apart by the AttributePrefix on their keys.
//
// Besides the field map, a Record remembers the document order of
// every occurrence, so that `<a/><b/><a/>` comes back out in that
// order even though both `a` elements live in one Repeated.
type Record struct {
	fields *orderedmap.Map[string, Node]
	slots  []slot
}

// slot is one occurrence of a field in document order. index is the
// position inside a Repeated, 0 otherwise.
type slot struct {
	name  string
	index int
}

var _ Node = (*Record)(nil)

func NewRecord() *Record {
	return &Record{
		fields: orderedmap.New[string, Node](),
	}
}

// NewValueRecord creates a value-bearing record that holds only the
// given attribute, e.g. `<flags value="545" />`
func NewValueRecord(attr, value string) *Record {
	r := NewRecord()
	r.Set(AttributeKey(attr), NewScalar(value))
	return r
}

func (*Record) Kind() Kind {
	return RecordKind
}

func (*Record) isNode() {}

func (r *Record) Len() int {
	return r.fields.Len()
}

func (r *Record) Get(name string) (Node, bool) {
	return r.fields.Get(name)
}

func (r *Record) Has(name string) bool {
	_, ok := r.fields.Get(name)
	return ok
}

// Names returns the field names in first-occurrence order
func (r *Record) Names() []string {
	return r.fields.Keys()
}

// Set replaces the value of the field in place, or appends the field
// when it does not exist. Setting a nil node is a no-op.
func (r *Record) Set(name string, n Node) {
	if n == nil {
		return
	}
	r.fields.Set(name, n)
	r.resync(name)
}

// Append adds one more occurrence of the field, the way a parser sees
// repeated sibling elements. The first occurrence is stored as is; the
// second turns the field into a Repeated.
func (r *Record) Append(name string, n Node) {
	if n == nil {
		return
	}

	cur, ok := r.fields.Get(name)
	if !ok {
		r.Set(name, n)
		return
	}

	list, ok := cur.(*Repeated)
	if !ok {
		list = NewRepeated(cur)
	}
	list.Append(n)
	r.fields.Set(name, list)
	r.resync(name)
}

// Delete removes the field and all of its occurrences
func (r *Record) Delete(name string) bool {
	if !r.fields.Delete(name) {
		return false
	}
	r.resync(name)
	return true
}

// Fields iterates over the fields in first-occurrence order. Repeated
// fields are yielded once, as the *Repeated.
func (r *Record) Fields() iter.Seq2[string, Node] {
	return r.fields.Range()
}

// Slots iterates over every occurrence in document order. Items of a
// Repeated are yielded individually.
func (r *Record) Slots() iter.Seq2[string, Node] {
	return func(yield func(string, Node) bool) {
		for _, s := range r.slots {
			n, ok := r.fields.Get(s.name)
			if !ok {
				continue
			}
			if list, ok := n.(*Repeated); ok {
				n = list.At(s.index)
				if n == nil {
					continue
				}
			}
			if !yield(s.name, n) {
				return
			}
		}
	}
}

// Attribute returns the value of the attribute with the given name
// (without prefix). Only scalar attribute values are reported.
func (r *Record) Attribute(name string) (string, bool) {
	n, ok := r.fields.Get(AttributeKey(name))
	if !ok {
		return "", false
	}
	s, ok := n.(*Scalar)
	if !ok {
		return "", false
	}
	return s.Value(), true
}

// SetAttribute sets the attribute with the given name (without prefix),
// keeping its position when it already exists.
func (r *Record) SetAttribute(name, value string) {
	key := AttributeKey(name)
	if n, ok := r.fields.Get(key); ok {
		if s, ok := n.(*Scalar); ok {
			s.SetValue(value)
			return
		}
	}
	r.Set(key, NewScalar(value))
}

// Text returns the #text content of the record, if any
func (r *Record) Text() (string, bool) {
	n, ok := r.fields.Get(TextKey)
	if !ok {
		return "", false
	}
	s, ok := n.(*Scalar)
	if !ok {
		return "", false
	}
	return s.Value(), true
}

// resync makes the slot list agree with the number of occurrences the
// field currently has. Existing slots keep their position; missing
// ones are appended at the end, extra ones are dropped.
func (r *Record) resync(name string) {
	var want int
	if n, ok := r.fields.Get(name); ok {
		want = Count(n)
	}

	kept := r.slots[:0]
	var have int
	for _, s := range r.slots {
		if s.name != name {
			kept = append(kept, s)
			continue
		}
		if have >= want {
			continue
		}
		s.index = have
		kept = append(kept, s)
		have++
	}
	for ; have < want; have++ {
		kept = append(kept, slot{name: name, index: have})
	}
	r.slots = kept
}
