package node

import "strings"

// ValueOf returns the logical string value of a field: the scalar
// itself, or for a record its #text content, falling back to the
// value attribute. A Repeated has no single value.
func ValueOf(n Node, valueAttr string) (string, bool) {
	switch v := n.(type) {
	case *Scalar:
		return v.Value(), true
	case *Record:
		if s, ok := v.Text(); ok {
			return s, true
		}
		return v.Attribute(valueAttr)
	}
	return "", false
}

// IsValueRecord reports whether the record carries the value attribute
func IsValueRecord(n Node, valueAttr string) bool {
	r, ok := n.(*Record)
	if !ok {
		return false
	}
	return r.Has(AttributeKey(valueAttr))
}

// Lookup follows a dotted path of field names starting at root, e.g.
// "Drawable.Name". Every intermediate step must be a single Record;
// the final node may have any shape.
func Lookup(root *Record, path string) (Node, bool) {
	if root == nil || path == "" {
		return nil, false
	}

	var cur Node = root
	for _, name := range strings.Split(path, ".") {
		rec, ok := cur.(*Record)
		if !ok {
			return nil, false
		}
		cur, ok = rec.Get(name)
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// LookupParent is like Lookup, but returns the record that owns the
// final field along with the field name.
func LookupParent(root *Record, path string) (*Record, string, bool) {
	i := strings.LastIndexByte(path, '.')
	if i < 0 {
		if root == nil || !root.Has(path) {
			return nil, "", false
		}
		return root, path, true
	}

	n, ok := Lookup(root, path[:i])
	if !ok {
		return nil, "", false
	}
	parent, ok := n.(*Record)
	if !ok {
		return nil, "", false
	}
	name := path[i+1:]
	if !parent.Has(name) {
		return nil, "", false
	}
	return parent, name, true
}
