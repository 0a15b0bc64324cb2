package node

import "iter"

// Repeated holds the occurrences of a field whose tag appears two or
// more times under the same parent. Items are either *Scalar or *Record.
type Repeated struct {
	items []Node
}

var _ Node = (*Repeated)(nil)

// NewRepeated creates a list from the given items. Nested lists are
// flattened, since markup has no way to express them.
func NewRepeated(items ...Node) *Repeated {
	r := &Repeated{items: make([]Node, 0, len(items))}
	for _, item := range items {
		r.Append(item)
	}
	return r
}

func (*Repeated) Kind() Kind {
	return RepeatedKind
}

func (*Repeated) isNode() {}

func (r *Repeated) Len() int {
	return len(r.items)
}

// At returns the i-th item, or nil if i is out of range
func (r *Repeated) At(i int) Node {
	if i < 0 || i >= len(r.items) {
		return nil
	}
	return r.items[i]
}

func (r *Repeated) Append(n Node) {
	switch v := n.(type) {
	case nil:
		return
	case *Repeated:
		r.items = append(r.items, v.items...)
	default:
		r.items = append(r.items, n)
	}
}

// Replace swaps the i-th item for n. Replacing with a list is not
// allowed.
func (r *Repeated) Replace(i int, n Node) error {
	if n == nil {
		return ErrNilNode
	}
	if n.Kind() == RepeatedKind {
		return ErrInvalidOperation
	}
	if i < 0 || i >= len(r.items) {
		return ErrInvalidOperation
	}
	r.items[i] = n
	return nil
}

func (r *Repeated) Items() iter.Seq2[int, Node] {
	return func(yield func(int, Node) bool) {
		for i, item := range r.items {
			if !yield(i, item) {
				return
			}
		}
	}
}
