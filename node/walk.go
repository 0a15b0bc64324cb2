package node

import "errors"

// SkipChildren can be returned from a WalkFunc to skip the children of
// the node being visited.
var SkipChildren = errors.New("skip children")

type WalkFunc func(name string, n Node) error

// Walk visits every node reachable from n in depth-first pre-order.
// Repeated lists are flattened: fn sees every item, never the list
// itself. name is the field name the node was found under ("" for the
// starting node).
func Walk(n Node, fn WalkFunc) error {
	if n == nil {
		return ErrNilNode
	}
	return walk("", n, fn)
}

func walk(name string, n Node, fn WalkFunc) error {
	switch v := n.(type) {
	case *Repeated:
		for _, item := range v.Items() {
			if err := walk(name, item, fn); err != nil {
				return err
			}
		}
		return nil
	case *Record:
		if err := fn(name, v); err != nil {
			if errors.Is(err, SkipChildren) {
				return nil
			}
			return err
		}
		for child, cn := range v.Slots() {
			if err := walk(child, cn, fn); err != nil {
				return err
			}
		}
		return nil
	default:
		if err := fn(name, n); err != nil && !errors.Is(err, SkipChildren) {
			return err
		}
		return nil
	}
}

// ForEachMatch calls visit for every Record under root for which pred
// returns true, in depth-first pre-order. The scan does not stop at
// the first match and descends into matched records as well.
//
// Matches are collected against the tree as it was when the scan
// started, before visit is called for any of them, so a visit can
// never change which records match. Returns the number of matches.
func ForEachMatch(root Node, pred func(*Record) bool, visit func(*Record)) int {
	if root == nil {
		return 0
	}

	var matches []*Record
	_ = walk("", root, func(_ string, n Node) error {
		if rec, ok := n.(*Record); ok && pred(rec) {
			matches = append(matches, rec)
		}
		return nil
	})

	for _, rec := range matches {
		visit(rec)
	}
	return len(matches)
}

// FieldEquals returns a predicate matching records whose field has
// exactly the given value, as reported by ValueOf.
func FieldEquals(field, value, valueAttr string) func(*Record) bool {
	return func(rec *Record) bool {
		n, ok := rec.Get(field)
		if !ok {
			return false
		}
		v, ok := ValueOf(n, valueAttr)
		return ok && v == value
	}
}
