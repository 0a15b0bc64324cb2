package node

// Equal reports whether two trees are structurally identical: same
// shapes, same field names in the same document order, same scalar
// values.
func Equal(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}

	switch av := a.(type) {
	case *Scalar:
		return av.Value() == b.(*Scalar).Value()
	case *Repeated:
		bv := b.(*Repeated)
		if av.Len() != bv.Len() {
			return false
		}
		for i, item := range av.Items() {
			if !Equal(item, bv.At(i)) {
				return false
			}
		}
		return true
	case *Record:
		return equalRecords(av, b.(*Record))
	}
	return false
}

func equalRecords(a, b *Record) bool {
	if a.Len() != b.Len() || len(a.slots) != len(b.slots) {
		return false
	}

	names := b.Names()
	i := 0
	for name, an := range a.Fields() {
		if names[i] != name {
			return false
		}
		i++
		bn, _ := b.Get(name)
		if !Equal(an, bn) {
			return false
		}
	}

	for i, s := range a.slots {
		if b.slots[i] != s {
			return false
		}
	}
	return true
}

// EqualDocuments compares the declarations and the trees of two
// documents
func EqualDocuments(a, b *Document) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Version() != b.Version() || a.Encoding() != b.Encoding() || a.Standalone() != b.Standalone() {
		return false
	}
	return Equal(a.Root(), b.Root())
}
