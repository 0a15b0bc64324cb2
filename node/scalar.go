package node

// Scalar is an atomic value: element text or an attribute value.
// Values are always kept as strings; interpreting them is left to
// the caller.
type Scalar struct {
	value string
}

func NewScalar(value string) *Scalar {
	return &Scalar{value: value}
}

func (*Scalar) Kind() Kind {
	return ScalarKind
}

func (*Scalar) isNode() {}

func (s *Scalar) Value() string {
	if s == nil {
		return ""
	}
	return s.value
}

func (s *Scalar) SetValue(v string) {
	s.value = v
}
