package node

import (
	"errors"
	"strings"
)

// Kind represents the shape of a node in the document tree
type Kind int

const (
	ScalarKind Kind = iota + 1
	RecordKind
	RepeatedKind
)

func (k Kind) String() string {
	switch k {
	case ScalarKind:
		return "scalar"
	case RecordKind:
		return "record"
	case RepeatedKind:
		return "repeated"
	}
	return "invalid"
}

// Field naming convention shared by the parser and the serializer.
//
// An attribute `value="1"` on an element is stored in the owning Record
// under the key "@_value". Text content of an element that also carries
// attributes or children is stored under "#text".
const (
	AttributePrefix = "@_"
	TextKey         = "#text"
	CommentKey      = "#comment"

	// DefaultValueAttribute is the attribute that carries the payload
	// of a value-bearing record such as `<flags value="32" />`
	DefaultValueAttribute = "value"
)

var (
	ErrNilNode          = errors.New("nil node")
	ErrInvalidOperation = errors.New("invalid operation")
)

// Node is one of *Scalar, *Record or *Repeated. The set is closed:
// the unexported marker method keeps other packages from adding a
// fourth shape.
type Node interface {
	Kind() Kind
	isNode()
}

var (
	_ Node = (*Scalar)(nil)
	_ Node = (*Record)(nil)
	_ Node = (*Repeated)(nil)
)

// IsAttribute reports whether the field key belongs to the attribute
// namespace.
func IsAttribute(key string) bool {
	return strings.HasPrefix(key, AttributePrefix)
}

// IsSpecial reports whether the key is one of the reserved content
// keys (#text, #comment).
func IsSpecial(key string) bool {
	return key == TextKey || key == CommentKey
}

// AttributeKey returns the field key for the attribute name
func AttributeKey(name string) string {
	return AttributePrefix + name
}

// AttributeName strips the attribute prefix from a field key
func AttributeName(key string) string {
	return strings.TrimPrefix(key, AttributePrefix)
}

// Count returns the number of occurrences a field value represents:
// the length of a Repeated, 1 for any other node, 0 for nil.
func Count(n Node) int {
	switch v := n.(type) {
	case nil:
		return 0
	case *Repeated:
		if v == nil {
			return 0
		}
		return v.Len()
	default:
		return 1
	}
}
