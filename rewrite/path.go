package rewrite

import (
	"context"
	"log/slog"
	"strings"

	"github.com/lestrrat-go/xmlshape/internal/trace"
	"github.com/lestrrat-go/xmlshape/node"
)

// TransformFunc computes the new value of a field. Returning false
// leaves the field untouched.
type TransformFunc func(old string) (string, bool)

// StripSuffix returns a transform that removes suffix from values
// ending with it, and rejects everything else
func StripSuffix(suffix string) TransformFunc {
	return func(old string) (string, bool) {
		if suffix == "" || !strings.HasSuffix(old, suffix) {
			return old, false
		}
		return strings.TrimSuffix(old, suffix), true
	}
}

// PathResult tells whether RewriteKnownField changed anything. For a
// Repeated field NewValue is the value of the last item changed.
type PathResult struct {
	Changed  bool
	NewValue string
}

// RewriteKnownField applies transform to the field at the dotted path,
// e.g. "Drawable.Name", starting at the document root. Nothing happens
// when the path does not exist or transform rejects the current value.
//
// The field keeps its shape: a Scalar is updated in place, a record is
// updated through its #text or its value attribute, and a Repeated
// field has each of its items rewritten.
func RewriteKnownField(doc *node.Document, path string, transform TransformFunc) PathResult {
	return rewriteKnownField(doc, path, node.DefaultValueAttribute, transform)
}

func rewriteKnownField(doc *node.Document, path, valueAttr string, transform TransformFunc) PathResult {
	var res PathResult
	if doc == nil || transform == nil {
		return res
	}

	n, ok := node.Lookup(doc.Root(), path)
	if !ok {
		return res
	}

	apply := func(item node.Node) {
		switch v := item.(type) {
		case *node.Scalar:
			if nv, ok := transform(v.Value()); ok {
				v.SetValue(nv)
				res = PathResult{Changed: true, NewValue: nv}
			}
		case *node.Record:
			if text, ok := v.Text(); ok {
				if nv, ok := transform(text); ok {
					v.Set(node.TextKey, node.NewScalar(nv))
					res = PathResult{Changed: true, NewValue: nv}
				}
				return
			}
			if cur, ok := v.Attribute(valueAttr); ok {
				if nv, ok := transform(cur); ok {
					v.SetAttribute(valueAttr, nv)
					res = PathResult{Changed: true, NewValue: nv}
				}
			}
		}
	}

	if list, ok := n.(*node.Repeated); ok {
		for _, item := range list.Items() {
			apply(item)
		}
		return res
	}
	apply(n)
	return res
}

// OutputName derives the name of the file a document is written to.
// marker is removed when it comes right before the anchor suffix:
//
//	OutputName("house01.model.ydr.xml", ".model", ".ydr.xml") // "house01.ydr.xml"
//
// Any other name is returned unchanged. Only the name is looked at,
// never the document.
func OutputName(name, marker, anchor string) string {
	if marker == "" || !strings.HasSuffix(name, anchor) {
		return name
	}
	stem := strings.TrimSuffix(name, anchor)
	if !strings.HasSuffix(stem, marker) {
		return name
	}
	return strings.TrimSuffix(stem, marker) + anchor
}

// PathRule bundles a field rewrite with the file naming convention
// that goes along with it
type PathRule struct {
	// Path is the dotted path of the field, e.g. "Drawable.Name"
	Path string
	// Transform is applied to the value found at Path
	Transform TransformFunc
	// Marker is removed from file names right before Anchor
	Marker string
	Anchor string
	// ValueAttribute is used for value-bearing records. Defaults to
	// node.DefaultValueAttribute.
	ValueAttribute string
}

// NewSuffixRule creates the rule that strips marker both from the end
// of the field value and from the file name, e.g. ".model"
func NewSuffixRule(path, marker, anchor string) PathRule {
	return PathRule{
		Path:      path,
		Transform: StripSuffix(marker),
		Marker:    marker,
		Anchor:    anchor,
	}
}

// Apply rewrites the field of doc and computes the output name for
// the document read from fileName. It never touches the filesystem.
func (r PathRule) Apply(ctx context.Context, doc *node.Document, fileName string) (PathResult, string) {
	valueAttr := r.ValueAttribute
	if valueAttr == "" {
		valueAttr = node.DefaultValueAttribute
	}

	res := rewriteKnownField(doc, r.Path, valueAttr, r.Transform)
	out := OutputName(fileName, r.Marker, r.Anchor)

	trace.Event(ctx, "applied path rule",
		slog.String("path", r.Path),
		slog.Bool("changed", res.Changed),
		slog.String("input", fileName),
		slog.String("output", out),
	)
	return res, out
}
