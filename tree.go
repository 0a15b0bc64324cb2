package xmlshape

import (
	"bytes"
	"context"
	"fmt"

	"github.com/lestrrat-go/pdebug"
	"github.com/lestrrat-go/xmlshape/internal/stack"
	"github.com/lestrrat-go/xmlshape/node"
	"github.com/lestrrat-go/xmlshape/sax"
)

// TreeBuilder is a sax.Handler that assembles the document tree.
//
// An element without attributes or children becomes a Scalar holding
// its text (the empty string for `<a/>`). Any other element becomes a
// Record; its text ends up under node.TextKey, split into several
// occurrences when it is interleaved with child elements.
type TreeBuilder struct {
	doc    *node.Document
	frames stack.Stack[*frame]
}

type frame struct {
	name string
	rec  *node.Record
	text bytes.Buffer
}

var _ sax.Handler = (*TreeBuilder)(nil)

func NewTreeBuilder() *TreeBuilder {
	return &TreeBuilder{}
}

// Document returns the tree built so far. It is complete once
// EndDocument has been received.
func (t *TreeBuilder) Document() *node.Document {
	return t.doc
}

func (t *TreeBuilder) StartDocument(_ context.Context, decl sax.Declaration) error {
	if pdebug.Enabled {
		pdebug.Printf("tree.StartDocument (present=%t)", decl.Present)
	}

	doc := node.NewDocument()
	switch {
	case !decl.Present:
		doc.SetStandalone(node.StandaloneNoXMLDecl)
	case decl.Standalone == "yes":
		doc.SetStandalone(node.StandaloneExplicitYes)
	case decl.Standalone == "no":
		doc.SetStandalone(node.StandaloneExplicitNo)
	}
	if decl.Version != "" {
		doc.SetVersion(decl.Version)
	}
	if decl.Encoding != "" {
		doc.SetEncoding(decl.Encoding)
	}

	t.doc = doc
	t.frames.Push(&frame{rec: doc.Root()})
	return nil
}

func (t *TreeBuilder) EndDocument(_ context.Context) error {
	if pdebug.Enabled {
		pdebug.Printf("tree.EndDocument")
	}
	t.frames.Pop()
	return nil
}

func (t *TreeBuilder) StartElement(_ context.Context, name string, attrs []sax.Attribute) error {
	if pdebug.Enabled {
		pdebug.Printf("tree.StartElement '%s' (%d attributes)", name, len(attrs))
	}

	parent, ok := t.frames.Top()
	if !ok {
		return fmt.Errorf("%w: element '%s' outside of document", node.ErrInvalidOperation, name)
	}
	parent.flushText()

	rec := node.NewRecord()
	for _, attr := range attrs {
		key := node.AttributeKey(attr.Name)
		if rec.Has(key) {
			return fmt.Errorf("%w: '%s' on element '%s'", ErrDuplicateAttribute, attr.Name, name)
		}
		rec.Set(key, node.NewScalar(attr.Value))
	}

	t.frames.Push(&frame{name: name, rec: rec})
	return nil
}

func (t *TreeBuilder) EndElement(_ context.Context, name string) error {
	if pdebug.Enabled {
		pdebug.Printf("tree.EndElement '%s'", name)
	}

	if t.frames.Len() < 2 {
		return fmt.Errorf("%w: '%s'", ErrUnexpectedEndTag, name)
	}
	cur, _ := t.frames.Top()
	t.frames.Pop()

	var n node.Node
	if cur.rec.Len() == 0 {
		n = node.NewScalar(string(bytes.TrimSpace(cur.text.Bytes())))
	} else {
		cur.flushText()
		n = cur.rec
	}

	parent, _ := t.frames.Top()
	parent.rec.Append(cur.name, n)
	return nil
}

func (t *TreeBuilder) Characters(_ context.Context, ch []byte) error {
	f, ok := t.frames.Top()
	if !ok {
		return nil
	}
	f.text.Write(ch)
	return nil
}

func (t *TreeBuilder) Comment(_ context.Context, value []byte) error {
	if pdebug.Enabled {
		pdebug.Printf("tree.Comment '%s'", value)
	}

	f, ok := t.frames.Top()
	if !ok {
		return nil
	}
	f.flushText()
	f.rec.Append(node.CommentKey, node.NewScalar(string(value)))
	return nil
}

// ProcessingInstruction drops the instruction. The tree has no place
// for them.
func (t *TreeBuilder) ProcessingInstruction(_ context.Context, target, _ string) error {
	if pdebug.Enabled {
		pdebug.Printf("tree.ProcessingInstruction '%s' (dropped)", target)
	}
	return nil
}

// flushText moves pending text into a #text occurrence
func (f *frame) flushText() {
	if f.text.Len() == 0 {
		return
	}
	s := bytes.TrimSpace(f.text.Bytes())
	if len(s) > 0 {
		f.rec.Append(node.TextKey, node.NewScalar(string(s)))
	}
	f.text.Reset()
}
