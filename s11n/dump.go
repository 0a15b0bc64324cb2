package s11n

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/lestrrat-go/xmlshape/encoding"
	"github.com/lestrrat-go/xmlshape/node"
)

// DefaultIndent is used when Dumper.Indent is empty
const DefaultIndent = "    "

var (
	ErrInvalidAttribute = errors.New("attribute value must be a scalar")
	ErrInvalidName      = errors.New("invalid element name")
)

// Dumper writes a document tree back out as markup.
//
// The zero value indents with DefaultIndent. Set Compact to put the
// whole document on a single line.
type Dumper struct {
	Indent  string
	Compact bool
}

// dumpCtx remembers the first write error so that the dump functions
// don't have to check every single write
type dumpCtx struct {
	out    io.Writer
	indent string
	err    error
}

func (ctx *dumpCtx) write(s string) {
	if ctx.err != nil {
		return
	}
	_, ctx.err = io.WriteString(ctx.out, s)
}

func (ctx *dumpCtx) newline(depth int) {
	if ctx.indent == "" {
		return
	}
	ctx.write("\n")
	ctx.write(strings.Repeat(ctx.indent, depth))
}

func (ctx *dumpCtx) text(s string) {
	if ctx.err != nil {
		return
	}
	ctx.err = EscapeText(ctx.out, []byte(s), false)
}

func (ctx *dumpCtx) attr(s string) {
	if ctx.err != nil {
		return
	}
	ctx.err = EscapeAttrValue(ctx.out, []byte(s))
}

func (d *Dumper) newCtx(out io.Writer) *dumpCtx {
	ctx := &dumpCtx{out: out}
	if !d.Compact {
		ctx.indent = d.Indent
		if ctx.indent == "" {
			ctx.indent = DefaultIndent
		}
	}
	return ctx
}

// DumpDoc writes the XML declaration followed by the document tree.
// Documents declaring a charset other than UTF-8 are written in that
// charset.
func (d *Dumper) DumpDoc(out io.Writer, doc *node.Document) error {
	if doc == nil {
		return node.ErrNilNode
	}

	w, err := encoding.NewWriter(doc.Encoding(), out)
	if err != nil {
		return fmt.Errorf("failed to set up writer for '%s': %w", doc.Encoding(), err)
	}

	ctx := d.newCtx(w)
	if doc.HasXMLDecl() {
		dumpXMLDecl(ctx, doc)
		if ctx.indent == "" {
			ctx.write("\n")
		}
	}

	first := !doc.HasXMLDecl()
	for name, n := range doc.Root().Slots() {
		if node.IsAttribute(name) || name == node.TextKey {
			return fmt.Errorf("%w: '%s' at document level", node.ErrInvalidOperation, name)
		}
		if !first {
			ctx.newline(0)
		}
		first = false
		if err := d.dumpField(ctx, name, n, 0); err != nil {
			return err
		}
	}
	if ctx.indent != "" {
		ctx.write("\n")
	}

	if c, ok := w.(io.Closer); ok && w != out {
		if err := c.Close(); err != nil && ctx.err == nil {
			ctx.err = err
		}
	}
	return ctx.err
}

func dumpXMLDecl(ctx *dumpCtx, doc *node.Document) {
	version := doc.Version()
	if version == "" {
		version = "1.0"
	}
	ctx.write(`<?xml version="` + version + `"`)

	if enc := doc.Encoding(); enc != "" {
		ctx.write(` encoding="` + enc + `"`)
	}

	switch doc.Standalone() {
	case node.StandaloneExplicitNo:
		ctx.write(` standalone="no"`)
	case node.StandaloneExplicitYes:
		ctx.write(` standalone="yes"`)
	}
	ctx.write("?>")
}

// DumpNode writes a single field as markup, as if it were the
// document element
func (d *Dumper) DumpNode(out io.Writer, name string, n node.Node) error {
	ctx := d.newCtx(out)
	if err := d.dumpField(ctx, name, n, 0); err != nil {
		return err
	}
	return ctx.err
}

func (d *Dumper) dumpField(ctx *dumpCtx, name string, n node.Node, depth int) error {
	switch name {
	case node.CommentKey:
		v, _ := node.ValueOf(n, "")
		ctx.write("<!--")
		ctx.write(v)
		ctx.write("-->")
		return ctx.err
	case node.TextKey:
		v, _ := node.ValueOf(n, "")
		ctx.text(v)
		return ctx.err
	}

	if name == "" || node.IsAttribute(name) || strings.ContainsAny(name, " \t\r\n<>&\"'/=") {
		return fmt.Errorf("%w: '%s'", ErrInvalidName, name)
	}

	switch v := n.(type) {
	case *node.Scalar:
		ctx.write("<" + name)
		if v.Value() == "" {
			ctx.write("/>")
			return ctx.err
		}
		ctx.write(">")
		ctx.text(v.Value())
		ctx.write("</" + name + ">")
		return ctx.err
	case *node.Repeated:
		// only reachable through DumpNode; records dump their
		// repeated fields one occurrence at a time
		for i, item := range v.Items() {
			if i > 0 {
				ctx.newline(depth)
			}
			if err := d.dumpField(ctx, name, item, depth); err != nil {
				return err
			}
		}
		return ctx.err
	case *node.Record:
		return d.dumpRecord(ctx, name, v, depth)
	case nil:
		return fmt.Errorf("%w: field '%s'", node.ErrNilNode, name)
	}
	return fmt.Errorf("%w: unknown node type for '%s'", node.ErrInvalidOperation, name)
}

func (d *Dumper) dumpRecord(ctx *dumpCtx, name string, rec *node.Record, depth int) error {
	ctx.write("<" + name)

	var children int
	var textOnly = true
	for key, n := range rec.Slots() {
		if !node.IsAttribute(key) {
			children++
			if key != node.TextKey {
				textOnly = false
			}
			continue
		}
		s, ok := n.(*node.Scalar)
		if !ok {
			return fmt.Errorf("%w: '%s' on element '%s'", ErrInvalidAttribute, node.AttributeName(key), name)
		}
		ctx.write(" " + node.AttributeName(key) + "=\"")
		ctx.attr(s.Value())
		ctx.write("\"")
	}

	if children == 0 {
		ctx.write("/>")
		return ctx.err
	}
	ctx.write(">")

	// <name type="x">text</name> stays on one line
	if textOnly && children == 1 {
		text, _ := rec.Text()
		ctx.text(text)
		ctx.write("</" + name + ">")
		return ctx.err
	}

	for key, n := range rec.Slots() {
		if node.IsAttribute(key) {
			continue
		}
		ctx.newline(depth + 1)
		if err := d.dumpField(ctx, key, n, depth+1); err != nil {
			return err
		}
	}
	ctx.newline(depth)
	ctx.write("</" + name + ">")
	return ctx.err
}
