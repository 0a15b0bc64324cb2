package xmlshape

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/lestrrat-go/pdebug"
	"github.com/lestrrat-go/xmlshape/node"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

func TestDetectBOM(t *testing.T) {
	data := map[string][][]byte{
		encUCS4:   {{0x00, 0x00, 0x00, 0x3C}, {0x3C, 0x00, 0x00, 0x00}},
		encEBCDIC: {{0x4C, 0x6F, 0xA7, 0x94}},
		encUTF8:   {{0xEF, 0xBB, 0xBF, 0x3C}},
		encNone:   {{0x3C, 0x3F, 0x78, 0x6D}, {0xde, 0xad, 0xbe, 0xef}},
	}

	for expected, inputs := range data {
		for i, input := range inputs {
			t.Logf("checking %q (%d)", expected, i)
			enc, _, err := detectEncoding(input)
			switch expected {
			case encUCS4, encEBCDIC:
				require.Error(t, err, "detectEncoding should fail for sequence %#v", input)
			default:
				require.NoError(t, err, "detectEncoding should succeed for sequence %#v", input)
			}
			require.Equal(t, expected, enc, "detectEncoding returns as expected")
		}
	}

	t.Run("UTF16", func(t *testing.T) {
		le, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes([]byte(`<a/>`))
		require.NoError(t, err)
		enc, out, err := detectEncoding(le)
		require.NoError(t, err)
		require.Equal(t, encUTF16LE, enc)
		require.Equal(t, `<a/>`, string(out))

		be, err := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewEncoder().Bytes([]byte(`<a/>`))
		require.NoError(t, err)
		enc, out, err = detectEncoding(be)
		require.NoError(t, err)
		require.Equal(t, encUTF16BE, enc)
		require.Equal(t, `<a/>`, string(out))
	})
}

func TestEmptyDocument(t *testing.T) {
	ctx := context.Background()
	for _, input := range []string{"", "   \n", `<?xml version="1.0"?>`, "<!-- nothing -->"} {
		_, err := Parse(ctx, []byte(input))
		require.ErrorIs(t, err, ErrEmptyDocument, "Parse(%q) should fail", input)
	}

	// BOM only
	_, err := Parse(ctx, []byte{0x00, 0x00, 0x00, 0x3C})
	require.Error(t, err, "Parsing BOM only should fail")
}

func TestParseXMLDecl(t *testing.T) {
	const content = `<root />`
	inputs := map[string]struct {
		version    string
		encoding   string
		standalone node.DocumentStandaloneType
	}{
		content:                                   {"1.0", "UTF-8", node.StandaloneNoXMLDecl},
		`<?xml version="1.0"?>` + content:         {"1.0", "UTF-8", node.StandaloneImplicitNo},
		`<?xml version = '1.0' ?>` + content:      {"1.0", "UTF-8", node.StandaloneImplicitNo},
		`<?xml version="1.0" standalone="no"?>` + content:                   {"1.0", "UTF-8", node.StandaloneExplicitNo},
		`<?xml version="1.0" encoding="euc-jp"?>` + content:                 {"1.0", "euc-jp", node.StandaloneImplicitNo},
		`<?xml version="1.0" encoding="cp932" standalone='yes'?>` + content: {"1.0", "cp932", node.StandaloneExplicitYes},
	}

	for input, expect := range inputs {
		doc, err := Parse(context.Background(), []byte(input))
		require.NoError(t, err, "Parse should succeed for '%s'", input)

		require.Equal(t, expect.version, doc.Version(), "version matches")
		require.Equal(t, expect.encoding, doc.Encoding(), "encoding matches")
		require.Equal(t, expect.standalone, doc.Standalone(), "standalone matches")
	}
}

func TestParseMisc(t *testing.T) {
	const decl = `<?xml version="1.0"?>` + "\n"
	const content = `<root />`
	inputs := []string{
		decl + `<?xml-stylesheet type="text/xsl" href="style.xsl"?>` + content,
		decl + `<!DOCTYPE root>` + content,
		decl + content + "\n\n",
		content + `<?pi after root?>`,
	}

	for _, input := range inputs {
		doc, err := Parse(context.Background(), []byte(input))
		require.NoError(t, err, "Parse should succeed for '%s'", input)

		name, n := doc.DocumentElement()
		require.Equal(t, "root", name)
		require.True(t, node.Equal(node.NewScalar(""), n), "empty element is an empty scalar")
	}
}

func TestParseShapes(t *testing.T) {
	ctx := context.Background()

	t.Run("Scalar", func(t *testing.T) {
		doc, err := Parse(ctx, []byte(`<a><name>  propA  </name><empty/></a>`))
		require.NoError(t, err)

		n, ok := node.Lookup(doc.Root(), "a.name")
		require.True(t, ok)
		require.Equal(t, "propA", n.(*node.Scalar).Value(), "text is trimmed")

		n, ok = node.Lookup(doc.Root(), "a.empty")
		require.True(t, ok)
		require.Equal(t, "", n.(*node.Scalar).Value())
	})

	t.Run("Attributes", func(t *testing.T) {
		doc, err := Parse(ctx, []byte(`<a><flags value="0" type="uint"/><name type="str">x</name></a>`))
		require.NoError(t, err)

		n, _ := node.Lookup(doc.Root(), "a.flags")
		rec := n.(*node.Record)
		require.Equal(t, []string{"@_value", "@_type"}, rec.Names(), "attributes keep source order")

		n, _ = node.Lookup(doc.Root(), "a.name")
		rec = n.(*node.Record)
		text, ok := rec.Text()
		require.True(t, ok)
		require.Equal(t, "x", text)
	})

	t.Run("Repeated", func(t *testing.T) {
		doc, err := Parse(ctx, []byte(`<a><Item>1</Item><Item>2</Item><Item>3</Item></a>`))
		require.NoError(t, err)

		n, _ := node.Lookup(doc.Root(), "a.Item")
		list, ok := n.(*node.Repeated)
		require.True(t, ok, "siblings with the same tag are repeated")
		require.Equal(t, 3, list.Len())

		doc, err = Parse(ctx, []byte(`<a><Item>1</Item></a>`))
		require.NoError(t, err)
		n, _ = node.Lookup(doc.Root(), "a.Item")
		require.Equal(t, node.ScalarKind, n.Kind(), "a lone occurrence is not repeated")
	})

	t.Run("Interleaved", func(t *testing.T) {
		doc, err := Parse(ctx, []byte(`<a><x>1</x><y>2</y><x>3</x></a>`))
		require.NoError(t, err)

		n, _ := node.Lookup(doc.Root(), "a")
		var order []string
		for name, item := range n.(*node.Record).Slots() {
			order = append(order, name+"="+item.(*node.Scalar).Value())
		}
		require.Equal(t, []string{"x=1", "y=2", "x=3"}, order)
	})

	t.Run("MixedContent", func(t *testing.T) {
		doc, err := Parse(ctx, []byte(`<a>hello <b/> world<!-- note --></a>`))
		require.NoError(t, err)

		n, _ := node.Lookup(doc.Root(), "a")
		var order []string
		for name := range n.(*node.Record).Slots() {
			order = append(order, name)
		}
		require.Equal(t, []string{node.TextKey, "b", node.TextKey, node.CommentKey}, order)
	})

	t.Run("Entities", func(t *testing.T) {
		doc, err := Parse(ctx, []byte(`<a t="&quot;q&quot;">x &amp; y &lt;z&gt;</a>`))
		require.NoError(t, err)

		n, _ := node.Lookup(doc.Root(), "a")
		rec := n.(*node.Record)
		text, _ := rec.Text()
		require.Equal(t, "x & y <z>", text)
		v, _ := rec.Attribute("t")
		require.Equal(t, `"q"`, v)
	})

	if pdebug.Enabled {
		doc, _ := Parse(ctx, []byte(`<a><b/></a>`))
		pdebug.Dump(doc)
	}
}

func TestParseErrors(t *testing.T) {
	inputs := map[string]error{
		`<a><b></a>`:                                   ErrTagMismatch,
		`<a></a></b>`:                                  ErrUnexpectedEndTag,
		`<a><b>`:                                       ErrPrematureEOF,
		`<a/><b/>`:                                     ErrDocumentEnd,
		`<a/>trailing`:                                 ErrDocumentEnd,
		`leading<a/>`:                                  ErrEmptyDocument,
		`<a x="1" x="2"/>`:                             ErrDuplicateAttribute,
		`<a/><?xml version="1.0"?>`:                    ErrInvalidXMLDecl,
		`<?xml encoding="UTF-8"?><a/>`:                 ErrInvalidXMLDecl,
		`<?xml version="1.0" standalone="maybe"?><a/>`: ErrInvalidXMLDecl,
		`<?xml version="1.0" foo="bar"?><a/>`:          ErrInvalidXMLDecl,
	}

	for input, expected := range inputs {
		_, err := Parse(context.Background(), []byte(input))
		require.ErrorIs(t, err, expected, "Parse(%q)", input)

		var perr ErrParseError
		require.True(t, errors.As(err, &perr), "errors are ErrParseError")
	}

	t.Run("Syntax", func(t *testing.T) {
		_, err := Parse(context.Background(), []byte("<a>\n<b x=1/></a>"))
		require.Error(t, err)

		var perr ErrParseError
		require.True(t, errors.As(err, &perr))
		require.Equal(t, 2, perr.LineNumber)
		require.Equal(t, "<b x=1/></a>", perr.Line)
		require.Contains(t, perr.Error(), "line 2")
	})
}

func TestParseEncoding(t *testing.T) {
	ctx := context.Background()

	t.Run("Declared", func(t *testing.T) {
		body, err := charmap.Windows1251.NewEncoder().String(`<a>дом</a>`)
		require.NoError(t, err)

		doc, err := Parse(ctx, []byte(`<?xml version="1.0" encoding="windows-1251"?>`+body))
		require.NoError(t, err)
		require.Equal(t, "windows-1251", doc.Encoding())

		_, n := doc.DocumentElement()
		require.Equal(t, "дом", n.(*node.Scalar).Value())
	})

	t.Run("UTF16", func(t *testing.T) {
		src, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().String(`<?xml version="1.0" encoding="UTF-16"?><a>дом</a>`)
		require.NoError(t, err)

		doc, err := Parse(ctx, []byte(src))
		require.NoError(t, err)
		_, n := doc.DocumentElement()
		require.Equal(t, "дом", n.(*node.Scalar).Value())
	})

	t.Run("UTF8BOM", func(t *testing.T) {
		doc, err := Parse(ctx, append([]byte{0xEF, 0xBB, 0xBF}, `<a>x</a>`...))
		require.NoError(t, err)
		_, n := doc.DocumentElement()
		require.Equal(t, "x", n.(*node.Scalar).Value())
	})

	t.Run("Unknown", func(t *testing.T) {
		_, err := Parse(ctx, []byte(`<?xml version="1.0" encoding="x-martian"?><a/>`))
		require.Error(t, err)
	})

	t.Run("CustomCharsetReader", func(t *testing.T) {
		var called string
		p := NewParser(WithCharsetReader(func(label string, input io.Reader) (io.Reader, error) {
			called = label
			return input, nil
		}))
		_, err := p.Parse(ctx, []byte(`<?xml version="1.0" encoding="x-martian"?><a/>`))
		require.NoError(t, err)
		require.Equal(t, "x-martian", called)
	})
}
