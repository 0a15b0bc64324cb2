package xmlshape

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/lestrrat-go/xmlshape/encoding"
	"github.com/lestrrat-go/xmlshape/internal/debug"
	"github.com/lestrrat-go/xmlshape/internal/stack"
	"github.com/lestrrat-go/xmlshape/sax"
)

type parserCtx struct {
	data       []byte
	decoder    *xml.Decoder
	sax        sax.Handler
	encoding   string
	transcoded bool
	started    bool
	sawRoot    bool
	nbread     int
	open       stack.Stack[string]
}

func (ctx *parserCtx) release() {
	ctx.sax = nil
	ctx.decoder = nil
	ctx.data = nil
}

func (ctx *parserCtx) init(p *Parser, h sax.Handler, b []byte) error {
	enc, data, err := detectEncoding(b)
	if err != nil {
		return ErrParseError{Err: err, LineNumber: 1, Column: 1}
	}

	ctx.data = data
	ctx.encoding = enc
	ctx.transcoded = enc != encUTF8 && enc != encNone
	ctx.sax = h
	ctx.decoder = xml.NewDecoder(bytes.NewReader(data))
	ctx.decoder.Strict = true
	if ctx.transcoded {
		// already converted to UTF-8, whatever the declaration says
		ctx.decoder.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
			return input, nil
		}
	} else {
		ctx.decoder.CharsetReader = p.charsetReader
	}
	return nil
}

func (ctx *parserCtx) error(err error) error {
	// If it's wrapped, just return as is
	var perr ErrParseError
	if errors.As(err, &perr) {
		return err
	}

	line, column := ctx.decoder.InputPos()
	var synerr *xml.SyntaxError
	if errors.As(err, &synerr) && synerr.Line > 0 {
		line = synerr.Line
	}
	return ErrParseError{
		Column:     column,
		Err:        err,
		Line:       ctx.currentLine(line),
		LineNumber: line,
		Location:   int(ctx.decoder.InputOffset()),
	}
}

// currentLine returns the text of the given 1-based line of the input
func (ctx *parserCtx) currentLine(n int) string {
	if ctx.transcoded || n <= 0 {
		return ""
	}
	data := ctx.data
	for i := 1; i < n; i++ {
		idx := bytes.IndexByte(data, '\n')
		if idx < 0 {
			return ""
		}
		data = data[idx+1:]
	}
	if idx := bytes.IndexByte(data, '\n'); idx >= 0 {
		data = data[:idx]
	}
	return strings.TrimSpace(string(data))
}

const (
	encNone    = ""
	encUTF8    = "utf8"
	encUTF16LE = "utf16le"
	encUTF16BE = "utf16be"
	encUCS4    = "ucs4"
	encEBCDIC  = "ebcdic"
)

// BOM patterns
var (
	patUCS4BE    = []byte{0x00, 0x00, 0x00, 0x3C}
	patUCS4LE    = []byte{0x3C, 0x00, 0x00, 0x00}
	patEBCDIC    = []byte{0x4C, 0x6F, 0xA7, 0x94}
	patUTF16LE4B = []byte{0x3C, 0x00, 0x3F, 0x00}
	patUTF16BE4B = []byte{0x00, 0x3C, 0x00, 0x3F}
	patUTF8      = []byte{0xEF, 0xBB, 0xBF}
	patUTF16LE2B = []byte{0xFF, 0xFE}
	patUTF16BE2B = []byte{0xFE, 0xFF}
)

// detectEncoding looks at the first bytes of the input for a byte
// order mark or the UTF-16 form of "<?". UTF-16 input is converted to
// UTF-8 right away; UTF-8 input only loses its BOM.
func detectEncoding(b []byte) (string, []byte, error) {
	if debug.Enabled {
		debug.Printf("START detectEncoding")
		defer debug.Printf("END   detectEncoding")
	}

	switch {
	case bytes.HasPrefix(b, patUTF8):
		return encUTF8, b[len(patUTF8):], nil
	case bytes.HasPrefix(b, patUTF16LE2B):
		return transcode(encUTF16LE, b[len(patUTF16LE2B):])
	case bytes.HasPrefix(b, patUTF16BE2B):
		return transcode(encUTF16BE, b[len(patUTF16BE2B):])
	case bytes.HasPrefix(b, patUTF16LE4B):
		return transcode(encUTF16LE, b)
	case bytes.HasPrefix(b, patUTF16BE4B):
		return transcode(encUTF16BE, b)
	case bytes.HasPrefix(b, patUCS4BE), bytes.HasPrefix(b, patUCS4LE):
		return encUCS4, nil, errors.New("encoding 'ucs4' not supported")
	case bytes.HasPrefix(b, patEBCDIC):
		return encEBCDIC, nil, errors.New("encoding 'ebcdic' not supported")
	}
	return encNone, b, nil
}

func transcode(enc string, b []byte) (string, []byte, error) {
	e := encoding.Load(enc)
	if e == nil {
		return enc, nil, errors.New("encoding '" + enc + "' not supported")
	}
	out, err := e.NewDecoder().Bytes(b)
	if err != nil {
		return enc, nil, err
	}
	return enc, out, nil
}

// call invokes a SAX callback. Callbacks the handler does not
// implement are not errors.
func (ctx *parserCtx) call(err error) error {
	if err == nil || errors.Is(err, sax.ErrHandlerUnspecified) {
		return nil
	}
	return ctx.error(err)
}

func (ctx *parserCtx) startDocument(c context.Context, decl sax.Declaration) error {
	if ctx.started {
		return nil
	}
	ctx.started = true
	return ctx.call(ctx.sax.StartDocument(c, decl))
}

func (ctx *parserCtx) parseDocument(c context.Context) error {
	for {
		tok, err := ctx.decoder.RawToken()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return ctx.error(err)
		}
		ctx.nbread++

		if pi, ok := tok.(xml.ProcInst); ok && pi.Target == "xml" {
			if err := ctx.parseXMLDecl(c, pi.Inst); err != nil {
				return ctx.error(err)
			}
			continue
		}

		if err := ctx.startDocument(c, sax.Declaration{}); err != nil {
			return err
		}

		if err := ctx.parseToken(c, tok); err != nil {
			return err
		}
	}

	if ctx.open.Len() > 0 {
		return ctx.error(ErrPrematureEOF)
	}
	if !ctx.sawRoot {
		return ctx.error(ErrEmptyDocument)
	}
	return ctx.call(ctx.sax.EndDocument(c))
}

func (ctx *parserCtx) parseToken(c context.Context, tok xml.Token) error {
	switch t := tok.(type) {
	case xml.StartElement:
		if ctx.sawRoot && ctx.open.Len() == 0 {
			return ctx.error(ErrDocumentEnd)
		}
		name := qname(t.Name)
		attrs := make([]sax.Attribute, 0, len(t.Attr))
		for _, a := range t.Attr {
			attrs = append(attrs, sax.Attribute{Name: qname(a.Name), Value: a.Value})
		}
		ctx.open.Push(name)
		return ctx.call(ctx.sax.StartElement(c, name, attrs))
	case xml.EndElement:
		name := qname(t.Name)
		top, ok := ctx.open.Top()
		if !ok {
			return ctx.error(fmt.Errorf("%w: </%s>", ErrUnexpectedEndTag, name))
		}
		if top != name {
			return ctx.error(fmt.Errorf("%w: expected </%s>, got </%s>", ErrTagMismatch, top, name))
		}
		ctx.open.Pop()
		if ctx.open.Len() == 0 {
			ctx.sawRoot = true
		}
		return ctx.call(ctx.sax.EndElement(c, name))
	case xml.CharData:
		if len(bytes.TrimSpace(t)) == 0 {
			return nil
		}
		if ctx.open.Len() == 0 {
			if ctx.sawRoot {
				return ctx.error(ErrDocumentEnd)
			}
			return ctx.error(ErrEmptyDocument)
		}
		return ctx.call(ctx.sax.Characters(c, bytes.Clone(t)))
	case xml.Comment:
		return ctx.call(ctx.sax.Comment(c, bytes.Clone(t)))
	case xml.ProcInst:
		return ctx.call(ctx.sax.ProcessingInstruction(c, t.Target, string(t.Inst)))
	case xml.Directive:
		if debug.Enabled {
			debug.Printf("skipping directive <!%s>", t)
		}
	}
	return nil
}

func qname(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

// parseXMLDecl handles `<?xml version="1.0" encoding="..." standalone="..."?>`.
// The declaration is only allowed as the very first token.
func (ctx *parserCtx) parseXMLDecl(c context.Context, inst []byte) error {
	if ctx.nbread != 1 || ctx.started {
		return fmt.Errorf("%w: declaration must be at the start of the document", ErrInvalidXMLDecl)
	}

	params, err := parseDeclParams(string(inst))
	if err != nil {
		return err
	}

	decl := sax.Declaration{Present: true}
	for name, value := range params {
		switch name {
		case "version":
			decl.Version = value
		case "encoding":
			decl.Encoding = value
		case "standalone":
			if value != "yes" && value != "no" {
				return fmt.Errorf("%w: standalone must be 'yes' or 'no'", ErrInvalidXMLDecl)
			}
			decl.Standalone = value
		default:
			return fmt.Errorf("%w: unknown parameter %q", ErrInvalidXMLDecl, name)
		}
	}
	if decl.Version == "" {
		return fmt.Errorf("%w: version is required", ErrInvalidXMLDecl)
	}

	if debug.Enabled {
		debug.Printf("xml declaration: version=%s encoding=%s standalone=%s", decl.Version, decl.Encoding, decl.Standalone)
	}
	return ctx.startDocument(c, decl)
}

// parseDeclParams splits the pseudo attributes of a declaration
func parseDeclParams(s string) (map[string]string, error) {
	params := make(map[string]string)
	for {
		s = strings.TrimLeft(s, " \t\r\n")
		if s == "" {
			return params, nil
		}

		eq := strings.IndexByte(s, '=')
		if eq <= 0 {
			return nil, fmt.Errorf("%w: '=' was required here", ErrInvalidXMLDecl)
		}
		name := strings.TrimSpace(s[:eq])
		s = strings.TrimLeft(s[eq+1:], " \t\r\n")
		if s == "" || (s[0] != '"' && s[0] != '\'') {
			return nil, fmt.Errorf("%w: quoted value expected for %q", ErrInvalidXMLDecl, name)
		}
		end := strings.IndexByte(s[1:], s[0])
		if end < 0 {
			return nil, fmt.Errorf("%w: unterminated value for %q", ErrInvalidXMLDecl, name)
		}
		if _, dup := params[name]; dup {
			return nil, fmt.Errorf("%w: duplicate parameter %q", ErrInvalidXMLDecl, name)
		}
		params[name] = s[1 : end+1]
		s = s[end+2:]
	}
}
