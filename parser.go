package xmlshape

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/lestrrat-go/xmlshape/encoding"
	"github.com/lestrrat-go/xmlshape/internal/trace"
	"github.com/lestrrat-go/xmlshape/node"
	"github.com/lestrrat-go/xmlshape/s11n"
	"github.com/lestrrat-go/xmlshape/sax"
)

// Parse parses the given []byte buffer and creates a Document object.
func Parse(ctx context.Context, b []byte) (*node.Document, error) {
	return NewParser().Parse(ctx, b)
}

// WithCharsetReader replaces the function used to decode documents
// that declare a charset other than UTF-8.
func WithCharsetReader(fn CharsetReaderFunc) ParseOption {
	return func(p *Parser) {
		p.charsetReader = fn
	}
}

func NewParser(options ...ParseOption) *Parser {
	p := &Parser{
		charsetReader: encoding.CharsetReader,
	}
	for _, option := range options {
		option(p)
	}
	return p
}

// Parse builds the document tree for b
func (p *Parser) Parse(ctx context.Context, b []byte) (*node.Document, error) {
	tb := NewTreeBuilder()
	if err := p.ParseSAX(ctx, b, tb); err != nil {
		return nil, err
	}

	doc := tb.Document()
	trace.Event(ctx, "parsed document",
		slog.Int("bytes", len(b)),
		slog.String("encoding", doc.Encoding()),
	)
	return doc, nil
}

// ParseSAX parses b and reports the events to h without building a
// tree.
func (p *Parser) ParseSAX(ctx context.Context, b []byte, h sax.Handler) error {
	pctx := &parserCtx{}
	if err := pctx.init(p, h, b); err != nil {
		return err
	}
	defer pctx.release()

	if err := pctx.parseDocument(ctx); err != nil {
		trace.Error(ctx, err, "failed to parse document")
		return err
	}
	return nil
}

// Serialize writes the document back to markup with the default
// Dumper settings.
func Serialize(doc *node.Document) ([]byte, error) {
	var buf bytes.Buffer
	d := s11n.Dumper{}
	if err := d.DumpDoc(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
