package sax

import (
	"context"
	"errors"
)

// ErrHandlerUnspecified is returned when there is no Handler
// registered for that particular event callback. This is not
// a fatal error per se, and can be ignored if the implementation
// chooses to do so.
var ErrHandlerUnspecified = errors.New("handler unspecified")

// SAX2 is the callback based Handler.
type SAX2 struct {
	StartDocumentHandler         StartDocumentFunc
	EndDocumentHandler           EndDocumentFunc
	StartElementHandler          StartElementFunc
	EndElementHandler            EndElementFunc
	CharactersHandler            CharactersFunc
	CommentHandler               CommentFunc
	ProcessingInstructionHandler ProcessingInstructionFunc
}

var _ Handler = SAX2{}

// New creates a new instance of SAX2. All callbacks are
// uninitialized.
func New() *SAX2 {
	return &SAX2{}
}

func (s SAX2) StartDocument(ctx context.Context, decl Declaration) error {
	if h := s.StartDocumentHandler; h != nil {
		return h(ctx, decl)
	}
	return ErrHandlerUnspecified
}

func (s SAX2) EndDocument(ctx context.Context) error {
	if h := s.EndDocumentHandler; h != nil {
		return h(ctx)
	}
	return ErrHandlerUnspecified
}

func (s SAX2) StartElement(ctx context.Context, name string, attrs []Attribute) error {
	if h := s.StartElementHandler; h != nil {
		return h(ctx, name, attrs)
	}
	return ErrHandlerUnspecified
}

func (s SAX2) EndElement(ctx context.Context, name string) error {
	if h := s.EndElementHandler; h != nil {
		return h(ctx, name)
	}
	return ErrHandlerUnspecified
}

func (s SAX2) Characters(ctx context.Context, ch []byte) error {
	if h := s.CharactersHandler; h != nil {
		return h(ctx, ch)
	}
	return ErrHandlerUnspecified
}

func (s SAX2) Comment(ctx context.Context, value []byte) error {
	if h := s.CommentHandler; h != nil {
		return h(ctx, value)
	}
	return ErrHandlerUnspecified
}

func (s SAX2) ProcessingInstruction(ctx context.Context, target, data string) error {
	if h := s.ProcessingInstructionHandler; h != nil {
		return h(ctx, target, data)
	}
	return ErrHandlerUnspecified
}
