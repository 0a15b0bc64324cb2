// Package sax defines the event interface between the markup parser
// and whatever consumes its output, such as the tree builder.
package sax

import "context"

// Declaration holds the contents of the `<?xml ... ?>` declaration.
// Present is false when the document had none.
type Declaration struct {
	Present    bool
	Version    string
	Encoding   string
	Standalone string // "yes", "no", or "" when unspecified
}

// Attribute is one attribute of a start tag, in source order
type Attribute struct {
	Name  string
	Value string
}

// Handler is the interface defining the SAX handler. Events arrive in
// document order. Character data that only contains whitespace between
// elements is not reported.
type Handler interface {
	StartDocument(ctx context.Context, decl Declaration) error
	EndDocument(ctx context.Context) error
	StartElement(ctx context.Context, name string, attrs []Attribute) error
	EndElement(ctx context.Context, name string) error
	Characters(ctx context.Context, ch []byte) error
	Comment(ctx context.Context, value []byte) error
	ProcessingInstruction(ctx context.Context, target, data string) error
}

// StartDocumentFunc defines the function type for SAX2.StartDocumentHandler
type StartDocumentFunc func(ctx context.Context, decl Declaration) error

// EndDocumentFunc defines the function type for SAX2.EndDocumentHandler
type EndDocumentFunc func(ctx context.Context) error

// StartElementFunc defines the function type for SAX2.StartElementHandler
type StartElementFunc func(ctx context.Context, name string, attrs []Attribute) error

// EndElementFunc defines the function type for SAX2.EndElementHandler
type EndElementFunc func(ctx context.Context, name string) error

// CharactersFunc defines the function type for SAX2.CharactersHandler
type CharactersFunc func(ctx context.Context, ch []byte) error

// CommentFunc defines the function type for SAX2.CommentHandler
type CommentFunc func(ctx context.Context, value []byte) error

// ProcessingInstructionFunc defines the function type for SAX2.ProcessingInstructionHandler
type ProcessingInstructionFunc func(ctx context.Context, target, data string) error
