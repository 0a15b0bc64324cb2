package xmlshape

import (
	"errors"
	"io"
)

const Version = "0.1.0"

var (
	ErrDuplicateAttribute = errors.New("duplicate attribute")
	ErrEmptyDocument      = errors.New("start tag expected, '<' not found")
	ErrDocumentEnd        = errors.New("extra content at document end")
	ErrPrematureEOF       = errors.New("end of document reached")
	ErrTagMismatch        = errors.New("end tag does not match start tag")
	ErrUnexpectedEndTag   = errors.New("unexpected end tag")
	ErrInvalidXMLDecl     = errors.New("invalid XML declaration")
)

// ErrParseError wraps an error raised while parsing, along with the
// position in the input where it happened.
type ErrParseError struct {
	Column     int
	Err        error
	Location   int
	Line       string
	LineNumber int
}

// CharsetReaderFunc converts input in the named charset to UTF-8
type CharsetReaderFunc func(charset string, input io.Reader) (io.Reader, error)

// Parser turns markup into a document tree. A Parser only holds
// configuration and may be reused for any number of documents.
type Parser struct {
	charsetReader CharsetReaderFunc
}

// ParseOption configures a Parser
type ParseOption func(*Parser)
