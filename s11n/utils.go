package s11n

import (
	"io"
	"unicode/utf8"
)

// isInCharacterRange checks if rune is in XML Character Range
func isInCharacterRange(r rune) bool {
	return r == 0x09 ||
		r == 0x0A ||
		r == 0x0D ||
		r >= 0x20 && r <= 0xD7FF ||
		r >= 0xE000 && r <= 0xFFFD ||
		r >= 0x10000 && r <= 0x10FFFF
}

var (
	esc_quot = []byte("&#34;") // shorter than "&quot;"
	esc_amp  = []byte("&amp;")
	esc_lt   = []byte("&lt;")
	esc_gt   = []byte("&gt;")
	esc_tab  = []byte("&#9;")
	esc_nl   = []byte("&#10;")
	esc_cr   = []byte("&#13;")
	esc_fffd = []byte("\uFFFD") // Unicode replacement character
)

// EscapeAttrValue writes s to w, escaped so that it can be placed
// between double quotes
func EscapeAttrValue(w io.Writer, s []byte) error {
	return escape(w, s, func(r rune) []byte {
		switch r {
		case '"':
			return esc_quot
		case '\n':
			return esc_nl
		case '\t':
			return esc_tab
		}
		return nil
	})
}

// EscapeText writes to w the properly escaped XML equivalent
// of the plain text data s. If escapeNewline is true, newline
// characters will be escaped.
func EscapeText(w io.Writer, s []byte, escapeNewline bool) error {
	return escape(w, s, func(r rune) []byte {
		if r == '\n' && escapeNewline {
			return esc_nl
		}
		return nil
	})
}

// escape handles the characters that need escaping everywhere. extra
// gets a chance to escape the rest.
func escape(w io.Writer, s []byte, extra func(rune) []byte) error {
	var esc []byte
	last := 0
	for i := 0; i < len(s); {
		r, width := utf8.DecodeRune(s[i:])
		i += width
		switch r {
		case '&':
			esc = esc_amp
		case '<':
			esc = esc_lt
		case '>':
			esc = esc_gt
		case '\r':
			esc = esc_cr
		default:
			if e := extra(r); e != nil {
				esc = e
				break
			}
			if !isInCharacterRange(r) || (r == utf8.RuneError && width == 1) {
				esc = esc_fffd
				break
			}
			continue
		}

		if _, err := w.Write(s[last : i-width]); err != nil {
			return err
		}
		if _, err := w.Write(esc); err != nil {
			return err
		}
		last = i
	}

	if _, err := w.Write(s[last:]); err != nil {
		return err
	}
	return nil
}
