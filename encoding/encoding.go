// Package encoding wraps around the various encoding stuff in
// golang.org/x/text/encoding, so that documents written in legacy
// code pages can be read and written back in their own charset.
// Part of the reason this exists is that the package names such as
// "unicode" clash with the stdlib.
package encoding

import (
	"errors"
	"io"
	"strings"

	enc "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
)

var ErrUnsupported = errors.New("unsupported encoding")

// normalize folds the various spellings of a charset label, so that
// "UTF-8", "utf_8" and "utf8" all look the same
func normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.ReplaceAll(name, "_", "-")
}

// Load returns the encoding for the given charset label, or nil if
// the label is not known
func Load(name string) enc.Encoding {
	switch normalize(name) {
	case "utf8", "utf-8", "us-ascii", "ascii":
		return unicode.UTF8
	case "utf-16", "utf16":
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM)
	case "utf-16le", "utf16le":
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	case "utf-16be", "utf16be":
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	case "euc-jp":
		return japanese.EUCJP
	case "shift-jis", "shiftjis", "cp932", "sjis":
		return japanese.ShiftJIS
	case "jis", "iso-2022-jp":
		return japanese.ISO2022JP
	case "big5":
		return traditionalchinese.Big5
	case "euc-kr":
		return korean.EUCKR
	case "gbk", "gb2312":
		return simplifiedchinese.GBK
	case "gb18030":
		return simplifiedchinese.GB18030
	case "hz-gb2312":
		return simplifiedchinese.HZGB2312
	case "cp437":
		return charmap.CodePage437
	case "cp866":
		return charmap.CodePage866
	case "iso-8859-2":
		return charmap.ISO8859_2
	case "iso-8859-5":
		return charmap.ISO8859_5
	case "iso-8859-7":
		return charmap.ISO8859_7
	case "iso-8859-15":
		return charmap.ISO8859_15
	case "koi8r", "koi8-r":
		return charmap.KOI8R
	case "koi8u", "koi8-u":
		return charmap.KOI8U
	case "windows1250", "windows-1250", "cp1250":
		return charmap.Windows1250
	case "windows1251", "windows-1251", "cp1251":
		return charmap.Windows1251
	case "iso-8859-1", "latin1", "windows1252", "windows-1252", "cp1252":
		return charmap.Windows1252
	case "windows1253", "windows-1253":
		return charmap.Windows1253
	case "windows1254", "windows-1254":
		return charmap.Windows1254
	}
	return nil
}

// IsUTF8 reports whether the label names UTF-8 (or one of its
// subsets). An empty label means UTF-8 as well.
func IsUTF8(name string) bool {
	switch normalize(name) {
	case "", "utf8", "utf-8", "us-ascii", "ascii":
		return true
	}
	return false
}

// CharsetReader has the signature expected by encoding/xml's
// Decoder.CharsetReader. It converts input in the named charset to
// UTF-8.
func CharsetReader(label string, input io.Reader) (io.Reader, error) {
	if IsUTF8(label) {
		return input, nil
	}
	e := Load(label)
	if e == nil {
		return nil, errors.New("encoding '" + label + "' not supported")
	}
	return e.NewDecoder().Reader(input), nil
}

// NewWriter wraps w so that UTF-8 text written to it is converted to
// the named charset. Characters the charset cannot represent are
// written as numeric character references. The returned writer must
// be closed to flush it when it is not w itself.
func NewWriter(label string, w io.Writer) (io.Writer, error) {
	if IsUTF8(label) {
		return w, nil
	}
	e := Load(label)
	if e == nil {
		return nil, ErrUnsupported
	}
	return enc.HTMLEscapeUnsupported(e.NewEncoder()).Writer(w), nil
}
