// Package acroform reads and fills the interactive-form (AcroForm) layer of
// PDF documents. It implements the subset of the PDF object model needed to
// walk a document's field tree, classify its fields, and write values back
// through an incremental update, without rewriting the rest of the file.
package acroform

import (
	"unicode/utf16"
)

// Name is a PDF name object (written as /Name)
type Name string

// Ref is an indirect object reference (written as "num gen R")
type Ref struct {
	Num int
	Gen int
}

// Dict is a PDF dictionary
type Dict map[Name]interface{}

// Array is a PDF array
type Array []interface{}

// String holds the decoded bytes of a PDF string object, after literal
// escapes or hex decoding have been applied
type String []byte

// object is one indirect object as found in the file. For objects carrying a
// stream, stream holds the raw (still encoded) stream bytes.
type object struct {
	num    int
	gen    int
	val    interface{}
	stream []byte
}

// Field flag bits, per the form field Ff entry
const (
	flagReadOnly  = 1 << 0
	flagRequired  = 1 << 1
	flagMultiline = 1 << 12
)

// Form field type names
const (
	fieldTypeText      Name = "Tx"
	fieldTypeButton    Name = "Btn"
	fieldTypeChoice    Name = "Ch"
	fieldTypeSignature Name = "Sig"
)

// decodeTextString converts decoded PDF string bytes to a Go string.
// Strings starting with the UTF-16BE byte order mark are decoded as UTF-16;
// everything else is treated as a Latin-1 superset, which covers
// PDFDocEncoding for the characters templates actually use.
func decodeTextString(s String) string {
	if len(s) >= 2 && s[0] == 0xFE && s[1] == 0xFF {
		u := make([]uint16, 0, (len(s)-2)/2)
		for i := 2; i+1 < len(s); i += 2 {
			u = append(u, uint16(s[i])<<8|uint16(s[i+1]))
		}
		return string(utf16.Decode(u))
	}
	runes := make([]rune, len(s))
	for i, b := range s {
		runes[i] = rune(b)
	}
	return string(runes)
}

// encodeTextString converts a Go string to PDF string bytes: plain bytes when
// the value is ASCII, UTF-16BE with a byte order mark otherwise
func encodeTextString(v string) String {
	ascii := true
	for _, r := range v {
		if r > 0x7E || r < 0x20 {
			ascii = false
			break
		}
	}
	if ascii {
		return String(v)
	}
	u := utf16.Encode([]rune(v))
	out := make([]byte, 0, 2+2*len(u))
	out = append(out, 0xFE, 0xFF)
	for _, c := range u {
		out = append(out, byte(c>>8), byte(c))
	}
	return String(out)
}

// stringValue extracts a Go string from a parsed PDF value that may be a
// string or a name. Returns "" for anything else.
func stringValue(v interface{}) string {
	switch t := v.(type) {
	case String:
		return decodeTextString(t)
	case Name:
		return string(t)
	default:
		return ""
	}
}

// intValue extracts an integer from a parsed PDF number
func intValue(v interface{}) (int64, bool) {
	switch t := v.(type) {
	case int64:
		return t, true
	case float64:
		return int64(t), true
	default:
		return 0, false
	}
}
