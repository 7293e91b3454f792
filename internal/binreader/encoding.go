package binreader

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

// DefaultEncoding decodes names as UTF-8, replacing invalid sequences with U+FFFD.
var DefaultEncoding encoding.Encoding = unicode.UTF8

// EncodingByName resolves a WHATWG encoding label such as "utf-8",
// "windows-1252" or "euc-kr". An empty name yields DefaultEncoding.
func EncodingByName(name string) (encoding.Encoding, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultEncoding, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("binreader: unknown text encoding %q: %w", name, err)
	}
	return enc, nil
}

func decodeText(enc encoding.Encoding, b []byte) string {
	if enc == DefaultEncoding && utf8.Valid(b) {
		return string(b)
	}
	out, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		// Decoders only fail on internal errors; fall back to replacement.
		return strings.ToValidUTF8(string(b), string(utf8.RuneError))
	}
	return string(out)
}
