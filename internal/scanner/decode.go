package scanner

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// decodeContent converts raw file bytes to a UTF-8 string so comment
// scanning works on sources that are not UTF-8 to begin with. Detection is
// BOM first, then UTF-8 validity, then a Windows-1252 fallback for the
// stray legacy file.
func decodeContent(data []byte) (string, error) {
	if enc, bomLen := detectBOM(data); enc != nil {
		out, _, err := transform.Bytes(enc.NewDecoder(), data[bomLen:])
		if err != nil {
			return "", err
		}
		return string(out), nil
	}

	if utf8.Valid(data) {
		return string(data), nil
	}

	out, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func detectBOM(data []byte) (encoding.Encoding, int) {
	if len(data) >= 3 && bytes.Equal(data[:3], []byte{0xEF, 0xBB, 0xBF}) {
		return unicode.UTF8, 3
	}
	if len(data) >= 2 {
		if bytes.Equal(data[:2], []byte{0xFF, 0xFE}) {
			return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), 2
		}
		if bytes.Equal(data[:2], []byte{0xFE, 0xFF}) {
			return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM), 2
		}
	}
	return nil, 0
}
