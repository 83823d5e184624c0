package records

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DetectAndDecode converts input to UTF-8. A byte order mark selects UTF-8 or
// UTF-16; input without one is taken as UTF-8 when valid and Latin-1 otherwise.
func DetectAndDecode(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return data, nil
	}

	var fallback transform.Transformer = encoding.Nop.NewDecoder()
	if !utf8.Valid(data) {
		fallback = charmap.ISO8859_1.NewDecoder()
	}

	decoded, _, err := transform.Bytes(unicode.BOMOverride(fallback), data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode source: %w", err)
	}
	return decoded, nil
}
