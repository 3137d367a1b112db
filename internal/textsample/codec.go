package textsample

import (
	"encoding/binary"
	"fmt"
	"math"
)

const (
	// MaxTextLen is the longest text a sample payload can carry.
	MaxTextLen = math.MaxUint16

	// PascalTextLen is the limit applied to text authored as short strings.
	PascalTextLen = 255

	lengthPrefixSize = 2
)

// EncodeText builds the sample payload: a big-endian 16-bit length followed by
// the raw text bytes.
func EncodeText(text []byte) ([]byte, error) {
	if len(text) > MaxTextLen {
		return nil, fmt.Errorf("%w: got %d bytes", ErrTextTooLong, len(text))
	}
	payload := make([]byte, lengthPrefixSize+len(text))
	binary.BigEndian.PutUint16(payload, uint16(len(text)))
	copy(payload[lengthPrefixSize:], text)
	return payload, nil
}

// DecodeText extracts the text from a sample payload. Bytes after the text
// (style atoms and the like) are ignored.
func DecodeText(payload []byte) ([]byte, error) {
	if len(payload) < lengthPrefixSize {
		return nil, fmt.Errorf(
			"%w: %d bytes, need at least %d",
			ErrShortPayload,
			len(payload),
			lengthPrefixSize,
		)
	}
	n := int(binary.BigEndian.Uint16(payload))
	body := payload[lengthPrefixSize:]
	if len(body) < n {
		return nil, fmt.Errorf(
			"%w: length word says %d bytes, have %d",
			ErrShortPayload,
			n,
			len(body),
		)
	}
	text := make([]byte, n)
	copy(text, body[:n])
	return text, nil
}

// PascalText converts s to sample text, truncated to PascalTextLen bytes.
func PascalText(s string) []byte {
	b := []byte(s)
	if len(b) > PascalTextLen {
		b = b[:PascalTextLen]
	}
	return b
}
