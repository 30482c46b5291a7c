package imaging

import (
	"bytes"
	"compress/zlib"
	"encoding/hex"
	"fmt"
	"io"
)

// FlateDecode decompresses Flate (zlib) compressed data, the most common
// transport filter for inline image payloads.
func FlateDecode(data []byte) ([]byte, error) {
	reader, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("imaging: zlib reader failed: %w", err)
	}
	defer reader.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return nil, fmt.Errorf("imaging: flate decompression failed: %w", err)
	}
	return buf.Bytes(), nil
}

// ASCIIHexDecode decodes ASCIIHex-encoded data. Whitespace is skipped and
// the optional '>' terminator ends the data; an odd final digit implies a
// trailing zero.
func ASCIIHexDecode(data []byte) ([]byte, error) {
	cleaned := make([]byte, 0, len(data))
scan:
	for _, c := range data {
		switch c {
		case '>':
			break scan
		case ' ', '\t', '\r', '\n', '\f', 0:
			continue
		default:
			cleaned = append(cleaned, c)
		}
	}
	if len(cleaned)%2 == 1 {
		cleaned = append(cleaned, '0')
	}

	decoded := make([]byte, hex.DecodedLen(len(cleaned)))
	if _, err := hex.Decode(decoded, cleaned); err != nil {
		return nil, fmt.Errorf("imaging: hex decode failed: %w", err)
	}
	return decoded, nil
}
