// Package decompressor inflates the zlib/deflate payloads GOG serves for
// manifests and chunks.
package decompressor

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zlib"
)

// Inflate decompresses a whole zlib payload.
func Inflate(data []byte) ([]byte, error) {
	reader, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	out, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// InflateOrRaw decompresses data, falling back to the raw payload when it is
// not zlib-framed. Some CDN endpoints are observed to serve chunks already
// decompressed. The second return reports whether inflation happened.
func InflateOrRaw(data []byte) ([]byte, bool) {
	out, err := Inflate(data)
	if err != nil {
		return data, false
	}
	return out, true
}

// Deflate compresses data with zlib. Used by tests to build CDN fixtures.
func Deflate(data []byte) []byte {
	var buf bytes.Buffer
	writer := zlib.NewWriter(&buf)
	_, _ = writer.Write(data)
	_ = writer.Close()
	return buf.Bytes()
}
