// Package codec turns a pipeline model into a compact, URL-safe token and
// back.
//
// A token is the canonical JSON text of the model, compressed with snappy
// (block format) and encoded as unpadded base64url, so it only ever contains
// [A-Za-z0-9_-] and can sit in a query string without escaping.
package codec

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/golang/snappy"

	"github.com/dd0wney/cluso-fable/pkg/pipeline"
	"github.com/dd0wney/cluso-fable/pkg/pools"
)

// MaxTokenLength is the advisory token size limit in characters. Older
// browsers and proxies cap URLs at about 2048 characters; this leaves room for
// the base URL the token is embedded in.
const MaxTokenLength = 2000

// maxDecodedSize bounds the text a token may claim to decompress to.
const maxDecodedSize = 16 << 20

var encoding = base64.RawURLEncoding

// Stats describes how well a model compresses.
type Stats struct {
	OriginalSize   int     `json:"originalSize"`   // Canonical text length in bytes
	CompressedSize int     `json:"compressedSize"` // Token length in characters
	Ratio          float64 `json:"ratio"`          // CompressedSize / OriginalSize
}

// Canonical returns the canonical text of a model: compact JSON with map keys
// sorted and no HTML escaping. Equal models always produce equal text. A
// model with a nil block map is written as an empty one.
func Canonical(m *pipeline.Model) ([]byte, error) {
	if m == nil {
		return nil, ErrNilModel
	}
	if m.Blocks == nil {
		m = pipeline.NewModel()
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(m); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Encode compresses a model into a token. Encoding is deterministic and
// never refuses large models; see IsTooLarge.
func Encode(m *pipeline.Model) (string, error) {
	text, err := Canonical(m)
	if err != nil {
		return "", err
	}
	return compress(text), nil
}

// compress snappy-encodes text into a pooled scratch buffer and returns its
// base64url form.
func compress(text []byte) string {
	n := snappy.MaxEncodedLen(len(text))
	if n < 0 {
		return encoding.EncodeToString(snappy.Encode(nil, text))
	}
	buf := pools.GetBytesSized(n)
	defer pools.PutBytes(buf)
	return encoding.EncodeToString(snappy.Encode(buf, text))
}

// Decode reverses Encode. Any failure returns a nil model and a
// *DecodeError; a partially populated model is never returned. Documents
// with unknown fields, trailing data or a missing "blocks" member are
// rejected, as are documents that fail Model.Validate.
func Decode(token string) (*pipeline.Model, error) {
	if token == "" {
		return nil, decodeError(StageText, ErrEmptyToken, nil)
	}
	if strings.ContainsAny(token, "=+/ \t\r\n") {
		return nil, decodeError(StageText, ErrCorruptToken, errors.New("character outside base64url alphabet"))
	}

	compressed, err := encoding.DecodeString(token)
	if err != nil {
		return nil, decodeError(StageBase64, ErrCorruptToken, err)
	}

	n, err := snappy.DecodedLen(compressed)
	if err != nil {
		return nil, decodeError(StageDecompress, ErrCorruptToken, err)
	}
	if n > maxDecodedSize {
		return nil, decodeError(StageDecompress, ErrCorruptToken,
			fmt.Errorf("decoded size %d exceeds %d bytes", n, maxDecodedSize))
	}

	buf := pools.GetBytesSized(n)
	defer pools.PutBytes(buf)
	text, err := snappy.Decode(buf, compressed)
	if err != nil {
		return nil, decodeError(StageDecompress, ErrCorruptToken, err)
	}

	m, err := parse(text)
	if err != nil {
		return nil, decodeError(StageParse, ErrMalformedModel, err)
	}

	if err := m.Validate(); err != nil {
		return nil, decodeError(StageSchema, ErrInvalidSchema, err)
	}
	return m, nil
}

func parse(text []byte) (*pipeline.Model, error) {
	dec := json.NewDecoder(bytes.NewReader(text))
	dec.DisallowUnknownFields()

	var m pipeline.Model
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after document")
	}
	return &m, nil
}

// IsTooLarge reports whether a token exceeds MaxTokenLength. The check is
// advisory; Encode and Decode accept tokens of any size.
func IsTooLarge(token string) bool {
	return len(token) > MaxTokenLength
}

// CompressionStats encodes m and reports the sizes involved.
func CompressionStats(m *pipeline.Model) (Stats, error) {
	text, err := Canonical(m)
	if err != nil {
		return Stats{}, err
	}
	token := compress(text)

	stats := Stats{
		OriginalSize:   len(text),
		CompressedSize: len(token),
	}
	if stats.OriginalSize > 0 {
		stats.Ratio = float64(stats.CompressedSize) / float64(stats.OriginalSize)
	}
	return stats, nil
}
