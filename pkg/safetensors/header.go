// Package safetensors reads the metadata header of safetensors weight files
// over HTTP without downloading the tensor data. A safetensors file starts
// with an 8-byte little-endian length N followed by an N-byte JSON block
// mapping tensor names to their dtype, shape and data offsets; two byte-range
// requests are enough to recover the full tensor inventory of an arbitrarily
// large file.
package safetensors

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// metadataKey is the reserved header key holding file-level metadata rather
// than a tensor descriptor. It must never be counted as a tensor.
const metadataKey = "__metadata__"

// maxHeaderSize caps the declared header length. Real headers are a few
// hundred bytes to a few megabytes; anything larger indicates a corrupt or
// hostile file.
const maxHeaderSize = 100 * 1024 * 1024

// ErrHeaderUnavailable indicates that the header of a remote file could not
// be retrieved or parsed. It is a per-file soft failure: callers skip the
// file rather than failing the whole estimate.
var ErrHeaderUnavailable = errors.New("safetensors header unavailable")

// Doer executes HTTP requests. It is satisfied by *http.Client and by
// clients that inject authentication before delegating.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// TensorInfo describes a single tensor from a safetensors header.
// Endianness is little-endian and ordering is 'C', per the format.
type TensorInfo struct {
	Dtype       DType    `json:"dtype"`
	Shape       []int64  `json:"shape"`
	DataOffsets [2]int64 `json:"data_offsets"`
}

// Elements returns the number of elements in the tensor, the product of its
// shape. An empty shape denotes a scalar and yields 1.
func (t TensorInfo) Elements() int64 {
	elements := int64(1)
	for _, dim := range t.Shape {
		elements *= dim
	}
	return elements
}

// ByteSize returns the storage size of the tensor data in bytes.
func (t TensorInfo) ByteSize() int64 {
	return t.Elements() * t.Dtype.BytesPerElement()
}

// Header is the parsed metadata block of a safetensors file.
type Header struct {
	// Metadata holds the file-level "__metadata__" entries, if any.
	Metadata map[string]string
	// Tensors maps tensor names to their descriptors.
	Tensors map[string]TensorInfo
}

// ParseHeader parses the JSON metadata block of a safetensors file. The
// reserved "__metadata__" key is split out by key identity since its value
// is a string map rather than a tensor descriptor.
func ParseHeader(data []byte) (*Header, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse JSON header: %w", err)
	}

	header := &Header{Tensors: make(map[string]TensorInfo, len(raw))}
	for name, value := range raw {
		if name == metadataKey {
			if err := json.Unmarshal(value, &header.Metadata); err != nil {
				return nil, fmt.Errorf("parse %s: %w", metadataKey, err)
			}
			continue
		}
		var info TensorInfo
		if err := json.Unmarshal(value, &info); err != nil {
			return nil, fmt.Errorf("parse tensor %q: %w", name, err)
		}
		header.Tensors[name] = info
	}

	return header, nil
}

// FetchHeader retrieves and parses the header of a remote safetensors file
// using two range requests: one for the 8-byte length prefix and one for the
// JSON block it announces. Transport failures, non-success statuses and
// malformed headers all map to ErrHeaderUnavailable.
func FetchHeader(ctx context.Context, client Doer, url string) (*Header, error) {
	prefix, err := fetchRange(ctx, client, url, 0, 8)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrHeaderUnavailable, err)
	}
	if len(prefix) < 8 {
		return nil, fmt.Errorf("%w: short length prefix (%d bytes)", ErrHeaderUnavailable, len(prefix))
	}

	headerLen := binary.LittleEndian.Uint64(prefix[:8])
	if headerLen == 0 || headerLen > maxHeaderSize {
		return nil, fmt.Errorf("%w: implausible header length %d", ErrHeaderUnavailable, headerLen)
	}

	block, err := fetchRange(ctx, client, url, 8, int64(headerLen))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrHeaderUnavailable, err)
	}

	header, err := ParseHeader(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrHeaderUnavailable, err)
	}
	return header, nil
}

// fetchRange requests length bytes starting at offset. Servers that ignore
// the Range header are tolerated as long as they return at least the
// requested span, which is then sliced out of the full response.
func fetchRange(ctx context.Context, client Doer, url string, offset, length int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", offset, offset+length-1))

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("range request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	// A 200 means the server served the whole file from byte zero; skip to
	// the requested offset before reading.
	if resp.StatusCode == http.StatusOK && offset > 0 {
		if _, err := io.CopyN(io.Discard, resp.Body, offset); err != nil {
			return nil, fmt.Errorf("skip to offset %d: %w", offset, err)
		}
	}

	data := make([]byte, length)
	if _, err := io.ReadFull(resp.Body, data); err != nil {
		return nil, fmt.Errorf("read %d bytes: %w", length, err)
	}
	return data, nil
}
