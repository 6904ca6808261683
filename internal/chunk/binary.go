package chunk

import (
	"bytes"
	"encoding/hex"
	"sort"

	"github.com/crypto-data/freeze/internal/errs"
)

// BinaryChunk is an explicit set of byte-string values: transaction hashes,
// addresses, or storage slots, depending on which dimension the planner
// resolved it for.
type BinaryChunk struct {
	values [][]byte
}

// NewBinaryChunk builds a chunk from the given values, each copied so the
// chunk owns its data independent of the caller's backing slice.
func NewBinaryChunk(values [][]byte) BinaryChunk {
	out := make([][]byte, len(values))
	for i, v := range values {
		out[i] = append([]byte(nil), v...)
	}
	return BinaryChunk{values: out}
}

// FormatBinaryItem renders a single value the way file stubs do: the first
// 8 hex characters (4 bytes) of its 0x-prefixed encoding.
func FormatBinaryItem(value []byte) (string, error) {
	encoded := "0x" + hex.EncodeToString(value)
	if len(encoded) < 10 {
		return "", errs.InvalidChunk("could not format chunk")
	}
	return encoded[:10], nil
}

// Size returns the number of values in the chunk.
func (c BinaryChunk) Size() uint64 { return uint64(len(c.values)) }

func (c BinaryChunk) minMax() ([]byte, []byte, error) {
	if len(c.values) == 0 {
		return nil, nil, errs.InvalidChunk("empty binary chunk")
	}
	min, max := c.values[0], c.values[0]
	for _, v := range c.values[1:] {
		if bytes.Compare(v, min) < 0 {
			min = v
		}
		if bytes.Compare(v, max) > 0 {
			max = v
		}
	}
	return min, max, nil
}

// MinValue returns the lexically smallest value in the chunk.
func (c BinaryChunk) MinValue() ([]byte, error) {
	min, _, err := c.minMax()
	return min, err
}

// MaxValue returns the lexically largest value in the chunk.
func (c BinaryChunk) MaxValue() ([]byte, error) {
	_, max, err := c.minMax()
	return max, err
}

// Values returns the chunk's values in ascending lexical order.
func (c BinaryChunk) Values() [][]byte {
	out := make([][]byte, len(c.values))
	copy(out, c.values)
	sort.Slice(out, func(i, j int) bool { return bytes.Compare(out[i], out[j]) < 0 })
	return out
}

// Stub is the filename fragment identifying this chunk:
// "<min-prefix>_to_<max-prefix>", even when it holds a single value.
func (c BinaryChunk) Stub() (string, error) {
	min, max, err := c.minMax()
	if err != nil {
		return "", err
	}
	minStub, err := FormatBinaryItem(min)
	if err != nil {
		return "", err
	}
	maxStub, err := FormatBinaryItem(max)
	if err != nil {
		return "", err
	}
	return minStub + "_to_" + maxStub, nil
}
