// Package chunk implements the two partition-axis primitives the planner
// assembles work from: contiguous block ranges and sets of block numbers
// or transaction hashes, plus the stub naming used to name output files.
package chunk

import (
	"fmt"

	"github.com/crypto-data/freeze/internal/errs"
)

// NumberChunk is either an explicit list of block numbers or a contiguous
// inclusive range; it never mixes the two representations the way a single
// slice would have to approximate a sparse set.
type NumberChunk struct {
	numbers []uint64
	isRange bool
	start   uint64
	end     uint64 // inclusive
}

// Numbers builds a chunk from an explicit, possibly non-contiguous list.
func Numbers(values []uint64) NumberChunk {
	cp := append([]uint64(nil), values...)
	return NumberChunk{numbers: cp}
}

// Range builds a chunk spanning [start, end] inclusive.
func Range(start, end uint64) NumberChunk {
	return NumberChunk{isRange: true, start: start, end: end}
}

// FormatItem renders a single block number the way file stubs do: zero
// padded to 8 digits, so lexical and numeric filename order agree.
func FormatItem(value uint64) string {
	return fmt.Sprintf("%08d", value)
}

// Size returns the number of block numbers the chunk covers.
func (c NumberChunk) Size() uint64 {
	if c.isRange {
		return c.end - c.start + 1
	}
	return uint64(len(c.numbers))
}

// MinValue returns the smallest block number in the chunk.
func (c NumberChunk) MinValue() (uint64, error) {
	if c.isRange {
		return c.start, nil
	}
	if len(c.numbers) == 0 {
		return 0, errs.InvalidChunk("empty number chunk")
	}
	min := c.numbers[0]
	for _, n := range c.numbers[1:] {
		if n < min {
			min = n
		}
	}
	return min, nil
}

// MaxValue returns the largest block number in the chunk.
func (c NumberChunk) MaxValue() (uint64, error) {
	if c.isRange {
		return c.end, nil
	}
	if len(c.numbers) == 0 {
		return 0, errs.InvalidChunk("empty number chunk")
	}
	max := c.numbers[0]
	for _, n := range c.numbers[1:] {
		if n > max {
			max = n
		}
	}
	return max, nil
}

// Values expands the chunk to its full, ordered list of block numbers.
func (c NumberChunk) Values() []uint64 {
	if !c.isRange {
		return append([]uint64(nil), c.numbers...)
	}
	out := make([]uint64, 0, c.end-c.start+1)
	for n := c.start; n <= c.end; n++ {
		out = append(out, n)
	}
	return out
}

// IsRange reports whether the chunk was built as a contiguous range, as
// opposed to an explicit (possibly sparse) number list.
func (c NumberChunk) IsRange() bool {
	return c.isRange
}

// BlockRange is an inclusive [From, To] pair suitable for a single
// eth_getLogs call.
type BlockRange struct {
	From uint64
	To   uint64
}

// LogFilterRanges expands the chunk into the block ranges a log-fetching
// RPC call should be split across: a Numbers chunk issues one single-block
// range per entry (logs don't support sparse number lists server-side), a
// Range chunk is split into sub-ranges no wider than logRequestSize.
func (c NumberChunk) LogFilterRanges(logRequestSize uint64) []BlockRange {
	if !c.isRange {
		out := make([]BlockRange, 0, len(c.numbers))
		for _, n := range c.numbers {
			out = append(out, BlockRange{From: n, To: n})
		}
		return out
	}
	return RangeToChunks(c.start, c.end+1, logRequestSize)
}

// Align clips a range chunk's boundaries to multiples of chunkSize,
// discarding the partial ends, and reports whether anything remained.
// Number-list chunks pass through unchanged. It mirrors the source
// collector's block-range alignment used by --align.
func (c NumberChunk) Align(chunkSize uint64) (NumberChunk, bool) {
	if !c.isRange {
		return c, true
	}
	start := ((c.start + chunkSize - 1) / chunkSize) * chunkSize
	end := (c.end / chunkSize) * chunkSize
	if end > start {
		return Range(start, end), true
	}
	return NumberChunk{}, false
}

// Stub is the filename fragment identifying this chunk: always
// "<min>_to_<max>", even when the chunk is a single block.
func (c NumberChunk) Stub() (string, error) {
	min, err := c.MinValue()
	if err != nil {
		return "", err
	}
	max, err := c.MaxValue()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s_to_%s", FormatItem(min), FormatItem(max)), nil
}

// RangeToChunks splits the half-open interval [start, end) into
// contiguous sub-ranges of at most chunkSize blocks apiece, the last one
// clipped short. end is exclusive so callers working with inclusive block
// ranges pass end+1.
func RangeToChunks(start, end, chunkSize uint64) []BlockRange {
	if chunkSize == 0 || end <= start {
		return nil
	}
	last := end - 1
	chunks := make([]BlockRange, 0, (last-start)/chunkSize+1)
	chunkStart := start
	for {
		chunkEnd := chunkStart + chunkSize - 1
		if chunkEnd > last {
			chunkEnd = last
		}
		chunks = append(chunks, BlockRange{From: chunkStart, To: chunkEnd})
		if chunkEnd == last {
			break
		}
		chunkStart += chunkSize
	}
	return chunks
}
