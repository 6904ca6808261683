package chunk

import "testing"

func TestRangeToChunksClipsLastChunk(t *testing.T) {
	chunks := RangeToChunks(0, 25, 10)
	want := []BlockRange{{0, 9}, {10, 19}, {20, 24}}
	if len(chunks) != len(want) {
		t.Fatalf("got %d chunks, want %d: %v", len(chunks), len(want), chunks)
	}
	for i, c := range chunks {
		if c != want[i] {
			t.Fatalf("chunk %d = %+v, want %+v", i, c, want[i])
		}
	}
}

func TestRangeToChunksExactMultiple(t *testing.T) {
	chunks := RangeToChunks(0, 20, 10)
	want := []BlockRange{{0, 9}, {10, 19}}
	if len(chunks) != len(want) {
		t.Fatalf("got %v", chunks)
	}
}

func TestRangeToChunksEmptyRange(t *testing.T) {
	if chunks := RangeToChunks(5, 5, 10); chunks != nil {
		t.Fatalf("expected no chunks for empty range, got %v", chunks)
	}
}

func TestNumberChunkRangeValues(t *testing.T) {
	c := Range(10, 13)
	if c.Size() != 4 {
		t.Fatalf("size = %d, want 4", c.Size())
	}
	values := c.Values()
	want := []uint64{10, 11, 12, 13}
	if len(values) != len(want) {
		t.Fatalf("values = %v", values)
	}
	for i, v := range values {
		if v != want[i] {
			t.Fatalf("values[%d] = %d, want %d", i, v, want[i])
		}
	}
}

func TestNumberChunkNumbersMinMax(t *testing.T) {
	c := Numbers([]uint64{50, 10, 30})
	min, err := c.MinValue()
	if err != nil || min != 10 {
		t.Fatalf("min = %d, err = %v", min, err)
	}
	max, err := c.MaxValue()
	if err != nil || max != 50 {
		t.Fatalf("max = %d, err = %v", max, err)
	}
}

func TestNumberChunkAlign(t *testing.T) {
	aligned, ok := Range(5, 24).Align(10)
	if !ok {
		t.Fatal("expected alignment to succeed")
	}
	if aligned.start != 10 || aligned.end != 20 {
		t.Fatalf("aligned = %+v", aligned)
	}
}

func TestNumberChunkAlignEmptyResult(t *testing.T) {
	_, ok := Range(1, 9).Align(10)
	if ok {
		t.Fatal("expected no surviving range after alignment")
	}
}

func TestNumberChunkAlignPassthroughForNumbers(t *testing.T) {
	c := Numbers([]uint64{3, 7, 11})
	aligned, ok := c.Align(10)
	if !ok {
		t.Fatal("expected number-list chunk to pass through alignment")
	}
	if aligned.Size() != 3 {
		t.Fatalf("aligned size = %d", aligned.Size())
	}
}

func TestStubSingleBlock(t *testing.T) {
	stub, err := Range(42, 42).Stub()
	if err != nil {
		t.Fatalf("stub: %v", err)
	}
	if stub != "00000042_to_00000042" {
		t.Fatalf("stub = %q", stub)
	}
}

func TestStubRange(t *testing.T) {
	stub, err := Range(1, 100).Stub()
	if err != nil {
		t.Fatalf("stub: %v", err)
	}
	if stub != "00000001_to_00000100" {
		t.Fatalf("stub = %q", stub)
	}
}

func TestLogFilterRangesSplitsWideRange(t *testing.T) {
	ranges := Range(0, 999).LogFilterRanges(500)
	if len(ranges) != 2 {
		t.Fatalf("expected 2 sub-ranges, got %v", ranges)
	}
	if ranges[0] != (BlockRange{0, 499}) || ranges[1] != (BlockRange{500, 999}) {
		t.Fatalf("ranges = %v", ranges)
	}
}

func TestLogFilterRangesNumbersOneRangePerEntry(t *testing.T) {
	ranges := Numbers([]uint64{1, 2, 3}).LogFilterRanges(500)
	if len(ranges) != 3 {
		t.Fatalf("expected one range per number, got %v", ranges)
	}
	for i, r := range ranges {
		want := uint64(i + 1)
		if r.From != want || r.To != want {
			t.Fatalf("range %d = %+v", i, r)
		}
	}
}
