package dataframe

import (
	"testing"

	"github.com/crypto-data/freeze/internal/schema"
)

func blocksTable(t *testing.T) *schema.Table {
	t.Helper()
	table, err := schema.Resolve(schema.Blocks, []string{"block_number", "hash"}, nil, schema.EncodingBinary)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	return table
}

func TestFramePushSkipsUnprojectedColumn(t *testing.T) {
	f := New(blocksTable(t))
	f.Push("block_number", uint32(1))
	f.Push("parent_hash", []byte{0x01}) // not projected
	f.EndRow()

	if f.Column("parent_hash") != nil {
		t.Fatal("expected unprojected column to be absent")
	}
	if got := f.Column("block_number").Values[0]; got != uint32(1) {
		t.Fatalf("block_number = %v", got)
	}
}

func TestFrameNRowsTracksEndRowNotPushes(t *testing.T) {
	f := New(blocksTable(t))
	f.Push("block_number", uint32(1))
	f.EndRow()
	f.EndRow() // row with no pushes at all
	if f.NRows() != 2 {
		t.Fatalf("NRows = %d, want 2", f.NRows())
	}
}

func TestFrameValidateDetectsMismatchedColumnLength(t *testing.T) {
	f := New(blocksTable(t))
	f.Push("block_number", uint32(1))
	f.EndRow()
	f.Push("block_number", uint32(2))
	// second row never pushed "hash", simulating a bug: only "block_number" advanced.
	f.columns["block_number"].Values = append(f.columns["block_number"].Values, uint32(3))
	f.EndRow()
	if err := f.Validate(); err == nil {
		t.Fatal("expected validation error for mismatched column length")
	}
}

func TestSortedRowIndicesStableOnEqualKeys(t *testing.T) {
	table, err := schema.Resolve(schema.Logs, []string{"block_number", "log_index"}, nil, schema.EncodingBinary)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	f := New(table)
	rows := []struct {
		block uint32
		log   uint32
	}{
		{2, 0}, {1, 5}, {1, 2}, {2, 1},
	}
	for _, r := range rows {
		f.Push("block_number", r.block)
		f.Push("log_index", r.log)
		f.EndRow()
	}
	idx := f.SortedRowIndices()
	want := []int{2, 1, 0, 3}
	for i, v := range want {
		if idx[i] != v {
			t.Fatalf("idx = %v, want %v", idx, want)
		}
	}
}
