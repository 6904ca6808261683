package dimension

import (
	"testing"

	"github.com/crypto-data/freeze/internal/chunk"
	"github.com/crypto-data/freeze/internal/schema"
)

func TestValidateMissingRequiredDim(t *testing.T) {
	p := &Partition{}
	d := &schema.Descriptor{Name: "blocks", RequiredDims: []schema.Dimension{schema.DimBlockNumber}}
	if err := p.Validate(d); err == nil {
		t.Fatal("expected error for missing block dimension")
	}
}

func TestValidateBlockRangeRejectsNumberList(t *testing.T) {
	numbers := chunk.Numbers([]uint64{1, 3, 5})
	p := &Partition{Blocks: &numbers}
	d := &schema.Descriptor{Name: "logs", RequiredDims: []schema.Dimension{schema.DimBlockRange}}
	if err := p.Validate(d); err == nil {
		t.Fatal("expected error for non-contiguous block range")
	}
}

func TestValidateBlockRangeAcceptsRange(t *testing.T) {
	r := chunk.Range(1, 100)
	p := &Partition{Blocks: &r}
	d := &schema.Descriptor{Name: "logs", RequiredDims: []schema.Dimension{schema.DimBlockRange}}
	if err := p.Validate(d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStubPrefersBlocks(t *testing.T) {
	r := chunk.Range(1, 2)
	txs := chunk.NewBinaryChunk([][]byte{{0x01, 0x02, 0x03, 0x04}})
	p := &Partition{Blocks: &r, Transactions: &txs}
	stub, err := p.Stub()
	if err != nil {
		t.Fatalf("stub: %v", err)
	}
	if stub != "00000001_to_00000002" {
		t.Fatalf("stub = %q", stub)
	}
}

func TestStubFallsBackToTransactions(t *testing.T) {
	txs := chunk.NewBinaryChunk([][]byte{{0xaa, 0xbb, 0xcc, 0xdd}})
	p := &Partition{Transactions: &txs}
	stub, err := p.Stub()
	if err != nil {
		t.Fatalf("stub: %v", err)
	}
	if stub != "0xaabbccdd_to_0xaabbccdd" {
		t.Fatalf("stub = %q", stub)
	}
}

func TestStubErrorsWithNoDimensions(t *testing.T) {
	p := &Partition{}
	if _, err := p.Stub(); err == nil {
		t.Fatal("expected error with no dimensions set")
	}
}
