package planner

import (
	"context"
	"testing"

	"github.com/crypto-data/freeze/internal/chunk"
	"github.com/crypto-data/freeze/internal/collect/fused"
	"github.com/crypto-data/freeze/internal/schema"
)

func TestSplitBlocksRangeIntoChunks(t *testing.T) {
	r := chunk.Range(0, 9)
	chunks, err := splitBlocks(&r, 4, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	total := uint64(0)
	for _, c := range chunks {
		total += c.Size()
	}
	if total != 10 {
		t.Fatalf("expected 10 blocks total, got %d", total)
	}
}

func TestSplitBlocksNumbersIntoChunks(t *testing.T) {
	nc := chunk.Numbers([]uint64{1, 2, 3, 4, 5})
	chunks, err := splitBlocks(&nc, 2, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
}

func TestSplitBlocksNilIsSinglePassthrough(t *testing.T) {
	chunks, err := splitBlocks(nil, 10, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected a single empty chunk, got %d", len(chunks))
	}
}

func TestSplitBlocksAlignDropsPartialEnds(t *testing.T) {
	r := chunk.Range(3, 22)
	chunks, err := splitBlocks(&r, 10, true)
	if err != nil {
		t.Fatal(err)
	}
	min, _ := chunks[0].MinValue()
	if min != 10 {
		t.Fatalf("expected alignment to drop to block 10, got %d", min)
	}
}

func TestGroupDatatypesNoFusionWithoutTwoMembers(t *testing.T) {
	selected := map[schema.Datatype]bool{schema.Blocks: true}
	groups := groupDatatypes([]schema.Datatype{schema.Blocks}, selected)
	if len(groups) != 1 || groups[0].fused != nil {
		t.Fatalf("expected a single unfused group, got %+v", groups)
	}
}

func TestGroupDatatypesFusesStateDiffMembers(t *testing.T) {
	selected := map[schema.Datatype]bool{schema.BalanceDiffs: true, schema.CodeDiffs: true}
	groups := groupDatatypes([]schema.Datatype{schema.BalanceDiffs, schema.CodeDiffs}, selected)
	if len(groups) != 1 {
		t.Fatalf("expected a single fused group, got %d groups", len(groups))
	}
	if groups[0].fused == nil {
		t.Fatal("expected the group to carry a MetaCollector")
	}
}

func TestPlanRejectsEmptyDatatypes(t *testing.T) {
	if _, err := Plan(context.Background(), nil, Request{}); err == nil {
		t.Fatal("expected an error for no datatypes selected")
	}
}

func TestPlanProducesOnePartitionPerBlockChunk(t *testing.T) {
	blocks := chunk.Range(0, 19)
	work, err := Plan(context.Background(), nil, Request{
		Datatypes: []schema.Datatype{schema.Blocks},
		Blocks:    &blocks,
		ChunkSize: 10,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(work) != 2 {
		t.Fatalf("expected 2 partitions, got %d", len(work))
	}
}

func TestPlanSelectsGethStateDiffBackendWhenRequested(t *testing.T) {
	blocks := chunk.Range(0, 9)
	work, err := Plan(context.Background(), nil, Request{
		Datatypes:    []schema.Datatype{schema.BalanceDiffs, schema.CodeDiffs},
		Blocks:       &blocks,
		ChunkSize:    10,
		TraceBackend: "geth",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(work) != 1 || work[0].Fused == nil {
		t.Fatalf("expected a single fused partition, got %+v", work)
	}
	if _, ok := work[0].Fused.(fused.GethStateDiffs); !ok {
		t.Fatalf("expected the geth-backed state diff collector, got %T", work[0].Fused)
	}
}

func TestPlanValidatesRequiredDimensions(t *testing.T) {
	_, err := Plan(context.Background(), nil, Request{
		Datatypes: []schema.Datatype{schema.Erc20Transfers},
	})
	if err == nil {
		t.Fatal("expected a validation error for Erc20Transfers without a block range")
	}
}
