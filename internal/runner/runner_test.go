package runner

import (
	"context"
	"testing"

	"github.com/crypto-data/freeze/internal/chunk"
	"github.com/crypto-data/freeze/internal/collect"
	"github.com/crypto-data/freeze/internal/dataframe"
	"github.com/crypto-data/freeze/internal/dimension"
	"github.com/crypto-data/freeze/internal/errs"
	"github.com/crypto-data/freeze/internal/planner"
	"github.com/crypto-data/freeze/internal/schema"
	"github.com/crypto-data/freeze/internal/source"
)

type fakeByBlock struct {
	fail map[uint64]bool
}

func (f fakeByBlock) Extract(_ context.Context, _ *source.Source, _ *dimension.Partition, blockNumber uint64) (any, error) {
	if f.fail[blockNumber] {
		return nil, errs.RPC(nil)
	}
	return blockNumber, nil
}

func (fakeByBlock) Transform(fr *dataframe.Frame, _ *dimension.Partition, blockNumber uint64, response any) error {
	fr.Push("block_number", response.(uint64))
	fr.EndRow()
	return nil
}

func blocksTable(t *testing.T) *schema.Table {
	t.Helper()
	tbl, err := schema.Resolve(schema.Blocks, nil, nil, schema.EncodingHex)
	if err != nil {
		t.Fatal(err)
	}
	return tbl
}

func TestCollectSingleByBlockHappyPath(t *testing.T) {
	collect.Register(&collect.Collector{Datatype: schema.Blocks, ByBlockImpl: fakeByBlock{}})
	blocks := chunk.Range(1, 3)
	w := planner.Work{Datatypes: []schema.Datatype{schema.Blocks}, Partition: &dimension.Partition{Blocks: &blocks}}
	frames, err := CollectPartition(context.Background(), &source.Source{}, w, map[schema.Datatype]*schema.Table{schema.Blocks: blocksTable(t)})
	if err != nil {
		t.Fatal(err)
	}
	if frames[schema.Blocks].NRows() != 3 {
		t.Fatalf("expected 3 rows, got %d", frames[schema.Blocks].NRows())
	}
}

func TestCollectSingleByBlockAbortsOnStrictError(t *testing.T) {
	collect.Register(&collect.Collector{Datatype: schema.Blocks, ByBlockImpl: fakeByBlock{fail: map[uint64]bool{2: true}}})
	blocks := chunk.Range(1, 3)
	w := planner.Work{Datatypes: []schema.Datatype{schema.Blocks}, Partition: &dimension.Partition{Blocks: &blocks}}
	_, err := CollectPartition(context.Background(), &source.Source{}, w, map[schema.Datatype]*schema.Table{schema.Blocks: blocksTable(t)})
	if err == nil {
		t.Fatal("expected an error from the failing block")
	}
}

func TestCollectSingleByBlockLenientSkipsFailure(t *testing.T) {
	collect.Register(&collect.Collector{Datatype: schema.Erc20Metadata, ByBlockImpl: fakeByBlock{fail: map[uint64]bool{2: true}}, Lenient: true})
	blocks := chunk.Range(1, 3)
	w := planner.Work{Datatypes: []schema.Datatype{schema.Erc20Metadata}, Partition: &dimension.Partition{Blocks: &blocks}}
	tbl, err := schema.Resolve(schema.Erc20Metadata, nil, nil, schema.EncodingHex)
	if err != nil {
		t.Fatal(err)
	}
	frames, err := CollectPartition(context.Background(), &source.Source{}, w, map[schema.Datatype]*schema.Table{schema.Erc20Metadata: tbl})
	if err != nil {
		t.Fatal(err)
	}
	if frames[schema.Erc20Metadata].NRows() != 2 {
		t.Fatalf("expected 2 surviving rows, got %d", frames[schema.Erc20Metadata].NRows())
	}
}

func TestCollectPartitionMissingTableErrors(t *testing.T) {
	blocks := chunk.Range(1, 1)
	w := planner.Work{Datatypes: []schema.Datatype{schema.Blocks}, Partition: &dimension.Partition{Blocks: &blocks}}
	if _, err := CollectPartition(context.Background(), &source.Source{}, w, map[schema.Datatype]*schema.Table{}); err == nil {
		t.Fatal("expected an error for a missing table")
	}
}
