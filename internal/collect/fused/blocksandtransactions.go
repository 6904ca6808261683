package fused

import (
	"context"

	"github.com/crypto-data/freeze/internal/collect/datatypes"
	"github.com/crypto-data/freeze/internal/dataframe"
	"github.com/crypto-data/freeze/internal/dimension"
	"github.com/crypto-data/freeze/internal/schema"
	"github.com/crypto-data/freeze/internal/source"
)

// blocksAndTransactions shares the single eth_getBlockByNumber(fullTx=true)
// call between Blocks and Transactions when both are requested, instead of
// each issuing its own fetch (Blocks normally asks for fullTx=false, but
// the full-transaction response is a superset and decodes identically for
// the header columns).
type blocksAndTransactions struct{}

func (blocksAndTransactions) Members() []schema.Datatype {
	return []schema.Datatype{schema.Blocks, schema.Transactions}
}

func (blocksAndTransactions) Extract(ctx context.Context, src *source.Source, _ *dimension.Partition, blockNumber uint64) (any, error) {
	return src.Fetcher.BlockByNumber(ctx, blockNumber, true)
}

func (blocksAndTransactions) Transform(frames map[schema.Datatype]*dataframe.Frame, p *dimension.Partition, blockNumber uint64, response any) error {
	if f := frames[schema.Blocks]; f != nil {
		if err := datatypes.TransformBlockHeader(f, blockNumber, response); err != nil {
			return err
		}
	}
	if f := frames[schema.Transactions]; f != nil {
		if err := datatypes.TransformBlockTransactions(f, blockNumber, response); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	register(blocksAndTransactions{})
}
