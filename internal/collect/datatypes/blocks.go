package datatypes

import (
	"context"

	"github.com/crypto-data/freeze/internal/collect"
	"github.com/crypto-data/freeze/internal/dataframe"
	"github.com/crypto-data/freeze/internal/dimension"
	"github.com/crypto-data/freeze/internal/schema"
	"github.com/crypto-data/freeze/internal/source"
)

// blocksCollector implements Blocks: one eth_getBlockByNumber(fullTx=false)
// call per block number, transformed into the header columns.
type blocksCollector struct{}

func (blocksCollector) Extract(ctx context.Context, src *source.Source, _ *dimension.Partition, blockNumber uint64) (any, error) {
	return src.Fetcher.BlockByNumber(ctx, blockNumber, false)
}

func (blocksCollector) Transform(f *dataframe.Frame, _ *dimension.Partition, blockNumber uint64, response any) error {
	return TransformBlockHeader(f, blockNumber, response)
}

// TransformBlockHeader decodes a block-shaped response into the Blocks
// frame. Exported so fused.blocksAndTransactions can route its shared
// eth_getBlockByNumber response into this frame without re-implementing
// the decode.
func TransformBlockHeader(f *dataframe.Frame, _ uint64, response any) error {
	m := asMap(response)
	f.Push("block_number", hexUint32(m, "number"))
	f.Push("hash", hexBytes(m, "hash"))
	f.Push("parent_hash", hexBytes(m, "parentHash"))
	f.Push("author", hexBytes(m, "miner"))
	f.Push("state_root", hexBytes(m, "stateRoot"))
	f.Push("transactions_root", hexBytes(m, "transactionsRoot"))
	f.Push("receipts_root", hexBytes(m, "receiptsRoot"))
	f.Push("gas_used", hexUint64(m, "gasUsed"))
	f.Push("extra_data", hexBytes(m, "extraData"))
	f.Push("logs_bloom", hexBytes(m, "logsBloom"))
	f.Push("timestamp", hexUint32(m, "timestamp"))
	f.Push("total_difficulty", hexBigInt(m, "totalDifficulty"))
	f.Push("size", hexUint32(m, "size"))
	f.Push("base_fee_per_gas", hexUint64(m, "baseFeePerGas"))
	f.EndRow()
	return nil
}

func init() {
	collect.Register(&collect.Collector{Datatype: schema.Blocks, ByBlockImpl: blocksCollector{}})
}
