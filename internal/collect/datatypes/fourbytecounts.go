package datatypes

import (
	"context"
	"encoding/hex"

	"github.com/crypto-data/freeze/internal/collect"
	"github.com/crypto-data/freeze/internal/dataframe"
	"github.com/crypto-data/freeze/internal/dimension"
	"github.com/crypto-data/freeze/internal/schema"
	"github.com/crypto-data/freeze/internal/source"
)

// fourByteCountsCollector tallies how many transactions in a block begin
// with each 4-byte function selector, reusing the same full-transaction
// block fetch transactionsCollector uses. Only top-level transaction
// input is counted: internal calls are not traced, and size is always 4.
type fourByteCountsCollector struct{}

func (fourByteCountsCollector) Extract(ctx context.Context, src *source.Source, _ *dimension.Partition, blockNumber uint64) (any, error) {
	return src.Fetcher.BlockByNumber(ctx, blockNumber, true)
}

func (fourByteCountsCollector) Transform(f *dataframe.Frame, _ *dimension.Partition, blockNumber uint64, response any) error {
	block := asMap(response)
	counts := make(map[string]uint64)
	for _, tx := range asSlice(block["transactions"]) {
		input := hexBytes(tx, "input")
		if len(input) < 4 {
			continue
		}
		sig := "0x" + hex.EncodeToString(input[:4])
		counts[sig]++
	}
	for sig, count := range counts {
		f.Push("block_number", uint32(blockNumber))
		f.Push("signature", sig)
		f.Push("size", uint32(4))
		f.Push("count", count)
		f.EndRow()
	}
	return nil
}

func init() {
	collect.Register(&collect.Collector{Datatype: schema.FourByteCounts, ByBlockImpl: fourByteCountsCollector{}})
}
