package datatypes

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"github.com/crypto-data/freeze/internal/collect"
	"github.com/crypto-data/freeze/internal/dataframe"
	"github.com/crypto-data/freeze/internal/dimension"
	"github.com/crypto-data/freeze/internal/schema"
	"github.com/crypto-data/freeze/internal/source"
)

type callResult struct {
	contract common.Address
	input    []byte
	output   []byte
	err      error
}

// ethCallsCollector runs eth_call against every (contract, call data) pair
// in the partition's cross product for a single block. A call that
// reverts is recorded with a nil output rather than failing the whole
// partition, matching the datatype's lenient retry policy.
type ethCallsCollector struct{}

func (ethCallsCollector) Extract(ctx context.Context, src *source.Source, p *dimension.Partition, blockNumber uint64) (any, error) {
	contracts := p.ContractList()
	calls := p.CallDataList()
	g, gctx := errgroup.WithContext(ctx)
	collected := make([][]callResult, len(contracts))
	for i, c := range contracts {
		i, c := i, common.BytesToAddress(c)
		g.Go(func() error {
			rows := make([]callResult, 0, len(calls))
			for _, data := range calls {
				output, err := src.Fetcher.Call(gctx, c, data, blockNumber)
				rows = append(rows, callResult{contract: c, input: data, output: output, err: err})
			}
			collected[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out := make([]callResult, 0, len(contracts)*len(calls))
	for _, rows := range collected {
		out = append(out, rows...)
	}
	return out, nil
}

func (ethCallsCollector) Transform(f *dataframe.Frame, _ *dimension.Partition, blockNumber uint64, response any) error {
	rows, _ := response.([]callResult)
	for _, r := range rows {
		f.Push("block_number", uint32(blockNumber))
		f.Push("contract_address", r.contract.Bytes())
		f.Push("call_data", r.input)
		f.Push("call_data_hash", keccak256(r.input))
		if r.err == nil {
			f.Push("output_data", r.output)
			f.Push("output_hash", keccak256(r.output))
		} else {
			f.Push("output_data", nil)
			f.Push("output_hash", nil)
		}
		f.EndRow()
	}
	return nil
}

func init() {
	collect.Register(&collect.Collector{Datatype: schema.EthCalls, ByBlockImpl: ethCallsCollector{}, Lenient: true})
}
