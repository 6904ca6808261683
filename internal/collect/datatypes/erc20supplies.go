package datatypes

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"github.com/crypto-data/freeze/internal/collect"
	"github.com/crypto-data/freeze/internal/dataframe"
	"github.com/crypto-data/freeze/internal/dimension"
	"github.com/crypto-data/freeze/internal/schema"
	"github.com/crypto-data/freeze/internal/source"
)

var totalSupplySelector = selector4("totalSupply()")

type supplyResult struct {
	contract common.Address
	supply   *big.Int
	ok       bool
}

// erc20SuppliesCollector issues one eth_call per contract for
// totalSupply(); a revert degrades to a null row under the lenient policy.
type erc20SuppliesCollector struct{}

func (erc20SuppliesCollector) Extract(ctx context.Context, src *source.Source, p *dimension.Partition, blockNumber uint64) (any, error) {
	contracts := p.ContractList()
	out := make([]supplyResult, len(contracts))
	g, gctx := errgroup.WithContext(ctx)
	for i, c := range contracts {
		i, c := i, common.BytesToAddress(c)
		g.Go(func() error {
			output, err := src.Fetcher.Call(gctx, c, totalSupplySelector, blockNumber)
			if err != nil || len(output) < 32 {
				out[i] = supplyResult{contract: c, ok: false}
				return nil
			}
			out[i] = supplyResult{contract: c, supply: new(big.Int).SetBytes(output[len(output)-32:]), ok: true}
			return nil
		})
	}
	_ = g.Wait()
	return out, nil
}

func (erc20SuppliesCollector) Transform(f *dataframe.Frame, _ *dimension.Partition, blockNumber uint64, response any) error {
	rows, _ := response.([]supplyResult)
	for _, r := range rows {
		f.Push("block_number", uint32(blockNumber))
		f.Push("erc20", r.contract.Bytes())
		if r.ok {
			f.Push("total_supply_binary", r.supply.Bytes())
			f.Push("total_supply_string", r.supply.String())
			f.Push("total_supply_f64", bigIntFloat64(r.supply))
		} else {
			f.Push("total_supply_binary", nil)
			f.Push("total_supply_string", nil)
			f.Push("total_supply_f64", nil)
		}
		f.EndRow()
	}
	return nil
}

func init() {
	collect.Register(&collect.Collector{Datatype: schema.Erc20Supplies, ByBlockImpl: erc20SuppliesCollector{}, Lenient: true})
}
