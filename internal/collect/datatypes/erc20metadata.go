package datatypes

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/sync/errgroup"

	"github.com/crypto-data/freeze/internal/collect"
	"github.com/crypto-data/freeze/internal/dataframe"
	"github.com/crypto-data/freeze/internal/dimension"
	"github.com/crypto-data/freeze/internal/schema"
	"github.com/crypto-data/freeze/internal/source"
)

// selector4 returns the first 4 bytes of keccak256(signature), the
// eth_call dispatch selector for a zero-argument view function.
func selector4(signature string) []byte {
	return crypto.Keccak256([]byte(signature))[:4]
}

var (
	nameSelector     = selector4("name()")
	symbolSelector   = selector4("symbol()")
	decimalsSelector = selector4("decimals()")
)

type erc20MetadataResult struct {
	contract common.Address
	name     string
	symbol   string
	decimals uint32
	ok       bool
}

// erc20MetadataCollector issues three eth_call requests per contract
// (name, symbol, decimals); a contract that doesn't implement the
// standard degrades to a null row under this datatype's lenient policy
// rather than failing the partition.
type erc20MetadataCollector struct{}

func (erc20MetadataCollector) Extract(ctx context.Context, src *source.Source, p *dimension.Partition, blockNumber uint64) (any, error) {
	contracts := p.ContractList()
	out := make([]erc20MetadataResult, len(contracts))
	g, gctx := errgroup.WithContext(ctx)
	for i, c := range contracts {
		i, c := i, common.BytesToAddress(c)
		g.Go(func() error {
			out[i] = fetchErc20Metadata(gctx, src, c, blockNumber)
			return nil
		})
	}
	_ = g.Wait() // individual failures are absorbed into ok=false rows, never bubbled up
	return out, nil
}

func fetchErc20Metadata(ctx context.Context, src *source.Source, contract common.Address, blockNumber uint64) erc20MetadataResult {
	name, errName := src.Fetcher.Call(ctx, contract, nameSelector, blockNumber)
	symbol, errSymbol := src.Fetcher.Call(ctx, contract, symbolSelector, blockNumber)
	decimals, errDecimals := src.Fetcher.Call(ctx, contract, decimalsSelector, blockNumber)
	if errName != nil || errSymbol != nil || errDecimals != nil {
		return erc20MetadataResult{contract: contract, ok: false}
	}
	return erc20MetadataResult{
		contract: contract,
		name:     decodeABIString(name),
		symbol:   decodeABIString(symbol),
		decimals: decodeABIUint32(decimals),
		ok:       true,
	}
}

func (erc20MetadataCollector) Transform(f *dataframe.Frame, _ *dimension.Partition, blockNumber uint64, response any) error {
	rows, _ := response.([]erc20MetadataResult)
	for _, r := range rows {
		f.Push("block_number", uint32(blockNumber))
		f.Push("erc20", r.contract.Bytes())
		if r.ok {
			f.Push("name", r.name)
			f.Push("symbol", r.symbol)
			f.Push("decimals", r.decimals)
		} else {
			f.Push("name", nil)
			f.Push("symbol", nil)
			f.Push("decimals", nil)
		}
		f.EndRow()
	}
	return nil
}

func init() {
	collect.Register(&collect.Collector{Datatype: schema.Erc20Metadata, ByBlockImpl: erc20MetadataCollector{}, Lenient: true})
}
