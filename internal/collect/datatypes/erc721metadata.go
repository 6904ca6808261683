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

type erc721MetadataResult struct {
	contract common.Address
	name     string
	symbol   string
	ok       bool
}

// erc721MetadataCollector mirrors erc20MetadataCollector but skips
// decimals(), which ERC-721 doesn't define.
type erc721MetadataCollector struct{}

func (erc721MetadataCollector) Extract(ctx context.Context, src *source.Source, p *dimension.Partition, blockNumber uint64) (any, error) {
	contracts := p.ContractList()
	out := make([]erc721MetadataResult, len(contracts))
	g, gctx := errgroup.WithContext(ctx)
	for i, c := range contracts {
		i, c := i, common.BytesToAddress(c)
		g.Go(func() error {
			name, errName := src.Fetcher.Call(gctx, c, nameSelector, blockNumber)
			symbol, errSymbol := src.Fetcher.Call(gctx, c, symbolSelector, blockNumber)
			if errName != nil || errSymbol != nil {
				out[i] = erc721MetadataResult{contract: c, ok: false}
				return nil
			}
			out[i] = erc721MetadataResult{
				contract: c,
				name:     decodeABIString(name),
				symbol:   decodeABIString(symbol),
				ok:       true,
			}
			return nil
		})
	}
	_ = g.Wait()
	return out, nil
}

func (erc721MetadataCollector) Transform(f *dataframe.Frame, _ *dimension.Partition, blockNumber uint64, response any) error {
	rows, _ := response.([]erc721MetadataResult)
	for _, r := range rows {
		f.Push("block_number", uint32(blockNumber))
		f.Push("erc721", r.contract.Bytes())
		if r.ok {
			f.Push("name", r.name)
			f.Push("symbol", r.symbol)
		} else {
			f.Push("name", nil)
			f.Push("symbol", nil)
		}
		f.EndRow()
	}
	return nil
}

func init() {
	collect.Register(&collect.Collector{Datatype: schema.Erc721Metadata, ByBlockImpl: erc721MetadataCollector{}, Lenient: true})
}
