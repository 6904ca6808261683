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

type addressBalance struct {
	address common.Address
	balance *big.Int
}

type addressNonce struct {
	address common.Address
	nonce   uint64
}

type addressCode struct {
	address common.Address
	code    []byte
}

// balancesCollector fetches one eth_getBalance per address in the
// partition's address dimension, concurrently, for a single block.
type balancesCollector struct{}

func (balancesCollector) Extract(ctx context.Context, src *source.Source, p *dimension.Partition, blockNumber uint64) (any, error) {
	addrs := p.AddressList()
	out := make([]addressBalance, len(addrs))
	g, gctx := errgroup.WithContext(ctx)
	for i, a := range addrs {
		i, a := i, common.BytesToAddress(a)
		g.Go(func() error {
			bal, err := src.Fetcher.Balance(gctx, a, blockNumber)
			if err != nil {
				return err
			}
			out[i] = addressBalance{address: a, balance: bal}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (balancesCollector) Transform(f *dataframe.Frame, _ *dimension.Partition, blockNumber uint64, response any) error {
	rows, _ := response.([]addressBalance)
	for _, r := range rows {
		f.Push("block_number", uint32(blockNumber))
		f.Push("address", r.address.Bytes())
		f.Push("balance_binary", r.balance.Bytes())
		f.Push("balance_string", r.balance.String())
		f.Push("balance_f64", bigIntFloat64(r.balance))
		f.EndRow()
	}
	return nil
}

// noncesCollector mirrors balancesCollector for eth_getTransactionCount.
type noncesCollector struct{}

func (noncesCollector) Extract(ctx context.Context, src *source.Source, p *dimension.Partition, blockNumber uint64) (any, error) {
	addrs := p.AddressList()
	out := make([]addressNonce, len(addrs))
	g, gctx := errgroup.WithContext(ctx)
	for i, a := range addrs {
		i, a := i, common.BytesToAddress(a)
		g.Go(func() error {
			n, err := src.Fetcher.Nonce(gctx, a, blockNumber)
			if err != nil {
				return err
			}
			out[i] = addressNonce{address: a, nonce: n}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (noncesCollector) Transform(f *dataframe.Frame, _ *dimension.Partition, blockNumber uint64, response any) error {
	rows, _ := response.([]addressNonce)
	for _, r := range rows {
		f.Push("block_number", uint32(blockNumber))
		f.Push("address", r.address.Bytes())
		f.Push("nonce", r.nonce)
		f.EndRow()
	}
	return nil
}

// codesCollector mirrors balancesCollector for eth_getCode.
type codesCollector struct{}

func (codesCollector) Extract(ctx context.Context, src *source.Source, p *dimension.Partition, blockNumber uint64) (any, error) {
	addrs := p.AddressList()
	out := make([]addressCode, len(addrs))
	g, gctx := errgroup.WithContext(ctx)
	for i, a := range addrs {
		i, a := i, common.BytesToAddress(a)
		g.Go(func() error {
			code, err := src.Fetcher.Code(gctx, a, blockNumber)
			if err != nil {
				return err
			}
			out[i] = addressCode{address: a, code: code}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (codesCollector) Transform(f *dataframe.Frame, _ *dimension.Partition, blockNumber uint64, response any) error {
	rows, _ := response.([]addressCode)
	for _, r := range rows {
		f.Push("block_number", uint32(blockNumber))
		f.Push("address", r.address.Bytes())
		f.Push("code", r.code)
		f.EndRow()
	}
	return nil
}

func init() {
	collect.Register(&collect.Collector{Datatype: schema.Balances, ByBlockImpl: balancesCollector{}})
	collect.Register(&collect.Collector{Datatype: schema.Nonces, ByBlockImpl: noncesCollector{}})
	collect.Register(&collect.Collector{Datatype: schema.Codes, ByBlockImpl: codesCollector{}})
}
