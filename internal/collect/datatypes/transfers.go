package datatypes

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/crypto-data/freeze/internal/collect"
	"github.com/crypto-data/freeze/internal/dataframe"
	"github.com/crypto-data/freeze/internal/dimension"
	"github.com/crypto-data/freeze/internal/schema"
	"github.com/crypto-data/freeze/internal/source"
)

// transferSignature is the keccak256 of Transfer(address,address,uint256),
// identical for both the ERC-20 and ERC-721 standards; the two datatypes
// are distinguished by whether a fourth topic (topic3) is present (ERC-721
// indexes tokenId; ERC-20 puts the amount in the data field instead).
var transferSignature = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))

// erc20TransfersCollector and erc721TransfersCollector filter logs by the
// same Transfer topic0, but they are not fused: each issues its own
// eth_getLogs filtered to the Transfer signature, so no RPC call is shared
// between them when both are selected.
type erc20TransfersCollector struct{}

func (erc20TransfersCollector) Extract(ctx context.Context, src *source.Source, p *dimension.Partition) (any, error) {
	return fetchTransferLogs(ctx, src, p)
}

func (erc20TransfersCollector) Transform(f *dataframe.Frame, _ *dimension.Partition, response any) error {
	logs, _ := response.([]types.Log)
	for _, lg := range logs {
		if len(lg.Topics) != 3 || len(lg.Data) != 32 {
			continue // ERC-721: tokenId topic present instead of an amount in data
		}
		value := new(big.Int).SetBytes(lg.Data)
		f.Push("block_number", uint32(lg.BlockNumber))
		f.Push("transaction_hash", lg.TxHash.Bytes())
		f.Push("log_index", uint32(lg.Index))
		f.Push("erc20", lg.Address.Bytes())
		f.Push("from_address", common.BytesToAddress(lg.Topics[1].Bytes()).Bytes())
		f.Push("to_address", common.BytesToAddress(lg.Topics[2].Bytes()).Bytes())
		f.Push("value_binary", value.Bytes())
		f.Push("value_string", value.String())
		f.Push("value_f64", bigIntFloat64(value))
		f.EndRow()
	}
	return nil
}

type erc721TransfersCollector struct{}

func (erc721TransfersCollector) Extract(ctx context.Context, src *source.Source, p *dimension.Partition) (any, error) {
	return fetchTransferLogs(ctx, src, p)
}

func (erc721TransfersCollector) Transform(f *dataframe.Frame, _ *dimension.Partition, response any) error {
	logs, _ := response.([]types.Log)
	for _, lg := range logs {
		if len(lg.Topics) != 4 {
			continue // ERC-20: amount carried in data, not a third indexed topic
		}
		tokenID := new(big.Int).SetBytes(lg.Topics[3].Bytes())
		f.Push("block_number", uint32(lg.BlockNumber))
		f.Push("transaction_hash", lg.TxHash.Bytes())
		f.Push("log_index", uint32(lg.Index))
		f.Push("erc721", lg.Address.Bytes())
		f.Push("from_address", common.BytesToAddress(lg.Topics[1].Bytes()).Bytes())
		f.Push("to_address", common.BytesToAddress(lg.Topics[2].Bytes()).Bytes())
		f.Push("token_id_binary", lg.Topics[3].Bytes())
		f.Push("token_id_string", tokenID.String())
		f.EndRow()
	}
	return nil
}

func fetchTransferLogs(ctx context.Context, src *source.Source, p *dimension.Partition) (any, error) {
	from, err := p.Blocks.MinValue()
	if err != nil {
		return nil, err
	}
	to, err := p.Blocks.MaxValue()
	if err != nil {
		return nil, err
	}
	var all []types.Log
	for _, r := range p.Blocks.LogFilterRanges(src.InnerRequestSize) {
		logs, err := src.Fetcher.Logs(ctx, maxU64(r.From, from), minU64(r.To, to), addressFilter(p), [][]common.Hash{{transferSignature}})
		if err != nil {
			return nil, err
		}
		all = append(all, logs...)
	}
	return all, nil
}

func maxU64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}

func minU64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

func init() {
	collect.Register(&collect.Collector{Datatype: schema.Erc20Transfers, ByRangeImpl: erc20TransfersCollector{}})
	collect.Register(&collect.Collector{Datatype: schema.Erc721Transfers, ByRangeImpl: erc721TransfersCollector{}})
}
