package datatypes

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/crypto-data/freeze/internal/chunk"
	"github.com/crypto-data/freeze/internal/collect"
	"github.com/crypto-data/freeze/internal/dataframe"
	"github.com/crypto-data/freeze/internal/dimension"
	"github.com/crypto-data/freeze/internal/schema"
	"github.com/crypto-data/freeze/internal/source"
)

// logsCollector implements Logs: one eth_getLogs call per sub-range the
// partition's block range splits into (capped at src.InnerRequestSize
// blocks per call), filtered by whatever address/topic dimensions were
// supplied.
type logsCollector struct{}

func (logsCollector) Extract(ctx context.Context, src *source.Source, p *dimension.Partition) (any, error) {
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
		if r.From < from {
			r.From = from
		}
		if r.To > to {
			r.To = to
		}
		logs, err := src.Fetcher.Logs(ctx, r.From, r.To, addressFilter(p), topicFilter(p))
		if err != nil {
			return nil, err
		}
		all = append(all, logs...)
	}
	return all, nil
}

func (logsCollector) Transform(f *dataframe.Frame, _ *dimension.Partition, response any) error {
	logs, _ := response.([]types.Log)
	decoder := f.Table.LogDecoder
	for _, lg := range logs {
		f.Push("block_number", uint32(lg.BlockNumber))
		f.Push("transaction_index", uint32(lg.TxIndex))
		f.Push("log_index", uint32(lg.Index))
		f.Push("transaction_hash", lg.TxHash.Bytes())
		f.Push("address", lg.Address.Bytes())
		var topics [][]byte
		for i := 0; i < 4; i++ {
			col := fmt.Sprintf("topic%d", i)
			if i < len(lg.Topics) {
				topics = append(topics, lg.Topics[i].Bytes())
				f.Push(col, lg.Topics[i].Bytes())
			} else {
				f.Push(col, nil)
			}
		}
		f.Push("data", lg.Data)
		if decoder != nil {
			if decoded, err := decoder.DecodeLog(lg.Address.Bytes(), topics, lg.Data); err == nil {
				for name, v := range decoded {
					f.PushDynamic(name, v)
				}
			}
		}
		f.EndRow()
	}
	return nil
}

func addressFilter(p *dimension.Partition) []common.Address {
	addrs := p.AddressList()
	if addrs == nil {
		return nil
	}
	out := make([]common.Address, len(addrs))
	for i, a := range addrs {
		out[i] = common.BytesToAddress(a)
	}
	return out
}

// topicFilter builds the per-position topic filter go-ethereum's
// FilterQuery expects: outer slice indexed by topic position, inner slice
// the OR'd set of acceptable hashes at that position (a single value here,
// since the domain language only supports one value per topic position).
// The result is truncated after the last populated position, since a
// trailing nil entry there would otherwise over-constrain the filter to
// "topic absent" instead of "don't care".
func topicFilter(p *dimension.Partition) [][]common.Hash {
	topics := []*chunk.BinaryChunk{p.Topic0, p.Topic1, p.Topic2, p.Topic3}
	last := -1
	for i, t := range topics {
		if t != nil {
			last = i
		}
	}
	if last == -1 {
		return nil
	}
	out := make([][]common.Hash, last+1)
	for i := 0; i <= last; i++ {
		if topics[i] == nil {
			continue
		}
		v, err := topics[i].MinValue()
		if err != nil {
			continue
		}
		out[i] = []common.Hash{common.BytesToHash(v)}
	}
	return out
}

func init() {
	collect.Register(&collect.Collector{Datatype: schema.Logs, ByRangeImpl: logsCollector{}})
}
