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

type slotValue struct {
	address common.Address
	slot    common.Hash
	value   common.Hash
}

// slotsCollector fetches one eth_getStorageAt per (address, slot) pair in
// the partition's cross product, concurrently, for a single block.
type slotsCollector struct{}

func (slotsCollector) Extract(ctx context.Context, src *source.Source, p *dimension.Partition, blockNumber uint64) (any, error) {
	addrs := p.AddressList()
	slots := p.SlotList()
	out := make([]slotValue, 0, len(addrs)*len(slots))
	g, gctx := errgroup.WithContext(ctx)
	results := make([][]slotValue, len(addrs))
	for i, a := range addrs {
		i, a := i, common.BytesToAddress(a)
		g.Go(func() error {
			rows := make([]slotValue, 0, len(slots))
			for _, s := range slots {
				slotHash := common.BytesToHash(s)
				v, err := src.Fetcher.StorageAt(gctx, a, slotHash, blockNumber)
				if err != nil {
					return err
				}
				rows = append(rows, slotValue{address: a, slot: slotHash, value: v})
			}
			results[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, rows := range results {
		out = append(out, rows...)
	}
	return out, nil
}

func (slotsCollector) Transform(f *dataframe.Frame, _ *dimension.Partition, blockNumber uint64, response any) error {
	rows, _ := response.([]slotValue)
	for _, r := range rows {
		f.Push("block_number", uint32(blockNumber))
		f.Push("address", r.address.Bytes())
		f.Push("slot", r.slot.Bytes())
		f.Push("value", r.value.Bytes())
		f.EndRow()
	}
	return nil
}

func init() {
	collect.Register(&collect.Collector{Datatype: schema.Slots, ByBlockImpl: slotsCollector{}})
}
