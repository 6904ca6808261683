package fused

import (
	"context"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/crypto-data/freeze/internal/dataframe"
	"github.com/crypto-data/freeze/internal/dimension"
	"github.com/crypto-data/freeze/internal/schema"
	"github.com/crypto-data/freeze/internal/source"
)

// diffChange is one field's before/after state as trace_replayBlockTransactions
// reports it: raw hex strings (or nil, when the field was born/died) plus
// the classification the source engine's "same/born/died/changed" rule
// assigns. change_type is an enhancement beyond the raw trace output: the
// original data model left change classification to whichever "=" / "*" /
// "+" / "-" marker shape a downstream reader would have to recognize
// itself, so this engine reifies it as an explicit column instead.
type diffChange struct {
	from, to   string
	changeType string
	present    bool
}

func decodeParityDiff(raw any) diffChange {
	switch v := raw.(type) {
	case string:
		if v == "=" {
			return diffChange{changeType: "same", present: true}
		}
	case map[string]any:
		if born, ok := v["+"]; ok {
			return diffChange{to: toStr(born), changeType: "born", present: true}
		}
		if died, ok := v["-"]; ok {
			return diffChange{from: toStr(died), changeType: "died", present: true}
		}
		if changed, ok := v["*"].(map[string]any); ok {
			return diffChange{from: toStr(changed["from"]), to: toStr(changed["to"]), changeType: "changed", present: true}
		}
	}
	return diffChange{}
}

func toStr(v any) string {
	s, _ := v.(string)
	return s
}

// stateDiffs shares the single trace_replayBlockTransactions(["stateDiff"])
// call between BalanceDiffs, CodeDiffs, NonceDiffs, and StorageDiffs,
// splitting its per-address stateDiff object across their four Frames.
type stateDiffs struct{}

func (stateDiffs) Members() []schema.Datatype {
	return []schema.Datatype{schema.BalanceDiffs, schema.CodeDiffs, schema.NonceDiffs, schema.StorageDiffs}
}

func (stateDiffs) Extract(ctx context.Context, src *source.Source, _ *dimension.Partition, blockNumber uint64) (any, error) {
	return src.Fetcher.TraceReplayBlockTransactions(ctx, blockNumber, []string{"stateDiff"})
}

func (stateDiffs) Transform(frames map[schema.Datatype]*dataframe.Frame, _ *dimension.Partition, blockNumber uint64, response any) error {
	results, _ := response.([]map[string]any)
	for _, result := range results {
		txHash, _ := result["transactionHash"].(string)
		diffs, _ := result["stateDiff"].(map[string]any)
		for address, rawAccountDiff := range diffs {
			accountDiff, ok := rawAccountDiff.(map[string]any)
			if !ok {
				continue
			}
			pushBinaryDiffRow(frames[schema.BalanceDiffs], blockNumber, txHash, address, decodeParityDiff(accountDiff["balance"]))
			pushBinaryDiffRow(frames[schema.CodeDiffs], blockNumber, txHash, address, decodeParityDiff(accountDiff["code"]))
			pushNonceDiffRow(frames[schema.NonceDiffs], blockNumber, txHash, address, decodeParityDiff(accountDiff["nonce"]))
			storage, _ := accountDiff["storage"].(map[string]any)
			for slot, rawSlotDiff := range storage {
				change := decodeParityDiff(rawSlotDiff)
				if f := frames[schema.StorageDiffs]; f != nil && change.present {
					f.Push("block_number", uint32(blockNumber))
					f.Push("transaction_hash", hexOrNil(txHash))
					f.Push("address", hexOrNil(address))
					f.Push("slot", hexOrNil(slot))
					f.Push("from_value", hexOrNil(change.from))
					f.Push("to_value", hexOrNil(change.to))
					f.Push("change_type", change.changeType)
					f.EndRow()
				}
			}
		}
	}
	return nil
}

// hexOrNil decodes a 0x-prefixed hex string to bytes, or returns nil for
// an empty string (the born/died cases leave one side absent).
func hexOrNil(s string) []byte {
	if s == "" {
		return nil
	}
	b, err := hexutil.Decode(s)
	if err != nil {
		return nil
	}
	return b
}

func hexUint64OrZero(s string) uint64 {
	if s == "" {
		return 0
	}
	n, err := hexutil.DecodeUint64(s)
	if err != nil {
		return 0
	}
	return n
}

func pushBinaryDiffRow(f *dataframe.Frame, blockNumber uint64, txHash, address string, change diffChange) {
	if f == nil || !change.present {
		return
	}
	f.Push("block_number", uint32(blockNumber))
	f.Push("transaction_hash", hexOrNil(txHash))
	f.Push("address", hexOrNil(address))
	f.Push("from_value", hexOrNil(change.from))
	f.Push("to_value", hexOrNil(change.to))
	f.Push("change_type", change.changeType)
	f.EndRow()
}

func pushNonceDiffRow(f *dataframe.Frame, blockNumber uint64, txHash, address string, change diffChange) {
	if f == nil || !change.present {
		return
	}
	f.Push("block_number", uint32(blockNumber))
	f.Push("transaction_hash", hexOrNil(txHash))
	f.Push("address", hexOrNil(address))
	f.Push("from_value", hexUint64OrZero(change.from))
	f.Push("to_value", hexUint64OrZero(change.to))
	f.Push("change_type", change.changeType)
	f.EndRow()
}

func init() {
	register(stateDiffs{})
}
