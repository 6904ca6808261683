package fused

import (
	"context"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/crypto-data/freeze/internal/dataframe"
	"github.com/crypto-data/freeze/internal/dimension"
	"github.com/crypto-data/freeze/internal/schema"
	"github.com/crypto-data/freeze/internal/source"
)

var prestateDiffTracerConfig = map[string]any{
	"tracer":       "prestateTracer",
	"tracerConfig": map[string]any{"diffMode": true},
}

// GethStateDiffs is the Geth-native alternative to the Parity-style
// stateDiffs MetaCollector, selected by --trace-backend geth: it uses
// debug_traceBlockByNumber(prestateTracer, diffMode) instead of
// trace_replayBlockTransactions. Unlike stateDiffs it is not auto-matched
// by Match — the backend is an explicit run-wide choice, not something to
// infer from which datatypes were selected — so the planner swaps it in
// for a matched stateDiffs through SelectBackend when that flag is set.
type GethStateDiffs struct{}

func (GethStateDiffs) Members() []schema.Datatype {
	return []schema.Datatype{schema.BalanceDiffs, schema.CodeDiffs, schema.NonceDiffs, schema.StorageDiffs}
}

func (GethStateDiffs) Extract(ctx context.Context, src *source.Source, _ *dimension.Partition, blockNumber uint64) (any, error) {
	return src.Fetcher.DebugTraceBlockByNumber(ctx, blockNumber, prestateDiffTracerConfig)
}

func (GethStateDiffs) Transform(frames map[schema.Datatype]*dataframe.Frame, _ *dimension.Partition, blockNumber uint64, response any) error {
	perTx, _ := response.([]map[string]any)
	for _, entry := range perTx {
		txHash, _ := entry["txHash"].(string)
		result, _ := entry["result"].(map[string]any)
		pre, _ := result["pre"].(map[string]any)
		post, _ := result["post"].(map[string]any)
		addresses := make(map[string]bool)
		for a := range pre {
			addresses[a] = true
		}
		for a := range post {
			addresses[a] = true
		}
		for address := range addresses {
			preAcc, _ := pre[address].(map[string]any)
			postAcc, _ := post[address].(map[string]any)
			pushBinaryDiffRow(frames[schema.BalanceDiffs], blockNumber, txHash, address, gethFieldDiff(preAcc, postAcc, "balance"))
			pushBinaryDiffRow(frames[schema.CodeDiffs], blockNumber, txHash, address, gethFieldDiff(preAcc, postAcc, "code"))
			pushNonceDiffRow(frames[schema.NonceDiffs], blockNumber, txHash, address, gethFieldDiff(preAcc, postAcc, "nonce"))
			if f := frames[schema.StorageDiffs]; f != nil {
				pushGethStorageDiffs(f, blockNumber, txHash, address, preAcc, postAcc)
			}
		}
	}
	return nil
}

// gethFieldDiff classifies one scalar field (balance, code, or nonce)
// between geth's pre/post account snapshots into the same born/died/
// changed/same shape the Parity-backed collector produces, so both
// backends feed the same downstream push helpers.
func gethFieldDiff(pre, post map[string]any, field string) diffChange {
	preVal, preOk := fieldString(pre, field)
	postVal, postOk := fieldString(post, field)
	switch {
	case !preOk && !postOk:
		return diffChange{}
	case !preOk && postOk:
		return diffChange{to: postVal, changeType: "born", present: true}
	case preOk && !postOk:
		return diffChange{from: preVal, changeType: "died", present: true}
	case preVal == postVal:
		return diffChange{from: preVal, to: postVal, changeType: "same", present: true}
	default:
		return diffChange{from: preVal, to: postVal, changeType: "changed", present: true}
	}
}

func fieldString(m map[string]any, field string) (string, bool) {
	if m == nil {
		return "", false
	}
	v, ok := m[field]
	if !ok {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return hexutil.EncodeUint64(uint64(t)), true
	default:
		return "", false
	}
}

func pushGethStorageDiffs(f *dataframe.Frame, blockNumber uint64, txHash, address string, pre, post map[string]any) {
	preStorage, _ := storageMap(pre)
	postStorage, _ := storageMap(post)
	slots := make(map[string]bool)
	for s := range preStorage {
		slots[s] = true
	}
	for s := range postStorage {
		slots[s] = true
	}
	for slot := range slots {
		preVal, preOk := preStorage[slot]
		postVal, postOk := postStorage[slot]
		change := diffChange{}
		switch {
		case !preOk && postOk:
			change = diffChange{to: postVal, changeType: "born", present: true}
		case preOk && !postOk:
			change = diffChange{from: preVal, changeType: "died", present: true}
		case preVal == postVal:
			change = diffChange{from: preVal, to: postVal, changeType: "same", present: true}
		default:
			change = diffChange{from: preVal, to: postVal, changeType: "changed", present: true}
		}
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

func storageMap(m map[string]any) (map[string]string, bool) {
	if m == nil {
		return nil, false
	}
	raw, ok := m["storage"].(map[string]any)
	if !ok {
		return nil, false
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out, true
}
