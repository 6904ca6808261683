package fused

import (
	"context"

	"github.com/crypto-data/freeze/internal/dataframe"
	"github.com/crypto-data/freeze/internal/dimension"
	"github.com/crypto-data/freeze/internal/schema"
	"github.com/crypto-data/freeze/internal/source"
)

var prestateTracerConfig = map[string]any{
	"tracer":       "prestateTracer",
	"tracerConfig": map[string]any{"diffMode": false},
}

// stateReads shares one debug_traceBlockByNumber(prestateTracer) call
// between BalanceReads, CodeReads, NonceReads, and StorageReads: the
// tracer's pre-transaction snapshot of every account a transaction
// touched, reported once per transaction in block order.
type stateReads struct{}

func (stateReads) Members() []schema.Datatype {
	return []schema.Datatype{schema.BalanceReads, schema.CodeReads, schema.NonceReads, schema.StorageReads}
}

func (stateReads) Extract(ctx context.Context, src *source.Source, _ *dimension.Partition, blockNumber uint64) (any, error) {
	return src.Fetcher.DebugTraceBlockByNumber(ctx, blockNumber, prestateTracerConfig)
}

func (stateReads) Transform(frames map[schema.Datatype]*dataframe.Frame, _ *dimension.Partition, blockNumber uint64, response any) error {
	perTx, _ := response.([]map[string]any)
	for _, entry := range perTx {
		txHash, _ := entry["txHash"].(string)
		result, _ := entry["result"].(map[string]any)
		for address, rawAccount := range result {
			account, ok := rawAccount.(map[string]any)
			if !ok {
				continue
			}
			if f := frames[schema.BalanceReads]; f != nil {
				if balance, ok := account["balance"].(string); ok {
					f.Push("block_number", uint32(blockNumber))
					f.Push("transaction_hash", hexOrNil(txHash))
					f.Push("address", hexOrNil(address))
					f.Push("balance_binary", hexOrNil(balance))
					f.Push("balance_string", balance)
					f.EndRow()
				}
			}
			if f := frames[schema.CodeReads]; f != nil {
				if code, ok := account["code"].(string); ok {
					f.Push("block_number", uint32(blockNumber))
					f.Push("transaction_hash", hexOrNil(txHash))
					f.Push("address", hexOrNil(address))
					f.Push("code", hexOrNil(code))
					f.EndRow()
				}
			}
			if f := frames[schema.NonceReads]; f != nil {
				if nonce, ok := account["nonce"]; ok {
					f.Push("block_number", uint32(blockNumber))
					f.Push("transaction_hash", hexOrNil(txHash))
					f.Push("address", hexOrNil(address))
					f.Push("nonce", jsonNumberToUint64(nonce))
					f.EndRow()
				}
			}
			if f := frames[schema.StorageReads]; f != nil {
				storage, _ := account["storage"].(map[string]any)
				for slot, value := range storage {
					v, _ := value.(string)
					f.Push("block_number", uint32(blockNumber))
					f.Push("transaction_hash", hexOrNil(txHash))
					f.Push("address", hexOrNil(address))
					f.Push("slot", hexOrNil(slot))
					f.Push("value", hexOrNil(v))
					f.EndRow()
				}
			}
		}
	}
	return nil
}

// jsonNumberToUint64 handles prestateTracer's nonce field, which geth
// encodes as a JSON number rather than a hex quantity string unlike the
// rest of the RPC surface.
func jsonNumberToUint64(v any) uint64 {
	switch n := v.(type) {
	case float64:
		return uint64(n)
	case string:
		return hexUint64OrZero(n)
	default:
		return 0
	}
}

func init() {
	register(stateReads{})
}
