package datatypes

import (
	"context"

	"github.com/goccy/go-json"

	"github.com/ethereum/go-ethereum/common"

	"github.com/crypto-data/freeze/internal/collect"
	"github.com/crypto-data/freeze/internal/dataframe"
	"github.com/crypto-data/freeze/internal/dimension"
	"github.com/crypto-data/freeze/internal/schema"
	"github.com/crypto-data/freeze/internal/source"
)

// callTracerConfig selects Geth's built-in "callTracer" — the supplemented
// replacement for the arbitrary custom JS tracer string the original
// engine let callers pass verbatim; accepting only a fixed named tracer
// keeps this collector from having to execute untrusted script text.
var callTracerConfig = map[string]any{"tracer": "callTracer"}

// jsTracesCollector runs debug_traceTransaction with a named tracer per
// transaction hash and stores the raw result as a JSON string column,
// since its shape is tracer-defined rather than a fixed set of columns.
type jsTracesCollector struct{}

func (jsTracesCollector) Extract(ctx context.Context, src *source.Source, _ *dimension.Partition, txHash []byte) (any, error) {
	return src.Fetcher.DebugTraceTransaction(ctx, common.BytesToHash(txHash), callTracerConfig)
}

func (jsTracesCollector) Transform(f *dataframe.Frame, _ *dimension.Partition, txHash []byte, response any) error {
	encoded, err := json.Marshal(response)
	if err != nil {
		return err
	}
	f.Push("transaction_hash", txHash)
	f.Push("result_json", string(encoded))
	f.EndRow()
	return nil
}

func init() {
	collect.Register(&collect.Collector{Datatype: schema.JsTraces, ByTxImpl: jsTracesCollector{}})
}
