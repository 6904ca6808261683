package datatypes

import (
	"context"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/crypto-data/freeze/internal/collect"
	"github.com/crypto-data/freeze/internal/dataframe"
	"github.com/crypto-data/freeze/internal/dimension"
	"github.com/crypto-data/freeze/internal/schema"
	"github.com/crypto-data/freeze/internal/source"
)

// tracesCollector implements Traces via trace_block (Parity-style), one
// call per block number, or trace_transaction when pinned to a single tx.
type tracesCollector struct{}

func (tracesCollector) Extract(ctx context.Context, src *source.Source, _ *dimension.Partition, blockNumber uint64) (any, error) {
	return src.Fetcher.TraceBlock(ctx, blockNumber)
}

func (tracesCollector) Transform(f *dataframe.Frame, _ *dimension.Partition, _ uint64, response any) error {
	for _, tr := range asSlice(response) {
		pushTraceRow(f, tr)
	}
	return nil
}

func (tracesCollector) ExtractTx(ctx context.Context, src *source.Source, _ *dimension.Partition, txHash []byte) (any, error) {
	return src.Fetcher.TraceTransaction(ctx, common.BytesToHash(txHash))
}

func (tracesCollector) TransformTx(f *dataframe.Frame, _ *dimension.Partition, _ []byte, response any) error {
	for _, tr := range asSlice(response) {
		pushTraceRow(f, tr)
	}
	return nil
}

func pushTraceRow(f *dataframe.Frame, tr map[string]any) {
	action := asMap(tr["action"])
	result := asMap(tr["result"])
	addrPath := make([]string, 0, 4)
	for _, n := range asIntSlice(tr["traceAddress"]) {
		addrPath = append(addrPath, strconv.Itoa(n))
	}
	f.Push("block_number", hexUint32(tr, "blockNumber"))
	f.Push("transaction_hash", hexBytes(tr, "transactionHash"))
	f.Push("transaction_position", hexUint32(tr, "transactionPosition"))
	f.Push("action_type", str(tr, "type"))
	f.Push("from_address", hexBytes(action, "from"))
	f.Push("to_address", hexBytes(action, "to"))
	f.Push("value_binary", hexBytes(action, "value"))
	f.Push("gas", hexUint64(action, "gas"))
	f.Push("input", hexBytes(action, "input"))
	f.Push("output", hexBytes(result, "output"))
	f.Push("error", str(tr, "error"))
	f.Push("subtraces", hexUint32(tr, "subtraces"))
	f.Push("trace_address", strings.Join(addrPath, ","))
	f.EndRow()
}

func asIntSlice(v any) []int {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]int, 0, len(raw))
	for _, item := range raw {
		if f, ok := item.(float64); ok {
			out = append(out, int(f))
		}
	}
	return out
}

// contractsCollector and nativeTransfersCollector both filter the same
// trace_block response tracesCollector fetches — a contract-creation trace
// (type "create") yields a row in Contracts; a call trace with non-zero
// value yields a row in NativeTransfers. Each still issues its own
// trace_block call since the framework doesn't currently share an extract
// result across distinct Collector registrations outside the fused
// package; sharing that call is exactly what fused.BlocksAndTransactions
// and friends exist to do for datatypes selected together.
type contractsCollector struct{}

func (contractsCollector) Extract(ctx context.Context, src *source.Source, _ *dimension.Partition, blockNumber uint64) (any, error) {
	return src.Fetcher.TraceBlock(ctx, blockNumber)
}

func (contractsCollector) Transform(f *dataframe.Frame, _ *dimension.Partition, _ uint64, response any) error {
	for _, tr := range asSlice(response) {
		if str(tr, "type") != "create" {
			continue
		}
		action := asMap(tr["action"])
		result := asMap(tr["result"])
		f.Push("block_number", hexUint32(tr, "blockNumber"))
		f.Push("transaction_hash", hexBytes(tr, "transactionHash"))
		f.Push("contract_address", hexBytes(result, "address"))
		f.Push("deployer", hexBytes(action, "from"))
		f.Push("factory", hexBytes(action, "from"))
		f.Push("init_code", hexBytes(action, "init"))
		f.Push("code", hexBytes(result, "code"))
		f.EndRow()
	}
	return nil
}

type nativeTransfersCollector struct{}

func (nativeTransfersCollector) Extract(ctx context.Context, src *source.Source, _ *dimension.Partition, blockNumber uint64) (any, error) {
	return src.Fetcher.TraceBlock(ctx, blockNumber)
}

func (nativeTransfersCollector) Transform(f *dataframe.Frame, _ *dimension.Partition, _ uint64, response any) error {
	for _, tr := range asSlice(response) {
		if str(tr, "type") != "call" {
			continue
		}
		action := asMap(tr["action"])
		value := hexBigInt(action, "value")
		if value.Sign() == 0 {
			continue
		}
		f.Push("block_number", hexUint32(tr, "blockNumber"))
		f.Push("transaction_hash", hexBytes(tr, "transactionHash"))
		f.Push("from_address", hexBytes(action, "from"))
		f.Push("to_address", hexBytes(action, "to"))
		f.Push("value_binary", value.Bytes())
		f.Push("value_string", value.String())
		f.EndRow()
	}
	return nil
}

func init() {
	collect.Register(&collect.Collector{Datatype: schema.Traces, ByBlockImpl: tracesCollector{}, ByTxImpl: tracesTxAdapter{tracesCollector{}}})
	collect.Register(&collect.Collector{Datatype: schema.Contracts, ByBlockImpl: contractsCollector{}})
	collect.Register(&collect.Collector{Datatype: schema.NativeTransfers, ByBlockImpl: nativeTransfersCollector{}})
}

type tracesTxAdapter struct{ tracesCollector }

func (t tracesTxAdapter) Extract(ctx context.Context, src *source.Source, p *dimension.Partition, txHash []byte) (any, error) {
	return t.ExtractTx(ctx, src, p, txHash)
}

func (t tracesTxAdapter) Transform(f *dataframe.Frame, p *dimension.Partition, txHash []byte, response any) error {
	return t.TransformTx(f, p, txHash, response)
}
