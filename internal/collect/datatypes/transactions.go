package datatypes

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/crypto-data/freeze/internal/collect"
	"github.com/crypto-data/freeze/internal/dataframe"
	"github.com/crypto-data/freeze/internal/dimension"
	"github.com/crypto-data/freeze/internal/schema"
	"github.com/crypto-data/freeze/internal/source"
)

// transactionsCollector implements Transactions: a full block fetch gives
// every transaction within it in one call; a single transaction hash uses
// the direct lookup instead.
type transactionsCollector struct{}

func (transactionsCollector) Extract(ctx context.Context, src *source.Source, _ *dimension.Partition, blockNumber uint64) (any, error) {
	return src.Fetcher.BlockByNumber(ctx, blockNumber, true)
}

func (transactionsCollector) Transform(f *dataframe.Frame, _ *dimension.Partition, blockNumber uint64, response any) error {
	return TransformBlockTransactions(f, blockNumber, response)
}

// TransformBlockTransactions decodes a full-transaction block response
// into one row per transaction. Exported so fused.blocksAndTransactions
// can route its shared response into this frame too.
func TransformBlockTransactions(f *dataframe.Frame, _ uint64, response any) error {
	block := asMap(response)
	for _, tx := range asSlice(block["transactions"]) {
		pushTransactionRow(f, tx)
	}
	return nil
}

func (transactionsCollector) ExtractTx(ctx context.Context, src *source.Source, _ *dimension.Partition, txHash []byte) (any, error) {
	return src.Fetcher.TransactionByHash(ctx, common.BytesToHash(txHash))
}

func (transactionsCollector) TransformTx(f *dataframe.Frame, _ *dimension.Partition, _ []byte, response any) error {
	pushTransactionRow(f, asMap(response))
	return nil
}

func pushTransactionRow(f *dataframe.Frame, tx map[string]any) {
	value := hexBigInt(tx, "value")
	f.Push("block_number", hexUint32(tx, "blockNumber"))
	f.Push("transaction_index", hexUint32(tx, "transactionIndex"))
	f.Push("transaction_hash", hexBytes(tx, "hash"))
	f.Push("nonce", hexUint64(tx, "nonce"))
	f.Push("from_address", hexBytes(tx, "from"))
	f.Push("to_address", hexBytes(tx, "to"))
	f.Push("value_binary", value.Bytes())
	f.Push("value_string", value.String())
	f.Push("value_f64", bigIntFloat64(value))
	f.Push("input", hexBytes(tx, "input"))
	f.Push("gas_limit", hexUint64(tx, "gas"))
	f.Push("gas_price", hexUint64(tx, "gasPrice"))
	// gas_used is only known from the receipt; left unpopulated here so a
	// plain Transactions collection stays to the single block-fetch call.
	f.Push("max_priority_fee_per_gas", hexUint64(tx, "maxPriorityFeePerGas"))
	f.Push("max_fee_per_gas", hexUint64(tx, "maxFeePerGas"))
	f.Push("transaction_type", hexUint32(tx, "type"))
	f.EndRow()
}

// transactionsByTx adapts transactionsCollector's extra ByTransaction
// methods to the collect.ByTransaction interface without widening
// transactionsCollector's primary ByBlock surface.
type transactionsByTx struct{ transactionsCollector }

func (t transactionsByTx) Extract(ctx context.Context, src *source.Source, p *dimension.Partition, txHash []byte) (any, error) {
	return t.ExtractTx(ctx, src, p, txHash)
}

func (t transactionsByTx) Transform(f *dataframe.Frame, p *dimension.Partition, txHash []byte, response any) error {
	return t.TransformTx(f, p, txHash, response)
}

func init() {
	collect.Register(&collect.Collector{
		Datatype:    schema.Transactions,
		ByBlockImpl: transactionsCollector{},
		ByTxImpl:    transactionsByTx{},
	})
}
