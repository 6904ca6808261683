// Package rpcfetch wraps a go-ethereum RPC client with the concurrency,
// rate-limiting, and retry behavior every collector call goes through:
// a weighted semaphore bounding in-flight requests, an optional token
// bucket pacing request rate, and exponential backoff on transient
// failures.
package rpcfetch

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/crypto-data/freeze/internal/errs"
)

// Fetcher issues every JSON-RPC call a collector needs, through one bounded
// client. Safe for concurrent use by many goroutines.
type Fetcher struct {
	client      *gethrpc.Client
	requestSem  *semaphore.Weighted
	limiter     *rate.Limiter
	maxAttempts uint64
	log         *logrus.Entry
}

// Options configures the concurrency and retry behavior wrapped around the
// raw client. A zero value for MaxConcurrentRequests or RequestsPerSecond
// disables that particular bound.
type Options struct {
	MaxConcurrentRequests int64
	RequestsPerSecond     float64
	MaxRetries            uint64
	Logger                *logrus.Entry
}

// New wraps an already-dialed *gethrpc.Client with the bounds in opts.
func New(client *gethrpc.Client, opts Options) *Fetcher {
	f := &Fetcher{client: client, maxAttempts: opts.MaxRetries, log: opts.Logger}
	if f.log == nil {
		f.log = logrus.NewEntry(logrus.StandardLogger())
	}
	if opts.MaxConcurrentRequests > 0 {
		f.requestSem = semaphore.NewWeighted(opts.MaxConcurrentRequests)
	}
	if opts.RequestsPerSecond > 0 {
		f.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), int(opts.RequestsPerSecond)+1)
	}
	if f.maxAttempts == 0 {
		f.maxAttempts = 5
	}
	return f
}

// call runs one RPC method through the semaphore, rate limiter, and retry
// policy, in that order: acquire a slot, wait for a token, then retry the
// underlying call on transient failure.
func (f *Fetcher) call(ctx context.Context, result any, method string, args ...any) error {
	if f.requestSem != nil {
		if err := f.requestSem.Acquire(ctx, 1); err != nil {
			return errs.RPC(err)
		}
		defer f.requestSem.Release(1)
	}
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return errs.RPC(err)
		}
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), f.maxAttempts), ctx)
	operation := func() error {
		err := f.client.CallContext(ctx, result, method, args...)
		if err != nil && isTransient(err) {
			f.log.WithError(err).WithField("method", method).Debug("retrying rpc call")
			return err
		}
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}
	if err := backoff.Retry(operation, policy); err != nil {
		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			err = perm.Unwrap()
		}
		if isRateLimited(err) {
			return errs.TooManyRequests()
		}
		return errs.RPC(err)
	}
	return nil
}

// isTransient reports whether err looks like a connection blip or a
// provider rate limit rather than a permanent rejection of the request.
func isTransient(err error) bool {
	var rpcErr gethrpc.Error
	if errors.As(err, &rpcErr) {
		switch rpcErr.ErrorCode() {
		case -32005, 429:
			return true
		}
		return false
	}
	return true
}

// isRateLimited reports whether err is the provider's rate-limit rejection
// (JSON-RPC code -32005 or 429, or an HTTP 429 status from the transport),
// the case isTransient retries but that, once retries are exhausted, must
// surface as errs.TooManyRequests rather than a generic errs.RPC.
func isRateLimited(err error) bool {
	var httpErr gethrpc.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == 429
	}
	var rpcErr gethrpc.Error
	if errors.As(err, &rpcErr) {
		switch rpcErr.ErrorCode() {
		case -32005, 429:
			return true
		}
	}
	return false
}

// ChainID returns the chain's configured id via eth_chainId.
func (f *Fetcher) ChainID(ctx context.Context) (uint64, error) {
	var result hexutil.Uint64
	if err := f.call(ctx, &result, "eth_chainId"); err != nil {
		return 0, err
	}
	return uint64(result), nil
}

// LatestBlockNumber returns the chain head's block number.
func (f *Fetcher) LatestBlockNumber(ctx context.Context) (uint64, error) {
	var result hexutil.Uint64
	if err := f.call(ctx, &result, "eth_blockNumber"); err != nil {
		return 0, err
	}
	return uint64(result), nil
}

// BlockByNumber fetches a full block by number, optionally with full
// transaction objects rather than just hashes.
func (f *Fetcher) BlockByNumber(ctx context.Context, number uint64, fullTx bool) (map[string]any, error) {
	var result map[string]any
	if err := f.call(ctx, &result, "eth_getBlockByNumber", hexutil.EncodeUint64(number), fullTx); err != nil {
		return nil, err
	}
	return result, nil
}

// TransactionByHash fetches a single transaction by its hash.
func (f *Fetcher) TransactionByHash(ctx context.Context, hash common.Hash) (map[string]any, error) {
	var result map[string]any
	if err := f.call(ctx, &result, "eth_getTransactionByHash", hash); err != nil {
		return nil, err
	}
	return result, nil
}

// TransactionReceipt fetches a transaction's receipt by hash.
func (f *Fetcher) TransactionReceipt(ctx context.Context, hash common.Hash) (map[string]any, error) {
	var result map[string]any
	if err := f.call(ctx, &result, "eth_getTransactionReceipt", hash); err != nil {
		return nil, err
	}
	return result, nil
}

// Logs runs eth_getLogs over a single block range, with the dimension
// filters (addresses, topics) the planner resolved for this partition.
func (f *Fetcher) Logs(ctx context.Context, from, to uint64, addresses []common.Address, topics [][]common.Hash) ([]types.Log, error) {
	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(from),
		ToBlock:   new(big.Int).SetUint64(to),
		Addresses: addresses,
		Topics:    topics,
	}
	arg, err := toFilterArg(query)
	if err != nil {
		return nil, errs.RPC(err)
	}
	var result []types.Log
	if err := f.call(ctx, &result, "eth_getLogs", arg); err != nil {
		return nil, err
	}
	return result, nil
}

// Balance fetches an account's balance at the end of a given block via
// eth_getBalance; it cannot pin the state to a transaction index within
// that block.
func (f *Fetcher) Balance(ctx context.Context, address common.Address, blockNumber uint64) (*big.Int, error) {
	var result hexutil.Big
	if err := f.call(ctx, &result, "eth_getBalance", address, hexutil.EncodeUint64(blockNumber)); err != nil {
		return nil, err
	}
	return (*big.Int)(&result), nil
}

// Nonce fetches an account's transaction count at a given block.
func (f *Fetcher) Nonce(ctx context.Context, address common.Address, blockNumber uint64) (uint64, error) {
	var result hexutil.Uint64
	if err := f.call(ctx, &result, "eth_getTransactionCount", address, hexutil.EncodeUint64(blockNumber)); err != nil {
		return 0, err
	}
	return uint64(result), nil
}

// Code fetches an account's deployed bytecode at a given block.
func (f *Fetcher) Code(ctx context.Context, address common.Address, blockNumber uint64) ([]byte, error) {
	var result hexutil.Bytes
	if err := f.call(ctx, &result, "eth_getCode", address, hexutil.EncodeUint64(blockNumber)); err != nil {
		return nil, err
	}
	return result, nil
}

// StorageAt fetches a single storage slot's value at a given block.
func (f *Fetcher) StorageAt(ctx context.Context, address common.Address, slot common.Hash, blockNumber uint64) (common.Hash, error) {
	var result hexutil.Bytes
	if err := f.call(ctx, &result, "eth_getStorageAt", address, slot, hexutil.EncodeUint64(blockNumber)); err != nil {
		return common.Hash{}, err
	}
	return common.BytesToHash(result), nil
}

// Call runs eth_call against a contract at a given block.
func (f *Fetcher) Call(ctx context.Context, to common.Address, data []byte, blockNumber uint64) ([]byte, error) {
	callArg := map[string]any{
		"to":   to,
		"data": hexutil.Encode(data),
	}
	var result hexutil.Bytes
	if err := f.call(ctx, &result, "eth_call", callArg, hexutil.EncodeUint64(blockNumber)); err != nil {
		return nil, err
	}
	return result, nil
}

// TraceBlock runs trace_block (Parity-style) for a single block.
func (f *Fetcher) TraceBlock(ctx context.Context, blockNumber uint64) ([]map[string]any, error) {
	var result []map[string]any
	if err := f.call(ctx, &result, "trace_block", hexutil.EncodeUint64(blockNumber)); err != nil {
		return nil, err
	}
	return result, nil
}

// TraceTransaction runs trace_transaction (Parity-style) for a single tx.
func (f *Fetcher) TraceTransaction(ctx context.Context, hash common.Hash) ([]map[string]any, error) {
	var result []map[string]any
	if err := f.call(ctx, &result, "trace_transaction", hash); err != nil {
		return nil, err
	}
	return result, nil
}

// TraceReplayBlockTransactions runs trace_replayBlockTransactions with the
// given trace types (e.g. "stateDiff", "trace") for a single block — the
// source of the state-diff fused datatypes.
func (f *Fetcher) TraceReplayBlockTransactions(ctx context.Context, blockNumber uint64, traceTypes []string) ([]map[string]any, error) {
	var result []map[string]any
	if err := f.call(ctx, &result, "trace_replayBlockTransactions", hexutil.EncodeUint64(blockNumber), traceTypes); err != nil {
		return nil, err
	}
	return result, nil
}

// DebugTraceBlockByNumber runs debug_traceBlockByNumber with the given
// tracer configuration (e.g. prestateTracer in diffMode), the Geth-native
// source of the state-diff and state-read fused datatypes.
func (f *Fetcher) DebugTraceBlockByNumber(ctx context.Context, blockNumber uint64, tracerConfig map[string]any) ([]map[string]any, error) {
	var result []map[string]any
	if err := f.call(ctx, &result, "debug_traceBlockByNumber", hexutil.EncodeUint64(blockNumber), tracerConfig); err != nil {
		return nil, err
	}
	return result, nil
}

// DebugTraceTransaction runs debug_traceTransaction with the given tracer
// configuration, including the custom-JS-tracer case.
func (f *Fetcher) DebugTraceTransaction(ctx context.Context, hash common.Hash, tracerConfig map[string]any) (any, error) {
	var result any
	if err := f.call(ctx, &result, "debug_traceTransaction", hash, tracerConfig); err != nil {
		return nil, err
	}
	return result, nil
}

// toFilterArg mirrors go-ethereum's ethclient internal filter-argument
// encoding, needed here because FilterLogs itself is not exposed on the
// raw *rpc.Client this fetcher wraps.
func toFilterArg(q ethereum.FilterQuery) (any, error) {
	arg := map[string]any{
		"address": q.Addresses,
		"topics":  q.Topics,
	}
	if q.FromBlock != nil {
		arg["fromBlock"] = hexutil.EncodeBig(q.FromBlock)
	}
	if q.ToBlock != nil {
		arg["toBlock"] = hexutil.EncodeBig(q.ToBlock)
	}
	return arg, nil
}

// WaitBetween pauses the caller for d; exposed so retry/backoff tests can
// stub out real sleeps without importing this package's internals.
func WaitBetween(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
