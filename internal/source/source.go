// Package source bundles the immutable, run-wide handles every collector
// shares: the bounded fetcher, the chain id it talks to, and the sizing
// knobs the log collectors (InnerRequestSize) and the freeze orchestrator
// (MaxConcurrentChunks) consult.
package source

import "github.com/crypto-data/freeze/internal/rpcfetch"

// Source is shared read-only across every goroutine in a run; nothing on
// it is mutated after New returns.
type Source struct {
	Fetcher             *rpcfetch.Fetcher
	ChainID             uint64
	InnerRequestSize    uint64 // max blocks per eth_getLogs call
	MaxConcurrentChunks int64  // semaphore width for simultaneous partitions
}

// New builds a Source from an already-constructed Fetcher and the chain id
// resolved for it.
func New(fetcher *rpcfetch.Fetcher, chainID uint64, innerRequestSize uint64, maxConcurrentChunks int64) *Source {
	if innerRequestSize == 0 {
		innerRequestSize = 1000
	}
	if maxConcurrentChunks <= 0 {
		maxConcurrentChunks = 1
	}
	return &Source{
		Fetcher:             fetcher,
		ChainID:             chainID,
		InnerRequestSize:    innerRequestSize,
		MaxConcurrentChunks: maxConcurrentChunks,
	}
}
