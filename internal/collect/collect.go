// Package collect defines the extract/transform contract every datatype's
// collector implements, mirroring the source engine's CollectByBlock and
// CollectByTransaction traits: extract issues the RPC call(s) for one work
// item, transform turns the raw response into frame rows. Splitting the
// two keeps transform — the part schema projection touches — free of any
// I/O; retries of a failed RPC call happen inside the fetcher, not in the
// runner.
package collect

import (
	"context"

	"github.com/crypto-data/freeze/internal/dataframe"
	"github.com/crypto-data/freeze/internal/dimension"
	"github.com/crypto-data/freeze/internal/schema"
	"github.com/crypto-data/freeze/internal/source"
)

// ByBlock collects one datatype's rows one block number at a time.
type ByBlock interface {
	// Extract issues the RPC call(s) needed for a single block number.
	Extract(ctx context.Context, src *source.Source, p *dimension.Partition, blockNumber uint64) (any, error)
	// Transform appends the rows decoded from an Extract response into f.
	Transform(f *dataframe.Frame, p *dimension.Partition, blockNumber uint64, response any) error
}

// ByTransaction collects one datatype's rows one transaction hash at a
// time, for datatypes that support being pinned to a single transaction
// rather than a whole block.
type ByTransaction interface {
	Extract(ctx context.Context, src *source.Source, p *dimension.Partition, txHash []byte) (any, error)
	Transform(f *dataframe.Frame, p *dimension.Partition, txHash []byte, response any) error
}

// ByRange collects one datatype's rows over a whole block range in a
// single RPC call — logs and the log-derived transfer datatypes, which
// don't make sense fetched one block at a time.
type ByRange interface {
	Extract(ctx context.Context, src *source.Source, p *dimension.Partition) (any, error)
	Transform(f *dataframe.Frame, p *dimension.Partition, response any) error
}

// Collector is the full set of capabilities a registered datatype may
// implement. The runner picks a strategy from which Impl fields are
// non-nil; the Descriptor's ByBlock/ByTransaction/UsesBlockRanges flags
// are not consulted, and Logs and the state-diff/state-read datatypes
// advertise ByTransaction without any by-transaction collector behind it.
type Collector struct {
	Datatype      schema.Datatype
	ByBlockImpl   ByBlock
	ByTxImpl      ByTransaction
	ByRangeImpl   ByRange
	// Lenient collectors have a failed per-item extract (e.g. an eth_call
	// against a non-conforming contract) skipped, emitting no row for
	// that block or transaction, instead of failing the whole partition.
	Lenient bool
}

var registry = map[schema.Datatype]*Collector{}

// Register attaches a Collector implementation to its datatype.
func Register(c *Collector) {
	registry[c.Datatype] = c
}

// Lookup returns the registered Collector for dt, or nil if none exists.
func Lookup(dt schema.Datatype) *Collector {
	return registry[dt]
}
