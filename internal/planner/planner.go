// Package planner turns a resolved domain request — the datatypes and
// dimension values a user asked for — into the ordered list of partitions
// the runner will collect, splitting the block dimension into chunks no
// larger than ChunkSize, and clustering datatypes that share a fused
// collector into one Work item. A request with no block dimension (one
// driven by transaction hashes alone) yields a single partition carrying
// the whole transaction list; the transaction dimension is not split.
package planner

import (
	"context"

	"github.com/crypto-data/freeze/internal/chunk"
	"github.com/crypto-data/freeze/internal/collect/fused"
	"github.com/crypto-data/freeze/internal/dimension"
	"github.com/crypto-data/freeze/internal/errs"
	"github.com/crypto-data/freeze/internal/schema"
	"github.com/crypto-data/freeze/internal/source"
)

// Request is the fully resolved set of domain inputs: every dimension
// already parsed from its flag/file representation into typed chunks, and
// "latest"/negative-offset block references already resolved to concrete
// numbers by the caller (cmd/freeze, which has access to the live chain
// head before planning starts).
type Request struct {
	Datatypes    []schema.Datatype
	Blocks       *chunk.NumberChunk
	Transactions *chunk.BinaryChunk
	Addresses    *chunk.BinaryChunk
	Contracts    *chunk.BinaryChunk
	Slots        *chunk.BinaryChunk
	Topic0       *chunk.BinaryChunk
	Topic1       *chunk.BinaryChunk
	Topic2       *chunk.BinaryChunk
	Topic3       *chunk.BinaryChunk
	CallDatas    *chunk.BinaryChunk
	ChunkSize    uint64
	Align        bool
	// TraceBackend selects which RPC namespace backs the state-diff fused
	// datatypes: "parity" (default, trace_replayBlockTransactions) or
	// "geth" (debug_traceBlockByNumber prestateTracer), for providers that
	// only expose one of the two.
	TraceBackend string
}

// Work is one partition's worth of collection: the partition itself, plus
// which datatypes collect from it together (more than one only when a
// MetaCollector fuses them).
type Work struct {
	Datatypes []schema.Datatype
	Fused     fused.MetaCollector // nil when the partition's datatypes don't share a collector
	Partition *dimension.Partition
}

// Plan validates the request against every selected datatype's
// Descriptor, splits the block dimension into chunks, and groups
// datatypes that fuse together.
func Plan(_ context.Context, _ *source.Source, req Request) ([]Work, error) {
	if len(req.Datatypes) == 0 {
		return nil, errs.Parse("no datatypes selected", nil)
	}
	base := &dimension.Partition{
		Transactions: req.Transactions,
		Addresses:    req.Addresses,
		Contracts:    req.Contracts,
		Slots:        req.Slots,
		Topic0:       req.Topic0,
		Topic1:       req.Topic1,
		Topic2:       req.Topic2,
		Topic3:       req.Topic3,
		CallDatas:    req.CallDatas,
	}

	for _, dt := range req.Datatypes {
		d, err := schema.Lookup(dt)
		if err != nil {
			return nil, err
		}
		probe := *base
		probe.Blocks = req.Blocks
		if err := probe.Validate(d); err != nil {
			return nil, err
		}
	}

	blockChunks, err := splitBlocks(req.Blocks, req.ChunkSize, req.Align)
	if err != nil {
		return nil, err
	}

	selected := make(map[schema.Datatype]bool, len(req.Datatypes))
	for _, dt := range req.Datatypes {
		selected[dt] = true
	}
	groups := groupDatatypes(req.Datatypes, selected)
	for i := range groups {
		groups[i].fused = fused.SelectBackend(groups[i].fused, req.TraceBackend)
	}

	work := make([]Work, 0, len(blockChunks)*len(groups))
	for _, bc := range blockChunks {
		for _, g := range groups {
			p := *base
			if req.Blocks != nil {
				bcCopy := bc
				p.Blocks = &bcCopy
			}
			work = append(work, Work{Datatypes: g.members, Fused: g.fused, Partition: &p})
		}
	}
	return work, nil
}

func splitBlocks(blocks *chunk.NumberChunk, chunkSize uint64, align bool) ([]chunk.NumberChunk, error) {
	if blocks == nil {
		return []chunk.NumberChunk{{}}, nil
	}
	if chunkSize == 0 {
		chunkSize = 1000
	}
	if !blocks.IsRange() {
		values := blocks.Values()
		out := make([]chunk.NumberChunk, 0, len(values)/int(chunkSize)+1)
		for i := 0; i < len(values); i += int(chunkSize) {
			end := i + int(chunkSize)
			if end > len(values) {
				end = len(values)
			}
			out = append(out, chunk.Numbers(values[i:end]))
		}
		return out, nil
	}
	working := *blocks
	if align {
		aligned, ok := working.Align(chunkSize)
		if !ok {
			return nil, errs.InvalidChunk("block range has no surviving blocks after alignment")
		}
		working = aligned
	}
	min, err := working.MinValue()
	if err != nil {
		return nil, err
	}
	max, err := working.MaxValue()
	if err != nil {
		return nil, err
	}
	ranges := chunk.RangeToChunks(min, max+1, chunkSize)
	out := make([]chunk.NumberChunk, len(ranges))
	for i, r := range ranges {
		out[i] = chunk.Range(r.From, r.To)
	}
	return out, nil
}

type datatypeGroup struct {
	members []schema.Datatype
	fused   fused.MetaCollector
}

// groupDatatypes clusters the requested datatypes so every MetaCollector
// whose member set intersects the selection by two or more datatypes
// collects those members together, and every remaining datatype plans as
// its own single-member group.
func groupDatatypes(datatypes []schema.Datatype, selected map[schema.Datatype]bool) []datatypeGroup {
	m := fused.Match(selected)
	if m == nil {
		groups := make([]datatypeGroup, len(datatypes))
		for i, dt := range datatypes {
			groups[i] = datatypeGroup{members: []schema.Datatype{dt}}
		}
		return groups
	}
	fusedSet := make(map[schema.Datatype]bool)
	var fusedMembers []schema.Datatype
	for _, dt := range m.Members() {
		if selected[dt] {
			fusedSet[dt] = true
			fusedMembers = append(fusedMembers, dt)
		}
	}
	groups := []datatypeGroup{{members: fusedMembers, fused: m}}
	var rest []schema.Datatype
	restSelected := make(map[schema.Datatype]bool)
	for _, dt := range datatypes {
		if !fusedSet[dt] {
			rest = append(rest, dt)
			restSelected[dt] = true
		}
	}
	return append(groups, groupDatatypes(rest, restSelected)...)
}
