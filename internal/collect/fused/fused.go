// Package fused implements the MetaDatatype collectors: groups of
// datatypes that share a single RPC call per block and split its response
// across several Frames. The planner only fuses a group when two or more
// of its members are selected in the same run; a lone member is collected
// through the per-datatype collectors registered by the collect/datatypes
// package. That package has collectors for Blocks and Transactions but
// none for the state-diff or state-read datatypes, so a run selecting
// just one of those fails with a "no collector registered" error.
package fused

import (
	"context"

	"github.com/crypto-data/freeze/internal/dataframe"
	"github.com/crypto-data/freeze/internal/dimension"
	"github.com/crypto-data/freeze/internal/schema"
	"github.com/crypto-data/freeze/internal/source"
)

// MetaCollector fetches one block's worth of data with a single RPC call
// and distributes the decoded rows across as many Frames as it has
// members, keyed by Datatype.
type MetaCollector interface {
	Members() []schema.Datatype
	Extract(ctx context.Context, src *source.Source, p *dimension.Partition, blockNumber uint64) (any, error)
	Transform(frames map[schema.Datatype]*dataframe.Frame, p *dimension.Partition, blockNumber uint64, response any) error
}

var registry []MetaCollector

func register(m MetaCollector) { registry = append(registry, m) }

// SelectBackend swaps a matched state-diff MetaCollector for its
// Geth-native equivalent when backend == "geth"; every other matched
// collector (or the Parity-style stateDiffs when backend != "geth")
// passes through unchanged. GethStateDiffs deliberately isn't registered
// into Match's own pool (see its doc comment) since the choice between
// state-diff backends is a run-wide flag, not something to infer from
// which datatypes were selected.
func SelectBackend(m MetaCollector, backend string) MetaCollector {
	if m == nil || backend != "geth" {
		return m
	}
	if _, ok := m.(stateDiffs); ok {
		return GethStateDiffs{}
	}
	return m
}

// Match returns the MetaCollector that shares a call across the largest
// number of selected datatypes, provided at least two of its members were
// selected — a single selected member is left to the per-datatype
// collectors instead (see the package comment). Transform
// only needs to populate the Frames actually present in the map passed to
// it, so requesting a subset of a group's members still fuses correctly.
// Returns nil if no group has two or more members selected.
func Match(selected map[schema.Datatype]bool) MetaCollector {
	var best MetaCollector
	bestHits := 1
	for _, m := range registry {
		hits := 0
		for _, dt := range m.Members() {
			if selected[dt] {
				hits++
			}
		}
		if hits > bestHits {
			best = m
			bestHits = hits
		}
	}
	return best
}
