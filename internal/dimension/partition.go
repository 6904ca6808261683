// Package dimension resolves the cross-product axes a user's domain flags
// describe — block numbers or ranges, transaction hashes, addresses,
// contracts, storage slots, log topics, and call data — into the typed
// Partition the runner iterates over.
package dimension

import (
	"github.com/crypto-data/freeze/internal/chunk"
	"github.com/crypto-data/freeze/internal/errs"
	"github.com/crypto-data/freeze/internal/schema"
)

// Partition is one unit of collection work: the resolved value (or value
// set) along each dimension a datatype's collector consumes. A nil field
// means that dimension was not supplied; Validate checks that against a
// Descriptor's required dimensions before the runner trusts it (optional
// dimensions are not checked).
type Partition struct {
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
}

func (p *Partition) has(dim schema.Dimension) bool {
	switch dim {
	case schema.DimBlockNumber, schema.DimBlockRange:
		return p.Blocks != nil
	case schema.DimTransactionHash:
		return p.Transactions != nil
	case schema.DimAddress:
		return p.Addresses != nil
	case schema.DimContract:
		return p.Contracts != nil
	case schema.DimSlot:
		return p.Slots != nil
	case schema.DimTopic0:
		return p.Topic0 != nil
	case schema.DimTopic1:
		return p.Topic1 != nil
	case schema.DimTopic2:
		return p.Topic2 != nil
	case schema.DimTopic3:
		return p.Topic3 != nil
	case schema.DimCallData:
		return p.CallDatas != nil
	default:
		return false
	}
}

// Validate checks that every dimension d.RequiredDims names is present,
// and that blockRangeRequired dims (DimBlockRange) carry a single
// contiguous Range rather than a sparse number list.
func (p *Partition) Validate(d *schema.Descriptor) error {
	for _, dim := range d.RequiredDims {
		if !p.has(dim) {
			return errs.Parse("missing required dimension for "+d.Name, nil)
		}
		if dim == schema.DimBlockRange && !p.Blocks.IsRange() {
			return errs.Parse(d.Name+" requires a contiguous block range, not a discrete block list", nil)
		}
	}
	return nil
}

// BlockNumbers expands the block dimension to its full ordered list, used
// by by-block collectors that iterate one block at a time.
func (p *Partition) BlockNumbers() []uint64 {
	if p.Blocks == nil {
		return nil
	}
	return p.Blocks.Values()
}

// TransactionHashes expands the transaction dimension, used by
// by-transaction collectors.
func (p *Partition) TransactionHashes() [][]byte {
	if p.Transactions == nil {
		return nil
	}
	return p.Transactions.Values()
}

// AddressList returns the address dimension's values, or nil if absent.
func (p *Partition) AddressList() [][]byte {
	if p.Addresses == nil {
		return nil
	}
	return p.Addresses.Values()
}

// ContractList returns the contract dimension's values, or nil if absent.
func (p *Partition) ContractList() [][]byte {
	if p.Contracts == nil {
		return nil
	}
	return p.Contracts.Values()
}

// SlotList returns the storage-slot dimension's values, or nil if absent.
func (p *Partition) SlotList() [][]byte {
	if p.Slots == nil {
		return nil
	}
	return p.Slots.Values()
}

// CallDataList returns the call-data dimension's values, or nil if absent.
func (p *Partition) CallDataList() [][]byte {
	if p.CallDatas == nil {
		return nil
	}
	return p.CallDatas.Values()
}

// Stub builds the filename fragment identifying this partition: the block
// dimension's stub when present (the common case), falling back to the
// transaction dimension otherwise.
func (p *Partition) Stub() (string, error) {
	if p.Blocks != nil {
		return p.Blocks.Stub()
	}
	if p.Transactions != nil {
		return p.Transactions.Stub()
	}
	return "", errs.InvalidChunk("partition has neither a block nor transaction dimension to derive a stub from")
}
