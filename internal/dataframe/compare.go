package dataframe

import (
	"bytes"
	"math/big"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// compare orders two column values of the same underlying type, for use
// by SortedRowIndices. nil always sorts first so rows missing a sort
// column's value (a column that was projected but never pushed to for
// this particular row) come before rows that have one.
func compare(a, b any) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}
	switch av := a.(type) {
	case int64:
		bv := b.(int64)
		return cmpOrdered(av, bv)
	case uint64:
		bv := b.(uint64)
		return cmpOrdered(av, bv)
	case uint32:
		bv := b.(uint32)
		return cmpOrdered(av, bv)
	case int32:
		bv := b.(int32)
		return cmpOrdered(av, bv)
	case float64:
		bv := b.(float64)
		return cmpOrdered(av, bv)
	case string:
		bv := b.(string)
		return cmpOrdered(av, bv)
	case []byte:
		return bytes.Compare(av, b.([]byte))
	case *big.Int:
		return av.Cmp(b.(*big.Int))
	case *uint256.Int:
		return av.Cmp(b.(*uint256.Int))
	case decimal.Decimal:
		return av.Cmp(b.(decimal.Decimal))
	default:
		return 0
	}
}

func cmpOrdered[T int64 | uint64 | uint32 | int32 | float64 | string](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
