package schema

// ColumnType is the logical type of one emitted column, independent of the
// sink format it is eventually written through.
type ColumnType int

const (
	Int32 ColumnType = iota
	Int64
	UInt32
	UInt64
	Decimal128
	Float64
	String
	Binary
	Hex
	U256
)

func (c ColumnType) String() string {
	switch c {
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case UInt32:
		return "uint32"
	case UInt64:
		return "uint64"
	case Decimal128:
		return "decimal128"
	case Float64:
		return "float64"
	case String:
		return "string"
	case Binary:
		return "binary"
	case Hex:
		return "hex"
	case U256:
		return "u256"
	default:
		return "unknown"
	}
}

// ColumnEncoding chooses how Binary columns are represented in the final
// output: raw bytes, or a 0x-prefixed hex string.
type ColumnEncoding int

const (
	EncodingBinary ColumnEncoding = iota
	EncodingHex
)

// resolvedType applies the global binary encoding choice: a Binary column
// becomes Hex when the run is configured for hex encoding.
func resolvedType(t ColumnType, enc ColumnEncoding) ColumnType {
	if t == Binary && enc == EncodingHex {
		return Hex
	}
	return t
}
