package sink

import (
	"encoding/base64"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/crypto-data/freeze/internal/schema"
)

// cellText renders one column value as text, for the two text-based
// backends (CSV and JSON). A Hex column's bytes become a 0x-prefixed hex
// string; a Binary column — raw bytes the user asked not to hex-encode —
// still needs a textual form in these two formats, so it falls back to
// base64 rather than silently reinterpreting it as hex.
func cellText(t schema.ColumnType, v any) string {
	if v == nil {
		return ""
	}
	switch t {
	case schema.Hex:
		if b, ok := v.([]byte); ok {
			return hexutil.Encode(b)
		}
	case schema.Binary:
		if b, ok := v.([]byte); ok {
			return base64.StdEncoding.EncodeToString(b)
		}
	}
	switch val := v.(type) {
	case []byte:
		return hexutil.Encode(val)
	case string:
		return val
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}

// cellJSON renders one column value for the JSON backend: bytes still
// become hex/base64 text per cellText's rule, but every other Go type
// passes through unchanged so numbers and booleans keep their native JSON
// representation instead of being stringified.
func cellJSON(t schema.ColumnType, v any) any {
	if v == nil {
		return nil
	}
	if _, ok := v.([]byte); ok {
		return cellText(t, v)
	}
	return v
}
