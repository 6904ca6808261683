// Package datatypes implements one file per scalar datatype's collector:
// the extract call(s) against the fetcher, and the transform that decodes
// the raw JSON-RPC response into frame rows under "store if present."
package datatypes

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// keccak256 hashes a byte slice; used for the eth_calls datatype's
// call_data_hash/output_hash columns, which dedupe identical call/response
// payloads without storing the full bytes twice.
func keccak256(data []byte) []byte {
	return crypto.Keccak256(data)
}

// asMap type-asserts v as the generic RPC response shape; returns nil
// rather than panicking on a provider that omitted the whole object
// (e.g. eth_getBlockByNumber for a pruned/nonexistent block).
func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asSlice(v any) []map[string]any {
	raw, ok := v.([]any)
	if !ok {
		if typed, ok := v.([]map[string]any); ok {
			return typed
		}
		return nil
	}
	out := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func str(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

func hexBytes(m map[string]any, key string) []byte {
	s := str(m, key)
	if s == "" {
		return nil
	}
	b, err := hexutil.Decode(s)
	if err != nil {
		return nil
	}
	return b
}

func hexUint64(m map[string]any, key string) uint64 {
	s := str(m, key)
	if s == "" {
		return 0
	}
	n, err := hexutil.DecodeUint64(s)
	if err != nil {
		return 0
	}
	return n
}

func hexUint32(m map[string]any, key string) uint32 {
	return uint32(hexUint64(m, key))
}

func hexBigInt(m map[string]any, key string) *big.Int {
	s := str(m, key)
	if s == "" {
		return big.NewInt(0)
	}
	n, ok := new(big.Int).SetString(strings.TrimPrefix(s, "0x"), 16)
	if !ok {
		return big.NewInt(0)
	}
	return n
}

func bigIntFloat64(n *big.Int) float64 {
	f := new(big.Float).SetInt(n)
	v, _ := f.Float64()
	return v
}
