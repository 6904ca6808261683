package datatypes

import (
	"bytes"
	"encoding/binary"
)

// decodeABIString decodes an eth_call return value for a zero-argument
// view function declared to return string. Most ERC-20s use the standard
// dynamic-string ABI encoding (32-byte offset, 32-byte length, padded
// data); a few pre-standard tokens (e.g. early MakerDAO-era contracts)
// return a raw bytes32 instead, so that shorter fixed-width shape is
// accepted as a fallback.
func decodeABIString(data []byte) string {
	if len(data) >= 64 {
		length := int(bigEndianUint64(data[56:64]))
		if 64+length <= len(data) {
			return string(data[64 : 64+length])
		}
	}
	if len(data) == 32 {
		return string(bytes.TrimRight(data, "\x00"))
	}
	return ""
}

// decodeABIUint32 decodes a uint8/uint32-range return value padded to 32
// bytes, as decimals() returns.
func decodeABIUint32(data []byte) uint32 {
	if len(data) < 32 {
		return 0
	}
	return uint32(bigEndianUint64(data[24:32]))
}

func bigEndianUint64(b []byte) uint64 {
	var buf [8]byte
	copy(buf[8-len(b):], b)
	return binary.BigEndian.Uint64(buf[:])
}
