package main

import (
	"bufio"
	"context"
	"os"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/crypto-data/freeze/internal/chunk"
	"github.com/crypto-data/freeze/internal/errs"
	"github.com/crypto-data/freeze/internal/rpcfetch"
)

// resolveBlockRef parses one endpoint of a block spec: a plain decimal
// number, "latest", or "latest-N" for N blocks behind the chain head.
func resolveBlockRef(ctx context.Context, f *rpcfetch.Fetcher, ref string) (uint64, error) {
	ref = strings.TrimSpace(ref)
	if ref == "latest" {
		return f.LatestBlockNumber(ctx)
	}
	if strings.HasPrefix(ref, "latest-") {
		offset, err := strconv.ParseUint(strings.TrimPrefix(ref, "latest-"), 10, 64)
		if err != nil {
			return 0, errs.Parse("invalid latest-offset block reference: "+ref, err)
		}
		head, err := f.LatestBlockNumber(ctx)
		if err != nil {
			return 0, err
		}
		if offset > head {
			return 0, errs.Parse("latest-offset exceeds chain head: "+ref, nil)
		}
		return head - offset, nil
	}
	n, err := strconv.ParseUint(ref, 10, 64)
	if err != nil {
		return 0, errs.Parse("invalid block reference: "+ref, err)
	}
	return n, nil
}

// parseBlockSpec accepts "N" (a single block), "N:M" (an inclusive
// range), or "N,M,K" (an explicit list), with either endpoint of a range
// allowed to be "latest" or "latest-N".
func parseBlockSpec(ctx context.Context, f *rpcfetch.Fetcher, spec string) (chunk.NumberChunk, error) {
	spec = strings.TrimSpace(spec)
	switch {
	case strings.Contains(spec, ":"):
		parts := strings.SplitN(spec, ":", 2)
		from, err := resolveBlockRef(ctx, f, parts[0])
		if err != nil {
			return chunk.NumberChunk{}, err
		}
		to, err := resolveBlockRef(ctx, f, parts[1])
		if err != nil {
			return chunk.NumberChunk{}, err
		}
		if to < from {
			return chunk.NumberChunk{}, errs.Parse("block range end precedes start: "+spec, nil)
		}
		return chunk.Range(from, to), nil
	case strings.Contains(spec, ","):
		parts := strings.Split(spec, ",")
		values := make([]uint64, 0, len(parts))
		for _, p := range parts {
			n, err := resolveBlockRef(ctx, f, p)
			if err != nil {
				return chunk.NumberChunk{}, err
			}
			values = append(values, n)
		}
		return chunk.Numbers(values), nil
	default:
		n, err := resolveBlockRef(ctx, f, spec)
		if err != nil {
			return chunk.NumberChunk{}, err
		}
		return chunk.Range(n, n), nil
	}
}

// parseBinarySpec accepts a comma-separated list of 0x-prefixed hex
// values, or a bare filesystem path to a newline-delimited file of them.
func parseBinarySpec(spec string) (chunk.BinaryChunk, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return chunk.BinaryChunk{}, errs.Parse("empty dimension value", nil)
	}
	if _, err := os.Stat(spec); err == nil {
		values, err := readHexFile(spec)
		if err != nil {
			return chunk.BinaryChunk{}, err
		}
		return chunk.NewBinaryChunk(values), nil
	}
	parts := strings.Split(spec, ",")
	values := make([][]byte, 0, len(parts))
	for _, p := range parts {
		b, err := hexutil.Decode(strings.TrimSpace(p))
		if err != nil {
			return chunk.BinaryChunk{}, errs.Parse("invalid hex value: "+p, err)
		}
		values = append(values, b)
	}
	return chunk.NewBinaryChunk(values), nil
}

func readHexFile(path string) ([][]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errs.Parse("could not open dimension file: "+path, err)
	}
	defer file.Close()

	var values [][]byte
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		b, err := hexutil.Decode(line)
		if err != nil {
			return nil, errs.Parse("invalid hex value in "+path+": "+line, err)
		}
		values = append(values, b)
	}
	if err := scanner.Err(); err != nil {
		return nil, errs.Parse("could not read dimension file: "+path, err)
	}
	return values, nil
}
