package rpcfetch

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

type fakeRPCError struct {
	code int
}

func (e *fakeRPCError) Error() string  { return "fake rpc error" }
func (e *fakeRPCError) ErrorCode() int { return e.code }

func TestIsTransientRateLimit(t *testing.T) {
	if !isTransient(&fakeRPCError{code: 429}) {
		t.Fatal("expected 429 to be transient")
	}
	if !isTransient(&fakeRPCError{code: -32005}) {
		t.Fatal("expected -32005 (limit exceeded) to be transient")
	}
}

func TestIsTransientPermanentRejection(t *testing.T) {
	if isTransient(&fakeRPCError{code: -32602}) {
		t.Fatal("expected invalid-params code to be permanent")
	}
}

func TestIsTransientNonRPCErrorDefaultsTransient(t *testing.T) {
	if !isTransient(errors.New("connection reset")) {
		t.Fatal("expected a plain network error to be treated as transient")
	}
}

func TestIsRateLimitedMatchesProviderCodes(t *testing.T) {
	if !isRateLimited(&fakeRPCError{code: 429}) {
		t.Fatal("expected 429 to be rate-limited")
	}
	if !isRateLimited(&fakeRPCError{code: -32005}) {
		t.Fatal("expected -32005 to be rate-limited")
	}
}

func TestIsRateLimitedExcludesOtherErrors(t *testing.T) {
	if isRateLimited(&fakeRPCError{code: -32602}) {
		t.Fatal("expected invalid-params code not to be rate-limited")
	}
	if isRateLimited(errors.New("connection reset")) {
		t.Fatal("expected a plain network error not to be rate-limited")
	}
}

func TestToFilterArgEncodesBlockBounds(t *testing.T) {
	q := ethereum.FilterQuery{
		FromBlock: big.NewInt(100),
		ToBlock:   big.NewInt(200),
	}
	arg, err := toFilterArg(q)
	if err != nil {
		t.Fatalf("toFilterArg: %v", err)
	}
	m := arg.(map[string]any)
	if m["fromBlock"] != hexutil.EncodeBig(big.NewInt(100)) {
		t.Fatalf("fromBlock = %v", m["fromBlock"])
	}
	if m["toBlock"] != hexutil.EncodeBig(big.NewInt(200)) {
		t.Fatalf("toBlock = %v", m["toBlock"])
	}
}
