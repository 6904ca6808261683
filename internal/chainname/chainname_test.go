package chainname

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupKnownChain(t *testing.T) {
	assert.Equal(t, "ethereum", Lookup(1))
}

func TestLookupUnknownChainFallsBackToGenericLabel(t *testing.T) {
	assert.Equal(t, "chain_999999", Lookup(999999))
}
