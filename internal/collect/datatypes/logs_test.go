package datatypes

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/crypto-data/freeze/internal/dataframe"
	"github.com/crypto-data/freeze/internal/schema"
)

type fakeLogDecoder struct{}

func (fakeLogDecoder) DecodeLog(address []byte, topics [][]byte, data []byte) (map[string]any, error) {
	return map[string]any{"event_from": "0xfeed"}, nil
}

func TestLogsTransformSkipsUnprojectedColumns(t *testing.T) {
	table, err := schema.Resolve(schema.Logs, nil, []string{"topic3", "data"}, schema.EncodingBinary)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	f := dataframe.New(table)

	logs := []types.Log{{
		BlockNumber: 100,
		TxIndex:     1,
		Index:       2,
		TxHash:      common.HexToHash("0x01"),
		Address:     common.HexToAddress("0x02"),
		Topics:      []common.Hash{common.HexToHash("0x03")},
		Data:        []byte{0xaa},
	}}

	if err := logsCollector{}.Transform(f, nil, logs); err != nil {
		t.Fatalf("transform: %v", err)
	}
	if f.Column("topic3") != nil {
		t.Fatal("expected topic3 to be absent after exclusion")
	}
	if f.Column("data") != nil {
		t.Fatal("expected data to be absent after exclusion")
	}
	if f.Column("topic0") == nil {
		t.Fatal("expected topic0 to remain projected")
	}
}

func TestLogsTransformAppendsDecodedEventColumns(t *testing.T) {
	table, err := schema.Resolve(schema.Logs, nil, []string{"topic3", "data"}, schema.EncodingBinary)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	table.WithLogDecoder(fakeLogDecoder{})
	f := dataframe.New(table)

	logs := []types.Log{{
		BlockNumber: 100,
		TxIndex:     1,
		Index:       2,
		TxHash:      common.HexToHash("0x01"),
		Address:     common.HexToAddress("0x02"),
		Topics:      []common.Hash{common.HexToHash("0x03")},
		Data:        []byte{0xaa},
	}}

	if err := logsCollector{}.Transform(f, nil, logs); err != nil {
		t.Fatalf("transform: %v", err)
	}
	col := f.Column("event_from")
	if col == nil {
		t.Fatal("expected the decoder's event_from column to be present")
	}
	if col.Values[0] != "0xfeed" {
		t.Fatalf("event_from = %v", col.Values[0])
	}
	if err := f.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}
