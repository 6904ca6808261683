package schema

import "testing"

func TestResolveDefaults(t *testing.T) {
	table, err := Resolve(Blocks, nil, nil, EncodingBinary)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(table.Columns) == 0 {
		t.Fatal("expected default columns, got none")
	}
	if !table.HasColumn("block_number") {
		t.Fatal("expected block_number in default blocks table")
	}
}

func TestResolveIncludeAll(t *testing.T) {
	d, err := Lookup(Blocks)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	table, err := Resolve(Blocks, []string{"all"}, nil, EncodingBinary)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(table.Columns) != len(d.ColumnTypes) {
		t.Fatalf("expected %d columns, got %d", len(d.ColumnTypes), len(table.Columns))
	}
}

func TestResolveIncludeUnknownColumn(t *testing.T) {
	if _, err := Resolve(Blocks, []string{"not_a_real_column"}, nil, EncodingBinary); err == nil {
		t.Fatal("expected error for unknown column")
	}
}

func TestResolveExclude(t *testing.T) {
	table, err := Resolve(Logs, nil, []string{"data"}, EncodingBinary)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if table.HasColumn("data") {
		t.Fatal("expected data column excluded")
	}
	if !table.HasColumn("topic0") {
		t.Fatal("expected topic0 retained")
	}
}

func TestResolveIncludeAndExcludeConflict(t *testing.T) {
	_, err := Resolve(Logs, []string{"topic0"}, []string{"data"}, EncodingBinary)
	if err == nil {
		t.Fatal("expected error combining include and exclude")
	}
}

func TestResolveBinaryHexEncoding(t *testing.T) {
	table, err := Resolve(Logs, []string{"all"}, nil, EncodingHex)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if table.ColumnTypes["address"] != Hex {
		t.Fatalf("expected address column resolved to Hex, got %v", table.ColumnTypes["address"])
	}
}

func TestResolveSortColumnsSubsetOfProjection(t *testing.T) {
	table, err := Resolve(Logs, []string{"block_number", "address"}, nil, EncodingBinary)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	for _, c := range table.SortColumns {
		if !table.HasColumn(c) {
			t.Fatalf("sort column %q not in projected columns", c)
		}
	}
}

func TestLookupUnregisteredDatatype(t *testing.T) {
	if _, err := Lookup(Datatype(9999)); err == nil {
		t.Fatal("expected error for unregistered datatype")
	}
}

func TestAllDatatypesRegistered(t *testing.T) {
	for dt := Blocks; dt <= JsTraces; dt++ {
		if _, err := Lookup(dt); err != nil {
			t.Fatalf("datatype %d not registered: %v", dt, err)
		}
	}
}
