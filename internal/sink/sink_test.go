package sink

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/crypto-data/freeze/internal/dataframe"
	"github.com/crypto-data/freeze/internal/schema"
)

func blockFrame(t *testing.T) *dataframe.Frame {
	t.Helper()
	tbl, err := schema.Resolve(schema.Blocks, []string{"block_number", "hash"}, nil, schema.EncodingHex)
	if err != nil {
		t.Fatal(err)
	}
	f := dataframe.New(tbl)
	f.Push("block_number", uint32(17000000))
	f.Push("hash", []byte{0xde, 0xad, 0xbe, 0xef})
	f.EndRow()
	return f
}

func TestIDMatchesNamingScheme(t *testing.T) {
	s, err := New(t.TempDir(), "ethereum", FormatParquet, true, ParquetOptions{})
	if err != nil {
		t.Fatal(err)
	}
	id, err := s.ID(schema.Blocks, "17000000_to_17000000", "")
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(s.OutputDir, "ethereum__blocks__17000000_to_17000000.parquet")
	if id != want {
		t.Fatalf("got %q, want %q", id, want)
	}
}

func TestIDWithSuffix(t *testing.T) {
	s, err := New(t.TempDir(), "ethereum", FormatCSV, true, ParquetOptions{})
	if err != nil {
		t.Fatal(err)
	}
	id, err := s.ID(schema.Blocks, "100_to_200", "retry1")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(id) != "ethereum__blocks__100_to_200__retry1.csv" {
		t.Fatalf("got %q", id)
	}
}

func TestExistsReflectsFilesystem(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, "ethereum", FormatCSV, true, ParquetOptions{})
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "present.csv")
	if ok, _ := s.Exists(path); ok {
		t.Fatal("expected file to not exist yet")
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if ok, _ := s.Exists(path); !ok {
		t.Fatal("expected file to exist")
	}
}

func TestWriteCSVProducesHeaderAndRow(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, "ethereum", FormatCSV, true, ParquetOptions{})
	if err != nil {
		t.Fatal(err)
	}
	f := blockFrame(t)
	path := filepath.Join(dir, "out.csv")
	if err := s.Write(context.Background(), f, path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Fatal("expected non-empty csv output")
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatal("expected the temp file to be renamed away")
	}
}

func TestWriteJSONProducesArray(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, "ethereum", FormatJSON, true, ParquetOptions{})
	if err != nil {
		t.Fatal(err)
	}
	f := blockFrame(t)
	path := filepath.Join(dir, "out.json")
	if err := s.Write(context.Background(), f, path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 || data[0] != '[' {
		t.Fatalf("expected a json array, got %q", data)
	}
}

func TestCellTextHexVsBinary(t *testing.T) {
	b := []byte{0xab, 0xcd}
	if got := cellText(schema.Hex, b); got != "0xabcd" {
		t.Fatalf("got %q", got)
	}
	if got := cellText(schema.Binary, b); got == "0xabcd" {
		t.Fatal("expected binary encoding to differ from hex encoding")
	}
	if got := cellText(schema.Hex, nil); got != "" {
		t.Fatalf("expected empty string for nil, got %q", got)
	}
}
