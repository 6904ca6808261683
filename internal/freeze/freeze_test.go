package freeze

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/crypto-data/freeze/internal/chunk"
	"github.com/crypto-data/freeze/internal/collect"
	"github.com/crypto-data/freeze/internal/dataframe"
	"github.com/crypto-data/freeze/internal/dimension"
	"github.com/crypto-data/freeze/internal/planner"
	"github.com/crypto-data/freeze/internal/schema"
	"github.com/crypto-data/freeze/internal/sink"
	"github.com/crypto-data/freeze/internal/source"
)

type fakeBlocksCollector struct{}

func (fakeBlocksCollector) Extract(_ context.Context, _ *source.Source, _ *dimension.Partition, blockNumber uint64) (any, error) {
	return blockNumber, nil
}

func (fakeBlocksCollector) Transform(f *dataframe.Frame, _ *dimension.Partition, blockNumber uint64, response any) error {
	f.Push("block_number", uint32(response.(uint64)))
	f.EndRow()
	return nil
}

func newTestOptions(t *testing.T, outDir string) Options {
	t.Helper()
	collect.Register(&collect.Collector{Datatype: schema.Blocks, ByBlockImpl: fakeBlocksCollector{}})
	tbl, err := schema.Resolve(schema.Blocks, []string{"block_number", "chain_id"}, nil, schema.EncodingHex)
	if err != nil {
		t.Fatal(err)
	}
	s, err := sink.New(outDir, "ethereum", sink.FormatCSV, false, sink.ParquetOptions{})
	if err != nil {
		t.Fatal(err)
	}
	src := source.New(nil, 1, 1000, 2)
	return Options{
		Source:        src,
		Tables:        map[schema.Datatype]*schema.Table{schema.Blocks: tbl},
		Sink:          s,
		ReportDir:     t.TempDir(),
		Timestamp:     "20260730T000000Z",
		EngineVersion: "0.1.0",
		CLIArgv:       []string{"freeze", "blocks", "-b", "1:3"},
	}
}

func TestRunCollectsAndWritesFiles(t *testing.T) {
	outDir := t.TempDir()
	opts := newTestOptions(t, outDir)
	blocks := chunk.Range(1, 3)
	req := planner.Request{Datatypes: []schema.Datatype{schema.Blocks}, Blocks: &blocks, ChunkSize: 10}

	summary, err := Run(context.Background(), req, opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(summary.Completed) != 1 {
		t.Fatalf("expected 1 completed file, got %+v", summary)
	}
	if _, err := os.Stat(summary.Completed[0]); err != nil {
		t.Fatalf("expected output file to exist: %v", err)
	}
	if _, err := os.Stat(filepath.Join(opts.ReportDir, "20260730T000000Z.json")); err != nil {
		t.Fatalf("expected final report: %v", err)
	}
}

func TestRunSkipsAlreadyCompletePartitions(t *testing.T) {
	outDir := t.TempDir()
	opts := newTestOptions(t, outDir)
	blocks := chunk.Range(1, 3)
	req := planner.Request{Datatypes: []schema.Datatype{schema.Blocks}, Blocks: &blocks, ChunkSize: 10}

	if _, err := Run(context.Background(), req, opts); err != nil {
		t.Fatal(err)
	}
	summary, err := Run(context.Background(), req, opts)
	if err != nil {
		t.Fatal(err)
	}
	if summary.NSkipped == 0 {
		t.Fatalf("expected the second run to skip the already-written partition, got %+v", summary)
	}
	if len(summary.Completed) != 0 {
		t.Fatalf("expected nothing new to be written, got %+v", summary.Completed)
	}
}
