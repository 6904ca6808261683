// Package sink writes a collected Frame to its output file: one file per
// (network, datatype, partition), named deterministically so a re-run can
// detect already-completed work and skip it without touching the network.
package sink

import (
	"context"
	"os"
	"path/filepath"

	"github.com/crypto-data/freeze/internal/dataframe"
	"github.com/crypto-data/freeze/internal/errs"
	"github.com/crypto-data/freeze/internal/schema"
)

// Format is the output file format a FileSink writes.
type Format int

const (
	FormatParquet Format = iota
	FormatCSV
	FormatJSON
)

// Ext returns the format's file extension, without a leading dot.
func (f Format) Ext() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatJSON:
		return "json"
	default:
		return "parquet"
	}
}

// ParseFormat maps a CLI --output-format value to a Format.
func ParseFormat(name string) (Format, error) {
	switch name {
	case "parquet", "":
		return FormatParquet, nil
	case "csv":
		return FormatCSV, nil
	case "json", "jsonl":
		return FormatJSON, nil
	default:
		return 0, errs.Parse("unknown output format: "+name, nil)
	}
}

// ParquetOptions controls the parquet backend's physical layout, left at
// their zero values for the CSV and JSON backends. Column statistics are
// always computed by parquet-go's writer; its dynamic-schema path exposes
// no switch to disable them, so there is no Statistics toggle here.
type ParquetOptions struct {
	Compression  string // "snappy" (default), "gzip", "uncompressed"
	RowGroupSize int64
}

// FileSink writes partitions to the local filesystem using the naming
// scheme {output_dir}/{prefix}__{datatype}__{stub}[__{suffix}].{ext}.
type FileSink struct {
	OutputDir string
	Prefix    string // network name, e.g. "ethereum"
	Format    Format
	Overwrite bool
	Parquet   ParquetOptions
}

// New builds a FileSink, creating OutputDir if it does not already exist.
func New(outputDir, prefix string, format Format, overwrite bool, parquetOpts ParquetOptions) (*FileSink, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, errs.File("could not create output directory", err)
	}
	return &FileSink{OutputDir: outputDir, Prefix: prefix, Format: format, Overwrite: overwrite, Parquet: parquetOpts}, nil
}

// ID computes the deterministic output path for one datatype's partition,
// identified by its stub (the partition's min-to-max formatting) and an
// optional suffix disambiguating more than one file for the same stub.
func (s *FileSink) ID(dt schema.Datatype, stub, suffix string) (string, error) {
	d, err := schema.Lookup(dt)
	if err != nil {
		return "", err
	}
	name := s.Prefix + "__" + d.Name + "__" + stub
	if suffix != "" {
		name += "__" + suffix
	}
	return filepath.Join(s.OutputDir, name+"."+s.Format.Ext()), nil
}

// Exists reports whether a file already sits at path.
func (s *FileSink) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errs.File("could not stat output path", err)
}

// Write serializes f through the sink's configured format backend,
// writing to a temporary file in the same directory first and renaming it
// into place so a reader never observes a partially written file.
func (s *FileSink) Write(_ context.Context, f *dataframe.Frame, path string) error {
	tmp := path + ".tmp"
	var err error
	switch s.Format {
	case FormatCSV:
		err = writeCSV(tmp, f)
	case FormatJSON:
		err = writeJSON(tmp, f)
	default:
		err = writeParquet(tmp, f, s.Parquet)
	}
	if err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		return errs.File("could not finalize output file", err)
	}
	return nil
}
