package sink

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/crypto-data/freeze/internal/dataframe"
	"github.com/crypto-data/freeze/internal/errs"
	"github.com/crypto-data/freeze/internal/schema"
)

const defaultRowGroupSize = 128 * 1024 * 1024

// parquetFieldSchema renders one column's xitongsys/parquet-go dynamic
// schema tag string. Every field is OPTIONAL: lenient collectors and
// fused MetaCollectors both leave some rows with some columns unpopulated,
// and a required field would reject that at write time.
func parquetFieldSchema(name string, t schema.ColumnType) string {
	switch t {
	case schema.Int32:
		return "name=" + name + ", type=INT32, repetitiontype=OPTIONAL"
	case schema.Int64:
		return "name=" + name + ", type=INT64, repetitiontype=OPTIONAL"
	case schema.UInt32:
		return "name=" + name + ", type=INT32, convertedtype=UINT_32, repetitiontype=OPTIONAL"
	case schema.UInt64:
		return "name=" + name + ", type=INT64, convertedtype=UINT_64, repetitiontype=OPTIONAL"
	case schema.Float64:
		return "name=" + name + ", type=DOUBLE, repetitiontype=OPTIONAL"
	case schema.String, schema.Hex:
		return "name=" + name + ", type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"
	case schema.Binary:
		return "name=" + name + ", type=BYTE_ARRAY, repetitiontype=OPTIONAL"
	case schema.Decimal128, schema.U256:
		// Stored as a decimal-string BYTE_ARRAY rather than a true
		// FIXED_LEN_BYTE_ARRAY DECIMAL: parquet-go's dynamic schema path
		// has no ergonomic way to hand it a big.Int's two's-complement
		// bytes at a chosen precision/scale, and a string round-trips
		// exactly for any consumer that parses it back with a big-decimal
		// library.
		return "name=" + name + ", type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"
	default:
		return "name=" + name + ", type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"
	}
}

func compressionCodec(name string) parquet.CompressionCodec {
	switch name {
	case "gzip":
		return parquet.CompressionCodec_GZIP
	case "uncompressed":
		return parquet.CompressionCodec_UNCOMPRESSED
	default:
		return parquet.CompressionCodec_SNAPPY
	}
}

// parquetCell converts one column value to the pointer-boxed Go type
// parquet-go's dynamic CSVWriter expects for an OPTIONAL field of the
// given logical type; nil stays nil (an absent/null cell).
func parquetCell(t schema.ColumnType, v any) any {
	if v == nil {
		return nil
	}
	switch t {
	case schema.Int32:
		n, _ := v.(int32)
		return &n
	case schema.Int64:
		n, _ := v.(int64)
		return &n
	case schema.UInt32:
		n, _ := v.(uint32)
		i := int32(n)
		return &i
	case schema.UInt64:
		n, _ := v.(uint64)
		i := int64(n)
		return &i
	case schema.Float64:
		n, _ := v.(float64)
		return &n
	case schema.Hex:
		if b, ok := v.([]byte); ok {
			s := hexutil.Encode(b)
			return &s
		}
	case schema.Binary:
		if b, ok := v.([]byte); ok {
			s := string(b)
			return &s
		}
	case schema.Decimal128:
		if d, ok := v.(decimal.Decimal); ok {
			s := d.String()
			return &s
		}
	case schema.U256:
		switch n := v.(type) {
		case *uint256.Int:
			s := n.ToBig().String()
			return &s
		case *big.Int:
			s := n.String()
			return &s
		}
	}
	s := cellText(t, v)
	return &s
}

// writeParquet writes f to path using the dynamic-schema CSVWriter path:
// the column set isn't known at compile time (it depends on the caller's
// --include-columns projection), so there's no static struct to tag.
func writeParquet(path string, f *dataframe.Frame, opts ParquetOptions) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return errs.File("could not open parquet file", err)
	}
	defer fw.Close()

	columns := f.Table.Columns
	md := make([]string, len(columns))
	for i, name := range columns {
		md[i] = parquetFieldSchema(name, f.Table.ColumnTypes[name])
	}

	pw, err := writer.NewCSVWriter(md, fw, 4)
	if err != nil {
		return errs.File("could not create parquet writer", err)
	}
	rowGroupSize := opts.RowGroupSize
	if rowGroupSize <= 0 {
		rowGroupSize = defaultRowGroupSize
	}
	pw.RowGroupSize = rowGroupSize
	pw.CompressionType = compressionCodec(opts.Compression)

	order := f.SortedRowIndices()
	for _, rowIdx := range order {
		rec := make([]any, len(columns))
		for i, name := range columns {
			col := f.Column(name)
			var v any
			if col != nil && rowIdx < len(col.Values) {
				v = col.Values[rowIdx]
			}
			rec[i] = parquetCell(f.Table.ColumnTypes[name], v)
		}
		if err := pw.Write(rec); err != nil {
			return errs.File("could not write parquet row", err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		return errs.File("could not finalize parquet row groups", err)
	}
	return nil
}
