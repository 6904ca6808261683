package sink

import (
	"encoding/csv"
	"os"

	"github.com/crypto-data/freeze/internal/dataframe"
	"github.com/crypto-data/freeze/internal/errs"
)

// writeCSV writes f to path as a header row followed by one row per
// frame row, in the table's sorted row order.
func writeCSV(path string, f *dataframe.Frame) error {
	file, err := os.Create(path)
	if err != nil {
		return errs.File("could not create csv file", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	columns := f.Table.Columns
	if err := w.Write(columns); err != nil {
		return errs.File("could not write csv header", err)
	}

	order := f.SortedRowIndices()
	record := make([]string, len(columns))
	for _, rowIdx := range order {
		for i, name := range columns {
			col := f.Column(name)
			var v any
			if col != nil && rowIdx < len(col.Values) {
				v = col.Values[rowIdx]
			}
			record[i] = cellText(f.Table.ColumnTypes[name], v)
		}
		if err := w.Write(record); err != nil {
			return errs.File("could not write csv row", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errs.File("could not flush csv writer", err)
	}
	return nil
}
