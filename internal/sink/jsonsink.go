package sink

import (
	"os"

	"github.com/goccy/go-json"

	"github.com/crypto-data/freeze/internal/dataframe"
	"github.com/crypto-data/freeze/internal/errs"
)

// writeJSON writes f to path as a JSON array of row objects, each keyed by
// column name, in the table's sorted row order.
func writeJSON(path string, f *dataframe.Frame) error {
	file, err := os.Create(path)
	if err != nil {
		return errs.File("could not create json file", err)
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	columns := f.Table.Columns
	order := f.SortedRowIndices()

	rows := make([]map[string]any, 0, len(order))
	for _, rowIdx := range order {
		row := make(map[string]any, len(columns))
		for _, name := range columns {
			col := f.Column(name)
			var v any
			if col != nil && rowIdx < len(col.Values) {
				v = col.Values[rowIdx]
			}
			row[name] = cellJSON(f.Table.ColumnTypes[name], v)
		}
		rows = append(rows, row)
	}
	if err := enc.Encode(rows); err != nil {
		return errs.File("could not encode json output", err)
	}
	return nil
}
