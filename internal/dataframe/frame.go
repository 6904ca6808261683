// Package dataframe is the column container collectors accumulate rows
// into. A Frame only allocates storage for columns present in its Table
// projection — the "store-if-present" rule that lets the schema package's
// include/exclude resolution skip the cost of columns nobody asked for.
package dataframe

import (
	"sort"
	"strconv"

	"github.com/crypto-data/freeze/internal/errs"
	"github.com/crypto-data/freeze/internal/schema"
)

// Column accumulates one output column's values in row order. Values are
// stored as `any` holding the concrete Go type appropriate to Type (int64,
// uint64, string, []byte, *big.Int, decimal.Decimal) — sinks switch on
// Type to encode each value for their target format.
type Column struct {
	Type   schema.ColumnType
	Values []any
}

// Frame accumulates one datatype's collected rows, one column at a time,
// honoring whatever projection its Table resolved.
type Frame struct {
	Table   *schema.Table
	columns map[string]*Column
	nRows   int
}

// New allocates a Frame for the given Table, with an empty Column for each
// projected column name.
func New(table *schema.Table) *Frame {
	f := &Frame{Table: table, columns: make(map[string]*Column, len(table.Columns))}
	for _, name := range table.Columns {
		f.columns[name] = &Column{Type: table.ColumnTypes[name]}
	}
	return f
}

// Push appends value to column name if and only if the table projected
// that column; otherwise it is a silent no-op, implementing "store only
// the columns the schema asked for" without every collector needing its
// own presence check.
func (f *Frame) Push(name string, value any) {
	col, ok := f.columns[name]
	if !ok {
		return
	}
	col.Values = append(col.Values, value)
}

// PushDynamic appends value to column name, creating the column as String
// typed on first use if the table didn't project it — for columns a log
// decoder contributes that the static schema can't name in advance (one
// per decoded event argument). Rows collected before a dynamic column's
// first appearance are backfilled with nil so Validate still sees NRows
// values once EndRow catches up.
func (f *Frame) PushDynamic(name string, value any) {
	col, ok := f.columns[name]
	if !ok {
		col = &Column{Type: schema.String, Values: make([]any, f.nRows)}
		f.columns[name] = col
	}
	col.Values = append(col.Values, value)
}

// EndRow advances the row counter; call once per logical row after all of
// that row's Push calls, even if every Push for this row was skipped,
// so NRows tracks logical rows rather than populated-column rows.
func (f *Frame) EndRow() {
	f.nRows++
}

// NRows reports how many logical rows have been committed via EndRow.
func (f *Frame) NRows() int { return f.nRows }

// FillConstant backfills a projected column that no collector Push call
// touched with the same value repeated for every row — used for columns
// like chain_id that are constant for an entire run rather than decoded
// per response.
func (f *Frame) FillConstant(name string, value any) {
	col, ok := f.columns[name]
	if !ok || len(col.Values) != 0 {
		return
	}
	col.Values = make([]any, f.nRows)
	for i := range col.Values {
		col.Values[i] = value
	}
}

// Column returns the named column, or nil if it was not projected.
func (f *Frame) Column(name string) *Column { return f.columns[name] }

// Validate checks that every populated column holds exactly NRows values,
// catching a collector that pushed to some columns of a row but not
// others. Columns with zero pushes (the column was projected but this
// extract call never had data for it) are left as all-nil rather than
// treated as an error, since certain collectors fuse several record kinds
// that don't all touch every projected column.
func (f *Frame) Validate() error {
	for name, col := range f.columns {
		if len(col.Values) != 0 && len(col.Values) != f.nRows {
			return errs.DataFrame("column " + name + " has " + strconv.Itoa(len(col.Values)) + " values, frame has " + strconv.Itoa(f.nRows) + " rows")
		}
	}
	return nil
}

// SortedRowIndices returns row indices ordered by the table's sort
// columns, stable so rows with equal sort keys retain collection order.
func (f *Frame) SortedRowIndices() []int {
	idx := make([]int, f.nRows)
	for i := range idx {
		idx[i] = i
	}
	if len(f.Table.SortColumns) == 0 {
		return idx
	}
	sort.SliceStable(idx, func(a, b int) bool {
		for _, name := range f.Table.SortColumns {
			col := f.columns[name]
			if col == nil || len(col.Values) == 0 {
				continue
			}
			ai, bi := idx[a], idx[b]
			if ai >= len(col.Values) || bi >= len(col.Values) {
				continue
			}
			cmp := compare(col.Values[ai], col.Values[bi])
			if cmp != 0 {
				return cmp < 0
			}
		}
		return false
	})
	return idx
}
