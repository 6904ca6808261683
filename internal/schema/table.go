package schema

import (
	"sort"

	"github.com/crypto-data/freeze/internal/errs"
)

// Table is the resolved, ordered column set a single collector run will
// actually emit: a subset of a Descriptor's ColumnTypes, with the global
// binary encoding already applied.
type Table struct {
	Datatype    Datatype
	Columns     []string
	ColumnTypes map[string]ColumnType
	SortColumns []string
	// LogDecoder, when attached, is consulted by the Logs collector to
	// extend each row with event-named columns parsed from the log's
	// topics/data — an external collaborator per spec.md §1 (the ABI
	// decoder itself), not something this package implements.
	LogDecoder LogDecoder
}

// LogDecoder parses one log's address/topics/data into named
// event-argument columns. nil is a valid, no-op decoder; the Logs
// collector only calls DecodeLog when a Table has one attached.
type LogDecoder interface {
	DecodeLog(address []byte, topics [][]byte, data []byte) (map[string]any, error)
}

// WithLogDecoder attaches d to t and returns t, for chaining onto Resolve's
// result.
func (t *Table) WithLogDecoder(d LogDecoder) *Table {
	t.LogDecoder = d
	return t
}

// HasColumn reports whether name survived projection into this table.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.ColumnTypes[name]
	return ok
}

// allSentinel is the include-list value that means "every column the
// datatype defines," mirroring the source CLI's `--include-columns all`.
const allSentinel = "all"

// Resolve projects a Descriptor's full column set down to the columns the
// caller asked for, applying the include/exclude rules:
//   - include == ["all"]: every column the datatype defines
//   - include non-empty, exclude non-empty: both given is an error, the
//     source CLI treats this combination as nonsensical
//   - include non-empty, exclude empty: exactly the included columns
//   - include empty, exclude non-empty: defaults minus excluded
//   - both empty: the descriptor's DefaultColumns
//
// Unknown column names in either list are a ParseError naming the bad
// column, not a silent no-op.
func Resolve(dt Datatype, include, exclude []string, enc ColumnEncoding) (*Table, error) {
	d, err := Lookup(dt)
	if err != nil {
		return nil, err
	}

	if len(include) > 0 && len(exclude) > 0 {
		return nil, errs.Parse("cannot combine --include-columns with --exclude-columns", nil)
	}

	var chosen []string
	switch {
	case len(include) == 1 && include[0] == allSentinel:
		chosen = allColumns(d)
	case len(include) > 0:
		chosen = append([]string{}, include...)
	case len(exclude) > 0:
		excluded := toSet(exclude)
		for _, c := range excludeFrom(allColumns(d), excluded) {
			chosen = append(chosen, c)
		}
	default:
		chosen = append([]string{}, d.DefaultColumns...)
	}

	colTypes := make(map[string]ColumnType, len(chosen))
	for _, c := range chosen {
		t, ok := d.ColumnTypes[c]
		if !ok {
			return nil, errs.Parse("unknown column for datatype "+d.Name+": "+c, nil)
		}
		colTypes[c] = resolvedType(t, enc)
	}

	sortCols := make([]string, 0, len(d.SortColumns))
	for _, c := range d.SortColumns {
		if _, ok := colTypes[c]; ok {
			sortCols = append(sortCols, c)
		}
	}

	return &Table{
		Datatype:    dt,
		Columns:     chosen,
		ColumnTypes: colTypes,
		SortColumns: sortCols,
	}, nil
}

func allColumns(d *Descriptor) []string {
	out := make([]string, 0, len(d.ColumnTypes))
	for c := range d.ColumnTypes {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

func excludeFrom(cols []string, excluded map[string]bool) []string {
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		if !excluded[c] {
			out = append(out, c)
		}
	}
	return out
}

func toSet(ss []string) map[string]bool {
	m := make(map[string]bool, len(ss))
	for _, s := range ss {
		m[s] = true
	}
	return m
}
