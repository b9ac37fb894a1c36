// Package table is an ordered measurement table: labelled rows, columns in
// first-use order, and CSV export.
package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"cogentcore.org/core/base/ordmap"
)

// LabelColumn is the header of the row label column in CSV output.
const LabelColumn = "Label"

// Row is a labelled set of measurements.
type Row struct {
	Label  string
	values *ordmap.Map[string, float64]
}

// Value returns the cell in column, if set.
func (r *Row) Value(column string) (float64, bool) {
	return r.values.ValueByKeyTry(column)
}

// Table holds rows in insertion order. Rows may share a label.
type Table struct {
	rows    []*Row
	columns *ordmap.Map[string, int]
}

// New returns an empty table.
func New() *Table {
	return &Table{columns: ordmap.New[string, int]()}
}

// InsertRow appends an empty row and makes it the last row.
func (t *Table) InsertRow(label string) *Row {
	r := &Row{Label: label, values: ordmap.New[string, float64]()}
	t.rows = append(t.rows, r)
	return r
}

// RowIndex returns the index of the last row labelled label, or -1.
func (t *Table) RowIndex(label string) int {
	for i := len(t.rows) - 1; i >= 0; i-- {
		if t.rows[i].Label == label {
			return i
		}
	}
	return -1
}

// AppendToLastRow sets column on the last row, adding the column if new.
// It inserts an unlabelled row if the table is empty.
func (t *Table) AppendToLastRow(column string, v float64) {
	if len(t.rows) == 0 {
		t.InsertRow("")
	}
	t.set(t.rows[len(t.rows)-1], column, v)
}

// Set writes a cell on the last row labelled label, inserting the row if
// needed.
func (t *Table) Set(label, column string, v float64) {
	i := t.RowIndex(label)
	if i < 0 {
		t.set(t.InsertRow(label), column, v)
		return
	}
	t.set(t.rows[i], column, v)
}

func (t *Table) set(r *Row, column string, v float64) {
	if _, ok := t.columns.ValueByKeyTry(column); !ok {
		t.columns.Add(column, t.columns.Len())
	}
	// Add replaces in place when the column is already set.
	r.values.Add(column, v)
}

// Value returns the cell at (label, column) from the last row with label.
func (t *Table) Value(label, column string) (float64, bool) {
	i := t.RowIndex(label)
	if i < 0 {
		return math.NaN(), false
	}
	return t.rows[i].Value(column)
}

// Columns returns the column names in first-use order.
func (t *Table) Columns() []string { return t.columns.Keys() }

// Rows returns the rows in insertion order.
func (t *Table) Rows() []*Row { return t.rows }

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// IsEmpty reports whether the table has no rows.
func (t *Table) IsEmpty() bool { return len(t.rows) == 0 }

// WriteCSV writes a header line and one line per row. Missing cells are
// empty; NaN is written as "NaN".
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	cols := t.Columns()
	if err := cw.Write(append([]string{LabelColumn}, cols...)); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	record := make([]string, len(cols)+1)
	for _, r := range t.rows {
		record[0] = r.Label
		for i, c := range cols {
			record[i+1] = ""
			if v, ok := r.Value(c); ok {
				record[i+1] = strconv.FormatFloat(v, 'g', -1, 64)
			}
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row %q: %w", r.Label, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Save writes the table as CSV to path.
func (t *Table) Save(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save table: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return t.WriteCSV(f)
}
