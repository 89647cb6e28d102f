// Common package contains shared helpers that benefit multiple tools.
// Table is a small indexed TSV table used wherever the pipeline passes
// depth, coverage or summary tables between tools.
package common

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// Table holds a tab-separated table with the first column treated as the
// row index. Row order and column order follow the input file.
type Table struct {
	IndexName string     // Header name of the index column
	Index     []string   // Row names, in file order
	Columns   []string   // Column names, index column excluded
	Rows      [][]string // One slice of cells per row, aligned to Columns
}

// ReadTable parses a TSV table from r. The first header field names the
// index column and the first field of every data row is the row name.
// Short rows are padded with empty cells, overlong rows are truncated.
func ReadTable(r io.Reader) (*Table, error) {
	return ReadTableSep(r, "\t")
}

// ReadTableSep is ReadTable with a custom field separator, for the
// comma-separated tables dRep leaves behind.
func ReadTableSep(r io.Reader, sep string) (*Table, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1024*1024), 64*1024*1024)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("reading table header: %w", err)
		}
		return nil, fmt.Errorf("table is empty or invalid")
	}
	header := strings.Split(strings.TrimRight(scanner.Text(), "\r\n"), sep)

	t := &Table{
		IndexName: header[0],
		Columns:   header[1:],
	}

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" {
			continue
		}
		fields := strings.Split(line, sep)
		cells := make([]string, len(t.Columns))
		copy(cells, fields[1:])
		t.Index = append(t.Index, fields[0])
		t.Rows = append(t.Rows, cells)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading table: %w", err)
	}
	return t, nil
}

// LoadTable reads a TSV table from a file path.
func LoadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	t, err := ReadTable(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// NewTable builds an empty table with the given index name and columns.
func NewTable(indexName string, columns []string) *Table {
	return &Table{IndexName: indexName, Columns: append([]string(nil), columns...)}
}

// AppendRow adds one row to the bottom of the table. Cell count must
// match the column count.
func (t *Table) AppendRow(name string, cells []string) {
	row := make([]string, len(t.Columns))
	copy(row, cells)
	t.Index = append(t.Index, name)
	t.Rows = append(t.Rows, row)
}

// Row returns the cells for the first row with the given name.
func (t *Table) Row(name string) ([]string, bool) {
	for i, idx := range t.Index {
		if idx == name {
			return t.Rows[i], true
		}
	}
	return nil, false
}

// ColumnIndex returns the position of a column, or -1 when absent.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Column returns all cells of a named column in row order.
func (t *Table) Column(name string) ([]string, bool) {
	j := t.ColumnIndex(name)
	if j < 0 {
		return nil, false
	}
	vals := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		vals[i] = row[j]
	}
	return vals, true
}

// FloatColumn parses a named column as float64 values. Empty cells come
// back as NaN so joins with missing rows stay representable.
func (t *Table) FloatColumn(name string) ([]float64, error) {
	cells, ok := t.Column(name)
	if !ok {
		return nil, fmt.Errorf("column %q not found", name)
	}
	vals := make([]float64, len(cells))
	for i, c := range cells {
		if c == "" {
			vals[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(c, 64)
		if err != nil {
			return nil, fmt.Errorf("column %q row %q: %w", name, t.Index[i], err)
		}
		vals[i] = v
	}
	return vals, nil
}

// SetColumn writes a whole column, appending it when absent. The value
// count must match the row count.
func (t *Table) SetColumn(name string, values []string) error {
	if len(values) != len(t.Rows) {
		return fmt.Errorf("column %q: %d values for %d rows", name, len(values), len(t.Rows))
	}
	if j := t.ColumnIndex(name); j >= 0 {
		for i := range t.Rows {
			t.Rows[i][j] = values[i]
		}
		return nil
	}
	t.Columns = append(t.Columns, name)
	for i := range t.Rows {
		t.Rows[i] = append(t.Rows[i], values[i])
	}
	return nil
}

// SelectRows keeps only the rows whose names appear in the given list,
// preserving table order. The second return value lists requested names
// that do not exist in the table.
func (t *Table) SelectRows(names []string) (*Table, []string) {
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}

	out := NewTable(t.IndexName, t.Columns)
	seen := make(map[string]bool)
	for i, idx := range t.Index {
		if wanted[idx] {
			out.AppendRow(idx, t.Rows[i])
			seen[idx] = true
		}
	}

	var missing []string
	for _, n := range names {
		if !seen[n] {
			missing = append(missing, n)
		}
	}
	return out, missing
}

// DropColumns removes the named columns in place. Unknown names are
// ignored.
func (t *Table) DropColumns(names ...string) {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	var keep []int
	for j, c := range t.Columns {
		if !drop[c] {
			keep = append(keep, j)
		}
	}
	cols := make([]string, len(keep))
	for i, j := range keep {
		cols[i] = t.Columns[j]
	}
	for r, row := range t.Rows {
		cells := make([]string, len(keep))
		for i, j := range keep {
			cells[i] = row[j]
		}
		t.Rows[r] = cells
	}
	t.Columns = cols
}

// Transpose flips rows and columns. The index name is kept as the corner
// label so transposed tables stay round-trippable.
func (t *Table) Transpose() *Table {
	out := NewTable(t.IndexName, t.Index)
	for j, col := range t.Columns {
		cells := make([]string, len(t.Index))
		for i := range t.Index {
			cells[i] = t.Rows[i][j]
		}
		out.AppendRow(col, cells)
	}
	return out
}

// Join merges two tables on their index. Inner keeps rows present in
// both, outer keeps every row with empty cells where a side is missing.
// Row order: left table order first, then unmatched right rows.
func Join(left, right *Table, outer bool) *Table {
	out := NewTable(left.IndexName, append(append([]string(nil), left.Columns...), right.Columns...))

	rightAt := make(map[string]int, len(right.Index))
	for i, idx := range right.Index {
		if _, dup := rightAt[idx]; !dup {
			rightAt[idx] = i
		}
	}

	used := make(map[string]bool)
	for i, idx := range left.Index {
		ri, ok := rightAt[idx]
		if !ok && !outer {
			continue
		}
		cells := append([]string(nil), left.Rows[i]...)
		if ok {
			cells = append(cells, right.Rows[ri]...)
			used[idx] = true
		} else {
			cells = append(cells, make([]string, len(right.Columns))...)
		}
		out.AppendRow(idx, cells)
	}

	if outer {
		for i, idx := range right.Index {
			if used[idx] {
				continue
			}
			cells := make([]string, len(left.Columns))
			cells = append(cells, right.Rows[i]...)
			out.AppendRow(idx, cells)
		}
	}
	return out
}

// WriteTo writes the table as TSV, header first.
func (t *Table) WriteTo(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(t.IndexName + "\t" + strings.Join(t.Columns, "\t") + "\n"); err != nil {
		return err
	}
	for i, idx := range t.Index {
		if _, err := bw.WriteString(idx + "\t" + strings.Join(t.Rows[i], "\t") + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteFile writes the table as TSV to a file path.
func (t *Table) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return t.WriteTo(f)
}
