package session

import (
	"fmt"
	"os"
	"strconv"

	common "mag_buddy_go/utils"
)

// HighQualityQuery is the standard genome-quality call expressed in the
// summary query language.
const HighQualityQuery = "Completeness >= 90 and Contamination <= 5"

// SummaryRepository loads the MAG quality summary once and answers
// lookups and queries against it. On load it appends two derived
// columns, "binner" and "assembler", decoded from each MAG name, so
// queries can filter on them like any file column. Read-only after
// construction and safe for concurrent use.
type SummaryRepository struct {
	table *common.Table
	rowAt map[string]int
}

// NewSummaryRepository reads the summary table and validates the parts
// the rest of the toolkit depends on: a unique MAG index and numeric
// Completeness and Contamination columns. Bad input fails loudly here
// rather than as a wrong quality call three tools later.
func NewSummaryRepository(path string) (*SummaryRepository, error) {
	t, err := common.LoadTable(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read summary %s: %w", path, err)
	}

	for _, col := range []string{"Completeness", "Contamination"} {
		vals, ok := t.Column(col)
		if !ok {
			return nil, fmt.Errorf("summary %s is missing required column %q", path, col)
		}
		for i, v := range vals {
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				return nil, fmt.Errorf("summary %s: %s of %q is not numeric: %q", path, col, t.Index[i], v)
			}
		}
	}

	rowAt := make(map[string]int, len(t.Index))
	for i, name := range t.Index {
		if _, dup := rowAt[name]; dup {
			return nil, fmt.Errorf("%w: %q in %s", ErrDuplicateIndex, name, path)
		}
		rowAt[name] = i
	}

	binners := make([]string, len(t.Index))
	assemblers := make([]string, len(t.Index))
	for i, name := range t.Index {
		binners[i] = magBinner(name)
		assemblers[i] = magAssembler(name)
	}
	if err := t.SetColumn("binner", binners); err != nil {
		return nil, err
	}
	if err := t.SetColumn("assembler", assemblers); err != nil {
		return nil, err
	}

	return &SummaryRepository{table: t, rowAt: rowAt}, nil
}

// SummaryIndex returns every MAG name in file order.
func (r *SummaryRepository) SummaryIndex() []string {
	out := make([]string, len(r.table.Index))
	copy(out, r.table.Index)
	return out
}

// Table exposes the loaded summary, derived columns included. Callers
// must treat it as read-only.
func (r *SummaryRepository) Table() *common.Table {
	return r.table
}

// MagData returns one summary row as a column-to-cell map. The map is a
// fresh copy the caller may keep. Unknown names fail with
// ErrMagNotInSummary.
func (r *SummaryRepository) MagData(name string) (map[string]string, error) {
	i, ok := r.rowAt[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMagNotInSummary, name)
	}
	data := make(map[string]string, len(r.table.Columns))
	for j, col := range r.table.Columns {
		data[col] = r.table.Rows[i][j]
	}
	return data, nil
}

// MagsByQuery returns the names of every MAG matching the query, in
// summary order. Query trouble, a parse error or an unknown column,
// is reported on stderr and yields an empty result instead of taking
// an interactive session down.
func (r *SummaryRepository) MagsByQuery(query string) []string {
	expr, err := ParseQuery(query)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error executing query:", err)
		return nil
	}

	var out []string
	for i, name := range r.table.Index {
		row := r.table.Rows[i]
		match, err := expr.Eval(func(col string) (string, bool) {
			j := r.table.ColumnIndex(col)
			if j < 0 {
				return "", false
			}
			return row[j], true
		})
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error executing query:", err)
			return nil
		}
		if match {
			out = append(out, name)
		}
	}
	return out
}

// HQMagNames returns the MAGs passing the standard high-quality call.
func (r *SummaryRepository) HQMagNames() []string {
	return r.MagsByQuery(HighQualityQuery)
}
