// Table_merge stitches tables together. Join mode merges on the row
// index and adds the columns of every input, which is how the per-MAG
// per-sample coverage cells become a full matrix. Concat mode stacks
// rows from tables sharing a header.
package table_merge

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"mag_buddy_go/utils"
)

type multiString []string

func (s *multiString) String() string {
	return strings.Join(*s, ",")
}

func (s *multiString) Set(value string) error {
	*s = append(*s, value)
	return nil
}

func Run(args []string) {
	fs := flag.NewFlagSet("table_merge", flag.ExitOnError)

	var inFiles multiString
	fs.Var(&inFiles, "in_file", "Input table (can repeat -in_file multiple times)")
	outFile := fs.String("out_file", "", "Output table path (default: stdout, concat mode requires a file)")
	mode := fs.String("mode", "join", "Merge mode: join (on row index) or concat (stack rows)")
	outer := fs.Bool("outer", false, "Join mode: use an outer join instead of the default inner join")

	err := fs.Parse(args)
	if err != nil {
		fmt.Println("Error parsing flags:", err)
		os.Exit(1)
	}

	if len(inFiles) == 0 {
		fmt.Println("Usage: -in_file <table.tsv> [-in_file <table.tsv> ...] [-out_file <file>] [-mode join|concat] [-outer]")
		os.Exit(1)
	}

	var tables []*common.Table
	for _, p := range inFiles {
		table, rerr := common.LoadTable(p)
		if rerr != nil {
			fmt.Fprintln(os.Stderr, "Error reading input files:", rerr)
			os.Exit(1)
		}
		tables = append(tables, table)
	}

	var merged *common.Table
	switch *mode {
	case "join":
		merged = tables[0]
		for _, t := range tables[1:] {
			merged = common.Join(merged, t, *outer)
		}
	case "concat":
		if *outFile == "" {
			fmt.Fprintln(os.Stderr, "Error: -mode concat requires -out_file.")
			os.Exit(1)
		}
		merged = ConcatTables(tables)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown -mode %q (want join or concat)\n", *mode)
		os.Exit(1)
	}

	if *outFile == "" {
		if err := merged.WriteTo(os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, "Error writing table:", err)
			os.Exit(1)
		}
		return
	}
	if err := merged.WriteFile(*outFile); err != nil {
		fmt.Fprintln(os.Stderr, "Error saving merged table:", err)
		os.Exit(1)
	}
	if *mode == "concat" {
		fmt.Println("Concatenated table saved to", *outFile)
	} else {
		fmt.Println("Merged table saved to", *outFile)
	}
}

// ConcatTables stacks the rows of every table. Columns are aligned by
// name, keeping the union in first-seen order with empty cells where a
// table lacks a column. Row names may repeat.
func ConcatTables(tables []*common.Table) *common.Table {
	var columns []string
	seen := make(map[string]bool)
	for _, t := range tables {
		for _, c := range t.Columns {
			if !seen[c] {
				seen[c] = true
				columns = append(columns, c)
			}
		}
	}

	out := common.NewTable(tables[0].IndexName, columns)
	for _, t := range tables {
		at := make(map[string]int, len(t.Columns))
		for j, c := range t.Columns {
			at[c] = j
		}
		for r, name := range t.Index {
			cells := make([]string, len(columns))
			for i, c := range columns {
				if j, ok := at[c]; ok {
					cells[i] = t.Rows[r][j]
				}
			}
			out.AppendRow(name, cells)
		}
	}
	return out
}
