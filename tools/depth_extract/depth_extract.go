// Depth_extract filters a depth table down to a chosen set of rows and
// writes the transposed result, which is the orientation the downstream
// coverage tools want (samples as rows, contigs as columns).
package depth_extract

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
	fs := flag.NewFlagSet("depth_extract", flag.ExitOnError)

	inFile := fs.String("in_file", "", "Input depth table (TSV, first column is the row index)")
	outFile := fs.String("out_file", "", "Output table path (default: stdout)")
	var names multiString
	fs.Var(&names, "name", "Row name to keep (can repeat -name multiple times; no -name transposes the whole table)")

	err := fs.Parse(args)
	if err != nil {
		fmt.Println("Error parsing flags:", err)
		os.Exit(1)
	}

	if *inFile == "" {
		fmt.Println("Usage: -in_file <table.tsv> [-name <row> ...] [-out_file <file>]")
		os.Exit(1)
	}

	table, err := common.LoadTable(*inFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	var transposed *common.Table
	if len(names) == 0 {
		transposed = table.Transpose()
	} else {
		transposed, err = ExtractRows(table, names)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}
	}

	if *outFile == "" {
		if err := transposed.WriteTo(os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, "Error writing table:", err)
			os.Exit(1)
		}
		return
	}
	if err := transposed.WriteFile(*outFile); err != nil {
		fmt.Fprintln(os.Stderr, "Error writing table:", err)
		os.Exit(1)
	}
	fmt.Printf("Filtered and transposed table saved to '%s'.\n", *outFile)
}

// ExtractRows keeps the named rows of the table and transposes the
// result. Names that are absent from the table are reported on stderr;
// an error is returned only when none of them match.
func ExtractRows(table *common.Table, names []string) (*common.Table, error) {
	filtered, missing := table.SelectRows(names)
	if len(missing) > 0 {
		fmt.Fprintf(os.Stderr, "Warning: The following names were not found in the table: %s\n", strings.Join(missing, ", "))
	}
	if len(filtered.Index) == 0 {
		return nil, fmt.Errorf("none of the provided names were found in the input table")
	}
	return filtered.Transpose(), nil
}
