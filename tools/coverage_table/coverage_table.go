// Coverage_table condenses one MAG's depth table into a single cell:
// the length-weighted average depth of its contigs in one sample. The
// output is a one-row table ready for table_merge, so per-MAG
// per-sample cells can be stitched into a full coverage matrix.
package coverage_table

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"mag_buddy_go/utils"
)

func Run(args []string) {
	fs := flag.NewFlagSet("coverage_table", flag.ExitOnError)

	inFile := fs.String("in_file", "", "Input depth table for one MAG (TSV)")
	outFile := fs.String("out_file", "", "Output table path")
	sample := fs.String("sample", "", "Sample name for the output column")
	mag := fs.String("mag", "", "MAG name for the output row")

	err := fs.Parse(args)
	if err != nil {
		fmt.Println("Error parsing flags:", err)
		os.Exit(1)
	}

	if *inFile == "" || *outFile == "" || *sample == "" || *mag == "" {
		fmt.Println("Usage: -in_file <depth.tsv> -out_file <file> -sample <name> -mag <name>")
		os.Exit(1)
	}

	table, err := common.LoadTable(*inFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	avg, err := WeightedAverageDepth(table)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	out := common.NewTable("", []string{*sample})
	out.AppendRow(*mag, []string{strconv.FormatFloat(avg, 'g', -1, 64)})
	if err := out.WriteFile(*outFile); err != nil {
		fmt.Fprintln(os.Stderr, "Error writing table:", err)
		os.Exit(1)
	}
	fmt.Printf("Coverage table for '%s' saved to '%s'.\n", *mag, *outFile)
}

// WeightedAverageDepth computes sum(contigLen * depth) / sum(contigLen)
// over the table, taking depth from the first bam column, the one right
// after contigLen and totalAvgDepth. Zero total length yields zero.
// Cells that do not parse stay out of their sum.
func WeightedAverageDepth(table *common.Table) (float64, error) {
	lenCol, ok := table.Column("contigLen")
	if !ok {
		return 0, fmt.Errorf("input table has no contigLen column")
	}
	if len(table.Columns) < 3 {
		return 0, fmt.Errorf("input table has no depth column after contigLen and totalAvgDepth")
	}
	depthCol := make([]string, len(table.Rows))
	for i, row := range table.Rows {
		depthCol[i] = row[2]
	}

	var sumK, sumLen float64
	for i := range lenCol {
		length, lerr := strconv.ParseFloat(lenCol[i], 64)
		if lerr != nil {
			continue
		}
		sumLen += length
		if depth, derr := strconv.ParseFloat(depthCol[i], 64); derr == nil {
			sumK += length * depth
		}
	}
	if sumLen <= 0 {
		return 0, nil
	}
	return sumK / sumLen, nil
}
