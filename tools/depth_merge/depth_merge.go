// Depth_merge combines per-sample metabat2 depth tables into one wide
// coverage table, one depth and one variance column per sample, with
// totalAvgDepth recomputed over all samples. Contigs whose coverage
// pattern deviates strongly from the per-sample medians are dropped as
// outliers unless asked otherwise.
package depth_merge

import (
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"

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
	fs := flag.NewFlagSet("depth_merge", flag.ExitOnError)

	var inFiles multiString
	fs.Var(&inFiles, "in_file", "Input depth table (can repeat -in_file once per sample)")
	outFile := fs.String("out_file", "", "Output table path (default: stdout)")
	inner := fs.Bool("inner", false, "Use an inner join instead of the default outer join")
	keepOutliers := fs.Bool("keep_outliers", false, "Keep contigs with outlier coverage values")
	threshold := fs.Float64("threshold", 3.5, "Outlier threshold, higher values are more lenient")

	err := fs.Parse(args)
	if err != nil {
		fmt.Println("Error parsing flags:", err)
		os.Exit(1)
	}

	if len(inFiles) == 0 {
		fmt.Println("Usage: -in_file <depth.tsv> [-in_file <depth.tsv> ...] [-out_file <file>] [-inner] [-keep_outliers] [-threshold <n>]")
		os.Exit(1)
	}

	paths := append([]string(nil), inFiles...)
	sort.Strings(paths)

	var tables []*common.Table
	for _, p := range paths {
		table, rerr := ReadDepthTable(p, SampleFromPath(p))
		if rerr != nil {
			fmt.Fprintln(os.Stderr, "Error reading input files:", rerr)
			os.Exit(1)
		}
		tables = append(tables, table)
	}

	outer := !*inner
	if outer {
		fmt.Fprintln(os.Stderr, "Using outer join")
	} else {
		fmt.Fprintln(os.Stderr, "Using inner join")
	}

	merged := MergeDepthTables(tables, outer)
	if len(merged.Index) == 0 {
		fmt.Fprintln(os.Stderr, "Error: The resulting merged table has no contigs. Please check your input data and parameters.")
		os.Exit(1)
	}

	kept, outliers := SplitOutliers(merged, *threshold)
	fmt.Fprintf(os.Stderr, "weird %d contigs with outlier coverage values:\n", len(outliers))
	fmt.Fprintln(os.Stderr, outliers)
	if !*keepOutliers {
		merged = kept
	}
	fmt.Fprintf(os.Stderr, "Final number of contigs: %d\n", len(merged.Index))

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
	fmt.Printf("Merged table saved to %s\n", *outFile)
}

// SampleFromPath derives the sample name from the parent directory of a
// depth table, which is how the per-sample metabat2 outputs are laid
// out on disk.
func SampleFromPath(path string) string {
	return filepath.Base(filepath.Dir(path))
}

// ReadDepthTable loads one metabat2 depth table and renames its bam
// columns after the sample, so the merged table carries one depth and
// one variance column per sample.
func ReadDepthTable(path, sample string) (*common.Table, error) {
	t, err := common.LoadTable(path)
	if err != nil {
		return nil, err
	}
	if len(t.Index) == 0 {
		return nil, fmt.Errorf("input file %s is empty", path)
	}
	if len(t.Columns) != 4 {
		return nil, fmt.Errorf("input file %s has %d data columns, expected contigLen, totalAvgDepth and one bam pair", path, len(t.Columns))
	}
	t.Columns = []string{t.Columns[0], t.Columns[1], sample, sample + "-var"}
	return t, nil
}

// MergeDepthTables joins the per-sample tables on contig name and
// recomputes totalAvgDepth as the row-wise sum over every sample,
// rounded to four decimals. The first table decides the leading column
// order.
func MergeDepthTables(tables []*common.Table, outer bool) *common.Table {
	avg := totalAvgColumn(tables, outer)

	merged := tables[0]
	originalOrder := append([]string(nil), merged.Columns...)
	merged.DropColumns("totalAvgDepth")
	merged = common.Join(merged, avg, outer)
	merged = selectColumns(merged, originalOrder)

	for _, t := range tables[1:] {
		var keep []string
		for _, c := range t.Columns {
			if c != "contigLen" && c != "totalAvgDepth" {
				keep = append(keep, c)
			}
		}
		merged = common.Join(merged, selectColumns(t, keep), outer)
	}
	return merged
}

// totalAvgColumn joins the totalAvgDepth column of every table and sums
// it per contig. Cells missing after an outer join count as zero.
func totalAvgColumn(tables []*common.Table, outer bool) *common.Table {
	joined := selectColumns(tables[0], []string{"totalAvgDepth"})
	for _, t := range tables[1:] {
		joined = common.Join(joined, selectColumns(t, []string{"totalAvgDepth"}), outer)
	}

	out := common.NewTable(joined.IndexName, []string{"totalAvgDepth"})
	for r, name := range joined.Index {
		var sum float64
		for _, cell := range joined.Rows[r] {
			if v, err := strconv.ParseFloat(cell, 64); err == nil {
				sum += v
			}
		}
		sum = math.Round(sum*1e4) / 1e4
		out.AppendRow(name, []string{strconv.FormatFloat(sum, 'g', -1, 64)})
	}
	return out
}

// selectColumns copies a table keeping only the named columns, in the
// given order.
func selectColumns(t *common.Table, order []string) *common.Table {
	idx := make([]int, len(order))
	for i, name := range order {
		idx[i] = t.ColumnIndex(name)
	}
	out := common.NewTable(t.IndexName, order)
	for r, rowName := range t.Index {
		cells := make([]string, len(order))
		for i, j := range idx {
			if j >= 0 {
				cells[i] = t.Rows[r][j]
			}
		}
		out.AppendRow(rowName, cells)
	}
	return out
}

// SplitOutliers separates contigs whose coverage pattern deviates from
// the per-column medians. A contig is an outlier when its mean relative
// deviation across samples exceeds the threshold. Variance columns,
// contigLen and totalAvgDepth do not take part.
func SplitOutliers(t *common.Table, threshold float64) (*common.Table, []string) {
	var covIdx []int
	for j, c := range t.Columns {
		if strings.HasSuffix(c, "-var") || c == "contigLen" || c == "totalAvgDepth" {
			continue
		}
		covIdx = append(covIdx, j)
	}

	medians := make([]float64, len(covIdx))
	for i, j := range covIdx {
		var vals []float64
		for r := range t.Rows {
			if v, err := strconv.ParseFloat(t.Rows[r][j], 64); err == nil {
				vals = append(vals, v)
			}
		}
		medians[i] = median(vals)
	}

	kept := common.NewTable(t.IndexName, t.Columns)
	var outliers []string
	for r, name := range t.Index {
		var devs []float64
		for i, j := range covIdx {
			if math.IsNaN(medians[i]) {
				continue
			}
			v, err := strconv.ParseFloat(t.Rows[r][j], 64)
			if err != nil {
				continue
			}
			devs = append(devs, math.Abs(v-medians[i])/(medians[i]+1e-10))
		}
		if len(devs) > 0 && stat.Mean(devs, nil) > threshold {
			outliers = append(outliers, name)
			continue
		}
		kept.AppendRow(name, t.Rows[r])
	}
	return kept, outliers
}

func median(vals []float64) float64 {
	if len(vals) == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
