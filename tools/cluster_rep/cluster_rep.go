// Cluster_rep picks one representative genome per dereplication
// cluster. Candidates are ranked by a quality score built from CheckM2
// completeness, contamination and assembly contiguity, and the winners'
// rows become the summary table the rest of the toolkit works from.
package cluster_rep

import (
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"mag_buddy_go/utils"
)

// repColumns are the checkm columns carried into the output summary.
var repColumns = []string{"Completeness", "Contamination", "Contig_N50", "genome_size", "GC_Content"}

func Run(args []string) {
	fs := flag.NewFlagSet("cluster_rep", flag.ExitOnError)

	clusterFile := fs.String("cluster", "", "dRep cluster table (CSV with a secondary_cluster column)")
	checkmFile := fs.String("checkm", "", "CheckM2 quality table (TSV)")
	outFile := fs.String("out_file", "", "Output summary table path")
	logFile := fs.String("log_file", "", "Log of the ranked candidates per cluster")

	err := fs.Parse(args)
	if err != nil {
		fmt.Println("Error parsing flags:", err)
		os.Exit(1)
	}

	if *clusterFile == "" || *checkmFile == "" || *outFile == "" || *logFile == "" {
		fmt.Println("Usage: -cluster <Cdb.csv> -checkm <quality.tsv> -out_file <file> -log_file <file>")
		os.Exit(1)
	}

	cf, err := os.Open(*clusterFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	cluster, err := common.ReadTableSep(cf, ",")
	cf.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	checkm, err := common.LoadTable(*checkmFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	lf, err := os.Create(*logFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	reps, err := SelectRepresentatives(cluster, checkm, lf)
	if cerr := lf.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	if err := reps.WriteFile(*outFile); err != nil {
		fmt.Fprintln(os.Stderr, "Error writing summary:", err)
		os.Exit(1)
	}
	fmt.Printf("Selected %d cluster representatives, summary saved to %s\n", len(reps.Index), *outFile)
}

// RepresentativeScore ranks a genome within its cluster. Completeness
// counts for, contamination counts five-fold against, and log N50
// breaks ties toward the more contiguous assembly.
func RepresentativeScore(completeness, contamination, contigN50 float64) float64 {
	return completeness - 5*contamination + 0.5*math.Log(contigN50)
}

type candidate struct {
	name  string
	row   []string
	score float64
}

// SelectRepresentatives groups the cluster table by secondary_cluster,
// scores every member from the checkm table and keeps the best one per
// cluster, in first-appearance order. The ranked candidates of each
// cluster are written to log. Genome names carry an optional .fasta
// suffix which is ignored.
func SelectRepresentatives(cluster, checkm *common.Table, log io.Writer) (*common.Table, error) {
	for _, c := range repColumns {
		if checkm.ColumnIndex(c) < 0 {
			return nil, fmt.Errorf("checkm table has no %s column", c)
		}
	}
	clusterCol := cluster.ColumnIndex("secondary_cluster")
	if clusterCol < 0 {
		return nil, fmt.Errorf("cluster table has no secondary_cluster column")
	}

	checkmAt := make(map[string]int, len(checkm.Index))
	for i, name := range checkm.Index {
		if _, dup := checkmAt[name]; !dup {
			checkmAt[name] = i
		}
	}

	var order []string
	members := make(map[string][]string)
	for i, name := range cluster.Index {
		id := cluster.Rows[i][clusterCol]
		if _, seen := members[id]; !seen {
			order = append(order, id)
		}
		members[id] = append(members[id], strings.ReplaceAll(name, ".fasta", ""))
	}

	out := common.NewTable(checkm.IndexName, repColumns)
	for _, id := range order {
		cands, err := scoreCandidates(members[id], checkm, checkmAt)
		if err != nil {
			return nil, fmt.Errorf("cluster %s: %w", id, err)
		}
		sort.SliceStable(cands, func(i, j int) bool { return cands[i].score > cands[j].score })

		if err := logCluster(log, id, cands); err != nil {
			return nil, err
		}
		out.AppendRow(cands[0].name, cands[0].row)
	}
	return out, nil
}

func scoreCandidates(genomes []string, checkm *common.Table, checkmAt map[string]int) ([]candidate, error) {
	cands := make([]candidate, 0, len(genomes))
	for _, g := range genomes {
		i, ok := checkmAt[g]
		if !ok {
			return nil, fmt.Errorf("genome %s is missing from the checkm table", g)
		}

		vals := make([]float64, 3)
		for k, col := range repColumns[:3] {
			cell := checkm.Rows[i][checkm.ColumnIndex(col)]
			v, perr := strconv.ParseFloat(cell, 64)
			if perr != nil {
				return nil, fmt.Errorf("genome %s has a non-numeric %s value %q", g, col, cell)
			}
			vals[k] = v
		}

		row := make([]string, len(repColumns))
		for k, col := range repColumns {
			row[k] = checkm.Rows[i][checkm.ColumnIndex(col)]
		}
		cands = append(cands, candidate{
			name:  g,
			row:   row,
			score: RepresentativeScore(vals[0], vals[1], vals[2]),
		})
	}
	return cands, nil
}

func logCluster(w io.Writer, id string, cands []candidate) error {
	if _, err := fmt.Fprintf(w, "Cluster %s\n", id); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "genome\tscore\t%s\n", strings.Join(repColumns, "\t")); err != nil {
		return err
	}
	for _, c := range cands {
		if _, err := fmt.Fprintf(w, "%s\t%.4f\t%s\n", c.name, c.score, strings.Join(c.row, "\t")); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}
