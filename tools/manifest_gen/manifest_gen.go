// Manifest_gen builds a MAG manifest from an existing project layout:
// one row per summary entry with the resolved FASTA and depth table
// paths. The manifest is the hand-off format for refinement runs, so
// parent_id starts out as NA for every original MAG.
package manifest_gen

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"mag_buddy_go/session"
	"mag_buddy_go/utils"
)

type ManifestRow struct {
	MagID         string
	ParentID      string
	FastaPath     string
	AbundancePath string
	SummaryName   string
}

func Run(args []string) {
	fs := flag.NewFlagSet("manifest_gen", flag.ExitOnError)

	summaryPath := fs.String("summary", "", "Path to the summary TSV (first column lists the MAG names)")
	magDir := fs.String("mag_dir", "", "Directory containing the MAG FASTA files")
	abundDir := fs.String("abund_dir", "", "Directory containing the per-sample depth tables")
	outFile := fs.String("out_file", "mags_manifest.tsv", "Output manifest path")

	err := fs.Parse(args)
	if err != nil {
		fmt.Println("Error parsing flags:", err)
		os.Exit(1)
	}

	if *summaryPath == "" || *magDir == "" || *abundDir == "" {
		fmt.Println("Usage: -summary <summary.tsv> -mag_dir <dir> -abund_dir <dir> [-out_file <file>]")
		os.Exit(1)
	}

	fmt.Println("Reading summary file from:", *summaryPath)
	table, err := common.LoadTable(*summaryPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Summary file not readable at '%s': %v\n", *summaryPath, err)
		os.Exit(1)
	}
	fmt.Printf("Found %d MAGs in summary file.\n", len(table.Index))

	loc := session.FilesystemLocator{MagDir: *magDir, AbundDir: *abundDir}
	rows := BuildManifest(table.Index, loc)
	if len(rows) == 0 {
		fmt.Fprintln(os.Stderr, "No valid MAGs found to create a manifest.")
		os.Exit(1)
	}

	fmt.Printf("Writing manifest for %d MAGs to: %s\n", len(rows), *outFile)
	f, err := os.Create(*outFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	if err := WriteManifest(f, rows); err != nil {
		f.Close()
		fmt.Fprintln(os.Stderr, "Error writing manifest:", err)
		os.Exit(1)
	}
	if err := f.Close(); err != nil {
		fmt.Fprintln(os.Stderr, "Error writing manifest:", err)
		os.Exit(1)
	}
	fmt.Println("Done.")
}

// BuildManifest resolves paths for every MAG name. Names without a
// FASTA file are dropped with a warning, a missing or unresolvable
// depth table degrades to NA.
func BuildManifest(names []string, loc session.FilesystemLocator) []ManifestRow {
	var rows []ManifestRow
	for _, name := range names {
		fasta, err := loc.MagFile(name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: FASTA file for '%s' not found. Skipping.\n", name)
			continue
		}
		rows = append(rows, ManifestRow{
			MagID:         name,
			ParentID:      "NA",
			FastaPath:     fasta,
			AbundancePath: AbundancePathFor(loc, name),
			SummaryName:   name,
		})
	}
	return rows
}

// AbundancePathFor returns the depth table path for a MAG, or NA when
// the name does not decode or the file does not exist.
func AbundancePathFor(loc session.FilesystemLocator, name string) string {
	fields := session.DecodeMagName(name)
	if fields.LongSample == "" {
		fmt.Fprintf(os.Stderr, "Warning: Could not parse MAG name '%s' for abundance info. Skipping abundance path.\n", name)
		return "NA"
	}
	if fields.Assembler == "unknown" {
		fmt.Fprintf(os.Stderr, "Warning: Unknown assembler code in MAG '%s'. Skipping abundance path.\n", name)
		return "NA"
	}
	p := loc.AbundanceFile(name)
	if _, err := os.Stat(p); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not find abundance file for MAG '%s' at expected path: %s\n", name, p)
		return "NA"
	}
	return p
}

// WriteManifest writes the rows as TSV with a fixed header.
func WriteManifest(w io.Writer, rows []ManifestRow) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString("mag_id\tparent_id\tfasta_path\tabundance_path\tsummary_name\n"); err != nil {
		return err
	}
	for _, r := range rows {
		line := strings.Join([]string{r.MagID, r.ParentID, r.FastaPath, r.AbundancePath, r.SummaryName}, "\t")
		if _, err := bw.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}
