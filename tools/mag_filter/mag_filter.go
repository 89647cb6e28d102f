package mag_filter

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"mag_buddy_go/config"
	"mag_buddy_go/session"
)

type multiString []string

func (s *multiString) String() string {
	return strings.Join(*s, ",")
}

func (s *multiString) Set(value string) error {
	*s = append(*s, value)
	return nil
}

// Run selects MAGs from the project summary by query, quality call and
// coverage cutoff, then lists them or writes selection files for the
// downstream workflow.
func Run(args []string) {
	fs := flag.NewFlagSet("mag_filter", flag.ExitOnError)

	configDir := fs.String("config", "", "Directory holding "+config.ConfigName+".yaml (default current directory)")
	summaryPath := fs.String("summary", "", "Summary TSV path (overrides project config)")
	magDir := fs.String("mag_dir", "", "MAG FASTA directory (overrides project config)")
	abundDir := fs.String("abund_dir", "", "Depth table directory (overrides project config)")

	query := fs.String("query", "", "Summary query, e.g. \"Completeness >= 50 and Contamination <= 10\"")
	hqOnly := fs.Bool("hq", false, "Keep only MAGs passing the high-quality call")
	var names multiString
	fs.Var(&names, "name", "Select a MAG by name (can repeat -name multiple times)")

	depthCutoff := fs.Float64("depth_cutoff", 0, "Minimum average coverage; 0 disables the check")
	depthMode := fs.String("depth_mode", "either", "Coverage aggregate the cutoff applies to: ind, total or either")

	workers := fs.Int("workers", 0, "Parallel MAG loads (default from project config)")
	outFile := fs.String("out", "", "Write selected MAG names to this file, one per line")
	chunkSize := fs.Int("chunk_size", 0, "Also write <out>.chunks grouping names for array jobs; 0 disables")
	quiet := fs.Bool("quiet", false, "No progress bar")

	if err := fs.Parse(args); err != nil {
		fmt.Println("Error parsing flags:", err)
		os.Exit(1)
	}
	if *depthMode != "ind" && *depthMode != "total" && *depthMode != "either" {
		fmt.Fprintf(os.Stderr, "Error: unknown -depth_mode %q (want ind, total or either)\n", *depthMode)
		os.Exit(1)
	}
	if *chunkSize > 0 && *outFile == "" {
		fmt.Fprintln(os.Stderr, "Error: -chunk_size needs -out to know where the chunk file goes")
		os.Exit(1)
	}

	proj, err := config.Load(*configDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error reading project config:", err)
		os.Exit(1)
	}
	applyOverrides(&proj, *summaryPath, *magDir, *abundDir, *workers)

	sesh, err := session.NewSessionManager(proj.SummaryPath, proj.MagDir, proj.AbundDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	fmt.Println("Starting MAG selection...")
	selected := selectNames(sesh, *query, *hqOnly, names)
	fmt.Printf("Found %d candidate MAG(s)\n", len(selected))

	if *depthCutoff > 0 && len(selected) > 0 {
		selected = filterByDepth(sesh, selected, *depthCutoff, *depthMode, proj.Workers, !*quiet)
		fmt.Printf("%d MAG(s) remain above the %s coverage cutoff of %g\n", len(selected), *depthMode, *depthCutoff)
	}

	if *outFile == "" {
		for _, n := range selected {
			fmt.Println(n)
		}
		return
	}

	if err := writeNames(*outFile, selected); err != nil {
		fmt.Fprintln(os.Stderr, "Error writing selection:", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %d name(s) to %s\n", len(selected), *outFile)

	if *chunkSize > 0 {
		chunkPath := *outFile + ".chunks"
		if err := writeChunks(chunkPath, selected, *chunkSize); err != nil {
			fmt.Fprintln(os.Stderr, "Error writing chunk file:", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote chunk file %s (up to %d MAGs per chunk)\n", chunkPath, *chunkSize)
	}
}

func applyOverrides(proj *config.Project, summaryPath, magDir, abundDir string, workers int) {
	if summaryPath != "" {
		proj.SummaryPath = summaryPath
	}
	if magDir != "" {
		proj.MagDir = magDir
	}
	if abundDir != "" {
		proj.AbundDir = abundDir
	}
	if workers > 0 {
		proj.Workers = workers
	}
}

// selectNames combines the three selection mechanisms: query, quality
// call and explicit names. Query and quality call intersect; explicit
// names are added on top, minus anything the summary does not know.
func selectNames(sesh *session.SessionManager, query string, hqOnly bool, explicit []string) []string {
	var selected []string
	switch {
	case query != "" && hqOnly:
		selected = sesh.MagsByQuery(query, sesh.HQMagNames())
	case query != "":
		selected = sesh.MagsByQuery(query, nil)
	case hqOnly:
		selected = sesh.HQMagNames()
	case len(explicit) == 0:
		selected = sesh.SummaryIndex()
	}

	if len(explicit) > 0 {
		known := make(map[string]bool)
		for _, n := range sesh.SummaryIndex() {
			known[n] = true
		}
		have := make(map[string]bool)
		for _, n := range selected {
			have[n] = true
		}
		for _, n := range explicit {
			if !known[n] {
				fmt.Fprintf(os.Stderr, "Warning: %s is not in the summary (skipping)\n", n)
				continue
			}
			if !have[n] {
				have[n] = true
				selected = append(selected, n)
			}
		}
	}
	return selected
}

func filterByDepth(sesh *session.SessionManager, names []string, cutoff float64, mode string, workers int, progress bool) []string {
	fmt.Printf("Loading %d full MAG record(s) with %d worker(s)...\n", len(names), workers)
	results := LoadMags(sesh, names, workers, progress)

	var kept []string
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(os.Stderr, "Warning: skipping %s: %v\n", r.Name, r.Err)
			continue
		}
		verdict, err := CheckMagDepth(r.Mag, cutoff)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: skipping %s: %v\n", r.Name, err)
			continue
		}
		pass := false
		switch mode {
		case "ind":
			pass = verdict.AboveIndividual
		case "total":
			pass = verdict.AboveTotal
		case "either":
			pass = verdict.AboveIndividual || verdict.AboveTotal
		}
		if pass {
			kept = append(kept, r.Name)
		}
	}
	return kept
}

func writeNames(path string, names []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	for _, n := range names {
		if _, err := fmt.Fprintln(f, n); err != nil {
			return err
		}
	}
	return nil
}

// writeChunks groups the selection into fixed-size chunks, one line per
// chunk: "chunk3<TAB>name1,name2,...". Array jobs index into this file.
func writeChunks(path string, names []string, size int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	for i := 0; i < len(names); i += size {
		end := i + size
		if end > len(names) {
			end = len(names)
		}
		line := fmt.Sprintf("chunk%d\t%s", i/size+1, strings.Join(names[i:end], ","))
		if _, err := fmt.Fprintln(f, line); err != nil {
			return err
		}
	}
	return nil
}
