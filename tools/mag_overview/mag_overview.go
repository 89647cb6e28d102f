package mag_overview

import (
	"flag"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"mag_buddy_go/config"
	"mag_buddy_go/session"
)

// MagReport bundles one MAG's record with the derived numbers the
// console and HTML reports share.
type MagReport struct {
	Mag             *session.Mag
	CoverageTotal   float64 // length-weighted, all samples; NaN when uncomputable
	CoverageOwn     float64 // length-weighted, own sample; NaN when uncomputable
	MeanContigDepth float64
	DepthStdDev     float64
	TotalLength     int
	SampleNames     []string
}

func Run(args []string) {
	fs := flag.NewFlagSet("mag_overview", flag.ExitOnError)

	configDir := fs.String("config", "", "Directory holding "+config.ConfigName+".yaml (default current directory)")
	summaryPath := fs.String("summary", "", "Summary TSV path (overrides project config)")
	magDir := fs.String("mag_dir", "", "MAG FASTA directory (overrides project config)")
	abundDir := fs.String("abund_dir", "", "Depth table directory (overrides project config)")

	magName := fs.String("mag", "", "MAG name to report on")
	htmlOut := fs.String("html", "", "Also write an HTML report with a coverage plot to <name>.html")
	depthOut := fs.String("depth_table", "", "Also write the contig x sample depth table to this TSV")

	if err := fs.Parse(args); err != nil {
		fmt.Println("Error parsing flags:", err)
		os.Exit(1)
	}
	if *magName == "" {
		fmt.Fprintln(os.Stderr, "Error: -mag is required")
		fs.Usage()
		os.Exit(1)
	}

	proj, err := config.Load(*configDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error reading project config:", err)
		os.Exit(1)
	}
	if *summaryPath != "" {
		proj.SummaryPath = *summaryPath
	}
	if *magDir != "" {
		proj.MagDir = *magDir
	}
	if *abundDir != "" {
		proj.AbundDir = *abundDir
	}

	sesh, err := session.NewSessionManager(proj.SummaryPath, proj.MagDir, proj.AbundDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	mag, err := sesh.GetMag(*magName)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	report := BuildMagReport(mag)
	PrintMagReport(report)

	if *depthOut != "" {
		if err := mag.DepthTable().WriteFile(*depthOut); err != nil {
			fmt.Fprintln(os.Stderr, "Error writing depth table:", err)
			os.Exit(1)
		}
		fmt.Println("Depth table written to:", *depthOut)
	}

	if *htmlOut != "" {
		svg, err := CoverageScatterSVG(mag)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error rendering coverage plot:", err)
			os.Exit(1)
		}
		if err := WriteHTMLReport(*htmlOut, report, svg); err != nil {
			fmt.Fprintln(os.Stderr, "Error writing HTML report:", err)
			os.Exit(1)
		}
		fmt.Println("HTML report written to:", *htmlOut+".html")
	}
}

// BuildMagReport derives the aggregate numbers from a loaded MAG.
func BuildMagReport(mag *session.Mag) MagReport {
	rep := MagReport{Mag: mag, CoverageTotal: math.NaN(), CoverageOwn: math.NaN()}

	if cov, err := mag.AverageCoverageTotal(); err == nil {
		rep.CoverageTotal = cov
	}
	if cov, err := mag.AverageCoveragePerSample(""); err == nil {
		rep.CoverageOwn = cov
	}

	depths := make([]float64, 0, len(mag.ContigIDs))
	seen := make(map[string]bool)
	for _, c := range mag.ContigIDs {
		depths = append(depths, c.DepthFromAllSamples())
		rep.TotalLength += c.Length()
		for s := range c.AbundInfo() {
			if !seen[s] {
				seen[s] = true
				rep.SampleNames = append(rep.SampleNames, s)
			}
		}
	}
	sort.Strings(rep.SampleNames)
	if len(depths) > 0 {
		rep.MeanContigDepth = stat.Mean(depths, nil)
		rep.DepthStdDev = stat.StdDev(depths, nil)
	} else {
		rep.MeanContigDepth = math.NaN()
		rep.DepthStdDev = math.NaN()
	}
	return rep
}

// PrintMagReport writes the console view of one MAG.
func PrintMagReport(rep MagReport) {
	mag := rep.Mag

	fmt.Printf("MAG Overview: %s\n", mag.Name)
	fmt.Println(strings.Repeat("-", 40))
	fmt.Printf("Sample: %s (%s)\n", mag.Sample(), mag.LongSample())
	fmt.Printf("Assembler: %s\n", mag.Assembler())
	fmt.Printf("Binner: %s\n", mag.Binner())
	if mag.Classification() != "" {
		fmt.Printf("Classification: %s\n", mag.Classification())
	}

	fmt.Printf("Completeness: %.2f\n", mag.Completeness())
	fmt.Printf("Contamination: %.2f\n", mag.Contamination())
	if mag.IsHighQuality() {
		fmt.Println("Quality call: HIGH quality")
	} else {
		fmt.Println("Quality call: below the high-quality bar")
	}
	fmt.Printf("GC content: %.2f\n", mag.GCContent())
	fmt.Printf("Genome size: %s\n", mag.GenomeSize())
	fmt.Printf("Contig N50: %s\n", mag.ContigN50())
	fmt.Printf("rRNA 16S/23S/5S: %s/%s/%s\n", mag.Has16SRRNA(), mag.Has23SRRNA(), mag.Has5SRRNA())

	fmt.Println(strings.Repeat("-", 40))
	fmt.Printf("Contigs: %d (%d bp total)\n", len(mag.ContigIDs), rep.TotalLength)
	fmt.Printf("%-16s %12s %9s %11s %12s\n", "contig", "length", "circular", "duplicated", "depth (sum)")
	for _, c := range mag.ContigIDs {
		fmt.Printf("%-16s %12d %9s %11s %12.4f\n",
			c.Name(), c.Length(), yesNo(c.IsCircular()), yesNo(c.IsDuplicated()), c.DepthFromAllSamples())
	}

	fmt.Println(strings.Repeat("-", 40))
	if len(rep.SampleNames) > 0 {
		fmt.Printf("Samples loaded: %s\n", strings.Join(rep.SampleNames, ", "))
	} else {
		fmt.Println("No depth data loaded for this MAG")
	}
	fmt.Printf("Average coverage (all samples): %.4f\n", rep.CoverageTotal)
	fmt.Printf("Average coverage (own sample): %.4f\n", rep.CoverageOwn)
	fmt.Printf("Mean contig depth: %.4f (stddev %.4f)\n", rep.MeanContigDepth, rep.DepthStdDev)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
