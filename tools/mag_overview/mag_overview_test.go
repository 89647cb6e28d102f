package mag_overview

import (
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"mag_buddy_go/session"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func loadTestMag(t *testing.T) (*session.Mag, string, string, string) {
	t.Helper()
	root := t.TempDir()
	magDir := filepath.Join(root, "genomes")
	abundDir := filepath.Join(root, "depths")
	for _, d := range []string{magDir, abundDir} {
		if err := os.Mkdir(d, 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}

	summaryPath := filepath.Join(root, "summary.tsv")
	writeFile(t, summaryPath,
		"user_genome\tCompleteness\tContamination\tGC_Content\tgenome_size\tContig_N50\tclassification\n"+
			"C1A3_A_metabat.872\t63.39\t1.87\t0.43\t150000\t100000\td__Bacteria;p__Bacillota\n")
	writeFile(t, filepath.Join(magDir, "C1A3_A_metabat.872.fasta"),
		">u3558093ctg_len-100000_circular-no_depth-12_duplicated-no\nACGT\n"+
			">u1234567ctg_len-50000_circular-yes_depth-4_duplicated-no\nTGCA\n")
	writeFile(t, filepath.Join(abundDir, "myloasm__C001_A3.tsv"),
		"contigName\tcontigLen\ttotalAvgDepth\tC001_A3_merged.bam\tC001_A3_merged.bam-var\tC001_B1_merged.bam\tC001_B1_merged.bam-var\n"+
			"u3558093ctg_len-100000_circular-no_depth-12_duplicated-no\t100000\t20.0\t12.5\t1.1\t7.5\t0.9\n"+
			"u1234567ctg_len-50000_circular-yes_depth-4_duplicated-no\t50000\t6.0\t4.0\t0.2\t2.0\t0.1\n")

	sesh, err := session.NewSessionManager(summaryPath, magDir, abundDir)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	mag, err := sesh.GetMag("C1A3_A_metabat.872")
	if err != nil {
		t.Fatalf("GetMag failed: %v", err)
	}
	return mag, summaryPath, magDir, abundDir
}

func TestBuildMagReport(t *testing.T) {
	mag, _, _, _ := loadTestMag(t)
	rep := BuildMagReport(mag)

	// Weighted total: (20*100000 + 6*50000) / 150000
	if math.Abs(rep.CoverageTotal-15.3333) > 0.001 {
		t.Errorf("coverage total = %v, want about 15.3333", rep.CoverageTotal)
	}
	// Own sample C001_A3: (12.5*100000 + 4*50000) / 150000
	if math.Abs(rep.CoverageOwn-9.6667) > 0.001 {
		t.Errorf("own-sample coverage = %v, want about 9.6667", rep.CoverageOwn)
	}
	// Plain mean over contig depth sums 20 and 6.
	if math.Abs(rep.MeanContigDepth-13) > 1e-9 {
		t.Errorf("mean contig depth = %v, want 13", rep.MeanContigDepth)
	}
	if rep.TotalLength != 150000 {
		t.Errorf("total length = %d, want 150000", rep.TotalLength)
	}
	if !reflect.DeepEqual(rep.SampleNames, []string{"C001_A3", "C001_B1"}) {
		t.Errorf("samples = %v", rep.SampleNames)
	}
}

func TestBuildMagReportWithoutDepth(t *testing.T) {
	rep := BuildMagReport(&session.Mag{Name: "C1A3_A_metabat.9"})
	if !math.IsNaN(rep.CoverageTotal) || !math.IsNaN(rep.MeanContigDepth) {
		t.Errorf("empty MAG report = %+v, want NaN aggregates", rep)
	}
}

func TestCoverageScatterSVG(t *testing.T) {
	mag, _, _, _ := loadTestMag(t)
	svg, err := CoverageScatterSVG(mag)
	if err != nil {
		t.Fatalf("CoverageScatterSVG failed: %v", err)
	}
	if !strings.Contains(svg, "<svg") {
		t.Error("output does not look like SVG")
	}
	if !strings.Contains(svg, "Contig Coverage: C1A3_A_metabat.872") {
		t.Error("plot title missing from SVG")
	}
}

func TestWriteHTMLReport(t *testing.T) {
	mag, _, _, _ := loadTestMag(t)
	rep := BuildMagReport(mag)

	base := filepath.Join(t.TempDir(), "report")
	if err := WriteHTMLReport(base, rep, "<svg>fake</svg>"); err != nil {
		t.Fatalf("WriteHTMLReport failed: %v", err)
	}

	data, err := os.ReadFile(base + ".html")
	if err != nil {
		t.Fatalf("report file missing: %v", err)
	}
	html := string(data)
	for _, want := range []string{"C1A3_A_metabat.872", "u3558093ctg", "<svg>fake</svg>", "63.39"} {
		if !strings.Contains(html, want) {
			t.Errorf("report lacks %q", want)
		}
	}
}

func TestRunWritesOutputs(t *testing.T) {
	_, summaryPath, magDir, abundDir := loadTestMag(t)
	outDir := t.TempDir()
	htmlBase := filepath.Join(outDir, "mag_report")
	depthOut := filepath.Join(outDir, "depth.tsv")

	Run([]string{
		"-summary", summaryPath,
		"-mag_dir", magDir,
		"-abund_dir", abundDir,
		"-mag", "C1A3_A_metabat.872",
		"-html", htmlBase,
		"-depth_table", depthOut,
	})

	if _, err := os.Stat(htmlBase + ".html"); err != nil {
		t.Errorf("html report missing: %v", err)
	}
	data, err := os.ReadFile(depthOut)
	if err != nil {
		t.Fatalf("depth table missing: %v", err)
	}
	if !strings.Contains(string(data), "u3558093ctg") {
		t.Errorf("depth table content = %q", string(data))
	}
}
