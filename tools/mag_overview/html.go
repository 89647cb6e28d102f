package mag_overview

import (
	"fmt"
	"os"
	"strings"
)

// WriteHTMLReport writes filename + ".html" with the metric table, the
// per-contig table and the coverage plot.
func WriteHTMLReport(filename string, rep MagReport, svgCoverage string) error {
	f, err := os.Create(filename + ".html")
	if err != nil {
		return err
	}
	defer f.Close()

	mag := rep.Mag

	var contigRows strings.Builder
	for _, c := range mag.ContigIDs {
		fmt.Fprintf(&contigRows,
			"\t\t<tr><td>%s</td><td>%d</td><td>%s</td><td>%s</td><td>%s</td><td>%.4f</td></tr>\n",
			c.Name(), c.Length(), yesNo(c.IsCircular()), yesNo(c.IsDuplicated()), c.DepthTag(), c.DepthFromAllSamples())
	}

	quality := "below the high-quality bar"
	if mag.IsHighQuality() {
		quality = "HIGH quality"
	}

	html := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<title>MAG Overview: %s</title>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; padding: 20px; background-color: #f9f9f9; }
		h1 { color: #333; }
		table { border-collapse: collapse; margin-top: 20px; }
		th, td { padding: 8px 12px; border: 1px solid #ccc; text-align: left; }
		th { background-color: #eee; }
	</style>
</head>
<body>
	<h1>MAG Overview: %s</h1>
	<table>
		<tr><th>Metric</th><th>Value</th></tr>
		<tr><td>Sample</td><td>%s (%s)</td></tr>
		<tr><td>Assembler</td><td>%s</td></tr>
		<tr><td>Binner</td><td>%s</td></tr>
		<tr><td>Classification</td><td>%s</td></tr>
		<tr><td>Quality call</td><td>%s</td></tr>
		<tr><td>Completeness</td><td>%.2f</td></tr>
		<tr><td>Contamination</td><td>%.2f</td></tr>
		<tr><td>GC Content</td><td>%.2f</td></tr>
		<tr><td>Genome Size</td><td>%s</td></tr>
		<tr><td>Contig N50</td><td>%s</td></tr>
		<tr><td>Contigs</td><td>%d (%d bp total)</td></tr>
		<tr><td>Average Coverage (all samples)</td><td>%.4f</td></tr>
		<tr><td>Average Coverage (own sample)</td><td>%.4f</td></tr>
		<tr><td>Mean Contig Depth</td><td>%.4f</td></tr>
		<tr><td>Contig Depth StdDev</td><td>%.4f</td></tr>
		<tr><td>Samples Loaded</td><td>%s</td></tr>
	</table>
	<h2>Contigs</h2>
	<table>
		<tr><th>Name</th><th>Length</th><th>Circular</th><th>Duplicated</th><th>Depth Tag</th><th>Depth (sum)</th></tr>
%s	</table>
	<h2>Contig Coverage</h2>
	<div>%s</div>
</body>
</html>`,
		mag.Name,
		mag.Name,
		mag.Sample(), mag.LongSample(),
		mag.Assembler(),
		mag.Binner(),
		mag.Classification(),
		quality,
		mag.Completeness(),
		mag.Contamination(),
		mag.GCContent(),
		mag.GenomeSize(),
		mag.ContigN50(),
		len(mag.ContigIDs), rep.TotalLength,
		rep.CoverageTotal,
		rep.CoverageOwn,
		rep.MeanContigDepth,
		rep.DepthStdDev,
		strings.Join(rep.SampleNames, ", "),
		contigRows.String(),
		svgCoverage,
	)

	_, err = f.WriteString(html)
	return err
}
