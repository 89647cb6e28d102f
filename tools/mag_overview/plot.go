package mag_overview

import (
	"bytes"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"mag_buddy_go/session"
)

// CoverageScatterSVG renders contig length against summed depth. Short
// shallow contigs in the bottom-left corner are the usual binning
// noise; a clean MAG clusters along one depth band.
func CoverageScatterSVG(mag *session.Mag) (string, error) {
	p := plot.New()
	p.Title.Text = "Contig Coverage: " + mag.Name
	p.X.Label.Text = "Contig Length (bp)"
	p.Y.Label.Text = "Summed Depth"

	points := make(plotter.XYs, len(mag.ContigIDs))
	for i, c := range mag.ContigIDs {
		points[i].X = float64(c.Length())
		points[i].Y = c.DepthFromAllSamples()
	}

	scatter, err := plotter.NewScatter(points)
	if err != nil {
		return "", err
	}
	scatter.GlyphStyle.Color = color.RGBA{R: 50, G: 100, B: 200, A: 255}
	scatter.GlyphStyle.Radius = vg.Points(3)
	p.Add(scatter)
	p.Legend.Add("contigs", scatter)
	p.Legend.Top = true

	// Write to SVG
	var buf bytes.Buffer
	writer, err := p.WriterTo(10*vg.Inch, 4*vg.Inch, "svg")
	if err != nil {
		return "", err
	}
	if _, err := writer.WriteTo(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
