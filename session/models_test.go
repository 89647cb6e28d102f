package session

import (
	"errors"
	"math"
	"testing"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestParseHeaderFields(t *testing.T) {
	h, err := ParseHeader(">u3558093ctg_len-256827_circular-no_depth-5-5-3_duplicated-no")
	if err != nil {
		t.Fatalf("ParseHeader failed: %v", err)
	}
	if h.Name != "u3558093ctg" {
		t.Errorf("name = %q, want u3558093ctg", h.Name)
	}
	if h.Length != 256827 {
		t.Errorf("length = %d, want 256827", h.Length)
	}
	if h.DepthTag != "5-5-3" {
		t.Errorf("depth tag = %q, want 5-5-3", h.DepthTag)
	}
	if h.IsCircular || h.IsDuplicated {
		t.Errorf("circular/duplicated = %v/%v, want false/false", h.IsCircular, h.IsDuplicated)
	}
}

func TestParseHeaderVariants(t *testing.T) {
	// "possibly" collapses to false, only "yes" means true.
	h, err := ParseHeader("ctg1_len-100_circular-possibly_depth-1.5_duplicated-yes")
	if err != nil {
		t.Fatalf("ParseHeader failed: %v", err)
	}
	if h.IsCircular {
		t.Error("circular-possibly should parse as false")
	}
	if !h.IsDuplicated {
		t.Error("duplicated-yes should parse as true")
	}

	// Anything after the first space is a free-form description.
	h, err = ParseHeader(">ctg2_len-50_circular-yes_depth-3_duplicated-no assembled from run 7")
	if err != nil {
		t.Fatalf("ParseHeader failed: %v", err)
	}
	if h.Name != "ctg2" || !h.IsCircular {
		t.Errorf("got %+v, want name ctg2 and circular true", h)
	}
}

func TestParseHeaderRejectsMalformed(t *testing.T) {
	bad := []string{
		"",
		">",
		"just_some_fasta_header",
		">ctg_len-100_circular-no_duplicated-no",              // depth segment missing
		">ctg_len-100_depth-5_circular-no_duplicated-no",      // segments out of order
		">ctg_len-abc_circular-no_depth-5_duplicated-no",      // length not numeric
		">ctg_len-100_circular-maybe_depth-5_duplicated-no",   // unknown circular token
		">ctg_len-100_circular-no_depth-5_duplicated-no_more", // trailing junk
	}
	for _, header := range bad {
		if _, err := ParseHeader(header); !errors.Is(err, ErrMalformedHeader) {
			t.Errorf("ParseHeader(%q) = %v, want ErrMalformedHeader", header, err)
		}
	}
}

func TestParseNameFromHeader(t *testing.T) {
	if n := ParseNameFromHeader(">u3558093ctg_len-256827_circular-no_depth-5-5-3_duplicated-no"); n != "u3558093ctg" {
		t.Errorf("name = %q, want u3558093ctg", n)
	}
	if n := ParseNameFromHeader(">not a contig header"); n != "" {
		t.Errorf("malformed header gave name %q, want empty", n)
	}
}

func TestContigIDDepthSum(t *testing.T) {
	c, err := NewContigID(
		">u3558093ctg_len-256827_circular-no_depth-5-5-3_duplicated-no",
		map[string]float64{"C001_A3": 5.1927, "C001_B1": 3.5},
	)
	if err != nil {
		t.Fatalf("NewContigID failed: %v", err)
	}
	if got := c.DepthFromAllSamples(); !almostEqual(got, 8.6927, 1e-9) {
		t.Errorf("depth sum = %v, want 8.6927", got)
	}
}

func TestContigIDWithNoAbundanceData(t *testing.T) {
	c, err := NewContigID(">notpresent_len-10000_circular-yes_depth-10_duplicated-no", nil)
	if err != nil {
		t.Fatalf("NewContigID failed: %v", err)
	}
	if len(c.AbundInfo()) != 0 {
		t.Errorf("abund info = %v, want empty", c.AbundInfo())
	}
	if c.DepthFromAllSamples() != 0 {
		t.Errorf("depth sum = %v, want 0", c.DepthFromAllSamples())
	}
	if !c.IsCircular() {
		t.Error("circular-yes should parse as true")
	}
}

func TestContigIDCopiesAbundance(t *testing.T) {
	info := map[string]float64{"C001_A3": 1.0}
	c, err := NewContigID("ctg_len-10_circular-no_depth-1_duplicated-no", info)
	if err != nil {
		t.Fatalf("NewContigID failed: %v", err)
	}
	info["C001_A3"] = 99
	info["C001_B1"] = 99
	if got := c.DepthFromAllSamples(); got != 1.0 {
		t.Errorf("mutating the source map leaked into the contig: depth sum = %v", got)
	}
}

func TestMagIdentityFields(t *testing.T) {
	tests := []struct {
		name       string
		sample     string
		longSample string
		assembler  string
		binner     string
	}{
		{"C1A3_A_metabat.872", "C1A3", "C001_A3", "myloasm", "metabat"},
		{"C1A3_M_semibin.175", "C1A3", "C001_A3", "medaka", "semibin"},
		{"C2B1_P_vamb.9", "C2B1", "C002_B1", "proovframe", "vamb"},
		{"C1A3_X_foo.1", "C1A3", "C001_A3", "unknown", "foo"},
	}
	for _, tc := range tests {
		m := &Mag{Name: tc.name}
		if m.Sample() != tc.sample {
			t.Errorf("%s: sample = %q, want %q", tc.name, m.Sample(), tc.sample)
		}
		if m.LongSample() != tc.longSample {
			t.Errorf("%s: long sample = %q, want %q", tc.name, m.LongSample(), tc.longSample)
		}
		if m.Assembler() != tc.assembler {
			t.Errorf("%s: assembler = %q, want %q", tc.name, m.Assembler(), tc.assembler)
		}
		if m.Binner() != tc.binner {
			t.Errorf("%s: binner = %q, want %q", tc.name, m.Binner(), tc.binner)
		}
	}
}

func testMag(t *testing.T) *Mag {
	t.Helper()
	headers := []struct {
		header string
		abund  map[string]float64
	}{
		{">u3558093ctg_len-256827_circular-no_depth-5-5-3_duplicated-no", map[string]float64{"C001_A3": 5.1927, "C001_B1": 3.5}},
		{">u1234567ctg_len-100000_circular-possibly_depth-12.5_duplicated-possibly", map[string]float64{"C001_A3": 12.5, "C001_B1": 7.5}},
		{">u7654321ctg_len-50000_circular-no_depth-7_duplicated-no", map[string]float64{"C001_A3": 10.493, "C001_B1": 4.5}},
	}
	var contigs []*ContigID
	for _, h := range headers {
		c, err := NewContigID(h.header, h.abund)
		if err != nil {
			t.Fatalf("NewContigID(%q) failed: %v", h.header, err)
		}
		contigs = append(contigs, c)
	}
	return &Mag{
		Name:      "C1A3_A_metabat.872",
		Data:      map[string]string{"Completeness": "63.39", "Contamination": "1.87"},
		ContigIDs: contigs,
	}
}

func TestMagAverageCoverageTotal(t *testing.T) {
	cov, err := testMag(t).AverageCoverageTotal()
	if err != nil {
		t.Fatalf("AverageCoverageTotal failed: %v", err)
	}
	if !almostEqual(cov, 12.2464, 0.01) {
		t.Errorf("coverage = %v, want about 12.2464", cov)
	}
}

func TestMagAverageCoverageIgnoresContigOrder(t *testing.T) {
	m := testMag(t)
	want, err := m.AverageCoverageTotal()
	if err != nil {
		t.Fatalf("AverageCoverageTotal failed: %v", err)
	}

	reversed := make([]*ContigID, len(m.ContigIDs))
	for i, c := range m.ContigIDs {
		reversed[len(reversed)-1-i] = c
	}
	m2 := &Mag{Name: m.Name, ContigIDs: reversed}
	got, err := m2.AverageCoverageTotal()
	if err != nil {
		t.Fatalf("AverageCoverageTotal on reversed contigs failed: %v", err)
	}
	if !almostEqual(got, want, 1e-9) {
		t.Errorf("coverage depends on contig order: %v vs %v", got, want)
	}
}

func TestMagAverageCoveragePerSample(t *testing.T) {
	m := testMag(t)

	// Empty sample name defaults to the MAG's own long sample.
	cov, err := m.AverageCoveragePerSample("")
	if err != nil {
		t.Fatalf("AverageCoveragePerSample failed: %v", err)
	}
	if !almostEqual(cov, 7.6403, 0.001) {
		t.Errorf("C001_A3 coverage = %v, want about 7.6403", cov)
	}

	if _, err := m.AverageCoveragePerSample("C009_Z9"); !errors.Is(err, ErrSampleNotLoaded) {
		t.Errorf("unknown sample gave %v, want ErrSampleNotLoaded", err)
	}
}

func TestMagCoverageWithoutContigs(t *testing.T) {
	m := &Mag{Name: "C1A3_A_metabat.9"}
	if _, err := m.AverageCoverageTotal(); !errors.Is(err, ErrNoContigLength) {
		t.Errorf("empty mag gave %v, want ErrNoContigLength", err)
	}

	c, err := NewContigID("ctg_len-0_circular-no_depth-1_duplicated-no", map[string]float64{"C001_A3": 1})
	if err != nil {
		t.Fatalf("NewContigID failed: %v", err)
	}
	m.ContigIDs = []*ContigID{c}
	if _, err := m.AverageCoveragePerSample("C001_A3"); !errors.Is(err, ErrNoContigLength) {
		t.Errorf("zero-length mag gave %v, want ErrNoContigLength", err)
	}
}

func TestMagIsHighQuality(t *testing.T) {
	tests := []struct {
		completeness  string
		contamination string
		want          bool
	}{
		{"96.41", "0.53", true},
		{"90", "5", true}, // thresholds are inclusive
		{"63.39", "1.87", false},
		{"95.2", "5.01", false},
		{"", "1", false}, // unparseable metric can never pass
	}
	for _, tc := range tests {
		m := &Mag{Data: map[string]string{"Completeness": tc.completeness, "Contamination": tc.contamination}}
		if got := m.IsHighQuality(); got != tc.want {
			t.Errorf("completeness %q contamination %q: high quality = %v, want %v",
				tc.completeness, tc.contamination, got, tc.want)
		}
	}
}

func TestMagMetricAccessors(t *testing.T) {
	m := &Mag{Data: map[string]string{
		"Completeness": "63.39",
		"GC_Content":   "0.43",
		"Total_Contigs": "3",
		"Contig_N50":   "256827",
	}}
	if m.Completeness() != 63.39 {
		t.Errorf("completeness = %v, want 63.39", m.Completeness())
	}
	if m.GCContent() != 0.43 {
		t.Errorf("gc content = %v, want 0.43", m.GCContent())
	}
	if m.TotalContigs() != "3" {
		t.Errorf("total contigs = %q, want 3", m.TotalContigs())
	}
	if !math.IsNaN(m.Contamination()) {
		t.Errorf("missing contamination = %v, want NaN", m.Contamination())
	}
}

func TestMagDepthTable(t *testing.T) {
	a, _ := NewContigID("ctgA_len-100_circular-no_depth-1_duplicated-no", map[string]float64{"C001_A3": 5, "C001_B1": 2})
	b, _ := NewContigID("ctgB_len-200_circular-no_depth-1_duplicated-no", map[string]float64{"C001_A3": 1})
	m := &Mag{Name: "C1A3_A_metabat.1", ContigIDs: []*ContigID{a, b}}

	dt := m.DepthTable()
	if len(dt.Index) != 2 || dt.Index[0] != "ctgA" || dt.Index[1] != "ctgB" {
		t.Fatalf("depth table index = %v, want [ctgA ctgB]", dt.Index)
	}
	if len(dt.Columns) != 2 {
		t.Fatalf("depth table columns = %v, want two samples", dt.Columns)
	}
	row, ok := dt.Row("ctgB")
	if !ok {
		t.Fatal("ctgB row missing")
	}
	j := dt.ColumnIndex("C001_B1")
	if j < 0 {
		t.Fatal("C001_B1 column missing")
	}
	if row[j] != "" {
		t.Errorf("ctgB C001_B1 cell = %q, want empty for a sample the contig never saw", row[j])
	}
}
