// Package session builds fully realized MAG records on demand by joining
// three flat-file sources: a quality summary table, per-MAG FASTA files
// and per-sample depth tables. SessionManager is the entry point; the
// other types are its collaborators and are usable on their own.
package session

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	common "mag_buddy_go/utils"
)

// Error taxonomy of the session core. Everything else is wrapped I/O.
var (
	ErrNoSampleColumns = errors.New("no valid sample columns in depth file header")
	ErrMagNotInSummary = errors.New("mag not present in summary table")
	ErrMagFileNotFound = errors.New("mag fasta file not found")
	ErrMalformedHeader = errors.New("unexpected contig header format")
	ErrNoContigLength  = errors.New("mag has no contig length to weight coverage by")
	ErrSampleNotLoaded = errors.New("sample not loaded for contig")
	ErrDuplicateIndex  = errors.New("duplicate mag name in summary index")
)

// Contig headers written by the assembly pipeline follow one fixed
// grammar. The depth token is an opaque annotation (values like "5-5-3"
// occur), not a number.
var headerPattern = regexp.MustCompile(`^>?(?P<name>\w+)_len-(?P<length>\d+)_circular-(?P<circular>yes|possibly|no)_depth-(?P<depth>[\d.-]+)_duplicated-(?P<duplicated>yes|possibly|no)$`)

// ParsedHeader holds the structured fields of one contig header.
type ParsedHeader struct {
	Name         string
	Length       int
	IsCircular   bool
	DepthTag     string
	IsDuplicated bool
}

// ParseHeader parses a contig header strictly. A leading '>' and any
// text after the first space are ignored; anything else that deviates
// from the grammar is an ErrMalformedHeader.
func ParseHeader(header string) (ParsedHeader, error) {
	first := header
	if i := strings.IndexByte(first, ' '); i >= 0 {
		first = first[:i]
	}

	m := headerPattern.FindStringSubmatch(first)
	if m == nil {
		return ParsedHeader{}, fmt.Errorf("%w: %q", ErrMalformedHeader, first)
	}

	length, err := strconv.Atoi(m[2])
	if err != nil {
		return ParsedHeader{}, fmt.Errorf("%w: %q", ErrMalformedHeader, first)
	}

	return ParsedHeader{
		Name:         m[1],
		Length:       length,
		IsCircular:   m[3] == "yes", // "possibly" collapses to false
		DepthTag:     m[4],
		IsDuplicated: m[5] == "yes",
	}, nil
}

// ParseNameFromHeader is the lenient variant used while harvesting
// contig names before a MAG is assembled. It returns the contig name,
// or "" when the header does not match the grammar.
func ParseNameFromHeader(header string) string {
	first := header
	if i := strings.IndexByte(first, ' '); i >= 0 {
		first = first[:i]
	}
	m := headerPattern.FindStringSubmatch(first)
	if m == nil {
		return ""
	}
	return m[1]
}

// ContigID is one contig of a MAG: its parsed header fields plus the
// per-sample abundance values resolved for it. Immutable once built.
type ContigID struct {
	header    ParsedHeader
	rawHeader string
	abundInfo map[string]float64
}

// NewContigID parses the full header strictly and attaches the abundance
// mapping for this contig. A nil mapping means the contig was not found
// in the depth file and is stored as empty.
func NewContigID(header string, abundInfo map[string]float64) (*ContigID, error) {
	parsed, err := ParseHeader(header)
	if err != nil {
		return nil, err
	}
	info := make(map[string]float64, len(abundInfo))
	for k, v := range abundInfo {
		info[k] = v
	}
	return &ContigID{header: parsed, rawHeader: header, abundInfo: info}, nil
}

func (c *ContigID) Name() string       { return c.header.Name }
func (c *ContigID) Length() int        { return c.header.Length }
func (c *ContigID) DepthTag() string   { return c.header.DepthTag }
func (c *ContigID) IsCircular() bool   { return c.header.IsCircular }
func (c *ContigID) IsDuplicated() bool { return c.header.IsDuplicated }

// AbundInfo returns the per-sample depth values for this contig. The
// map is owned by the contig; callers must not modify it.
func (c *ContigID) AbundInfo() map[string]float64 { return c.abundInfo }

// DepthFromAllSamples sums the depth over every loaded sample. A contig
// absent from the depth file has an empty mapping and sums to 0.
func (c *ContigID) DepthFromAllSamples() float64 {
	var total float64
	for _, v := range c.abundInfo {
		total += v
	}
	return total
}

// Mag is a Metagenome-Assembled Genome: its summary metrics, its FASTA
// path and its contigs in file order. Treated as read-only once built.
type Mag struct {
	Name      string            // e.g. "C1A3_A_metabat.872"
	Data      map[string]string // raw summary row, keyed by column name
	FP        string            // path of the MAG FASTA file
	ContigIDs []*ContigID
}

// Identity fields are encoded in the MAG name by fixed position.
func (m *Mag) Sample() string     { return magSample(m.Name) }
func (m *Mag) LongSample() string { return magLongSample(m.Name) }
func (m *Mag) Binner() string     { return magBinner(m.Name) }
func (m *Mag) Assembler() string  { return magAssembler(m.Name) }

// Numeric summary metrics. Completeness and Contamination are verified
// numeric at summary load time; the others fall back to NaN when the
// summary carries a non-numeric cell.
func (m *Mag) Completeness() float64  { return m.metricFloat("Completeness") }
func (m *Mag) Contamination() float64 { return m.metricFloat("Contamination") }
func (m *Mag) GCContent() float64     { return m.metricFloat("GC_Content") }

// Raw summary metrics, returned as loaded.
func (m *Mag) ContigN50() string       { return m.Data["Contig_N50"] }
func (m *Mag) MaxContigLength() string { return m.Data["Max_Contig_Length"] }
func (m *Mag) GenomeSize() string      { return m.Data["genome_size"] }
func (m *Mag) TotalContigs() string    { return m.Data["Total_Contigs"] }
func (m *Mag) TRNACounts() string      { return m.Data["tRNA counts"] }
func (m *Mag) Classification() string  { return m.Data["classification"] }
func (m *Mag) RedValue() string        { return m.Data["red_value"] }
func (m *Mag) Has16SRRNA() string      { return m.Data["16S_rRNA"] }
func (m *Mag) Has23SRRNA() string      { return m.Data["23S_rRNA"] }
func (m *Mag) Has5SRRNA() string       { return m.Data["5S_rRNA"] }

func (m *Mag) metricFloat(key string) float64 {
	v, err := strconv.ParseFloat(m.Data[key], 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// IsHighQuality reports the standard genome-quality call:
// Completeness >= 90 and Contamination <= 5.
func (m *Mag) IsHighQuality() bool {
	return m.Completeness() >= 90 && m.Contamination() <= 5
}

// AverageCoverageTotal is the length-weighted mean of each contig's
// summed sample depth. A MAG with no contigs, or only zero-length
// contigs, has no defined coverage and fails with ErrNoContigLength
// instead of hiding the problem behind a zero.
func (m *Mag) AverageCoverageTotal() (float64, error) {
	var totalBases, totalLength float64
	for _, c := range m.ContigIDs {
		totalBases += c.DepthFromAllSamples() * float64(c.Length())
		totalLength += float64(c.Length())
	}
	if totalLength == 0 {
		return 0, fmt.Errorf("%w: %s", ErrNoContigLength, m.Name)
	}
	return totalBases / totalLength, nil
}

// AverageCoveragePerSample is the length-weighted mean depth within one
// sample. An empty sample name defaults to the MAG's own long-sample
// name. A contig whose mapping lacks the sample fails with
// ErrSampleNotLoaded: it means that sample was never loaded for this
// MAG, not that its depth is zero.
func (m *Mag) AverageCoveragePerSample(sample string) (float64, error) {
	if sample == "" {
		sample = m.LongSample()
	}
	var totalBases, totalLength float64
	for _, c := range m.ContigIDs {
		v, ok := c.abundInfo[sample]
		if !ok {
			return 0, fmt.Errorf("%w: sample %q, contig %q of %s", ErrSampleNotLoaded, sample, c.Name(), m.Name)
		}
		totalBases += v * float64(c.Length())
		totalLength += float64(c.Length())
	}
	if totalLength == 0 {
		return 0, fmt.Errorf("%w: %s", ErrNoContigLength, m.Name)
	}
	return totalBases / totalLength, nil
}

// DepthTable lays the per-contig abundance mappings out as a contig x
// sample table. Sample columns appear in order of first appearance;
// contigs missing a sample get an empty cell.
func (m *Mag) DepthTable() *common.Table {
	var samples []string
	seen := make(map[string]bool)
	for _, c := range m.ContigIDs {
		for _, s := range sortedSampleNames(c.abundInfo) {
			if !seen[s] {
				seen[s] = true
				samples = append(samples, s)
			}
		}
	}

	t := common.NewTable("contigName", samples)
	for _, c := range m.ContigIDs {
		cells := make([]string, len(samples))
		for j, s := range samples {
			if v, ok := c.abundInfo[s]; ok {
				cells[j] = strconv.FormatFloat(v, 'g', -1, 64)
			}
		}
		t.AppendRow(c.Name(), cells)
	}
	return t
}

func sortedSampleNames(info map[string]float64) []string {
	names := make([]string, 0, len(info))
	for s := range info {
		names = append(names, s)
	}
	sort.Strings(names)
	return names
}
