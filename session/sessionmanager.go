package session

import (
	"fmt"
	"os"
	"path/filepath"

	common "mag_buddy_go/utils"
)

// MAG names follow "{sample}_{assembler-code}_{binner}.{cluster}", e.g.
// "C1A3_A_metabat.872". The helpers below decode the pieces; they are
// shared by Mag accessors, the summary loader and the path locator.

var assemblerCodes = map[string]string{
	"A": "myloasm",
	"M": "medaka",
	"P": "proovframe",
}

func magSample(name string) string {
	return splitToken(name, 0)
}

// magLongSample expands the short run code to the sequencing facility
// spelling: "C1A3" becomes "C001_A3".
func magLongSample(name string) string {
	sample := magSample(name)
	if len(sample) < 2 {
		return ""
	}
	rest := sample[2:]
	if len(rest) > 2 {
		rest = rest[:2]
	}
	return "C00" + string(sample[1]) + "_" + rest
}

func magAssembler(name string) string {
	code := splitToken(name, 1)
	if a, ok := assemblerCodes[code]; ok {
		return a
	}
	return "unknown"
}

func magBinner(name string) string {
	token := splitToken(name, 2)
	for i := 0; i < len(token); i++ {
		if token[i] == '.' {
			return token[:i]
		}
	}
	return token
}

func splitToken(name string, n int) string {
	start := 0
	for i := 0; i <= len(name); i++ {
		if i == len(name) || name[i] == '_' {
			if n == 0 {
				return name[start:i]
			}
			n--
			start = i + 1
		}
	}
	return ""
}

// MagNameFields are the pieces encoded in a MAG name.
type MagNameFields struct {
	Sample     string
	LongSample string
	Assembler  string
	Binner     string
}

// DecodeMagName splits a MAG name into its encoded fields. Unknown
// assembler codes come back as "unknown" and malformed names yield
// empty strings rather than an error.
func DecodeMagName(name string) MagNameFields {
	return MagNameFields{
		Sample:     magSample(name),
		LongSample: magLongSample(name),
		Assembler:  magAssembler(name),
		Binner:     magBinner(name),
	}
}

// FilesystemLocator turns MAG names into the paths of the project
// layout: one FASTA per MAG under the genome directory, one depth table
// per assembler and sample under the abundance directory.
type FilesystemLocator struct {
	MagDir   string
	AbundDir string
}

// MagFile returns the path of the MAG's FASTA and verifies it exists.
// A missing file fails with ErrMagFileNotFound carrying the path, so a
// caller can tell "no such file" apart from "not in the summary".
func (l FilesystemLocator) MagFile(name string) (string, error) {
	p := filepath.Join(l.MagDir, name+".fasta")
	if _, err := os.Stat(p); err != nil {
		return "", fmt.Errorf("%w: %s", ErrMagFileNotFound, p)
	}
	return p, nil
}

// AbundanceFile returns the depth table path for the MAG's assembler
// and sample. Existence is the caller's concern: a missing depth table
// is a normal state, not an error.
func (l FilesystemLocator) AbundanceFile(name string) string {
	return filepath.Join(l.AbundDir, magAssembler(name)+"__"+magLongSample(name)+".tsv")
}

// SessionManager is the toolkit's front door: it owns the summary
// repository and the locator and assembles full Mag values on demand.
// Construction loads and validates the summary once; after that the
// manager is read-only and safe to share across goroutines.
type SessionManager struct {
	Summary *SummaryRepository
	Locator FilesystemLocator
}

func NewSessionManager(summaryPath, magDir, abundDir string) (*SessionManager, error) {
	repo, err := NewSummaryRepository(summaryPath)
	if err != nil {
		return nil, err
	}
	return &SessionManager{
		Summary: repo,
		Locator: FilesystemLocator{MagDir: magDir, AbundDir: abundDir},
	}, nil
}

// GetMag assembles the full record for one MAG: summary row, FASTA
// headers parsed into contigs, and per-contig abundance resolved from
// the depth table in one pass. The steps are ordered so each failure
// mode surfaces as its own error: unknown name, missing FASTA, then
// malformed headers. A missing depth table only means every contig
// carries an empty abundance mapping.
func (s *SessionManager) GetMag(name string) (*Mag, error) {
	data, err := s.Summary.MagData(name)
	if err != nil {
		return nil, err
	}

	fp, err := s.Locator.MagFile(name)
	if err != nil {
		return nil, err
	}

	headers, err := common.ReadFastaHeaders(fp)
	if err != nil {
		return nil, err
	}

	contigNames := make(map[string]bool, len(headers))
	for _, h := range headers {
		if n := ParseNameFromHeader(h); n != "" {
			contigNames[n] = true
		}
	}

	abund, err := s.abundanceData(name, contigNames)
	if err != nil {
		return nil, err
	}

	contigs := make([]*ContigID, 0, len(headers))
	for _, h := range headers {
		var info map[string]float64
		if n := ParseNameFromHeader(h); n != "" {
			info = abund[n]
		}
		c, err := NewContigID(h, info)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		contigs = append(contigs, c)
	}

	return &Mag{Name: name, Data: data, FP: fp, ContigIDs: contigs}, nil
}

// abundanceData opens the MAG's depth table for the duration of one
// lookup batch. No contig names or no depth file both resolve to an
// empty result.
func (s *SessionManager) abundanceData(name string, contigNames map[string]bool) (map[string]map[string]float64, error) {
	if len(contigNames) == 0 {
		return map[string]map[string]float64{}, nil
	}
	path := s.Locator.AbundanceFile(name)
	if _, err := os.Stat(path); err != nil {
		return map[string]map[string]float64{}, nil
	}
	db, err := OpenAbundanceDB(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return db.AbundForContigs(contigNames), nil
}

// SummaryIndex lists every MAG name the summary knows, in file order.
func (s *SessionManager) SummaryIndex() []string {
	return s.Summary.SummaryIndex()
}

// MagsByQuery filters the summary with a query expression. A non-nil
// restrictTo keeps only names from that list, preserving summary order.
func (s *SessionManager) MagsByQuery(query string, restrictTo []string) []string {
	matches := s.Summary.MagsByQuery(query)
	if restrictTo == nil {
		return matches
	}
	allowed := make(map[string]bool, len(restrictTo))
	for _, n := range restrictTo {
		allowed[n] = true
	}
	var out []string
	for _, n := range matches {
		if allowed[n] {
			out = append(out, n)
		}
	}
	return out
}

// HQMagNames returns the MAGs passing the standard high-quality call.
func (s *SessionManager) HQMagNames() []string {
	return s.Summary.HQMagNames()
}
