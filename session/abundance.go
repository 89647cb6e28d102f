package session

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/edsrzf/mmap-go"
)

// AbundanceDB answers per-contig depth lookups against one metabat2
// style depth table. The file is memory mapped read-only and scanned at
// most once per lookup batch; nothing besides the header row is parsed
// until a line actually matches a requested contig.
type AbundanceDB struct {
	DepthFilePath string
	HeaderFields  []string

	file      *os.File
	mm        mmap.MMap
	dataStart int

	valueCols  []string // raw header names of the columns to extract
	sampleCols []string // same columns with the "_merged.bam" suffix stripped
}

// OpenAbundanceDB maps the depth file and derives the sample columns
// from its header row. A value column only counts when its "-var"
// sibling is present too; jgi_summarize_bam_contig_depths always writes
// the pair, so a lone column means the file is not what we expect.
// A file yielding no sample columns fails with ErrNoSampleColumns.
func OpenAbundanceDB(path string) (*AbundanceDB, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if fi.Size() == 0 {
		f.Close()
		return nil, fmt.Errorf("%w: %s is empty", ErrNoSampleColumns, path)
	}

	mm, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to map %s: %w", path, err)
	}

	db := &AbundanceDB{DepthFilePath: path, file: f, mm: mm}

	headerLine := mm
	if i := bytes.IndexByte(mm, '\n'); i >= 0 {
		headerLine = mm[:i]
		db.dataStart = i + 1
	} else {
		db.dataStart = len(mm)
	}
	db.HeaderFields = strings.Split(strings.TrimSpace(string(headerLine)), "\t")

	// The "-var" columns identify which fields carry per-sample values.
	varSiblings := make(map[string]bool)
	for _, field := range db.HeaderFields {
		if strings.HasSuffix(field, "-var") {
			varSiblings[strings.TrimSuffix(field, "-var")] = true
		}
	}
	for _, field := range db.HeaderFields {
		if strings.HasSuffix(field, "-var") || !varSiblings[field] {
			continue
		}
		db.valueCols = append(db.valueCols, field)
		db.sampleCols = append(db.sampleCols, strings.TrimSuffix(field, "_merged.bam"))
	}

	if len(db.sampleCols) == 0 {
		db.Close()
		return nil, fmt.Errorf("%w: %s", ErrNoSampleColumns, path)
	}
	return db, nil
}

// SampleColumns returns the cleaned sample names this file can answer
// for, in header order.
func (db *AbundanceDB) SampleColumns() []string {
	out := make([]string, len(db.sampleCols))
	copy(out, db.sampleCols)
	return out
}

// AbundForContigs resolves depth values for every requested contig name
// in a single pass over the mapped file. Matching is plain substring
// containment on the raw line; the first still-outstanding name found
// on a line claims it. Lines whose value columns fail to parse as
// numbers are skipped without giving up on the name, so a later genuine
// match can still win. The scan stops as soon as every name is
// resolved. Names never seen are simply absent from the result.
func (db *AbundanceDB) AbundForContigs(contigNames map[string]bool) map[string]map[string]float64 {
	results := make(map[string]map[string]float64)
	if len(contigNames) == 0 {
		return results
	}

	outstanding := make(map[string]bool, len(contigNames))
	for name := range contigNames {
		outstanding[name] = true
	}

	pos := db.dataStart
	for len(outstanding) > 0 && pos < len(db.mm) {
		end := len(db.mm)
		if i := bytes.IndexByte(db.mm[pos:], '\n'); i >= 0 {
			end = pos + i
		}
		line := db.mm[pos:end]
		pos = end + 1

		var found string
		for name := range outstanding {
			if bytes.Contains(line, []byte(name)) {
				found = name
				break
			}
		}
		if found == "" {
			continue
		}

		values := strings.Split(strings.TrimSpace(string(line)), "\t")
		row := make(map[string]string, len(db.HeaderFields))
		for i, field := range db.HeaderFields {
			if i < len(values) {
				row[field] = values[i]
			}
		}

		abund := make(map[string]float64, len(db.valueCols))
		parseable := true
		for i, col := range db.valueCols {
			raw, ok := row[col]
			if !ok {
				continue // short row, column never materialized
			}
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				parseable = false
				break
			}
			abund[db.sampleCols[i]] = v
		}
		if parseable {
			results[found] = abund
			delete(outstanding, found)
		}
	}
	return results
}

// Close unmaps the file and releases the descriptor. Safe to call more
// than once.
func (db *AbundanceDB) Close() error {
	var first error
	if db.mm != nil {
		if err := db.mm.Unmap(); err != nil {
			first = err
		}
		db.mm = nil
	}
	if db.file != nil {
		if err := db.file.Close(); err != nil && first == nil {
			first = err
		}
		db.file = nil
	}
	return first
}
