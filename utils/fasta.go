package common

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
)

// OpenMaybeGzipped opens a file and transparently decompresses it when
// the gzip magic bytes are present, regardless of extension.
func OpenMaybeGzipped(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, 2)
	n, _ := f.Read(buf)
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, err
	}

	if n == 2 && buf[0] == 0x1F && buf[1] == 0x8B {
		gr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to open gzip reader: %w", err)
		}
		return &gzipReadCloser{gr: gr, f: f}, nil
	}
	return f, nil
}

type gzipReadCloser struct {
	gr *gzip.Reader
	f  *os.File
}

func (g *gzipReadCloser) Read(p []byte) (int, error) { return g.gr.Read(p) }

func (g *gzipReadCloser) Close() error {
	gerr := g.gr.Close()
	ferr := g.f.Close()
	if gerr != nil {
		return gerr
	}
	return ferr
}

// ReadFastaHeaders streams a FASTA file and collects its header lines
// (lines starting with '>'), trimmed of surrounding whitespace, in file
// order. Sequence lines are never buffered, so file size does not
// matter.
func ReadFastaHeaders(path string) ([]string, error) {
	r, err := OpenMaybeGzipped(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	scanner := bufio.NewScanner(r)
	// Unwrapped assemblies can put a whole contig on one line
	scanner.Buffer(make([]byte, 1024*1024), 64*1024*1024)

	var headers []string
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, ">") {
			headers = append(headers, strings.TrimSpace(line))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return headers, nil
}
