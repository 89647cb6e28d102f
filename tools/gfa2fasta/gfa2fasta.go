// Gfa2fasta extracts the segment records of a GFA assembly graph as
// FASTA. Segments whose sequence is unset ("*") are skipped.
package gfa2fasta

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"mag_buddy_go/utils"
)

func Run(args []string) {
	fs := flag.NewFlagSet("gfa2fasta", flag.ExitOnError)

	inFile := fs.String("in_file", "", "Input GFA file (plain or gzipped)")
	outFile := fs.String("out_file", "-", "Output FASTA file (default: stdout)")

	err := fs.Parse(args)
	if err != nil {
		fmt.Println("Error parsing flags:", err)
		os.Exit(1)
	}

	if *inFile == "" {
		fmt.Println("Usage: -in_file <graph.gfa> [-out_file <file>]")
		os.Exit(1)
	}

	in, err := common.OpenMaybeGzipped(*inFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	defer in.Close()

	out := os.Stdout
	if *outFile != "-" {
		f, cerr := os.Create(*outFile)
		if cerr != nil {
			fmt.Fprintln(os.Stderr, "Error:", cerr)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	n, err := ConvertGFA(in, out)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	if *outFile != "-" {
		fmt.Printf("Wrote %d segments to %s\n", n, *outFile)
	}
}

// ConvertGFA copies every S record of a GFA stream to w as a FASTA
// entry and reports how many were written. Non-segment lines and
// segments without a stored sequence do not contribute.
func ConvertGFA(r io.Reader, w io.Writer) (int, error) {
	scanner := bufio.NewScanner(r)
	// Assembly graphs store whole contigs on single lines
	scanner.Buffer(make([]byte, 1024*1024), 256*1024*1024)

	bw := bufio.NewWriter(w)
	count := 0
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "S\t") {
			continue
		}
		fields := strings.Split(strings.TrimRight(line, "\r\n"), "\t")
		if len(fields) < 3 {
			return count, fmt.Errorf("malformed S record with %d fields", len(fields))
		}
		name, seq := fields[1], fields[2]
		if seq == "*" {
			continue
		}
		if _, err := fmt.Fprintf(bw, ">%s\n%s\n", name, seq); err != nil {
			return count, err
		}
		count++
	}
	if err := scanner.Err(); err != nil {
		return count, err
	}
	return count, bw.Flush()
}
