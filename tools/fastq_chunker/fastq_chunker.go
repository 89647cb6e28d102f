// Fastq_chunker groups the fastq.gz files under a directory into
// near-equal chunks by size, largest files first. The chunk table feeds
// batch jobs that want balanced input volume per task.
package fastq_chunker

import (
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type FileSize struct {
	Path string
	Size int64
}

func Run(args []string) {
	fs := flag.NewFlagSet("fastq_chunker", flag.ExitOnError)

	inDir := fs.String("in_dir", "", "Input folder to scan for fastq.gz files")
	sizeGB := fs.Int("size", 5, "Desired chunk size in GB")
	outFile := fs.String("out_file", "", "Output table path (default: stdout)")

	err := fs.Parse(args)
	if err != nil {
		fmt.Println("Error parsing flags:", err)
		os.Exit(1)
	}

	if *inDir == "" {
		fmt.Println("Usage: -in_dir <folder> [-size <GB>] [-out_file <file>]")
		os.Exit(1)
	}

	root, err := filepath.Abs(*inDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	files, err := CollectFastqFiles(root)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error scanning input folder:", err)
		os.Exit(1)
	}

	chunks := PackChunks(files, int64(*sizeGB)*1024*1024*1024)

	var b strings.Builder
	for i, chunk := range chunks {
		fmt.Fprintf(&b, "chunk%d\t%s\n", i+1, strings.Join(chunk, ","))
	}

	if *outFile == "" {
		fmt.Print(b.String())
		return
	}
	if err := os.WriteFile(*outFile, []byte(b.String()), 0o644); err != nil {
		fmt.Fprintln(os.Stderr, "Error writing output:", err)
		os.Exit(1)
	}
	fmt.Printf("Output table generated as '%s'.\n", *outFile)
}

// CollectFastqFiles walks the tree below root and returns every file
// whose path mentions fastq.gz, sorted by size, largest first. Equal
// sizes keep walk order.
func CollectFastqFiles(root string) ([]FileSize, error) {
	var files []FileSize
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.Contains(path, "fastq.gz") {
			return nil
		}
		info, ierr := d.Info()
		if ierr != nil {
			return ierr
		}
		files = append(files, FileSize{Path: path, Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(files, func(i, j int) bool { return files[i].Size > files[j].Size })
	return files, nil
}

// PackChunks fills chunks greedily: a chunk closes once the next file
// would push it past the limit. A file larger than the limit still gets
// placed, so no input is ever dropped.
func PackChunks(files []FileSize, limit int64) [][]string {
	var chunks [][]string
	var current []string
	var currentSize int64
	for _, f := range files {
		if currentSize+f.Size > limit && len(current) > 0 {
			chunks = append(chunks, current)
			current = nil
			currentSize = 0
		}
		current = append(current, f.Path)
		currentSize += f.Size
	}
	if len(current) > 0 {
		chunks = append(chunks, current)
	}
	return chunks
}
