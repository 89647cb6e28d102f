package main

import (
	"fmt"
	"os"
	"strings"

	"mag_buddy_go/benchmark"
	version_control "mag_buddy_go/config"
	"mag_buddy_go/tools/cluster_rep"
	"mag_buddy_go/tools/coverage_table"
	"mag_buddy_go/tools/depth_extract"
	"mag_buddy_go/tools/depth_merge"
	"mag_buddy_go/tools/fastq_chunker"
	"mag_buddy_go/tools/gfa2fasta"
	"mag_buddy_go/tools/mag_filter"
	"mag_buddy_go/tools/mag_overview"
	"mag_buddy_go/tools/manifest_gen"
	"mag_buddy_go/tools/sanity_check"
	"mag_buddy_go/tools/table_merge"
)

// printCustomHelp formats a custom help menu
func printCustomHelp() {
	fmt.Println(`MAG Buddy - Custom Help Menu
Usage:
  mag_buddy <tool> [options]

Tools:
  mag_filter		Select MAGs by quality, query or depth cutoffs
  mag_overview		Per-MAG report with coverage plot
  cluster_rep		Pick one representative per dereplication cluster
  depth_extract		Filter and transpose a depth table
  depth_merge		Merge per-sample metabat2 depth tables
  coverage_table	Length-weighted average depth for one MAG
  table_merge		Join or concatenate coverage tables
  manifest_gen		Build a MAG manifest from a project directory
  gfa2fasta		Extract GFA segments as FASTA
  fastq_chunker		Pack fastq.gz files into equal-sized chunks
  sanity_check		Run diagnostic test

Global Flags:
  -h, -help		Show this help message
  -v, -version		Show version information

Benchmarking:
  -benchmark		Must be used in associtation with a tool.
			Displays computational resource usage and
			pertinent operating system information
  `,
	)
	os.Exit(0)
}

func printVersion() {
	fmt.Println("MAG Buddy - Version Information Menu")
	fmt.Println("Central Executable:")
	fmt.Printf("\tMAG Buddy:\t\t%s\n", version_control.Main_version)
	fmt.Printf("\nModular tools:\n")
	fmt.Printf("\tMAG Filter:\t\t%s\n", version_control.Mag_Filter)
	fmt.Printf("\tMAG Overview:\t\t%s\n", version_control.Mag_Overview)
	fmt.Printf("\tCluster Rep:\t\t%s\n", version_control.Cluster_Rep)
	fmt.Printf("\tDepth Extract:\t\t%s\n", version_control.Depth_Extract)
	fmt.Printf("\tDepth Merge:\t\t%s\n", version_control.Depth_Merge)
	fmt.Printf("\tCoverage Table:\t\t%s\n", version_control.Coverage_Table)
	fmt.Printf("\tTable Merge:\t\t%s\n", version_control.Table_Merge)
	fmt.Printf("\tManifest Generator:\t%s\n", version_control.Manifest_Gen)
	fmt.Printf("\tGFA to FASTA:\t\t%s\n", version_control.GFA2FASTA)
	fmt.Printf("\tFASTQ Chunker:\t\t%s\n", version_control.FASTQ_Chunker)
	fmt.Printf("\tSanity Check:\t\t%s\n", version_control.Sanity_check)
	fmt.Printf("\tBenchmark:\t\t%s\n", version_control.Benchmark)

	fmt.Println("")

	os.Exit(0)
}

// Main controller
func main() {

	// If no arguments are given, show help
	if len(os.Args) < 2 {
		printCustomHelp()
	}

	// Scan for executible-specific help flags
	for _, arg := range os.Args[1:] {
		if len(os.Args) < 3 {
			if arg == "-h" || arg == "-help" {
				printCustomHelp()
			}
		}
	}

	// Version request
	for _, arg := range os.Args[1:] {
		if arg == "-v" || arg == "-version" {
			printVersion()
		}
	}

	toolName := os.Args[1]
	toolArgs := os.Args[2:]

	// Check for global --benchmark flag
	benchmarking := false
	var cleanedArgs []string
	for _, arg := range toolArgs {
		if arg == "-benchmark" {
			benchmarking = true
		} else {
			cleanedArgs = append(cleanedArgs, arg)
		}
	}

	// Tool execution wrapper
	run := func() {
		switch toolName {
		case "mag_filter":
			mag_filter.Run(cleanedArgs)
		case "mag_overview":
			mag_overview.Run(cleanedArgs)
		case "cluster_rep":
			cluster_rep.Run(cleanedArgs)
		case "depth_extract":
			depth_extract.Run(cleanedArgs)
		case "depth_merge":
			depth_merge.Run(cleanedArgs)
		case "coverage_table":
			coverage_table.Run(cleanedArgs)
		case "table_merge":
			table_merge.Run(cleanedArgs)
		case "manifest_gen":
			manifest_gen.Run(cleanedArgs)
		case "gfa2fasta":
			gfa2fasta.Run(cleanedArgs)
		case "fastq_chunker":
			fastq_chunker.Run(cleanedArgs)
		case "check":
			sanity_check.Run(cleanedArgs)
		default:
			fmt.Printf("Unknown tool: %s\n", toolName)
			os.Exit(1)
		}
	}

	if benchmarking {
		label := fmt.Sprintf("mag_buddy %s %s", toolName, strings.Join(cleanedArgs, " "))
		benchmark.Run(label, run)
	} else {
		run()
	}
}
