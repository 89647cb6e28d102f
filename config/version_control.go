package config

// Version system:
// vMAJOR.MINOR.PATCH

// Centralized version control
const (
	// Executible
	Main_version = "v1.0.0"

	// Modular tools
	Benchmark      = "v1.0.0"
	Cluster_Rep    = "v1.0.0"
	Mag_Filter     = "v1.1.0"
	Mag_Overview   = "v1.0.2"
	Depth_Extract  = "v1.0.0"
	Depth_Merge    = "v2.0.0" // Formerly "merge_metabat2_tables"
	Coverage_Table = "v1.0.0"
	Table_Merge    = "v1.0.0"
	Manifest_Gen   = "v1.0.1"
	GFA2FASTA      = "v1.0.0"
	FASTQ_Chunker  = "v1.0.0"
	Sanity_check   = "v1.0.0"
)
