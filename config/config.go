package config // Project configuration file

import (
	"errors"
	"runtime"

	"github.com/spf13/viper"
)

// ConfigName is the base name of the project file the tools look for,
// so "mag_buddy.yaml" next to the data or in the working directory.
const ConfigName = "mag_buddy"

// Project holds the settings shared by the session-backed tools. Flags
// always win over the file; the file wins over the defaults.
type Project struct {
	SummaryPath string // MAG quality summary table
	MagDir      string // dereplicated genome FASTA directory
	AbundDir    string // per-assembler depth table directory
	OutDir      string // where reports and selections land
	Workers     int    // parallel MAG loads
}

// Defaults returns the settings used when no project file exists.
func Defaults() Project {
	return Project{
		SummaryPath: "summary.tsv",
		MagDir:      "dereplicated_genomes",
		AbundDir:    "depths",
		OutDir:      ".",
		Workers:     runtime.NumCPU(),
	}
}

// Load reads the project file from the given directory ("." when
// empty). A missing file is not an error, the defaults simply apply;
// a present but unreadable file is.
func Load(dir string) (Project, error) {
	if dir == "" {
		dir = "."
	}

	v := viper.New()
	v.SetConfigName(ConfigName)
	v.AddConfigPath(dir)

	p := Defaults()
	v.SetDefault("summary_path", p.SummaryPath)
	v.SetDefault("mag_dir", p.MagDir)
	v.SetDefault("abund_dir", p.AbundDir)
	v.SetDefault("out_dir", p.OutDir)
	v.SetDefault("workers", p.Workers)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return p, nil
		}
		return Project{}, err
	}

	p.SummaryPath = v.GetString("summary_path")
	p.MagDir = v.GetString("mag_dir")
	p.AbundDir = v.GetString("abund_dir")
	p.OutDir = v.GetString("out_dir")
	p.Workers = v.GetInt("workers")
	if p.Workers < 1 {
		p.Workers = 1
	}
	return p, nil
}
