// Sanity_check verifies MAG Buddy runs and reports what it can see of
// the current project: the resolved configuration and whether the
// summary file and data directories are present.
package sanity_check

import (
	"flag"
	"fmt"
	"os"

	"mag_buddy_go/config"
)

func Run(args []string) {
	fs := flag.NewFlagSet("sanity_check", flag.ExitOnError)
	configDir := fs.String("config", ".", "Directory holding the project file")

	if err := fs.Parse(args); err != nil {
		fmt.Println("Error parsing flags:", err)
		os.Exit(1)
	}

	fmt.Printf("Successfully running MAG Buddy! (%s)\n", config.Main_version)

	proj, err := config.Load(*configDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Warning: could not read project configuration:", err)
		return
	}

	fmt.Println("Project layout:")
	reportPath("summary file", proj.SummaryPath)
	reportPath("MAG directory", proj.MagDir)
	reportPath("abundance directory", proj.AbundDir)
	fmt.Printf("  workers: %d\n", proj.Workers)
}

func reportPath(label, path string) {
	status := "missing"
	if _, err := os.Stat(path); err == nil {
		status = "found"
	}
	fmt.Printf("  %s: %s (%s)\n", label, path, status)
}
