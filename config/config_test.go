package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	p, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load without a project file failed: %v", err)
	}
	d := Defaults()
	if p.SummaryPath != d.SummaryPath || p.MagDir != d.MagDir || p.AbundDir != d.AbundDir {
		t.Errorf("got %+v, want the defaults %+v", p, d)
	}
	if p.Workers < 1 {
		t.Errorf("workers = %d, want at least 1", p.Workers)
	}
}

func TestLoadReadsProjectFile(t *testing.T) {
	dir := t.TempDir()
	yaml := "summary_path: /data/summary.tsv\n" +
		"mag_dir: /data/genomes\n" +
		"abund_dir: /data/depths\n" +
		"workers: 4\n"
	if err := os.WriteFile(filepath.Join(dir, ConfigName+".yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatalf("writing project file: %v", err)
	}

	p, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if p.SummaryPath != "/data/summary.tsv" {
		t.Errorf("summary path = %q", p.SummaryPath)
	}
	if p.MagDir != "/data/genomes" || p.AbundDir != "/data/depths" {
		t.Errorf("dirs = %q/%q", p.MagDir, p.AbundDir)
	}
	if p.Workers != 4 {
		t.Errorf("workers = %d, want 4", p.Workers)
	}
	// Settings the file does not mention keep their defaults.
	if p.OutDir != Defaults().OutDir {
		t.Errorf("out dir = %q, want default", p.OutDir)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ConfigName+".yaml"), []byte(":\n\t- nope"), 0o644); err != nil {
		t.Fatalf("writing project file: %v", err)
	}
	if _, err := Load(dir); err == nil {
		t.Fatal("malformed project file should fail to load")
	}
}

func TestLoadClampsWorkers(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ConfigName+".yaml"), []byte("workers: -3\n"), 0o644); err != nil {
		t.Fatalf("writing project file: %v", err)
	}
	p, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if p.Workers != 1 {
		t.Errorf("workers = %d, want clamped to 1", p.Workers)
	}
}
