package common

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleTSV = "contigName\tcontigLen\tS1\tS2\n" +
	"ctgA\t1000\t5.0\t2.5\n" +
	"ctgB\t2000\t1.0\t0.0\n"

func readSample(t *testing.T) *Table {
	t.Helper()
	table, err := ReadTable(strings.NewReader(sampleTSV))
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	return table
}

func TestReadTableShape(t *testing.T) {
	table := readSample(t)

	if table.IndexName != "contigName" {
		t.Errorf("IndexName = %q", table.IndexName)
	}
	if got := strings.Join(table.Columns, ","); got != "contigLen,S1,S2" {
		t.Errorf("columns = %q", got)
	}
	if got := strings.Join(table.Index, ","); got != "ctgA,ctgB" {
		t.Errorf("index = %q", got)
	}
}

func TestReadTablePadsShortRows(t *testing.T) {
	input := "name\ta\tb\nrow1\t1\nrow2\t1\t2\t3\n"
	table, err := ReadTable(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}

	row, _ := table.Row("row1")
	if len(row) != 2 || row[1] != "" {
		t.Errorf("short row = %v, want padded to 2 cells", row)
	}
	row, _ = table.Row("row2")
	if len(row) != 2 || row[1] != "2" {
		t.Errorf("long row = %v, want truncated to 2 cells", row)
	}
}

func TestReadTableRejectsEmptyInput(t *testing.T) {
	if _, err := ReadTable(strings.NewReader("")); err == nil {
		t.Fatal("expected an error for empty input")
	}
}

func TestReadTableSepComma(t *testing.T) {
	table, err := ReadTableSep(strings.NewReader("genome,secondary_cluster\ng1.fasta,1_1\n"), ",")
	if err != nil {
		t.Fatal(err)
	}
	if table.Index[0] != "g1.fasta" {
		t.Errorf("index = %v", table.Index)
	}
	row, _ := table.Row("g1.fasta")
	if row[0] != "1_1" {
		t.Errorf("row = %v", row)
	}
}

func TestFloatColumn(t *testing.T) {
	table := readSample(t)

	vals, err := table.FloatColumn("S1")
	if err != nil {
		t.Fatal(err)
	}
	if vals[0] != 5.0 || vals[1] != 1.0 {
		t.Errorf("S1 = %v", vals)
	}

	if _, err := table.FloatColumn("nope"); err == nil {
		t.Error("expected an error for an unknown column")
	}
}

func TestFloatColumnBlankCellsAreNaN(t *testing.T) {
	table, err := ReadTable(strings.NewReader("name\tv\nr1\t\nr2\t2.0\n"))
	if err != nil {
		t.Fatal(err)
	}
	vals, err := table.FloatColumn("v")
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsNaN(vals[0]) || vals[1] != 2.0 {
		t.Errorf("v = %v", vals)
	}
}

func TestSetColumnAppendsAndOverwrites(t *testing.T) {
	table := readSample(t)

	if err := table.SetColumn("binner", []string{"metabat", "semibin"}); err != nil {
		t.Fatal(err)
	}
	if got := table.Columns[len(table.Columns)-1]; got != "binner" {
		t.Errorf("last column = %q", got)
	}

	if err := table.SetColumn("S1", []string{"9", "9"}); err != nil {
		t.Fatal(err)
	}
	row, _ := table.Row("ctgA")
	if row[1] != "9" {
		t.Errorf("overwritten S1 = %q", row[1])
	}

	if err := table.SetColumn("bad", []string{"only-one"}); err == nil {
		t.Error("expected an error for a value count mismatch")
	}
}

func TestSelectRowsReportsMissing(t *testing.T) {
	table := readSample(t)

	out, missing := table.SelectRows([]string{"ctgB", "ghost"})
	if got := strings.Join(out.Index, ","); got != "ctgB" {
		t.Errorf("selected = %q", got)
	}
	if len(missing) != 1 || missing[0] != "ghost" {
		t.Errorf("missing = %v", missing)
	}
}

func TestDropColumns(t *testing.T) {
	table := readSample(t)

	table.DropColumns("S1", "ghost")
	if got := strings.Join(table.Columns, ","); got != "contigLen,S2" {
		t.Errorf("columns = %q", got)
	}
	row, _ := table.Row("ctgA")
	if row[1] != "2.5" {
		t.Errorf("ctgA = %v", row)
	}
}

func TestTransposeRoundTrips(t *testing.T) {
	table := readSample(t)

	back := table.Transpose().Transpose()
	if got := strings.Join(back.Index, ","); got != "ctgA,ctgB" {
		t.Errorf("index after double transpose = %q", got)
	}
	row, _ := back.Row("ctgB")
	if strings.Join(row, ",") != "2000,1.0,0.0" {
		t.Errorf("ctgB = %v", row)
	}
}

func TestJoinInnerAndOuter(t *testing.T) {
	left, err := ReadTable(strings.NewReader("\tA\nm1\t1\nm2\t2\n"))
	if err != nil {
		t.Fatal(err)
	}
	right, err := ReadTable(strings.NewReader("\tB\nm2\t20\nm3\t30\n"))
	if err != nil {
		t.Fatal(err)
	}

	inner := Join(left, right, false)
	if got := strings.Join(inner.Index, ","); got != "m2" {
		t.Errorf("inner index = %q", got)
	}

	outer := Join(left, right, true)
	if got := strings.Join(outer.Index, ","); got != "m1,m2,m3" {
		t.Errorf("outer index = %q", got)
	}
	row, _ := outer.Row("m1")
	if row[0] != "1" || row[1] != "" {
		t.Errorf("m1 = %v", row)
	}
	row, _ = outer.Row("m3")
	if row[0] != "" || row[1] != "30" {
		t.Errorf("m3 = %v", row)
	}
}

func TestWriteFileRoundTrip(t *testing.T) {
	table := readSample(t)
	path := filepath.Join(t.TempDir(), "out.tsv")

	if err := table.WriteFile(path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != sampleTSV {
		t.Errorf("written table = %q, want %q", string(data), sampleTSV)
	}

	back, err := LoadTable(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(back.Index, ","); got != "ctgA,ctgB" {
		t.Errorf("reloaded index = %q", got)
	}
}
