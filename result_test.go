package hfcsim

import (
	"bytes"
	"strings"
	"testing"
)

func TestCSVHeaderMatchesFields(t *testing.T) {
	got := CSVHeader()
	if len(got) != len(ResultFields) {
		t.Fatalf("CSVHeader has %d columns, want %d", len(got), len(ResultFields))
	}
	for i, f := range ResultFields {
		if got[i] != f {
			t.Errorf("column %d = %q, want %q", i, got[i], f)
		}
	}
	// Mutating the returned slice must not mutate ResultFields.
	got[0] = "tampered"
	if ResultFields[0] == "tampered" {
		t.Error("CSVHeader leaked a reference to ResultFields")
	}
}

func TestCSVRecordRendersValues(t *testing.T) {
	r := Result{
		Application: "Domestic Refrigeration",
		Substance:   "HFC-134a",
		Year:        2027,
		Scenario:    "baseline",
		Trial:       2,
		Domestic:    NewValue(100, UnitKg),
		Population:  NewValue(500, UnitUnit),
	}
	rec := r.CSVRecord()
	if len(rec) != len(ResultFields) {
		t.Fatalf("CSVRecord has %d cells, want %d", len(rec), len(ResultFields))
	}
	if rec[0] != "Domestic Refrigeration" || rec[1] != "HFC-134a" {
		t.Errorf("application/substance cells = %q, %q", rec[0], rec[1])
	}
	if rec[2] != "2027" || rec[3] != "baseline" || rec[4] != "2" {
		t.Errorf("year/scenario/trial cells = %q, %q, %q", rec[2], rec[3], rec[4])
	}
	if rec[5] != "100 kg" {
		t.Errorf("domestic cell = %q, want %q", rec[5], "100 kg")
	}
	if rec[11] != "500 unit" {
		t.Errorf("population cell = %q, want %q", rec[11], "500 unit")
	}
}

func TestResultWriterWritesHeaderOnceAndFlushes(t *testing.T) {
	var buf bytes.Buffer
	rw := NewResultWriter(&buf)
	r1 := Result{Application: "A", Substance: "S1", Year: 2025}
	r2 := Result{Application: "A", Substance: "S2", Year: 2025}
	if err := rw.Write(r1); err != nil {
		t.Fatal(err)
	}
	if err := rw.Write(r2); err != nil {
		t.Fatal(err)
	}
	if err := rw.Flush(); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 1 header line + 2 data lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "application,substance,year") {
		t.Errorf("header line = %q", lines[0])
	}
	if !strings.Contains(lines[1], "S1") || !strings.Contains(lines[2], "S2") {
		t.Errorf("data lines = %q, %q", lines[1], lines[2])
	}
}
