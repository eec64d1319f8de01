package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFromFPS(t *testing.T) {
	names := []string{"ir_left_000.png", "ir_left_001.png", "ir_left_002.png"}
	records, err := FromFPS(names, 30)
	if err != nil {
		t.Fatalf("fromFPS: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[0].Timestamp != 0 {
		t.Fatalf("first timestamp %v, want 0", records[0].Timestamp)
	}
	dt := records[1].Timestamp - records[0].Timestamp
	if dt < 0.0333 || dt > 0.0334 {
		t.Fatalf("unexpected spacing %v", dt)
	}
	if records[2].Name != "ir_left_002.png" {
		t.Fatalf("unexpected name %q", records[2].Name)
	}

	if _, err := FromFPS(names, 0); err == nil {
		t.Fatalf("expected error for zero fps")
	}
}

func TestFromCSV(t *testing.T) {
	names := []string{"a.png", "b.png"}
	csv := "# comment\n1.5,ignored\n2.5,ignored\n"
	records, err := FromCSV(strings.NewReader(csv), 0, -1, names)
	if err != nil {
		t.Fatalf("fromCSV: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Timestamp != 1.5 || records[0].Name != "a.png" {
		t.Fatalf("unexpected first record %+v", records[0])
	}

	// Filenames taken from the CSV when a column is given.
	records, err = FromCSV(strings.NewReader("1.0,x.png\n2.0,y.png\n"), 0, 1, nil)
	if err != nil {
		t.Fatalf("fromCSV with names: %v", err)
	}
	if records[1].Name != "y.png" {
		t.Fatalf("unexpected name %q", records[1].Name)
	}

	// Count mismatch must fail.
	if _, err := FromCSV(strings.NewReader("1.0\n2.0\n3.0\n"), 0, -1, names); err == nil {
		t.Fatalf("expected count mismatch error")
	}
}

func TestWriteIndexRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "timestamps.txt")
	records := []Record{
		{Timestamp: 0, Name: "ir_left_000.png"},
		{Timestamp: 0.033333, Name: "ir_left_001.png"},
	}
	if err := WriteIndex(path, "test run", records); err != nil {
		t.Fatalf("write index: %v", err)
	}

	entries, err := Load("/l", "/r", path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[1].Timestamp != 0.033333 {
		t.Fatalf("timestamp %v, want 0.033333", entries[1].Timestamp)
	}
}

func TestScanPNGsSorted(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.png", "a.png", "c.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	names, err := ScanPNGs(dir)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(names) != 2 || names[0] != "a.png" || names[1] != "b.png" {
		t.Fatalf("unexpected names %v", names)
	}
}
