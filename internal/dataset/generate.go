package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Record is one line of a generated timestamps index.
type Record struct {
	Timestamp float64
	Name      string
}

// ScanPNGs lists the PNG basenames of a directory in sorted order.
func ScanPNGs(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.png"))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, filepath.Base(m))
	}
	sort.Strings(names)
	return names, nil
}

// FromFPS spaces the given filenames evenly at the given frame rate,
// starting at zero.
func FromFPS(names []string, fps float64) ([]Record, error) {
	if fps <= 0 {
		return nil, fmt.Errorf("fps must be positive, got %v", fps)
	}
	dt := 1.0 / fps
	records := make([]Record, len(names))
	for i, name := range names {
		records[i] = Record{Timestamp: float64(i) * dt, Name: name}
	}
	return records, nil
}

// FromCSV reads recorded timestamps (and optionally filenames) from a CSV
// stream. When nameColumn is negative the sorted filename list must match
// the timestamp count one to one.
func FromCSV(r io.Reader, timeColumn, nameColumn int, names []string) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	var timestamps []float64
	var csvNames []string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if len(row) == 0 || strings.HasPrefix(strings.TrimSpace(row[0]), "#") {
			continue
		}
		if timeColumn >= len(row) {
			continue
		}
		t, err := strconv.ParseFloat(strings.TrimSpace(row[timeColumn]), 64)
		if err != nil {
			continue
		}
		timestamps = append(timestamps, t)
		if nameColumn >= 0 && nameColumn < len(row) {
			csvNames = append(csvNames, strings.TrimSpace(row[nameColumn]))
		}
	}
	if len(timestamps) == 0 {
		return nil, fmt.Errorf("no valid timestamps in csv")
	}

	records := make([]Record, len(timestamps))
	switch {
	case len(csvNames) == len(timestamps):
		for i := range timestamps {
			records[i] = Record{Timestamp: timestamps[i], Name: csvNames[i]}
		}
	case len(names) == len(timestamps):
		for i := range timestamps {
			records[i] = Record{Timestamp: timestamps[i], Name: names[i]}
		}
	default:
		return nil, fmt.Errorf("timestamp count %d does not match image count %d", len(timestamps), len(names))
	}
	return records, nil
}

// WriteIndex writes records in the index file format the loader reads back.
func WriteIndex(path, origin string, records []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if origin != "" {
		fmt.Fprintf(f, "# %s\n", origin)
	}
	fmt.Fprintln(f, "# timestamp(s) filename")
	for _, rec := range records {
		fmt.Fprintf(f, "%.6f %s\n", rec.Timestamp, rec.Name)
	}
	return f.Close()
}
