package output

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fxamacker/cbor/v2"

	"slam-feed-go/internal/types"
)

func TestRawLogRoundTrip(t *testing.T) {
	dir := t.TempDir()
	w, err := NewRawLogWriter(dir, "track_results")
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}

	want := []types.TrackResult{
		{Index: 0, Timestamp: 0.0, Translation: [3]float64{0, 0, 0}, TrackSeconds: 0.011},
		{Index: 1, Timestamp: 0.033333, Translation: [3]float64{0.01, 0, 0.02}, TrackSeconds: 0.012},
	}
	for _, res := range want {
		if err := w.RecordResult(res); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "*_track_results.bin"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("expected one rawlog file, got %v (%v)", matches, err)
	}

	f, err := os.Open(matches[0])
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	records, err := ReadRawLog(f)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	for i, rec := range records {
		var got types.TrackResult
		if err := cbor.Unmarshal(rec.Payload, &got); err != nil {
			t.Fatalf("record %d: decode: %v", i, err)
		}
		if got != want[i] {
			t.Fatalf("record %d: got %+v, want %+v", i, got, want[i])
		}
		if rec.WallNanos == 0 {
			t.Fatalf("record %d: missing wall time", i)
		}
	}
}

func TestRawLogClosedWriter(t *testing.T) {
	w, err := NewRawLogWriter(t.TempDir(), "x")
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := w.RecordResult(types.TrackResult{}); err == nil {
		t.Fatalf("expected error on closed writer")
	}
	if err := w.Close(); err != nil {
		t.Fatalf("double close: %v", err)
	}
}

func TestReadRawLogBadMagic(t *testing.T) {
	if _, err := ReadRawLog(strings.NewReader("NOTMAGIC........")); err == nil {
		t.Fatalf("expected magic error")
	}
}
