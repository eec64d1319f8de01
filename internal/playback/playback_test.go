package playback

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"slam-feed-go/internal/dataset"
	"slam-feed-go/internal/stats"
	"slam-feed-go/internal/trajectory"
	"slam-feed-go/internal/types"
)

type trackCall struct {
	timestamp float64
	width     int
	height    int
}

// fakeSystem records every track call and can fail on demand.
type fakeSystem struct {
	calls  []trackCall
	failAt int
}

func newFakeSystem() *fakeSystem {
	return &fakeSystem{failAt: -1}
}

func (f *fakeSystem) ImageScale() float64 { return 1 }

func (f *fakeSystem) TrackStereo(_ context.Context, left, _ image.Image, timestamp float64) (types.Pose, error) {
	if f.failAt >= 0 && len(f.calls) == f.failAt {
		return types.Pose{}, fmt.Errorf("injected tracker failure")
	}
	f.calls = append(f.calls, trackCall{
		timestamp: timestamp,
		width:     left.Bounds().Dx(),
		height:    left.Bounds().Dy(),
	})
	return types.IdentityPose(timestamp), nil
}

func (f *fakeSystem) Shutdown() {}

func (f *fakeSystem) SaveTrajectory(string, trajectory.Format) error { return nil }

// writeSequence lays out a stereo dataset with the given timestamps and
// returns the loaded entries.
func writeSequence(t *testing.T, timestamps []float64) []types.IndexEntry {
	t.Helper()
	root := t.TempDir()
	leftDir := filepath.Join(root, "left")
	rightDir := filepath.Join(root, "right")
	for _, d := range []string{leftDir, rightDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}

	index := filepath.Join(root, "timestamps.txt")
	f, err := os.Create(index)
	if err != nil {
		t.Fatalf("create index: %v", err)
	}
	for i, ts := range timestamps {
		name := fmt.Sprintf("ir_left_%03d.png", i)
		fmt.Fprintf(f, "%.6f %s\n", ts, name)
		writePNG(t, filepath.Join(leftDir, name), 16, 12)
		writePNG(t, filepath.Join(rightDir, dataset.RightName(name)), 16, 12)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close index: %v", err)
	}

	entries, err := dataset.Load(leftDir, rightDir, index)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return entries
}

func writePNG(t *testing.T, path string, width, height int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	if err := png.Encode(f, image.NewGray(image.Rect(0, 0, width, height))); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestRunTracksAllFramesInOrder(t *testing.T) {
	timestamps := []float64{0.0, 0.033333, 0.066667, 0.1}
	entries := writeSequence(t, timestamps)
	sys := newFakeSystem()

	start := time.Now()
	durations, err := Run(context.Background(), sys, entries, Options{Scale: 1})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(sys.calls) != 4 {
		t.Fatalf("tracker invoked %d times, want 4", len(sys.calls))
	}
	for i, call := range sys.calls {
		if call.timestamp != timestamps[i] {
			t.Fatalf("call %d timestamp %v, want %v", i, call.timestamp, timestamps[i])
		}
	}
	if len(durations) != 4 {
		t.Fatalf("recorded %d durations, want 4", len(durations))
	}

	summary, err := stats.Summarize(durations)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if summary.Samples != 4 {
		t.Fatalf("summary over %d samples, want 4", summary.Samples)
	}

	// Pacing: the run spans at least the recorded interval between the
	// first and last frame (with headroom for the final-frame sleep).
	if elapsed := time.Since(start); elapsed < 100*time.Millisecond {
		t.Fatalf("run finished in %v, pacing sleeps missing", elapsed)
	}
}

func TestRunAppliesScale(t *testing.T) {
	entries := writeSequence(t, []float64{0.0, 0.01})
	sys := newFakeSystem()

	if _, err := Run(context.Background(), sys, entries, Options{Scale: 0.5}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if sys.calls[0].width != 8 || sys.calls[0].height != 6 {
		t.Fatalf("scaled dims %dx%d, want 8x6", sys.calls[0].width, sys.calls[0].height)
	}
}

func TestRunAbortsOnMissingImage(t *testing.T) {
	entries := writeSequence(t, []float64{0.0, 0.01, 0.02})
	if err := os.Remove(entries[1].RightPath); err != nil {
		t.Fatalf("remove: %v", err)
	}
	sys := newFakeSystem()

	_, err := Run(context.Background(), sys, entries, Options{Scale: 1})
	if err == nil {
		t.Fatalf("expected error for missing image")
	}
	if len(sys.calls) != 1 {
		t.Fatalf("tracker invoked %d times after failure, want 1", len(sys.calls))
	}
}

func TestRunAbortsOnTrackerError(t *testing.T) {
	entries := writeSequence(t, []float64{0.0, 0.01, 0.02})
	sys := newFakeSystem()
	sys.failAt = 1

	durations, err := Run(context.Background(), sys, entries, Options{Scale: 1})
	if err == nil {
		t.Fatalf("expected tracker error")
	}
	if len(durations) != 1 {
		t.Fatalf("recorded %d durations before failure, want 1", len(durations))
	}
}

func TestRunPublishesViewerMessages(t *testing.T) {
	entries := writeSequence(t, []float64{0.0, 0.01, 0.02})
	sys := newFakeSystem()
	viewer := make(chan any, 8)

	if _, err := Run(context.Background(), sys, entries, Options{Scale: 1, Viewer: viewer}); err != nil {
		t.Fatalf("run: %v", err)
	}
	close(viewer)

	var got []types.ViewerPose
	for msg := range viewer {
		pose, ok := msg.(types.ViewerPose)
		if !ok {
			t.Fatalf("unexpected message type %T", msg)
		}
		got = append(got, pose)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 viewer messages, got %d", len(got))
	}
	if got[1].Index != 1 || got[1].Total != 3 || got[1].Type != "pose" {
		t.Fatalf("unexpected viewer message %+v", got[1])
	}
}

func TestRunHonorsCancellation(t *testing.T) {
	entries := writeSequence(t, []float64{0.0, 0.01})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sys := newFakeSystem()
	if _, err := Run(ctx, sys, entries, Options{Scale: 1}); err == nil {
		t.Fatalf("expected context error")
	}
	if len(sys.calls) != 0 {
		t.Fatalf("tracker invoked after cancellation")
	}
}
