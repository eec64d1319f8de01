package playback

import (
	"context"
	"fmt"
	"log"
	"time"

	"slam-feed-go/internal/frame"
	"slam-feed-go/internal/output"
	"slam-feed-go/internal/slam"
	"slam-feed-go/internal/types"
)

// Options configure one playback run.
type Options struct {
	// Scale is the uniform resize factor applied to both images before
	// submission. 1 disables resizing.
	Scale float64
	// RawLog, when non-nil, captures every track result.
	RawLog *output.RawLogWriter
	// Viewer, when non-nil, receives per-frame progress messages. Sends
	// never block; a slow viewer drops frames.
	Viewer chan<- any
	// LogEvery logs progress every Nth frame. 0 disables progress logs.
	LogEvery int
}

// Run plays the sequence into the tracker at the recorded cadence and
// returns the per-frame track durations in seconds.
//
// Each frame: load both images (any decode failure aborts the run), rescale
// if needed, time the track call, then sleep the positive remainder of the
// interval to the next recorded timestamp. The last frame reuses the
// previous interval. When tracking runs longer than the interval the run
// silently falls behind schedule.
func Run(ctx context.Context, sys slam.System, entries []types.IndexEntry, opts Options) ([]float64, error) {
	if opts.Scale <= 0 {
		opts.Scale = 1
	}
	durations := make([]float64, 0, len(entries))

	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			return durations, err
		}

		left, err := frame.Load(entry.LeftPath)
		if err != nil {
			return durations, err
		}
		right, err := frame.Load(entry.RightPath)
		if err != nil {
			return durations, err
		}

		if opts.Scale != 1 {
			left = frame.Rescale(left, opts.Scale)
			right = frame.Rescale(right, opts.Scale)
		}

		start := time.Now()
		pose, err := sys.TrackStereo(ctx, left, right, entry.Timestamp)
		if err != nil {
			return durations, fmt.Errorf("track frame %d: %w", i, err)
		}
		elapsed := time.Since(start).Seconds()
		durations = append(durations, elapsed)

		result := types.TrackResult{
			Index:        i,
			Timestamp:    entry.Timestamp,
			Translation:  pose.T,
			TrackSeconds: elapsed,
		}
		if opts.RawLog != nil {
			if err := opts.RawLog.RecordResult(result); err != nil {
				log.Printf("raw log write failed: %v", err)
			}
		}
		if opts.Viewer != nil {
			select {
			case opts.Viewer <- types.ViewerPose{
				Type:         "pose",
				Index:        i,
				Total:        len(entries),
				Timestamp:    entry.Timestamp,
				Translation:  pose.T,
				TrackSeconds: elapsed,
			}:
			default:
			}
		}
		if opts.LogEvery > 0 && (i+1)%opts.LogEvery == 0 {
			log.Printf("frame %d/%d t=%.6f track=%.4fs", i+1, len(entries), entry.Timestamp, elapsed)
		}

		var interval float64
		if i < len(entries)-1 {
			interval = entries[i+1].Timestamp - entry.Timestamp
		} else if i > 0 {
			interval = entry.Timestamp - entries[i-1].Timestamp
		}
		if remainder := interval - elapsed; remainder > 0 {
			timer := time.NewTimer(time.Duration(remainder * float64(time.Second)))
			select {
			case <-ctx.Done():
				timer.Stop()
				return durations, ctx.Err()
			case <-timer.C:
			}
		}
	}
	return durations, nil
}
