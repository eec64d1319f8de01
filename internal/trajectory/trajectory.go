package trajectory

import (
	"fmt"
	"io"
	"math"
	"os"
	"sync"

	"slam-feed-go/internal/types"
)

// Format selects the trajectory file convention.
type Format string

const (
	// FormatKITTI writes one 3x4 pose matrix per line, row major.
	FormatKITTI Format = "kitti"
	// FormatTUM writes "timestamp tx ty tz qx qy qz qw" per line.
	FormatTUM Format = "tum"
)

func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatKITTI, FormatTUM:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown trajectory format %q (want kitti or tum)", s)
	}
}

// Accumulator collects one pose per processed frame, in submission order.
// Safe for concurrent use; the viewer reads while playback appends.
type Accumulator struct {
	mu    sync.Mutex
	poses []types.Pose
}

func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

func (a *Accumulator) Add(p types.Pose) {
	a.mu.Lock()
	a.poses = append(a.poses, p)
	a.mu.Unlock()
}

func (a *Accumulator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.poses)
}

func (a *Accumulator) Poses() []types.Pose {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]types.Pose, len(a.poses))
	copy(out, a.poses)
	return out
}

// Write persists the accumulated trajectory to path in the given format.
func (a *Accumulator) Write(path string, format Format) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create trajectory file: %w", err)
	}
	poses := a.Poses()
	switch format {
	case FormatTUM:
		err = WriteTUM(f, poses)
	default:
		err = WriteKITTI(f, poses)
	}
	if err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// WriteKITTI emits each pose as the 12 entries of its 3x4 [R|t] matrix.
func WriteKITTI(w io.Writer, poses []types.Pose) error {
	for _, p := range poses {
		_, err := fmt.Fprintf(w, "%.9f %.9f %.9f %.9f %.9f %.9f %.9f %.9f %.9f %.9f %.9f %.9f\n",
			p.R[0][0], p.R[0][1], p.R[0][2], p.T[0],
			p.R[1][0], p.R[1][1], p.R[1][2], p.T[1],
			p.R[2][0], p.R[2][1], p.R[2][2], p.T[2])
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteTUM emits each pose as timestamp, translation and unit quaternion.
func WriteTUM(w io.Writer, poses []types.Pose) error {
	for _, p := range poses {
		qx, qy, qz, qw := quaternion(p.R)
		_, err := fmt.Fprintf(w, "%.6f %.7f %.7f %.7f %.7f %.7f %.7f %.7f\n",
			p.Timestamp, p.T[0], p.T[1], p.T[2], qx, qy, qz, qw)
		if err != nil {
			return err
		}
	}
	return nil
}

// quaternion converts a rotation matrix to (x, y, z, w), picking the
// numerically stable branch by the largest diagonal term.
func quaternion(r [3][3]float64) (x, y, z, w float64) {
	trace := r[0][0] + r[1][1] + r[2][2]
	switch {
	case trace > 0:
		s := 2 * math.Sqrt(trace+1)
		w = s / 4
		x = (r[2][1] - r[1][2]) / s
		y = (r[0][2] - r[2][0]) / s
		z = (r[1][0] - r[0][1]) / s
	case r[0][0] > r[1][1] && r[0][0] > r[2][2]:
		s := 2 * math.Sqrt(1+r[0][0]-r[1][1]-r[2][2])
		w = (r[2][1] - r[1][2]) / s
		x = s / 4
		y = (r[0][1] + r[1][0]) / s
		z = (r[0][2] + r[2][0]) / s
	case r[1][1] > r[2][2]:
		s := 2 * math.Sqrt(1+r[1][1]-r[0][0]-r[2][2])
		w = (r[0][2] - r[2][0]) / s
		x = (r[0][1] + r[1][0]) / s
		y = s / 4
		z = (r[1][2] + r[2][1]) / s
	default:
		s := 2 * math.Sqrt(1+r[2][2]-r[0][0]-r[1][1])
		w = (r[1][0] - r[0][1]) / s
		x = (r[0][2] + r[2][0]) / s
		y = (r[1][2] + r[2][1]) / s
		z = s / 4
	}
	return x, y, z, w
}
