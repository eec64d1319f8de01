package slam

import (
	"context"
	"image"
	"math"
	"sync"
	"time"

	"slam-feed-go/internal/trajectory"
	"slam-feed-go/internal/types"
)

// Sim is an in-process stand-in for the external tracker. It integrates a
// smooth circular trajectory so the rest of the driver can run without a
// tracker process, and burns a configurable amount of time per track call
// to exercise the pacing logic.
type Sim struct {
	scale float64
	delay time.Duration

	mu     sync.Mutex
	frames int
	yaw    float64
	pos    [3]float64
	traj   *trajectory.Accumulator
}

// NewSim builds a simulated tracker reporting the given image scale.
func NewSim(scale float64, delay time.Duration) *Sim {
	if scale <= 0 {
		scale = 1
	}
	return &Sim{scale: scale, delay: delay, traj: trajectory.NewAccumulator()}
}

func (s *Sim) ImageScale() float64 {
	return s.scale
}

func (s *Sim) TrackStereo(ctx context.Context, left, right image.Image, timestamp float64) (types.Pose, error) {
	if err := ctx.Err(); err != nil {
		return types.Pose{}, err
	}
	if s.delay > 0 {
		time.Sleep(s.delay)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Advance along a gentle arc: 0.5 deg of yaw and 2 cm forward per frame.
	s.yaw += 0.5 * math.Pi / 180
	s.pos[0] += 0.02 * math.Sin(s.yaw)
	s.pos[2] += 0.02 * math.Cos(s.yaw)
	s.frames++

	cy, sy := math.Cos(s.yaw), math.Sin(s.yaw)
	pose := types.Pose{
		Timestamp: timestamp,
		R: [3][3]float64{
			{cy, 0, sy},
			{0, 1, 0},
			{-sy, 0, cy},
		},
		T: s.pos,
	}
	s.traj.Add(pose)
	return pose, nil
}

func (s *Sim) Shutdown() {}

func (s *Sim) SaveTrajectory(path string, format trajectory.Format) error {
	return s.traj.Write(path, format)
}

// Frames reports how many stereo pairs have been submitted.
func (s *Sim) Frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}
