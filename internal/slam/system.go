package slam

import (
	"context"
	"image"

	"slam-feed-go/internal/trajectory"
	"slam-feed-go/internal/types"
)

// Mode selects the sensor configuration of the external tracker.
type Mode string

const ModeStereo Mode = "stereo"

// Config carries the constructor arguments of the external system.
type Config struct {
	VocabularyPath string
	SettingsPath   string
	Mode           Mode
	Viewer         bool
}

// System is the boundary to the external SLAM library. The driver submits
// synchronized stereo pairs, asks once for the configured image scale, and
// at the end requests shutdown and trajectory persistence. Everything else
// (features, matching, mapping, loop closing) lives behind this interface.
type System interface {
	ImageScale() float64
	TrackStereo(ctx context.Context, left, right image.Image, timestamp float64) (types.Pose, error)
	Shutdown()
	SaveTrajectory(path string, format trajectory.Format) error
}
