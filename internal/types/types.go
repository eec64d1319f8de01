package types

// IndexEntry is one record of the timestamps index: the recorded capture
// time in seconds and the resolved on-disk paths of the stereo pair.
type IndexEntry struct {
	Timestamp float64
	LeftPath  string
	RightPath string
}

// Pose is an estimated camera pose in the world frame, stamped with the
// timestamp of the frame that produced it.
type Pose struct {
	Timestamp float64
	R         [3][3]float64
	T         [3]float64
}

// IdentityPose returns a pose at the origin with no rotation.
func IdentityPose(timestamp float64) Pose {
	return Pose{
		Timestamp: timestamp,
		R: [3][3]float64{
			{1, 0, 0},
			{0, 1, 0},
			{0, 0, 1},
		},
	}
}

// TrackResult couples the pose estimate for one stereo pair with the
// wall-clock cost of the track call that produced it.
type TrackResult struct {
	Index        int        `cbor:"index" json:"index"`
	Timestamp    float64    `cbor:"timestamp" json:"timestamp"`
	Translation  [3]float64 `cbor:"translation" json:"translation"`
	TrackSeconds float64    `cbor:"track_seconds" json:"track_seconds"`
}
