package types

type ViewerPose struct {
	Type         string     `json:"type"`
	Index        int        `json:"index"`
	Total        int        `json:"total"`
	Timestamp    float64    `json:"timestamp"`
	Translation  [3]float64 `json:"translation"`
	TrackSeconds float64    `json:"track_seconds"`
}
