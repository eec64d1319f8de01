package slam

import (
	"fmt"
	"image"

	"github.com/fxamacker/cbor/v2"

	"slam-feed-go/internal/frame"
	"slam-feed-go/internal/types"
)

// CBOR messages exchanged with the tracker process. Every request carries
// a "type" discriminator; replies echo it and may carry an "error" string.

type helloRequest struct {
	Type       string `cbor:"type"`
	Vocabulary string `cbor:"vocabulary"`
	Settings   string `cbor:"settings"`
	Mode       string `cbor:"mode"`
	Viewer     bool   `cbor:"viewer"`
}

type helloReply struct {
	Type       string  `cbor:"type"`
	ImageScale float64 `cbor:"image_scale"`
	Error      string  `cbor:"error,omitempty"`
}

type imagePayload struct {
	Width  int    `cbor:"width"`
	Height int    `cbor:"height"`
	Pixels []byte `cbor:"pixels"`
}

type trackRequest struct {
	Type      string       `cbor:"type"`
	Timestamp float64      `cbor:"timestamp"`
	Left      imagePayload `cbor:"left"`
	Right     imagePayload `cbor:"right"`
}

type trackReply struct {
	Type        string     `cbor:"type"`
	Timestamp   float64    `cbor:"timestamp"`
	Rotation    [9]float64 `cbor:"rotation"`
	Translation [3]float64 `cbor:"translation"`
	Error       string     `cbor:"error,omitempty"`
}

type shutdownRequest struct {
	Type string `cbor:"type"`
}

func encodeHello(cfg Config) ([]byte, error) {
	return cbor.Marshal(helloRequest{
		Type:       "hello",
		Vocabulary: cfg.VocabularyPath,
		Settings:   cfg.SettingsPath,
		Mode:       string(cfg.Mode),
		Viewer:     cfg.Viewer,
	})
}

func decodeHelloReply(msg []byte) (float64, error) {
	var reply helloReply
	if err := cbor.Unmarshal(msg, &reply); err != nil {
		return 0, fmt.Errorf("decode hello reply: %w", err)
	}
	if reply.Error != "" {
		return 0, fmt.Errorf("tracker rejected handshake: %s", reply.Error)
	}
	if reply.ImageScale <= 0 {
		return 1, nil
	}
	return reply.ImageScale, nil
}

func encodeTrack(left, right image.Image, timestamp float64) ([]byte, error) {
	return cbor.Marshal(trackRequest{
		Type:      "track",
		Timestamp: timestamp,
		Left:      toPayload(left),
		Right:     toPayload(right),
	})
}

func toPayload(img image.Image) imagePayload {
	gray := frame.Flatten(img)
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	pixels := make([]byte, 0, width*height)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		row := gray.Pix[(y-gray.Rect.Min.Y)*gray.Stride : (y-gray.Rect.Min.Y)*gray.Stride+width]
		pixels = append(pixels, row...)
	}
	return imagePayload{Width: width, Height: height, Pixels: pixels}
}

func decodeTrackReply(msg []byte) (types.Pose, error) {
	var reply trackReply
	if err := cbor.Unmarshal(msg, &reply); err != nil {
		return types.Pose{}, fmt.Errorf("decode track reply: %w", err)
	}
	if reply.Error != "" {
		return types.Pose{}, fmt.Errorf("tracker error: %s", reply.Error)
	}
	pose := types.Pose{Timestamp: reply.Timestamp, T: reply.Translation}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			pose.R[i][j] = reply.Rotation[i*3+j]
		}
	}
	return pose, nil
}

func encodeShutdown() ([]byte, error) {
	return cbor.Marshal(shutdownRequest{Type: "shutdown"})
}
