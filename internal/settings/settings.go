package settings

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Settings is the subset of an ORB-SLAM style settings file the driver
// reads. The file uses flat dotted keys ("Camera.imageScale") and may open
// with an OpenCV "%YAML:1.0" directive that standard parsers reject.
type Settings struct {
	CameraType string  `yaml:"Camera.type"`
	Width      int     `yaml:"Camera.width"`
	Height     int     `yaml:"Camera.height"`
	FPS        float64 `yaml:"Camera.fps"`
	ImageScale float64 `yaml:"Camera.imageScale"`
}

func Load(path string) (*Settings, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	// Strip directive lines ("%YAML:1.0") before unmarshalling.
	lines := bytes.Split(raw, []byte("\n"))
	filtered := make([][]byte, 0, len(lines))
	for _, line := range lines {
		if bytes.HasPrefix(bytes.TrimSpace(line), []byte("%")) {
			continue
		}
		filtered = append(filtered, line)
	}

	s := &Settings{ImageScale: 1}
	if err := yaml.Unmarshal(bytes.Join(filtered, []byte("\n")), s); err != nil {
		return nil, fmt.Errorf("parse settings %s: %w", path, err)
	}
	if s.ImageScale <= 0 {
		s.ImageScale = 1
	}
	return s, nil
}

// CheckVocabulary fails fast when the vocabulary file is absent, before
// any tracker is constructed.
func CheckVocabulary(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("vocabulary: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("vocabulary %s is a directory, want a file", path)
	}
	return nil
}
