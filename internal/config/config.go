package config

import "time"

type AppConfig struct {
	VocabularyPath  string
	SettingsPath    string
	LeftDir         string
	RightDir        string
	TimesPath       string
	TrajectoryFile  string
	Endpoint        string
	Debug           bool
	DebugTrackDelay time.Duration
	Viewer          bool
	ViewerPort      int
	RawLogEnabled   bool
	RawLogDir       string
	ScaleOverride   float64
	LogEvery        int
}
