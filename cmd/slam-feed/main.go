package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"slam-feed-go/internal/config"
	"slam-feed-go/internal/dataset"
	"slam-feed-go/internal/output"
	"slam-feed-go/internal/playback"
	"slam-feed-go/internal/server"
	"slam-feed-go/internal/settings"
	"slam-feed-go/internal/slam"
	"slam-feed-go/internal/stats"
	"slam-feed-go/internal/trajectory"
)

const defaultTrajectoryFile = "CameraTrajectory.txt"

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: slam-feed [flags] vocabulary_path settings_path left_dir right_dir timestamps_file [trajectory_file]")
	flag.PrintDefaults()
}

func main() {
	var (
		endpoint       = flag.String("endpoint", "tcp://localhost:5555", "ZMQ endpoint of the external tracker")
		debug          = flag.Bool("debug", false, "Run with the in-process simulated tracker instead of a remote one")
		debugTrackRate = flag.Duration("debug-track-delay", 2*time.Millisecond, "Simulated per-frame track latency in debug mode")
		viewer         = flag.Bool("viewer", false, "Serve the live trajectory viewer")
		viewerPort     = flag.Int("viewer-port", 8888, "HTTP port for the viewer")
		rawLogEnabled  = flag.Bool("raw-log", false, "Write track results to a binary raw log")
		rawLogDir      = flag.String("raw-log-dir", "rawlog", "Directory for raw log files")
		trajFormatFlag = flag.String("traj-format", string(trajectory.FormatKITTI), "Trajectory file format (kitti or tum)")
		scaleOverride  = flag.Float64("scale", 0, "Override the tracker-reported image scale (0 = use the tracker's)")
		logEvery       = flag.Int("log-every", 50, "Log progress every Nth frame (0 disables)")
	)
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) < 5 || len(args) > 6 {
		usage()
		os.Exit(1)
	}

	cfg := config.AppConfig{
		VocabularyPath:  args[0],
		SettingsPath:    args[1],
		LeftDir:         args[2],
		RightDir:        args[3],
		TimesPath:       args[4],
		TrajectoryFile:  defaultTrajectoryFile,
		Endpoint:        *endpoint,
		Debug:           *debug,
		DebugTrackDelay: *debugTrackRate,
		Viewer:          *viewer,
		ViewerPort:      *viewerPort,
		RawLogEnabled:   *rawLogEnabled,
		RawLogDir:       *rawLogDir,
		ScaleOverride:   *scaleOverride,
		LogEvery:        *logEvery,
	}
	if len(args) == 6 {
		cfg.TrajectoryFile = args[5]
	}
	trajFormat, err := trajectory.ParseFormat(*trajFormatFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := settings.CheckVocabulary(cfg.VocabularyPath); err != nil {
		log.Fatalf("%v", err)
	}
	sts, err := settings.Load(cfg.SettingsPath)
	if err != nil {
		log.Fatalf("%v", err)
	}

	entries, err := dataset.Load(cfg.LeftDir, cfg.RightDir, cfg.TimesPath)
	if err != nil {
		log.Printf("timestamps index: %v", err)
	}
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "ERROR: No images found in provided paths.")
		os.Exit(1)
	}
	if err := dataset.Verify(entries); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scfg := slam.Config{
		VocabularyPath: cfg.VocabularyPath,
		SettingsPath:   cfg.SettingsPath,
		Mode:           slam.ModeStereo,
		Viewer:         cfg.Viewer,
	}
	var sys slam.System
	if cfg.Debug {
		sys = slam.NewSim(sts.ImageScale, cfg.DebugTrackDelay)
	} else {
		remote, err := slam.Dial(cfg.Endpoint, scfg)
		if err != nil {
			log.Fatalf("connect tracker: %v", err)
		}
		sys = remote
	}

	scale := sys.ImageScale()
	if cfg.ScaleOverride > 0 {
		scale = cfg.ScaleOverride
	}

	var rawLog *output.RawLogWriter
	if cfg.RawLogEnabled {
		rawLog, err = output.NewRawLogWriter(cfg.RawLogDir, "track_results")
		if err != nil {
			log.Fatalf("start raw log: %v", err)
		}
		defer func() {
			if err := rawLog.Close(); err != nil {
				log.Printf("raw log close failed: %v", err)
			}
		}()
	}

	var framesDone atomic.Int64
	var uiMessages chan any
	if cfg.Viewer {
		uiMessages = make(chan any, 16)
		statusFn := func() map[string]any {
			return map[string]any{
				"frames_total":     len(entries),
				"frames_processed": framesDone.Load(),
				"endpoint":         cfg.Endpoint,
				"debug":            cfg.Debug,
			}
		}
		configFn := func() map[string]any {
			return map[string]any{
				"type":            "config",
				"frames_total":    len(entries),
				"image_scale":     scale,
				"trajectory_file": cfg.TrajectoryFile,
			}
		}
		go func() {
			if err := server.Run(ctx, cfg.ViewerPort, uiMessages, statusFn, configFn); err != nil {
				log.Printf("viewer stopped: %v", err)
			}
		}()
		log.Printf("viewer at http://localhost:%d", cfg.ViewerPort)
	}

	fmt.Println()
	fmt.Println("-------")
	fmt.Println("Start processing sequence ...")
	fmt.Printf("Images in the sequence: %d\n\n", len(entries))

	var counting chan any
	var viewerCh chan<- any
	if uiMessages != nil {
		counting = make(chan any, 16)
		viewerCh = counting
		go func() {
			for msg := range counting {
				framesDone.Add(1)
				select {
				case uiMessages <- msg:
				default:
				}
			}
		}()
	}

	durations, err := playback.Run(ctx, sys, entries, playback.Options{
		Scale:    scale,
		RawLog:   rawLog,
		Viewer:   viewerCh,
		LogEvery: cfg.LogEvery,
	})
	if counting != nil {
		close(counting)
	}
	if err != nil {
		sys.Shutdown()
		log.Fatalf("playback failed: %v", err)
	}

	sys.Shutdown()

	summary, err := stats.Summarize(durations)
	if err != nil {
		log.Fatalf("%v", err)
	}
	fmt.Println("-------")
	fmt.Println()
	fmt.Printf("median tracking time: %.6f\n", summary.Median)
	fmt.Printf("mean tracking time: %.6f\n", summary.Mean)

	if err := sys.SaveTrajectory(cfg.TrajectoryFile, trajFormat); err != nil {
		log.Fatalf("save trajectory: %v", err)
	}
	log.Printf("trajectory saved to %s", cfg.TrajectoryFile)
}
