package main

import (
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/iris-gaze/facebridge/internal/diag"
	"github.com/iris-gaze/facebridge/internal/facemesh"
	"github.com/iris-gaze/facebridge/internal/logger"
	"github.com/iris-gaze/facebridge/internal/metrics"
	"github.com/iris-gaze/facebridge/internal/recorder"
	"github.com/iris-gaze/facebridge/pkg/types"
)

var (
	// Command-line flags
	cameraIndex = flag.Int("index", 0, "Camera/session index passed to the worker")
	scripts     = flag.String("scripts", "scripts/face_mesh_server.py", "Worker script candidates (comma-separated, first existing wins)")
	pythons     = flag.String("pythons", "python3", "Interpreter candidates (comma-separated, first that probes wins)")
	envFile     = flag.String("env", "", "Optional .env file with FACEBRIDGE_* overrides")
	metricsAddr = flag.String("metrics", ":9090", "Metrics server address")
	diagPath    = flag.String("diag-log", "", "Diagnostics log file (empty to disable)")
	record      = flag.Bool("record", false, "Record decoded landmark frames")
	recordPath  = flag.String("record-path", "./recordings", "Recording output path")
	reportEvery = flag.Duration("report", 5*time.Second, "Stats report interval")
	logLevel    = flag.String("log-level", "info", "Log level (debug, info, warn, error, silent)")
	logColor    = flag.Bool("log-color", true, "Enable colored log output")
)

// Tracker drives the worker session and fans decoded frames out to the
// recorder and metrics.
type Tracker struct {
	wg       sync.WaitGroup
	session  *facemesh.Session
	metrics  *metrics.Metrics
	recorder *recorder.Recorder

	frameNum uint64
}

func main() {
	flag.Parse()

	level, err := logger.ParseLevel(*logLevel)
	if err != nil {
		log.Fatalf("Invalid log level: %v", err)
	}
	logger.Init(level, os.Stderr, *logColor)

	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil {
			log.Fatalf("Failed to load env file: %v", err)
		}
	}

	cfg := facemesh.DefaultConfig()
	cfg.CameraIndex = *cameraIndex
	cfg.ScriptCandidates = candidateList(*scripts, "FACEBRIDGE_SCRIPTS")
	cfg.InterpreterCandidates = candidateList(*pythons, "FACEBRIDGE_INTERPRETERS")

	var sink diag.Sink = diag.Nop{}
	if *diagPath != "" {
		fileSink := diag.NewFileSink(*diagPath)
		defer fileSink.Close()
		sink = fileSink
	}
	cfg.Diag = sink

	logger.Info("Main", "Face bridge starting (camera index %d)", cfg.CameraIndex)

	m := metrics.New()
	go func() {
		logger.Info("Main", "Starting metrics server on %s", *metricsAddr)
		if err := m.StartServer(*metricsAddr); err != nil {
			logger.Error("Main", "Metrics server error: %v", err)
		}
	}()

	rec := recorder.NewRecorder(*recordPath)
	if *record {
		if err := os.MkdirAll(*recordPath, 0755); err != nil {
			log.Fatalf("Failed to create recordings directory: %v", err)
		}
		if err := rec.Start(); err != nil {
			log.Fatalf("Failed to start recording: %v", err)
		}
		m.RecordingActive.Store(1)
		logger.Info("Main", "Recording landmarks to %s", rec.GetStatus().Filename)
	}

	session, err := facemesh.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to open worker session: %v", err)
	}

	t := &Tracker{
		session:  session,
		metrics:  m,
		recorder: rec,
	}

	done := make(chan struct{})
	t.wg.Add(1)
	go func() {
		defer close(done)
		t.run()
	}()

	stopReport := make(chan struct{})
	t.wg.Add(1)
	go t.report(stopReport)

	// Wait for shutdown signal or worker death
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		log.Println("Shutting down...")
	case <-done:
		log.Println("Worker stream ended, shutting down...")
	}

	// Killing the worker unblocks the detect loop's pending read.
	session.Close()
	close(stopReport)
	t.wg.Wait()

	if rec.IsRecording() {
		status := rec.GetStatus()
		if err := rec.Stop(); err != nil {
			logger.Error("Main", "Failed to stop recording: %v", err)
		}
		logger.Info("Main", "Recorded %d frames to %s", status.FrameCount, status.Filename)
	}
	m.RecordingActive.Store(0)

	log.Println("Face bridge stopped")
}

// run is the single caller of Detect; the session supports no concurrent use.
func (t *Tracker) run() {
	defer t.wg.Done()

	for {
		start := time.Now()
		set, err := t.session.Detect()
		t.metrics.UpdateDetectLatency(time.Since(start))

		if err != nil {
			var parseErr *facemesh.ParseError
			if errors.As(err, &parseErr) {
				// Protocol-level hiccup; the next frame may be fine.
				t.metrics.FramesRead.Add(1)
				t.metrics.ParseErrors.Add(1)
				logger.Warn("Tracker", "Dropped undecodable frame: %v", err)
				continue
			}

			t.metrics.ReadErrors.Add(1)
			if errors.Is(err, facemesh.ErrWorkerExited) {
				logger.Info("Tracker", "Worker exited")
			} else {
				logger.Error("Tracker", "Detect failed: %v", err)
			}
			return
		}

		t.frameNum++
		t.metrics.FramesRead.Add(1)

		if set == nil {
			t.metrics.NoFaceFrames.Add(1)
			continue
		}
		t.metrics.FacesDetected.Add(1)

		frame := &types.LandmarkFrame{
			FrameNum:  t.frameNum,
			Timestamp: time.Now(),
			Landmarks: *set,
		}
		if t.recorder.SendFrame(frame) {
			t.metrics.RecordedFrames.Add(1)
		}
	}
}

// report logs a rolling summary of frame throughput and detect latency.
func (t *Tracker) report(stop <-chan struct{}) {
	defer t.wg.Done()

	ticker := time.NewTicker(*reportEvery)
	defer ticker.Stop()

	var lastFrames, lastFaces uint64

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			frames := t.metrics.FramesRead.Load()
			faces := t.metrics.FacesDetected.Load()

			deltaFrames := frames - lastFrames
			deltaFaces := faces - lastFaces
			lastFrames, lastFaces = frames, faces

			if deltaFrames == 0 {
				logger.Debug("Tracker", "No frames in the last %s", *reportEvery)
				continue
			}

			fps := float64(deltaFrames) / reportEvery.Seconds()
			faceRate := 100 * float64(deltaFaces) / float64(deltaFrames)
			logger.Info("Tracker", "%.1f fps, %.0f%% frames with a face, last detect %dms",
				fps, faceRate, t.metrics.DetectLatencyMs.Load())
		}
	}
}

// candidateList splits a comma-separated flag value, letting the named
// environment variable override it.
func candidateList(flagValue, envKey string) []string {
	value := flagValue
	if env := os.Getenv(envKey); env != "" {
		value = env
	}

	var out []string
	for _, p := range strings.Split(value, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
