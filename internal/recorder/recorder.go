package recorder

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iris-gaze/facebridge/pkg/types"
)

// Recorder streams decoded landmark frames to a JSONL file, one frame per
// line. Frames are handed off on a buffered channel and dropped when the
// writer falls behind, so recording never backpressures the detect loop.
type Recorder struct {
	mu           sync.RWMutex
	file         *os.File
	enc          *json.Encoder
	filename     string
	basePath     string
	sessionID    string
	recording    bool
	frameCount   uint64
	droppedCount uint64
	startTime    time.Time
	frameChan    chan *types.LandmarkFrame
	wg           sync.WaitGroup
}

// NewRecorder creates a new recorder writing under basePath
func NewRecorder(basePath string) *Recorder {
	return &Recorder{
		basePath:  basePath,
		frameChan: make(chan *types.LandmarkFrame, 90), // ~3 seconds at 30fps
	}
}

// Start starts recording to a new timestamped file
func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.recording {
		return fmt.Errorf("already recording")
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("landmarks_%s.jsonl", timestamp)

	file, err := os.Create(filepath.Join(r.basePath, filename))
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	r.file = file
	r.enc = json.NewEncoder(file)
	r.filename = filename
	r.sessionID = uuid.NewString()
	r.recording = true
	r.frameCount = 0
	r.droppedCount = 0
	r.startTime = time.Now()

	r.wg.Add(1)
	go r.writeFrames()

	return nil
}

// Stop stops recording and flushes the file
func (r *Recorder) Stop() error {
	r.mu.Lock()

	if !r.recording {
		r.mu.Unlock()
		return fmt.Errorf("not recording")
	}

	r.recording = false
	r.mu.Unlock()

	// Wait for write goroutine to drain and finish
	r.wg.Wait()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file != nil {
		if err := r.file.Sync(); err != nil {
			return fmt.Errorf("failed to sync file: %w", err)
		}
		if err := r.file.Close(); err != nil {
			return fmt.Errorf("failed to close file: %w", err)
		}
		r.file = nil
		r.enc = nil
	}

	return nil
}

// SendFrame hands a frame to the recorder (non-blocking). Returns true if
// the frame was accepted.
func (r *Recorder) SendFrame(frame *types.LandmarkFrame) bool {
	r.mu.RLock()
	recording := r.recording
	r.mu.RUnlock()

	if !recording {
		return false
	}

	select {
	case r.frameChan <- frame:
		return true
	default:
		r.mu.Lock()
		r.droppedCount++
		r.mu.Unlock()
		return false
	}
}

// writeFrames drains the frame channel to the file
func (r *Recorder) writeFrames() {
	defer r.wg.Done()

	for {
		r.mu.RLock()
		recording := r.recording
		r.mu.RUnlock()

		if !recording {
			// Drain remaining frames
			for len(r.frameChan) > 0 {
				r.writeFrame(<-r.frameChan)
			}
			return
		}

		select {
		case frame := <-r.frameChan:
			r.writeFrame(frame)
		case <-time.After(100 * time.Millisecond):
			// Check recording state periodically
		}
	}
}

// writeFrame writes a single frame as one JSON line
func (r *Recorder) writeFrame(frame *types.LandmarkFrame) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.enc == nil {
		return
	}

	if err := r.enc.Encode(frame); err != nil {
		return
	}
	r.frameCount++
}

// IsRecording returns true if currently recording
func (r *Recorder) IsRecording() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.recording
}

// GetStatus returns the current recording status
func (r *Recorder) GetStatus() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var duration time.Duration
	if r.recording {
		duration = time.Since(r.startTime)
	}

	return Status{
		Recording:     r.recording,
		SessionID:     r.sessionID,
		Filename:      r.filename,
		FrameCount:    r.frameCount,
		DroppedFrames: r.droppedCount,
		Duration:      duration,
		StartTime:     r.startTime,
	}
}

// Close stops recording if active
func (r *Recorder) Close() error {
	if r.IsRecording() {
		return r.Stop()
	}
	return nil
}

// Status holds the current recording status
type Status struct {
	Recording     bool          `json:"recording"`
	SessionID     string        `json:"session_id"`
	Filename      string        `json:"filename"`
	FrameCount    uint64        `json:"frame_count"`
	DroppedFrames uint64        `json:"dropped_frames"`
	Duration      time.Duration `json:"duration_ms"`
	StartTime     time.Time     `json:"start_time"`
}
