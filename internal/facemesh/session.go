// Package facemesh supervises the external face mesh worker process and
// decodes its per-frame landmark stream.
//
// The worker is a black box that prints one JSON line per video frame; the
// session owns the child process and its stdout reader. Detect blocks until
// a full line arrives, so it must be driven by one caller at a time; Close
// may be called from another goroutine to unblock a pending read.
package facemesh

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/iris-gaze/facebridge/internal/diag"
	"github.com/iris-gaze/facebridge/internal/logger"
	"github.com/iris-gaze/facebridge/internal/resolver"
	"github.com/iris-gaze/facebridge/pkg/types"
)

var (
	// ErrSpawn classifies failures to start the worker or complete the
	// readiness handshake. The caller may retry Open with a fresh session.
	ErrSpawn = errors.New("facemesh: worker spawn failed")

	// ErrNotReady is returned by Detect before a successful handshake or
	// after the session has been poisoned or closed. No I/O is attempted.
	ErrNotReady = errors.New("facemesh: session not initialized")

	// ErrWorkerExited is returned when the worker's output stream ends.
	// The session cannot recover; discard it and Open a new one.
	ErrWorkerExited = errors.New("facemesh: worker output stream ended")
)

// Session owns one worker process and its output stream. The readiness
// flag is atomic because Close may race a Detect blocked in a read.
type Session struct {
	cmd    *exec.Cmd
	reader *bufio.Reader
	ready  atomic.Bool
	diag   diag.Sink

	killOnce sync.Once
}

// Open resolves the worker's interpreter and script, spawns it with the
// configured camera index, and performs the readiness handshake. Stderr is
// inherited so worker-side crashes stay visible without being part of the
// protocol.
func Open(cfg Config) (*Session, error) {
	sink := cfg.Diag
	if sink == nil {
		sink = diag.Nop{}
	}
	marker := cfg.ReadyMarker
	if marker == "" {
		marker = DefaultConfig().ReadyMarker
	}

	diag.Recordf(sink, "starting face mesh worker (camera index %d)", cfg.CameraIndex)

	res := resolver.Resolver{
		ScriptCandidates:      cfg.ScriptCandidates,
		InterpreterCandidates: cfg.InterpreterCandidates,
	}
	resolved, err := res.Resolve()
	if err != nil {
		return nil, err
	}

	diag.Recordf(sink, "using interpreter: %s", resolved.Interpreter)
	diag.Recordf(sink, "using script: %s", resolved.Script)

	cmd := exec.Command(resolved.Interpreter, resolved.Script,
		"--index", strconv.Itoa(cfg.CameraIndex))
	cmd.Stderr = os.Stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: obtain stdout: %v", ErrSpawn, err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: start: %v", ErrSpawn, err)
	}

	s := &Session{
		cmd:    cmd,
		reader: bufio.NewReader(stdout),
		diag:   sink,
	}

	line, err := s.reader.ReadString('\n')
	if err != nil && line == "" {
		s.Close()
		return nil, fmt.Errorf("%w: handshake read: %v", ErrSpawn, err)
	}

	if strings.Contains(line, marker) {
		diag.Recordf(sink, "face mesh worker ready")
	} else {
		// Lenient handshake: an unrecognized greeting is logged, not fatal.
		logger.Warn("FaceMesh", "Unexpected first line from worker: %s", strings.TrimSpace(line))
		diag.Recordf(sink, "unexpected first line: %s", strings.TrimSpace(line))
	}

	s.ready.Store(true)
	return s, nil
}

// Detect blocks until the worker emits the next frame and returns its
// decoded landmark set. A nil set with a nil error means the worker saw no
// face this frame. A *ParseError leaves the session usable; any read
// failure poisons it permanently.
func (s *Session) Detect() (*types.LandmarkSet, error) {
	if !s.ready.Load() {
		return nil, ErrNotReady
	}

	line, err := s.reader.ReadBytes('\n')
	if err != nil && len(line) == 0 {
		s.ready.Store(false)
		if errors.Is(err, io.EOF) {
			return nil, ErrWorkerExited
		}
		return nil, fmt.Errorf("read worker stream: %w", err)
	}

	return decodeFrame(line)
}

// Ready reports whether Detect may attempt I/O.
func (s *Session) Ready() bool {
	return s.ready.Load()
}

// Close terminates the worker. Termination is best-effort and idempotent;
// the process is reaped asynchronously.
func (s *Session) Close() error {
	s.killOnce.Do(func() {
		s.ready.Store(false)
		diag.Recordf(s.diag, "stopping face mesh worker")
		if s.cmd.Process != nil {
			_ = s.cmd.Process.Kill()
			// Reap asynchronously. Wait may close the stdout pipe under a
			// still-blocked Detect read; that read then fails and poisons
			// the session, the same outcome as observing end-of-stream.
			go func() { _ = s.cmd.Wait() }()
		}
	})
	return nil
}
