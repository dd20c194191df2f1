package facemesh

import "github.com/iris-gaze/facebridge/internal/diag"

// Config defines how a worker session is spawned.
type Config struct {
	// CameraIndex is passed to the worker as --index.
	CameraIndex int

	// ScriptCandidates and InterpreterCandidates are tried in order; the
	// first usable entry of each wins.
	ScriptCandidates      []string
	InterpreterCandidates []string

	// ReadyMarker is the substring expected in the worker's first output
	// line. A first line without it is logged but still accepted.
	ReadyMarker string

	// Diag receives lifecycle and anomaly events. Nil means discard.
	Diag diag.Sink
}

// DefaultConfig returns a config that finds the worker relative to the
// working directory and uses whatever python3 is on PATH.
func DefaultConfig() Config {
	return Config{
		CameraIndex:           0,
		ScriptCandidates:      []string{"scripts/face_mesh_server.py"},
		InterpreterCandidates: []string{"python3"},
		ReadyMarker:           "ready",
	}
}
