package facemesh

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/iris-gaze/facebridge/pkg/types"
)

// ParseError reports a worker line that could not be decoded. It is
// returned per-call and does not poison the session; the caller can simply
// ask for the next frame.
type ParseError struct {
	Line string
	Err  error
}

func (e *ParseError) Error() string {
	return "facemesh: decode frame: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// wirePoint mirrors one landmark in the worker's JSON. Missing coordinates
// decode to 0 rather than failing the frame.
type wirePoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type wireFrame struct {
	Landmarks map[string]wirePoint `json:"landmarks"`
}

// decodeFrame decodes one worker stdout line. A null or absent landmarks
// field means no face was detected this frame. Only the tracked indices are
// materialized; keys the consumer does not care about are ignored.
func decodeFrame(line []byte) (*types.LandmarkSet, error) {
	var frame wireFrame
	if err := json.Unmarshal(line, &frame); err != nil {
		return nil, &ParseError{Line: strings.TrimSpace(string(line)), Err: err}
	}

	if frame.Landmarks == nil {
		return nil, nil
	}

	var set types.LandmarkSet
	for _, idx := range types.TrackedIndices {
		if p, ok := frame.Landmarks[strconv.Itoa(idx)]; ok {
			set[idx] = types.Point{X: p.X, Y: p.Y, Z: p.Z}
		}
	}
	return &set, nil
}
