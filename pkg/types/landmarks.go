package types

import "time"

// LandmarkCount is the size of a full MediaPipe face mesh.
const LandmarkCount = 468

// Indices of the anatomical landmarks the bridge materializes. The worker
// only reports this subset; everything else stays at the zero point.
const (
	NoseTip  = 4
	Forehead = 10

	LeftEyeOuterCorner = 33
	LeftEyeInnerCorner = 133
	LeftEyeUpperLid    = 159
	LeftEyeLowerLid    = 145

	RightEyeInnerCorner = 362
	RightEyeOuterCorner = 263
	RightEyeUpperLid    = 386
	RightEyeLowerLid    = 374
)

// TrackedIndices lists the landmark indices the decoder looks up.
var TrackedIndices = []int{
	NoseTip,
	Forehead,
	LeftEyeOuterCorner,
	LeftEyeInnerCorner,
	LeftEyeLowerLid,
	LeftEyeUpperLid,
	RightEyeOuterCorner,
	RightEyeInnerCorner,
	RightEyeLowerLid,
	RightEyeUpperLid,
}

// Point is a single 3D face landmark in normalized image coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// IsZero reports whether the point is the default (unreported) point.
func (p Point) IsZero() bool {
	return p.X == 0 && p.Y == 0 && p.Z == 0
}

// LandmarkSet is one frame's worth of face geometry. It is always fully
// populated: indices the worker did not report hold the zero point.
type LandmarkSet [LandmarkCount]Point

// LandmarkFrame pairs a decoded landmark set with capture metadata. This is
// the unit the recorder writes and the stats loop aggregates.
type LandmarkFrame struct {
	FrameNum  uint64      `json:"frame_num"`
	Timestamp time.Time   `json:"timestamp"`
	Landmarks LandmarkSet `json:"landmarks"`
}
