package facemesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iris-gaze/facebridge/pkg/types"
)

func TestDecodeNoFace(t *testing.T) {
	set, err := decodeFrame([]byte(`{"landmarks": null}` + "\n"))
	require.NoError(t, err)
	assert.Nil(t, set)
}

func TestDecodeMissingLandmarksField(t *testing.T) {
	// A degenerate message without the field is tolerated as "no face".
	set, err := decodeFrame([]byte(`{"status": "weird"}` + "\n"))
	require.NoError(t, err)
	assert.Nil(t, set)
}

func TestDecodeDetection(t *testing.T) {
	line := `{"landmarks": {"4": {"x": 0.1, "y": 0.2, "z": 0.3}, "374": {"x": 0.5, "y": 0.6, "z": 0.7}}}` + "\n"

	set, err := decodeFrame([]byte(line))
	require.NoError(t, err)
	require.NotNil(t, set)

	assert.Equal(t, types.Point{X: 0.1, Y: 0.2, Z: 0.3}, set[types.NoseTip])
	assert.Equal(t, types.Point{X: 0.5, Y: 0.6, Z: 0.7}, set[types.RightEyeLowerLid])

	// Every index the worker did not report stays at the default point.
	for i, p := range set {
		if i == types.NoseTip || i == types.RightEyeLowerLid {
			continue
		}
		assert.True(t, p.IsZero(), "index %d should be the default point", i)
	}
}

func TestDecodeMissingCoordinatesDefaultToZero(t *testing.T) {
	set, err := decodeFrame([]byte(`{"landmarks": {"4": {"x": 0.1}}}`))
	require.NoError(t, err)
	require.NotNil(t, set)
	assert.Equal(t, types.Point{X: 0.1}, set[types.NoseTip])
}

func TestDecodeIgnoresUntrackedIndices(t *testing.T) {
	set, err := decodeFrame([]byte(`{"landmarks": {"99": {"x": 0.9, "y": 0.9, "z": 0.9}}}`))
	require.NoError(t, err)
	require.NotNil(t, set)
	assert.True(t, set[99].IsZero())
}

func TestDecodeMalformedLine(t *testing.T) {
	set, err := decodeFrame([]byte("not json\n"))
	require.Error(t, err)
	assert.Nil(t, set)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "not json", parseErr.Line)
}

func TestDecodeWrongShape(t *testing.T) {
	// The field is present but not an object of points.
	_, err := decodeFrame([]byte(`{"landmarks": "oops"}`))
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}
