package recorder

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iris-gaze/facebridge/pkg/types"
)

func sampleFrame(n uint64) *types.LandmarkFrame {
	frame := &types.LandmarkFrame{
		FrameNum:  n,
		Timestamp: time.Now(),
	}
	frame.Landmarks[types.NoseTip] = types.Point{X: 0.1, Y: 0.2, Z: 0.3}
	return frame
}

func TestRecorderWritesJSONLines(t *testing.T) {
	dir := t.TempDir()
	r := NewRecorder(dir)

	require.NoError(t, r.Start())
	assert.True(t, r.IsRecording())

	status := r.GetStatus()
	assert.NotEmpty(t, status.SessionID)
	assert.NotEmpty(t, status.Filename)

	for i := uint64(1); i <= 3; i++ {
		assert.True(t, r.SendFrame(sampleFrame(i)))
	}

	require.NoError(t, r.Stop())
	assert.False(t, r.IsRecording())

	file, err := os.Open(filepath.Join(dir, status.Filename))
	require.NoError(t, err)
	defer file.Close()

	var frames []types.LandmarkFrame
	scan := bufio.NewScanner(file)
	scan.Buffer(make([]byte, 0, 1<<20), 1<<20)
	for scan.Scan() {
		var frame types.LandmarkFrame
		require.NoError(t, json.Unmarshal(scan.Bytes(), &frame))
		frames = append(frames, frame)
	}
	require.NoError(t, scan.Err())

	require.Len(t, frames, 3)
	assert.Equal(t, uint64(1), frames[0].FrameNum)
	assert.Equal(t, types.Point{X: 0.1, Y: 0.2, Z: 0.3}, frames[0].Landmarks[types.NoseTip])
}

func TestRecorderRejectsFramesWhenIdle(t *testing.T) {
	r := NewRecorder(t.TempDir())
	assert.False(t, r.SendFrame(sampleFrame(1)))
}

func TestRecorderDoubleStart(t *testing.T) {
	r := NewRecorder(t.TempDir())
	require.NoError(t, r.Start())
	defer r.Close()

	assert.Error(t, r.Start())
}

func TestRecorderStopWithoutStart(t *testing.T) {
	r := NewRecorder(t.TempDir())
	assert.Error(t, r.Stop())
	assert.NoError(t, r.Close())
}
