package ws

import (
	"encoding/json"
	"math"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/grafy/internal/calculus/grid"
	"github.com/GriffinCanCode/grafy/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/grafy/internal/presets"
	"github.com/GriffinCanCode/grafy/internal/providers/calculus/common"
	"github.com/GriffinCanCode/grafy/internal/shared/types"
)

func newTestHandler() (*Handler, *monitoring.Metrics) {
	metrics := monitoring.NewMetrics()
	h := NewHandler(common.NewCache(8), presets.NewLibrary(nil), common.Limits{MaxResolution: 20, DefaultStep: 1e-3}, metrics, nil)
	return h, metrics
}

func dial(t *testing.T, h *Handler) *websocket.Conn {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/stream", h.HandleConnection)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	welcome := read(t, conn)
	require.Equal(t, "system", welcome["type"])
	return conn
}

func read(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg map[string]interface{}
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestStream(t *testing.T) {
	h, metrics := newTestHandler()
	conn := dial(t, h)

	require.NoError(t, conn.WriteJSON(types.WSMessage{
		Type: "stream",
		Request: &types.StreamRequest{
			Expression: "sqrt(x) * t",
			Bounds:     &grid.Bounds{XMin: -1, XMax: 1, YMin: -1, YMax: 1},
			Segments:   3,
			T0:         0,
			T1:         1,
			Frames:     3,
		},
	}))

	start := read(t, conn)
	require.Equal(t, "stream_start", start["type"])
	id := start["stream_id"].(string)
	assert.Len(t, id, 36)
	assert.Equal(t, 3.0, start["frames"])

	for k := 0; k < 3; k++ {
		frame := read(t, conn)
		require.Equal(t, "frame", frame["type"])
		assert.Equal(t, id, frame["stream_id"])
		assert.Equal(t, float64(k), frame["index"])

		mesh := frame["mesh"].(map[string]interface{})
		assert.Equal(t, float64(k)/2, mesh["t"])
		z := mesh["z"].([]interface{})
		require.Len(t, z, 9)
		assert.Nil(t, z[0], "sqrt of negative x is undefined")
	}

	done := read(t, conn)
	assert.Equal(t, "complete", done["type"])
	assert.Equal(t, id, done["stream_id"])

	assert.Eventually(t, func() bool {
		return metrics.GetSnapshot().ActiveStreams == 0
	}, time.Second, 5*time.Millisecond)
}

func TestStreamPreset(t *testing.T) {
	h, _ := newTestHandler()
	conn := dial(t, h)

	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"type":    "stream",
		"request": map[string]interface{}{"preset": "ripple", "frames": 1, "segments": 500},
	}))

	start := read(t, conn)
	require.Equal(t, "stream_start", start["type"])
	assert.Equal(t, 20.0, start["segments"], "segments clamp to the resolution limit")

	frame := read(t, conn)
	mesh := frame["mesh"].(map[string]interface{})
	bounds := mesh["bounds"].(map[string]interface{})
	assert.Equal(t, -presets.DefaultRange, bounds["xMin"])
	assert.Equal(t, "complete", read(t, conn)["type"])
}

func TestStreamCancel(t *testing.T) {
	h, _ := newTestHandler()
	conn := dial(t, h)

	require.NoError(t, conn.WriteJSON(types.WSMessage{
		Type:    "stream",
		Request: &types.StreamRequest{Expression: "x + t", Frames: 100, FPS: 2},
	}))
	start := read(t, conn)
	id := start["stream_id"].(string)
	assert.Equal(t, "frame", read(t, conn)["type"])

	require.NoError(t, conn.WriteJSON(types.WSMessage{Type: "cancel", StreamID: id}))
	for {
		msg := read(t, conn)
		if msg["type"] == "frame" {
			continue
		}
		assert.Equal(t, "stream_cancelled", msg["type"])
		assert.Equal(t, id, msg["stream_id"])
		break
	}

	require.NoError(t, conn.WriteJSON(types.WSMessage{Type: "cancel", StreamID: id}))
	msg := read(t, conn)
	assert.Equal(t, "error", msg["type"])
	assert.Equal(t, "unknown stream", msg["message"])
}

func TestStreamErrors(t *testing.T) {
	h, _ := newTestHandler()
	conn := dial(t, h)

	cases := []struct {
		name string
		msg  interface{}
		want string
	}{
		{"bad expression", types.WSMessage{Type: "stream", Request: &types.StreamRequest{Expression: "x +"}}, "expression:"},
		{"missing request", types.WSMessage{Type: "stream"}, "missing request"},
		{"empty expression", types.WSMessage{Type: "stream", Request: &types.StreamRequest{}}, "expression is required"},
		{"unknown preset", types.WSMessage{Type: "stream", Request: &types.StreamRequest{Preset: "nope"}}, "not found"},
		{"unknown type", types.WSMessage{Type: "dance"}, "unknown message type"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.NoError(t, conn.WriteJSON(tc.msg))
			msg := read(t, conn)
			assert.Equal(t, "error", msg["type"])
			assert.Contains(t, msg["message"], tc.want)
		})
	}

	t.Run("invalid json", func(t *testing.T) {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{")))
		msg := read(t, conn)
		assert.Equal(t, "error", msg["type"])
	})

	t.Run("ping", func(t *testing.T) {
		require.NoError(t, conn.WriteJSON(types.WSMessage{Type: "ping"}))
		assert.Equal(t, "pong", read(t, conn)["type"])
	})
}

func TestStreamExtremeTimeRange(t *testing.T) {
	h, _ := newTestHandler()
	conn := dial(t, h)

	require.NoError(t, conn.WriteJSON(types.WSMessage{
		Type: "stream",
		Request: &types.StreamRequest{
			Expression: "x + t",
			Segments:   2,
			T0:         -math.MaxFloat64,
			T1:         math.MaxFloat64,
			Frames:     3,
		},
	}))

	require.Equal(t, "stream_start", read(t, conn)["type"])
	want := []interface{}{-math.MaxFloat64, 0.0, math.MaxFloat64}
	for k := 0; k < 3; k++ {
		frame := read(t, conn)
		require.Equal(t, "frame", frame["type"], "frame %d", k)
		mesh := frame["mesh"].(map[string]interface{})
		assert.Equal(t, want[k], mesh["t"])
	}
	assert.Equal(t, "complete", read(t, conn)["type"])
}

func TestSendRejectsNonFinite(t *testing.T) {
	h, _ := newTestHandler()
	s := &session{h: h, log: h.logger}

	err := s.send(map[string]interface{}{"type": "frame", "t": math.NaN()})
	assert.ErrorIs(t, err, errEncode)
}

func TestPrepareDefaults(t *testing.T) {
	h, _ := newTestHandler()

	st, err := h.prepare(&types.StreamRequest{Expression: "x", Frames: 10000, FPS: 1000})
	require.NoError(t, err)
	assert.Equal(t, grid.Square(presets.DefaultRange), st.bounds)
	assert.Equal(t, 20, st.segments)
	assert.Equal(t, 600, st.frames)
	assert.Equal(t, time.Second/MaxFPS, st.interval)

	st, err = h.prepare(&types.StreamRequest{Expression: "x"})
	require.NoError(t, err)
	assert.Equal(t, DefaultFrames, st.frames)
	assert.Zero(t, st.interval)

	raw, err := json.Marshal(st.bounds)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "xMin")
}
