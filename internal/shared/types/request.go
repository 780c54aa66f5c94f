package types

import "github.com/GriffinCanCode/grafy/internal/calculus/grid"

// ExecuteRequest represents a service execution request
type ExecuteRequest struct {
	ToolID string                 `json:"tool_id" binding:"required"`
	Params map[string]interface{} `json:"params"`
}

// DiscoverRequest asks the registry for services matching an intent
type DiscoverRequest struct {
	Intent string `json:"intent" binding:"required"`
	Limit  int    `json:"limit,omitempty"`
}

// StreamRequest asks for an animated surface: Frames height grids of
// Expression sampled from T0 to T1. Preset names a library surface to use
// when Expression is empty. FPS paces delivery; zero sends frames as soon as
// they are sampled.
type StreamRequest struct {
	Expression string       `json:"expression,omitempty"`
	Preset     string       `json:"preset,omitempty"`
	Bounds     *grid.Bounds `json:"bounds,omitempty"`
	Segments   int          `json:"segments,omitempty"`
	T0         float64      `json:"t0"`
	T1         float64      `json:"t1"`
	Frames     int          `json:"frames,omitempty"`
	FPS        int          `json:"fps,omitempty"`
}

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type     string         `json:"type"`
	Message  string         `json:"message,omitempty"`
	StreamID string         `json:"stream_id,omitempty"`
	Request  *StreamRequest `json:"request,omitempty"`
}
