package ws

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/grafy/internal/calculus/expr"
	"github.com/GriffinCanCode/grafy/internal/calculus/grid"
	"github.com/GriffinCanCode/grafy/internal/calculus/surface"
	"github.com/GriffinCanCode/grafy/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/grafy/internal/presets"
	"github.com/GriffinCanCode/grafy/internal/providers/calculus/common"
	"github.com/GriffinCanCode/grafy/internal/providers/calculus/grids"
	"github.com/GriffinCanCode/grafy/internal/shared/types"
	"github.com/GriffinCanCode/grafy/internal/shared/utils"
)

// Stream defaults and caps
const (
	DefaultSegments = 60
	DefaultFrames   = 60
	MaxFPS          = 60
	// MaxStreams is the number of concurrent streams per connection.
	MaxStreams = 4

	writeWait = 10 * time.Second
)

// errEncode marks an outgoing message that could not be serialized
var errEncode = errors.New("encode message")

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 64 * 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler streams animated surface frames over WebSocket
type Handler struct {
	cache   *common.Cache
	library *presets.Library
	limits  common.Limits
	metrics *monitoring.Metrics
	logger  *zap.Logger
}

// NewHandler creates a new WebSocket handler. metrics may be nil.
func NewHandler(cache *common.Cache, library *presets.Library, limits common.Limits, metrics *monitoring.Metrics, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if limits.MaxResolution <= 0 {
		limits = common.DefaultLimits()
	}
	return &Handler{
		cache:   cache,
		library: library,
		limits:  limits,
		metrics: metrics,
		logger:  logger,
	}
}

// session is one WebSocket connection and its running streams
type session struct {
	h    *Handler
	conn *websocket.Conn
	log  *zap.Logger

	writeMu sync.Mutex

	mu      sync.Mutex
	streams map[string]context.CancelFunc
	wg      sync.WaitGroup
}

// HandleConnection handles WebSocket upgrade and messages
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &session{
		h:       h,
		conn:    conn,
		log:     h.logger.With(zap.String("remote", c.ClientIP())),
		streams: make(map[string]context.CancelFunc),
	}
	defer func() {
		cancel()
		conn.Close()
		s.wg.Wait()
		s.log.Debug("websocket closed")
	}()

	s.log.Debug("websocket connected")
	s.send(map[string]interface{}{
		"type":    "system",
		"message": "Connected to Grafy surface stream",
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn("websocket read error", zap.Error(err))
			}
			return
		}

		var msg types.WSMessage
		if err := sonic.Unmarshal(data, &msg); err != nil {
			s.sendError("", "invalid message: "+err.Error())
			continue
		}
		h.record("in", msg.Type)

		switch msg.Type {
		case "stream":
			s.start(ctx, msg.Request)
		case "cancel":
			if !s.cancel(msg.StreamID) {
				s.sendError(msg.StreamID, "unknown stream")
			}
		case "ping":
			s.send(map[string]interface{}{"type": "pong"})
		default:
			s.sendError("", "unknown message type")
		}
	}
}

// stream is a validated frame request
type stream struct {
	id       string
	f        expr.Func
	bounds   grid.Bounds
	segments int
	t0, t1   float64
	frames   int
	interval time.Duration
}

// prepare validates req and compiles its expression
func (h *Handler) prepare(req *types.StreamRequest) (*stream, error) {
	if req == nil {
		return nil, errors.New("missing request")
	}

	src := req.Expression
	span := presets.DefaultRange
	if src == "" && req.Preset != "" {
		p, err := h.library.Get(req.Preset)
		if err != nil {
			return nil, err
		}
		src, span = p.Expression, p.Range
	}
	if err := utils.ValidateExpression(src, "expression"); err != nil {
		return nil, err
	}

	e, err := h.cache.Parse(src, expr.XYT)
	if err != nil {
		return nil, fmt.Errorf("expression: %w", err)
	}

	b := grid.Square(span)
	if req.Bounds != nil {
		b = req.Bounds.Normalize()
	}

	segments := req.Segments
	if segments <= 0 {
		segments = DefaultSegments
	}
	segments = min(max(segments, surface.MinSegments), h.limits.MaxResolution)

	frames := req.Frames
	if frames <= 0 {
		frames = DefaultFrames
	}
	frames = min(frames, surface.MaxFrames)

	var interval time.Duration
	if req.FPS > 0 {
		interval = time.Second / time.Duration(min(req.FPS, MaxFPS))
	}

	return &stream{
		id:       uuid.NewString(),
		f:        e.Func(),
		bounds:   b,
		segments: segments,
		t0:       req.T0,
		t1:       req.T1,
		frames:   frames,
		interval: interval,
	}, nil
}

func (s *session) start(parent context.Context, req *types.StreamRequest) {
	st, err := s.h.prepare(req)
	if err != nil {
		s.sendError("", err.Error())
		return
	}

	s.mu.Lock()
	if len(s.streams) >= MaxStreams {
		s.mu.Unlock()
		s.sendError("", fmt.Sprintf("too many concurrent streams (maximum %d)", MaxStreams))
		return
	}
	ctx, cancel := context.WithCancel(parent)
	s.streams[st.id] = cancel
	s.wg.Add(1)
	s.mu.Unlock()

	s.send(map[string]interface{}{
		"type":      "stream_start",
		"stream_id": st.id,
		"frames":    st.frames,
		"segments":  st.segments,
		"bounds":    st.bounds,
	})

	go s.run(ctx, st)
}

func (s *session) run(ctx context.Context, st *stream) {
	defer s.wg.Done()
	defer s.finish(st.id)

	if s.h.metrics != nil {
		s.h.metrics.IncStreams()
		defer s.h.metrics.DecStreams()
	}

	var ticker *time.Ticker
	if st.interval > 0 {
		ticker = time.NewTicker(st.interval)
		defer ticker.Stop()
	}

	for k := 0; k < st.frames; k++ {
		if ctx.Err() != nil {
			s.send(map[string]interface{}{"type": "stream_cancelled", "stream_id": st.id, "sent": k})
			return
		}

		t := surface.FrameTime(st.t0, st.t1, k, st.frames)
		m := surface.Sample(st.f, st.bounds, st.segments, st.segments, t)
		if err := s.send(map[string]interface{}{
			"type":      "frame",
			"stream_id": st.id,
			"index":     k,
			"count":     st.frames,
			"mesh":      grids.MeshData(m),
		}); err != nil {
			if errors.Is(err, errEncode) {
				s.log.Warn("frame encode failed", zap.String("stream_id", st.id), zap.Int("index", k), zap.Error(err))
				s.sendError(st.id, fmt.Sprintf("frame %d could not be encoded", k))
				return
			}
			s.log.Debug("stream write failed", zap.String("stream_id", st.id), zap.Error(err))
			return
		}
		if s.h.metrics != nil {
			s.h.metrics.RecordFrame()
		}

		if ticker != nil && k < st.frames-1 {
			select {
			case <-ctx.Done():
			case <-ticker.C:
			}
		}
	}

	s.send(map[string]interface{}{"type": "complete", "stream_id": st.id, "sent": st.frames})
}

func (s *session) cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	cancel, ok := s.streams[id]
	if ok {
		cancel()
	}
	return ok
}

func (s *session) finish(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cancel, ok := s.streams[id]; ok {
		cancel()
		delete(s.streams, id)
	}
}

func (s *session) send(data map[string]interface{}) error {
	payload, err := sonic.Marshal(data)
	if err != nil {
		return fmt.Errorf("%w: %v", errEncode, err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return err
	}
	if t, ok := data["type"].(string); ok {
		s.h.record("out", t)
	}
	return nil
}

func (s *session) sendError(streamID, msg string) error {
	data := map[string]interface{}{
		"type":      "error",
		"message":   msg,
		"timestamp": time.Now().Unix(),
	}
	if streamID != "" {
		data["stream_id"] = streamID
	}
	return s.send(data)
}

func (h *Handler) record(direction, msgType string) {
	if h.metrics != nil {
		h.metrics.RecordWSMessage(direction, msgType)
	}
}
