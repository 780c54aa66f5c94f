package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/grafy/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/grafy/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/grafy/internal/shared/id"
)

// UserAgent is sent on every request
const UserAgent = "grafy-client/0.3"

// Options configures a Client
type Options struct {
	BaseURL string
	Timeout time.Duration

	// RetryMax bounds transport retries on 5xx, 429 and connection errors
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration

	// RPS limits outgoing requests; zero is unlimited
	RPS   float64
	Burst int

	Breaker resilience.Settings
	Logger  *zap.Logger
}

// DefaultOptions returns options for a local server
func DefaultOptions() Options {
	return Options{
		BaseURL:      "http://localhost:8000",
		Timeout:      30 * time.Second,
		RetryMax:     3,
		RetryWaitMin: 250 * time.Millisecond,
		RetryWaitMax: 5 * time.Second,
		Breaker: resilience.Settings{
			MaxRequests: 2,
			Interval:    60 * time.Second,
			Timeout:     15 * time.Second,
			ReadyToTrip: func(counts resilience.Counts) bool {
				return counts.ConsecutiveFailures >= 5 ||
					(counts.Requests >= 20 && float64(counts.TotalFailures)/float64(counts.Requests) > 0.5)
			},
		},
	}
}

// Client calls the grafy HTTP API with retries, rate limiting and a circuit breaker
type Client struct {
	Resty   *resty.Client
	Limiter *rate.Limiter
	Breaker *resilience.Breaker

	mu     sync.RWMutex
	logger *zap.Logger
}

// New creates a client. Zero fields in opts fall back to DefaultOptions.
func New(opts Options) *Client {
	def := DefaultOptions()
	if opts.BaseURL == "" {
		opts.BaseURL = def.BaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	if opts.RetryWaitMin <= 0 {
		opts.RetryWaitMin = def.RetryWaitMin
	}
	if opts.RetryWaitMax < opts.RetryWaitMin {
		opts.RetryWaitMax = def.RetryWaitMax
	}
	if opts.RetryMax < 0 {
		opts.RetryMax = 0
	}
	if opts.Breaker.ReadyToTrip == nil {
		opts.Breaker.ReadyToTrip = def.Breaker.ReadyToTrip
	}
	if opts.Breaker.Timeout <= 0 {
		opts.Breaker.Timeout = def.Breaker.Timeout
	}
	if opts.Breaker.IsSuccessful == nil {
		opts.Breaker.IsSuccessful = countsAsSuccess
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = opts.RetryMax
	retryClient.RetryWaitMin = opts.RetryWaitMin
	retryClient.RetryWaitMax = opts.RetryWaitMax
	retryClient.Logger = leveledLogger{logger.Sugar()}
	// The final response is handed back as-is so the API error body survives
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	restyClient := resty.NewWithClient(retryClient.StandardClient()).
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetTimeout(opts.Timeout).
		SetHeader("User-Agent", UserAgent).
		SetHeader("Accept", "application/json").
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal)

	restyClient.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		headers := make(map[string]string, 2)
		tracing.InjectTraceContext(r.Context(), headers)
		r.SetHeaders(headers)
		if r.Header.Get("X-Request-ID") == "" {
			r.SetHeader("X-Request-ID", string(id.NewRequestID()))
		}
		return nil
	})

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RPS > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RPS), burst)
	}

	return &Client{
		Resty:   restyClient,
		Limiter: limiter,
		Breaker: resilience.New("grafy-api", opts.Breaker),
		logger:  logger,
	}
}

// SetHeader adds a default header
func (c *Client) SetHeader(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Resty.SetHeader(key, value)
}

// SetTimeout sets the per-request timeout
func (c *Client) SetTimeout(timeout time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Resty.SetTimeout(timeout)
}

// SetRateLimit limits outgoing requests per second; zero or less removes the limit
func (c *Client) SetRateLimit(rps float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if rps <= 0 {
		c.Limiter = rate.NewLimiter(rate.Inf, 0)
		return
	}
	c.Limiter = rate.NewLimiter(rate.Limit(rps), 1)
}

// BreakerState reports the breaker state
func (c *Client) BreakerState() resilience.State {
	return c.Breaker.State()
}

// request waits for the limiter and returns a request bound to ctx
func (c *Client) request(ctx context.Context) (*resty.Request, error) {
	c.mu.RLock()
	limiter := c.Limiter
	c.mu.RUnlock()

	if err := limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	return c.Resty.R().SetContext(ctx), nil
}

// do sends one API call through the breaker and decodes a 2xx body into out
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := resilience.Execute(c.Breaker, func() (struct{}, error) {
		req, err := c.request(ctx)
		if err != nil {
			return struct{}{}, err
		}
		if body != nil {
			req.SetBody(body)
		}
		var apiErr errorBody
		req.SetError(&apiErr)
		if out != nil {
			req.SetResult(out)
		}

		resp, err := req.Execute(method, path)
		if err != nil {
			return struct{}{}, fmt.Errorf("%s %s: %w", method, path, err)
		}
		if resp.IsError() {
			msg := apiErr.Error
			if msg == "" {
				msg = strings.TrimSpace(resp.String())
			}
			if msg == "" {
				msg = http.StatusText(resp.StatusCode())
			}
			return struct{}{}, &APIError{StatusCode: resp.StatusCode(), Message: msg}
		}
		c.logger.Debug("api call",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode()),
			zap.Duration("duration", resp.Time()),
		)
		return struct{}{}, nil
	})
	if errors.Is(err, resilience.ErrCircuitOpen) || errors.Is(err, resilience.ErrTooManyRequests) {
		return fmt.Errorf("grafy api unavailable: %w", err)
	}
	return err
}

type errorBody struct {
	Error string `json:"error"`
}

// APIError is a non-2xx response from the server
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Temporary reports whether retrying later may succeed
func (e *APIError) Temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// IsNotFound reports whether err is a 404 from the server
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// countsAsSuccess keeps client mistakes and caller cancellation from tripping the breaker
func countsAsSuccess(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return !apiErr.Temporary()
	}
	return false
}

// leveledLogger adapts zap to retryablehttp's LeveledLogger
type leveledLogger struct {
	s *zap.SugaredLogger
}

func (l leveledLogger) Error(msg string, kv ...interface{}) { l.s.Errorw(msg, kv...) }
func (l leveledLogger) Info(msg string, kv ...interface{})  { l.s.Debugw(msg, kv...) }
func (l leveledLogger) Debug(msg string, kv ...interface{}) { l.s.Debugw(msg, kv...) }
func (l leveledLogger) Warn(msg string, kv ...interface{})  { l.s.Warnw(msg, kv...) }
