package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/GriffinCanCode/grafy/internal/presets"
	"github.com/GriffinCanCode/grafy/internal/shared/types"
)

// Health is the server health report
type Health struct {
	Status          string                 `json:"status"`
	Registry        map[string]interface{} `json:"service_registry"`
	Presets         int                    `json:"presets"`
	UptimeSeconds   float64                `json:"uptime_seconds"`
	ExpressionCache map[string]interface{} `json:"expression_cache,omitempty"`
}

// Health fetches /health
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var out Health
	if err := c.do(ctx, http.MethodGet, "/health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Services lists registered services, optionally restricted to a category
func (c *Client) Services(ctx context.Context, category string) ([]types.Service, error) {
	path := "/services"
	if category != "" {
		path += "?category=" + url.QueryEscape(category)
	}
	var out struct {
		Services []types.Service `json:"services"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Services, nil
}

// Discover ranks services against a free-text intent
func (c *Client) Discover(ctx context.Context, intent string, limit int) ([]types.Service, error) {
	var out struct {
		Services []types.Service `json:"services"`
	}
	req := types.DiscoverRequest{Intent: intent, Limit: limit}
	if err := c.do(ctx, http.MethodPost, "/services/discover", req, &out); err != nil {
		return nil, err
	}
	return out.Services, nil
}

// Execute runs a tool. A tool that ran but failed comes back as a Result with
// Success false and a nil error.
func (c *Client) Execute(ctx context.Context, toolID string, params map[string]interface{}) (*types.Result, error) {
	if params == nil {
		params = map[string]interface{}{}
	}
	var out types.Result
	req := types.ExecuteRequest{ToolID: toolID, Params: params}
	if err := c.do(ctx, http.MethodPost, "/services/execute", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ErrToolFailed wraps the message of a tool that reported failure
var ErrToolFailed = errors.New("tool failed")

// Call runs a tool and returns its data, turning a tool failure into an error
func (c *Client) Call(ctx context.Context, toolID string, params map[string]interface{}) (map[string]interface{}, error) {
	res, err := c.Execute(ctx, toolID, params)
	if err != nil {
		return nil, err
	}
	if !res.Success {
		msg := "unknown error"
		if res.Error != nil {
			msg = *res.Error
		}
		return nil, fmt.Errorf("%w: %s: %s", ErrToolFailed, toolID, msg)
	}
	return res.Data, nil
}

// Evaluate computes f(x, y, t) on the server. A nil value means f is
// undefined at the point.
func (c *Client) Evaluate(ctx context.Context, expression string, x, y, t float64) (*float64, error) {
	data, err := c.Call(ctx, "calculus.evaluate", map[string]interface{}{
		"expression": expression,
		"x":          x,
		"y":          y,
		"t":          t,
	})
	if err != nil {
		return nil, err
	}
	v, ok := data["value"].(float64)
	if !ok {
		return nil, nil
	}
	return &v, nil
}

// Presets lists preset surfaces, optionally filtered by tag
func (c *Client) Presets(ctx context.Context, tag string) ([]presets.Preset, error) {
	path := "/presets"
	if tag != "" {
		path += "?tag=" + url.QueryEscape(tag)
	}
	var out struct {
		Presets []presets.Preset `json:"presets"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Presets, nil
}

// Preset fetches one preset by ID
func (c *Client) Preset(ctx context.Context, id string) (*presets.Preset, error) {
	var out struct {
		Preset presets.Preset `json:"preset"`
	}
	if err := c.do(ctx, http.MethodGet, "/presets/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out.Preset, nil
}
