package library

import (
	"context"
	"errors"
	"strings"

	"github.com/GriffinCanCode/grafy/internal/presets"
	"github.com/GriffinCanCode/grafy/internal/providers/calculus/common"
	"github.com/GriffinCanCode/grafy/internal/shared/types"
)

// PresetOps exposes the preset library as tools
type PresetOps struct {
	Library *presets.Library
}

// GetTools returns preset tool definitions
func (p *PresetOps) GetTools() []types.Tool {
	return []types.Tool{
		{
			ID:          "calculus.presets.list",
			Name:        "List Presets",
			Description: "List example surfaces",
			Parameters: []types.Parameter{
				{Name: "tag", Type: "string", Description: "Only presets carrying this tag", Required: false},
			},
			Returns: "array",
		},
		{
			ID:          "calculus.presets.get",
			Name:        "Get Preset",
			Description: "Fetch one example surface by ID",
			Parameters: []types.Parameter{
				{Name: "id", Type: "string", Description: "Preset ID", Required: true},
			},
			Returns: "object",
		},
	}
}

// List returns presets, optionally filtered by tag
func (p *PresetOps) List(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	tag, _ := common.GetString(params, "tag")
	tag = strings.ToLower(strings.TrimSpace(tag))

	out := []presets.Preset{}
	for _, preset := range p.Library.List() {
		if tag == "" || hasTag(preset, tag) {
			out = append(out, preset)
		}
	}
	return common.Success(map[string]interface{}{
		"presets": out,
		"count":   len(out),
	})
}

// Get returns one preset
func (p *PresetOps) Get(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	id, ok := common.GetString(params, "id")
	if !ok || id == "" {
		return common.Failure("id parameter required")
	}
	preset, err := p.Library.Get(id)
	if errors.Is(err, presets.ErrNotFound) {
		return common.Failure(err.Error())
	}
	if err != nil {
		return nil, err
	}
	return common.Success(map[string]interface{}{"preset": preset})
}

func hasTag(p presets.Preset, tag string) bool {
	for _, t := range p.Tags {
		if strings.ToLower(t) == tag {
			return true
		}
	}
	return false
}
