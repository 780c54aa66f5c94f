package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/grafy/internal/shared/types"
)

type mockProvider struct {
	id       string
	category types.Category
	calls    int
}

func (m *mockProvider) Definition() types.Service {
	category := m.category
	if category == "" {
		category = types.CategoryCalculus
	}
	return types.Service{
		ID:           m.id,
		Name:         "Mock Service",
		Description:  "A mock service for surface testing",
		Category:     category,
		Capabilities: []string{"gradient", "volume"},
		Tools: []types.Tool{
			{
				ID:          m.id + ".test",
				Name:        "Test Tool",
				Description: "A test tool",
				Returns:     "object",
			},
		},
	}
}

func (m *mockProvider) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	m.calls++
	return &types.Result{
		Success: true,
		Data:    map[string]interface{}{"tool": toolID, "params": len(params)},
	}, nil
}

func TestRegister(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Register(&mockProvider{id: "test"}))
	_, ok := r.Get("test")
	assert.True(t, ok)

	assert.Error(t, r.Register(&mockProvider{id: ""}))
	assert.Error(t, r.Register(&mockProvider{id: "a.b"}))

	r.Unregister("test")
	_, ok = r.Get("test")
	assert.False(t, ok)
}

func TestList(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&mockProvider{id: "zeta"}))
	require.NoError(t, r.Register(&mockProvider{id: "alpha"}))
	require.NoError(t, r.Register(&mockProvider{id: "lib", category: types.CategoryPresets}))

	services := r.List(nil)
	require.Len(t, services, 3)
	assert.Equal(t, "alpha", services[0].ID)
	assert.Equal(t, "zeta", services[2].ID)

	cat := types.CategoryCalculus
	assert.Len(t, r.List(&cat), 2)

	assert.NotNil(t, NewRegistry().List(nil))
}

func TestTool(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&mockProvider{id: "test"}))

	tool, ok := r.Tool("test.test")
	require.True(t, ok)
	assert.Equal(t, "Test Tool", tool.Name)

	_, ok = r.Tool("test.missing")
	assert.False(t, ok)
	_, ok = r.Tool("nodot")
	assert.False(t, ok)
}

func TestDiscover(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&mockProvider{id: "calculus"}))
	require.NoError(t, r.Register(&mockProvider{id: "other", category: types.CategoryPresets}))

	results := r.Discover("calculus gradient", 5)
	require.NotEmpty(t, results)
	assert.Equal(t, "calculus", results[0].ID)

	assert.Empty(t, r.Discover("zzz", 5))
	assert.Len(t, r.Discover("surface", 1), 1)
	assert.Len(t, r.Discover("surface", 0), 2)
}

func TestExecute(t *testing.T) {
	r := NewRegistry()
	p := &mockProvider{id: "test"}
	require.NoError(t, r.Register(p))
	ctx := context.Background()

	t.Run("Routes by service prefix", func(t *testing.T) {
		result, err := r.Execute(ctx, "test.nested.tool", nil, nil)
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, "test.nested.tool", result.Data["tool"])
	})

	t.Run("Invalid tool ID", func(t *testing.T) {
		result, err := r.Execute(ctx, "nodot", nil, nil)
		assert.ErrorIs(t, err, ErrInvalidToolID)
		assert.False(t, result.Success)
	})

	t.Run("Unknown service", func(t *testing.T) {
		result, err := r.Execute(ctx, "missing.tool", nil, nil)
		assert.ErrorIs(t, err, ErrServiceNotFound)
		require.NotNil(t, result.Error)
		assert.Contains(t, *result.Error, "service not found")
	})

	t.Run("Cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		before := p.calls
		result, err := r.Execute(cancelled, "test.test", nil, nil)
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, result.Success)
		assert.Equal(t, before, p.calls)
	})
}

func TestStats(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&mockProvider{id: "test1"}))
	require.NoError(t, r.Register(&mockProvider{id: "test2", category: types.CategoryPresets}))

	stats := r.Stats()
	assert.Equal(t, 2, stats["total_services"])
	assert.Equal(t, 2, stats["total_tools"])
	assert.Equal(t, map[string]int{"calculus": 1, "presets": 1}, stats["categories"])
}
