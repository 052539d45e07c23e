package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/randalmurphal/evdispatch/pkg/evdispatch/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bindingsYAML = `
listeners:
  - event: order.placed
    listener: Mailer->OnOrderPlaced
    priority: 10
  - event: order.placed
    listener: audit
`

func TestBindings(t *testing.T) {
	cfg, err := config.FromYAML([]byte(bindingsYAML))
	require.NoError(t, err)

	got, err := config.Bindings(cfg)
	require.NoError(t, err)
	assert.Equal(t, []config.Binding{
		{Event: "order.placed", Listener: "Mailer->OnOrderPlaced", Priority: 10},
		{Event: "order.placed", Listener: "audit", Priority: 0},
	}, got)
}

func TestBindings_JSONPriority(t *testing.T) {
	cfg, err := config.FromJSON([]byte(`{"listeners":[{"event":"e","listener":"l","priority":-5}]}`))
	require.NoError(t, err)

	got, err := config.Bindings(cfg)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, -5, got[0].Priority)
}

func TestBindings_EventList(t *testing.T) {
	cfg, err := config.FromYAML([]byte(`
listeners:
  - events: [order.placed, order.cancelled]
    listener: audit
    priority: 3
  - event: order.shipped
    listener: notify
`))
	require.NoError(t, err)

	got, err := config.Bindings(cfg)
	require.NoError(t, err)
	assert.Equal(t, []config.Binding{
		{Event: "order.placed", Listener: "audit", Priority: 3},
		{Event: "order.cancelled", Listener: "audit", Priority: 3},
		{Event: "order.shipped", Listener: "notify", Priority: 0},
	}, got)
}

func TestBindings_NoKey(t *testing.T) {
	got, err := config.Bindings(config.New(map[string]any{"other": 1}))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestBindings_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		msg  string
	}{
		{"not a list", "listeners: nope", "must be a list"},
		{"entry not mapping", "listeners: [x]", "must be a list"},
		{"missing event", "listeners: [{listener: l}]", "entry 0: missing event"},
		{"missing listener", "listeners: [{event: e}]", "entry 0: missing listener"},
		{"bad priority", "listeners: [{event: e, listener: l, priority: high}]", "priority must be an integer"},
		{"event and events", "listeners: [{event: e, events: [f], listener: l}]", "exclusive"},
		{"empty events", "listeners: [{events: [], listener: l}]", "non-empty list"},
		{"events not strings", "listeners: [{events: [1, 2], listener: l}]", "non-empty list"},
		{"blank event name", "listeners: [{events: [a, ''], listener: l}]", "empty names"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.FromYAML([]byte(tt.yaml))
			require.NoError(t, err)

			_, err = config.Bindings(cfg)
			require.ErrorIs(t, err, config.ErrInvalidBinding)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestLoadBindings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bindings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(bindingsYAML), 0o600))

	got, err := config.LoadBindings(path)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = config.LoadBindings(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("listeners: [{event: e}]\n"), 0o600))
	_, err = config.LoadBindings(bad)
	require.ErrorIs(t, err, config.ErrInvalidBinding)
	assert.ErrorContains(t, err, "bindings "+bad)
}
