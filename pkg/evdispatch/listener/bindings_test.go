package listener_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/evdispatch/pkg/evdispatch/config"
	"github.com/randalmurphal/evdispatch/pkg/evdispatch/event"
	"github.com/randalmurphal/evdispatch/pkg/evdispatch/listener"
)

func TestLoad(t *testing.T) {
	rec := &recorder{}
	reg := listener.NewRegistry(listener.WithResolver(listener.ResolverFunc(func(ref string) (listener.Func, error) {
		return rec.fn(ref), nil
	})))

	err := reg.Load([]config.Binding{
		{Event: "order.placed", Listener: "audit", Priority: 0},
		{Event: "order.placed", Listener: "Mailer->OnOrderPlaced", Priority: 10},
		{Event: "order.shipped", Listener: "Tracking::notify"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, reg.Len())

	evt := event.NewMessage("order.placed", 42)
	for fn, err := range reg.ResolveListeners(evt) {
		require.NoError(t, err)
		require.NoError(t, fn(context.Background(), evt))
	}
	assert.Equal(t, []string{"Mailer->OnOrderPlaced", "audit"}, rec.got)
}

func TestLoad_StopsAtInvalidBinding(t *testing.T) {
	reg := listener.NewRegistry()
	err := reg.Load([]config.Binding{
		{Event: "a", Listener: "ok"},
		{Event: "b", Listener: "bad ref"},
		{Event: "c", Listener: "never"},
	})
	require.ErrorIs(t, err, listener.ErrInvalidListener)
	assert.Contains(t, err.Error(), "binding 1")
	assert.True(t, reg.Has("a"))
	assert.False(t, reg.Has("c"))

	err = reg.Load([]config.Binding{{Listener: "ok"}})
	require.ErrorIs(t, err, listener.ErrInvalidIdentity)
}
