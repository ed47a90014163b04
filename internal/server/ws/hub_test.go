package ws

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type stubBus struct{}

func (stubBus) Publish(ctx context.Context, channel string, payload []byte) error {
	return nil
}

func (stubBus) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	return make(chan []byte, 1), nil
}

func TestHubShutdownUnblocksClientHandoff(t *testing.T) {
	hub := NewHub(stubBus{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- hub.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}

	// With the event loop gone, a disconnecting client's handoff must return
	// instead of blocking forever on the unregister channel.
	c := &client{hub: hub, send: make(chan []byte, 1), subs: make(map[string]bool)}
	returned := make(chan struct{})
	go func() {
		hub.unregisterClient(c)
		close(returned)
	}()
	select {
	case <-returned:
	case <-time.After(2 * time.Second):
		t.Fatal("unregisterClient blocked after shutdown")
	}

	// A late connection attempt is refused rather than queued.
	require.False(t, hub.registerClient(c))
}
