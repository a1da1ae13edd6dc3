package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubBroadcastReachesAllClients(t *testing.T) {
	hub := NewHub()
	a := &Client{Send: make(chan []byte, 4)}
	b := &Client{Send: make(chan []byte, 4)}
	hub.Register(a)
	hub.Register(b)
	require.Equal(t, 2, hub.ClientCount())

	hub.Broadcast(map[string]string{"type": "payment", "order_id": "ORD-1"})

	for _, c := range []*Client{a, b} {
		select {
		case msg := <-c.Send:
			assert.Contains(t, string(msg), "ORD-1")
		default:
			t.Fatal("expected a broadcast message")
		}
	}
}

func TestHubBroadcastDropsWhenBufferFull(t *testing.T) {
	hub := NewHub()
	c := &Client{Send: make(chan []byte, 1)}
	hub.Register(c)

	hub.Broadcast(map[string]int{"n": 1})
	hub.Broadcast(map[string]int{"n": 2})

	assert.Len(t, c.Send, 1)
}

func TestClientCloseUnregisters(t *testing.T) {
	hub := NewHub()
	c := &Client{Send: make(chan []byte, 1)}
	hub.Register(c)
	require.Equal(t, 1, hub.ClientCount())

	c.Close()
	assert.Equal(t, 0, hub.ClientCount())

	// Double close must be safe.
	c.Close()
	assert.Equal(t, 0, hub.ClientCount())
}
