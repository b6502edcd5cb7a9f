package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_BroadcastDropsForFullQueue(t *testing.T) {
	hub := NewHub(1)
	fast := hub.Register("fast")
	slow := hub.Register("slow")

	sent, dropped := hub.Broadcast([]byte("a"))
	assert.Equal(t, 2, sent)
	assert.Equal(t, 0, dropped)

	<-fast.Frames()
	sent, dropped = hub.Broadcast([]byte("b"))
	assert.Equal(t, 1, sent)
	assert.Equal(t, 1, dropped)

	assert.Equal(t, uint64(0), fast.Dropped())
	assert.Equal(t, uint64(1), slow.Dropped())
	assert.Equal(t, []byte("a"), <-slow.Frames())
	assert.Equal(t, Stats{Viewers: 2, FramesSent: 3, FramesDropped: 1}, hub.Stats())
}

func TestHub_UnregisterClosesQueue(t *testing.T) {
	hub := NewHub(4)
	v := hub.Register("remote")
	require.Equal(t, 1, hub.Len())

	hub.Unregister(v.ID)
	hub.Unregister(v.ID)

	_, ok := <-v.Frames()
	assert.False(t, ok)
	assert.Equal(t, 0, hub.Len())

	sent, dropped := hub.Broadcast([]byte("x"))
	assert.Zero(t, sent)
	assert.Zero(t, dropped)
}

func TestHub_CloseAll(t *testing.T) {
	hub := NewHub(0)
	a := hub.Register("a")
	b := hub.Register("b")

	hub.CloseAll()
	hub.Unregister(a.ID)

	_, ok := <-a.Frames()
	assert.False(t, ok)
	_, ok = <-b.Frames()
	assert.False(t, ok)
	assert.Equal(t, 0, hub.Len())
}
