package server

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Viewer is one connected snapshot consumer. Frames queue on Send; when the
// queue is full new frames are dropped for that viewer only.
type Viewer struct {
	ID      uuid.UUID
	Remote  string
	send    chan []byte
	dropped atomic.Uint64
	once    sync.Once
}

// Frames is the viewer's outgoing queue. It is closed on unregister.
func (v *Viewer) Frames() <-chan []byte { return v.send }

// Dropped counts frames skipped because the viewer was too slow.
func (v *Viewer) Dropped() uint64 { return v.dropped.Load() }

func (v *Viewer) close() { v.once.Do(func() { close(v.send) }) }

// Hub fans snapshot frames out to every registered viewer.
type Hub struct {
	mu      sync.RWMutex
	viewers map[uuid.UUID]*Viewer
	buffer  int

	sent    atomic.Uint64
	dropped atomic.Uint64
}

func NewHub(buffer int) *Hub {
	if buffer < 1 {
		buffer = 1
	}
	return &Hub{viewers: make(map[uuid.UUID]*Viewer), buffer: buffer}
}

func (h *Hub) Register(remote string) *Viewer {
	v := &Viewer{ID: uuid.New(), Remote: remote, send: make(chan []byte, h.buffer)}
	h.mu.Lock()
	h.viewers[v.ID] = v
	h.mu.Unlock()
	return v
}

// Unregister removes the viewer and closes its queue. Unknown ids are ignored.
func (h *Hub) Unregister(id uuid.UUID) {
	h.mu.Lock()
	v, ok := h.viewers[id]
	delete(h.viewers, id)
	h.mu.Unlock()
	if ok {
		v.close()
	}
}

// Broadcast queues frame for every viewer without blocking.
func (h *Hub) Broadcast(frame []byte) (sent, dropped int) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, v := range h.viewers {
		select {
		case v.send <- frame:
			sent++
		default:
			v.dropped.Add(1)
			dropped++
		}
	}
	h.sent.Add(uint64(sent))
	h.dropped.Add(uint64(dropped))
	return sent, dropped
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.viewers)
}

// CloseAll unregisters every viewer.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	viewers := h.viewers
	h.viewers = make(map[uuid.UUID]*Viewer)
	h.mu.Unlock()
	for _, v := range viewers {
		v.close()
	}
}

// Stats is a snapshot of hub counters.
type Stats struct {
	Viewers       int
	FramesSent    uint64
	FramesDropped uint64
}

func (h *Hub) Stats() Stats {
	return Stats{Viewers: h.Len(), FramesSent: h.sent.Load(), FramesDropped: h.dropped.Load()}
}
