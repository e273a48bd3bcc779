package snapshothub

import (
	"strings"
	"sync"

	"github.com/tracesphere/campusasset/internal/docstore/domain"
)

const DefaultSubscriberBuffer = 16

// Hub fans full collection snapshots out to subscribers. Sends are
// non-blocking: a slow subscriber drops intermediate snapshots but
// always keeps the newest, which is safe because every event is
// complete.
type Hub struct {
	mu               sync.RWMutex
	streams          map[string]*stream
	subscriberBuffer int
}

type stream struct {
	mu     sync.Mutex
	subs   map[uint64]chan domain.Snapshot
	nextID uint64
}

type Subscription struct {
	hub        *Hub
	collection string
	id         uint64
	ch         chan domain.Snapshot
	once       sync.Once
}

func NewHub() *Hub {
	return &Hub{
		streams:          make(map[string]*stream),
		subscriberBuffer: DefaultSubscriberBuffer,
	}
}

func (h *Hub) Publish(collection string, snap domain.Snapshot) {
	if h == nil {
		return
	}
	name := strings.TrimSpace(collection)
	if name == "" {
		return
	}
	h.mu.RLock()
	stream := h.streams[name]
	h.mu.RUnlock()
	if stream == nil {
		return
	}

	// Sends stay under the stream lock so concurrent publishers cannot
	// interleave a stale snapshot behind a fresh one. They never block.
	stream.mu.Lock()
	defer stream.mu.Unlock()
	for _, ch := range stream.subs {
		select {
		case ch <- snap:
		default:
			// Buffer full: evict the oldest snapshot to make room, so
			// the subscriber lands on the newest state.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

func (h *Hub) Subscribe(collection string) *Subscription {
	name := strings.TrimSpace(collection)
	stream := h.ensureStream(name)

	stream.mu.Lock()
	if stream.subs == nil {
		stream.subs = make(map[uint64]chan domain.Snapshot)
	}
	id := stream.nextID
	stream.nextID++
	ch := make(chan domain.Snapshot, h.subscriberBuffer)
	stream.subs[id] = ch
	stream.mu.Unlock()

	return &Subscription{
		hub:        h,
		collection: name,
		id:         id,
		ch:         ch,
	}
}

func (h *Hub) ensureStream(collection string) *stream {
	h.mu.RLock()
	current := h.streams[collection]
	h.mu.RUnlock()
	if current != nil {
		return current
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	current = h.streams[collection]
	if current == nil {
		current = &stream{subs: make(map[uint64]chan domain.Snapshot)}
		h.streams[collection] = current
	}
	return current
}

func (h *Hub) unsubscribe(collection string, id uint64) {
	if h == nil {
		return
	}
	h.mu.RLock()
	stream := h.streams[collection]
	h.mu.RUnlock()
	if stream == nil {
		return
	}

	stream.mu.Lock()
	delete(stream.subs, id)
	remaining := len(stream.subs)
	stream.mu.Unlock()
	if remaining != 0 {
		return
	}

	h.mu.Lock()
	current := h.streams[collection]
	if current != stream {
		h.mu.Unlock()
		return
	}
	stream.mu.Lock()
	empty := len(stream.subs) == 0
	stream.mu.Unlock()
	if empty {
		delete(h.streams, collection)
	}
	h.mu.Unlock()
}

func (s *Subscription) Events() <-chan domain.Snapshot {
	if s == nil {
		return nil
	}
	return s.ch
}

func (s *Subscription) Close() {
	if s == nil || s.hub == nil {
		return
	}
	s.once.Do(func() {
		s.hub.unsubscribe(s.collection, s.id)
	})
}
