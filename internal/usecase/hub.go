package usecase

import (
	"sync"

	"svw.info/alchemy/internal/domain"
)

// hub fans snapshots out to per-session subscribers.
type hub struct {
	mu   sync.Mutex
	subs map[string]map[chan domain.Snapshot]struct{}
}

func newHub() *hub {
	return &hub{subs: make(map[string]map[chan domain.Snapshot]struct{})}
}

func (h *hub) subscribe(id string) (<-chan domain.Snapshot, func()) {
	ch := make(chan domain.Snapshot, 1)
	h.mu.Lock()
	if h.subs[id] == nil {
		h.subs[id] = make(map[chan domain.Snapshot]struct{})
	}
	h.subs[id][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if _, ok := h.subs[id][ch]; ok {
				delete(h.subs[id], ch)
				close(ch)
			}
		})
	}
}

// publish replaces any snapshot a subscriber has not read yet.
func (h *hub) publish(id string, snap domain.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[id] {
		select {
		case ch <- snap:
			continue
		default:
		}
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

// close ends every subscription of id.
func (h *hub) close(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[id] {
		close(ch)
	}
	delete(h.subs, id)
}
