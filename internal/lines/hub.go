package lines

import (
	"github.com/google/uuid"
	cmap "github.com/orcaman/concurrent-map/v2"
)

// edgeHub keeps track of edge subscribers and notifies them
type edgeHub struct {
	subscribers cmap.ConcurrentMap[string, func()]
}

func newEdgeHub() edgeHub {
	return edgeHub{
		subscribers: cmap.New[func()](),
	}
}

// Subscribe registers a handler that is called on every level change of any line
func (h *edgeHub) Subscribe(handler func()) (unsubscribe func()) {
	id := uuid.NewString()
	h.subscribers.Set(id, handler)
	return func() {
		h.subscribers.Remove(id)
	}
}

func (h *edgeHub) notify() {
	h.subscribers.IterCb(func(_ string, handler func()) {
		handler()
	})
}

// SubscriberCount returns the number of currently registered handlers
func (h *edgeHub) SubscriberCount() int {
	return h.subscribers.Count()
}
