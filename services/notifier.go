package services

import "sync"

// Event names pushed to subscribers.
const (
	EventFoldersChanged = "folders-changed"
	EventImagesChanged  = "images-changed"
)

// Notifier fans change signals out to any number of subscribers. Publishing
// never blocks: a subscriber that is not draining its channel misses events
// rather than stalling the producer.
type Notifier struct {
	mu   sync.Mutex
	subs map[chan string]struct{}
}

func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[chan string]struct{})}
}

// Subscribe registers a buffered channel to receive event names. The caller
// must call the returned cancel function when done.
func (n *Notifier) Subscribe() (<-chan string, func()) {
	ch := make(chan string, 8)
	n.mu.Lock()
	n.subs[ch] = struct{}{}
	n.mu.Unlock()

	cancel := func() {
		n.mu.Lock()
		if _, ok := n.subs[ch]; ok {
			delete(n.subs, ch)
			close(ch)
		}
		n.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers the event to every subscriber whose buffer has room.
func (n *Notifier) Publish(event string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for ch := range n.subs {
		select {
		case ch <- event:
		default:
		}
	}
}
