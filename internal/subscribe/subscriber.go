package subscribe

import (
	"sync"
)

const defaultBufLen = 64

// Subscriber is one live delivery channel for an owner's records.
type Subscriber struct {
	ch     chan []byte
	done   chan struct{}
	once   sync.Once
	filter Filter
}

// NewSubscriber builds a subscriber with the given delivery buffer and
// filter. A zero or negative buffer falls back to the default.
func NewSubscriber(buf int, filter Filter) *Subscriber {
	if buf <= 0 {
		buf = defaultBufLen
	}
	return &Subscriber{
		ch:     make(chan []byte, buf),
		done:   make(chan struct{}),
		filter: filter,
	}
}

// Recv returns the delivery channel. Each element is one JSON-encoded
// record.
func (s *Subscriber) Recv() <-chan []byte { return s.ch }

// Done is closed when the subscriber transitions to disconnected.
func (s *Subscriber) Done() <-chan struct{} { return s.done }

// disconnect moves the subscriber to its terminal state. Idempotent.
func (s *Subscriber) disconnect() {
	s.once.Do(func() { close(s.done) })
}
