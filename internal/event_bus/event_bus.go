package event_bus

import (
	"errors"
	"sync"
)

var ErrClosed = errors.New("mailbox is closed")

// Sender is the producer side of a Mailbox, handed to background workers.
type Sender interface {
	Send(msg Message) error
}

// Mailbox is an unbounded FIFO of messages with many concurrent producers and a single
// consumer. Send never blocks and TryReceive never waits, so the consumer can poll it
// once per tick.
type Mailbox struct {
	mu     sync.Mutex
	queue  []Message
	closed bool
	notify chan struct{}
}

func NewMailbox() *Mailbox {
	return &Mailbox{notify: make(chan struct{}, 1)}
}

// Send appends msg. It fails only once the mailbox has been closed.
func (m *Mailbox) Send(msg Message) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	m.queue = append(m.queue, msg)
	m.mu.Unlock()

	select {
	case m.notify <- struct{}{}:
	default:
	}
	return nil
}

// TryReceive pops the oldest message, or returns false immediately when there is none.
func (m *Mailbox) TryReceive() (Message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.queue) == 0 {
		return nil, false
	}
	msg := m.queue[0]
	m.queue[0] = nil
	m.queue = m.queue[1:]
	return msg, true
}

// Ready is signalled after a Send. It lets a presentation layer sleep until there is
// something to show; the consumer must still drain with TryReceive.
func (m *Mailbox) Ready() <-chan struct{} {
	return m.notify
}

func (m *Mailbox) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// Close rejects further sends. Queued messages can still be received.
func (m *Mailbox) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
}
