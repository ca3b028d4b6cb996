// Package console implements the broadcast channel that carries
// human-readable status messages from any component to the single
// console viewer.
package console

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Message is a single console entry. Messages are never mutated after
// creation.
type Message struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Listener receives messages in emission order.
type Listener func(Message)

// Bus is an ordered, synchronous publish/subscribe channel. Delivery is
// lossless while at least one listener is subscribed; with no listeners
// messages are dropped, not buffered.
type Bus struct {
	mu        sync.Mutex
	listeners map[int]Listener
	order     []int
	nextID    int
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{listeners: make(map[int]Listener)}
}

// Subscribe registers a listener and returns a cancel function that
// removes it. Listeners are invoked synchronously, in subscription
// order, under the bus lock, so a listener observes every message
// exactly once and in emission order.
func (b *Bus) Subscribe(l Listener) (cancel func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.listeners[id] = l
	b.order = append(b.order, id)

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.listeners, id)
		for i, v := range b.order {
			if v == id {
				b.order = append(b.order[:i], b.order[i+1:]...)
				break
			}
		}
	}
}

// Broadcast publishes text to all current listeners. It is
// fire-and-forget: the caller never learns whether anyone was
// listening.
func (b *Bus) Broadcast(text string) {
	msg := Message{
		ID:        uuid.NewString(),
		Text:      text,
		Timestamp: time.Now(),
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, id := range b.order {
		if l, ok := b.listeners[id]; ok {
			l(msg)
		}
	}
}

// Broadcaster is the producer-side interface. Components that only
// emit messages should depend on this rather than on *Bus.
type Broadcaster interface {
	Broadcast(text string)
}

// Log is an in-memory ordered message log with an unread counter, the
// state behind the console viewer. It is a plain value holder; the
// viewer wires it to a Bus subscription.
type Log struct {
	mu       sync.Mutex
	messages []Message
	unread   int
	expanded bool
}

// NewLog creates an empty log.
func NewLog() *Log {
	return &Log{}
}

// Append records a message, bumping the unread counter when the viewer
// is collapsed.
func (l *Log) Append(msg Message) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, msg)
	if !l.expanded {
		l.unread++
	}
}

// Messages returns a snapshot of the log in emission order.
func (l *Log) Messages() []Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Message, len(l.messages))
	copy(out, l.messages)
	return out
}

// SetExpanded records whether the viewer is open. Expanding resets the
// unread counter.
func (l *Log) SetExpanded(expanded bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.expanded = expanded
	if expanded {
		l.unread = 0
	}
}

// Expanded reports whether the viewer is open.
func (l *Log) Expanded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.expanded
}

// Unread returns the number of messages received while collapsed.
func (l *Log) Unread() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.unread
}

// Clear drops all messages and resets the unread counter.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = nil
	l.unread = 0
}

// Len returns the current message count.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.messages)
}
