package portal

import (
	"sync"
	"time"
)

// DefaultMessageTTL is how long a message stays visible.
const DefaultMessageTTL = 5 * time.Second

// Clock is the time source for message expiry and upload timestamps.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type Timer interface {
	Stop() bool
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// SystemClock is the wall clock.
var SystemClock Clock = systemClock{}

type MessageKind string

const (
	MessageSuccess MessageKind = "success"
	MessageError   MessageKind = "error"
	MessageInfo    MessageKind = "info"
)

// Message is a transient notice. Seq increases with every Show so callers
// can tell a repeated text from a new message.
type Message struct {
	Kind MessageKind
	Text string
	Seq  uint64
}

type confirmation struct {
	text      string
	onConfirm func()
	onCancel  func()
}

// Notifier holds at most one message and at most one pending confirmation.
// Callbacks are always invoked without the notifier lock held.
type Notifier struct {
	mu      sync.Mutex
	clock   Clock
	ttl     time.Duration
	seq     uint64
	message *Message
	timer   Timer
	pending *confirmation
}

func NewNotifier(clock Clock, ttl time.Duration) *Notifier {
	if clock == nil {
		clock = SystemClock
	}
	if ttl <= 0 {
		ttl = DefaultMessageTTL
	}
	return &Notifier{clock: clock, ttl: ttl}
}

// Show replaces the current message and restarts the expiry timer.
func (n *Notifier) Show(kind MessageKind, text string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.timer != nil {
		n.timer.Stop()
	}
	n.seq++
	seq := n.seq
	n.message = &Message{Kind: kind, Text: text, Seq: seq}
	n.timer = n.clock.AfterFunc(n.ttl, func() { n.expire(seq) })
}

// expire clears the message only if it is still the one the timer was
// started for.
func (n *Notifier) expire(seq uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.message != nil && n.message.Seq == seq {
		n.message = nil
		n.timer = nil
	}
}

func (n *Notifier) Dismiss() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.message = nil
}

// Message returns the visible message, if any.
func (n *Notifier) Message() (Message, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.message == nil {
		return Message{}, false
	}
	return *n.message, true
}

// Confirm opens a confirmation. A confirmation that is still pending is
// cancelled first. Either callback may be nil.
func (n *Notifier) Confirm(text string, onConfirm, onCancel func()) {
	n.mu.Lock()
	prev := n.pending
	n.pending = &confirmation{text: text, onConfirm: onConfirm, onCancel: onCancel}
	n.mu.Unlock()

	if prev != nil && prev.onCancel != nil {
		prev.onCancel()
	}
}

// Pending returns the text of the open confirmation.
func (n *Notifier) Pending() (string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.pending == nil {
		return "", false
	}
	return n.pending.text, true
}

// Resolve closes the open confirmation and runs onConfirm if accept is true,
// onCancel otherwise. It reports false when nothing was pending.
func (n *Notifier) Resolve(accept bool) bool {
	n.mu.Lock()
	c := n.pending
	n.pending = nil
	n.mu.Unlock()

	if c == nil {
		return false
	}
	cb := c.onCancel
	if accept {
		cb = c.onConfirm
	}
	if cb != nil {
		cb()
	}
	return true
}
