package portal

import (
	"context"
	"sync"
	"testing"
	"time"

	"club-portal/storage"

	"github.com/stretchr/testify/require"
)

// manualClock only moves when Advance is called.
type manualClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*manualTimer
}

type manualTimer struct {
	c       *manualClock
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{c: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.c.mu.Lock()
	defer t.c.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves time forward and runs every timer that came due, outside
// the clock lock.
func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due, pending []*manualTimer
	for _, t := range c.timers {
		switch {
		case t.stopped || t.fired:
		case !t.at.After(c.now):
			t.fired = true
			due = append(due, t)
		default:
			pending = append(pending, t)
		}
	}
	c.timers = pending
	c.mu.Unlock()

	for _, t := range due {
		t.f()
	}
}

type readResult struct {
	uri string
	err error
}

// gatedReader blocks each read until the test releases its path.
type gatedReader struct {
	mu    sync.Mutex
	gates map[string]chan readResult
}

func newGatedReader() *gatedReader {
	return &gatedReader{gates: make(map[string]chan readResult)}
}

func (r *gatedReader) gate(path string) chan readResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch, ok := r.gates[path]
	if !ok {
		ch = make(chan readResult, 1)
		r.gates[path] = ch
	}
	return ch
}

func (r *gatedReader) ReadDataURI(ctx context.Context, path string) (string, error) {
	select {
	case res := <-r.gate(path):
		return res.uri, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (r *gatedReader) release(path, uri string, err error) {
	r.gate(path) <- readResult{uri: uri, err: err}
}

type testEnv struct {
	app    *App
	store  *storage.Store
	clock  *manualClock
	reader *gatedReader
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()
	store := storage.NewStore(storage.NewMemory(), nil)
	clock := newManualClock()
	reader := newGatedReader()
	opts = append([]Option{WithClock(clock), WithReader(reader)}, opts...)
	return &testEnv{app: New(store, opts...), store: store, clock: clock, reader: reader}
}

func (e *testEnv) login(t *testing.T, id, password string) {
	t.Helper()
	require.NoError(t, e.app.Login(id, password))
}

// accept resolves the open confirmation positively.
func (e *testEnv) accept(t *testing.T) {
	t.Helper()
	require.True(t, e.app.Notifier().Resolve(true), "no confirmation pending")
}

func (e *testEnv) message(t *testing.T) Message {
	t.Helper()
	msg, ok := e.app.Notifier().Message()
	require.True(t, ok, "no message visible")
	return msg
}

func waitUpload(t *testing.T, up *Upload) error {
	t.Helper()
	select {
	case <-up.Done():
		return up.Err()
	case <-time.After(5 * time.Second):
		t.Fatal("upload never finished")
		return nil
	}
}
