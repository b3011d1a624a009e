package game

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Gateway ---

type delivery struct {
	to  []string
	all bool
	msg Message
}

type fakeGateway struct {
	mu   sync.Mutex
	sent []delivery
}

func (g *fakeGateway) Unicast(connID string, m Message) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sent = append(g.sent, delivery{to: []string{connID}, msg: m})
}

func (g *fakeGateway) Multicast(connIDs []string, m Message) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sent = append(g.sent, delivery{to: slices.Clone(connIDs), msg: m})
}

func (g *fakeGateway) Broadcast(m Message) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sent = append(g.sent, delivery{all: true, msg: m})
}

func (g *fakeGateway) reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sent = nil
}

// received returns every message addressed to connID, broadcasts excluded.
func (g *fakeGateway) received(connID string) []Message {
	g.mu.Lock()
	defer g.mu.Unlock()

	var out []Message
	for _, d := range g.sent {
		if slices.Contains(d.to, connID) {
			out = append(out, d.msg)
		}
	}
	return out
}

func (g *fakeGateway) receivedOfType(connID, typ string) []Message {
	var out []Message
	for _, m := range g.received(connID) {
		if TypeOf(m) == typ {
			out = append(out, m)
		}
	}
	return out
}

func (g *fakeGateway) broadcasts() []Message {
	g.mu.Lock()
	defer g.mu.Unlock()

	var out []Message
	for _, d := range g.sent {
		if d.all {
			out = append(out, d.msg)
		}
	}
	return out
}

func (g *fakeGateway) lastRoomList(t *testing.T) RoomListMessage {
	t.Helper()

	all := g.broadcasts()
	require.NotEmpty(t, all, "no room listing broadcast")
	list, ok := all[len(all)-1].(RoomListMessage)
	require.True(t, ok)
	return list
}

// --- Clock ---

type fakeTimer struct {
	clock   *manualClock
	d       time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	was := !t.stopped && !t.fired
	t.stopped = true
	return was
}

type manualClock struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := &fakeTimer{clock: c, d: d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *manualClock) pending() []*fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			out = append(out, t)
		}
	}
	return out
}

// fire runs the single pending timer and returns its duration.
func (c *manualClock) fire(t *testing.T) time.Duration {
	t.Helper()

	p := c.pending()
	require.Len(t, p, 1, "expected exactly one pending timer")

	c.mu.Lock()
	p[0].fired = true
	c.mu.Unlock()

	p[0].f()
	return p[0].d
}

// --- Rand ---

type fixedRand int

func (f fixedRand) IntN(n int) int {
	return int(f) % n
}

// --- Corpus ---

type MockCorpus struct {
	mock.Mock
}

func (m *MockCorpus) RandomThemeWithKeyword(ctx context.Context) (string, string, error) {
	args := m.Called(ctx)
	return args.String(0), args.String(1), args.Error(2)
}

// --- Recorder ---

type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) Record(o Outcome) {
	m.Called(o)
}
