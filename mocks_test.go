package mysensors

import (
	"sync"
	"time"

	"github.com/deepakipr/mysensors/message"
	"github.com/deepakipr/mysensors/power"
	"github.com/deepakipr/mysensors/storage"
)

// mockClock is a deterministic TimeProvider: Sleep advances the clock
// instead of pausing, so cooperative loops run at full speed in tests.
type mockClock struct {
	mu  sync.Mutex
	now time.Time
}

func newMockClock() *mockClock {
	return &mockClock{now: time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)}
}

func (m *mockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *mockClock) Sleep(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

// mockTransport records outbound envelopes and serves a scripted inbound
// queue.
type mockTransport struct {
	mu      sync.Mutex
	sent    []message.Message
	inbound []*message.Message
	ready   bool
	closed  bool
	// onSend observes every accepted send; returning non-nil rejects it.
	onSend func(msg *message.Message) error
}

func newMockTransport() *mockTransport {
	return &mockTransport{ready: true}
}

func (m *mockTransport) Send(msg *message.Message) error {
	m.mu.Lock()
	hook := m.onSend
	m.mu.Unlock()
	if hook != nil {
		if err := hook(msg); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, *msg)
	return nil
}

func (m *mockTransport) Poll() (*message.Message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.inbound) == 0 {
		return nil, false
	}
	msg := m.inbound[0]
	m.inbound = m.inbound[1:]
	return msg, true
}

func (m *mockTransport) Ready() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ready && !m.closed
}

func (m *mockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockTransport) queueInbound(msg *message.Message) {
	cp := *msg
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inbound = append(m.inbound, &cp)
}

func (m *mockTransport) sentMessages() []message.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]message.Message, len(m.sent))
	copy(out, m.sent)
	return out
}

func (m *mockTransport) setReady(ready bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ready = ready
}

// mockPower scripts the wake reason and records power-down requests.
type mockPower struct {
	mu          sync.Mutex
	wake        power.WakeReason
	sleptFor    []time.Duration
	kicks       int
	onPowerDown func(d time.Duration, int1, int2 power.Interrupt)
	// clock, when set, is advanced by the slept duration so elapsed time is
	// observable through the node's TimeProvider.
	clock  *mockClock
	elapse time.Duration
}

func newMockPower() *mockPower {
	return &mockPower{wake: power.WakeReason{Source: power.WakeTimer}}
}

func (m *mockPower) PowerDown(d time.Duration, int1, int2 power.Interrupt) power.WakeReason {
	m.mu.Lock()
	hook := m.onPowerDown
	clock := m.clock
	elapse := m.elapse
	m.sleptFor = append(m.sleptFor, d)
	wake := m.wake
	m.mu.Unlock()

	if hook != nil {
		hook(d, int1, int2)
	}
	if clock != nil {
		if elapse == 0 {
			elapse = d
		}
		clock.Sleep(elapse)
	}
	return wake
}

func (m *mockPower) ServiceWatchdog() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.kicks++
}

// newTestNode wires a node with mock collaborators and a mock clock.
func newTestNode(opts *Options) (*Node, *mockTransport, *mockPower, *mockClock) {
	if opts == nil {
		opts = NewOptions()
		opts.NodeID = 42
	}
	tr := newMockTransport()
	pw := newMockPower()
	clock := newMockClock()
	node, err := New(opts, tr, storage.NewMemory(), pw)
	if err != nil {
		panic(err)
	}
	node.SetTimeProvider(clock)
	pw.clock = clock
	return node, tr, pw, clock
}
