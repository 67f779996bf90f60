// Package power abstracts the platform primitives for entering low-power
// states and servicing the watchdog. The node core validates sleep
// preconditions and flushes traffic; this package only executes the actual
// power transition and reports why the node woke.
package power

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// TriggerMode selects the pin edge or level that fires a wake interrupt.
type TriggerMode uint8

const (
	TriggerRising TriggerMode = iota
	TriggerFalling
	TriggerChange
)

// Interrupt names one wake source. The zero value is an unset slot.
type Interrupt struct {
	Num     uint8
	Mode    TriggerMode
	Defined bool
}

// IRQ returns a defined interrupt slot.
func IRQ(num uint8, mode TriggerMode) Interrupt {
	return Interrupt{Num: num, Mode: mode, Defined: true}
}

// WakeSource classifies why a power-down ended.
type WakeSource uint8

const (
	// WakeTimer means the requested duration elapsed.
	WakeTimer WakeSource = iota
	// WakeInterrupt means one of the armed interrupts fired.
	WakeInterrupt
)

// WakeReason reports the end of a power-down. Interrupt is only meaningful
// when Source is WakeInterrupt.
type WakeReason struct {
	Source    WakeSource
	Interrupt uint8
}

// Controller is the platform power primitive.
type Controller interface {
	// PowerDown suspends until d elapses or an armed interrupt fires.
	// d == 0 suspends until an interrupt alone; callers must then arm at
	// least one.
	PowerDown(d time.Duration, int1, int2 Interrupt) WakeReason

	// ServiceWatchdog keeps the hardware watchdog from biting during long
	// cooperative loops.
	ServiceWatchdog()
}

// Simulator is a Controller for tests, examples and non-embedded ports. Real
// suspension is replaced by a timer; tests can schedule interrupt wakes.
type Simulator struct {
	mu sync.Mutex
	// pending, when set, preempts the timer as an interrupt wake after delay.
	pendingIRQ   uint8
	pendingDelay time.Duration
	hasPending   bool

	watchdogKicks int
}

// NewSimulator returns an idle power simulator.
func NewSimulator() *Simulator {
	return &Simulator{}
}

// FireInterrupt schedules interrupt irq to wake the next PowerDown after
// delay of simulated suspension.
func (s *Simulator) FireInterrupt(irq uint8, delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingIRQ = irq
	s.pendingDelay = delay
	s.hasPending = true
}

// PowerDown suspends on the wall clock. A scheduled interrupt matching one of
// the armed slots ends the suspension early.
func (s *Simulator) PowerDown(d time.Duration, int1, int2 Interrupt) WakeReason {
	s.mu.Lock()
	irq, delay, pending := s.pendingIRQ, s.pendingDelay, s.hasPending
	s.hasPending = false
	s.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function":    "PowerDown",
		"duration_ms": d.Milliseconds(),
		"int1":        int1,
		"int2":        int2,
	}).Debug("Simulated power-down")

	armed := pending && ((int1.Defined && int1.Num == irq) || (int2.Defined && int2.Num == irq))
	if armed && (d == 0 || delay < d) {
		time.Sleep(delay)
		return WakeReason{Source: WakeInterrupt, Interrupt: irq}
	}
	time.Sleep(d)
	return WakeReason{Source: WakeTimer}
}

// ServiceWatchdog records the kick.
func (s *Simulator) ServiceWatchdog() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchdogKicks++
}

// WatchdogKicks reports how many times the watchdog was serviced.
func (s *Simulator) WatchdogKicks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watchdogKicks
}
