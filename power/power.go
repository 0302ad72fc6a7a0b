// Package power implements the screen-off-aware power manager (component
// J): a state machine over screen/battery/foreground signals that derives
// a power state and the cover-traffic ratio it implies.
package power

import (
	"sync"
	"time"

	"github.com/nyxmesh/nyx-core/internal/defaults"
	"github.com/nyxmesh/nyx-core/telemetry"
)

// ScreenState is the device's display state.
type ScreenState int

const (
	ScreenOn ScreenState = iota
	ScreenOff
)

func (s ScreenState) String() string {
	if s == ScreenOff {
		return "off"
	}
	return "on"
}

// State is the derived power state driving the cover-traffic ratio.
type State int

const (
	Active State = iota
	Background
	Inactive
	Critical
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Background:
		return "background"
	case Inactive:
		return "inactive"
	case Critical:
		return "critical"
	default:
		return "unknown"
	}
}

// CoverRatio returns the cover-traffic ratio the given state maps to.
func (s State) CoverRatio() float64 {
	switch s {
	case Active:
		return defaults.ScreenOnCoverRatio
	case Background:
		return defaults.ScreenOffCoverRatio
	case Inactive:
		return defaults.ScreenOffCoverRatio / 2
	case Critical:
		return defaults.CriticalCoverRatio
	default:
		return 0
	}
}

// screenEvent is one entry in the tracking-window ring: a screen-state
// change and when it took effect.
type screenEvent struct {
	at    time.Time
	state ScreenState
}

// Event is a PowerStateEvent delivered to subscribers on a transition.
type Event struct {
	From State
	To   State
	At   time.Time
}

// Manager tracks screen, battery, and foreground/background signals and
// derives the current power state per spec.md §4.J's priority list.
type Manager struct {
	mu sync.Mutex

	screen      ScreenState
	screenSince time.Time
	battery     float64
	background  bool

	events         []screenEvent
	trackingWindow time.Duration

	state           State
	lastTransition  time.Time
	cooldown        time.Duration
	minOffDuration  time.Duration
	batteryCritical float64
	batteryLow      float64
	batteryHyst     float64

	sink        telemetry.Sink
	subscribers []chan Event
}

// NewManager constructs a power manager starting Active with the screen
// on and a full battery.
func NewManager(now time.Time, sink telemetry.Sink) *Manager {
	if sink == nil {
		sink = telemetry.Noop
	}
	return &Manager{
		screen:      ScreenOn,
		screenSince: now,
		battery:     1.0,
		state:       Active,
		// lastTransition starts at the zero time, not now, so the
		// cooldown never blocks the very first real transition.
		lastTransition:  time.Time{},
		trackingWindow:  defaults.PowerTrackingWindow,
		cooldown:        defaults.StateChangeCooldown,
		minOffDuration:  defaults.MinScreenOffDuration,
		batteryCritical: defaults.BatteryCritical,
		batteryLow:      defaults.BatteryLow,
		batteryHyst:     defaults.BatteryHysteresis,
		sink:            sink,
	}
}

// Subscribe returns a channel that receives a PowerStateEvent on every
// state transition. The channel is buffered; slow subscribers may miss
// events rather than block the manager.
func (m *Manager) Subscribe() <-chan Event {
	ch := make(chan Event, 8)
	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()
	return ch
}

func (m *Manager) publishLocked(from, to State, now time.Time) {
	ev := Event{From: from, To: to, At: now}
	for _, ch := range m.subscribers {
		select {
		case ch <- ev:
		default:
		}
	}
	m.sink.PowerStateTransition(from.String(), to.String())
}

// UpdateScreenState records a screen on/off transition.
func (m *Manager) UpdateScreenState(now time.Time, s ScreenState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s == m.screen {
		return
	}
	m.screen = s
	m.screenSince = now
	m.pruneEventsLocked(now)
	m.events = append(m.events, screenEvent{at: now, state: s})
	m.recomputeLocked(now)
}

// UpdateBatteryLevel records the current battery level in [0,1].
func (m *Manager) UpdateBatteryLevel(now time.Time, level float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}
	m.battery = level
	m.recomputeLocked(now)
}

// SetAppBackground records the foreground/background signal. A true value
// forces Inactive until cleared (spec.md §4.J rule 4).
func (m *Manager) SetAppBackground(now time.Time, background bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.background = background
	m.recomputeLocked(now)
}

func (m *Manager) pruneEventsLocked(now time.Time) {
	cutoff := now.Add(-m.trackingWindow)
	i := 0
	for i < len(m.events) && m.events[i].at.Before(cutoff) {
		i++
	}
	if i > 0 {
		m.events = m.events[i:]
	}
}

// recomputeLocked applies spec.md §4.J's four-rule priority list and,
// subject to the flap-prevention cooldown, transitions and publishes.
// Caller holds m.mu.
func (m *Manager) recomputeLocked(now time.Time) {
	next := m.deriveStateLocked(now)
	if next == m.state {
		return
	}
	if now.Sub(m.lastTransition) < m.cooldown {
		return
	}
	prev := m.state
	m.state = next
	m.lastTransition = now
	m.publishLocked(prev, next, now)
}

func (m *Manager) deriveStateLocked(now time.Time) State {
	if m.battery <= m.batteryCritical {
		return Critical
	}

	low := m.batteryLow
	if m.state == Background {
		low += m.batteryHyst
	}
	if m.battery <= low {
		return Background
	}

	if m.screen == ScreenOff && now.Sub(m.screenSince) >= m.minOffDuration {
		return Background
	}

	if m.background {
		return Inactive
	}
	return Active
}

// State reports the manager's current power state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// ScreenOffRatio reports the time-weighted fraction of the tracking window
// spent with the screen Off, as of now.
func (m *Manager) ScreenOffRatio(now time.Time) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pruneEventsLocked(now)

	windowStart := now.Add(-m.trackingWindow)
	state := m.screen
	at := windowStart
	// Reconstruct the state at windowStart from the event ring, then walk
	// forward through it to accumulate off-time.
	events := m.events
	// Determine the state in effect at windowStart: the state just before
	// the first event still in the window, or the current state if the
	// ring holds no events (it has not changed within the window).
	if len(events) > 0 {
		state = flipScreenState(events[0].state)
	}

	var offDuration time.Duration
	cursor := at
	for _, e := range events {
		if state == ScreenOff {
			offDuration += e.at.Sub(cursor)
		}
		cursor = e.at
		state = e.state
	}
	if state == ScreenOff {
		offDuration += now.Sub(cursor)
	}

	total := now.Sub(windowStart)
	if total <= 0 {
		return 0
	}
	ratio := offDuration.Seconds() / total.Seconds()
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	return ratio
}

func flipScreenState(s ScreenState) ScreenState {
	if s == ScreenOff {
		return ScreenOn
	}
	return ScreenOff
}
