package playback

import (
	"fmt"
	"strings"
	"sync"
)

// State describes the transport state of the player.
type State string

const (
	StateStopped State = "stopped"
	StatePlaying State = "playing"
	StatePaused  State = "paused"
)

// Repeat affects what happens when the current track ends.
type Repeat string

const (
	RepeatNone  Repeat = "none"
	RepeatTrack Repeat = "track"
	RepeatAll   Repeat = "all"
)

// Action tells the caller how to react to a track ending.
type Action int

const (
	// ActionAdvance moves to the next playlist entry; at the end of the
	// playlist the caller stops (RepeatNone) or wraps (RepeatAll).
	ActionAdvance Action = iota
	// ActionRestart replays the current track.
	ActionRestart
)

// Machine is a lightweight deterministic transport state machine.
type Machine struct {
	mu     sync.RWMutex
	state  State
	repeat Repeat
}

// New creates a machine in the stopped state with repeat off.
func New() *Machine {
	return &Machine{
		state:  StateStopped,
		repeat: RepeatNone,
	}
}

// State returns the current transport state.
func (m *Machine) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Repeat returns the current repeat policy.
func (m *Machine) Repeat() Repeat {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.repeat
}

// SetRepeat updates the repeat policy.
func (m *Machine) SetRepeat(mode string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch strings.TrimSpace(strings.ToLower(mode)) {
	case string(RepeatTrack):
		m.repeat = RepeatTrack
	case string(RepeatAll):
		m.repeat = RepeatAll
	default:
		m.repeat = RepeatNone
	}
}

// OnPlay enters playing from any state.
func (m *Machine) OnPlay() {
	m.transition(StatePlaying)
}

// OnPause suspends playback; pausing while stopped stays stopped.
func (m *Machine) OnPause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StatePlaying {
		m.state = StatePaused
	}
}

// OnStop enters stopped from any state.
func (m *Machine) OnStop() {
	m.transition(StateStopped)
}

// OnTrackEnd reports what the caller should do when the current track ends,
// according to the repeat policy.
func (m *Machine) OnTrackEnd() Action {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.repeat == RepeatTrack {
		return ActionRestart
	}
	return ActionAdvance
}

// Force sets the transport state unconditionally.
func (m *Machine) Force(state State) error {
	switch state {
	case StateStopped, StatePlaying, StatePaused:
		m.transition(state)
		return nil
	default:
		return fmt.Errorf("invalid state: %s", state)
	}
}

func (m *Machine) transition(state State) {
	m.mu.Lock()
	m.state = state
	m.mu.Unlock()
}
