package engine

import (
	"github.com/ThePyrotechnic/overwatch-spotify/internal/domain"
)

// StateMachine tracks the confirmed game state and applies hysteresis:
// a candidate must be observed for threshold consecutive polls before it
// is confirmed. Exactly one confirmed state exists at any time, and it is
// only touched by the single poll loop.
type StateMachine struct {
	confirmed domain.GameState
	candidate domain.GameState
	count     int
	threshold int
}

// NewStateMachine creates a machine confirmed at initial. No transition is
// emitted for the very first classification; the first confirmed change
// away from initial is the first event.
func NewStateMachine(initial domain.GameState, threshold int) *StateMachine {
	if threshold < 1 {
		threshold = 1
	}
	return &StateMachine{
		confirmed: initial,
		candidate: initial,
		threshold: threshold,
	}
}

// Confirmed returns the currently accepted state.
func (m *StateMachine) Confirmed() domain.GameState {
	return m.confirmed
}

// Observe feeds one poll's classification into the machine. It returns a
// transition and true exactly when the candidate has been seen threshold
// times in a row and differs from the confirmed state.
//
// StateUnknown never counts toward a transition: a misread frame resets
// the counter instead of confirming a bogus state.
func (m *StateMachine) Observe(candidate domain.GameState) (domain.Transition, bool) {
	if candidate == m.confirmed {
		// Steady state; also cancels any pending candidate.
		m.candidate = candidate
		m.count = 0
		return domain.Transition{}, false
	}

	if candidate == domain.StateUnknown {
		m.candidate = candidate
		m.count = 0
		return domain.Transition{}, false
	}

	if candidate == m.candidate {
		m.count++
	} else {
		m.candidate = candidate
		m.count = 1
	}

	if m.count < m.threshold {
		return domain.Transition{}, false
	}

	t := domain.Transition{From: m.confirmed, To: candidate}
	m.confirmed = candidate
	m.count = 0
	return t, true
}
