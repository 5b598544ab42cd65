// Package workflow implements the simulated multi-step flows as explicit
// finite state machines. Transitions only move forward: an event fired
// from a state without a matching transition is rejected.
package workflow

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

type (
	State string
	Event string
)

var ErrInvalidTransition = errors.New("invalid transition")

// Transition - user action moving From to To
type Transition struct {
	From  State
	Event Event
	To    State
}

// Timer - automatic move after spending a duration in From
type Timer struct {
	From  State
	After time.Duration
	To    State
}

// Definition - static description of a flow
type Definition struct {
	Name        string
	Initial     State
	Terminal    []State
	Transitions []Transition
	Timers      []Timer
}

// Step - a state and when it was entered
type Step struct {
	State     State
	EnteredAt time.Time
}

// Machine - running instance of a definition, safe for concurrent use.
// Timers are applied lazily whenever the machine is observed.
type Machine struct {
	mu      sync.Mutex
	def     *Definition
	now     func() time.Time
	history []Step
}

func NewMachine(def *Definition, now func() time.Time) *Machine {
	if now == nil {
		now = time.Now
	}
	return &Machine{
		def:     def,
		now:     now,
		history: []Step{{State: def.Initial, EnteredAt: now()}},
	}
}

// State returns the current state after elapsed timers
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tick()
	return m.current().State
}

// Done reports whether the machine reached a terminal state
func (m *Machine) Done() bool {
	return m.def.IsTerminal(m.State())
}

// History returns a copy of the visited states
func (m *Machine) History() []Step {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tick()
	out := make([]Step, len(m.history))
	copy(out, m.history)
	return out
}

// Can reports whether e is accepted in the current state
func (m *Machine) Can(e Event) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tick()
	_, ok := m.def.next(m.current().State, e)
	return ok
}

// Fire applies an event and returns the new state
func (m *Machine) Fire(e Event) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tick()

	from := m.current().State
	to, ok := m.def.next(from, e)
	if !ok {
		return from, fmt.Errorf("%w: %s --%s--> ?", ErrInvalidTransition, from, e)
	}
	m.enter(to, m.now())
	m.tick()
	return m.current().State, nil
}

func (m *Machine) current() Step {
	return m.history[len(m.history)-1]
}

func (m *Machine) enter(s State, at time.Time) {
	m.history = append(m.history, Step{State: s, EnteredAt: at})
}

// tick follows timer chains; a timed state is entered at its deadline
func (m *Machine) tick() {
	now := m.now()
	for {
		cur := m.current()
		t, ok := m.def.timer(cur.State)
		if !ok {
			return
		}
		deadline := cur.EnteredAt.Add(t.After)
		if now.Before(deadline) {
			return
		}
		m.enter(t.To, deadline)
	}
}

func (d *Definition) next(from State, e Event) (State, bool) {
	for _, t := range d.Transitions {
		if t.From == from && t.Event == e {
			return t.To, true
		}
	}
	return "", false
}

func (d *Definition) timer(from State) (Timer, bool) {
	for _, t := range d.Timers {
		if t.From == from {
			return t, true
		}
	}
	return Timer{}, false
}

func (d *Definition) IsTerminal(s State) bool {
	for _, t := range d.Terminal {
		if t == s {
			return true
		}
	}
	return false
}
