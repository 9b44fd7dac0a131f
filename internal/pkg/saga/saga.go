// Package saga runs a sequence of steps against stores that share no
// transaction and undoes the completed steps when a later one fails.
package saga

import (
	"context"

	"github.com/gofiber/fiber/v2/log"
)

// State is a named point in a saga's lifecycle.
type State string

const (
	StateInit         State = "INIT"
	StateCompensating State = "COMPENSATING"
	StateFailed       State = "FAILED"
)

// Step is one unit of work. Reached is recorded in the history once Do
// succeeds. Undo is optional and only runs for completed steps.
type Step struct {
	Name    string
	Reached State
	Do      func(ctx context.Context) error
	Undo    func(ctx context.Context) error
}

// Hooks receive saga outcomes. Both fields are optional.
type Hooks struct {
	// Finished is called once per run with the final state.
	Finished func(saga string, final State, compensated bool)
	// CompensationFailed is called for every undo that returned an error.
	CompensationFailed func(saga, step string, err error)
}

// Saga executes its steps in order. A Saga is single use.
type Saga struct {
	name    string
	steps   []Step
	hooks   Hooks
	history []State
}

// New creates a saga with the given name used in logs and hooks.
func New(name string, hooks Hooks) *Saga {
	return &Saga{name: name, hooks: hooks, history: []State{StateInit}}
}

// Add appends a step.
func (s *Saga) Add(step Step) *Saga {
	s.steps = append(s.steps, step)
	return s
}

// Run executes the steps. On failure the completed steps are undone in
// reverse order and the error of the failing step is returned unchanged.
// Undo errors are logged and reported to the hooks only.
func (s *Saga) Run(ctx context.Context) error {
	for i, step := range s.steps {
		if err := step.Do(ctx); err != nil {
			s.compensate(ctx, i)
			s.transition(StateFailed)
			s.finished()
			return err
		}
		if step.Reached != "" {
			s.transition(step.Reached)
		}
	}
	s.finished()
	return nil
}

func (s *Saga) compensate(ctx context.Context, failed int) {
	undo := make([]Step, 0, failed)
	for i := failed - 1; i >= 0; i-- {
		if s.steps[i].Undo != nil {
			undo = append(undo, s.steps[i])
		}
	}
	if len(undo) == 0 {
		return
	}

	s.transition(StateCompensating)
	// cleanup must run even when the request was cancelled
	cctx := context.WithoutCancel(ctx)
	for _, step := range undo {
		if err := step.Undo(cctx); err != nil {
			log.Errorf("[Saga] %s: compensation of %s failed: %v", s.name, step.Name, err)
			if s.hooks.CompensationFailed != nil {
				s.hooks.CompensationFailed(s.name, step.Name, err)
			}
			continue
		}
		log.Infof("[Saga] %s: compensated %s", s.name, step.Name)
	}
}

func (s *Saga) transition(to State) {
	s.history = append(s.history, to)
}

func (s *Saga) finished() {
	if s.hooks.Finished != nil {
		s.hooks.Finished(s.name, s.State(), s.Compensated())
	}
}

// State returns the current state.
func (s *Saga) State() State {
	return s.history[len(s.history)-1]
}

// History returns every state the saga passed through, starting at INIT.
func (s *Saga) History() []State {
	out := make([]State, len(s.history))
	copy(out, s.history)
	return out
}

// Compensated reports whether the run entered compensation.
func (s *Saga) Compensated() bool {
	for _, st := range s.history {
		if st == StateCompensating {
			return true
		}
	}
	return false
}
