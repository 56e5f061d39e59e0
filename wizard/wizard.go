// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package wizard

import (
	"errors"
	"fmt"
	"maps"
	"sync"

	"go.uber.org/zap"

	"github.com/ava-labs/avalanchego/utils/logging"

	"github.com/ava-labs/l1-toolbox/store"
)

// StoreName is the store the wizard state is persisted under.
const StoreName = "wizard"

var (
	ErrTerminalStep = errors.New("already at the last step")
	ErrNotReached   = errors.New("step not reached yet")
)

type state struct {
	Progress Progress `json:"progress"`
	Values   Values   `json:"values"`
}

// Wizard walks an operator through a [Flow], persisting progress and the
// collected values after every change.
type Wizard struct {
	log   logging.Logger
	flow  *Flow
	store *store.Store

	lock  sync.Mutex
	state state
}

// New loads the wizard state of [s], or starts at the first step of [flow]
// if nothing was stored or the stored steps are not part of [flow].
func New(log logging.Logger, flow *Flow, s *store.Store) (*Wizard, error) {
	w := &Wizard{
		log:   log,
		flow:  flow,
		store: s,
	}
	err := s.Get(StoreName, &w.state)
	switch {
	case store.IsNotFound(err):
		w.state = w.initialState()
	case err != nil:
		return nil, err
	default:
		if !w.knows(w.state.Progress) {
			log.Warn("discarding wizard progress of an unknown flow",
				zap.String("current", string(w.state.Progress.Current)),
				zap.String("maxAdvanced", string(w.state.Progress.MaxAdvanced)),
			)
			w.state = w.initialState()
		}
		if w.state.Values == nil {
			w.state.Values = make(Values)
		}
	}
	return w, nil
}

func (w *Wizard) initialState() state {
	return state{
		Progress: InitialProgress(w.flow),
		Values:   make(Values),
	}
}

func (w *Wizard) knows(p Progress) bool {
	if _, err := w.flow.Index(p.Current); err != nil {
		return false
	}
	_, err := w.flow.Index(p.MaxAdvanced)
	return err == nil
}

func (w *Wizard) Flow() *Flow {
	return w.flow
}

func (w *Wizard) Progress() Progress {
	w.lock.Lock()
	defer w.lock.Unlock()

	return w.state.Progress
}

// Current returns the step the operator is on.
func (w *Wizard) Current() Step {
	w.lock.Lock()
	defer w.lock.Unlock()

	step, _ := w.flow.Step(w.state.Progress.Current)
	return step
}

// CanAdvance returns nil if the current step's guard holds and it is not the
// last step.
func (w *Wizard) CanAdvance() error {
	w.lock.Lock()
	defer w.lock.Unlock()

	_, err := w.nextStep()
	return err
}

func (w *Wizard) nextStep() (Step, error) {
	i, err := w.flow.Index(w.state.Progress.Current)
	if err != nil {
		return Step{}, err
	}
	if i == w.flow.Len()-1 {
		return Step{}, ErrTerminalStep
	}
	current := w.flow.At(i)
	if current.Guard != nil {
		if err := current.Guard(w.state.Values); err != nil {
			return Step{}, fmt.Errorf("can't leave %s: %w", current.ID, err)
		}
	}
	return w.flow.At(i + 1), nil
}

// Next moves to the step following the current one.
func (w *Wizard) Next() (Step, error) {
	w.lock.Lock()
	defer w.lock.Unlock()

	next, err := w.nextStep()
	if err != nil {
		return Step{}, err
	}
	if err := w.advanceTo(next.ID); err != nil {
		return Step{}, err
	}
	return next, nil
}

// Back moves to the step preceding the current one. The first step stays put.
func (w *Wizard) Back() (Step, error) {
	w.lock.Lock()
	defer w.lock.Unlock()

	i, err := w.flow.Index(w.state.Progress.Current)
	if err != nil {
		return Step{}, err
	}
	if i > 0 {
		i--
	}
	previous := w.flow.At(i)
	return previous, w.advanceTo(previous.ID)
}

// GoTo jumps to any step that was reached before.
func (w *Wizard) GoTo(id StepID) error {
	w.lock.Lock()
	defer w.lock.Unlock()

	target, err := w.flow.Index(id)
	if err != nil {
		return err
	}
	maxAdvanced, err := w.flow.Index(w.state.Progress.MaxAdvanced)
	if err != nil {
		return err
	}
	if target > maxAdvanced {
		return fmt.Errorf("%w: %s", ErrNotReached, id)
	}
	return w.advanceTo(id)
}

func (w *Wizard) advanceTo(id StepID) error {
	progress := w.state.Progress
	if err := progress.AdvanceTo(w.flow, id); err != nil {
		return err
	}
	if err := w.save(state{Progress: progress, Values: w.state.Values}); err != nil {
		return err
	}
	w.log.Debug("moved to step",
		zap.String("step", string(progress.Current)),
		zap.String("maxAdvanced", string(progress.MaxAdvanced)),
	)
	return nil
}

func (w *Wizard) Get(key string) string {
	w.lock.Lock()
	defer w.lock.Unlock()

	return w.state.Values[key]
}

// Set stores [value] under [key]. An empty value removes the key.
func (w *Wizard) Set(key, value string) error {
	w.lock.Lock()
	defer w.lock.Unlock()

	values := maps.Clone(w.state.Values)
	if len(value) == 0 {
		delete(values, key)
	} else {
		values[key] = value
	}
	return w.save(state{Progress: w.state.Progress, Values: values})
}

// Values returns a copy of every value collected so far.
func (w *Wizard) Values() Values {
	w.lock.Lock()
	defer w.lock.Unlock()

	return maps.Clone(w.state.Values)
}

// Reset forgets every value and returns to the first step.
func (w *Wizard) Reset() error {
	w.lock.Lock()
	defer w.lock.Unlock()

	if err := w.store.Delete(StoreName); err != nil {
		return err
	}
	w.state = w.initialState()
	w.log.Info("wizard reset", zap.String("network", w.store.Network()))
	return nil
}

func (w *Wizard) save(s state) error {
	if err := w.store.Put(StoreName, s); err != nil {
		return fmt.Errorf("couldn't persist wizard: %w", err)
	}
	w.state = s
	return nil
}
