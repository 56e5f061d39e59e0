// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package wizard

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownStep   = errors.New("unknown step")
	errEmptyFlow     = errors.New("flow has no steps")
	errDuplicateStep = errors.New("duplicate step")
)

type StepID string

// Step is one screen of the launch flow. [Guard] must hold before the
// operator may leave the step forward. A nil guard always holds.
type Step struct {
	ID    StepID
	Title string
	Group string
	Guard Guard
}

type Group struct {
	Name  string
	Steps []Step
}

// Flow is an ordered list of steps. Steps of a group are contiguous.
type Flow struct {
	steps []Step
	index map[StepID]int
}

// NewFlow returns the flow that visits the steps of [groups] in order.
func NewFlow(groups ...Group) (*Flow, error) {
	f := &Flow{
		index: make(map[StepID]int),
	}
	for _, group := range groups {
		for _, step := range group.Steps {
			if _, ok := f.index[step.ID]; ok {
				return nil, fmt.Errorf("%w: %s", errDuplicateStep, step.ID)
			}
			step.Group = group.Name
			f.index[step.ID] = len(f.steps)
			f.steps = append(f.steps, step)
		}
	}
	if len(f.steps) == 0 {
		return nil, errEmptyFlow
	}
	return f, nil
}

func (f *Flow) Len() int {
	return len(f.steps)
}

func (f *Flow) First() Step {
	return f.steps[0]
}

// Last is the terminal step of the flow.
func (f *Flow) Last() Step {
	return f.steps[len(f.steps)-1]
}

// Index returns the position of [id] in the flow.
func (f *Flow) Index(id StepID) (int, error) {
	i, ok := f.index[id]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownStep, id)
	}
	return i, nil
}

func (f *Flow) Step(id StepID) (Step, error) {
	i, err := f.Index(id)
	if err != nil {
		return Step{}, err
	}
	return f.steps[i], nil
}

// At returns the step at position [i].
func (f *Flow) At(i int) Step {
	return f.steps[i]
}

// Groups returns the steps of the flow grouped in order.
func (f *Flow) Groups() []Group {
	var groups []Group
	for _, step := range f.steps {
		if len(groups) == 0 || groups[len(groups)-1].Name != step.Group {
			groups = append(groups, Group{Name: step.Group})
		}
		last := &groups[len(groups)-1]
		last.Steps = append(last.Steps, step)
	}
	return groups
}
