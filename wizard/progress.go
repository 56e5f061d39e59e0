// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package wizard

// Progress records where the operator is in a flow and the furthest step they
// have reached. MaxAdvanced only ever moves forward, so revisiting an earlier
// step never loses progress.
type Progress struct {
	Current     StepID `json:"currentStep"`
	MaxAdvanced StepID `json:"maxAdvancedStep"`
}

// InitialProgress places the operator on the first step of [flow].
func InitialProgress(flow *Flow) Progress {
	first := flow.First().ID
	return Progress{
		Current:     first,
		MaxAdvanced: first,
	}
}

// AdvanceTo moves to [id]. If [id] is further than any step reached before,
// the maximum is raised to it.
func (p *Progress) AdvanceTo(flow *Flow, id StepID) error {
	target, err := flow.Index(id)
	if err != nil {
		return err
	}
	maxAdvanced, err := flow.Index(p.MaxAdvanced)
	if err != nil {
		maxAdvanced = 0
	}

	p.Current = id
	if target > maxAdvanced {
		p.MaxAdvanced = id
	} else {
		p.MaxAdvanced = flow.At(maxAdvanced).ID
	}
	return nil
}
