// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/ava-labs/l1-toolbox/wizard"
)

func wizardCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "wizard",
		Short: "Walks through the launch of an L1 step by step",
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Prints the steps, the current step and what blocks the next one",
		RunE: withRuntime(func(c *cobra.Command, r *runtime, _ []string) error {
			w, err := r.Wizard()
			if err != nil {
				return err
			}
			asJSON, err := c.Flags().GetBool(jsonKey)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(c, struct {
					Progress wizard.Progress `json:"progress"`
					Values   wizard.Values   `json:"values"`
				}{
					Progress: w.Progress(),
					Values:   w.Values(),
				})
			}
			return printWizard(c.OutOrStdout(), w)
		}),
	}
	status.Flags().Bool(jsonKey, false, "Prints the progress and values as json")

	set := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Stores a value. An empty value removes the key",
		Args:  cobra.ExactArgs(2),
		RunE: withWizard(func(_ *cobra.Command, w *wizard.Wizard, args []string) error {
			return w.Set(args[0], args[1])
		}),
	}

	next := &cobra.Command{
		Use:   "next",
		Short: "Moves to the next step if the current one is complete",
		RunE: withWizard(func(_ *cobra.Command, w *wizard.Wizard, _ []string) error {
			_, err := w.Next()
			return err
		}),
	}

	back := &cobra.Command{
		Use:   "back",
		Short: "Moves to the previous step",
		RunE: withWizard(func(_ *cobra.Command, w *wizard.Wizard, _ []string) error {
			_, err := w.Back()
			return err
		}),
	}

	goTo := &cobra.Command{
		Use:   "goto <step>",
		Short: "Moves to a step that was reached before",
		Args:  cobra.ExactArgs(1),
		RunE: withWizard(func(_ *cobra.Command, w *wizard.Wizard, args []string) error {
			return w.GoTo(wizard.StepID(args[0]))
		}),
	}

	reset := &cobra.Command{
		Use:   "reset",
		Short: "Forgets every value and returns to the first step",
		RunE: withWizard(func(_ *cobra.Command, w *wizard.Wizard, _ []string) error {
			return w.Reset()
		}),
	}

	c.AddCommand(status, set, next, back, goTo, reset)
	return c
}

// withWizard runs [f] on the wizard of the configured network and prints the
// resulting position.
func withWizard(f func(*cobra.Command, *wizard.Wizard, []string) error) func(*cobra.Command, []string) error {
	return withRuntime(func(c *cobra.Command, r *runtime, args []string) error {
		w, err := r.Wizard()
		if err != nil {
			return err
		}
		if err := f(c, w, args); err != nil {
			return err
		}
		printLine(c, "current step:", w.Current().ID)
		return nil
	})
}

func printWizard(out io.Writer, w *wizard.Wizard) error {
	var (
		flow     = w.Flow()
		progress = w.Progress()
	)
	maxAdvanced, err := flow.Index(progress.MaxAdvanced)
	if err != nil {
		return err
	}

	i := 0
	for _, group := range flow.Groups() {
		fmt.Fprintln(out, group.Name)
		for _, step := range group.Steps {
			mark := "[ ]"
			if i <= maxAdvanced {
				mark = "[x]"
			}
			line := fmt.Sprintf("  %s %-26s %s", mark, step.ID, step.Title)
			if step.ID == progress.Current {
				line += "  <- current"
			}
			fmt.Fprintln(out, line)
			i++
		}
	}

	if err := w.CanAdvance(); err != nil {
		fmt.Fprintln(out, "blocked:", err)
	}

	values := w.Values()
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		value := values[key]
		if len(value) > 66 {
			value = value[:63] + "..."
		}
		fmt.Fprintf(out, "%s=%s\n", key, value)
	}
	return nil
}
