// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"slices"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func progressCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "progress",
		Short: "Inspects the progress saved for the configured network",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Prints the name of every saved store",
		RunE: withRuntime(func(c *cobra.Command, r *runtime, _ []string) error {
			s, err := r.Store()
			if err != nil {
				return err
			}
			names, err := s.Names()
			if err != nil {
				return err
			}
			slices.Sort(names)
			for _, name := range names {
				printLine(c, name)
			}
			return nil
		}),
	}

	reset := &cobra.Command{
		Use:   "reset",
		Short: "Forgets the wizard and conversion progress of the network",
		RunE: withRuntime(func(_ *cobra.Command, r *runtime, _ []string) error {
			s, err := r.Store()
			if err != nil {
				return err
			}
			if err := s.Reset(); err != nil {
				return err
			}
			r.log.Info("reset saved progress", zap.String("network", s.Network()))
			return nil
		}),
	}

	c.AddCommand(list, reset)
	return c
}
