// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"github.com/spf13/cobra"

	"github.com/ava-labs/l1-toolbox/version"
)

const jsonKey = "json"

func versionCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "version",
		Short: "Prints the version",
		RunE: func(c *cobra.Command, _ []string) error {
			asJSON, err := c.Flags().GetBool(jsonKey)
			if err != nil {
				return err
			}
			versions := version.GetVersions()
			if asJSON {
				return printJSON(c, versions)
			}
			printLine(c, versions.String())
			return nil
		},
	}
	c.Flags().Bool(jsonKey, false, "Prints the versions as json")
	return c
}
