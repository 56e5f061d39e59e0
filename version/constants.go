// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package version

import avagoversion "github.com/ava-labs/avalanchego/version"

const Client = "l1-toolbox"

var (
	Current = &Semantic{
		Major: 0,
		Minor: 3,
		Patch: 0,
	}

	// MinimumConversionNode is the first avalanchego release accepting
	// ConvertSubnetToL1Tx.
	MinimumConversionNode = &Semantic{
		Major: 1,
		Minor: 12,
		Patch: 0,
	}

	// GitCommit is set by the build script
	GitCommit string
)

// Versions is the reply of the version command and the toolbox.getVersion
// API.
type Versions struct {
	Application string `json:"application"`
	Avalanchego string `json:"avalanchego"`
	Commit      string `json:"commit"`
}

// GetVersions returns the toolbox version along with the avalanchego library
// it was built against.
func GetVersions() *Versions {
	return &Versions{
		Application: Client + "/" + Current.String()[1:],
		Avalanchego: avagoversion.Current.String(),
		Commit:      GitCommit,
	}
}
