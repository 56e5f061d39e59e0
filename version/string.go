// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package version

import "fmt"

// String returns a single line description of the toolbox version.
func (v *Versions) String() string {
	format := "%s [avalanchego=%s"
	args := []interface{}{
		v.Application,
		v.Avalanchego,
	}
	if v.Commit != "" {
		format += ", commit=%s"
		args = append(args, v.Commit)
	}
	format += "]"
	return fmt.Sprintf(format, args...)
}
