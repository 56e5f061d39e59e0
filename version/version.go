// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package version

import (
	"fmt"
	"sync/atomic"
)

// Semantic is a semantic version without pre-release or build metadata.
type Semantic struct {
	Major int `json:"major" yaml:"major"`
	Minor int `json:"minor" yaml:"minor"`
	Patch int `json:"patch" yaml:"patch"`

	str atomic.Value
}

// String returns the version formatted as vMajor.Minor.Patch.
func (s *Semantic) String() string {
	strIntf := s.str.Load()
	if strIntf != nil {
		return strIntf.(string)
	}

	str := fmt.Sprintf(
		"v%d.%d.%d",
		s.Major,
		s.Minor,
		s.Patch,
	)
	s.str.Store(str)
	return str
}

// Compare returns
//   - 1 if s > o
//   - 0 if s == o
//   - -1 if s < o
func (s *Semantic) Compare(o *Semantic) int {
	switch {
	case s.Major != o.Major:
		return compareInts(s.Major, o.Major)
	case s.Minor != o.Minor:
		return compareInts(s.Minor, o.Minor)
	default:
		return compareInts(s.Patch, o.Patch)
	}
}

func compareInts(a, b int) int {
	switch {
	case a > b:
		return 1
	case a < b:
		return -1
	default:
		return 0
	}
}
