// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package version

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// NodeApplication prefixes the version reported by avalanchego nodes.
const NodeApplication = "avalanchego/"

var (
	errMissingVersionPrefix     = errors.New("missing required version prefix")
	errMissingApplicationPrefix = errors.New("missing required application prefix")
	errMissingVersions          = errors.New("missing version numbers")
)

// Parse parses a version string of the form vMajor.Minor.Patch.
func Parse(s string) (*Semantic, error) {
	if !strings.HasPrefix(s, "v") {
		return nil, fmt.Errorf("%w: %q", errMissingVersionPrefix, s)
	}

	major, minor, patch, err := parseVersions(s[1:])
	if err != nil {
		return nil, err
	}

	return &Semantic{
		Major: major,
		Minor: minor,
		Patch: patch,
	}, nil
}

// ParseApplication parses the version reported by info.getNodeVersion, of the
// form avalanchego/Major.Minor.Patch.
func ParseApplication(s string) (*Semantic, error) {
	if !strings.HasPrefix(s, NodeApplication) {
		return nil, fmt.Errorf("%w: %q", errMissingApplicationPrefix, s)
	}

	return Parse("v" + s[len(NodeApplication):])
}

func parseVersions(s string) (int, int, int, error) {
	splitVersion := strings.SplitN(s, ".", 3)
	if numSeperators := len(splitVersion); numSeperators != 3 {
		return 0, 0, 0, fmt.Errorf("%w: expected 3 only got %d",
			errMissingVersions,
			numSeperators,
		)
	}

	major, err := strconv.Atoi(splitVersion[0])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to parse major version: %w", err)
	}

	minor, err := strconv.Atoi(splitVersion[1])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to parse minor version: %w", err)
	}

	patch, err := strconv.Atoi(splitVersion[2])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to parse patch version: %w", err)
	}

	return major, minor, patch, nil
}
