// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/ava-labs/l1-toolbox/api/info"
	"github.com/ava-labs/l1-toolbox/utils/rpc"
	"github.com/ava-labs/l1-toolbox/version"
)

// nodeOptions are sent along every call to the API of a node.
func nodeOptions() []rpc.Option {
	return []rpc.Option{
		rpc.WithUserAgent(version.GetVersions().Application),
	}
}

// verifyNode checks that the node behind [c] runs the configured network
// and, if [minimum] is set, a release at least as recent.
func verifyNode(ctx context.Context, r *runtime, c *info.Client, minimum *version.Semantic) error {
	options := nodeOptions()
	if err := info.VerifyNetwork(ctx, c, r.config.NetworkID, options...); err != nil {
		return err
	}
	if minimum == nil {
		return nil
	}
	nodeVersion, err := info.VerifyVersion(ctx, c, minimum, options...)
	if err != nil {
		return err
	}
	r.log.Debug("verified node version",
		zap.Stringer("version", nodeVersion),
		zap.Stringer("minimum", minimum),
	)
	return nil
}
