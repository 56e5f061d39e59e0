// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package health

import (
	"context"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/ava-labs/avalanchego/utils/logging"

	"github.com/ava-labs/l1-toolbox/utils/rpc"
)

// Client calls health.health on the toolbox or on an avalanchego node, which
// serve the same API.
type Client struct {
	Requester rpc.EndpointRequester
}

func NewClient(uri string) *Client {
	return &Client{Requester: rpc.NewEndpointRequester(uri, Endpoint)}
}

func (c *Client) Health(ctx context.Context, tags []string, options ...rpc.Option) (*APIReply, error) {
	reply := &APIReply{}
	err := c.Requester.SendRequest(ctx, "health.health", &APIArgs{Tags: tags}, reply, options...)
	return reply, err
}

// Failing returns the sorted names of the checks of [reply] that failed.
func Failing(reply *APIReply) []string {
	var failing []string
	for name, result := range reply.Checks {
		if result.Error != nil {
			failing = append(failing, name)
		}
	}
	slices.Sort(failing)
	return failing
}

// AwaitHealthy polls [c] every [freq] until every check passes and returns
// the healthy reply. Unreachable or unhealthy polls are logged and retried,
// so an error is only returned once [ctx] is done.
func AwaitHealthy(
	ctx context.Context,
	log logging.Logger,
	c *Client,
	freq time.Duration,
	tags []string,
	options ...rpc.Option,
) (*APIReply, error) {
	ticker := time.NewTicker(freq)
	defer ticker.Stop()

	for attempt := 1; ; attempt++ {
		reply, err := c.Health(ctx, tags, options...)
		switch {
		case err != nil:
			log.Debug("health endpoint unreachable",
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
		case reply.Healthy:
			return reply, nil
		default:
			log.Debug("waiting for failing health checks",
				zap.Int("attempt", attempt),
				zap.Strings("failing", Failing(reply)),
			)
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
