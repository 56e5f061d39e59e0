// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package info

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/l1-toolbox/utils/rpc"
	"github.com/ava-labs/l1-toolbox/version"

	avajson "github.com/ava-labs/avalanchego/utils/json"
)

// Endpoint of the info API of an avalanchego node.
const Endpoint = "/ext/info"

var (
	ErrWrongNetwork = errors.New("node is on another network")
	ErrOutdatedNode = errors.New("node version is too old")
)

type GetNetworkIDReply struct {
	NetworkID avajson.Uint32 `json:"networkID"`
}

type GetNodeVersionReply struct {
	Version            string            `json:"version"`
	DatabaseVersion    string            `json:"databaseVersion"`
	RPCProtocolVersion avajson.Uint32    `json:"rpcProtocolVersion"`
	GitCommit          string            `json:"gitCommit"`
	VMVersions         map[string]string `json:"vmVersions"`
}

type IsBootstrappedArgs struct {
	Chain string `json:"chain"`
}

type IsBootstrappedResponse struct {
	IsBootstrapped bool `json:"isBootstrapped"`
}

// nodeIDResponse is the envelope operators copy from the output of
// info.getNodeID.
type nodeIDResponse struct {
	Result json.RawMessage `json:"result"`
}

// Client for the info API of the nodes an operator runs.
type Client struct {
	Requester rpc.EndpointRequester
}

func NewClient(uri string) *Client {
	return &Client{Requester: rpc.NewEndpointRequester(
		uri,
		Endpoint,
	)}
}

// GetNodeID returns the node ID and proof of possession of the node wrapped
// the way info.getNodeID responds, so it can be parsed like a pasted node
// info.
func (c *Client) GetNodeID(ctx context.Context, options ...rpc.Option) ([]byte, error) {
	var res json.RawMessage
	if err := c.Requester.SendRequest(ctx, "info.getNodeID", struct{}{}, &res, options...); err != nil {
		return nil, err
	}
	return json.Marshal(nodeIDResponse{Result: res})
}

func (c *Client) GetNetworkID(ctx context.Context, options ...rpc.Option) (uint32, error) {
	res := &GetNetworkIDReply{}
	err := c.Requester.SendRequest(ctx, "info.getNetworkID", struct{}{}, res, options...)
	return uint32(res.NetworkID), err
}

func (c *Client) GetNodeVersion(ctx context.Context, options ...rpc.Option) (*GetNodeVersionReply, error) {
	res := &GetNodeVersionReply{}
	err := c.Requester.SendRequest(ctx, "info.getNodeVersion", struct{}{}, res, options...)
	return res, err
}

// VerifyNetwork returns ErrWrongNetwork unless the node runs [networkID].
func VerifyNetwork(ctx context.Context, c *Client, networkID uint32, options ...rpc.Option) error {
	nodeNetworkID, err := c.GetNetworkID(ctx, options...)
	if err != nil {
		return fmt.Errorf("couldn't fetch network ID: %w", err)
	}
	if nodeNetworkID != networkID {
		return fmt.Errorf("%w: expected %d but got %d", ErrWrongNetwork, networkID, nodeNetworkID)
	}
	return nil
}

// VerifyVersion returns the version of the node, or ErrOutdatedNode if it is
// older than [minimum].
func VerifyVersion(ctx context.Context, c *Client, minimum *version.Semantic, options ...rpc.Option) (*version.Semantic, error) {
	reply, err := c.GetNodeVersion(ctx, options...)
	if err != nil {
		return nil, fmt.Errorf("couldn't fetch node version: %w", err)
	}
	nodeVersion, err := version.ParseApplication(reply.Version)
	if err != nil {
		return nil, err
	}
	if nodeVersion.Compare(minimum) < 0 {
		return nodeVersion, fmt.Errorf("%w: %s is older than %s", ErrOutdatedNode, nodeVersion, minimum)
	}
	return nodeVersion, nil
}

func (c *Client) IsBootstrapped(ctx context.Context, chainID string, options ...rpc.Option) (bool, error) {
	res := &IsBootstrappedResponse{}
	err := c.Requester.SendRequest(ctx, "info.isBootstrapped", &IsBootstrappedArgs{
		Chain: chainID,
	}, res, options...)
	return res.IsBootstrapped, err
}

// AwaitBootstrapped polls the node every [freq] until [chainID] is
// bootstrapped. Only returns an error if [ctx] returns an error.
func AwaitBootstrapped(ctx context.Context, c *Client, chainID ids.ID, freq time.Duration, options ...rpc.Option) (bool, error) {
	ticker := time.NewTicker(freq)
	defer ticker.Stop()

	for {
		res, err := c.IsBootstrapped(ctx, chainID.String(), options...)
		if err == nil && res {
			return true, nil
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
}
