// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package pchain reads P-Chain state over the platform JSON-RPC API.
package pchain

import (
	"context"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/formatting"
	"github.com/ava-labs/avalanchego/vms/platformvm/txs"

	"github.com/ava-labs/l1-toolbox/utils/rpc"

	avajson "github.com/ava-labs/avalanchego/utils/json"
)

const Endpoint = "/ext/bc/P"

var (
	_ Reader = (*Client)(nil)

	ErrUnexpectedTxType = errors.New("unexpected tx type")
)

// Reader is the subset of the platform API the toolbox depends on.
type Reader interface {
	GetBalance(ctx context.Context, addrs []string) (*Balance, error)
	GetTx(ctx context.Context, txID ids.ID) (*txs.Tx, error)
}

type GetBalanceArgs struct {
	Addresses []string `json:"addresses"`
}

// Balance is the nAVAX held by a set of addresses.
type Balance struct {
	Balance  avajson.Uint64 `json:"balance"`
	Unlocked avajson.Uint64 `json:"unlocked"`
}

type GetTxArgs struct {
	TxID     ids.ID              `json:"txID"`
	Encoding formatting.Encoding `json:"encoding"`
}

type GetTxReply struct {
	Tx       string              `json:"tx"`
	Encoding formatting.Encoding `json:"encoding"`
}

type Client struct {
	requester rpc.EndpointRequester
}

// NewClient returns a client for the P-Chain of the node at [uri].
func NewClient(uri string) *Client {
	return &Client{
		requester: rpc.NewEndpointRequester(uri, Endpoint),
	}
}

func (c *Client) GetBalance(ctx context.Context, addrs []string) (*Balance, error) {
	res := &Balance{}
	err := c.requester.SendRequest(ctx, "platform.getBalance", &GetBalanceArgs{
		Addresses: addrs,
	}, res)
	return res, err
}

// GetTx fetches and parses the accepted tx [txID].
func (c *Client) GetTx(ctx context.Context, txID ids.ID) (*txs.Tx, error) {
	res := &GetTxReply{}
	err := c.requester.SendRequest(ctx, "platform.getTx", &GetTxArgs{
		TxID:     txID,
		Encoding: formatting.Hex,
	}, res)
	if err != nil {
		return nil, err
	}
	txBytes, err := formatting.Decode(res.Encoding, res.Tx)
	if err != nil {
		return nil, fmt.Errorf("couldn't decode tx %s: %w", txID, err)
	}
	tx, err := txs.Parse(txs.Codec, txBytes)
	if err != nil {
		return nil, fmt.Errorf("couldn't parse tx %s: %w", txID, err)
	}
	return tx, nil
}

// GetConvertSubnetToL1Tx fetches [txID] and returns it if it converted a
// subnet to an L1.
func GetConvertSubnetToL1Tx(ctx context.Context, r Reader, txID ids.ID) (*txs.ConvertSubnetToL1Tx, error) {
	tx, err := r.GetTx(ctx, txID)
	if err != nil {
		return nil, err
	}
	convertTx, ok := tx.Unsigned.(*txs.ConvertSubnetToL1Tx)
	if !ok {
		return nil, fmt.Errorf("%w: %s is a %T", ErrUnexpectedTxType, txID, tx.Unsigned)
	}
	return convertTx, nil
}
