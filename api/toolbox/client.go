// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package toolbox

import (
	"context"

	"github.com/ava-labs/avalanchego/api"
	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/l1-toolbox/genesis"
	"github.com/ava-labs/l1-toolbox/pchain"
	"github.com/ava-labs/l1-toolbox/utils/rpc"
	"github.com/ava-labs/l1-toolbox/version"
	"github.com/ava-labs/l1-toolbox/wizard"
)

var _ Client = (*client)(nil)

// Client interface for the toolbox API Endpoint
type Client interface {
	GetVersion(ctx context.Context, options ...rpc.Option) (*version.Versions, error)
	GenerateGenesis(ctx context.Context, params *genesis.Params, options ...rpc.Option) ([]byte, error)
	GetWizardState(ctx context.Context, options ...rpc.Option) (*WizardState, error)
	SetWizardValue(ctx context.Context, key, value string, options ...rpc.Option) (*WizardState, error)
	NextStep(ctx context.Context, options ...rpc.Option) (*WizardState, error)
	PreviousStep(ctx context.Context, options ...rpc.Option) (*WizardState, error)
	GoToStep(ctx context.Context, step wizard.StepID, options ...rpc.Option) (*WizardState, error)
	ResetWizard(ctx context.Context, options ...rpc.Option) (*WizardState, error)
	GetNodeCommands(ctx context.Context, args *NodeCommandsArgs, options ...rpc.Option) (*NodeCommandsReply, error)
	GetConversionState(ctx context.Context, options ...rpc.Option) (*ConversionState, error)
	GetBalance(ctx context.Context, addrs []string, options ...rpc.Option) (*pchain.Balance, error)
	LookupSubnet(ctx context.Context, subnetID ids.ID, options ...rpc.Option) (*LookupSubnetReply, error)
	LookupBlockchain(ctx context.Context, blockchainID ids.ID, options ...rpc.Option) (*LookupBlockchainReply, error)
}

// Client implementation for the toolbox API Endpoint
type client struct {
	requester rpc.EndpointRequester
}

// NewClient returns a new toolbox API Client
func NewClient(uri string) Client {
	return &client{requester: rpc.NewEndpointRequester(
		uri,
		Endpoint,
	)}
}

func (c *client) GetVersion(ctx context.Context, options ...rpc.Option) (*version.Versions, error) {
	res := &version.Versions{}
	err := c.requester.SendRequest(ctx, "toolbox.getVersion", struct{}{}, res, options...)
	return res, err
}

func (c *client) GenerateGenesis(ctx context.Context, params *genesis.Params, options ...rpc.Option) ([]byte, error) {
	res := &GenerateGenesisReply{}
	err := c.requester.SendRequest(ctx, "toolbox.generateGenesis", params, res, options...)
	return res.Genesis, err
}

func (c *client) GetWizardState(ctx context.Context, options ...rpc.Option) (*WizardState, error) {
	res := &WizardState{}
	err := c.requester.SendRequest(ctx, "toolbox.getWizardState", struct{}{}, res, options...)
	return res, err
}

func (c *client) SetWizardValue(ctx context.Context, key, value string, options ...rpc.Option) (*WizardState, error) {
	res := &WizardState{}
	err := c.requester.SendRequest(ctx, "toolbox.setWizardValue", &SetWizardValueArgs{
		Key:   key,
		Value: value,
	}, res, options...)
	return res, err
}

func (c *client) NextStep(ctx context.Context, options ...rpc.Option) (*WizardState, error) {
	res := &WizardState{}
	err := c.requester.SendRequest(ctx, "toolbox.nextStep", struct{}{}, res, options...)
	return res, err
}

func (c *client) PreviousStep(ctx context.Context, options ...rpc.Option) (*WizardState, error) {
	res := &WizardState{}
	err := c.requester.SendRequest(ctx, "toolbox.previousStep", struct{}{}, res, options...)
	return res, err
}

func (c *client) GoToStep(ctx context.Context, step wizard.StepID, options ...rpc.Option) (*WizardState, error) {
	res := &WizardState{}
	err := c.requester.SendRequest(ctx, "toolbox.goToStep", &GoToStepArgs{Step: step}, res, options...)
	return res, err
}

func (c *client) ResetWizard(ctx context.Context, options ...rpc.Option) (*WizardState, error) {
	res := &WizardState{}
	err := c.requester.SendRequest(ctx, "toolbox.resetWizard", struct{}{}, res, options...)
	return res, err
}

func (c *client) GetNodeCommands(ctx context.Context, args *NodeCommandsArgs, options ...rpc.Option) (*NodeCommandsReply, error) {
	res := &NodeCommandsReply{}
	err := c.requester.SendRequest(ctx, "toolbox.getNodeCommands", args, res, options...)
	return res, err
}

func (c *client) GetConversionState(ctx context.Context, options ...rpc.Option) (*ConversionState, error) {
	res := &ConversionState{}
	err := c.requester.SendRequest(ctx, "toolbox.getConversionState", struct{}{}, res, options...)
	return res, err
}

func (c *client) GetBalance(ctx context.Context, addrs []string, options ...rpc.Option) (*pchain.Balance, error) {
	res := &pchain.Balance{}
	err := c.requester.SendRequest(ctx, "toolbox.getBalance", &api.JSONAddresses{
		Addresses: addrs,
	}, res, options...)
	return res, err
}

func (c *client) LookupSubnet(ctx context.Context, subnetID ids.ID, options ...rpc.Option) (*LookupSubnetReply, error) {
	res := &LookupSubnetReply{}
	err := c.requester.SendRequest(ctx, "toolbox.lookupSubnet", &LookupArgs{ID: subnetID}, res, options...)
	return res, err
}

func (c *client) LookupBlockchain(ctx context.Context, blockchainID ids.ID, options ...rpc.Option) (*LookupBlockchainReply, error) {
	res := &LookupBlockchainReply{}
	err := c.requester.SendRequest(ctx, "toolbox.lookupBlockchain", &LookupArgs{ID: blockchainID}, res, options...)
	return res, err
}
