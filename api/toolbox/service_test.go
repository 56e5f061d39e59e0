// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package toolbox

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ava-labs/libevm/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/constants"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/vms/platformvm/txs"

	"github.com/ava-labs/l1-toolbox/conversion"
	"github.com/ava-labs/l1-toolbox/genesis"
	"github.com/ava-labs/l1-toolbox/glacier"
	"github.com/ava-labs/l1-toolbox/pchain"
	"github.com/ava-labs/l1-toolbox/store"
	"github.com/ava-labs/l1-toolbox/version"
	"github.com/ava-labs/l1-toolbox/wizard"

	avajson "github.com/ava-labs/avalanchego/utils/json"
)

type fakePChain struct {
	balance pchain.Balance
}

func (f *fakePChain) GetBalance(context.Context, []string) (*pchain.Balance, error) {
	balance := f.balance
	return &balance, nil
}

func (*fakePChain) GetTx(context.Context, ids.ID) (*txs.Tx, error) {
	return nil, errNotEnabled
}

type fakeLookup struct {
	subnet *glacier.Subnet
}

func (f *fakeLookup) LookupSubnet(_ context.Context, subnetID ids.ID) (*glacier.Subnet, string, error) {
	if subnetID != f.subnet.SubnetID {
		return nil, "", glacier.ErrNotFound
	}
	return f.subnet, glacier.Mainnet, nil
}

func (*fakeLookup) LookupBlockchain(context.Context, ids.ID) (*glacier.Blockchain, string, error) {
	return nil, "", glacier.ErrNotFound
}

func newTestClient(t *testing.T, config Config) Client {
	t.Helper()

	config.Log = logging.NoLog{}
	config.NetworkID = constants.FujiID
	handler, err := NewService(config)
	require.NoError(t, err)

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL)
}

func TestGetVersion(t *testing.T) {
	require := require.New(t)

	client := newTestClient(t, Config{})
	v, err := client.GetVersion(context.Background())
	require.NoError(err)
	require.Equal(version.GetVersions(), v)
}

func TestGenerateGenesis(t *testing.T) {
	require := require.New(t)

	client := newTestClient(t, Config{})
	addr := common.HexToAddress("0xabc0000000000000000000000000000000000abc")
	b, err := client.GenerateGenesis(context.Background(), &genesis.Params{
		EVMChainID: 12345,
		Allocations: []genesis.Allocation{
			{Address: addr, Amount: uint256.NewInt(1000)},
		},
	})
	require.NoError(err)

	var g genesis.Genesis
	require.NoError(json.Unmarshal(b, &g))
	require.Equal(uint64(12345), g.Config.ChainID)
	account, ok := g.Account(addr)
	require.True(ok)
	require.Equal("0x3e8", account.Balance)

	_, err = client.GenerateGenesis(context.Background(), &genesis.Params{})
	require.ErrorContains(err, genesis.ErrInvalidChainID.Error())
}

func TestWizard(t *testing.T) {
	require := require.New(t)

	w, err := wizard.New(logging.NoLog{}, wizard.DefaultFlow(), store.New(memdb.New(), constants.FujiName))
	require.NoError(err)
	client := newTestClient(t, Config{Wizard: w})
	ctx := context.Background()

	state, err := client.GetWizardState(ctx)
	require.NoError(err)
	require.Equal(wizard.ChainParametersStep, state.Current)
	require.NotEmpty(state.Blocker)
	require.Len(state.Steps, w.Flow().Len())
	require.Equal("Create Chain", state.Steps[0].Group)

	_, err = client.NextStep(ctx)
	require.ErrorContains(err, wizard.ErrInvalidValue.Error())

	_, err = client.SetWizardValue(ctx, wizard.ChainNameKey, "mychain")
	require.NoError(err)
	state, err = client.SetWizardValue(ctx, wizard.EVMChainIDKey, "12345")
	require.NoError(err)
	require.Empty(state.Blocker)

	state, err = client.NextStep(ctx)
	require.NoError(err)
	require.Equal(wizard.GenesisStep, state.Current)
	require.Equal(wizard.GenesisStep, state.MaxAdvanced)

	state, err = client.PreviousStep(ctx)
	require.NoError(err)
	require.Equal(wizard.ChainParametersStep, state.Current)
	require.Equal(wizard.GenesisStep, state.MaxAdvanced)

	state, err = client.GoToStep(ctx, wizard.GenesisStep)
	require.NoError(err)
	require.Equal(wizard.GenesisStep, state.Current)

	_, err = client.GoToStep(ctx, wizard.ConvertStep)
	require.ErrorContains(err, wizard.ErrNotReached.Error())

	state, err = client.ResetWizard(ctx)
	require.NoError(err)
	require.Equal(wizard.ChainParametersStep, state.Current)
	require.Empty(state.Values)
}

func TestNotEnabled(t *testing.T) {
	require := require.New(t)

	client := newTestClient(t, Config{})
	ctx := context.Background()

	_, err := client.GetWizardState(ctx)
	require.ErrorContains(err, errNotEnabled.Error())
	_, err = client.GetConversionState(ctx)
	require.ErrorContains(err, errNotEnabled.Error())
	_, err = client.GetBalance(ctx, nil)
	require.ErrorContains(err, errNotEnabled.Error())
	_, err = client.LookupSubnet(ctx, ids.GenerateTestID())
	require.ErrorContains(err, errNotEnabled.Error())
}

func TestGetNodeCommands(t *testing.T) {
	require := require.New(t)

	client := newTestClient(t, Config{})
	subnetID := ids.GenerateTestID()
	chainID := ids.GenerateTestID()

	reply, err := client.GetNodeCommands(context.Background(), &NodeCommandsArgs{
		SubnetIDs: []string{subnetID.String()},
		ChainID:   chainID,
		RPC:       true,
		Domain:    "rpc.example.com",
	})
	require.NoError(err)
	require.Contains(reply.Docker, subnetID.String())
	require.Contains(reply.ChainConfig, chainID.String())
	require.Contains(reply.Caddyfile, "rpc.example.com")
	require.True(strings.Contains(reply.Compose, "caddy"))
	require.NotEmpty(reply.HealthCheck)
	require.NotEmpty(reply.NodeID)

	reply, err = client.GetNodeCommands(context.Background(), &NodeCommandsArgs{
		SubnetIDs: []string{subnetID.String()},
	})
	require.NoError(err)
	require.NotContains(reply.Docker, "HTTP_ALLOWED_HOSTS")
	require.Empty(reply.ChainConfig)
	require.Empty(reply.Caddyfile)
	require.Empty(reply.Compose)

	_, err = client.GetNodeCommands(context.Background(), &NodeCommandsArgs{
		SubnetIDs: []string{"not an id"},
	})
	require.ErrorContains(err, "invalid subnet ID")
}

func TestGetConversionState(t *testing.T) {
	require := require.New(t)

	workflow, err := conversion.New(
		logging.NoLog{},
		conversion.Config{NetworkID: constants.FujiID},
		conversion.Backends{},
		store.New(memdb.New(), constants.FujiName),
	)
	require.NoError(err)
	subnetID := ids.GenerateTestID()
	chainID := ids.GenerateTestID()
	managerAddress := common.HexToAddress("0xfacade0000000000000000000000000000000000")
	require.NoError(workflow.Configure(subnetID, chainID, managerAddress))

	client := newTestClient(t, Config{Conversion: workflow})
	state, err := client.GetConversionState(context.Background())
	require.NoError(err)
	require.Equal(subnetID, state.SubnetID)
	require.Equal(chainID, state.ChainID)
	require.Equal(managerAddress, state.ManagerAddress)
	require.Equal(conversion.AddNodeStep, state.Next)
}

func TestGetBalanceAndLookup(t *testing.T) {
	require := require.New(t)

	subnet := &glacier.Subnet{
		SubnetID: ids.GenerateTestID(),
		IsL1:     true,
	}
	client := newTestClient(t, Config{
		PChain: &fakePChain{balance: pchain.Balance{
			Balance:  avajson.Uint64(5),
			Unlocked: avajson.Uint64(3),
		}},
		Glacier: &fakeLookup{subnet: subnet},
	})
	ctx := context.Background()

	balance, err := client.GetBalance(ctx, []string{"P-fuji1test"})
	require.NoError(err)
	require.Equal(avajson.Uint64(5), balance.Balance)
	require.Equal(avajson.Uint64(3), balance.Unlocked)

	reply, err := client.LookupSubnet(ctx, subnet.SubnetID)
	require.NoError(err)
	require.Equal(glacier.Mainnet, reply.Network)
	require.Equal(subnet.SubnetID, reply.Subnet.SubnetID)
	require.True(reply.Subnet.IsL1)

	_, err = client.LookupSubnet(ctx, ids.GenerateTestID())
	require.ErrorContains(err, glacier.ErrNotFound.Error())
}
