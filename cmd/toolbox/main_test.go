// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/l1-toolbox/config"
	"github.com/ava-labs/l1-toolbox/conversion"
	"github.com/ava-labs/l1-toolbox/genesis"
	"github.com/ava-labs/l1-toolbox/nodecmd"
	"github.com/ava-labs/l1-toolbox/version"
	"github.com/ava-labs/l1-toolbox/wizard"
)

const testAllocAddr = "0xabc0000000000000000000000000000000000abc"

// run executes the toolbox with [args] against the data directory [dataDir]
// and returns what it printed.
func run(t *testing.T, dataDir string, args ...string) (string, error) {
	t.Helper()

	c := newRootCommand()
	var out bytes.Buffer
	c.SetOut(&out)
	c.SetErr(io.Discard)
	c.SetIn(strings.NewReader(""))
	c.SetArgs(append(args,
		"--"+config.DataDirKey, dataDir,
		"--"+config.LogDisableDisplayKey,
	))
	err := c.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, dataDir string, args ...string) string {
	t.Helper()

	out, err := run(t, dataDir, args...)
	require.NoError(t, err)
	return out
}

type wizardStatus struct {
	Progress wizard.Progress `json:"progress"`
	Values   wizard.Values   `json:"values"`
}

func readWizard(t *testing.T, dataDir string) wizardStatus {
	t.Helper()

	var status wizardStatus
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, dataDir, "wizard", "status", "--json")), &status))
	return status
}

func TestVersion(t *testing.T) {
	require := require.New(t)

	out := mustRun(t, t.TempDir(), "version")
	require.Contains(out, version.Client+"/"+version.Current.String()[1:])

	var versions version.Versions
	require.NoError(json.Unmarshal([]byte(mustRun(t, t.TempDir(), "version", "--json")), &versions))
	require.Equal(version.GetVersions().Application, versions.Application)
}

func TestGenesisCommand(t *testing.T) {
	require := require.New(t)

	dataDir := t.TempDir()
	out := mustRun(t, dataDir,
		"genesis",
		"--"+EVMChainIDKey, "12345",
		"--"+AllocKey, testAllocAddr+"=1000000000000000000",
		"--"+TimestampKey, "1700000000",
		"--"+txAllowListPrefix+"-admins", "0x0000000000000000000000000000000000000a01",
		"--"+SaveToWizardKey,
	)

	var g genesis.Genesis
	require.NoError(json.Unmarshal([]byte(out), &g))
	require.Equal(uint64(12345), g.Config.ChainID)
	require.Equal("0xde0b6b3a7640000", g.Alloc[testAllocAddr].Balance)
	require.NotNil(g.Config.TxAllowList)
	require.Nil(g.Config.NativeMinter)

	status := readWizard(t, dataDir)
	require.Equal("12345", status.Values[wizard.EVMChainIDKey])
	require.JSONEq(strings.TrimSpace(out), status.Values[wizard.GenesisKey])
}

func TestGenesisCommandParamsFile(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	paramsFile := filepath.Join(dir, "params.json")
	require.NoError(os.WriteFile(paramsFile, []byte(`{
		"evmChainId": 777,
		"tokenAllocations": [{"address": "`+testAllocAddr+`", "amount": "1"}],
		"timestamp": 1
	}`), 0o600))
	output := filepath.Join(dir, "genesis.json")

	out := mustRun(t, dir,
		"genesis",
		"--"+ParamsFileKey, paramsFile,
		"--"+OutputKey, output,
	)
	require.Empty(out)

	b, err := os.ReadFile(output)
	require.NoError(err)
	var g genesis.Genesis
	require.NoError(json.Unmarshal(b, &g))
	require.Equal(uint64(777), g.Config.ChainID)
	require.Equal("0x1", g.Alloc[testAllocAddr].Balance)
	require.Equal(uint64(1), uint64(g.Timestamp))
}

func TestGenesisCommandErrors(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		expectedErr error
	}{
		{
			name:        "missing chain ID",
			args:        []string{"genesis"},
			expectedErr: genesis.ErrInvalidChainID,
		},
		{
			name:        "malformed allocation",
			args:        []string{"genesis", "--" + EVMChainIDKey, "1", "--" + AllocKey, testAllocAddr},
			expectedErr: errMalformedAlloc,
		},
		{
			name:        "invalid owner",
			args:        []string{"genesis", "--" + EVMChainIDKey, "1", "--" + POAOwnerKey, "0x1234"},
			expectedErr: errInvalidAddress,
		},
		{
			name: "duplicate admin",
			args: []string{
				"genesis",
				"--" + EVMChainIDKey, "1",
				"--" + minterAllowListPrefix + "-admins", testAllocAddr + "," + testAllocAddr,
			},
			expectedErr: genesis.ErrDuplicateRoleAddress,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := run(t, t.TempDir(), test.args...)
			require.ErrorIs(t, err, test.expectedErr)
		})
	}
}

func TestWizardCommands(t *testing.T) {
	require := require.New(t)

	dataDir := t.TempDir()

	_, err := run(t, dataDir, "wizard", "next")
	require.ErrorIs(err, wizard.ErrInvalidValue)

	mustRun(t, dataDir, "wizard", "set", wizard.ChainNameKey, "my chain")
	mustRun(t, dataDir, "wizard", "set", wizard.EVMChainIDKey, "12345")
	out := mustRun(t, dataDir, "wizard", "next")
	require.Contains(out, string(wizard.GenesisStep))

	_, err = run(t, dataDir, "wizard", "next")
	require.ErrorIs(err, wizard.ErrMissingValue)

	_, err = run(t, dataDir, "wizard", "goto", string(wizard.FundPChainStep))
	require.ErrorIs(err, wizard.ErrNotReached)

	out = mustRun(t, dataDir, "wizard", "back")
	require.Contains(out, string(wizard.ChainParametersStep))

	// Going back keeps the furthest step reached.
	status := readWizard(t, dataDir)
	require.Equal(wizard.ChainParametersStep, status.Progress.Current)
	require.Equal(wizard.GenesisStep, status.Progress.MaxAdvanced)
	require.Equal("my chain", status.Values[wizard.ChainNameKey])

	mustRun(t, dataDir, "wizard", "goto", string(wizard.GenesisStep))

	out = mustRun(t, dataDir, "wizard", "status")
	require.Contains(out, "<- current")
	require.Contains(out, "blocked:")
	require.Contains(out, wizard.ChainNameKey+"=my chain")

	mustRun(t, dataDir, "wizard", "reset")
	status = readWizard(t, dataDir)
	require.Equal(wizard.ChainParametersStep, status.Progress.Current)
	require.Empty(status.Values)
}

func TestWizardIsPerNetwork(t *testing.T) {
	require := require.New(t)

	dataDir := t.TempDir()
	mustRun(t, dataDir, "wizard", "set", wizard.ChainNameKey, "fuji chain")

	out := mustRun(t, dataDir, "wizard", "status", "--json", "--"+config.NetworkNameKey, "mainnet")
	var status wizardStatus
	require.NoError(json.Unmarshal([]byte(out), &status))
	require.Empty(status.Values)

	require.Equal("fuji chain", readWizard(t, dataDir).Values[wizard.ChainNameKey])
}

func TestProgressCommands(t *testing.T) {
	require := require.New(t)

	dataDir := t.TempDir()
	require.Empty(mustRun(t, dataDir, "progress", "list"))

	mustRun(t, dataDir, "wizard", "set", wizard.ChainNameKey, "my chain")
	require.Equal(wizard.StoreName+"\n", mustRun(t, dataDir, "progress", "list"))

	mustRun(t, dataDir, "progress", "reset")
	require.Empty(mustRun(t, dataDir, "progress", "list"))
	require.Empty(readWizard(t, dataDir).Values)
}

func TestNodeCommands(t *testing.T) {
	require := require.New(t)

	var (
		dataDir  = t.TempDir()
		subnetID = ids.GenerateTestID()
	)

	out := mustRun(t, dataDir, "node", "docker")
	require.NotContains(out, "TRACK_SUBNETS")
	require.Contains(out, nodecmd.DefaultImage)

	out = mustRun(t, dataDir, "node", "docker", "--"+SubnetIDKey, subnetID.String(), "--"+RPCKey)
	require.Contains(out, "TRACK_SUBNETS="+subnetID.String())

	// The subnet created through the wizard is tracked by default.
	mustRun(t, dataDir, "wizard", "set", wizard.SubnetIDKey, subnetID.String())
	out = mustRun(t, dataDir, "node", "docker")
	require.Contains(out, "TRACK_SUBNETS="+subnetID.String())

	_, err := run(t, dataDir, "node", "docker", "--"+SubnetIDKey, "not-an-id")
	require.ErrorIs(err, nodecmd.ErrInvalidSubnetID)

	out = mustRun(t, dataDir, "node", "caddy", "--"+DomainKey, "rpc.example.com")
	require.Contains(out, "rpc.example.com {")
	require.Contains(out, "docker run")

	_, err = run(t, dataDir, "node", "caddy", "--"+DomainKey, "not a domain")
	require.ErrorIs(err, nodecmd.ErrInvalidDomain)

	_, err = run(t, dataDir, "node", "chain-config")
	require.ErrorIs(err, errMissingFlag)

	chainID := ids.GenerateTestID()
	out = mustRun(t, dataDir, "node", "chain-config", "--"+ChainIDKey, chainID.String())
	require.Contains(out, chainID.String())

	out = mustRun(t, dataDir, "node", "compose", "--"+DomainKey, "rpc.example.com")
	require.Contains(out, "services:")
	require.Contains(out, subnetID.String())

	out = mustRun(t, dataDir, "node", "health", "--"+PortKey, "9700")
	require.Contains(out, "health.health")
	require.Contains(out, "9700")

	out = mustRun(t, dataDir, "node", "node-id")
	require.Contains(out, "info.getNodeID")
}

func TestValidateCommands(t *testing.T) {
	tests := []struct {
		args        []string
		expectedErr error
	}{
		{args: []string{"validate", "domain", "example.com"}},
		{args: []string{"validate", "domain", "bad_domain.com"}, expectedErr: errInvalid},
		{args: []string{"validate", "ip", "10.0.0.1"}},
		{args: []string{"validate", "ip", "999.0.0.1"}, expectedErr: errInvalid},
		{args: []string{"validate", "chain-name", "my chain"}},
		{args: []string{"validate", "chain-name", "my  chain"}, expectedErr: errInvalid},
		{args: []string{"validate", "address", testAllocAddr}},
		{args: []string{"validate", "address", "abc"}, expectedErr: errInvalid},
	}
	for _, test := range tests {
		t.Run(strings.Join(test.args[1:], " "), func(t *testing.T) {
			out, err := run(t, t.TempDir(), test.args...)
			require.ErrorIs(t, err, test.expectedErr)
			if test.expectedErr == nil {
				require.Equal(t, "valid\n", out)
			}
		})
	}
}

func writeNodeInfo(t *testing.T, dir string, nodeID ids.NodeID) string {
	t.Helper()

	path := filepath.Join(dir, nodeID.String()+".json")
	nodeInfo := fmt.Sprintf(
		`{"jsonrpc":"2.0","result":{"nodeID":%q,"nodePOP":{"publicKey":"0x%s","proofOfPossession":"0x%s"}},"id":1}`,
		nodeID,
		strings.Repeat("ab", 48),
		strings.Repeat("cd", 96),
	)
	require.NoError(t, os.WriteFile(path, []byte(nodeInfo), 0o600))
	return path
}

type conversionStatus struct {
	conversion.State
	Next conversion.Step `json:"next"`
}

func readConversion(t *testing.T, dataDir string) conversionStatus {
	t.Helper()

	var status conversionStatus
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, dataDir, "convert", "status")), &status))
	return status
}

func TestConvertCommands(t *testing.T) {
	require := require.New(t)

	var (
		dataDir  = t.TempDir()
		subnetID = ids.GenerateTestID()
		chainID  = ids.GenerateTestID()
		node0    = ids.GenerateTestNodeID()
		node1    = ids.GenerateTestNodeID()
	)

	_, err := run(t, dataDir, "convert", "configure")
	require.ErrorContains(err, SubnetIDKey)

	mustRun(t, dataDir, "wizard", "set", wizard.SubnetIDKey, subnetID.String())
	mustRun(t, dataDir, "wizard", "set", wizard.BlockchainIDKey, chainID.String())
	out := mustRun(t, dataDir, "convert", "configure")
	require.Contains(out, genesis.ValidatorManagerProxyAddress.Hex())
	require.Equal(genesis.ValidatorManagerProxyAddress.Hex(), readWizard(t, dataDir).Values[wizard.ValidatorManagerAddressKey])

	out = mustRun(t, dataDir, "convert", "add-node", "--"+NodeInfoKey, writeNodeInfo(t, dataDir, node0), "--"+WeightKey, "20")
	require.Equal(node0.String()+"\n", out)
	mustRun(t, dataDir, "convert", "add-node", "--"+NodeInfoKey, writeNodeInfo(t, dataDir, node1))

	_, err = run(t, dataDir, "convert", "add-node", "--"+NodeInfoKey, writeNodeInfo(t, dataDir, node0))
	require.ErrorIs(err, conversion.ErrDuplicateNode)

	_, err = run(t, dataDir, "convert", "add-node")
	require.ErrorIs(err, errConflictingNodeSource)

	status := readConversion(t, dataDir)
	require.Equal(subnetID, status.SubnetID)
	require.Equal(chainID, status.ChainID)
	require.Equal(genesis.ValidatorManagerProxyAddress, status.ManagerAddress)
	require.Len(status.Validators, 2)
	require.Equal(uint64(20), status.Validators[0].Weight)
	require.Equal(uint64(defaultValidatorBalance), status.Validators[1].Balance)
	require.Equal(conversion.ConvertStep, status.Next)

	mustRun(t, dataDir, "convert", "remove-node", "--"+NodeIDKey, node0.String())
	_, err = run(t, dataDir, "convert", "remove-node", "--"+NodeIDKey, node0.String())
	require.ErrorIs(err, conversion.ErrUnknownNode)
	require.Len(readConversion(t, dataDir).Validators, 1)

	_, err = run(t, dataDir, "convert", "extract")
	require.ErrorIs(err, conversion.ErrNotReady)

	_, err = run(t, dataDir, "convert", "aggregate")
	require.ErrorIs(err, conversion.ErrNotReady)

	mustRun(t, dataDir, "convert", "reset")
	status = readConversion(t, dataDir)
	require.Empty(status.Validators)
	require.Equal(conversion.AddNodeStep, status.Next)
}

func TestBalanceRequiresAddress(t *testing.T) {
	_, err := run(t, t.TempDir(), "balance")
	require.ErrorIs(t, err, errNoAddress)
}
