// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package conversion

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/constants"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/vms/components/avax"
	"github.com/ava-labs/avalanchego/vms/platformvm/txs"
	"github.com/ava-labs/avalanchego/vms/platformvm/warp"
	"github.com/ava-labs/avalanchego/vms/platformvm/warp/message"
	"github.com/ava-labs/avalanchego/vms/platformvm/warp/payload"
	"github.com/ava-labs/avalanchego/vms/secp256k1fx"
	"github.com/ava-labs/avalanchego/wallet/subnet/primary/common"
	"github.com/ava-labs/libevm/common/hexutil"
	"github.com/ava-labs/libevm/core/types"
	"github.com/ava-labs/libevm/crypto"

	ethereum "github.com/ava-labs/libevm"
	ethcommon "github.com/ava-labs/libevm/common"

	"github.com/ava-labs/l1-toolbox/aggregator"
	"github.com/ava-labs/l1-toolbox/pchain"
	"github.com/ava-labs/l1-toolbox/predicate"
	"github.com/ava-labs/l1-toolbox/store"
	"github.com/ava-labs/l1-toolbox/validatormanager"
)

var (
	testManager = ethcommon.HexToAddress("0xfacade0000000000000000000000000000000000")

	errTestUnavailable = errors.New("unavailable")
)

func nodeInfo(nodeID ids.NodeID) []byte {
	return []byte(fmt.Sprintf(
		`{"result":{"nodeID":%q,"nodePOP":{"publicKey":"0x%s","proofOfPossession":"0x%s"}}}`,
		nodeID,
		strings.Repeat("ab", 48),
		strings.Repeat("cd", 96),
	))
}

type fakeWallet struct {
	pchain *fakePChain
	issued []*txs.Tx
}

func (w *fakeWallet) IssueConvertSubnetToL1Tx(
	subnetID ids.ID,
	chainID ids.ID,
	address []byte,
	validators []*txs.ConvertSubnetToL1Validator,
	_ ...common.Option,
) (*txs.Tx, error) {
	tx := &txs.Tx{
		Unsigned: &txs.ConvertSubnetToL1Tx{
			BaseTx: txs.BaseTx{
				BaseTx: avax.BaseTx{
					NetworkID:    constants.FujiID,
					BlockchainID: constants.PlatformChainID,
				},
			},
			Subnet:     subnetID,
			ChainID:    chainID,
			Address:    address,
			Validators: validators,
			SubnetAuth: &secp256k1fx.Input{},
		},
	}
	if err := tx.Initialize(txs.Codec); err != nil {
		return nil, err
	}
	w.issued = append(w.issued, tx)
	w.pchain.txs[tx.ID()] = tx
	return tx, nil
}

type fakePChain struct {
	txs map[ids.ID]*txs.Tx
}

func (*fakePChain) GetBalance(context.Context, []string) (*pchain.Balance, error) {
	return &pchain.Balance{}, nil
}

func (p *fakePChain) GetTx(_ context.Context, txID ids.ID) (*txs.Tx, error) {
	tx, ok := p.txs[txID]
	if !ok {
		return nil, errTestUnavailable
	}
	return tx, nil
}

type fakeAggregator struct {
	failures int
	requests []aggregator.Request
}

func (a *fakeAggregator) AggregateSignatures(_ context.Context, req aggregator.Request) (*warp.Message, error) {
	a.requests = append(a.requests, req)
	if a.failures > 0 {
		a.failures--
		return nil, errTestUnavailable
	}
	unsigned, err := warp.ParseUnsignedMessage(req.Message)
	if err != nil {
		return nil, err
	}
	return warp.NewMessage(unsigned, &warp.BitSetSignature{Signers: []byte{0x01}})
}

type dataError struct {
	data string
}

func (*dataError) Error() string {
	return "execution reverted"
}

func (e *dataError) ErrorData() interface{} {
	return e.data
}

type fakeEVM struct {
	callErr       error
	receiptStatus uint64
	sent          []*types.Transaction
}

func (*fakeEVM) ChainID(context.Context) (*big.Int, error) {
	return big.NewInt(43113), nil
}

func (*fakeEVM) HeaderByNumber(context.Context, *big.Int) (*types.Header, error) {
	return &types.Header{BaseFee: big.NewInt(25_000_000_000)}, nil
}

func (*fakeEVM) PendingNonceAt(context.Context, ethcommon.Address) (uint64, error) {
	return 7, nil
}

func (*fakeEVM) SuggestGasTipCap(context.Context) (*big.Int, error) {
	return big.NewInt(1), nil
}

func (*fakeEVM) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) {
	return 200_000, nil
}

func (e *fakeEVM) CallContract(context.Context, ethereum.CallMsg, *big.Int) ([]byte, error) {
	return nil, e.callErr
}

func (e *fakeEVM) SendTransaction(_ context.Context, tx *types.Transaction) error {
	e.sent = append(e.sent, tx)
	return nil
}

func (e *fakeEVM) TransactionReceipt(_ context.Context, txHash ethcommon.Hash) (*types.Receipt, error) {
	for _, tx := range e.sent {
		if tx.Hash() == txHash {
			return &types.Receipt{
				Status: e.receiptStatus,
				TxHash: txHash,
			}, nil
		}
	}
	return nil, ethereum.NotFound
}

type fakeTracer struct {
	frame *CallFrame
}

func (t *fakeTracer) TraceTransaction(context.Context, ethcommon.Hash) (*CallFrame, error) {
	return t.frame, nil
}

type testEnv struct {
	store      *store.Store
	wallet     *fakeWallet
	pchain     *fakePChain
	aggregator *fakeAggregator
	evm        *fakeEVM
	tracer     *fakeTracer
	key        *ecdsa.PrivateKey
	subnetID   ids.ID
	chainID    ids.ID
}

func newTestEnv(t *testing.T) *testEnv {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	pchain := &fakePChain{txs: make(map[ids.ID]*txs.Tx)}
	return &testEnv{
		store:      store.New(memdb.New(), "fuji"),
		wallet:     &fakeWallet{pchain: pchain},
		pchain:     pchain,
		aggregator: &fakeAggregator{},
		evm:        &fakeEVM{receiptStatus: types.ReceiptStatusSuccessful},
		tracer:     &fakeTracer{frame: &CallFrame{}},
		key:        key,
		subnetID:   ids.GenerateTestID(),
		chainID:    ids.GenerateTestID(),
	}
}

func (e *testEnv) workflow(t *testing.T) *Workflow {
	w, err := New(
		logging.NoLog{},
		Config{
			NetworkID:           constants.FujiID,
			ReceiptPollInterval: time.Millisecond,
		},
		Backends{
			Wallet:     e.wallet,
			PChain:     e.pchain,
			Aggregator: e.aggregator,
			EVM:        e.evm,
			Tracer:     e.tracer,
			Key:        e.key,
		},
		e.store,
	)
	require.NoError(t, err)
	return w
}

// runUntilAggregated configures the workflow and runs every step before the
// validator set initialization.
func runUntilAggregated(t *testing.T, env *testEnv, w *Workflow) {
	require := require.New(t)
	ctx := context.Background()

	require.NoError(w.Configure(env.subnetID, env.chainID, testManager))
	_, err := w.AddNode(nodeInfo(ids.GenerateTestNodeID()), 100, 1_000_000_000)
	require.NoError(err)
	_, err = w.Convert(ctx)
	require.NoError(err)
	_, err = w.ExtractMessage(ctx)
	require.NoError(err)
	_, err = w.Aggregate(ctx)
	require.NoError(err)
}

func TestWorkflow(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	env := newTestEnv(t)
	w := env.workflow(t)
	require.Equal(AddNodeStep, w.State().Next())

	_, err := w.Convert(ctx)
	require.ErrorIs(err, errNotConfigured)
	require.NoError(w.Configure(env.subnetID, env.chainID, testManager))

	_, err = w.Convert(ctx)
	require.ErrorIs(err, ErrNotReady)

	nodeID := ids.GenerateTestNodeID()
	_, err = w.AddNode(nodeInfo(nodeID), 0, 0)
	require.ErrorIs(err, errZeroWeight)
	added, err := w.AddNode(nodeInfo(nodeID), 100, 1_000_000_000)
	require.NoError(err)
	require.Equal(nodeID, added)
	_, err = w.AddNode(nodeInfo(nodeID), 100, 1_000_000_000)
	require.ErrorIs(err, ErrDuplicateNode)
	require.Equal(ConvertStep, w.State().Next())

	_, err = w.ExtractMessage(ctx)
	require.ErrorIs(err, ErrNotReady)

	txID, err := w.Convert(ctx)
	require.NoError(err)
	require.Len(env.wallet.issued, 1)
	require.Equal(env.wallet.issued[0].ID(), txID)

	convertTx := env.wallet.issued[0].Unsigned.(*txs.ConvertSubnetToL1Tx)
	require.Equal(env.subnetID, convertTx.Subnet)
	require.Equal(env.chainID, convertTx.ChainID)
	require.Equal(testManager.Bytes(), []byte(convertTx.Address))
	require.Len(convertTx.Validators, 1)
	require.Equal(nodeID.Bytes(), []byte(convertTx.Validators[0].NodeID))
	require.Equal(byte(0xab), convertTx.Validators[0].Signer.PublicKey[0])

	_, err = w.Convert(ctx)
	require.ErrorIs(err, ErrAlreadyConverted)
	_, err = w.AddNode(nodeInfo(ids.GenerateTestNodeID()), 1, 0)
	require.ErrorIs(err, ErrAlreadyConverted)
	require.ErrorIs(w.RemoveNode(nodeID), ErrAlreadyConverted)

	unsigned, err := w.ExtractMessage(ctx)
	require.NoError(err)
	require.Equal(constants.PlatformChainID, unsigned.SourceChainID)
	expectedConversionID, err := message.SubnetToL1ConversionID(ConversionDataFromTx(convertTx))
	require.NoError(err)
	require.Equal(expectedConversionID, w.State().ConversionID)

	addressedCall, err := payload.ParseAddressedCall(unsigned.Payload)
	require.NoError(err)
	require.Empty(addressedCall.SourceAddress)
	conversion, err := message.ParseSubnetToL1Conversion(addressedCall.Payload)
	require.NoError(err)
	require.Equal(expectedConversionID, conversion.ID)

	signed, err := w.Aggregate(ctx)
	require.NoError(err)
	require.Equal(unsigned.ID(), signed.UnsignedMessage.ID())
	require.Len(env.aggregator.requests, 1)
	request := env.aggregator.requests[0]
	require.Equal(env.subnetID, request.SigningSubnetID)
	require.Equal(env.subnetID[:], request.Justification)
	require.Equal(uint64(aggregator.DefaultQuorumPercentage), request.QuorumPercentage)

	txHash, err := w.InitializeValidatorSet(ctx)
	require.NoError(err)
	require.Len(env.evm.sent, 1)
	sent := env.evm.sent[0]
	require.Equal(txHash, sent.Hash())
	require.Equal(testManager, *sent.To())
	require.Equal(uint64(7), sent.Nonce())
	require.Equal(uint64(200_000), sent.Gas())
	require.True(bytes.HasPrefix(sent.Data(), validatormanager.ABI.Methods["initializeValidatorSet"].ID))

	require.Equal(predicate.AccessList(predicate.WarpAddress, signed.Bytes()), sent.AccessList())

	sender, err := types.Sender(types.LatestSignerForChainID(big.NewInt(43113)), sent)
	require.NoError(err)
	require.Equal(crypto.PubkeyToAddress(env.key.PublicKey), sender)

	require.Equal(CompletedStatus, w.State().Next())

	// Progress survives a restart.
	reloaded := env.workflow(t)
	require.Equal(w.State(), reloaded.State())

	require.NoError(reloaded.Reset())
	require.Equal(AddNodeStep, reloaded.State().Next())
}

func TestWorkflowRemoveNode(t *testing.T) {
	require := require.New(t)

	w := newTestEnv(t).workflow(t)
	nodeID := ids.GenerateTestNodeID()
	_, err := w.AddNode(nodeInfo(nodeID), 1, 0)
	require.NoError(err)

	require.NoError(w.RemoveNode(nodeID))
	require.Empty(w.State().Validators)
	require.ErrorIs(w.RemoveNode(nodeID), ErrUnknownNode)
}

func TestWorkflowRetryKeepsProgress(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	env := newTestEnv(t)
	env.aggregator.failures = 1
	w := env.workflow(t)

	require.NoError(w.Configure(env.subnetID, env.chainID, testManager))
	_, err := w.AddNode(nodeInfo(ids.GenerateTestNodeID()), 100, 0)
	require.NoError(err)
	_, err = w.Convert(ctx)
	require.NoError(err)
	_, err = w.ExtractMessage(ctx)
	require.NoError(err)

	_, err = w.Aggregate(ctx)
	require.ErrorIs(err, errTestUnavailable)
	require.Equal(AggregateStep, w.State().Next())

	// Only the failed step is rerun.
	_, err = w.Aggregate(ctx)
	require.NoError(err)
	require.Len(env.wallet.issued, 1)
	require.Equal(InitializeStep, w.State().Next())
}

func TestInitializeValidatorSetSimulationRevert(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t)
	abiErr := validatormanager.ABI.Errors["InvalidInitializationStatus"]
	env.evm.callErr = &dataError{data: hexutil.Encode(abiErr.ID[:4])}

	w := env.workflow(t)
	runUntilAggregated(t, env, w)

	_, err := w.InitializeValidatorSet(context.Background())
	require.ErrorIs(err, ErrReverted)

	var revertErr *validatormanager.RevertError
	require.ErrorAs(err, &revertErr)
	require.Equal("InvalidInitializationStatus", revertErr.Name)
	require.Empty(env.evm.sent)
	require.Equal(InitializeStep, w.State().Next())
}

func TestInitializeValidatorSetMinedRevert(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t)
	env.evm.receiptStatus = types.ReceiptStatusFailed
	abiErr := validatormanager.ABI.Errors["InvalidWarpMessage"]
	env.tracer.frame = &CallFrame{
		Output: abiErr.ID[:4],
		Error:  "execution reverted",
	}

	w := env.workflow(t)
	runUntilAggregated(t, env, w)

	txHash, err := w.InitializeValidatorSet(context.Background())
	require.ErrorIs(err, ErrReverted)
	require.ErrorContains(err, "InvalidWarpMessage()")
	require.Len(env.evm.sent, 1)
	require.Equal(env.evm.sent[0].Hash(), txHash)
	require.Equal(InitializeStep, w.State().Next())

	env.tracer.frame = &CallFrame{Error: "out of gas"}
	err = w.DecodeFailure(context.Background(), txHash)
	require.ErrorIs(err, ErrReverted)
	require.ErrorContains(err, "out of gas")
}
