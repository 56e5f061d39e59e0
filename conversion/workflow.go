// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package conversion converts a subnet into an L1 and initializes the
// validator set of its validator manager contract.
//
// The workflow is a sequence of steps the operator triggers one at a time.
// Every step persists its output, so a failed step can be retried without
// redoing the previous ones. Nothing is rolled back on failure.
package conversion

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/constants"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/vms/platformvm/signer"
	"github.com/ava-labs/avalanchego/vms/platformvm/txs"
	"github.com/ava-labs/avalanchego/vms/platformvm/warp"
	"github.com/ava-labs/avalanchego/vms/platformvm/warp/message"
	"github.com/ava-labs/avalanchego/vms/platformvm/warp/payload"
	"github.com/ava-labs/avalanchego/wallet/subnet/primary/common"
	"github.com/ava-labs/libevm/core/types"
	"github.com/ava-labs/libevm/crypto"

	ethereum "github.com/ava-labs/libevm"
	ethcommon "github.com/ava-labs/libevm/common"

	"github.com/ava-labs/l1-toolbox/aggregator"
	"github.com/ava-labs/l1-toolbox/pchain"
	"github.com/ava-labs/l1-toolbox/predicate"
	"github.com/ava-labs/l1-toolbox/store"
	"github.com/ava-labs/l1-toolbox/utils/validation"
	"github.com/ava-labs/l1-toolbox/validatormanager"
)

const defaultReceiptPollInterval = time.Second

var (
	ErrNotReady         = errors.New("previous step not completed")
	ErrAlreadyConverted = errors.New("subnet already converted")
	ErrDuplicateNode    = errors.New("node already added")
	ErrUnknownNode      = errors.New("node not added")
	ErrReverted         = errors.New("transaction reverted")

	errZeroWeight      = errors.New("validator weight must be positive")
	errNotConfigured   = errors.New("subnet, chain and manager address must be set")
	errMessageMismatch = errors.New("aggregator signed a different message")
	errMissingBackend  = errors.New("backend not configured")
)

// Backends are the external systems the workflow orchestrates. Any of them
// may be nil if the steps needing it are never run.
type Backends struct {
	Wallet     PWallet
	PChain     pchain.Reader
	Aggregator Aggregator
	EVM        EVMClient
	Tracer     Tracer

	// Key signs the validator manager transaction.
	Key *ecdsa.PrivateKey
}

type Config struct {
	NetworkID uint32

	// Owners of the validators' remaining P-Chain balance and of the right to
	// deactivate them.
	RemainingBalanceOwner message.PChainOwner
	DeactivationOwner     message.PChainOwner

	QuorumPercentage    uint64
	ReceiptPollInterval time.Duration
}

type Workflow struct {
	log      logging.Logger
	config   Config
	backends Backends
	store    *store.Store

	lock  sync.Mutex
	state State
}

// New loads the workflow state persisted in [s].
func New(log logging.Logger, config Config, backends Backends, s *store.Store) (*Workflow, error) {
	if config.QuorumPercentage == 0 {
		config.QuorumPercentage = aggregator.DefaultQuorumPercentage
	}
	if config.ReceiptPollInterval == 0 {
		config.ReceiptPollInterval = defaultReceiptPollInterval
	}
	w := &Workflow{
		log:      log,
		config:   config,
		backends: backends,
		store:    s,
	}
	if err := s.Get(StoreName, &w.state); err != nil && !store.IsNotFound(err) {
		return nil, err
	}
	return w, nil
}

// State returns a copy of the persisted state.
func (w *Workflow) State() State {
	w.lock.Lock()
	defer w.lock.Unlock()

	state := w.state
	state.Validators = slices.Clone(w.state.Validators)
	return state
}

// Configure sets the subnet being converted and the validator manager it is
// converted to.
func (w *Workflow) Configure(subnetID, chainID ids.ID, managerAddress ethcommon.Address) error {
	w.lock.Lock()
	defer w.lock.Unlock()

	if w.state.ConversionTxID != ids.Empty {
		return fmt.Errorf("%w: %s", ErrAlreadyConverted, w.state.ConversionTxID)
	}
	state := w.state
	state.SubnetID = subnetID
	state.ChainID = chainID
	state.ManagerAddress = managerAddress
	return w.save(state)
}

// AddNode adds the node described by the output of info.getNodeID as an
// initial validator.
func (w *Workflow) AddNode(nodeInfo []byte, weight, balance uint64) (ids.NodeID, error) {
	pop, err := validation.ParseNodePoP(nodeInfo)
	if err != nil {
		return ids.EmptyNodeID, err
	}
	if weight == 0 {
		return ids.EmptyNodeID, errZeroWeight
	}

	w.lock.Lock()
	defer w.lock.Unlock()

	if w.state.ConversionTxID != ids.Empty {
		return ids.EmptyNodeID, fmt.Errorf("%w: %s", ErrAlreadyConverted, w.state.ConversionTxID)
	}
	for _, vdr := range w.state.Validators {
		if vdr.NodeID == pop.NodeID {
			return ids.EmptyNodeID, fmt.Errorf("%w: %s", ErrDuplicateNode, pop.NodeID)
		}
	}

	state := w.state
	state.Validators = append(slices.Clone(w.state.Validators), Validator{
		NodeID:            pop.NodeID,
		Weight:            weight,
		Balance:           balance,
		PublicKey:         pop.PoP.PublicKey[:],
		ProofOfPossession: pop.PoP.ProofOfPossession[:],
	})
	if err := w.save(state); err != nil {
		return ids.EmptyNodeID, err
	}
	w.log.Info("added initial validator",
		zap.Stringer("nodeID", pop.NodeID),
		zap.Uint64("weight", weight),
		zap.Uint64("balance", balance),
	)
	return pop.NodeID, nil
}

func (w *Workflow) RemoveNode(nodeID ids.NodeID) error {
	w.lock.Lock()
	defer w.lock.Unlock()

	if w.state.ConversionTxID != ids.Empty {
		return fmt.Errorf("%w: %s", ErrAlreadyConverted, w.state.ConversionTxID)
	}
	i := slices.IndexFunc(w.state.Validators, func(vdr Validator) bool {
		return vdr.NodeID == nodeID
	})
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownNode, nodeID)
	}
	state := w.state
	state.Validators = slices.Delete(slices.Clone(w.state.Validators), i, i+1)
	return w.save(state)
}

// Convert issues the ConvertSubnetToL1Tx.
func (w *Workflow) Convert(ctx context.Context) (ids.ID, error) {
	w.lock.Lock()
	defer w.lock.Unlock()

	if err := w.requireConfigured(); err != nil {
		return ids.Empty, err
	}
	if w.state.ConversionTxID != ids.Empty {
		return ids.Empty, fmt.Errorf("%w: %s", ErrAlreadyConverted, w.state.ConversionTxID)
	}
	if len(w.state.Validators) == 0 {
		return ids.Empty, fmt.Errorf("%w: %s", ErrNotReady, AddNodeStep)
	}
	if w.backends.Wallet == nil {
		return ids.Empty, fmt.Errorf("%w: p-chain wallet", errMissingBackend)
	}

	validators := make([]*txs.ConvertSubnetToL1Validator, len(w.state.Validators))
	for i, vdr := range w.state.Validators {
		pop := signer.ProofOfPossession{}
		copy(pop.PublicKey[:], vdr.PublicKey)
		copy(pop.ProofOfPossession[:], vdr.ProofOfPossession)
		validators[i] = &txs.ConvertSubnetToL1Validator{
			NodeID:                vdr.NodeID.Bytes(),
			Weight:                vdr.Weight,
			Balance:               vdr.Balance,
			Signer:                pop,
			RemainingBalanceOwner: w.config.RemainingBalanceOwner,
			DeactivationOwner:     w.config.DeactivationOwner,
		}
	}

	start := time.Now()
	tx, err := w.backends.Wallet.IssueConvertSubnetToL1Tx(
		w.state.SubnetID,
		w.state.ChainID,
		w.state.ManagerAddress.Bytes(),
		validators,
		common.WithContext(ctx),
	)
	if err != nil {
		return ids.Empty, fmt.Errorf("failed to issue subnet conversion transaction: %w", err)
	}

	state := w.state
	state.ConversionTxID = tx.ID()
	if err := w.save(state); err != nil {
		return ids.Empty, err
	}
	w.log.Info("converted subnet",
		zap.Stringer("subnetID", state.SubnetID),
		zap.Stringer("txID", state.ConversionTxID),
		zap.Duration("duration", time.Since(start)),
	)
	return state.ConversionTxID, nil
}

// ExtractMessage reads the accepted conversion tx back from the P-Chain and
// builds the unsigned warp message attesting to it.
func (w *Workflow) ExtractMessage(ctx context.Context) (*warp.UnsignedMessage, error) {
	w.lock.Lock()
	defer w.lock.Unlock()

	if w.state.ConversionTxID == ids.Empty {
		return nil, fmt.Errorf("%w: %s", ErrNotReady, ConvertStep)
	}
	if w.backends.PChain == nil {
		return nil, fmt.Errorf("%w: p-chain client", errMissingBackend)
	}

	tx, err := pchain.GetConvertSubnetToL1Tx(ctx, w.backends.PChain, w.state.ConversionTxID)
	if err != nil {
		return nil, err
	}
	data := ConversionDataFromTx(tx)
	unsigned, conversionID, err := NewConversionMessage(w.config.NetworkID, data)
	if err != nil {
		return nil, err
	}
	abiData, err := validatormanager.NewConversionData(data)
	if err != nil {
		return nil, err
	}

	state := w.state
	state.ConversionID = conversionID
	state.ConversionData = &abiData
	state.UnsignedMessage = unsigned.Bytes()
	if err := w.save(state); err != nil {
		return nil, err
	}
	w.log.Info("extracted conversion message",
		zap.Stringer("conversionID", conversionID),
		zap.Stringer("messageID", unsigned.ID()),
	)
	return unsigned, nil
}

// Aggregate collects the validators' signatures over the conversion message.
func (w *Workflow) Aggregate(ctx context.Context) (*warp.Message, error) {
	w.lock.Lock()
	defer w.lock.Unlock()

	if len(w.state.UnsignedMessage) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotReady, ExtractStep)
	}
	if w.backends.Aggregator == nil {
		return nil, fmt.Errorf("%w: signature aggregator", errMissingBackend)
	}
	unsigned, err := warp.ParseUnsignedMessage(w.state.UnsignedMessage)
	if err != nil {
		return nil, err
	}

	signed, err := w.backends.Aggregator.AggregateSignatures(ctx, aggregator.Request{
		Message:          unsigned.Bytes(),
		Justification:    w.state.SubnetID[:],
		SigningSubnetID:  w.state.SubnetID,
		QuorumPercentage: w.config.QuorumPercentage,
	})
	if err != nil {
		return nil, err
	}
	if signed.UnsignedMessage.ID() != unsigned.ID() {
		return nil, fmt.Errorf("%w: expected %s, got %s", errMessageMismatch, unsigned.ID(), signed.UnsignedMessage.ID())
	}

	state := w.state
	state.SignedMessage = signed.Bytes()
	if err := w.save(state); err != nil {
		return nil, err
	}
	return signed, nil
}

// InitializeValidatorSet calls initializeValidatorSet on the validator
// manager with the signed conversion message as a warp predicate. The call
// is simulated first so a revert is reported without spending gas.
func (w *Workflow) InitializeValidatorSet(ctx context.Context) (ethcommon.Hash, error) {
	w.lock.Lock()
	defer w.lock.Unlock()

	if len(w.state.SignedMessage) == 0 || w.state.ConversionData == nil {
		return ethcommon.Hash{}, fmt.Errorf("%w: %s", ErrNotReady, AggregateStep)
	}
	if w.backends.EVM == nil || w.backends.Key == nil {
		return ethcommon.Hash{}, fmt.Errorf("%w: evm client and key", errMissingBackend)
	}

	calldata, err := validatormanager.PackInitializeValidatorSet(*w.state.ConversionData, 0)
	if err != nil {
		return ethcommon.Hash{}, err
	}
	var (
		from = crypto.PubkeyToAddress(w.backends.Key.PublicKey)
		to   = w.state.ManagerAddress
		msg  = ethereum.CallMsg{
			From:       from,
			To:         &to,
			Data:       calldata,
			AccessList: predicate.AccessList(predicate.WarpAddress, w.state.SignedMessage),
		}
	)

	if _, err := w.backends.EVM.CallContract(ctx, msg, nil); err != nil {
		return ethcommon.Hash{}, fmt.Errorf("simulation failed: %w", revertError(err))
	}

	tx, err := w.signTx(ctx, msg)
	if err != nil {
		return ethcommon.Hash{}, err
	}
	if err := w.backends.EVM.SendTransaction(ctx, tx); err != nil {
		return ethcommon.Hash{}, fmt.Errorf("failed to send transaction: %w", err)
	}
	w.log.Info("sent initializeValidatorSet",
		zap.Stringer("txHash", tx.Hash()),
		zap.Stringer("manager", to),
	)

	receipt, err := w.waitForReceipt(ctx, tx.Hash())
	if err != nil {
		return tx.Hash(), err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return tx.Hash(), w.decodeFailure(ctx, tx.Hash())
	}

	state := w.state
	state.InitTxHash = tx.Hash()
	if err := w.save(state); err != nil {
		return tx.Hash(), err
	}
	return tx.Hash(), nil
}

func (w *Workflow) signTx(ctx context.Context, msg ethereum.CallMsg) (*types.Transaction, error) {
	evm := w.backends.EVM
	chainID, err := evm.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chain ID: %w", err)
	}
	nonce, err := evm.PendingNonceAt(ctx, msg.From)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch nonce: %w", err)
	}
	gas, err := evm.EstimateGas(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("failed to estimate gas: %w", revertError(err))
	}
	tipCap, err := evm.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to suggest tip: %w", err)
	}
	head, err := evm.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch head: %w", err)
	}
	feeCap := new(big.Int).Set(tipCap)
	if head.BaseFee != nil {
		feeCap.Add(feeCap, new(big.Int).Mul(head.BaseFee, big.NewInt(2)))
	}

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:    chainID,
		Nonce:      nonce,
		GasTipCap:  tipCap,
		GasFeeCap:  feeCap,
		Gas:        gas,
		To:         msg.To,
		Data:       msg.Data,
		AccessList: msg.AccessList,
	})
	return types.SignTx(tx, types.LatestSignerForChainID(chainID), w.backends.Key)
}

func (w *Workflow) waitForReceipt(ctx context.Context, txHash ethcommon.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(w.config.ReceiptPollInterval)
	defer ticker.Stop()

	for {
		receipt, err := w.backends.EVM.TransactionReceipt(ctx, txHash)
		switch {
		case err == nil:
			return receipt, nil
		case !errors.Is(err, ethereum.NotFound):
			return nil, fmt.Errorf("failed to fetch receipt of %s: %w", txHash, err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// DecodeFailure explains why the mined transaction [txHash] reverted.
func (w *Workflow) DecodeFailure(ctx context.Context, txHash ethcommon.Hash) error {
	return w.decodeFailure(ctx, txHash)
}

func (w *Workflow) decodeFailure(ctx context.Context, txHash ethcommon.Hash) error {
	if w.backends.Tracer == nil {
		return fmt.Errorf("%w: %s", ErrReverted, txHash)
	}
	frame, err := w.backends.Tracer.TraceTransaction(ctx, txHash)
	if err != nil {
		w.log.Warn("failed to trace reverted transaction",
			zap.Stringer("txHash", txHash),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %s", ErrReverted, txHash)
	}
	if revertErr, err := validatormanager.DecodeRevert(frame.Output); err == nil {
		return fmt.Errorf("%w: %s: %w", ErrReverted, txHash, revertErr)
	}
	reason := frame.RevertReason
	if len(reason) == 0 {
		reason = frame.Error
	}
	return fmt.Errorf("%w: %s: %s", ErrReverted, txHash, reason)
}

// Reset forgets all progress.
func (w *Workflow) Reset() error {
	w.lock.Lock()
	defer w.lock.Unlock()

	if err := w.store.Delete(StoreName); err != nil {
		return err
	}
	w.state = State{}
	return nil
}

func (w *Workflow) requireConfigured() error {
	if w.state.SubnetID == ids.Empty || w.state.ChainID == ids.Empty || w.state.ManagerAddress == (ethcommon.Address{}) {
		return errNotConfigured
	}
	return nil
}

func (w *Workflow) save(state State) error {
	if err := w.store.Put(StoreName, state); err != nil {
		return fmt.Errorf("couldn't persist conversion progress: %w", err)
	}
	w.state = state
	return nil
}

// ConversionDataFromTx returns the data the P-Chain commits to when it
// accepts [tx].
func ConversionDataFromTx(tx *txs.ConvertSubnetToL1Tx) message.SubnetToL1ConversionData {
	validators := make([]message.SubnetToL1ConversionValidatorData, len(tx.Validators))
	for i, vdr := range tx.Validators {
		validators[i] = message.SubnetToL1ConversionValidatorData{
			NodeID:       vdr.NodeID,
			BLSPublicKey: vdr.Signer.PublicKey,
			Weight:       vdr.Weight,
		}
	}
	return message.SubnetToL1ConversionData{
		SubnetID:       tx.Subnet,
		ManagerChainID: tx.ChainID,
		ManagerAddress: tx.Address,
		Validators:     validators,
	}
}

// NewConversionMessage returns the unsigned P-Chain warp message attesting
// to the conversion described by [data].
func NewConversionMessage(networkID uint32, data message.SubnetToL1ConversionData) (*warp.UnsignedMessage, ids.ID, error) {
	conversionID, err := message.SubnetToL1ConversionID(data)
	if err != nil {
		return nil, ids.Empty, err
	}
	conversion, err := message.NewSubnetToL1Conversion(conversionID)
	if err != nil {
		return nil, ids.Empty, err
	}
	addressedCall, err := payload.NewAddressedCall(nil, conversion.Bytes())
	if err != nil {
		return nil, ids.Empty, err
	}
	unsigned, err := warp.NewUnsignedMessage(networkID, constants.PlatformChainID, addressedCall.Bytes())
	if err != nil {
		return nil, ids.Empty, err
	}
	return unsigned, conversionID, nil
}
