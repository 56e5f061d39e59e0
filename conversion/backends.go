// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package conversion

import (
	"context"
	"math/big"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/vms/platformvm/txs"
	"github.com/ava-labs/avalanchego/vms/platformvm/warp"
	"github.com/ava-labs/avalanchego/wallet/subnet/primary/common"
	"github.com/ava-labs/libevm/common/hexutil"
	"github.com/ava-labs/libevm/core/types"
	"github.com/ava-labs/libevm/ethclient"
	"github.com/ava-labs/libevm/rpc"

	ethereum "github.com/ava-labs/libevm"
	ethcommon "github.com/ava-labs/libevm/common"

	"github.com/ava-labs/l1-toolbox/aggregator"
)

var (
	_ EVMClient = (*ethclient.Client)(nil)
	_ Tracer    = (*RPCTracer)(nil)
)

// PWallet issues P-Chain transactions.
type PWallet interface {
	IssueConvertSubnetToL1Tx(
		subnetID ids.ID,
		chainID ids.ID,
		address []byte,
		validators []*txs.ConvertSubnetToL1Validator,
		options ...common.Option,
	) (*txs.Tx, error)
}

// Aggregator collects validator signatures over a warp message.
type Aggregator interface {
	AggregateSignatures(ctx context.Context, req aggregator.Request) (*warp.Message, error)
}

// EVMClient is the subset of the EVM JSON-RPC API the workflow calls on the
// chain hosting the validator manager.
type EVMClient interface {
	ChainID(ctx context.Context) (*big.Int, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	PendingNonceAt(ctx context.Context, account ethcommon.Address) (uint64, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash ethcommon.Hash) (*types.Receipt, error)
}

// CallFrame is a frame of the callTracer output.
type CallFrame struct {
	Type         string             `json:"type"`
	From         ethcommon.Address  `json:"from"`
	To           *ethcommon.Address `json:"to,omitempty"`
	Input        hexutil.Bytes      `json:"input"`
	Output       hexutil.Bytes      `json:"output,omitempty"`
	Error        string             `json:"error,omitempty"`
	RevertReason string             `json:"revertReason,omitempty"`
	Calls        []CallFrame        `json:"calls,omitempty"`
}

// Tracer replays a mined transaction.
type Tracer interface {
	TraceTransaction(ctx context.Context, txHash ethcommon.Hash) (*CallFrame, error)
}

// RPCTracer traces transactions with debug_traceTransaction. The node must
// enable the debug API.
type RPCTracer struct {
	client *rpc.Client
}

func NewRPCTracer(client *rpc.Client) *RPCTracer {
	return &RPCTracer{client: client}
}

func (t *RPCTracer) TraceTransaction(ctx context.Context, txHash ethcommon.Hash) (*CallFrame, error) {
	frame := &CallFrame{}
	err := t.client.CallContext(ctx, frame, "debug_traceTransaction", txHash, map[string]string{
		"tracer": "callTracer",
	})
	return frame, err
}
