// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pchain

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/vms/platformvm/txs"

	avajson "github.com/ava-labs/avalanchego/utils/json"
)

var errNotImplemented = errors.New("not implemented")

type fakeReader struct {
	calls atomic.Uint64
}

func (r *fakeReader) GetBalance(context.Context, []string) (*Balance, error) {
	n := r.calls.Add(1)
	return &Balance{
		Balance:  avajson.Uint64(n * 100),
		Unlocked: avajson.Uint64(n * 100),
	}, nil
}

func (*fakeReader) GetTx(context.Context, ids.ID) (*txs.Tx, error) {
	return nil, errNotImplemented
}

func TestBalanceWatcher(t *testing.T) {
	require := require.New(t)

	var (
		clock   = clockwork.NewFakeClock()
		reader  = &fakeReader{}
		updates = make(chan Balance, 4)
	)
	w := NewBalanceWatcher(
		logging.NoLog{},
		clock,
		DefaultRefreshInterval,
		reader,
		[]string{"P-fuji1test"},
		func(b *Balance) {
			updates <- *b
		},
	)

	_, ok := w.Latest()
	require.False(ok)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx)
	}()

	first := <-updates
	require.Equal(uint64(100), uint64(first.Balance))

	latest, ok := w.Latest()
	require.True(ok)
	require.Equal(first, latest)

	cancel()
	require.ErrorIs(<-done, context.Canceled)
}

func TestGetConvertSubnetToL1TxWrongType(t *testing.T) {
	_, err := GetConvertSubnetToL1Tx(context.Background(), &wrongTypeReader{}, ids.GenerateTestID())
	require.ErrorIs(t, err, ErrUnexpectedTxType)
}

type wrongTypeReader struct {
	fakeReader
}

func (*wrongTypeReader) GetTx(context.Context, ids.ID) (*txs.Tx, error) {
	return &txs.Tx{Unsigned: &txs.BaseTx{}}, nil
}
