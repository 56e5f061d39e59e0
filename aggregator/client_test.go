// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package aggregator

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/constants"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/vms/platformvm/warp"
)

func testPolicy() RetryPolicy {
	return RetryPolicy{
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
		Multiplier:      1.5,
		MaxElapsedTime:  time.Second,
	}
}

func newSignedMessage(t *testing.T) *warp.Message {
	unsigned, err := warp.NewUnsignedMessage(constants.FujiID, ids.GenerateTestID(), []byte("payload"))
	require.NoError(t, err)
	msg, err := warp.NewMessage(unsigned, &warp.BitSetSignature{Signers: []byte{0x01}})
	require.NoError(t, err)
	return msg
}

func TestAggregateSignaturesRetries(t *testing.T) {
	require := require.New(t)

	var (
		signed      = newSignedMessage(t)
		subnetID    = ids.GenerateTestID()
		calls       atomic.Int32
		lastRequest requestJSON
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != aggregatePath {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":"not enough stake"}`))
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&lastRequest)
		_ = json.NewEncoder(w).Encode(responseJSON{
			SignedMessage: "0x" + hex.EncodeToString(signed.Bytes()),
		})
	}))
	defer server.Close()

	client := NewClient(logging.NoLog{}, server.Client(), server.URL, testPolicy())
	msg, err := client.AggregateSignatures(context.Background(), Request{
		Message:         signed.UnsignedMessage.Bytes(),
		Justification:   subnetID[:],
		SigningSubnetID: subnetID,
	})
	require.NoError(err)
	require.Equal(signed.ID(), msg.ID())
	require.Equal(int32(3), calls.Load())

	require.Equal(hex.EncodeToString(signed.UnsignedMessage.Bytes()), lastRequest.Message)
	require.Equal(hex.EncodeToString(subnetID[:]), lastRequest.Justification)
	require.Equal(subnetID.String(), lastRequest.SigningSubnetID)
	require.Equal(uint64(DefaultQuorumPercentage), lastRequest.QuorumPercentage)
}

func TestAggregateSignaturesRejected(t *testing.T) {
	require := require.New(t)

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid message"}`))
	}))
	defer server.Close()

	client := NewClient(logging.NoLog{}, server.Client(), server.URL, testPolicy())
	_, err := client.AggregateSignatures(context.Background(), Request{
		Message:         []byte{0x00},
		SigningSubnetID: ids.GenerateTestID(),
	})
	require.ErrorIs(err, ErrRequestRejected)
	require.ErrorContains(err, "invalid message")
	require.Equal(int32(1), calls.Load())
}

func TestAggregateSignaturesGivesUp(t *testing.T) {
	require := require.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	policy := testPolicy()
	policy.MaxElapsedTime = 20 * time.Millisecond
	client := NewClient(logging.NoLog{}, server.Client(), server.URL, policy)
	_, err := client.AggregateSignatures(context.Background(), Request{
		Message:         []byte{0x00},
		SigningSubnetID: ids.GenerateTestID(),
	})
	require.ErrorIs(err, ErrUnavailable)
}

func TestAggregateSignaturesCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(logging.NoLog{}, server.Client(), server.URL, DefaultRetryPolicy())
	_, err := client.AggregateSignatures(ctx, Request{
		Message:         []byte{0x00},
		SigningSubnetID: ids.GenerateTestID(),
	})
	require.ErrorIs(t, err, context.Canceled)
}
