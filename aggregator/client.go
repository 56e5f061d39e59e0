// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package aggregator is a client of the signature aggregator service, which
// collects BLS signatures from a subnet's validators over a warp message.
package aggregator

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/vms/platformvm/warp"
)

const (
	DefaultQuorumPercentage = 67

	aggregatePath = "/aggregate-signatures"
)

var (
	ErrRequestRejected = errors.New("aggregator rejected the request")
	ErrUnavailable     = errors.New("aggregator unavailable")
	errEmptySignature  = errors.New("aggregator returned an empty message")
)

// RetryPolicy is the exponential backoff every aggregation is retried with.
type RetryPolicy struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	MaxElapsedTime  time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		InitialInterval: time.Second,
		MaxInterval:     10 * time.Second,
		Multiplier:      1.5,
		MaxElapsedTime:  30 * time.Second,
	}
}

func (p RetryPolicy) newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.MaxInterval = p.MaxInterval
	b.Multiplier = p.Multiplier
	b.MaxElapsedTime = p.MaxElapsedTime
	b.Reset()
	return b
}

// Request asks for signatures over [Message] from the validators of
// [SigningSubnetID] until [QuorumPercentage] of their weight signed.
type Request struct {
	Message          []byte
	Justification    []byte
	SigningSubnetID  ids.ID
	QuorumPercentage uint64
}

type requestJSON struct {
	Message          string `json:"message"`
	Justification    string `json:"justification,omitempty"`
	SigningSubnetID  string `json:"signingSubnetId"`
	QuorumPercentage uint64 `json:"quorumPercentage"`
}

type responseJSON struct {
	SignedMessage string `json:"signedMessage"`
}

type errorJSON struct {
	Error string `json:"error"`
}

type Client struct {
	log    logging.Logger
	client *http.Client
	url    string
	policy RetryPolicy
}

func NewClient(log logging.Logger, client *http.Client, uri string, policy RetryPolicy) *Client {
	return &Client{
		log:    log,
		client: client,
		url:    strings.TrimSuffix(uri, "/") + aggregatePath,
		policy: policy,
	}
}

// AggregateSignatures returns the signed warp message. Server errors and
// transport failures are retried under the client's policy. Rejections of
// the request itself are returned immediately.
func (c *Client) AggregateSignatures(ctx context.Context, req Request) (*warp.Message, error) {
	quorum := req.QuorumPercentage
	if quorum == 0 {
		quorum = DefaultQuorumPercentage
	}
	body, err := json.Marshal(requestJSON{
		Message:          hex.EncodeToString(req.Message),
		Justification:    hex.EncodeToString(req.Justification),
		SigningSubnetID:  req.SigningSubnetID.String(),
		QuorumPercentage: quorum,
	})
	if err != nil {
		return nil, err
	}

	var (
		attempt int
		signed  []byte
	)
	err = backoff.RetryNotify(
		func() error {
			attempt++
			signed, err = c.aggregate(ctx, body)
			return err
		},
		backoff.WithContext(c.policy.newBackOff(), ctx),
		func(err error, wait time.Duration) {
			c.log.Warn("signature aggregation failed, retrying",
				zap.Int("attempt", attempt),
				zap.Duration("wait", wait),
				zap.Error(err),
			)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("couldn't aggregate signatures after %d attempts: %w", attempt, err)
	}

	msg, err := warp.ParseMessage(signed)
	if err != nil {
		return nil, fmt.Errorf("couldn't parse signed message: %w", err)
	}
	c.log.Info("aggregated signatures",
		zap.Stringer("signingSubnetID", req.SigningSubnetID),
		zap.Stringer("messageID", msg.ID()),
		zap.Int("attempts", attempt),
	)
	return msg, nil
}

func (c *Client) aggregate(ctx context.Context, body []byte) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	switch {
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, errorMessage(respBody))
	case resp.StatusCode >= 400:
		return nil, backoff.Permanent(fmt.Errorf("%w: status %d: %s", ErrRequestRejected, resp.StatusCode, errorMessage(respBody)))
	}

	var decoded responseJSON
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("couldn't decode response: %w", err))
	}
	if len(decoded.SignedMessage) == 0 {
		return nil, errEmptySignature
	}
	signed, err := hex.DecodeString(strings.TrimPrefix(decoded.SignedMessage, "0x"))
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("couldn't decode signed message: %w", err))
	}
	return signed, nil
}

func errorMessage(body []byte) string {
	var decoded errorJSON
	if err := json.Unmarshal(body, &decoded); err == nil && len(decoded.Error) > 0 {
		return decoded.Error
	}
	return strings.TrimSpace(string(body))
}
