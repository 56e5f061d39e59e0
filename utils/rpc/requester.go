// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	rpc "github.com/gorilla/rpc/v2/json2"
)

var (
	_ EndpointRequester = (*endpointRequester)(nil)

	ErrUnexpectedStatus = errors.New("unexpected status code")
)

// EndpointRequester issues JSON-RPC 2.0 requests to a single endpoint of a
// node, e.g. "/ext/bc/P".
type EndpointRequester interface {
	SendRequest(ctx context.Context, method string, params interface{}, reply interface{}, options ...Option) error
}

type endpointRequester struct {
	client *http.Client
	url    string
}

// NewEndpointRequester returns a requester for [uri]+[endpoint] that uses
// [http.DefaultClient].
func NewEndpointRequester(uri, endpoint string) EndpointRequester {
	return NewEndpointRequesterWithClient(http.DefaultClient, uri, endpoint)
}

func NewEndpointRequesterWithClient(client *http.Client, uri, endpoint string) EndpointRequester {
	return &endpointRequester{
		client: client,
		url:    strings.TrimSuffix(uri, "/") + endpoint,
	}
}

// SendRequest calls [method], which must be the fully qualified method name
// such as "platform.getBalance", and decodes the result into [reply].
func (e *endpointRequester) SendRequest(
	ctx context.Context,
	method string,
	params interface{},
	reply interface{},
	options ...Option,
) error {
	requestBodyBytes, err := rpc.EncodeClientRequest(method, params)
	if err != nil {
		return fmt.Errorf("problem marshaling request with method %q: %w", method, err)
	}

	ops := NewOptions(options)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewBuffer(requestBodyBytes))
	if err != nil {
		return fmt.Errorf("problem while creating JSON RPC POST request to %s: %w", Redact(e.url), err)
	}
	req.Header = ops.Headers()
	req.Header.Set("Content-Type", "application/json")

	//nolint:bodyclose // body is closed via CleanlyCloseBody
	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("problem while making JSON RPC POST request to %s: %w", Redact(e.url), err)
	}
	defer CleanlyCloseBody(resp.Body)

	// Return an error for any non successful status code
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	if err := rpc.DecodeClientResponse(resp.Body, reply); err != nil {
		return fmt.Errorf("%s failed: %w", method, err)
	}
	return nil
}
