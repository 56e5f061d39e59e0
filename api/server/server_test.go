// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package server

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/avalanchego/utils/logging"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	registry := prometheus.NewRegistry()
	s, err := New(
		logging.NoLog{},
		listener,
		Config{AllowedOrigins: []string{"*"}},
		registry,
		registry,
	)
	require.NoError(t, err)
	return s, fmt.Sprintf("http://%s", listener.Addr())
}

func TestServerRoutes(t *testing.T) {
	require := require.New(t)

	s, uri := newTestServer(t)
	require.NoError(s.AddRoute(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}), "test", ""))
	err := s.AddRoute(http.NotFoundHandler(), "test", "")
	require.ErrorIs(err, errAlreadyReserved)
	require.Error(s.AddRoute(http.NotFoundHandler(), "test", "\n"))

	dispatched := make(chan error, 1)
	go func() {
		dispatched <- s.Dispatch()
	}()

	resp, err := http.Get(uri + "/ext/test")
	require.NoError(err)
	require.NoError(resp.Body.Close())
	require.Equal(http.StatusTeapot, resp.StatusCode)

	resp, err = http.Get(uri + "/ext/unknown")
	require.NoError(err)
	require.NoError(resp.Body.Close())
	require.Equal(http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get(uri + "/ext/metrics")
	require.NoError(err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(err)
	require.NoError(resp.Body.Close())
	require.Contains(string(body), `api_requests{code="418",route="/ext/test"} 1`)

	require.NoError(s.Shutdown())
	require.ErrorIs(<-dispatched, http.ErrServerClosed)
}
