// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/ava-labs/avalanchego/utils/logging"
)

const (
	baseURL               = "/ext"
	serverShutdownTimeout = 10 * time.Second
)

var errAlreadyReserved = errors.New("route is either already aliased or already maps to a handle")

type Config struct {
	AllowedOrigins []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

// Server maintains the HTTP router
type Server struct {
	// log this server writes to
	log logging.Logger
	// Maps endpoints to handlers
	router *mux.Router
	routes map[string]struct{}
	// points the the router handlers
	handler http.Handler
	// Listens for HTTP traffic on this address
	listener net.Listener
	metrics  *metrics

	// http server
	srv *http.Server
}

// New returns an HTTP server listening on [listener]. Metrics of the served
// requests are registered on [registerer], which is also exposed at
// /ext/metrics together with everything else [gatherer] collects.
func New(
	log logging.Logger,
	listener net.Listener,
	config Config,
	registerer prometheus.Registerer,
	gatherer prometheus.Gatherer,
) (*Server, error) {
	m, err := newMetrics(registerer)
	if err != nil {
		return nil, err
	}

	router := mux.NewRouter()
	log.Info("API created",
		zap.Strings("allowedOrigins", config.AllowedOrigins),
	)
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   config.AllowedOrigins,
		AllowCredentials: true,
	}).Handler(router)
	gzipHandler := gziphandler.GzipHandler(corsHandler)

	s := &Server{
		log:      log,
		router:   router,
		routes:   make(map[string]struct{}),
		handler:  gzipHandler,
		listener: listener,
		metrics:  m,
		srv: &http.Server{
			Handler:           gzipHandler,
			ReadTimeout:       config.ReadTimeout,
			ReadHeaderTimeout: config.ReadTimeout,
			WriteTimeout:      config.WriteTimeout,
		},
	}
	return s, s.AddRoute(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{DisableCompression: true}), "metrics", "")
}

// Dispatch starts the API server
func (s *Server) Dispatch() error {
	s.log.Info("HTTP API server listening",
		zap.Stringer("address", s.listener.Addr()),
	)
	return s.srv.Serve(s.listener)
}

// AddRoute registers [handler] at /ext/[base][endpoint].
func (s *Server) AddRoute(handler http.Handler, base, endpoint string) error {
	if endpoint != "" {
		if _, err := url.ParseRequestURI(endpoint); err != nil {
			return fmt.Errorf("malformed endpoint %q: %w", endpoint, err)
		}
	}

	path := fmt.Sprintf("%s/%s%s", baseURL, base, endpoint)
	if _, ok := s.routes[path]; ok {
		return fmt.Errorf("%w: %s", errAlreadyReserved, path)
	}
	s.routes[path] = struct{}{}

	s.log.Info("adding route",
		zap.String("url", path),
	)
	s.router.Handle(path, s.metrics.wrap(path, handler))
	return nil
}

// Shutdown this server
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
