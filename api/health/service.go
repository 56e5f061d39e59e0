// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package health

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/rpc/v2"
	"go.uber.org/zap"

	"github.com/ava-labs/avalanchego/utils/logging"

	avajson "github.com/ava-labs/avalanchego/utils/json"
)

const Endpoint = "/ext/health"

type Service struct {
	log    logging.Logger
	health *Health
}

// Health returns the latest results of the registered checks.
func (s *Service) Health(_ *http.Request, _ *APIArgs, reply *APIReply) error {
	s.log.Debug("API called",
		zap.String("service", "health"),
		zap.String("method", "health"),
	)

	reply.Checks, reply.Healthy = s.health.Results()
	return nil
}

// NewGetAndPostHandler returns a handler that answers a GET with the health
// report and serves health.health over JSON-RPC otherwise. The status code
// is 503 while any check fails.
func NewGetAndPostHandler(log logging.Logger, health *Health) (http.Handler, error) {
	newServer := rpc.NewServer()
	codec := avajson.NewCodec()
	newServer.RegisterCodec(codec, "application/json")
	newServer.RegisterCodec(codec, "application/json;charset=UTF-8")
	err := newServer.RegisterService(
		&Service{
			log:    log,
			health: health,
		},
		"health",
	)
	if err != nil {
		return nil, err
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			newServer.ServeHTTP(w, r)
			return
		}

		checks, healthy := health.Results()
		w.Header().Set("Content-Type", "application/json")
		if !healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		// Nothing can be done if the client hung up.
		_ = json.NewEncoder(w).Encode(APIReply{
			Checks:  checks,
			Healthy: healthy,
		})
	}), nil
}
