// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/crypto/bls"
	"github.com/ava-labs/avalanchego/vms/platformvm/signer"
	"github.com/ava-labs/libevm/common/hexutil"
)

var (
	ErrMissingField    = errors.New("missing field")
	ErrMalformedNodeID = errors.New("malformed node ID")
	ErrMalformedHex    = errors.New("malformed hex value")
	ErrInvalidLength   = errors.New("invalid length")

	nodeIDRegex = regexp.MustCompile(`^NodeID-[1-9A-HJ-NP-Za-km-z]+$`)
	hexRegex    = regexp.MustCompile(`^0x[0-9a-fA-F]+$`)
)

// NodePoP is a node's identity together with the BLS key it will validate
// with, as returned by the info.getNodeID API of avalanchego.
type NodePoP struct {
	NodeID ids.NodeID
	PoP    signer.ProofOfPossession
}

// Verify checks the proof of possession against the public key.
func (n *NodePoP) Verify() error {
	return n.PoP.Verify()
}

type nodePoPJSON struct {
	Result *struct {
		NodeID  *string `json:"nodeID"`
		NodePOP *struct {
			PublicKey         *string `json:"publicKey"`
			ProofOfPossession *string `json:"proofOfPossession"`
		} `json:"nodePOP"`
	} `json:"result"`
}

// ParseNodePoP parses the output of
//
//	curl -X POST --data '{"jsonrpc":"2.0","id":1,"method":"info.getNodeID"}' \
//	  -H 'content-type:application/json' 127.0.0.1:9650/ext/info
//
// The input must look like
//
//	{"result":{"nodeID":"NodeID-...","nodePOP":{"publicKey":"0x...","proofOfPossession":"0x..."}}}
//
// Only the shape and lengths are checked here, use [NodePoP.Verify] to check
// the proof itself.
func ParseNodePoP(b []byte) (*NodePoP, error) {
	var raw nodePoPJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("couldn't parse node info: %w", err)
	}
	switch {
	case raw.Result == nil:
		return nil, fmt.Errorf("%w: result", ErrMissingField)
	case raw.Result.NodeID == nil:
		return nil, fmt.Errorf("%w: result.nodeID", ErrMissingField)
	case raw.Result.NodePOP == nil:
		return nil, fmt.Errorf("%w: result.nodePOP", ErrMissingField)
	case raw.Result.NodePOP.PublicKey == nil:
		return nil, fmt.Errorf("%w: result.nodePOP.publicKey", ErrMissingField)
	case raw.Result.NodePOP.ProofOfPossession == nil:
		return nil, fmt.Errorf("%w: result.nodePOP.proofOfPossession", ErrMissingField)
	}

	nodeIDStr := *raw.Result.NodeID
	if !nodeIDRegex.MatchString(nodeIDStr) {
		return nil, fmt.Errorf("%w: %q", ErrMalformedNodeID, nodeIDStr)
	}
	nodeID, err := ids.NodeIDFromString(nodeIDStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedNodeID, err)
	}

	publicKey, err := decodeFixedHex("publicKey", *raw.Result.NodePOP.PublicKey, bls.PublicKeyLen)
	if err != nil {
		return nil, err
	}
	proof, err := decodeFixedHex("proofOfPossession", *raw.Result.NodePOP.ProofOfPossession, bls.SignatureLen)
	if err != nil {
		return nil, err
	}

	pop := &NodePoP{NodeID: nodeID}
	copy(pop.PoP.PublicKey[:], publicKey)
	copy(pop.PoP.ProofOfPossession[:], proof)
	return pop, nil
}

func decodeFixedHex(field string, s string, length int) ([]byte, error) {
	if !hexRegex.MatchString(s) {
		return nil, fmt.Errorf("%w: %s", ErrMalformedHex, field)
	}
	b, err := hexutil.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformedHex, field, err)
	}
	if len(b) != length {
		return nil, fmt.Errorf("%w: %s is %d bytes, expected %d", ErrInvalidLength, field, len(b), length)
	}
	return b, nil
}
