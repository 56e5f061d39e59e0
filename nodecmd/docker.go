// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package nodecmd generates the commands and config files an operator runs
// to host the nodes of an L1.
package nodecmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ava-labs/avalanchego/config"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/constants"
)

const (
	DefaultImage     = "avaplatform/subnet-evm_avalanchego"
	DefaultImageTag  = "latest"
	DefaultHTTPPort  = 9650
	DefaultStakePort = 9651

	containerName    = "avago"
	containerDataDir = "/root/.avalanchego"
	containerPlugins = "/avalanchego/build/plugins/"
	lineSeparator    = " \\\n    "
)

var (
	ErrInvalidSubnetID = errors.New("invalid subnet ID")
	ErrUnknownNetwork  = errors.New("unknown network")
)

// DockerConfig describes the node container to run.
type DockerConfig struct {
	NetworkID uint32
	SubnetIDs []string
	// RPC nodes expose their API publicly. Validators only expose it on the
	// loopback interface.
	RPC      bool
	Image    string
	ImageTag string
	DataDir  string
}

func envVar(key, value string) string {
	return fmt.Sprintf("-e %s=%s", config.EnvVarName(config.EnvPrefix, key), value)
}

// TrackedSubnets returns the non-empty subnet IDs of [subnetIDs]. Every one
// of them must be a valid ID.
func TrackedSubnets(subnetIDs []string) ([]string, error) {
	var tracked []string
	for _, subnetID := range subnetIDs {
		subnetID = strings.TrimSpace(subnetID)
		if len(subnetID) == 0 {
			continue
		}
		if _, err := ids.FromString(subnetID); err != nil {
			return nil, fmt.Errorf("%w %q: %w", ErrInvalidSubnetID, subnetID, err)
		}
		tracked = append(tracked, subnetID)
	}
	return tracked, nil
}

// DockerRunCommand returns the `docker run` invocation of a node. The node
// tracks the given subnets, and AVAGO_TRACK_SUBNETS is left out entirely if
// no subnet is given.
func DockerRunCommand(c DockerConfig) (string, error) {
	network := constants.NetworkName(c.NetworkID)
	if _, ok := constants.NetworkNameToNetworkID[network]; !ok {
		return "", fmt.Errorf("%w: %d", ErrUnknownNetwork, c.NetworkID)
	}
	tracked, err := TrackedSubnets(c.SubnetIDs)
	if err != nil {
		return "", err
	}

	httpBind := "127.0.0.1:"
	if c.RPC {
		httpBind = ""
	}
	dataDir := c.DataDir
	if len(dataDir) == 0 {
		dataDir = "~/.avalanchego"
	}

	args := []string{
		"docker run -it -d",
		"--name " + containerName,
		fmt.Sprintf("-p %s%d:%d -p %d:%d", httpBind, DefaultHTTPPort, DefaultHTTPPort, DefaultStakePort, DefaultStakePort),
		fmt.Sprintf("-v %s:%s", dataDir, containerDataDir),
		envVar(config.NetworkNameKey, network),
		envVar(config.HTTPHostKey, "0.0.0.0"),
		envVar(config.PublicIPResolutionServiceKey, "opendns"),
		envVar(config.PluginDirKey, containerPlugins),
	}
	if len(tracked) > 0 {
		args = append(args, envVar(config.TrackSubnetsKey, strings.Join(tracked, ",")))
	}
	if c.RPC {
		args = append(args, envVar(config.HTTPAllowedHostsKey, `"*"`))
	} else {
		args = append(args, envVar(config.PartialSyncPrimaryNetworkKey, "true"))
	}
	args = append(args, image(c.Image, c.ImageTag))
	return strings.Join(args, lineSeparator), nil
}

func image(name, tag string) string {
	if len(name) == 0 {
		name = DefaultImage
	}
	if len(tag) == 0 {
		tag = DefaultImageTag
	}
	return name + ":" + tag
}

// HealthCheckCommand queries the health API of a node.
func HealthCheckCommand(host string, port uint16) string {
	return curlCommand(host, port, "/ext/health", "health.health")
}

// NodeIDCommand prints the node ID and BLS proof of possession of a node, in
// the format the conversion workflow expects.
func NodeIDCommand(host string, port uint16) string {
	return curlCommand(host, port, "/ext/info", "info.getNodeID")
}

func curlCommand(host string, port uint16, endpoint, method string) string {
	if len(host) == 0 {
		host = "127.0.0.1"
	}
	if port == 0 {
		port = DefaultHTTPPort
	}
	return strings.Join([]string{
		"curl -X POST",
		fmt.Sprintf(`--data '{"jsonrpc":"2.0","id":1,"method":"%s"}'`, method),
		"-H 'content-type:application/json;'",
		fmt.Sprintf("%s:%d%s", host, port, endpoint),
	}, lineSeparator)
}
