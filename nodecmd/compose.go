// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package nodecmd

import (
	"fmt"
	"strconv"
	"strings"

	"sigs.k8s.io/yaml"

	"github.com/ava-labs/avalanchego/config"
	"github.com/ava-labs/avalanchego/utils/constants"

	"github.com/ava-labs/l1-toolbox/utils/validation"
)

// ComposeParams describes a docker compose deployment of an RPC node,
// optionally fronted by Caddy.
type ComposeParams struct {
	NetworkID uint32
	SubnetIDs []string
	Domain    string
	Image     string
	ImageTag  string
}

type composeFile struct {
	Services map[string]composeService `json:"services"`
}

type composeService struct {
	Image         string            `json:"image"`
	ContainerName string            `json:"container_name"`
	Restart       string            `json:"restart"`
	NetworkMode   string            `json:"network_mode,omitempty"`
	Ports         []string          `json:"ports,omitempty"`
	Volumes       []string          `json:"volumes"`
	Environment   map[string]string `json:"environment,omitempty"`
	DependsOn     []string          `json:"depends_on,omitempty"`
}

// ComposeConfig returns a docker-compose.yml running an avalanchego node and,
// if a domain is given, a Caddy reverse proxy serving it over TLS.
func ComposeConfig(p ComposeParams) ([]byte, error) {
	network := constants.NetworkName(p.NetworkID)
	if _, ok := constants.NetworkNameToNetworkID[network]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownNetwork, p.NetworkID)
	}
	tracked, err := TrackedSubnets(p.SubnetIDs)
	if err != nil {
		return nil, err
	}

	env := map[string]string{
		config.EnvVarName(config.EnvPrefix, config.NetworkNameKey):               network,
		config.EnvVarName(config.EnvPrefix, config.HTTPHostKey):                  "0.0.0.0",
		config.EnvVarName(config.EnvPrefix, config.PublicIPResolutionServiceKey): "opendns",
		config.EnvVarName(config.EnvPrefix, config.PluginDirKey):                 containerPlugins,
		config.EnvVarName(config.EnvPrefix, config.HTTPAllowedHostsKey):          "*",
	}
	if len(tracked) > 0 {
		env[config.EnvVarName(config.EnvPrefix, config.TrackSubnetsKey)] = strings.Join(tracked, ",")
	}

	httpPort := strconv.Itoa(DefaultHTTPPort)
	stakePort := strconv.Itoa(DefaultStakePort)
	node := composeService{
		Image:         image(p.Image, p.ImageTag),
		ContainerName: containerName,
		Restart:       "unless-stopped",
		Ports: []string{
			"127.0.0.1:" + httpPort + ":" + httpPort,
			stakePort + ":" + stakePort,
		},
		Volumes:     []string{"~/.avalanchego:" + containerDataDir},
		Environment: env,
	}
	file := composeFile{
		Services: map[string]composeService{
			containerName: node,
		},
	}

	if len(p.Domain) > 0 {
		if !validation.IsValidDomain(p.Domain) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidDomain, p.Domain)
		}
		file.Services["caddy"] = composeService{
			Image:         "caddy:2.8-alpine",
			ContainerName: "caddy",
			Restart:       "unless-stopped",
			NetworkMode:   "host",
			Volumes: []string{
				"./Caddyfile:/etc/caddy/Caddyfile",
				"./caddy/data:/data",
				"./caddy/config:/config",
			},
			DependsOn: []string{containerName},
		}
	}
	return yaml.Marshal(file)
}
