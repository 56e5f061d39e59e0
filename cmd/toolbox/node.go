// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/perms"

	"github.com/ava-labs/l1-toolbox/api/health"
	"github.com/ava-labs/l1-toolbox/api/info"
	"github.com/ava-labs/l1-toolbox/nodecmd"
	"github.com/ava-labs/l1-toolbox/wizard"
)

const (
	RPCKey         = "rpc"
	ImageKey       = "image"
	ImageTagKey    = "image-tag"
	NodeDataDirKey = "node-data-dir"
	DomainKey      = "domain"
	HostKey        = "host"
	PortKey        = "port"
	CaddyDirKey    = "caddy-dir"
	NodeURIKey     = "node-uri"
	TimeoutKey     = "timeout"
	FrequencyKey   = "frequency"

	defaultNodeURI = "http://127.0.0.1:9650"
)

var errNodeNotReady = errors.New("node did not become ready in time")

func nodeCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "node",
		Short: "Generates the commands that run and check avalanchego nodes",
	}

	docker := &cobra.Command{
		Use:   "docker",
		Short: "Prints the docker command starting a validator or RPC node",
		RunE:  withRuntime(dockerFunc),
	}
	addSubnetIDsFlag(docker.Flags())
	docker.Flags().Bool(RPCKey, false, "Expose the API publicly instead of validating")
	docker.Flags().String(ImageKey, nodecmd.DefaultImage, "Docker image of the node")
	docker.Flags().String(ImageTagKey, nodecmd.DefaultImageTag, "Tag of the docker image")
	docker.Flags().String(NodeDataDirKey, "", "Host directory mounted as the node data directory")

	chainConfig := &cobra.Command{
		Use:   "chain-config",
		Short: "Prints the command writing the chain config of the L1 for the node",
		RunE:  withRuntime(chainConfigFunc),
	}
	chainConfig.Flags().String(ChainIDKey, "", "Blockchain ID of the L1. Defaults to the chain stored in the wizard")
	chainConfig.Flags().Bool(RPCKey, false, "Configure the chain for an RPC node")

	caddy := &cobra.Command{
		Use:   "caddy",
		Short: "Prints the Caddyfile and the command serving the node API over TLS",
		RunE:  withRuntime(caddyFunc),
	}
	caddy.Flags().String(DomainKey, "", "Domain the node API is served on")
	caddy.Flags().Uint16(PortKey, nodecmd.DefaultHTTPPort, "Node HTTP port")
	caddy.Flags().String(CaddyDirKey, "", "Host directory holding the Caddyfile")

	compose := &cobra.Command{
		Use:   "compose",
		Short: "Prints a docker-compose file running an RPC node and, if a domain is given, Caddy",
		RunE:  withRuntime(composeFunc),
	}
	addSubnetIDsFlag(compose.Flags())
	compose.Flags().String(DomainKey, "", "Domain the node API is served on")
	compose.Flags().String(ImageKey, nodecmd.DefaultImage, "Docker image of the node")
	compose.Flags().String(ImageTagKey, nodecmd.DefaultImageTag, "Tag of the docker image")
	compose.Flags().String(OutputKey, "", "File to write the compose file to. Defaults to stdout")

	healthCmd := &cobra.Command{
		Use:   "health",
		Short: "Prints the command querying the health of a node",
		RunE: func(c *cobra.Command, _ []string) error {
			host, port, err := parseHostPort(c.Flags())
			if err != nil {
				return err
			}
			printLine(c, nodecmd.HealthCheckCommand(host, port))
			return nil
		},
	}
	addHostPortFlags(healthCmd.Flags())

	nodeID := &cobra.Command{
		Use:   "node-id",
		Short: "Prints the command querying the node ID and proof of possession of a node",
		RunE: func(c *cobra.Command, _ []string) error {
			host, port, err := parseHostPort(c.Flags())
			if err != nil {
				return err
			}
			printLine(c, nodecmd.NodeIDCommand(host, port))
			return nil
		},
	}
	addHostPortFlags(nodeID.Flags())

	wait := &cobra.Command{
		Use:   "wait",
		Short: "Waits for a node to be healthy and marks the node as running in the wizard",
		RunE:  withRuntime(waitFunc),
	}
	wait.Flags().String(NodeURIKey, defaultNodeURI, "API URI of the node")
	wait.Flags().String(ChainIDKey, "", "Also wait for this chain to be bootstrapped. Defaults to the chain stored in the wizard")
	wait.Flags().Duration(TimeoutKey, 5*time.Minute, "Maximum time to wait")
	wait.Flags().Duration(FrequencyKey, 2*time.Second, "Time between two checks")

	c.AddCommand(docker, chainConfig, caddy, compose, healthCmd, nodeID, wait)
	return c
}

func addSubnetIDsFlag(flags *pflag.FlagSet) {
	flags.StringSlice(SubnetIDKey, nil, "Subnets the node tracks. Defaults to the subnet stored in the wizard")
}

// trackedSubnetIDs returns the subnets given on the command line, falling back to
// the subnet created through the wizard.
func trackedSubnetIDs(c *cobra.Command, r *runtime) ([]string, error) {
	subnetIDs, err := c.Flags().GetStringSlice(SubnetIDKey)
	if err != nil || len(subnetIDs) > 0 {
		return subnetIDs, err
	}
	w, err := r.Wizard()
	if err != nil {
		return nil, err
	}
	if subnetID := w.Get(wizard.SubnetIDKey); subnetID != "" {
		return []string{subnetID}, nil
	}
	return nil, nil
}

// targetChainID returns the chain given on the command line, falling back to the
// chain created through the wizard. Returns ids.Empty if neither is known.
func targetChainID(c *cobra.Command, r *runtime) (ids.ID, error) {
	chainIDStr, err := c.Flags().GetString(ChainIDKey)
	if err != nil {
		return ids.Empty, err
	}
	if chainIDStr == "" {
		w, err := r.Wizard()
		if err != nil {
			return ids.Empty, err
		}
		chainIDStr = w.Get(wizard.BlockchainIDKey)
	}
	return parseOptionalID(chainIDStr)
}

func addHostPortFlags(flags *pflag.FlagSet) {
	flags.String(HostKey, "127.0.0.1", "Host of the node API")
	flags.Uint16(PortKey, nodecmd.DefaultHTTPPort, "Port of the node API")
}

func parseHostPort(flags *pflag.FlagSet) (string, uint16, error) {
	host, err := flags.GetString(HostKey)
	if err != nil {
		return "", 0, err
	}
	port, err := flags.GetUint16(PortKey)
	return host, port, err
}

func dockerFunc(c *cobra.Command, r *runtime, _ []string) error {
	flags := c.Flags()
	subnetIDs, err := trackedSubnetIDs(c, r)
	if err != nil {
		return err
	}
	rpc, err := flags.GetBool(RPCKey)
	if err != nil {
		return err
	}
	image, err := flags.GetString(ImageKey)
	if err != nil {
		return err
	}
	imageTag, err := flags.GetString(ImageTagKey)
	if err != nil {
		return err
	}
	dataDir, err := flags.GetString(NodeDataDirKey)
	if err != nil {
		return err
	}

	cmd, err := nodecmd.DockerRunCommand(nodecmd.DockerConfig{
		NetworkID: r.config.NetworkID,
		SubnetIDs: subnetIDs,
		RPC:       rpc,
		Image:     image,
		ImageTag:  imageTag,
		DataDir:   dataDir,
	})
	if err != nil {
		return err
	}
	printLine(c, cmd)
	return nil
}

func chainConfigFunc(c *cobra.Command, r *runtime, _ []string) error {
	chainID, err := targetChainID(c, r)
	if err != nil {
		return err
	}
	if chainID == ids.Empty {
		return fmt.Errorf("%w: --%s", errMissingFlag, ChainIDKey)
	}
	rpc, err := c.Flags().GetBool(RPCKey)
	if err != nil {
		return err
	}
	cmd, err := nodecmd.ChainConfigCommand(chainID, rpc)
	if err != nil {
		return err
	}
	printLine(c, cmd)
	return nil
}

func caddyFunc(c *cobra.Command, _ *runtime, _ []string) error {
	flags := c.Flags()
	domain, err := flags.GetString(DomainKey)
	if err != nil {
		return err
	}
	port, err := flags.GetUint16(PortKey)
	if err != nil {
		return err
	}
	dir, err := flags.GetString(CaddyDirKey)
	if err != nil {
		return err
	}

	caddyfile, err := nodecmd.Caddyfile(domain, port)
	if err != nil {
		return err
	}
	printLine(c, caddyfile)
	printLine(c, nodecmd.CaddyRunCommand(dir))
	return nil
}

func composeFunc(c *cobra.Command, r *runtime, _ []string) error {
	flags := c.Flags()
	subnetIDs, err := trackedSubnetIDs(c, r)
	if err != nil {
		return err
	}
	domain, err := flags.GetString(DomainKey)
	if err != nil {
		return err
	}
	image, err := flags.GetString(ImageKey)
	if err != nil {
		return err
	}
	imageTag, err := flags.GetString(ImageTagKey)
	if err != nil {
		return err
	}
	output, err := flags.GetString(OutputKey)
	if err != nil {
		return err
	}

	b, err := nodecmd.ComposeConfig(nodecmd.ComposeParams{
		NetworkID: r.config.NetworkID,
		SubnetIDs: subnetIDs,
		Domain:    domain,
		Image:     image,
		ImageTag:  imageTag,
	})
	if err != nil {
		return err
	}
	if output == "" {
		printLine(c, string(b))
		return nil
	}
	if err := os.WriteFile(output, b, perms.ReadWrite); err != nil {
		return err
	}
	r.log.Info("wrote compose file", zap.String("path", output))
	return nil
}

func waitFunc(c *cobra.Command, r *runtime, _ []string) error {
	flags := c.Flags()
	uri, err := flags.GetString(NodeURIKey)
	if err != nil {
		return err
	}
	timeout, err := flags.GetDuration(TimeoutKey)
	if err != nil {
		return err
	}
	freq, err := flags.GetDuration(FrequencyKey)
	if err != nil {
		return err
	}
	chainID, err := targetChainID(c, r)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context(), timeout)
	defer cancel()

	r.log.Info("waiting for node",
		zap.String("uri", uri),
		zap.Stringer("chainID", chainID),
	)
	options := nodeOptions()
	if _, err := health.AwaitHealthy(ctx, r.log, health.NewClient(uri), freq, nil, options...); err != nil {
		return fmt.Errorf("%w: %w", errNodeNotReady, err)
	}
	infoClient := info.NewClient(uri)
	if err := verifyNode(ctx, r, infoClient, nil); err != nil {
		return err
	}
	if chainID != ids.Empty {
		if _, err := info.AwaitBootstrapped(ctx, infoClient, chainID, freq, options...); err != nil {
			return fmt.Errorf("%w: %w", errNodeNotReady, err)
		}
	}

	w, err := r.Wizard()
	if err != nil {
		return err
	}
	if err := w.Set(wizard.NodeRunningKey, "true"); err != nil {
		return err
	}
	printLine(c, "node is healthy")
	return nil
}
