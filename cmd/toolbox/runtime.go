// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/crypto/keychain"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/vms/platformvm/warp/message"
	"github.com/ava-labs/avalanchego/vms/secp256k1fx"
	"github.com/ava-labs/avalanchego/wallet/subnet/primary"
	"github.com/ava-labs/libevm/ethclient"
	"github.com/ava-labs/libevm/rpc"

	"github.com/ava-labs/l1-toolbox/aggregator"
	"github.com/ava-labs/l1-toolbox/config"
	"github.com/ava-labs/l1-toolbox/conversion"
	"github.com/ava-labs/l1-toolbox/pchain"
	"github.com/ava-labs/l1-toolbox/store"
	"github.com/ava-labs/l1-toolbox/utils/crypto/ledger"
	"github.com/ava-labs/l1-toolbox/version"
	"github.com/ava-labs/l1-toolbox/wizard"
)

var (
	errMissingEVMRPC = errors.New("no evm rpc uri was provided")
	errMissingFlag   = errors.New("missing flag")
)

// pWallet issues the P-Chain transactions of the toolbox.
type pWallet interface {
	pchain.Issuer
	conversion.PWallet
}

// runtime holds what a command built from the shared flags.
type runtime struct {
	config   config.Config
	log      logging.Logger
	registry *prometheus.Registry

	db       database.Database
	store    *store.Store
	evm      *rpc.Client
	ledger   *ledger.Ledger
	keychain keychain.Keychain
	address  ids.ShortID
}

func newRuntime(c *cobra.Command) (*runtime, error) {
	v, err := config.BuildViper(c.Flags())
	if err != nil {
		return nil, err
	}
	cfg, err := config.GetConfig(v)
	if err != nil {
		return nil, err
	}
	log := config.NewLogger(version.Client, cfg.Log)
	log.Debug("loaded config",
		zap.String("network", cfg.NetworkName),
		zap.String("pChainURI", cfg.PChainURI),
		zap.String("dataDir", cfg.DataDir),
	)
	return &runtime{
		config:   cfg,
		log:      log,
		registry: prometheus.NewRegistry(),
	}, nil
}

// Store opens the database on first use. Progress of each network is kept
// apart.
func (r *runtime) Store() (*store.Store, error) {
	if r.store != nil {
		return r.store, nil
	}
	db, err := store.NewDatabase(r.config.Database, r.registry, r.log)
	if err != nil {
		return nil, err
	}
	r.db = db
	r.store = store.New(db, r.config.NetworkName)
	return r.store, nil
}

func (r *runtime) Wizard() (*wizard.Wizard, error) {
	s, err := r.Store()
	if err != nil {
		return nil, err
	}
	return wizard.New(r.log, wizard.DefaultFlow(), s)
}

// PKeychain returns the keychain paying for P-Chain transactions, backed by
// either the configured private key or a Ledger, and the address it pays
// from.
func (r *runtime) PKeychain() (keychain.Keychain, ids.ShortID, error) {
	if r.keychain != nil {
		return r.keychain, r.address, nil
	}
	if !r.config.Ledger {
		sk, err := r.config.RequirePrivateKey()
		if err != nil {
			return nil, ids.ShortEmpty, err
		}
		r.keychain, r.address = secp256k1fx.NewKeychain(sk), sk.Address()
		return r.keychain, r.address, nil
	}

	device, err := ledger.New()
	if err != nil {
		return nil, ids.ShortEmpty, err
	}
	r.ledger = device
	kc, err := ledger.NewKeychain(device, r.config.LedgerIndex)
	if err != nil {
		return nil, ids.ShortEmpty, err
	}
	r.keychain, r.address = kc, kc.Addresses().List()[0]
	r.log.Info("using ledger",
		zap.Uint32("index", r.config.LedgerIndex),
		zap.Stringer("address", r.address),
	)
	return r.keychain, r.address, nil
}

// PWallet syncs the UTXOs of the paying keychain. [subnetIDs] are the
// subnets whose owners must be known to sign for them.
func (r *runtime) PWallet(ctx context.Context, subnetIDs ...ids.ID) (pWallet, error) {
	kc, addr, err := r.PKeychain()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	wallet, err := primary.MakeWallet(
		ctx,
		r.config.PChainURI,
		kc,
		secp256k1fx.NewKeychain(),
		primary.WalletConfig{
			SubnetIDs: subnetIDs,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("couldn't sync wallet: %w", err)
	}
	r.log.Info("synced wallet",
		zap.Stringer("address", addr),
		zap.Duration("duration", time.Since(start)),
	)
	return wallet.P(), nil
}

// EVM dials the L1 hosting the validator manager.
func (r *runtime) EVM(ctx context.Context) (*rpc.Client, error) {
	if r.evm != nil {
		return r.evm, nil
	}
	if r.config.EVMRPCURI == "" {
		return nil, fmt.Errorf("%w: set --%s", errMissingEVMRPC, config.EVMRPCURIKey)
	}
	client, err := rpc.DialContext(ctx, r.config.EVMRPCURI)
	if err != nil {
		return nil, fmt.Errorf("couldn't dial %s: %w", r.config.EVMRPCURI, err)
	}
	r.evm = client
	return client, nil
}

// Conversion loads the conversion workflow. The P-Chain wallet is only
// connected by the commands issuing P-Chain transactions, and the EVM
// backends only if an EVM RPC URI is configured.
func (r *runtime) Conversion(ctx context.Context, wallet conversion.PWallet) (*conversion.Workflow, error) {
	s, err := r.Store()
	if err != nil {
		return nil, err
	}

	backends := conversion.Backends{
		Wallet:     wallet,
		PChain:     pchain.NewClient(r.config.PChainURI),
		Aggregator: aggregator.NewClient(r.log, http.DefaultClient, r.config.AggregatorURI, aggregator.DefaultRetryPolicy()),
	}
	cfg := conversion.Config{
		NetworkID:        r.config.NetworkID,
		QuorumPercentage: r.config.QuorumPercentage,
	}
	if sk := r.config.PrivateKey; sk != nil {
		backends.Key = sk.ToECDSA()
	}
	if r.config.PrivateKey != nil || (r.config.Ledger && wallet != nil) {
		_, addr, err := r.PKeychain()
		if err != nil {
			return nil, err
		}
		owner := message.PChainOwner{
			Threshold: 1,
			Addresses: []ids.ShortID{addr},
		}
		cfg.RemainingBalanceOwner = owner
		cfg.DeactivationOwner = owner
	}
	if r.config.EVMRPCURI != "" {
		client, err := r.EVM(ctx)
		if err != nil {
			return nil, err
		}
		backends.EVM = ethclient.NewClient(client)
		backends.Tracer = conversion.NewRPCTracer(client)
	}
	return conversion.New(r.log, cfg, backends, s)
}

func (r *runtime) Close() {
	if r.evm != nil {
		r.evm.Close()
	}
	if r.ledger != nil {
		if err := r.ledger.Close(); err != nil {
			r.log.Warn("failed to close ledger", zap.Error(err))
		}
	}
	if r.db != nil {
		if err := r.db.Close(); err != nil {
			r.log.Warn("failed to close database", zap.Error(err))
		}
	}
	r.log.Stop()
}

// withRuntime wraps a command function with the construction and teardown
// of a runtime.
func withRuntime(f func(*cobra.Command, *runtime, []string) error) func(*cobra.Command, []string) error {
	return func(c *cobra.Command, args []string) error {
		r, err := newRuntime(c)
		if err != nil {
			return err
		}
		defer r.Close()
		return f(c, r, args)
	}
}

func printJSON(c *cobra.Command, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.OutOrStdout(), string(b))
	return err
}

func printLine(c *cobra.Command, a ...any) {
	fmt.Fprintln(c.OutOrStdout(), a...)
}
