// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package toolbox

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/rpc/v2"
	"go.uber.org/zap"

	"github.com/ava-labs/avalanchego/api"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/logging"

	"github.com/ava-labs/l1-toolbox/conversion"
	"github.com/ava-labs/l1-toolbox/genesis"
	"github.com/ava-labs/l1-toolbox/glacier"
	"github.com/ava-labs/l1-toolbox/nodecmd"
	"github.com/ava-labs/l1-toolbox/pchain"
	"github.com/ava-labs/l1-toolbox/version"
	"github.com/ava-labs/l1-toolbox/wizard"

	avajson "github.com/ava-labs/avalanchego/utils/json"
)

const Endpoint = "/ext/toolbox"

var errNotEnabled = errors.New("not enabled on this server")

// Lookup finds subnets and blockchains on the public networks.
type Lookup interface {
	LookupSubnet(ctx context.Context, subnetID ids.ID) (*glacier.Subnet, string, error)
	LookupBlockchain(ctx context.Context, blockchainID ids.ID) (*glacier.Blockchain, string, error)
}

// Config holds the components the service exposes. Nil components make the
// methods that need them return an error.
type Config struct {
	Log        logging.Logger
	NetworkID  uint32
	Wizard     *wizard.Wizard
	Conversion *conversion.Workflow
	PChain     pchain.Reader
	Glacier    Lookup
}

// Service is the API service of the toolbox
type Service struct {
	Config
}

// NewService returns a new toolbox API service
func NewService(config Config) (http.Handler, error) {
	server := rpc.NewServer()
	codec := avajson.NewCodec()
	server.RegisterCodec(codec, "application/json")
	server.RegisterCodec(codec, "application/json;charset=UTF-8")
	return server, server.RegisterService(&Service{Config: config}, "toolbox")
}

func (s *Service) called(method string) {
	s.Log.Debug("API called",
		zap.String("service", "toolbox"),
		zap.String("method", method),
	)
}

// GetVersion returns the version of the toolbox
func (s *Service) GetVersion(_ *http.Request, _ *struct{}, reply *version.Versions) error {
	s.called("getVersion")

	*reply = *version.GetVersions()
	return nil
}

type GenerateGenesisReply struct {
	Genesis json.RawMessage `json:"genesis"`
}

// GenerateGenesis returns the subnet-evm genesis described by the params
func (s *Service) GenerateGenesis(_ *http.Request, args *genesis.Params, reply *GenerateGenesisReply) error {
	s.called("generateGenesis")

	g, err := genesis.Generate(*args)
	if err != nil {
		return err
	}
	reply.Genesis, err = json.Marshal(g)
	return err
}

type WizardStep struct {
	ID    wizard.StepID `json:"id"`
	Title string        `json:"title"`
	Group string        `json:"group"`
}

type WizardState struct {
	Current     wizard.StepID `json:"currentStep"`
	MaxAdvanced wizard.StepID `json:"maxAdvancedStep"`
	// Blocker is the reason the current step can't be left forward. Empty
	// if it can.
	Blocker string        `json:"blocker,omitempty"`
	Steps   []WizardStep  `json:"steps"`
	Values  wizard.Values `json:"values"`
}

func (s *Service) wizardState(reply *WizardState) error {
	if s.Wizard == nil {
		return errNotEnabled
	}

	progress := s.Wizard.Progress()
	reply.Current = progress.Current
	reply.MaxAdvanced = progress.MaxAdvanced
	reply.Blocker = ""
	if err := s.Wizard.CanAdvance(); err != nil {
		reply.Blocker = err.Error()
	}
	reply.Steps = reply.Steps[:0]
	for _, group := range s.Wizard.Flow().Groups() {
		for _, step := range group.Steps {
			reply.Steps = append(reply.Steps, WizardStep{
				ID:    step.ID,
				Title: step.Title,
				Group: group.Name,
			})
		}
	}
	reply.Values = s.Wizard.Values()
	return nil
}

// GetWizardState returns the steps of the launch flow and the progress made
func (s *Service) GetWizardState(_ *http.Request, _ *struct{}, reply *WizardState) error {
	s.called("getWizardState")

	return s.wizardState(reply)
}

type SetWizardValueArgs struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// SetWizardValue stores a value collected by the flow. An empty value clears
// the key.
func (s *Service) SetWizardValue(_ *http.Request, args *SetWizardValueArgs, reply *WizardState) error {
	s.called("setWizardValue")

	if s.Wizard == nil {
		return errNotEnabled
	}
	if err := s.Wizard.Set(args.Key, args.Value); err != nil {
		return err
	}
	return s.wizardState(reply)
}

// NextStep leaves the current step forward if its guard holds
func (s *Service) NextStep(_ *http.Request, _ *struct{}, reply *WizardState) error {
	s.called("nextStep")

	if s.Wizard == nil {
		return errNotEnabled
	}
	if _, err := s.Wizard.Next(); err != nil {
		return err
	}
	return s.wizardState(reply)
}

// PreviousStep moves back one step
func (s *Service) PreviousStep(_ *http.Request, _ *struct{}, reply *WizardState) error {
	s.called("previousStep")

	if s.Wizard == nil {
		return errNotEnabled
	}
	if _, err := s.Wizard.Back(); err != nil {
		return err
	}
	return s.wizardState(reply)
}

type GoToStepArgs struct {
	Step wizard.StepID `json:"step"`
}

// GoToStep jumps to a step that was already reached
func (s *Service) GoToStep(_ *http.Request, args *GoToStepArgs, reply *WizardState) error {
	s.called("goToStep")

	if s.Wizard == nil {
		return errNotEnabled
	}
	if err := s.Wizard.GoTo(args.Step); err != nil {
		return err
	}
	return s.wizardState(reply)
}

// ResetWizard forgets every value and returns to the first step
func (s *Service) ResetWizard(_ *http.Request, _ *struct{}, reply *WizardState) error {
	s.called("resetWizard")

	if s.Wizard == nil {
		return errNotEnabled
	}
	if err := s.Wizard.Reset(); err != nil {
		return err
	}
	return s.wizardState(reply)
}

type NodeCommandsArgs struct {
	SubnetIDs []string `json:"subnetIDs"`
	ChainID   ids.ID   `json:"chainID"`
	RPC       bool     `json:"rpc"`
	Domain    string   `json:"domain"`
	ImageTag  string   `json:"imageTag"`
}

type NodeCommandsReply struct {
	Docker      string `json:"docker"`
	ChainConfig string `json:"chainConfig,omitempty"`
	HealthCheck string `json:"healthCheck"`
	NodeID      string `json:"nodeID"`
	Caddyfile   string `json:"caddyfile,omitempty"`
	CaddyRun    string `json:"caddyRun,omitempty"`
	Compose     string `json:"compose,omitempty"`
}

// GetNodeCommands returns the commands that set up a node tracking the
// given subnets
func (s *Service) GetNodeCommands(_ *http.Request, args *NodeCommandsArgs, reply *NodeCommandsReply) error {
	s.called("getNodeCommands")

	var err error
	reply.Docker, err = nodecmd.DockerRunCommand(nodecmd.DockerConfig{
		NetworkID: s.NetworkID,
		SubnetIDs: args.SubnetIDs,
		RPC:       args.RPC,
		ImageTag:  args.ImageTag,
	})
	if err != nil {
		return err
	}
	if args.ChainID != ids.Empty {
		reply.ChainConfig, err = nodecmd.ChainConfigCommand(args.ChainID, args.RPC)
		if err != nil {
			return err
		}
	}
	reply.HealthCheck = nodecmd.HealthCheckCommand("127.0.0.1", nodecmd.DefaultHTTPPort)
	reply.NodeID = nodecmd.NodeIDCommand("127.0.0.1", nodecmd.DefaultHTTPPort)
	if !args.RPC || args.Domain == "" {
		return nil
	}

	reply.Caddyfile, err = nodecmd.Caddyfile(args.Domain, nodecmd.DefaultHTTPPort)
	if err != nil {
		return err
	}
	reply.CaddyRun = nodecmd.CaddyRunCommand("~/caddy")
	compose, err := nodecmd.ComposeConfig(nodecmd.ComposeParams{
		NetworkID: s.NetworkID,
		SubnetIDs: args.SubnetIDs,
		Domain:    args.Domain,
		ImageTag:  args.ImageTag,
	})
	reply.Compose = string(compose)
	return err
}

// GetConversionState returns the progress of the conversion to an L1
func (s *Service) GetConversionState(_ *http.Request, _ *struct{}, reply *ConversionState) error {
	s.called("getConversionState")

	if s.Conversion == nil {
		return errNotEnabled
	}
	reply.State = s.Conversion.State()
	reply.Next = reply.State.Next()
	return nil
}

type ConversionState struct {
	conversion.State
	Next conversion.Step `json:"nextStep"`
}

// GetBalance returns the P-Chain balance of the given addresses
func (s *Service) GetBalance(r *http.Request, args *api.JSONAddresses, reply *pchain.Balance) error {
	s.called("getBalance")

	if s.PChain == nil {
		return errNotEnabled
	}
	balance, err := s.PChain.GetBalance(r.Context(), args.Addresses)
	if err != nil {
		return err
	}
	*reply = *balance
	return nil
}

type LookupArgs struct {
	ID ids.ID `json:"id"`
}

type LookupSubnetReply struct {
	Network string          `json:"network"`
	Subnet  *glacier.Subnet `json:"subnet"`
}

// LookupSubnet finds a subnet on fuji or mainnet
func (s *Service) LookupSubnet(r *http.Request, args *LookupArgs, reply *LookupSubnetReply) error {
	s.called("lookupSubnet")

	if s.Glacier == nil {
		return errNotEnabled
	}
	var err error
	reply.Subnet, reply.Network, err = s.Glacier.LookupSubnet(r.Context(), args.ID)
	return err
}

type LookupBlockchainReply struct {
	Network    string              `json:"network"`
	Blockchain *glacier.Blockchain `json:"blockchain"`
}

// LookupBlockchain finds a blockchain on fuji or mainnet
func (s *Service) LookupBlockchain(r *http.Request, args *LookupArgs, reply *LookupBlockchainReply) error {
	s.called("lookupBlockchain")

	if s.Glacier == nil {
		return errNotEnabled
	}
	var err error
	reply.Blockchain, reply.Network, err = s.Glacier.LookupBlockchain(r.Context(), args.ID)
	return err
}
