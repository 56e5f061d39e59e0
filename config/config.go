// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/ava-labs/avalanchego/utils/constants"
	"github.com/ava-labs/avalanchego/utils/crypto/secp256k1"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/wallet/subnet/primary"

	"github.com/ava-labs/l1-toolbox/glacier"
	"github.com/ava-labs/l1-toolbox/store"
)

const DefaultHTTPPort = 9660

var (
	errUnknownNetwork = errors.New("unknown network")
	errMissingKey     = errors.New("no private key was provided")
	errNotTerminal    = errors.New("stdin is not a terminal")
	errLedgerAndKey   = errors.New("a ledger and a private key can't both be used")
)

// readPassword reads a line from the terminal without echoing it.
var readPassword = func() ([]byte, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, errNotTerminal
	}
	fmt.Fprint(os.Stderr, "Private key: ")
	defer fmt.Fprintln(os.Stderr)
	return term.ReadPassword(fd)
}

type HTTPConfig struct {
	Host           string        `json:"host" validate:"required"`
	Port           uint16        `json:"port"`
	AllowedOrigins []string      `json:"allowedOrigins"`
	ReadTimeout    time.Duration `json:"readTimeout" validate:"gt=0"`
	WriteTimeout   time.Duration `json:"writeTimeout" validate:"gt=0"`
}

type LogConfig struct {
	Directory      string         `json:"directory"`
	Level          logging.Level  `json:"level"`
	DisplayLevel   logging.Level  `json:"displayLevel"`
	Format         logging.Format `json:"format"`
	DisableDisplay bool           `json:"disableDisplay"`
	MaxSize        int            `json:"maxSize" validate:"gte=0"`
	MaxFiles       int            `json:"maxFiles" validate:"gte=0"`
	MaxAge         int            `json:"maxAge" validate:"gte=0"`
	Compress       bool           `json:"compress"`
}

type Config struct {
	DataDir string `json:"dataDir"`

	NetworkName string `json:"networkName" validate:"oneof=fuji mainnet local"`
	NetworkID   uint32 `json:"networkID"`

	PChainURI            string        `json:"pChainURI" validate:"required,url"`
	EVMRPCURI            string        `json:"evmRPCURI" validate:"omitempty,url"`
	AggregatorURI        string        `json:"aggregatorURI" validate:"required,url"`
	QuorumPercentage     uint64        `json:"quorumPercentage" validate:"gte=33,lte=100"`
	BalanceRefreshPeriod time.Duration `json:"balanceRefreshPeriod" validate:"gt=0"`

	// PrivateKey is nil if no key was configured. Commands that issue
	// transactions call RequirePrivateKey.
	PrivateKey *secp256k1.PrivateKey `json:"-" validate:"-"`

	// Ledger signs P-Chain transactions with the key at LedgerIndex of a
	// Ledger device instead of PrivateKey.
	Ledger      bool   `json:"ledger"`
	LedgerIndex uint32 `json:"ledgerIndex"`

	Glacier  glacier.Config       `json:"glacier"`
	Database store.DatabaseConfig `json:"database"`
	HTTP     HTTPConfig           `json:"http"`
	Log      LogConfig            `json:"log"`
}

// RequirePrivateKey returns the configured key or an error if there is none.
func (c *Config) RequirePrivateKey() (*secp256k1.PrivateKey, error) {
	if c.PrivateKey == nil {
		return nil, fmt.Errorf("%w: set --%s, --%s or --%s", errMissingKey, PrivateKeyKey, PrivateKeyFileKey, PrivateKeyPromptKey)
	}
	return c.PrivateKey, nil
}

// GetConfig reads and validates the configuration defined in [v].
func GetConfig(v *viper.Viper) (Config, error) {
	var (
		config = Config{
			DataDir:              getExpandedArg(v, DataDirKey),
			NetworkName:          v.GetString(NetworkNameKey),
			PChainURI:            v.GetString(PChainURIKey),
			EVMRPCURI:            v.GetString(EVMRPCURIKey),
			AggregatorURI:        v.GetString(AggregatorURIKey),
			QuorumPercentage:     v.GetUint64(QuorumPercentageKey),
			BalanceRefreshPeriod: v.GetDuration(BalanceRefreshPeriodKey),
			Ledger:               v.GetBool(LedgerKey),
			LedgerIndex:          v.GetUint32(LedgerIndexKey),
		}
		err error
	)

	config.NetworkID, config.PChainURI, err = getNetwork(config.NetworkName, config.PChainURI)
	if err != nil {
		return Config{}, err
	}

	config.PrivateKey, err = getPrivateKey(v)
	if err != nil {
		return Config{}, err
	}
	if config.Ledger && config.PrivateKey != nil {
		return Config{}, errLedgerAndKey
	}

	config.Glacier = glacier.DefaultConfig()
	config.Glacier.URL = v.GetString(GlacierURIKey)
	config.Glacier.RetryMax = v.GetInt(GlacierRetryMaxKey)
	config.Glacier.CacheSize = v.GetInt(GlacierCacheSizeKey)
	config.Glacier.RateLimit = v.GetFloat64(GlacierRateLimitKey)

	config.Database = store.DatabaseConfig{
		Path: getExpandedArg(v, DBPathKey),
		Name: v.GetString(DBTypeKey),
	}

	config.HTTP = HTTPConfig{
		Host:           v.GetString(HTTPHostKey),
		Port:           uint16(v.GetUint(HTTPPortKey)),
		AllowedOrigins: v.GetStringSlice(HTTPAllowedOriginsKey),
		ReadTimeout:    v.GetDuration(HTTPReadTimeoutKey),
		WriteTimeout:   v.GetDuration(HTTPWriteTimeoutKey),
	}

	config.Log, err = getLogConfig(v)
	if err != nil {
		return Config{}, err
	}

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(config); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return config, nil
}

func getNetwork(name, pChainURI string) (uint32, string, error) {
	var defaultURI string
	switch name {
	case constants.MainnetName:
		defaultURI = primary.MainnetAPIURI
	case constants.FujiName:
		defaultURI = primary.FujiAPIURI
	case constants.LocalName:
		defaultURI = primary.LocalAPIURI
	default:
		return 0, "", fmt.Errorf("%w: %q", errUnknownNetwork, name)
	}

	networkID, err := constants.NetworkID(name)
	if err != nil {
		return 0, "", err
	}
	if pChainURI == "" {
		pChainURI = defaultURI
	}
	return networkID, pChainURI, nil
}

func getPrivateKey(v *viper.Viper) (*secp256k1.PrivateKey, error) {
	keyStr := v.GetString(PrivateKeyKey)
	if keyStr == "" && v.GetString(PrivateKeyFileKey) != "" {
		keyBytes, err := os.ReadFile(getExpandedArg(v, PrivateKeyFileKey))
		if err != nil {
			return nil, fmt.Errorf("couldn't read private key file: %w", err)
		}
		keyStr = strings.TrimSpace(string(keyBytes))
	}
	if keyStr == "" && v.GetBool(PrivateKeyPromptKey) {
		keyBytes, err := readPassword()
		if err != nil {
			return nil, fmt.Errorf("couldn't read private key: %w", err)
		}
		keyStr = strings.TrimSpace(string(keyBytes))
	}
	if keyStr == "" {
		return nil, nil
	}

	sk := new(secp256k1.PrivateKey)
	if err := sk.UnmarshalText([]byte(`"` + keyStr + `"`)); err != nil {
		return nil, fmt.Errorf("couldn't parse private key: %w", err)
	}
	return sk, nil
}

func getLogConfig(v *viper.Viper) (LogConfig, error) {
	config := LogConfig{
		Directory:      getExpandedArg(v, LogsDirKey),
		DisableDisplay: v.GetBool(LogDisableDisplayKey),
		MaxSize:        int(v.GetUint(LogRotaterMaxSizeKey)),
		MaxFiles:       int(v.GetUint(LogRotaterMaxFilesKey)),
		MaxAge:         int(v.GetUint(LogRotaterMaxAgeKey)),
		Compress:       v.GetBool(LogRotaterCompressEnabledKey),
	}

	var err error
	config.Level, err = logging.ToLevel(v.GetString(LogLevelKey))
	if err != nil {
		return LogConfig{}, err
	}

	config.DisplayLevel = config.Level
	if displayLevel := v.GetString(LogDisplayLevelKey); displayLevel != "" {
		config.DisplayLevel, err = logging.ToLevel(displayLevel)
		if err != nil {
			return LogConfig{}, err
		}
	}

	config.Format, err = logging.ToFormat(v.GetString(LogFormatKey), os.Stderr.Fd())
	return config, err
}

// getExpandedArg expands environment variables in the value of [key]. The
// data directory can be referenced as ${data-dir}.
func getExpandedArg(v *viper.Viper, key string) string {
	return getExpandedString(v, v.GetString(key))
}

func getExpandedString(v *viper.Viper, s string) string {
	return os.Expand(
		s,
		func(strVar string) string {
			if strVar == DataDirKey {
				return os.ExpandEnv(v.GetString(DataDirKey))
			}
			return os.Getenv(strVar)
		},
	)
}
