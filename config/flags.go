// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ava-labs/avalanchego/database/leveldb"
	"github.com/ava-labs/avalanchego/utils/constants"
	"github.com/ava-labs/avalanchego/utils/logging"

	"github.com/ava-labs/l1-toolbox/aggregator"
	"github.com/ava-labs/l1-toolbox/glacier"
	"github.com/ava-labs/l1-toolbox/pchain"
)

// EnvPrefix is prepended to the upper-cased key of every flag to form the
// environment variable that sets it.
const EnvPrefix = "toolbox"

var (
	// [defaultUnexpandedDataDir] will be expanded when reading the flags
	defaultDataDir           = filepath.Join("$HOME", ".l1-toolbox")
	defaultUnexpandedDataDir = "${" + DataDirKey + "}"
	defaultDBDir             = filepath.Join(defaultUnexpandedDataDir, "db")
	defaultLogDir            = filepath.Join(defaultUnexpandedDataDir, "logs")

	defaultAggregatorURI = "http://127.0.0.1:8080"
)

// AddFlags registers the flags shared by every command on [fs].
func AddFlags(fs *pflag.FlagSet) {
	fs.String(ConfigFileKey, "", fmt.Sprintf("Specifies a config file. Values set on the command line or with %s_ environment variables take precedence", strings.ToUpper(EnvPrefix)))
	fs.String(DataDirKey, defaultDataDir, "Sets the base data directory where default sub-directories will be placed unless otherwise specified.")

	// Network
	fs.String(NetworkNameKey, constants.FujiName, fmt.Sprintf("Network to operate on. One of {%s, %s, %s}", constants.FujiName, constants.MainnetName, constants.LocalName))
	fs.String(PChainURIKey, "", "P-Chain API URI. Defaults to the public API of the selected network")
	fs.String(EVMRPCURIKey, "", "JSON-RPC URI of the L1 hosting the validator manager")
	fs.String(AggregatorURIKey, defaultAggregatorURI, "URI of the signature aggregator")
	fs.Uint64(QuorumPercentageKey, aggregator.DefaultQuorumPercentage, "Percentage of stake weight that must sign an aggregated message")
	fs.String(PrivateKeyKey, "", "Private key used to issue P-Chain and EVM transactions, formatted as PrivateKey-...")
	fs.String(PrivateKeyFileKey, "", fmt.Sprintf("File containing the private key. Ignored if %s is set", PrivateKeyKey))
	fs.Bool(PrivateKeyPromptKey, false, "Reads the private key from the terminal without echoing it, if no other key source is set")
	fs.Bool(LedgerKey, false, "Signs P-Chain transactions with the Avalanche app of a connected Ledger device")
	fs.Uint32(LedgerIndexKey, 0, "Index of the Ledger address paying for P-Chain transactions")
	fs.Duration(BalanceRefreshPeriodKey, pchain.DefaultRefreshInterval, "Frequency at which the P-Chain balance is refreshed")

	// Glacier
	fs.String(GlacierURIKey, glacier.DefaultURL, "Glacier API URI")
	fs.Int(GlacierRetryMaxKey, glacier.DefaultConfig().RetryMax, "Maximum number of retries of a failed Glacier request")
	fs.Int(GlacierCacheSizeKey, glacier.DefaultConfig().CacheSize, "Number of Glacier responses kept in memory")
	fs.Float64(GlacierRateLimitKey, glacier.DefaultConfig().RateLimit, "Maximum number of Glacier requests per second. 0 disables the limit")

	// Database
	fs.String(DBTypeKey, leveldb.Name, "Database type to use. Must be one of {leveldb, memdb, pebbledb}")
	fs.String(DBPathKey, defaultDBDir, "Path to database directory")

	// HTTP APIs
	fs.String(HTTPHostKey, "127.0.0.1", "Address of the HTTP server")
	fs.Uint(HTTPPortKey, DefaultHTTPPort, "Port of the HTTP server")
	fs.StringSlice(HTTPAllowedOriginsKey, []string{"*"}, "Origins to allow on the HTTP port")
	fs.Duration(HTTPReadTimeoutKey, 30*time.Second, "Maximum duration for reading the entire request, including the body")
	fs.Duration(HTTPWriteTimeoutKey, 30*time.Second, "Maximum duration before timing out writes of the response")

	// Logging
	fs.String(LogsDirKey, defaultLogDir, "Logging directory")
	fs.String(LogLevelKey, logging.Info.String(), "The log level. Should be one of {verbo, debug, trace, info, warn, error, fatal, off}")
	fs.String(LogDisplayLevelKey, "", "The log display level. If left blank, will inherit the value of log-level. Otherwise, should be one of {verbo, debug, trace, info, warn, error, fatal, off}")
	fs.String(LogFormatKey, "auto", "The structure of log format. Defaults to 'auto' which formats terminal-like logs, when the output is a terminal. Otherwise, should be one of {auto, plain, colors, json}")
	fs.Bool(LogDisableDisplayKey, false, "Disables displaying logs on stdout")
	fs.Uint(LogRotaterMaxSizeKey, 8, "The maximum file size in megabytes of the log file before it gets rotated.")
	fs.Uint(LogRotaterMaxFilesKey, 7, "The maximum number of old log files to retain. 0 means retain all old log files.")
	fs.Uint(LogRotaterMaxAgeKey, 0, "The maximum number of days to retain old log files based on the timestamp encoded in their filename. 0 means retain all old log files.")
	fs.Bool(LogRotaterCompressEnabledKey, false, "Enables the compression of rotated log files through gzip.")
}

// BuildViper binds [fs] and the environment to a new viper instance. If a
// config file is specified, its values are read as the lowest precedence
// source.
func BuildViper(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.SetEnvPrefix(EnvPrefix)
	if err := v.BindPFlags(fs); err != nil {
		return nil, err
	}

	if v.IsSet(ConfigFileKey) {
		v.SetConfigFile(os.ExpandEnv(v.GetString(ConfigFileKey)))
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("couldn't read config file: %w", err)
		}
	}
	return v, nil
}
