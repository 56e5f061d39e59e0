// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

// #################################################################
// When adding a new key, make sure it is added to the flag set too.
// #################################################################
const (
	ConfigFileKey       = "config-file"
	DataDirKey          = "data-dir"
	NetworkNameKey      = "network-id"
	PChainURIKey        = "p-chain-uri"
	EVMRPCURIKey        = "evm-rpc-uri"
	AggregatorURIKey    = "aggregator-uri"
	QuorumPercentageKey = "quorum-percentage"
	PrivateKeyKey       = "private-key"
	PrivateKeyFileKey   = "private-key-file"
	PrivateKeyPromptKey = "private-key-prompt"
	LedgerKey           = "ledger"
	LedgerIndexKey      = "ledger-address-index"

	GlacierURIKey           = "glacier-uri"
	GlacierRetryMaxKey      = "glacier-retry-max"
	GlacierCacheSizeKey     = "glacier-cache-size"
	GlacierRateLimitKey     = "glacier-rate-limit"
	BalanceRefreshPeriodKey = "balance-refresh-period"

	DBTypeKey = "db-type"
	DBPathKey = "db-dir"

	HTTPHostKey           = "http-host"
	HTTPPortKey           = "http-port"
	HTTPAllowedOriginsKey = "http-allowed-origins"
	HTTPReadTimeoutKey    = "http-read-timeout"
	HTTPWriteTimeoutKey   = "http-write-timeout"

	LogsDirKey                   = "log-dir"
	LogLevelKey                  = "log-level"
	LogDisplayLevelKey           = "log-display-level"
	LogFormatKey                 = "log-format"
	LogDisableDisplayKey         = "log-disable-display"
	LogRotaterMaxSizeKey         = "log-rotater-max-size"
	LogRotaterMaxFilesKey        = "log-rotater-max-files"
	LogRotaterMaxAgeKey          = "log-rotater-max-age"
	LogRotaterCompressEnabledKey = "log-rotater-compress-enabled"
)
