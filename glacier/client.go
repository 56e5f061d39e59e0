// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package glacier looks up blockchain and subnet metadata in the Glacier
// indexer.
package glacier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/logging"
)

const (
	DefaultURL = "https://glacier-api.avax.network"

	Fuji    = "fuji"
	Mainnet = "mainnet"

	defaultCacheSize = 256
	defaultRateLimit = 10
)

var (
	ErrNotFound = errors.New("not found")
	errStatus   = errors.New("unexpected status")
)

// Networks are the networks a lookup tries.
var Networks = []string{Fuji, Mainnet}

type Blockchain struct {
	CreateBlockTimestamp uint64 `json:"createBlockTimestamp"`
	CreateBlockNumber    string `json:"createBlockNumber"`
	BlockchainID         ids.ID `json:"blockchainId"`
	VMID                 ids.ID `json:"vmId"`
	SubnetID             ids.ID `json:"subnetId"`
	BlockchainName       string `json:"blockchainName"`
	EVMChainID           uint64 `json:"evmChainId,omitempty"`
}

type ValidatorManagerDetails struct {
	BlockchainID    ids.ID `json:"blockchainId"`
	ContractAddress string `json:"contractAddress"`
}

type Subnet struct {
	CreateBlockTimestamp        uint64                   `json:"createBlockTimestamp"`
	CreateBlockIndex            string                   `json:"createBlockIndex"`
	SubnetID                    ids.ID                   `json:"subnetId"`
	OwnerAddresses              []string                 `json:"ownerAddresses"`
	Threshold                   uint32                   `json:"threshold"`
	Locktime                    uint64                   `json:"locktime"`
	IsL1                        bool                     `json:"isL1"`
	L1ConversionTransactionHash string                   `json:"l1ConversionTransactionHash,omitempty"`
	L1ValidatorManagerDetails   *ValidatorManagerDetails `json:"l1ValidatorManagerDetails,omitempty"`
	Blockchains                 []Blockchain             `json:"blockchains"`
}

type Config struct {
	URL          string
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	CacheSize    int
	// RateLimit is the number of requests sent per second. Zero disables
	// the limit.
	RateLimit float64 `validate:"gte=0"`
}

func DefaultConfig() Config {
	return Config{
		URL:          DefaultURL,
		RetryMax:     3,
		RetryWaitMin: 500 * time.Millisecond,
		RetryWaitMax: 2 * time.Second,
		CacheSize:    defaultCacheSize,
		RateLimit:    defaultRateLimit,
	}
}

type Client struct {
	log     logging.Logger
	baseURL *url.URL
	client  *retryablehttp.Client
	limiter *rate.Limiter
	cache   *lru.Cache[string, []byte]
}

func NewClient(log logging.Logger, config Config) (*Client, error) {
	baseURL, err := url.Parse(config.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing glacier url: %w", err)
	}
	cacheSize := config.CacheSize
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	cache, err := lru.New[string, []byte](cacheSize)
	if err != nil {
		return nil, err
	}

	client := &retryablehttp.Client{
		HTTPClient:   retryablehttp.NewClient().HTTPClient,
		RetryMax:     config.RetryMax,
		RetryWaitMin: config.RetryWaitMin,
		RetryWaitMax: config.RetryWaitMax,
		Backoff:      retryablehttp.DefaultBackoff,
		CheckRetry:   retryablehttp.DefaultRetryPolicy,
		Logger:       leveledLogger{log: log},
	}
	client.ResponseLogHook = func(_ retryablehttp.Logger, resp *http.Response) {
		log.Debug("glacier response received",
			zap.Stringer("url", resp.Request.URL),
			zap.Int("status", resp.StatusCode),
		)
	}
	return &Client{
		log:     log,
		baseURL: baseURL,
		client:  client,
		limiter: newLimiter(config.RateLimit),
		cache:   cache,
	}, nil
}

// newLimiter allows bursts of one second worth of requests.
func newLimiter(limit float64) *rate.Limiter {
	if limit <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(limit), max(1, int(limit)))
}

func (c *Client) GetBlockchain(ctx context.Context, network string, blockchainID ids.ID) (*Blockchain, error) {
	blockchain := &Blockchain{}
	err := c.get(ctx, blockchain, "v1", "networks", network, "blockchains", blockchainID.String())
	return blockchain, err
}

func (c *Client) GetSubnet(ctx context.Context, network string, subnetID ids.ID) (*Subnet, error) {
	subnet := &Subnet{}
	err := c.get(ctx, subnet, "v1", "networks", network, "subnets", subnetID.String())
	return subnet, err
}

// LookupBlockchain finds [blockchainID] on whichever network knows it.
func (c *Client) LookupBlockchain(ctx context.Context, blockchainID ids.ID) (*Blockchain, string, error) {
	return lookup(ctx, func(ctx context.Context, network string) (*Blockchain, error) {
		return c.GetBlockchain(ctx, network, blockchainID)
	})
}

// LookupSubnet finds [subnetID] on whichever network knows it.
func (c *Client) LookupSubnet(ctx context.Context, subnetID ids.ID) (*Subnet, string, error) {
	return lookup(ctx, func(ctx context.Context, network string) (*Subnet, error) {
		return c.GetSubnet(ctx, network, subnetID)
	})
}

func (c *Client) get(ctx context.Context, v any, path ...string) error {
	u := c.baseURL.JoinPath(path...).String()
	if body, ok := c.cache.Get(u); ok {
		return json.Unmarshal(body, v)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for rate limit: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("creating HTTP request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("doing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, u)
	default:
		return fmt.Errorf("%w: %s: %s", errStatus, resp.Status, body)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decoding response body: %w", err)
	}
	c.cache.Add(u, body)
	return nil
}
