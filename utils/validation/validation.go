// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package validation checks operator supplied values before they are used to
// build genesis files, node commands or P-Chain transactions.
package validation

import (
	"regexp"
	"strings"

	"github.com/ava-labs/avalanchego/utils/ips"
	"github.com/ava-labs/libevm/common"
)

const (
	maxDomainLen = 253
	maxLabelLen  = 63

	// MaxChainNameLen matches the P-Chain limit on blockchain names.
	MaxChainNameLen = 128
)

var (
	labelRegex     = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]*[a-zA-Z0-9])?$`)
	tldRegex       = regexp.MustCompile(`^[a-zA-Z]{2,63}$`)
	chainNameRegex = regexp.MustCompile(`^[a-zA-Z0-9]+( [a-zA-Z0-9]+)*$`)
)

// IsValidDomain returns true if [domain] is a fully qualified host name such
// as "example.com" or "rpc.my-l1.example.org".
func IsValidDomain(domain string) bool {
	domain = strings.TrimSuffix(domain, ".")
	if len(domain) == 0 || len(domain) > maxDomainLen {
		return false
	}

	labels := strings.Split(domain, ".")
	if len(labels) < 2 {
		return false
	}
	for _, label := range labels {
		if len(label) > maxLabelLen || !labelRegex.MatchString(label) {
			return false
		}
	}
	return tldRegex.MatchString(labels[len(labels)-1])
}

// IsValidIP returns true if [ip] is a dotted-quad IPv4 address.
func IsValidIP(ip string) bool {
	addr, err := ips.ParseAddr(ip)
	return err == nil && addr.Is4()
}

// IsValidChainName returns true if [name] can be used as a blockchain name:
// alphanumeric words separated by single spaces.
func IsValidChainName(name string) bool {
	return len(name) <= MaxChainNameLen && chainNameRegex.MatchString(name)
}

// IsValidAddress returns true if [addr] is a 0x prefixed EVM address.
func IsValidAddress(addr string) bool {
	return strings.HasPrefix(addr, "0x") && common.IsHexAddress(addr)
}
