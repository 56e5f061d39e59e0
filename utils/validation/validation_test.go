// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsValidDomain(t *testing.T) {
	tests := []struct {
		domain   string
		expected bool
	}{
		{domain: "example.com", expected: true},
		{domain: "rpc.my-l1.example.org", expected: true},
		{domain: "example.com.", expected: true},
		{domain: "not a domain", expected: false},
		{domain: "localhost", expected: false},
		{domain: "-bad.example.com", expected: false},
		{domain: "bad-.example.com", expected: false},
		{domain: "example.c0m", expected: false},
		{domain: "https://example.com", expected: false},
		{domain: "example..com", expected: false},
		{domain: strings.Repeat("a", 64) + ".com", expected: false},
		{domain: "", expected: false},
	}
	for _, test := range tests {
		t.Run(test.domain, func(t *testing.T) {
			require.Equal(t, test.expected, IsValidDomain(test.domain))
		})
	}
}

func TestIsValidIP(t *testing.T) {
	tests := []struct {
		ip       string
		expected bool
	}{
		{ip: "1.2.3.4", expected: true},
		{ip: "127.0.0.1", expected: true},
		{ip: "999.1.1.1", expected: false},
		{ip: "1.2.3", expected: false},
		{ip: "01.2.3.4", expected: false},
		{ip: "::1", expected: false},
		{ip: "example.com", expected: false},
	}
	for _, test := range tests {
		t.Run(test.ip, func(t *testing.T) {
			require.Equal(t, test.expected, IsValidIP(test.ip))
		})
	}
}

func TestIsValidChainName(t *testing.T) {
	require := require.New(t)

	require.True(IsValidChainName("mychain"))
	require.True(IsValidChainName("My Chain 2"))
	require.False(IsValidChainName(""))
	require.False(IsValidChainName(" leading"))
	require.False(IsValidChainName("two  spaces"))
	require.False(IsValidChainName("dash-name"))
	require.False(IsValidChainName(strings.Repeat("a", MaxChainNameLen+1)))
}

func TestIsValidAddress(t *testing.T) {
	require := require.New(t)

	require.True(IsValidAddress("0x8db97C7cEcE249c2b98bDC0226Cc4C2A57BF52FC"))
	require.False(IsValidAddress("8db97C7cEcE249c2b98bDC0226Cc4C2A57BF52FC"))
	require.False(IsValidAddress("0x8db97C7cEcE249c2b98bDC0226Cc4C2A57BF52"))
}
