// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import "net/http"

type Option func(*Options)

type Options struct {
	headers http.Header
}

func NewOptions(ops []Option) *Options {
	o := &Options{
		headers: http.Header{},
	}
	for _, op := range ops {
		op(o)
	}
	return o
}

func (o *Options) Headers() http.Header {
	return o.headers
}

// WithUserAgent identifies the caller to the node.
func WithUserAgent(application string) Option {
	return WithHeader("User-Agent", application)
}

func WithHeader(key, val string) Option {
	return func(o *Options) {
		o.headers.Set(key, val)
	}
}
