// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package glacier

import (
	"context"
	"errors"
	"fmt"
)

type result[T any] struct {
	network string
	value   T
	err     error
}

// lookup queries every network concurrently. The first success is returned
// and the remaining queries are cancelled. If every query fails, the errors
// are joined.
func lookup[T any](ctx context.Context, get func(context.Context, string) (T, error)) (T, string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan result[T], len(Networks))
	for _, network := range Networks {
		go func() {
			value, err := get(ctx, network)
			results <- result[T]{
				network: network,
				value:   value,
				err:     err,
			}
		}()
	}

	var (
		zero T
		errs = make([]error, 0, len(Networks))
	)
	for range Networks {
		r := <-results
		if r.err == nil {
			return r.value, r.network, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", r.network, r.err))
	}
	return zero, "", errors.Join(errs...)
}
