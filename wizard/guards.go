// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package wizard

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/ava-labs/l1-toolbox/utils/validation"
)

var (
	ErrMissingValue  = errors.New("missing value")
	ErrInvalidValue  = errors.New("invalid value")
	ErrNotConfirmed  = errors.New("not confirmed")
	ErrLowBalance    = errors.New("insufficient balance")
	errNotPositiveID = errors.New("must be a positive integer")
)

// Values are the fields the operator filled in while walking the flow.
type Values map[string]string

// Guard returns nil if the step holding it may be left forward.
type Guard func(Values) error

// All holds when every one of [guards] holds.
func All(guards ...Guard) Guard {
	return func(v Values) error {
		for _, guard := range guards {
			if err := guard(v); err != nil {
				return err
			}
		}
		return nil
	}
}

// Required holds when every key has a non-empty value.
func Required(keys ...string) Guard {
	return func(v Values) error {
		for _, key := range keys {
			if len(v[key]) == 0 {
				return fmt.Errorf("%w: %s", ErrMissingValue, key)
			}
		}
		return nil
	}
}

// Confirmed holds when the checkbox stored under [key] was ticked.
func Confirmed(key string) Guard {
	return func(v Values) error {
		if v[key] != "true" {
			return fmt.Errorf("%w: %s", ErrNotConfirmed, key)
		}
		return nil
	}
}

func ValidChainName(key string) Guard {
	return func(v Values) error {
		if !validation.IsValidChainName(v[key]) {
			return fmt.Errorf("%w: %s=%q", ErrInvalidValue, key, v[key])
		}
		return nil
	}
}

func ValidEVMChainID(key string) Guard {
	return func(v Values) error {
		id, err := strconv.ParseUint(v[key], 10, 64)
		if err != nil || id == 0 {
			return fmt.Errorf("%w: %s %s", ErrInvalidValue, key, errNotPositiveID)
		}
		return nil
	}
}

func ValidAddress(key string) Guard {
	return func(v Values) error {
		if !validation.IsValidAddress(v[key]) {
			return fmt.Errorf("%w: %s=%q", ErrInvalidValue, key, v[key])
		}
		return nil
	}
}

// MinBalance holds when the balance stored under [key] is at least [min].
func MinBalance(key string, min uint64) Guard {
	return func(v Values) error {
		balance, err := strconv.ParseUint(v[key], 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrMissingValue, key)
		}
		if balance < min {
			return fmt.Errorf("%w: %d < %d", ErrLowBalance, balance, min)
		}
		return nil
	}
}
