// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package conversion

import (
	"errors"
	"fmt"

	"github.com/ava-labs/libevm/common/hexutil"
	"github.com/ava-labs/libevm/rpc"

	"github.com/ava-labs/l1-toolbox/validatormanager"
)

// revertError replaces [err] with the decoded validator manager error if
// [err] carries revert data. Otherwise [err] is returned unchanged.
func revertError(err error) error {
	var dataErr rpc.DataError
	if !errors.As(err, &dataErr) {
		return err
	}
	encoded, ok := dataErr.ErrorData().(string)
	if !ok {
		return err
	}
	data, decodeErr := hexutil.Decode(encoded)
	if decodeErr != nil {
		return err
	}
	revertErr, decodeErr := validatormanager.DecodeRevert(data)
	if decodeErr != nil {
		return err
	}
	return fmt.Errorf("%w: %w", ErrReverted, revertErr)
}
