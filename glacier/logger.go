// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package glacier

import (
	"fmt"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"

	"github.com/ava-labs/avalanchego/utils/logging"
)

var _ retryablehttp.LeveledLogger = leveledLogger{}

// leveledLogger writes retryablehttp logs to an avalanchego logger.
type leveledLogger struct {
	log logging.Logger
}

func (l leveledLogger) Error(msg string, keysAndValues ...any) {
	l.log.Error(msg, fields(keysAndValues)...)
}

func (l leveledLogger) Info(msg string, keysAndValues ...any) {
	l.log.Info(msg, fields(keysAndValues)...)
}

func (l leveledLogger) Debug(msg string, keysAndValues ...any) {
	l.log.Debug(msg, fields(keysAndValues)...)
}

func (l leveledLogger) Warn(msg string, keysAndValues ...any) {
	l.log.Warn(msg, fields(keysAndValues)...)
}

func fields(keysAndValues []any) []zap.Field {
	fields := make([]zap.Field, 0, (len(keysAndValues)+1)/2)
	for i := 0; i < len(keysAndValues); i += 2 {
		key := fmt.Sprint(keysAndValues[i])
		if i+1 == len(keysAndValues) {
			fields = append(fields, zap.Skip())
			break
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}
