// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ava-labs/avalanchego/utils/logging"
)

// NewLogger returns a logger named [name] that displays on stderr and, if a
// directory is configured, writes to a rotated file in it. Stop must be
// called to flush and close the log file.
func NewLogger(name string, config LogConfig) logging.Logger {
	var cores []logging.WrappedCore
	if !config.DisableDisplay {
		cores = append(cores, logging.NewWrappedCore(
			config.DisplayLevel,
			os.Stderr,
			config.Format.ConsoleEncoder(),
		))
	}
	if config.Directory != "" {
		rw := &lumberjack.Logger{
			Filename:   filepath.Join(config.Directory, name+".log"),
			MaxSize:    config.MaxSize,  // megabytes
			MaxAge:     config.MaxAge,   // days
			MaxBackups: config.MaxFiles, // files
			Compress:   config.Compress,
		}
		cores = append(cores, logging.NewWrappedCore(
			config.Level,
			rw,
			config.Format.FileEncoder(),
		))
	}
	return logging.NewLogger(name, cores...)
}
