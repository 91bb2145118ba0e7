// Copyright (c) 2026 The veyra developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"path"
	"strings"

	"github.com/pterm/pterm"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/veyra-network/kernel/advice"
	"github.com/veyra-network/kernel/txkernel"
	"github.com/veyra-network/kernel/vault"
)

// defaultLogFilename is the harness's log file name inside -logdir,
// grounded on the teacher's repo.DefaultLogFilename.
const defaultLogFilename = "kernelharness.log"

var logLevelMap = map[string]zapcore.Level{
	"debug":   zap.DebugLevel,
	"info":    zap.InfoLevel,
	"warning": zap.WarnLevel,
	"error":   zap.ErrorLevel,
}

var ptermLevelMap = map[string]pterm.LogLevel{
	"debug":   pterm.LogLevelDebug,
	"info":    pterm.LogLevelInfo,
	"warning": pterm.LogLevelWarn,
	"error":   pterm.LogLevelError,
}

// log is the harness's own top-level structured logger; the domain
// packages keep their pterm-backed loggers, wired to a matching level by
// setupLogging below.
var log *zap.SugaredLogger

// setupLogging configures the harness's zap logger (optionally mirrored
// to a rotating file via lumberjack) and raises every domain package's
// swappable pterm logger to the same level, grounded on the teacher's
// setupLogging (log.go) which does the same for its own subsystem
// loggers.
func setupLogging(logDir, level string) error {
	zapLevel, ok := logLevelMap[strings.ToLower(level)]
	if !ok {
		return errors.New("invalid log level")
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Encoding = "console"
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)
	cfg.EncoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
	cfg.DisableCaller = true

	var (
		logger *zap.Logger
		err    error
	)
	if logDir != "" {
		rotator := &lumberjack.Logger{
			Filename:   path.Join(logDir, defaultLogFilename),
			MaxSize:    10, // Megabytes
			MaxBackups: 3,
			MaxAge:     30, // Days
		}
		hook := func(e zapcore.Entry) error {
			rotator.Write([]byte(e.Message + "\n"))
			return nil
		}
		logger, err = cfg.Build(zap.Hooks(hook))
	} else {
		logger, err = cfg.Build()
	}
	if err != nil {
		return err
	}
	log = logger.Sugar()

	ptermLevel, ok := ptermLevelMap[strings.ToLower(level)]
	if !ok {
		ptermLevel = pterm.LogLevelInfo
	}
	ptermLogger := pterm.DefaultLogger.WithLevel(ptermLevel)
	txkernel.UseLogger(ptermLogger)
	vault.UseLogger(ptermLogger)
	advice.UseLogger(ptermLogger)
	return nil
}
