// Copyright (c) 2021 The Abelian Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/abesuite/gaopool/dal"
	"github.com/abesuite/gaopool/ledger"
	"github.com/abesuite/gaopool/poolserver"
	"github.com/abesuite/gaopool/rewardmgr"
	"github.com/abesuite/gaopool/rewardsource"
	"github.com/abesuite/gaopool/service"
	"github.com/abesuite/gaopool/utils"

	"github.com/btcsuite/btclog"
	"github.com/jrick/logrotate/rotator"
)

// logWriter implements an io.Writer that outputs to both standard output and
// the write-end pipe of an initialized log rotator.
type logWriter struct{}

func (logWriter) Write(p []byte) (n int, err error) {
	os.Stdout.Write(p)
	logRotator.Write(p)
	return len(p), nil
}

// Loggers per subsystem.  A single backend logger is created and all subsytem
// loggers created from it will write to the backend.  When adding new
// subsystems, add the subsystem logger variable here and to the
// subsystemLoggers map.
//
// Loggers can not be used before the log rotator has been initialized with a
// log file.  This must be performed early during application startup by calling
// initLogRotator.
var (
	// backendLog is the logging backend used to create all subsystem loggers.
	// The backend must not be used before the log rotator has been initialized,
	// or data races and/or nil pointer dereferences will occur.
	backendLog = btclog.NewBackend(logWriter{})

	// logRotator is one of the logging outputs.  It should be closed on
	// application shutdown.
	logRotator *rotator.Rotator

	poolLog       = backendLog.Logger("POOL")
	ledgerLog     = backendLog.Logger("LEDG")
	dalLog        = backendLog.Logger("DAL")
	rewardMgrLog  = backendLog.Logger("RWDM")
	poolServerLog = backendLog.Logger("RPCS")
	sourceLog     = backendLog.Logger("SRCE")
	utilsLog      = backendLog.Logger("UTIL")
	serviceLog    = backendLog.Logger("SRVC")
)

// Initialize package-global logger variables.
func init() {
	ledger.UseLogger(ledgerLog)
	dal.UseLogger(dalLog)
	rewardmgr.UseLogger(rewardMgrLog)
	poolserver.UseLogger(poolServerLog)
	rewardsource.UseLogger(sourceLog)
	utils.UseLogger(utilsLog)
	service.UseLogger(serviceLog)
}

// subsystemLoggers maps each subsystem identifier to its associated logger.
var subsystemLoggers = map[string]btclog.Logger{
	"POOL": poolLog,
	"LEDG": ledgerLog,
	"DAL":  dalLog,
	"RWDM": rewardMgrLog,
	"RPCS": poolServerLog,
	"SRCE": sourceLog,
	"UTIL": utilsLog,
	"SRVC": serviceLog,
}

// initLogRotator initializes the logging rotater to write logs to logFile and
// create roll files in the same directory.  It must be called before the
// package-global log rotater variables are used.
func initLogRotator(logFile string) {
	logDir, _ := filepath.Split(logFile)
	err := os.MkdirAll(logDir, 0700)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create log directory: %v\n", err)
		os.Exit(1)
	}
	r, err := rotator.New(logFile, 10*1024, false, 30)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create file rotator: %v\n", err)
		os.Exit(1)
	}

	logRotator = r
}

// setLogLevel sets the logging level for provided subsystem.  Invalid
// subsystems are ignored.
func setLogLevel(subsystemID string, logLevel string) {
	// Ignore invalid subsystems.
	logger, ok := subsystemLoggers[subsystemID]
	if !ok {
		return
	}

	// Defaults to info if the log level is invalid.
	level, _ := btclog.LevelFromString(logLevel)
	logger.SetLevel(level)
}

// setLogLevels sets the log level for all subsystem loggers to the passed
// level.
func setLogLevels(logLevel string) {
	// Configure all sub-systems with the new logging level.
	for subsystemID := range subsystemLoggers {
		setLogLevel(subsystemID, logLevel)
	}
}
