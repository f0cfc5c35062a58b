// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

// Package logging configures the process-wide logger.
//
// Library code logs with the standard library's log package using a
// bracketed level prefix, such as log.Printf("[DEBUG] ..."). This package
// redirects the standard logger into an hclog logger that infers the
// level from that prefix, so the LAZYDOC_LOG environment variable filters
// everything in one place.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"
)

const (
	// EnvLog selects the log level: TRACE, DEBUG, INFO, WARN, ERROR or OFF.
	EnvLog = "LAZYDOC_LOG"

	// EnvLogFile names a file that log output is appended to instead of
	// stderr.
	EnvLogFile = "LAZYDOC_LOG_PATH"

	// EnvLogJSON switches the log output to JSON lines when set to "1".
	EnvLogJSON = "LAZYDOC_LOG_JSON"
)

var (
	logger    hclog.Logger
	logLevel  hclog.Level
	setupOnce sync.Once
)

// HCLogger returns the root logger. Subsystems that want structured fields
// should derive a named logger from it.
func HCLogger() hclog.Logger {
	setup()
	return logger
}

// CurrentLogLevel returns the configured level as an upper-case string.
func CurrentLogLevel() string {
	setup()
	return levelName(logLevel)
}

func levelName(level hclog.Level) string {
	return strings.ToUpper(level.String())
}

// IsDebugOrHigher reports whether DEBUG or TRACE output is enabled.
func IsDebugOrHigher() bool {
	setup()
	return logLevel == hclog.Debug || logLevel == hclog.Trace
}

func setup() {
	setupOnce.Do(func() {
		logLevel = levelFromEnv()
		logger = newHCLogger("", logOutput(), logLevel)

		log.SetFlags(0)
		log.SetPrefix("")
		log.SetOutput(logger.StandardWriter(&hclog.StandardLoggerOptions{InferLevels: true}))
	})
}

// Init configures the process-wide logger from the environment. Calling
// it is optional; the first use of any function in this package does the
// same. Binaries call it early so that log.Printf calls made before any
// logger is requested are already filtered.
func Init() {
	setup()
}

func newHCLogger(name string, out io.Writer, level hclog.Level) hclog.Logger {
	return hclog.NewInterceptLogger(&hclog.LoggerOptions{
		Name:              name,
		Level:             level,
		Output:            out,
		JSONFormat:        os.Getenv(EnvLogJSON) == "1",
		IndependentLevels: true,
	})
}

func levelFromEnv() hclog.Level {
	raw := strings.TrimSpace(os.Getenv(EnvLog))
	if raw == "" {
		return hclog.Off
	}
	level := hclog.LevelFromString(raw)
	if level == hclog.NoLevel {
		fmt.Fprintf(os.Stderr, "[WARN] Invalid log level %q in %s; defaulting to TRACE\n", raw, EnvLog)
		return hclog.Trace
	}
	return level
}

func logOutput() io.Writer {
	path := os.Getenv(EnvLogFile)
	if path == "" {
		return os.Stderr
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0666)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] Cannot open log file %s: %s\n", path, err)
		return os.Stderr
	}
	return f
}
