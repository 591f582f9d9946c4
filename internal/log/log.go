// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2023-present Datadog, Inc.

// Package log builds the root logger of the command line tool.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

const (
	// EnvVarLogLevel is the environment variable that sets the default log level.
	EnvVarLogLevel = "POINTCUT_LOG_LEVEL"
	// EnvVarLogFile is the environment variable that sets the default log file.
	EnvVarLogFile = "POINTCUT_LOG_FILE"
)

// ParseLevel parses a level name. In addition to zerolog's level names, "none"
// and "off" disable logging entirely. Names are case-insensitive.
func ParseLevel(name string) (zerolog.Level, error) {
	switch name = strings.ToLower(strings.TrimSpace(name)); name {
	case "none", "off":
		return zerolog.Disabled, nil
	case "":
		return zerolog.WarnLevel, nil
	}
	return zerolog.ParseLevel(name)
}

// New returns a logger writing messages at or above the named level. Messages
// are appended to the file at path if one is provided, and written in a human
// readable form to stderr otherwise. The returned closer releases the file.
func New(level string, path string) (zerolog.Logger, io.Closer, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	if path == "" {
		out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05.000"}
		return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nopCloser{}, nil
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("opening log file: %w", err)
	}
	out := &lockedFile{file: file}
	logger := zerolog.New(out).Level(lvl).With().Timestamp().Int("pid", os.Getpid()).Logger()
	return logger, file, nil
}

// lockedFile serializes writes to a file that other processes may be appending
// to at the same time, so that log lines do not get interleaved.
type lockedFile struct {
	mu   sync.Mutex
	file *os.File
}

func (f *lockedFile) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := lock(f.file); err == nil {
		defer unlock(f.file)
	}
	return f.file.Write(p)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
