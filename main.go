// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2023-present Datadog, Inc.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/DataDog/pointcut/internal/cmd"
	"github.com/DataDog/pointcut/internal/log"
	"github.com/DataDog/pointcut/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newApp() *cli.App {
	var logFile io.Closer

	return &cli.App{
		Name:        "pointcut",
		Usage:       "Evaluates which aspects apply to Go method invocations",
		Version:     version.Tag(),
		HideVersion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "minimum `LEVEL` of logged messages (trace, debug, info, warn, error, none)",
				EnvVars: []string{log.EnvVarLogLevel},
				Value:   "warn",
			},
			&cli.StringFlag{
				Name:    "log-file",
				Usage:   "append logs to `FILE` instead of standard error",
				EnvVars: []string{log.EnvVarLogFile},
			},
		},
		Before: func(clictx *cli.Context) error {
			logger, closer, err := log.New(clictx.String("log-level"), clictx.String("log-file"))
			if err != nil {
				return err
			}
			logFile = closer
			clictx.Context = logger.WithContext(clictx.Context)
			return nil
		},
		After: func(*cli.Context) error {
			if logFile == nil {
				return nil
			}
			return logFile.Close()
		},
		Commands: cmd.Commands,
	}
}
