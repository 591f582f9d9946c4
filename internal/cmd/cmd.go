// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2023-present Datadog, Inc.

// Package cmd implements the sub-commands of the pointcut command line tool.
package cmd

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"

	"github.com/DataDog/pointcut/dispatch"
	"github.com/DataDog/pointcut/internal/traceutil"
)

// Commands lists all sub-commands, in the order they are listed in help.
var Commands = []*cli.Command{
	Validate,
	Describe,
	Match,
	Scan,
	Generate,
	Watch,
	Version,
}

var configFlag = &cli.StringFlag{
	Name:    "config",
	Aliases: []string{"c"},
	Usage:   "path to the configuration `FILE`",
	EnvVars: []string{"POINTCUT_CONFIG"},
	Value:   "pointcut.yml",
}

// traced wraps a command action in a span named after the command. Spans are
// only sent if a tracer was started, and continue the trace propagated by the
// parent process through the environment, if any.
func traced(name string, action cli.ActionFunc) cli.ActionFunc {
	return func(clictx *cli.Context) (err error) {
		opts := append(traceutil.ParentFromEnv(os.Environ()),
			tracer.ResourceName(strings.Join(clictx.Args().Slice(), " ")),
		)
		span, ctx := tracer.StartSpanFromContext(clictx.Context, name, opts...)
		defer func() { span.Finish(tracer.WithError(err)) }()

		clictx.Context = ctx
		return action(clictx)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// withContextLogger configures a dispatcher to log with the command's logger.
func withContextLogger(clictx *cli.Context) dispatch.Option {
	return dispatch.WithLogger(*zerolog.Ctx(clictx.Context))
}
