// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2023-present Datadog, Inc.

package cmd

import (
	"bytes"
	"os"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/DataDog/pointcut/internal/codegen"
	"github.com/DataDog/pointcut/internal/config"
)

var Generate = &cli.Command{
	Name:  "generate",
	Usage: "Compiles a configuration file into Go source code",
	Flags: []cli.Flag{
		configFlag,
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "path of the generated `FILE`; standard output if not set",
		},
		&cli.StringFlag{
			Name:     "package",
			Aliases:  []string{"p"},
			Usage:    "name of the generated package",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "variable",
			Usage: "name of the generated variable",
			Value: "Aspects",
		},
	},
	Action: traced("generate", func(clictx *cli.Context) error {
		file, err := config.LoadFile(clictx.Context, clictx.String(configFlag.Name))
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		opts := codegen.Options{Package: clictx.String("package"), Variable: clictx.String("variable")}
		if err := codegen.Generate(&buf, file, opts); err != nil {
			return err
		}

		output := clictx.String("output")
		if output == "" {
			_, err := buf.WriteTo(clictx.App.Writer)
			return err
		}

		zerolog.Ctx(clictx.Context).Info().Str("output", output).Int("aspects", len(file.Aspects)).Msg("Writing generated code")
		return os.WriteFile(output, buf.Bytes(), 0o644)
	}),
}
