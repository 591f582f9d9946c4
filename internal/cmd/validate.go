// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2023-present Datadog, Inc.

package cmd

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/DataDog/pointcut/internal/config"
)

var Validate = &cli.Command{
	Name:      "validate",
	Usage:     "Checks that configuration files are valid",
	ArgsUsage: "<file>...",
	Action: traced("validate", func(clictx *cli.Context) error {
		if clictx.NArg() == 0 {
			return cli.Exit("at least one configuration file is required", 2)
		}

		var errs []error
		for _, path := range clictx.Args().Slice() {
			file, err := config.LoadFile(clictx.Context, path)
			if err != nil {
				errs = append(errs, err)
				continue
			}

			dynamic := 0
			for _, a := range file.Aspects {
				if a.IsDynamic() {
					dynamic++
				}
			}
			if _, err := fmt.Fprintf(clictx.App.Writer, "%s: %d aspects (%d dynamic)\n", path, len(file.Aspects), dynamic); err != nil {
				return err
			}
		}
		return errors.Join(errs...)
	}),
}
