// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2023-present Datadog, Inc.

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/DataDog/pointcut/internal/config"
	"github.com/DataDog/pointcut/method"
)

var Scan = &cli.Command{
	Name:      "scan",
	Usage:     "Lists the functions and methods declared in Go source files that aspects may apply to",
	ArgsUsage: "<file or directory>...",
	Description: "Directories are scanned for .go files (excluding tests), but not recursively. The target type\n" +
		"of invocations is not known from source, so pointcuts on the target type never match.",
	Flags: []cli.Flag{
		configFlag,
		&cli.StringFlag{
			Name:  "import-path",
			Usage: "import path of the scanned package, used to qualify its types",
		},
		&cli.BoolFlag{
			Name:  "exported",
			Usage: "only list exported functions and methods",
		},
		&cli.IntFlag{
			Name:  "jobs",
			Usage: "maximum number of files parsed concurrently",
			Value: runtime.GOMAXPROCS(0),
		},
	},
	Action: traced("scan", func(clictx *cli.Context) error {
		if clictx.NArg() == 0 {
			return cli.Exit("at least one file or directory is required", 2)
		}

		file, err := config.LoadFile(clictx.Context, clictx.String(configFlag.Name))
		if err != nil {
			return err
		}

		paths, err := goFiles(clictx.Args().Slice())
		if err != nil {
			return err
		}

		log := zerolog.Ctx(clictx.Context)
		importPath := clictx.String("import-path")
		results := make([][]*method.Method, len(paths))

		group, ctx := errgroup.WithContext(clictx.Context)
		group.SetLimit(max(1, clictx.Int("jobs")))
		for i, path := range paths {
			group.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				methods, err := method.ParseFile(path, nil, importPath)
				if err != nil {
					return err
				}
				log.Debug().Str("file", path).Int("functions", len(methods)).Msg("Parsed source file")
				results[i] = methods
				return nil
			})
		}
		if err := group.Wait(); err != nil {
			return err
		}

		d := file.Dispatcher(withContextLogger(clictx))
		w := clictx.App.Writer
		exportedOnly := clictx.Bool("exported")
		for i, path := range paths {
			for _, m := range results[i] {
				if exportedOnly && !m.IsExported() {
					continue
				}
				plan := d.Plan(m, nil)
				if plan.Empty() {
					continue
				}
				if _, err := fmt.Fprintf(w, "%s: %s\n", path, m.ID()); err != nil {
					return err
				}
				for _, a := range plan.Aspects() {
					kind := "static"
					if a.IsDynamic() {
						kind = "dynamic"
					}
					if _, err := fmt.Fprintf(w, "  %s (%s)\n", a.ID, kind); err != nil {
						return err
					}
				}
			}
		}
		return nil
	}),
}

// goFiles expands directories into the non-test Go files they contain.
func goFiles(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() || filepath.Ext(name) != ".go" || strings.HasSuffix(name, "_test.go") {
				continue
			}
			paths = append(paths, filepath.Join(arg, name))
		}
	}
	return paths, nil
}
