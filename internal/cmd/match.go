// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2023-present Datadog, Inc.

package cmd

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/DataDog/pointcut/aspect"
	"github.com/DataDog/pointcut/internal/config"
	"github.com/DataDog/pointcut/method"
	"github.com/DataDog/pointcut/typed"
)

var Match = &cli.Command{
	Name:      "match",
	Usage:     "Shows which aspects apply to an invocation of a method",
	ArgsUsage: "[argument...]",
	Description: "Arguments are parsed as YAML scalars, so that 42 is an integer, true is a boolean,\n" +
		"and admin is a string. Quote them to force a string (e.g, '\"42\"').",
	Flags: []cli.Flag{
		configFlag,
		&cli.StringFlag{
			Name:     "method",
			Usage:    "name of the invoked method",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "receiver",
			Usage: "receiver type of the method (e.g, *example.com/app.Service)",
		},
		&cli.StringFlag{
			Name:  "import-path",
			Usage: "import path of the package declaring the method",
		},
		&cli.StringSliceFlag{
			Name:  "param",
			Usage: "canonical type of a parameter, in order (may be repeated)",
		},
		&cli.StringSliceFlag{
			Name:  "result",
			Usage: "canonical type of a result, in order (may be repeated)",
		},
		&cli.StringSliceFlag{
			Name:  "directive",
			Usage: "directive comment carried by the method, without the leading // (may be repeated)",
		},
	},
	Action: traced("match", func(clictx *cli.Context) error {
		file, err := config.LoadFile(clictx.Context, clictx.String(configFlag.Name))
		if err != nil {
			return err
		}

		m, err := methodFromFlags(clictx)
		if err != nil {
			return err
		}

		args := make([]any, clictx.NArg())
		for i, arg := range clictx.Args().Slice() {
			args[i] = parseArg(arg)
		}

		plan := file.Dispatcher(withContextLogger(clictx)).Plan(m, nil)
		kind := "static"
		if !plan.IsStatic() {
			kind = "dynamic"
		}

		w := clictx.App.Writer
		if _, err := fmt.Fprintf(w, "method:    %s\n", m); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "plan:      %s, %d candidate(s): %s\n", kind, len(plan.Aspects()), joinIDs(plan.Aspects())); err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "selected:  %s\n", joinIDs(plan.Select(args...)))
		return err
	}),
}

func methodFromFlags(clictx *cli.Context) (*method.Method, error) {
	m := &method.Method{
		Name:       clictx.String("method"),
		PkgPath:    clictx.String("import-path"),
		Params:     normalize(clictx.StringSlice("param")),
		Results:    normalize(clictx.StringSlice("result")),
		Directives: clictx.StringSlice("directive"),
	}
	if n := len(m.Params); n > 0 && strings.HasPrefix(m.Params[n-1], "...") {
		m.Variadic = true
	}
	if recv := clictx.String("receiver"); recv != "" {
		tn, err := typed.NewTypeName(recv)
		if err != nil {
			return nil, fmt.Errorf("--receiver: %w", err)
		}
		m.Receiver = &tn
		if m.PkgPath == "" {
			m.PkgPath = tn.ImportPath
		}
	}
	return m, nil
}

// parseArg interprets a command line argument as a YAML scalar. Anything that
// is not a scalar is passed as the raw string.
func parseArg(arg string) any {
	var node yaml.Node
	if err := yaml.Unmarshal([]byte(arg), &node); err != nil || len(node.Content) != 1 || node.Content[0].Kind != yaml.ScalarNode {
		return arg
	}
	var value any
	if err := node.Content[0].Decode(&value); err != nil {
		return arg
	}
	return value
}

func joinIDs(list []*aspect.Aspect) string {
	if len(list) == 0 {
		return "none"
	}
	ids := make([]string, len(list))
	for i, a := range list {
		ids[i] = a.ID
	}
	return strings.Join(ids, ", ")
}

func normalize(spellings []string) []string {
	for i, spelling := range spellings {
		spellings[i] = typed.Normalize(spelling)
	}
	return spellings
}
