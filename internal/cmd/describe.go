// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2023-present Datadog, Inc.

package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/urfave/cli/v2"

	"github.com/DataDog/pointcut/aspect"
	"github.com/DataDog/pointcut/internal/config"
	"github.com/DataDog/pointcut/join"
)

var Describe = &cli.Command{
	Name:  "describe",
	Usage: "Lists the aspects of a configuration file in the order they apply",
	Flags: []cli.Flag{configFlag},
	Action: traced("describe", func(clictx *cli.Context) error {
		file, err := config.LoadFile(clictx.Context, clictx.String(configFlag.Name))
		if err != nil {
			return err
		}

		var (
			styleTitle   = lipgloss.NewStyle()
			styleID      = lipgloss.NewStyle()
			styleStatic  = lipgloss.NewStyle()
			styleDynamic = lipgloss.NewStyle()
			styleCode    = lipgloss.NewStyle()
		)
		if isTerminal(clictx.App.Writer) {
			styleTitle = styleTitle.Bold(true).Underline(true)
			styleID = styleID.Bold(true).Foreground(lipgloss.ANSIColor(4))
			styleStatic = styleStatic.Foreground(lipgloss.ANSIColor(2))
			styleDynamic = styleDynamic.Foreground(lipgloss.ANSIColor(5))
			styleCode = styleCode.Faint(true)
		}

		var builder strings.Builder
		title := file.Meta.Name
		if title == "" {
			title = file.Name
		}
		_, _ = builder.WriteString(styleTitle.Render(title))
		if file.Meta.Description != "" {
			_, _ = builder.WriteString(": ")
			_, _ = builder.WriteString(strings.TrimSpace(file.Meta.Description))
		}
		_, _ = builder.WriteRune('\n')

		for _, a := range file.Dispatcher().Aspects() {
			kind := styleStatic.Render("static")
			if a.IsDynamic() {
				kind = styleDynamic.Render("dynamic")
			}
			_, _ = fmt.Fprintf(&builder, "\n%s (order %d, %s)\n", styleID.Render(a.ID), a.Order, kind)
			if a.Description != "" {
				for _, line := range strings.Split(a.Description, "\n") {
					_, _ = fmt.Fprintf(&builder, "  %s\n", line)
				}
			}
			_, _ = fmt.Fprintf(&builder, "  pointcut: %s\n", styleCode.Render(pointcutSource(a)))
		}

		_, err = fmt.Fprint(clictx.App.Writer, builder.String())
		return err
	}),
}

func pointcutSource(a *aspect.Aspect) string {
	code, err := join.AsCode(a.Pointcut)
	if err != nil {
		return fmt.Sprintf("<%T>", a.Pointcut)
	}
	return fmt.Sprintf("%#v", code)
}
