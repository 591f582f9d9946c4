// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2023-present Datadog, Inc.

// Package codegen compiles configuration files into Go source, so that
// programs can embed their aspects without parsing YAML at startup.
package codegen

import (
	"errors"
	"fmt"
	"io"

	"github.com/dave/jennifer/jen"

	"github.com/DataDog/pointcut/aspect"
	"github.com/DataDog/pointcut/internal/config"
	"github.com/DataDog/pointcut/join"
)

const aspectPkg = "github.com/DataDog/pointcut/aspect"

// Options control the generated file.
type Options struct {
	// Package is the name of the generated package.
	Package string
	// Variable is the name of the generated variable. Defaults to "Aspects".
	Variable string
}

// Generate writes a Go file declaring a variable holding the aspects of file.
// It fails if any pointcut cannot be represented as Go code.
func Generate(w io.Writer, file *config.File, opts Options) error {
	if opts.Package == "" {
		return errors.New("missing package name")
	}
	if opts.Variable == "" {
		opts.Variable = "Aspects"
	}

	out := jen.NewFile(opts.Package)
	out.HeaderComment("// Unless explicitly stated otherwise all files in this repository are licensed")
	out.HeaderComment("// under the Apache License Version 2.0.")
	out.HeaderComment("// This product includes software developed at Datadog (https://www.datadoghq.com/).")
	out.HeaderComment("// Copyright 2023-present Datadog, Inc.\n")
	out.HeaderComment("// Code generated by 'pointcut generate' DO NOT EDIT.\n")

	items := make([]jen.Code, len(file.Aspects))
	for i, a := range file.Aspects {
		code, err := aspectCode(a)
		if err != nil {
			return fmt.Errorf("aspect %q: %w", a.ID, err)
		}
		items[i] = code
	}

	source := file.Meta.Name
	if source == "" {
		source = file.Name
	}
	out.Commentf("%s holds the aspects defined in %s.", opts.Variable, source)
	out.Var().Id(opts.Variable).Op("=").Index().Op("*").Qual(aspectPkg, "Aspect").ValuesFunc(func(g *jen.Group) {
		for _, item := range items {
			g.Line().Add(item)
		}
		if len(items) > 0 {
			g.Line()
		}
	})

	return out.Render(w)
}

func aspectCode(a *aspect.Aspect) (jen.Code, error) {
	pointcut, err := join.AsCode(a.Pointcut)
	if err != nil {
		return nil, err
	}

	return jen.Values(jen.DictFunc(func(d jen.Dict) {
		d[jen.Id("ID")] = jen.Lit(a.ID)
		if a.Description != "" {
			d[jen.Id("Description")] = jen.Lit(a.Description)
		}
		if a.Order != 0 {
			d[jen.Id("Order")] = jen.Lit(a.Order)
		}
		d[jen.Id("Pointcut")] = pointcut
	})), nil
}
