// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2023-present Datadog, Inc.

package join

import (
	"fmt"
	"reflect"

	"github.com/dave/jennifer/jen"
	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"

	"github.com/DataDog/pointcut/fingerprint"
	"github.com/DataDog/pointcut/method"
)

type importPath struct {
	pattern  string
	compiled glob.Glob
}

// ImportPath matches methods declared in a package whose import path matches
// the glob pattern. Path segments are separated by '/': "*" does not cross a
// separator while "**" does.
func ImportPath(pattern string) (Matcher, error) {
	compiled, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil, fmt.Errorf("invalid import path pattern %q: %w", pattern, err)
	}
	return &importPath{pattern: pattern, compiled: compiled}, nil
}

// MustImportPath is like [ImportPath] but panics if the pattern is invalid.
func MustImportPath(pattern string) Matcher {
	m, err := ImportPath(pattern)
	if err != nil {
		panic(err)
	}
	return m
}

func (p *importPath) Matches(m *method.Method, _ reflect.Type) bool {
	return p.compiled.Match(m.PkgPath)
}

func (p *importPath) AsCode() (jen.Code, error) {
	return jen.Qual(pkgPath, "MustImportPath").Call(jen.Lit(p.pattern)), nil
}

func (p *importPath) Hash(h *fingerprint.Hasher) error {
	return h.Named("import-path", fingerprint.String(p.pattern))
}

func init() {
	unmarshalers["import-path"] = func(node *yaml.Node) (Matcher, error) {
		var pattern string
		if err := node.Decode(&pattern); err != nil {
			return nil, err
		}
		return ImportPath(pattern)
	}
}
