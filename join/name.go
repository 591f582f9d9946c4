// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2023-present Datadog, Inc.

package join

import (
	"fmt"
	"reflect"
	"time"

	"github.com/dave/jennifer/jen"
	"github.com/dlclark/regexp2"
	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"

	"github.com/DataDog/pointcut/fingerprint"
	"github.com/DataDog/pointcut/method"
)

// regexpTimeout bounds the time spent on a single name match. A timed out
// match is treated as a miss.
const regexpTimeout = 100 * time.Millisecond

type name struct {
	pattern  string
	compiled glob.Glob
}

// Name matches methods whose name matches the glob pattern (e.g, "Get*").
func Name(pattern string) (Matcher, error) {
	compiled, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid name pattern %q: %w", pattern, err)
	}
	return &name{pattern: pattern, compiled: compiled}, nil
}

// MustName is like [Name] but panics if the pattern is invalid.
func MustName(pattern string) Matcher {
	m, err := Name(pattern)
	if err != nil {
		panic(err)
	}
	return m
}

func (n *name) Matches(m *method.Method, _ reflect.Type) bool {
	return n.compiled.Match(m.Name)
}

func (n *name) AsCode() (jen.Code, error) {
	return jen.Qual(pkgPath, "MustName").Call(jen.Lit(n.pattern)), nil
}

func (n *name) Hash(h *fingerprint.Hasher) error {
	return h.Named("name", fingerprint.String(n.pattern))
}

type nameRegexp struct {
	compiled *regexp2.Regexp
}

// NameRegexp matches methods whose name matches the regular expression. The
// expression is not anchored.
func NameRegexp(expr string) (Matcher, error) {
	compiled, err := regexp2.Compile(expr, regexp2.None)
	if err != nil {
		return nil, fmt.Errorf("invalid name expression %q: %w", expr, err)
	}
	compiled.MatchTimeout = regexpTimeout
	return &nameRegexp{compiled: compiled}, nil
}

// MustNameRegexp is like [NameRegexp] but panics if the expression is invalid.
func MustNameRegexp(expr string) Matcher {
	m, err := NameRegexp(expr)
	if err != nil {
		panic(err)
	}
	return m
}

func (n *nameRegexp) Matches(m *method.Method, _ reflect.Type) bool {
	matched, err := n.compiled.MatchString(m.Name)
	return err == nil && matched
}

func (n *nameRegexp) AsCode() (jen.Code, error) {
	return jen.Qual(pkgPath, "MustNameRegexp").Call(jen.Lit(n.compiled.String())), nil
}

func (n *nameRegexp) Hash(h *fingerprint.Hasher) error {
	return h.Named("name-regexp", fingerprint.String(n.compiled.String()))
}

func init() {
	unmarshalers["name"] = func(node *yaml.Node) (Matcher, error) {
		var pattern string
		if err := node.Decode(&pattern); err != nil {
			return nil, err
		}
		return Name(pattern)
	}

	unmarshalers["name-regexp"] = func(node *yaml.Node) (Matcher, error) {
		var expr string
		if err := node.Decode(&expr); err != nil {
			return nil, err
		}
		return NameRegexp(expr)
	}
}
