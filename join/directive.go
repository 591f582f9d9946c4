// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2023-present Datadog, Inc.

package join

import (
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dave/jennifer/jen"
	"gopkg.in/yaml.v3"

	"github.com/DataDog/pointcut/fingerprint"
	"github.com/DataDog/pointcut/method"
)

type directive string

// Directive matches methods annotated with the named directive comment, such
// as "//pointcut:traced". The directive may be followed by arguments.
func Directive(name string) Matcher {
	return directive(strings.TrimPrefix(name, "//"))
}

func (d directive) Matches(m *method.Method, _ reflect.Type) bool {
	for _, dir := range m.Directives {
		if d.matches(dir) {
			return true
		}
	}
	return false
}

func (d directive) matches(dir string) bool {
	if !strings.HasPrefix(dir, string(d)) {
		return false
	}

	// If there is something after the directive name, it must be white space
	rest := dir[len(d):]
	r, size := utf8.DecodeRuneInString(rest)
	return size == 0 || unicode.IsSpace(r)
}

func (d directive) AsCode() (jen.Code, error) {
	return jen.Qual(pkgPath, "Directive").Call(jen.Lit(string(d))), nil
}

func (d directive) Hash(h *fingerprint.Hasher) error {
	return h.Named("directive", fingerprint.String(d))
}

func init() {
	unmarshalers["directive"] = func(node *yaml.Node) (Matcher, error) {
		var name string
		if err := node.Decode(&name); err != nil {
			return nil, err
		}
		return Directive(name), nil
	}
}
