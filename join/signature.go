// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2023-present Datadog, Inc.

package join

import (
	"reflect"
	"slices"

	"github.com/dave/jennifer/jen"
	"gopkg.in/yaml.v3"

	"github.com/DataDog/pointcut/fingerprint"
	"github.com/DataDog/pointcut/method"
	"github.com/DataDog/pointcut/typed"
)

type signature struct {
	Arguments []string
	Results   []string
}

// Signature matches methods whose parameter and result types are exactly the
// listed canonical types (see [typed.Canonical]), in order. A nil list places
// no constraint, while an empty non-nil list requires that there are none.
func Signature(args []string, results []string) Matcher {
	return &signature{Arguments: normalizeTypes(args), Results: normalizeTypes(results)}
}

func (s *signature) Matches(m *method.Method, _ reflect.Type) bool {
	if s.Arguments != nil && !slices.Equal(s.Arguments, m.Params) {
		return false
	}
	if s.Results != nil && !slices.Equal(s.Results, m.Results) {
		return false
	}
	return true
}

func (s *signature) AsCode() (jen.Code, error) {
	return jen.Qual(pkgPath, "Signature").Call(stringsCode(s.Arguments), stringsCode(s.Results)), nil
}

func (s *signature) Hash(h *fingerprint.Hasher) error {
	return h.Named(
		"signature",
		optionalStrings(s.Arguments),
		optionalStrings(s.Results),
	)
}

func optionalStrings(list []string) fingerprint.Hashable {
	if list == nil {
		return nil
	}
	return fingerprint.Strings(list)
}

func stringsCode(list []string) jen.Code {
	if list == nil {
		return jen.Nil()
	}
	values := make([]jen.Code, len(list))
	for i, s := range list {
		values[i] = jen.Lit(s)
	}
	return jen.Index().String().Values(values...)
}

func normalizeTypes(list []string) []string {
	if list == nil {
		return nil
	}
	res := make([]string, len(list))
	for i, typ := range list {
		res[i] = typed.Normalize(typ)
	}
	return res
}

func init() {
	unmarshalers["signature"] = func(node *yaml.Node) (Matcher, error) {
		var spec struct {
			Args    *[]string `yaml:"args"`
			Results *[]string `yaml:"results"`
		}
		if err := node.Decode(&spec); err != nil {
			return nil, err
		}

		var args, results []string
		if spec.Args != nil {
			args = append([]string{}, *spec.Args...)
		}
		if spec.Results != nil {
			results = append([]string{}, *spec.Results...)
		}
		return Signature(args, results), nil
	}
}
