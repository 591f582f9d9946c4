// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2023-present Datadog, Inc.

package join

import (
	"reflect"

	"github.com/dave/jennifer/jen"
	"gopkg.in/yaml.v3"

	"github.com/DataDog/pointcut/fingerprint"
	"github.com/DataDog/pointcut/may"
	"github.com/DataDog/pointcut/method"
)

type allOf []Matcher

type dynamicAllOf struct{ allOf }

// AllOf matches when every requirement matches. It never matches if there is
// no requirement. The result is a [DynamicMatcher] if, and only if, at least
// one of the requirements is.
func AllOf(requirements ...Matcher) Matcher {
	if len(requirements) == 1 {
		return requirements[0]
	}
	list := allOf(requirements)
	for _, req := range requirements {
		if IsDynamic(req) {
			return &dynamicAllOf{list}
		}
	}
	return list
}

func (o allOf) Matches(m *method.Method, target reflect.Type) bool {
	for _, candidate := range o {
		if !candidate.Matches(m, target) {
			return false
		}
	}
	// Never matches if there is no requirement
	return len(o) > 0
}

// MatchesArgs only consults the dynamic requirements; the static ones were
// already satisfied by Matches.
func (o *dynamicAllOf) MatchesArgs(m *method.Method, target reflect.Type, args []any) bool {
	for _, candidate := range o.allOf {
		if dyn, ok := candidate.(DynamicMatcher); ok && !dyn.MatchesArgs(m, target, args) {
			return false
		}
	}
	return true
}

func (o allOf) TypeMayMatch(target reflect.Type) may.MatchType {
	if len(o) == 0 {
		return may.CantMatch
	}
	sum := may.Match
	for _, candidate := range o {
		sum = sum.And(TypeMayMatch(candidate, target))
		if sum == may.CantMatch {
			return may.CantMatch
		}
	}
	return sum
}

func (o allOf) AsCode() (jen.Code, error) {
	return listCode("AllOf", o)
}

func (o allOf) Hash(h *fingerprint.Hasher) error {
	return h.Named("all-of", fingerprint.List[Matcher](o))
}

func listCode(fn string, list []Matcher) (jen.Code, error) {
	args := make([]jen.Code, len(list))
	for i, m := range list {
		var err error
		if args[i], err = AsCode(m); err != nil {
			return nil, err
		}
	}
	return jen.Qual(pkgPath, fn).Call(args...), nil
}

func init() {
	unmarshalers["all-of"] = func(node *yaml.Node) (Matcher, error) {
		requirements, err := decodeList(node)
		if err != nil {
			return nil, err
		}
		return AllOf(requirements...), nil
	}
}
