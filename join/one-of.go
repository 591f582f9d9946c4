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

type oneOf []Matcher

type dynamicOneOf struct{ oneOf }

// OneOf matches when at least one candidate matches. The result is a
// [DynamicMatcher] if, and only if, at least one of the candidates is.
func OneOf(candidates ...Matcher) Matcher {
	if len(candidates) == 1 {
		return candidates[0]
	}
	list := oneOf(candidates)
	for _, c := range candidates {
		if IsDynamic(c) {
			return &dynamicOneOf{list}
		}
	}
	return list
}

func (o oneOf) Matches(m *method.Method, target reflect.Type) bool {
	for _, candidate := range o {
		if candidate.Matches(m, target) {
			return true
		}
	}
	return false
}

// MatchesArgs re-evaluates the static part of each candidate, as the
// disjunction passing does not tell which one did.
func (o *dynamicOneOf) MatchesArgs(m *method.Method, target reflect.Type, args []any) bool {
	for _, candidate := range o.oneOf {
		if !candidate.Matches(m, target) {
			continue
		}
		dyn, ok := candidate.(DynamicMatcher)
		if !ok || dyn.MatchesArgs(m, target, args) {
			return true
		}
	}
	return false
}

func (o oneOf) TypeMayMatch(target reflect.Type) may.MatchType {
	sum := may.CantMatch
	for _, candidate := range o {
		sum = sum.Or(TypeMayMatch(candidate, target))
		if sum == may.Match {
			return may.Match
		}
	}
	return sum
}

func (o oneOf) AsCode() (jen.Code, error) {
	return listCode("OneOf", o)
}

func (o oneOf) Hash(h *fingerprint.Hasher) error {
	return h.Named("one-of", fingerprint.List[Matcher](o))
}

func init() {
	unmarshalers["one-of"] = func(node *yaml.Node) (Matcher, error) {
		candidates, err := decodeList(node)
		if err != nil {
			return nil, err
		}
		return OneOf(candidates...), nil
	}
}
