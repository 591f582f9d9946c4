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

type not struct {
	m Matcher
}

type dynamicNot struct {
	not
	dyn DynamicMatcher
}

// Not negates a matcher. Negating a dynamic matcher yields a dynamic matcher
// whose static part accepts every method: a rejection by the operand's
// pre-check alone is not enough to tell what its negation would do.
func Not(m Matcher) Matcher {
	if dyn, ok := m.(DynamicMatcher); ok {
		return &dynamicNot{not{m}, dyn}
	}
	return &not{m}
}

func (n *not) Matches(m *method.Method, target reflect.Type) bool {
	return !n.m.Matches(m, target)
}

func (*dynamicNot) Matches(*method.Method, reflect.Type) bool {
	return true
}

func (n *dynamicNot) MatchesArgs(m *method.Method, target reflect.Type, args []any) bool {
	return !(n.dyn.Matches(m, target) && n.dyn.MatchesArgs(m, target, args))
}

func (n *not) TypeMayMatch(target reflect.Type) may.MatchType {
	return TypeMayMatch(n.m, target).Not()
}

func (n *not) AsCode() (jen.Code, error) {
	inner, err := AsCode(n.m)
	if err != nil {
		return nil, err
	}
	return jen.Qual(pkgPath, "Not").Call(inner), nil
}

func (n *not) Hash(h *fingerprint.Hasher) error {
	return h.Named("not", n.m)
}

func init() {
	unmarshalers["not"] = func(node *yaml.Node) (Matcher, error) {
		m, err := FromYAML(node)
		if err != nil {
			return nil, err
		}
		return Not(m), nil
	}
}
