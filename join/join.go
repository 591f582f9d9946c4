// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2023-present Datadog, Inc.

// Package join provides the method-matching rules that pointcuts are made of.
//
// A rule is static when its outcome depends only on the declared method and
// the runtime target type: it implements [Matcher] and nothing else, so its
// result can be computed once and cached by the caller. A rule that must
// inspect the actual arguments of each invocation additionally implements
// [DynamicMatcher]; its [Matcher.Matches] method is then a pre-check that
// must pass before [DynamicMatcher.MatchesArgs] is consulted.
//
// All rules are immutable once constructed, and safe for concurrent use.
package join

import (
	"fmt"
	"reflect"

	"github.com/dave/jennifer/jen"

	"github.com/DataDog/pointcut/fingerprint"
	"github.com/DataDog/pointcut/may"
	"github.com/DataDog/pointcut/method"
)

const pkgPath = "github.com/DataDog/pointcut/join"

type (
	// Matcher is implemented by all rules. Matches evaluates the static part
	// of the rule; the target type may be nil when it is not known (e.g, for
	// descriptors obtained from source code).
	Matcher interface {
		Matches(m *method.Method, target reflect.Type) bool

		fingerprint.Hashable
	}

	// DynamicMatcher is implemented by rules whose outcome depends on the
	// arguments of each invocation. MatchesArgs is only meaningful once
	// Matches returned true for the same method and target.
	DynamicMatcher interface {
		Matcher

		MatchesArgs(m *method.Method, target reflect.Type, args []any) bool
	}

	// TypeFilter is optionally implemented by rules that can decide, from the
	// target type alone, that they accept ([may.Match]) or reject
	// ([may.CantMatch]) every method of that type.
	TypeFilter interface {
		TypeMayMatch(target reflect.Type) may.MatchType
	}

	// Coder is implemented by rules that can be rendered as Go source.
	Coder interface {
		AsCode() (jen.Code, error)
	}
)

// IsDynamic returns true if the matcher needs the arguments of each invocation
// to reach a decision, and false if its outcome can be cached per method and
// target type.
func IsDynamic(m Matcher) bool {
	_, dynamic := m.(DynamicMatcher)
	return dynamic
}

// MatchesArgs evaluates the argument-aware part of m. Calling it with a static
// matcher is a programming error: callers must branch on [IsDynamic] first. It
// panics with a [*ProtocolViolationError] in that case, whatever the arguments.
func MatchesArgs(m Matcher, meth *method.Method, target reflect.Type, args []any) bool {
	dyn, ok := m.(DynamicMatcher)
	if !ok {
		panic(&ProtocolViolationError{Matcher: fmt.Sprintf("%T", m), Method: describe(meth)})
	}
	return dyn.MatchesArgs(meth, target, args)
}

// TypeMayMatch returns the pre-filter outcome of m for the target type, or
// [may.Unknown] if m does not implement [TypeFilter].
func TypeMayMatch(m Matcher, target reflect.Type) may.MatchType {
	if f, ok := m.(TypeFilter); ok {
		return f.TypeMayMatch(target)
	}
	return may.Unknown
}

// AsCode renders m as Go source, if it supports it.
func AsCode(m Matcher) (jen.Code, error) {
	if c, ok := m.(Coder); ok {
		return c.AsCode()
	}
	return nil, fmt.Errorf("%T cannot be rendered as Go code", m)
}

func describe(m *method.Method) string {
	if m == nil {
		return "<nil>"
	}
	return m.ID()
}
