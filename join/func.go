// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2023-present Datadog, Inc.

package join

import (
	"reflect"

	"github.com/DataDog/pointcut/fingerprint"
	"github.com/DataDog/pointcut/method"
)

type (
	// StaticPredicate decides a match from the method and target type alone.
	StaticPredicate func(m *method.Method, target reflect.Type) bool
	// ArgsPredicate decides a match from the actual arguments of a call.
	ArgsPredicate func(m *method.Method, target reflect.Type, args []any) bool
)

type staticFunc struct {
	name string
	fn   StaticPredicate
}

// StaticFunc returns a static matcher backed by fn. The name identifies the
// rule in fingerprints and diagnostics, and should be unique per predicate.
func StaticFunc(name string, fn StaticPredicate) Matcher {
	if fn == nil {
		panic("join.StaticFunc: nil predicate")
	}
	return &staticFunc{name: name, fn: fn}
}

func (s *staticFunc) Matches(m *method.Method, target reflect.Type) bool {
	return s.fn(m, target)
}

func (s *staticFunc) Hash(h *fingerprint.Hasher) error {
	return h.Named("static-func", fingerprint.String(s.name))
}

type dynamicFunc struct {
	name   string
	static StaticPredicate
	args   ArgsPredicate
}

// DynamicFunc returns a dynamic matcher. The static pre-check may be nil, in
// which case every method is a candidate for the argument-aware check.
func DynamicFunc(name string, static StaticPredicate, args ArgsPredicate) DynamicMatcher {
	if args == nil {
		panic("join.DynamicFunc: nil arguments predicate")
	}
	return &dynamicFunc{name: name, static: static, args: args}
}

func (d *dynamicFunc) Matches(m *method.Method, target reflect.Type) bool {
	return d.static == nil || d.static(m, target)
}

func (d *dynamicFunc) MatchesArgs(m *method.Method, target reflect.Type, args []any) bool {
	return d.args(m, target, args)
}

func (d *dynamicFunc) Hash(h *fingerprint.Hasher) error {
	return h.Named("dynamic-func", fingerprint.String(d.name))
}
