// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2023-present Datadog, Inc.

package dispatch

import (
	"reflect"
	"sync/atomic"

	"github.com/DataDog/pointcut/aspect"
	"github.com/DataDog/pointcut/join"
	"github.com/DataDog/pointcut/method"
)

// Plan is the outcome of static matching for a method and target type. It is
// immutable and safe for concurrent use. Methods are identified by their
// [method.Method.ID], so descriptors sharing an ID share their plans.
type Plan struct {
	Method *method.Method
	Target reflect.Type

	entries     []entry
	static      int
	evaluations *atomic.Uint64
}

type entry struct {
	aspect *aspect.Aspect
	// dynamic is nil for aspects that statically apply.
	dynamic join.DynamicMatcher
}

// Select returns the aspects that apply to an invocation with the given
// arguments, in order. Statically matched aspects are always part of the
// result, and their pointcut never sees the arguments.
func (p *Plan) Select(args ...any) []*aspect.Aspect {
	if args == nil {
		args = []any{}
	}

	res := make([]*aspect.Aspect, 0, len(p.entries))
	for _, e := range p.entries {
		if e.dynamic != nil {
			p.evaluations.Add(1)
			if !e.dynamic.MatchesArgs(p.Method, p.Target, args) {
				continue
			}
		}
		res = append(res, e.aspect)
	}
	return res
}

// Aspects returns every aspect that passed static matching, including the
// dynamic ones whose runtime check is still pending.
func (p *Plan) Aspects() []*aspect.Aspect {
	res := make([]*aspect.Aspect, len(p.entries))
	for i, e := range p.entries {
		res[i] = e.aspect
	}
	return res
}

// IsStatic returns true if the plan's outcome does not depend on arguments, so
// that [Plan.Select] always returns the same aspects.
func (p *Plan) IsStatic() bool {
	return p.static == len(p.entries)
}

// Empty returns true if no aspect can apply to the method.
func (p *Plan) Empty() bool {
	return len(p.entries) == 0
}
