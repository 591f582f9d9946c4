// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2023-present Datadog, Inc.

// Package dispatch decides which aspects apply to an intercepted call. It is
// the caller the [join] contract is written for: the static part of every
// pointcut is evaluated once per method and target type and cached, and only
// the dynamic pointcuts that passed it are consulted on each invocation.
package dispatch

import (
	"reflect"
	"slices"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/DataDog/pointcut/aspect"
	"github.com/DataDog/pointcut/join"
	"github.com/DataDog/pointcut/method"
	"github.com/DataDog/pointcut/typed"
)

// Dispatcher selects the aspects applicable to method invocations. It is safe
// for concurrent use.
type Dispatcher struct {
	aspects []*aspect.Aspect
	log     zerolog.Logger

	plans      *cache[*Plan]
	candidates *cache[[]*aspect.Aspect]

	planStats      CacheStats
	candidateStats CacheStats
	evaluations    atomic.Uint64
}

// Option configures a [Dispatcher].
type Option func(*Dispatcher)

// WithLogger sets the logger used to report plan computations.
func WithLogger(log zerolog.Logger) Option {
	return func(d *Dispatcher) {
		d.log = log
	}
}

// WithRegisterer registers the dispatcher's cache metrics with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(d *Dispatcher) {
		reg.MustRegister(&collector{source: func() *Dispatcher { return d }})
	}
}

// New returns a dispatcher for the given aspects. Aspects are ordered by
// [aspect.Compare]; the input slice is not modified.
func New(aspects []*aspect.Aspect, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		aspects: slices.SortedStableFunc(slices.Values(aspects), aspect.Compare),
		log:     zerolog.Nop(),
	}
	d.plans = newCache[*Plan](&d.planStats)
	d.candidates = newCache[[]*aspect.Aspect](&d.candidateStats)

	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Aspects returns all aspects known to the dispatcher, in order.
func (d *Dispatcher) Aspects() []*aspect.Aspect {
	return slices.Clone(d.aspects)
}

// Candidates returns the aspects whose pointcut is not ruled out by the target
// type alone. The target may be nil if it is not known.
func (d *Dispatcher) Candidates(target reflect.Type) []*aspect.Aspect {
	return d.candidates.load(typed.Canonical(target), func() []*aspect.Aspect {
		var res []*aspect.Aspect
		for _, a := range d.aspects {
			if join.TypeMayMatch(a.Pointcut, target).Excludes() {
				continue
			}
			res = append(res, a)
		}
		return res
	})
}

// Plan returns the dispatch plan for invocations of m on a target of the given
// type, which may be nil if it is not known. Plans are computed once per
// method and target type.
func (d *Dispatcher) Plan(m *method.Method, target reflect.Type) *Plan {
	key := m.ID() + "@" + typed.Canonical(target)
	return d.plans.load(key, func() *Plan {
		plan := d.plan(m, target)
		d.log.Debug().
			Str("method", m.ID()).
			Stringer("target", typeStringer{target}).
			Int("static", plan.static).
			Int("dynamic", len(plan.entries)-plan.static).
			Msg("Computed dispatch plan")
		return plan
	})
}

func (d *Dispatcher) plan(m *method.Method, target reflect.Type) *Plan {
	plan := &Plan{Method: m, Target: target, evaluations: &d.evaluations}
	for _, a := range d.Candidates(target) {
		if !a.Pointcut.Matches(m, target) {
			continue
		}
		e := entry{aspect: a}
		if dyn, ok := a.Pointcut.(join.DynamicMatcher); ok {
			e.dynamic = dyn
		} else {
			plan.static++
		}
		plan.entries = append(plan.entries, e)
	}
	return plan
}

// Stats is a snapshot of a dispatcher's counters.
type Stats struct {
	// Plans counts plan lookups; Hits among them were served from the cache.
	Plans CacheSnapshot
	// Candidates counts candidate lookups, including those made to compute plans.
	Candidates CacheSnapshot
	// CachedPlans is the number of distinct plans computed so far.
	CachedPlans int
	// Evaluations counts argument-aware pointcut evaluations.
	Evaluations uint64
}

// CacheSnapshot holds the counters of a [CacheStats] at a point in time.
type CacheSnapshot struct {
	Count uint64
	Hits  uint64
}

// Stats returns a snapshot of the dispatcher's counters.
func (d *Dispatcher) Stats() Stats {
	return Stats{
		Plans:       CacheSnapshot{Count: d.planStats.Count(), Hits: d.planStats.Hits()},
		Candidates:  CacheSnapshot{Count: d.candidateStats.Count(), Hits: d.candidateStats.Hits()},
		CachedPlans: d.plans.len(),
		Evaluations: d.evaluations.Load(),
	}
}

type typeStringer struct{ reflect.Type }

func (t typeStringer) String() string {
	if t.Type == nil {
		return "<unknown>"
	}
	return typed.Canonical(t.Type)
}
