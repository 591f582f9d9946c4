// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2023-present Datadog, Inc.

package dispatch_test

import (
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DataDog/pointcut/aspect"
	"github.com/DataDog/pointcut/dispatch"
	"github.com/DataDog/pointcut/join"
	"github.com/DataDog/pointcut/method"
	"github.com/DataDog/pointcut/typed"
)

type account struct{}

func (*account) GetName() string             { return "" }
func (*account) SetName(string)              {}
func (*account) Grant(role string, _ ...int) {}

var accountType = reflect.TypeOf(&account{})

func methodOf(t *testing.T, name string) *method.Method {
	t.Helper()
	m, ok := method.Of(accountType, name)
	require.True(t, ok, "no method named %q", name)
	return m
}

func ids(list []*aspect.Aspect) []string {
	res := make([]string, len(list))
	for i, a := range list {
		res[i] = a.ID
	}
	return res
}

func TestPlan(t *testing.T) {
	aspects := []*aspect.Aspect{
		{ID: "setters", Order: 0, Pointcut: join.MustName("Set*")},
		{ID: "getters", Order: 0, Pointcut: join.MustName("Get*")},
		{ID: "audit-admin", Order: -1, Pointcut: join.AllOf(join.MustName("Grant"), join.MustArgEquals(0, "admin"))},
		{ID: "everything", Order: 10, Pointcut: join.True},
		{ID: "others", Order: 5, Pointcut: join.Target(typed.MustTypeName("example.com/other.Type"))},
	}
	d := dispatch.New(aspects)

	assert.Equal(t, []string{"audit-admin", "getters", "setters", "others", "everything"}, ids(d.Aspects()))
	assert.Equal(t, "setters", aspects[0].ID, "input must not be reordered")

	t.Run("static", func(t *testing.T) {
		plan := d.Plan(methodOf(t, "GetName"), accountType)
		assert.True(t, plan.IsStatic())
		assert.False(t, plan.Empty())
		assert.Equal(t, []string{"getters", "everything"}, ids(plan.Select()))
		assert.Equal(t, []string{"getters", "everything"}, ids(plan.Select("ignored")))
	})

	t.Run("dynamic", func(t *testing.T) {
		plan := d.Plan(methodOf(t, "Grant"), accountType)
		assert.False(t, plan.IsStatic())
		assert.Equal(t, []string{"audit-admin", "everything"}, ids(plan.Aspects()))
		assert.Equal(t, []string{"audit-admin", "everything"}, ids(plan.Select("admin")))
		assert.Equal(t, []string{"everything"}, ids(plan.Select("guest")))
		assert.Equal(t, []string{"everything"}, ids(plan.Select()))
	})

	t.Run("empty", func(t *testing.T) {
		plan := dispatch.New(aspects[:2]).Plan(methodOf(t, "Grant"), accountType)
		assert.True(t, plan.Empty())
		assert.True(t, plan.IsStatic())
		assert.Empty(t, plan.Select("admin"))
	})

	t.Run("cached", func(t *testing.T) {
		m := methodOf(t, "SetName")
		assert.Same(t, d.Plan(m, accountType), d.Plan(m, accountType))
		assert.NotSame(t, d.Plan(m, accountType), d.Plan(m, nil))
	})
}

func TestStaticPartIsEvaluatedOnce(t *testing.T) {
	var staticCalls, dynamicCalls atomic.Int32
	counting := join.StaticFunc("counting", func(*method.Method, reflect.Type) bool {
		staticCalls.Add(1)
		return true
	})
	dynamic := join.DynamicFunc("dynamic", nil, func(_ *method.Method, _ reflect.Type, args []any) bool {
		dynamicCalls.Add(1)
		return len(args) > 0
	})

	d := dispatch.New([]*aspect.Aspect{
		{ID: "static", Pointcut: counting},
		{ID: "dynamic", Pointcut: dynamic},
	})
	m := methodOf(t, "GetName")

	const goroutines = 32
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for range goroutines {
		go func() {
			defer wg.Done()
			plan := d.Plan(m, accountType)
			assert.Equal(t, []string{"dynamic", "static"}, ids(plan.Select(1)))
			assert.Equal(t, []string{"static"}, ids(plan.Select()))
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, staticCalls.Load())
	assert.EqualValues(t, 2*goroutines, dynamicCalls.Load())

	stats := d.Stats()
	assert.EqualValues(t, goroutines, stats.Plans.Count)
	assert.EqualValues(t, goroutines-1, stats.Plans.Hits)
	assert.Equal(t, 1, stats.CachedPlans)
	assert.EqualValues(t, 2*goroutines, stats.Evaluations)
}

func TestPanickingPlanIsRecomputed(t *testing.T) {
	var calls atomic.Int32
	flaky := join.StaticFunc("flaky", func(*method.Method, reflect.Type) bool {
		if calls.Add(1) == 1 {
			panic("transient failure")
		}
		return true
	})

	d := dispatch.New([]*aspect.Aspect{{ID: "flaky", Pointcut: flaky}})
	m := methodOf(t, "GetName")

	assert.PanicsWithValue(t, "transient failure", func() { d.Plan(m, accountType) })

	plan := d.Plan(m, accountType)
	require.NotNil(t, plan)
	assert.Equal(t, []string{"flaky"}, ids(plan.Select()))
	assert.Same(t, plan, d.Plan(m, accountType))
	assert.EqualValues(t, 2, calls.Load())
}

func TestCandidates(t *testing.T) {
	self := join.Target(typed.MustTypeName("github.com/DataDog/pointcut/dispatch_test.account"))
	d := dispatch.New([]*aspect.Aspect{
		{ID: "self", Pointcut: self},
		{ID: "not-self", Pointcut: join.Not(self)},
		{ID: "by-name", Pointcut: join.MustName("Get*")},
		{ID: "never", Pointcut: join.False},
	})

	assert.Equal(t, []string{"by-name", "self"}, ids(d.Candidates(accountType)))
	assert.Equal(t, []string{"by-name", "not-self"}, ids(d.Candidates(reflect.TypeOf(""))))
	assert.Equal(t, []string{"by-name", "not-self"}, ids(d.Candidates(nil)))

	plan := d.Plan(methodOf(t, "SetName"), accountType)
	assert.Equal(t, []string{"self"}, ids(plan.Select()))
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	d := dispatch.New(
		[]*aspect.Aspect{{ID: "getters", Pointcut: join.MustName("Get*")}},
		dispatch.WithRegisterer(reg),
	)

	m := methodOf(t, "GetName")
	d.Plan(m, accountType)
	d.Plan(m, accountType)
	d.Plan(m, nil)

	const expected = `
# HELP pointcut_dispatch_cache_hits_total Number of dispatch cache lookups served from the cache
# TYPE pointcut_dispatch_cache_hits_total counter
pointcut_dispatch_cache_hits_total{cache="candidates"} 0
pointcut_dispatch_cache_hits_total{cache="plan"} 1
# HELP pointcut_dispatch_cache_lookups_total Number of dispatch cache lookups
# TYPE pointcut_dispatch_cache_lookups_total counter
pointcut_dispatch_cache_lookups_total{cache="candidates"} 2
pointcut_dispatch_cache_lookups_total{cache="plan"} 3
# HELP pointcut_dispatch_plans Number of cached dispatch plans
# TYPE pointcut_dispatch_plans gauge
pointcut_dispatch_plans 2
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"pointcut_dispatch_cache_hits_total",
		"pointcut_dispatch_cache_lookups_total",
		"pointcut_dispatch_plans",
	))
}

func TestHolder(t *testing.T) {
	var empty dispatch.Holder
	assert.Nil(t, empty.Load())

	first := dispatch.New(nil)
	second := dispatch.New(nil)

	h := dispatch.NewHolder(first)
	assert.Same(t, first, h.Load())
	assert.Same(t, first, h.Swap(second))
	assert.Same(t, second, h.Load())

	second.Plan(&method.Method{Name: "Close"}, nil)

	reg := prometheus.NewPedanticRegistry()
	reg.MustRegister(h.Collector())
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP pointcut_dispatch_plans Number of cached dispatch plans
# TYPE pointcut_dispatch_plans gauge
pointcut_dispatch_plans 1
`), "pointcut_dispatch_plans"))

	var none dispatch.Holder
	count, err := testutil.GatherAndCount(prometheusRegistry(t, none.Collector()))
	require.NoError(t, err)
	assert.Zero(t, count)
}

func prometheusRegistry(t *testing.T, c prometheus.Collector) *prometheus.Registry {
	t.Helper()
	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(c))
	return reg
}
