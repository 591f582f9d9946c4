// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2023-present Datadog, Inc.

package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	lookupsDesc = prometheus.NewDesc(
		prometheus.BuildFQName("pointcut", "dispatch", "cache_lookups_total"),
		"Number of dispatch cache lookups",
		[]string{"cache"}, nil,
	)
	hitsDesc = prometheus.NewDesc(
		prometheus.BuildFQName("pointcut", "dispatch", "cache_hits_total"),
		"Number of dispatch cache lookups served from the cache",
		[]string{"cache"}, nil,
	)
	entriesDesc = prometheus.NewDesc(
		prometheus.BuildFQName("pointcut", "dispatch", "plans"),
		"Number of cached dispatch plans",
		nil, nil,
	)
	evaluationsDesc = prometheus.NewDesc(
		prometheus.BuildFQName("pointcut", "dispatch", "dynamic_evaluations_total"),
		"Number of argument-aware pointcut evaluations",
		nil, nil,
	)
)

// collector exposes the counters of a dispatcher. Values are read at
// collection time, so that the hot path only touches atomics.
type collector struct {
	source func() *Dispatcher
}

func (c *collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- lookupsDesc
	ch <- hitsDesc
	ch <- entriesDesc
	ch <- evaluationsDesc
}

func (c *collector) Collect(ch chan<- prometheus.Metric) {
	d := c.source()
	if d == nil {
		return
	}
	stats := d.Stats()

	ch <- prometheus.MustNewConstMetric(lookupsDesc, prometheus.CounterValue, float64(stats.Plans.Count), "plan")
	ch <- prometheus.MustNewConstMetric(hitsDesc, prometheus.CounterValue, float64(stats.Plans.Hits), "plan")
	ch <- prometheus.MustNewConstMetric(lookupsDesc, prometheus.CounterValue, float64(stats.Candidates.Count), "candidates")
	ch <- prometheus.MustNewConstMetric(hitsDesc, prometheus.CounterValue, float64(stats.Candidates.Hits), "candidates")
	ch <- prometheus.MustNewConstMetric(entriesDesc, prometheus.GaugeValue, float64(stats.CachedPlans))
	ch <- prometheus.MustNewConstMetric(evaluationsDesc, prometheus.CounterValue, float64(stats.Evaluations))
}
