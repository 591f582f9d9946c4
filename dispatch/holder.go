// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2023-present Datadog, Inc.

package dispatch

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// Holder gives concurrent readers access to the current dispatcher while
// allowing it to be replaced, for example when the configuration is reloaded.
// The zero value holds no dispatcher.
type Holder struct {
	current atomic.Pointer[Dispatcher]
}

// NewHolder returns a holder initialized with d.
func NewHolder(d *Dispatcher) *Holder {
	h := &Holder{}
	h.current.Store(d)
	return h
}

// Load returns the current dispatcher, or nil if none was stored yet.
func (h *Holder) Load() *Dispatcher {
	return h.current.Load()
}

// Swap replaces the current dispatcher, and returns the previous one.
func (h *Holder) Swap(d *Dispatcher) *Dispatcher {
	return h.current.Swap(d)
}

// Collector returns a metrics collector reporting the counters of whichever
// dispatcher is current at collection time.
func (h *Holder) Collector() prometheus.Collector {
	return &collector{source: h.Load}
}
