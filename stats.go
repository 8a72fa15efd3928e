// Copyright 2026 The xtransport Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xtransport

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/xid"
)

type statsInfo struct {
	description *prometheus.Desc
	valueType   prometheus.ValueType
	value       func(e *Engine) float64
}

type engineEntry struct {
	engine *Engine
	labels []string
}

// Collector exports per-connection retransmission and window statistics
// as Prometheus metrics. Connections are tracked by Engine.ID.
type Collector struct {
	mu      sync.Mutex
	engines map[xid.ID]engineEntry
	logger  func(error)
	infos   []statsInfo
}

// NewCollector returns a Collector with the given metric name prefix,
// per-connection label names, and process-wide constant labels.
func NewCollector(prefix string, connectionLabels []string, constLabels prometheus.Labels, errorLoggingCallback func(error)) *Collector {
	c := &Collector{
		engines: make(map[xid.ID]engineEntry),
		logger:  errorLoggingCallback,
	}
	c.addMetrics(prefix, connectionLabels, constLabels)
	return c
}

func (c *Collector) addMetrics(prefix string, connectionLabels []string, constLabels prometheus.Labels) {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prefix+"_"+name, help, connectionLabels, constLabels)
	}

	c.infos = []statsInfo{
		{
			description: desc("frames_sent_total", "Frames registered for retransmission tracking."),
			valueType:   prometheus.CounterValue,
			value:       func(e *Engine) float64 { return float64(e.Stats().FramesSent) },
		},
		{
			description: desc("retransmissions_total", "Frame retransmissions, one per resend."),
			valueType:   prometheus.CounterValue,
			value:       func(e *Engine) float64 { return float64(e.Stats().Retransmissions) },
		},
		{
			description: desc("failed_frames_total", "Frames abandoned after exceeding max_retransmit."),
			valueType:   prometheus.CounterValue,
			value:       func(e *Engine) float64 { return float64(e.Stats().FailedFrames) },
		},
		{
			description: desc("successful_deliveries_total", "Frames acknowledged successfully."),
			valueType:   prometheus.CounterValue,
			value:       func(e *Engine) float64 { return float64(e.Stats().SuccessfulDeliveries) },
		},
		{
			description: desc("in_flight", "Frames currently awaiting acknowledgement."),
			valueType:   prometheus.GaugeValue,
			value:       func(e *Engine) float64 { return float64(e.sender.InFlight()) },
		},
		{
			description: desc("reassembly_active", "In-progress fragment reassembly slots."),
			valueType:   prometheus.GaugeValue,
			value:       func(e *Engine) float64 { return float64(e.recv.reassembler.ActiveCount()) },
		},
		{
			description: desc("retransmit_timeout_ms", "Current retransmit timer value in milliseconds."),
			valueType:   prometheus.GaugeValue,
			value:       func(e *Engine) float64 { return float64(e.sender.retransmit.CurrentTimeout()) },
		},
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(descs chan<- *prometheus.Desc) {
	for _, i := range c.infos {
		descs <- i.description
	}
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(metrics chan<- prometheus.Metric) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for id, entry := range c.engines {
		if entry.engine.State() == StateClosed {
			delete(c.engines, id)
			continue
		}
		for _, i := range c.infos {
			m, err := prometheus.NewConstMetric(i.description, i.valueType, i.value(entry.engine), entry.labels...)
			if err != nil {
				c.logger(err)
				continue
			}
			metrics <- m
		}
	}
}

// Add registers e for metrics export under the given label values, which
// must align with the connectionLabels passed to NewCollector.
func (c *Collector) Add(e *Engine, labels []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.engines[e.ID] = engineEntry{engine: e, labels: labels}
}

// Remove stops exporting metrics for e.
func (c *Collector) Remove(e *Engine) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.engines, e.ID)
}
