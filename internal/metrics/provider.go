// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"sigs.k8s.io/controller-runtime/pkg/metrics"

	"github.com/ironcore-dev/oom-southbound/oom"
)

var (
	transactionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oom_provider_transactions_total",
			Help: "Number of provider transactions by operation and status code",
		},
		[]string{"operation", "status"},
	)
	transactionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "oom_provider_transaction_duration_seconds",
			Help:    "Duration of provider transactions",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		},
		[]string{"operation"},
	)
	transferredBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oom_provider_transferred_bytes_total",
			Help: "Number of module memory bytes moved by provider transactions",
		},
		[]string{"operation"},
	)
)

func init() {
	metrics.Registry.MustRegister(transactionsTotal, transactionDuration, transferredBytes)
}

// Handler serves the metrics of the controller-runtime registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})
}

// InstrumentedProvider records every transaction of the wrapped Provider.
type InstrumentedProvider struct {
	oom.Provider
}

var _ oom.Provider = &InstrumentedProvider{}

// InstrumentProvider wraps p with transaction metrics.
func InstrumentProvider(p oom.Provider) *InstrumentedProvider {
	return &InstrumentedProvider{Provider: p}
}

func observe(op string, start time.Time, bytes int, err error) {
	transactionsTotal.WithLabelValues(op, strconv.Itoa(oom.StatusOf(err))).Inc()
	transactionDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err == nil && bytes > 0 {
		transferredBytes.WithLabelValues(op).Add(float64(bytes))
	}
}

func (p *InstrumentedProvider) MaxPorts(ctx context.Context) (int, error) {
	start := time.Now()
	n, err := p.Provider.MaxPorts(ctx)
	observe(oom.OpMaxPorts, start, 0, err)
	return n, err
}

func (p *InstrumentedProvider) GetPortList(ctx context.Context, ports []oom.Port) (int, error) {
	start := time.Now()
	n, err := p.Provider.GetPortList(ctx, ports)
	observe(oom.OpGetPortList, start, 0, err)
	return n, err
}

func (p *InstrumentedProvider) GetFunction(ctx context.Context, port oom.Port, fn oom.Function) (int, error) {
	start := time.Now()
	v, err := p.Provider.GetFunction(ctx, port, fn)
	observe(oom.OpGetFunction, start, 0, err)
	return v, err
}

func (p *InstrumentedProvider) SetFunction(ctx context.Context, port oom.Port, fn oom.Function, value int) error {
	start := time.Now()
	err := p.Provider.SetFunction(ctx, port, fn, value)
	observe(oom.OpSetFunction, start, 0, err)
	return err
}

func (p *InstrumentedProvider) GetMemoryRaw(ctx context.Context, port oom.Port, address, page, offset int, data []byte) (int, error) {
	start := time.Now()
	n, err := p.Provider.GetMemoryRaw(ctx, port, address, page, offset, data)
	observe(oom.OpGetMemoryRaw, start, n, err)
	return n, err
}

func (p *InstrumentedProvider) SetMemoryRaw(ctx context.Context, port oom.Port, address, page, offset int, data []byte) (int, error) {
	start := time.Now()
	n, err := p.Provider.SetMemoryRaw(ctx, port, address, page, offset, data)
	observe(oom.OpSetMemoryRaw, start, n, err)
	return n, err
}

func (p *InstrumentedProvider) GetMemoryRaw16(ctx context.Context, port oom.Port, offset int, data []uint16) (int, error) {
	start := time.Now()
	n, err := p.Provider.GetMemoryRaw16(ctx, port, offset, data)
	observe(oom.OpGetMemoryRaw16, start, 2*n, err)
	return n, err
}

func (p *InstrumentedProvider) SetMemoryRaw16(ctx context.Context, port oom.Port, offset int, data []uint16) (int, error) {
	start := time.Now()
	n, err := p.Provider.SetMemoryRaw16(ctx, port, offset, data)
	observe(oom.OpSetMemoryRaw16, start, 2*n, err)
	return n, err
}
