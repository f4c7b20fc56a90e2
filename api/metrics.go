package api

import (
	"sync"
	"time"
)

// RouteMetrics aggregates request counts and latency for a single route.
type RouteMetrics struct {
	Method      string        `json:"method"`
	Path        string        `json:"path"`
	Count       int64         `json:"count"`
	ErrorCount  int64         `json:"errorCount"`
	TotalTime   time.Duration `json:"-"`
	AvgTime     time.Duration `json:"avgTime"`
	MinTime     time.Duration `json:"minTime"`
	MaxTime     time.Duration `json:"maxTime"`
	LastRequest time.Time     `json:"lastRequest"`
}

// MetricsCollector aggregates in-process request metrics per route. Recording
// takes the lock only long enough to bump counters, so it stays cheap on the
// request path.
type MetricsCollector struct {
	mu            sync.RWMutex
	start         time.Time
	routes        map[string]*RouteMetrics
	totalRequests int64
	totalErrors   int64
}

var (
	globalMetrics     *MetricsCollector
	globalMetricsOnce sync.Once
)

// GetMetrics returns the process-wide metrics collector.
func GetMetrics() *MetricsCollector {
	globalMetricsOnce.Do(func() {
		globalMetrics = NewMetricsCollector()
	})
	return globalMetrics
}

// NewMetricsCollector creates an empty collector.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		start:  time.Now(),
		routes: make(map[string]*RouteMetrics),
	}
}

// Record folds one finished request into the per-route aggregates. Statuses
// of 400 and above count as errors.
func (mc *MetricsCollector) Record(method, path string, status int, duration time.Duration) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	key := method + " " + path
	metrics, ok := mc.routes[key]
	if !ok {
		metrics = &RouteMetrics{Method: method, Path: path, MinTime: duration}
		mc.routes[key] = metrics
	}

	metrics.Count++
	metrics.TotalTime += duration
	metrics.AvgTime = metrics.TotalTime / time.Duration(metrics.Count)
	metrics.LastRequest = time.Now()
	if duration < metrics.MinTime {
		metrics.MinTime = duration
	}
	if duration > metrics.MaxTime {
		metrics.MaxTime = duration
	}

	mc.totalRequests++
	if status >= 400 {
		metrics.ErrorCount++
		mc.totalErrors++
	}
}

// RouteMetrics returns a copy of the per-route aggregates.
func (mc *MetricsCollector) RouteMetrics() map[string]*RouteMetrics {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	result := make(map[string]*RouteMetrics, len(mc.routes))
	for k, v := range mc.routes {
		metrics := *v
		result[k] = &metrics
	}
	return result
}

// Summary returns process-wide totals.
func (mc *MetricsCollector) Summary() map[string]interface{} {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	var errorRate float64
	if mc.totalRequests > 0 {
		errorRate = float64(mc.totalErrors) / float64(mc.totalRequests)
	}

	return map[string]interface{}{
		"totalRequests": mc.totalRequests,
		"totalErrors":   mc.totalErrors,
		"errorRate":     errorRate,
		"uptime":        time.Since(mc.start).String(),
		"routeCount":    len(mc.routes),
	}
}
