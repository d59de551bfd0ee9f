package infrastructure

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// SystemStats is a point-in-time snapshot of process runtime health.
type SystemStats struct {
	GoRoutines     int64
	HeapInUse      int64
	TotalAllocated int64
	SystemMemory   int64
	GCCount        uint32
	LastGCPause    time.Duration
	CPUCount       int
	Uptime         time.Duration
	Timestamp      time.Time
}

// FormatStats flattens the snapshot into a JSON-friendly map, used by
// the health endpoint.
func (s *SystemStats) FormatStats() map[string]interface{} {
	return map[string]interface{}{
		"goroutines":       s.GoRoutines,
		"heap_in_use_mb":   s.HeapInUse / (1 << 20),
		"total_alloc_mb":   s.TotalAllocated / (1 << 20),
		"system_memory_mb": s.SystemMemory / (1 << 20),
		"gc_count":         s.GCCount,
		"last_gc_pause_ms": s.LastGCPause.Milliseconds(),
		"cpu_count":        s.CPUCount,
		"uptime_seconds":   int64(s.Uptime.Seconds()),
		"timestamp":        s.Timestamp.Format(time.RFC3339),
	}
}

// SystemMetricsCollector samples Go runtime statistics on a fixed
// interval and records them as OTel instruments.
type SystemMetricsCollector struct {
	goRoutines   metric.Int64Gauge
	heapInUse    metric.Int64Gauge
	totalAlloc   metric.Int64Gauge
	systemMemory metric.Int64Gauge
	gcPause      metric.Float64Histogram
	cpuCount     metric.Int64Gauge
	uptime       metric.Float64Gauge

	startTime time.Time
	interval  time.Duration
	stopCh    chan struct{}
}

// NewSystemMetricsCollector registers the runtime instruments on meter.
// The collector does nothing until Start is called.
func NewSystemMetricsCollector(meter metric.Meter, interval time.Duration) (*SystemMetricsCollector, error) {
	smc := &SystemMetricsCollector{
		startTime: time.Now(),
		interval:  interval,
		stopCh:    make(chan struct{}),
	}

	var err error
	if smc.goRoutines, err = meter.Int64Gauge(
		"system_goroutines",
		metric.WithDescription("Number of active goroutines"),
	); err != nil {
		return nil, fmt.Errorf("failed to create system metrics: %w", err)
	}
	if smc.heapInUse, err = meter.Int64Gauge(
		"system_memory_usage_bytes",
		metric.WithDescription("Heap memory in use in bytes"),
		metric.WithUnit("By"),
	); err != nil {
		return nil, fmt.Errorf("failed to create system metrics: %w", err)
	}
	if smc.totalAlloc, err = meter.Int64Gauge(
		"system_memory_allocated_bytes",
		metric.WithDescription("Cumulative bytes allocated by the Go runtime"),
		metric.WithUnit("By"),
	); err != nil {
		return nil, fmt.Errorf("failed to create system metrics: %w", err)
	}
	if smc.systemMemory, err = meter.Int64Gauge(
		"system_memory_system_bytes",
		metric.WithDescription("Memory obtained from the OS in bytes"),
		metric.WithUnit("By"),
	); err != nil {
		return nil, fmt.Errorf("failed to create system metrics: %w", err)
	}
	if smc.gcPause, err = meter.Float64Histogram(
		"system_gc_pause_seconds",
		metric.WithDescription("Garbage collection pause duration"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("failed to create system metrics: %w", err)
	}
	if smc.cpuCount, err = meter.Int64Gauge(
		"system_cpu_count",
		metric.WithDescription("Number of logical CPUs"),
	); err != nil {
		return nil, fmt.Errorf("failed to create system metrics: %w", err)
	}
	if smc.uptime, err = meter.Float64Gauge(
		"system_process_uptime_seconds",
		metric.WithDescription("Process uptime in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("failed to create system metrics: %w", err)
	}

	return smc, nil
}

// collect samples the runtime, records every instrument, and returns
// the snapshot.
func (smc *SystemMetricsCollector) collect(ctx context.Context) *SystemStats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	stats := &SystemStats{
		GoRoutines:     int64(runtime.NumGoroutine()),
		HeapInUse:      int64(mem.Alloc),
		TotalAllocated: int64(mem.TotalAlloc),
		SystemMemory:   int64(mem.Sys),
		GCCount:        mem.NumGC,
		LastGCPause:    time.Duration(mem.PauseNs[(mem.NumGC+255)%256]),
		CPUCount:       runtime.NumCPU(),
		Uptime:         time.Since(smc.startTime),
		Timestamp:      time.Now(),
	}

	smc.goRoutines.Record(ctx, stats.GoRoutines)
	smc.heapInUse.Record(ctx, stats.HeapInUse)
	smc.totalAlloc.Record(ctx, stats.TotalAllocated)
	smc.systemMemory.Record(ctx, stats.SystemMemory)
	smc.cpuCount.Record(ctx, int64(stats.CPUCount))
	smc.uptime.Record(ctx, stats.Uptime.Seconds())

	if stats.LastGCPause > 0 {
		smc.gcPause.Record(ctx, stats.LastGCPause.Seconds())
	}

	return stats
}

// Start blocks, sampling once immediately and then every interval
// until Stop is called or ctx is cancelled.
func (smc *SystemMetricsCollector) Start(ctx context.Context) {
	ticker := time.NewTicker(smc.interval)
	defer ticker.Stop()

	smc.collect(ctx)

	for {
		select {
		case <-ticker.C:
			smc.collect(ctx)
		case <-smc.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop ends periodic collection. Must be called at most once.
func (smc *SystemMetricsCollector) Stop() {
	close(smc.stopCh)
}

// GetCurrentStats takes a fresh sample, recording it as a side effect.
func (smc *SystemMetricsCollector) GetCurrentStats(ctx context.Context) *SystemStats {
	return smc.collect(ctx)
}
