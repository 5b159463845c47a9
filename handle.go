package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/shirou/gopsutil/v4/cpu"
	"go.uber.org/zap"
)

// MetricsHandle is the single owner of host counter state. Counters are
// only current after a refresh, so every accessor refreshes and reads
// under one lock.
type MetricsHandle struct {
	mu     sync.Mutex
	source hostSource
	logger *zap.Logger

	prevTimes []cpu.TimesStat
	perCore   []float32
	memUsed   uint64
	memTotal  uint64
}

// newMetricsHandle enumerates cores, takes the baseline CPU sample and
// reads memory once. Failure here means the host cannot be observed at all.
func newMetricsHandle(ctx context.Context, source hostSource, logger *zap.Logger) (*MetricsHandle, error) {
	times, err := source.CPUTimes(ctx)
	if err != nil {
		return nil, fmt.Errorf("sampling cpu times: %w", err)
	}
	used, total, err := source.Memory(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading memory: %w", err)
	}

	return &MetricsHandle{
		source:    source,
		logger:    logger,
		prevTimes: times,
		perCore:   make([]float32, len(times)),
		memUsed:   used,
		memTotal:  total,
	}, nil
}

// CPUUsage refreshes CPU counters and returns per-core and mean usage
// since the previous refresh.
func (h *MetricsHandle) CPUUsage(ctx context.Context) CpuInfo {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.refreshCPU(ctx)
	return newCpuInfo(h.perCore)
}

// MemoryUsage refreshes memory counters and returns used/total bytes.
func (h *MetricsHandle) MemoryUsage(ctx context.Context) MemoryInfo {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.refreshMemory(ctx)
	return newMemoryInfo(h.memUsed, h.memTotal)
}

// CoreCount reports how many logical cores the last refresh saw.
func (h *MetricsHandle) CoreCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.perCore)
}

// refreshCPU must be called with h.mu held. On error the previous
// readings are kept.
func (h *MetricsHandle) refreshCPU(ctx context.Context) {
	times, err := h.source.CPUTimes(ctx)
	if err != nil {
		h.logger.Warn("cpu refresh failed, keeping previous readings", zap.Error(err))
		return
	}

	// Core set changed (hotplug, VM resize); start a new baseline.
	if len(times) != len(h.prevTimes) {
		h.logger.Info("core count changed",
			zap.Int("previous", len(h.prevTimes)),
			zap.Int("current", len(times)))
		h.prevTimes = times
		h.perCore = make([]float32, len(times))
		return
	}

	for i := range times {
		h.perCore[i] = corePercent(h.prevTimes[i], times[i])
	}
	h.prevTimes = times
}

// refreshMemory must be called with h.mu held.
func (h *MetricsHandle) refreshMemory(ctx context.Context) {
	used, total, err := h.source.Memory(ctx)
	if err != nil {
		h.logger.Warn("memory refresh failed, keeping previous readings", zap.Error(err))
		return
	}
	h.memUsed = used
	h.memTotal = total
}
