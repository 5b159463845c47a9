package main

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCommandSetInvoke(t *testing.T) {
	src := newFakeSource(2, fixedLoad(30, 50))
	src.used, src.total = 1, 2
	handle, err := newMetricsHandle(context.Background(), src, zap.NewNop())
	require.NoError(t, err)

	stats := newBridgeMetrics()
	cs := newCommandSet(handle, stats)

	result, err := cs.Invoke(context.Background(), CmdGetCPUUsage)
	require.NoError(t, err)
	require.IsType(t, CpuInfo{}, result)
	assert.InDelta(t, 40.0, result.(CpuInfo).Overall, 1e-4)

	result, err = cs.Invoke(context.Background(), CmdGetMemoryUsage)
	require.NoError(t, err)
	assert.Equal(t, MemoryInfo{Used: 1, Total: 2, Percentage: 50}, result)

	_, err = cs.Invoke(context.Background(), "get_gpu_usage")
	assert.ErrorIs(t, err, ErrUnknownCommand)

	assert.Equal(t, 1.0, testutil.ToFloat64(stats.invocations.WithLabelValues(CmdGetCPUUsage, outcomeOK)))
	assert.Equal(t, 2, testutil.CollectAndCount(stats.duration))
}
