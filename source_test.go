package main

import (
	"testing"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/stretchr/testify/assert"
)

func TestCorePercent(t *testing.T) {
	tests := []struct {
		name      string
		prev, cur cpu.TimesStat
		want      float32
	}{
		{
			name: "iowait counts as idle",
			prev: cpu.TimesStat{},
			cur:  cpu.TimesStat{User: 20, System: 5, Idle: 50, Iowait: 25},
			want: 25,
		},
		{
			name: "irq and steal count as busy",
			prev: cpu.TimesStat{User: 10, Idle: 10},
			cur:  cpu.TimesStat{User: 10, Idle: 60, Irq: 10, Softirq: 10, Steal: 30},
			want: 50,
		},
		{
			name: "no elapsed ticks",
			prev: cpu.TimesStat{User: 5, Idle: 5},
			cur:  cpu.TimesStat{User: 5, Idle: 5},
			want: 0,
		},
		{
			name: "counter went backwards",
			prev: cpu.TimesStat{User: 100, Idle: 0},
			cur:  cpu.TimesStat{User: 50, Idle: 60},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, corePercent(tt.prev, tt.cur), 1e-4)
		})
	}
}

func TestMemoryFromStat(t *testing.T) {
	tests := []struct {
		name      string
		stat      mem.VirtualMemoryStat
		wantUsed  uint64
		wantTotal uint64
	}{
		{
			name:      "cache counts as used",
			stat:      mem.VirtualMemoryStat{Total: 6_300_000_000, Available: 5_772_902_144, Used: 282_234_880},
			wantUsed:  527_097_856,
			wantTotal: 6_300_000_000,
		},
		{
			name:      "available above total",
			stat:      mem.VirtualMemoryStat{Total: 100, Available: 120},
			wantUsed:  0,
			wantTotal: 100,
		},
		{
			name: "no memory reported",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			used, total := memoryFromStat(&tt.stat)
			assert.Equal(t, tt.wantUsed, used)
			assert.Equal(t, tt.wantTotal, total)
		})
	}
}
