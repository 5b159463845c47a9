package main

import (
	"context"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

// hostSource reads raw counters from the operating system.
type hostSource interface {
	// CPUTimes returns cumulative times for each logical core, in the
	// order the OS enumerates them.
	CPUTimes(ctx context.Context) ([]cpu.TimesStat, error)
	Memory(ctx context.Context) (used, total uint64, err error)
}

type gopsutilSource struct{}

func (gopsutilSource) CPUTimes(ctx context.Context) ([]cpu.TimesStat, error) {
	return cpu.TimesWithContext(ctx, true)
}

func (gopsutilSource) Memory(ctx context.Context) (uint64, uint64, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, 0, err
	}
	used, total := memoryFromStat(vm)
	return used, total, nil
}

// memoryFromStat counts everything that is not available as used, so
// reclaimable page cache is included. gopsutil's own Used leaves cache out.
func memoryFromStat(vm *mem.VirtualMemoryStat) (used, total uint64) {
	if vm.Available > vm.Total {
		return 0, vm.Total
	}
	return vm.Total - vm.Available, vm.Total
}

// busyTicks splits a core's cumulative time into busy and total.
// Guest time is already folded into User on Linux, so it is left out.
func busyTicks(t cpu.TimesStat) (busy, total float64) {
	total = t.User + t.System + t.Idle + t.Nice + t.Iowait + t.Irq + t.Softirq + t.Steal
	busy = total - t.Idle - t.Iowait
	return busy, total
}

// corePercent returns the busy share of the interval between prev and cur.
func corePercent(prev, cur cpu.TimesStat) float32 {
	prevBusy, prevTotal := busyTicks(prev)
	curBusy, curTotal := busyTicks(cur)

	dt := curTotal - prevTotal
	if dt <= 0 {
		return 0
	}
	pct := (curBusy - prevBusy) / dt * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return float32(pct)
}
