package main

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"
)

const (
	CmdGetCPUUsage    = "get_cpu_usage"
	CmdGetMemoryUsage = "get_memory_usage"
)

var ErrUnknownCommand = errors.New("unknown command")

type commandFunc func(ctx context.Context) any

// CommandSet maps bridge command names onto the metrics accessors.
type CommandSet struct {
	commands map[string]commandFunc
	stats    *bridgeMetrics
}

func newCommandSet(handle *MetricsHandle, stats *bridgeMetrics) *CommandSet {
	return &CommandSet{
		stats: stats,
		commands: map[string]commandFunc{
			CmdGetCPUUsage: func(ctx context.Context) any {
				return handle.CPUUsage(ctx)
			},
			CmdGetMemoryUsage: func(ctx context.Context) any {
				return handle.MemoryUsage(ctx)
			},
		},
	}
}

// Invoke runs one command synchronously and returns its record.
func (cs *CommandSet) Invoke(ctx context.Context, name string) (any, error) {
	fn, ok := cs.commands[name]
	if !ok {
		cs.stats.observe(name, outcomeUnknown, 0)
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}

	start := time.Now()
	result := fn(ctx)
	cs.stats.observe(name, outcomeOK, time.Since(start))
	return result, nil
}

func (cs *CommandSet) Names() []string {
	names := make([]string, 0, len(cs.commands))
	for name := range cs.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
