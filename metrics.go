package main

// CpuInfo is the reply to get_cpu_usage.
type CpuInfo struct {
	Overall float32   `json:"overall"`
	PerCore []float32 `json:"per_core"`
}

// MemoryInfo is the reply to get_memory_usage.
type MemoryInfo struct {
	Used       uint64  `json:"used"`
	Total      uint64  `json:"total"`
	Percentage float32 `json:"percentage"`
}

// newCpuInfo copies perCore and averages it. No cores gives a zero
// overall and an empty (non-nil) slice.
func newCpuInfo(perCore []float32) CpuInfo {
	cores := make([]float32, len(perCore))
	copy(cores, perCore)
	if len(cores) == 0 {
		return CpuInfo{Overall: 0, PerCore: cores}
	}

	var sum float64
	for _, c := range cores {
		sum += float64(c)
	}
	return CpuInfo{
		Overall: float32(sum / float64(len(cores))),
		PerCore: cores,
	}
}

func newMemoryInfo(used, total uint64) MemoryInfo {
	var pct float32
	if total > 0 {
		pct = float32(float64(used) / float64(total) * 100)
	}
	return MemoryInfo{
		Used:       used,
		Total:      total,
		Percentage: pct,
	}
}
