package api

import (
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// ServerMetrics снимает показатели процесса симуляции для /api/server
type ServerMetrics struct {
	StartTime time.Time
}

func NewServerMetrics() *ServerMetrics {
	return &ServerMetrics{StartTime: time.Now()}
}

// Uptime время работы с точностью до секунды
func (sm *ServerMetrics) Uptime() time.Duration {
	return time.Since(sm.StartTime).Round(time.Second)
}

// ProcessStats загрузка CPU в процентах и резидентная память в MB
func (sm *ServerMetrics) ProcessStats() (cpuPercent, rssMB float64, err error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0, 0, err
	}
	if cpuPercent, err = proc.CPUPercent(); err != nil {
		return 0, 0, err
	}
	info, err := proc.MemoryInfo()
	if err != nil {
		return cpuPercent, 0, err
	}
	return cpuPercent, float64(info.RSS) / 1024 / 1024, nil
}

// MemoryStats статистика кучи Go
func (sm *ServerMetrics) MemoryStats() map[string]interface{} {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return map[string]interface{}{
		"alloc_mb":      float64(m.Alloc) / 1024 / 1024,
		"sys_mb":        float64(m.Sys) / 1024 / 1024,
		"heap_alloc_mb": float64(m.HeapAlloc) / 1024 / 1024,
		"num_gc":        m.NumGC,
		"goroutines":    runtime.NumGoroutine(),
	}
}
