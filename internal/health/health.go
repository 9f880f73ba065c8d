// Package health reports database reachability and runtime statistics.
package health

import (
	"context"
	"runtime"
	"time"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Checker struct {
	db      Pinger
	timeout time.Duration
}

type Status struct {
	Status     string         `json:"status"`
	Version    string         `json:"version,omitempty"`
	Database   DatabaseHealth `json:"database"`
	Goroutines int            `json:"goroutines"`
	Memory     MemoryStats    `json:"memory"`
}

type MemoryStats struct {
	AllocMB      float64 `json:"alloc_mb"`
	TotalAllocMB float64 `json:"total_alloc_mb"`
	SysMB        float64 `json:"sys_mb"`
	NumGC        uint32  `json:"num_gc"`
}

type DatabaseHealth struct {
	Status       string `json:"status"`
	ResponseTime int64  `json:"response_time_ms"`
	Error        string `json:"error,omitempty"`
}

func NewChecker(db Pinger) *Checker {
	return &Checker{db: db, timeout: 2 * time.Second}
}

// Check pings the database and samples the runtime.
func (c *Checker) Check(ctx context.Context) Status {
	db := c.checkDatabase(ctx)

	status := StatusHealthy
	if db.Status != StatusHealthy {
		status = StatusUnhealthy
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return Status{
		Status:     status,
		Database:   db,
		Goroutines: runtime.NumGoroutine(),
		Memory: MemoryStats{
			AllocMB:      float64(mem.Alloc) / 1024 / 1024,
			TotalAllocMB: float64(mem.TotalAlloc) / 1024 / 1024,
			SysMB:        float64(mem.Sys) / 1024 / 1024,
			NumGC:        mem.NumGC,
		},
	}
}

func (c *Checker) checkDatabase(ctx context.Context) DatabaseHealth {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	err := c.db.PingContext(ctx)
	h := DatabaseHealth{Status: StatusHealthy, ResponseTime: time.Since(start).Milliseconds()}
	if err != nil {
		h.Status = StatusUnhealthy
		h.Error = err.Error()
	}
	return h
}
