// Package timeouts provides the timeout tiers used with context.WithTimeout
// around database and external-service calls in handlers.
//
// Tiers:
//   - Ping: health checks
//   - Short: single-document reads and writes
//   - Medium: list queries and multi-step reads
//   - Long: workflows touching multiple collections (cascades, acceptance)
package timeouts

import (
	"sync"
	"time"
)

const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 10 * time.Second
	DefaultLong   = 30 * time.Second
)

var (
	mu     sync.RWMutex
	ping   = DefaultPing
	short  = DefaultShort
	medium = DefaultMedium
	long   = DefaultLong
)

// Ping returns the health-check timeout.
func Ping() time.Duration { mu.RLock(); defer mu.RUnlock(); return ping }

// Short returns the timeout for single-document operations.
func Short() time.Duration { mu.RLock(); defer mu.RUnlock(); return short }

// Medium returns the timeout for list queries and fan-out reads.
func Medium() time.Duration { mu.RLock(); defer mu.RUnlock(); return medium }

// Long returns the timeout for multi-collection workflows.
func Long() time.Duration { mu.RLock(); defer mu.RUnlock(); return long }

// Config holds override values; zero fields keep the current value.
type Config struct {
	Ping, Short, Medium, Long time.Duration
}

// Configure applies overrides. Call during startup, before handlers run.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	if cfg.Ping > 0 {
		ping = cfg.Ping
	}
	if cfg.Short > 0 {
		short = cfg.Short
	}
	if cfg.Medium > 0 {
		medium = cfg.Medium
	}
	if cfg.Long > 0 {
		long = cfg.Long
	}
}

// Reset restores defaults. Useful for tests.
func Reset() {
	Configure(Config{Ping: DefaultPing, Short: DefaultShort, Medium: DefaultMedium, Long: DefaultLong})
}
