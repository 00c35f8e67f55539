// Package cache holds in-process caches for derived ledger views.
package cache

import (
	"context"
	"time"

	applog "wallet/internal/log"
)

// Cache is the subset of LRU used by callers.
type Cache[V any] interface {
	Get(key string) (V, bool)
	Set(key string, value V)
}

// Cleaner is implemented by caches with expiring entries.
type Cleaner interface {
	CleanExpired() int
}

var _ Cache[int] = (*LRU[int])(nil)

// Janitor periodically drops expired entries from registered caches.
type Janitor struct {
	caches []Cleaner
	logger *applog.Logger
}

func NewJanitor(logger *applog.Logger, caches ...Cleaner) *Janitor {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Janitor{caches: caches, logger: logger.WithComponent(applog.ComponentCache)}
}

// Sweep runs one cleaning pass and returns the number of dropped entries.
func (j *Janitor) Sweep() int {
	total := 0
	for _, c := range j.caches {
		total += c.CleanExpired()
	}
	return total
}

// Run sweeps every interval until ctx is cancelled.
func (j *Janitor) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := j.Sweep(); n > 0 {
				j.logger.Debug("Dropped expired cache entries", "count", n)
			}
		}
	}
}
