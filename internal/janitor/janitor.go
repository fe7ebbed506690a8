// Package janitor keeps the state database from growing without bound.
package janitor

import (
	"context"
	"log"
	"time"
)

// Target is the part of the store the janitor is allowed to delete from.
type Target interface {
	PruneSearchCache(ctx context.Context, maxAge time.Duration) (int64, error)
	TrimHistory(ctx context.Context, keep int) (int64, error)
}

type Policy struct {
	CacheTTL    time.Duration // 0 = leave the cache alone
	HistoryKeep int           // 0 = keep every row
}

// Sweep runs one cleanup pass. Failures are logged, never returned: a dirty
// state database must not stop a download.
func Sweep(ctx context.Context, t Target, p Policy) {
	if p.CacheTTL > 0 {
		if n, err := t.PruneSearchCache(ctx, p.CacheTTL); err != nil {
			log.Printf("[janitor] search cache prune: %v", err)
		} else if n > 0 {
			log.Printf("[janitor] dropped %d searches older than %s", n, p.CacheTTL)
		}
	}
	if p.HistoryKeep > 0 {
		if n, err := t.TrimHistory(ctx, p.HistoryKeep); err != nil {
			log.Printf("[janitor] history trim: %v", err)
		} else if n > 0 {
			log.Printf("[janitor] trimmed %d history rows (keep=%d)", n, p.HistoryKeep)
		}
	}
}
