package indexer

import (
	"context"
	"log"
	"strings"
	"time"

	"torrenter/pkg/types"
)

type SearchCache interface {
	GetSearchCache(ctx context.Context, key string, maxAge time.Duration) ([]types.Candidate, bool, error)
	PutSearchCache(ctx context.Context, key string, cands []types.Candidate) error
}

// Cached serves repeated queries from the store for TTL. Site lookups always go to the indexer.
type Cached struct {
	Indexer
	Cache SearchCache
	TTL   time.Duration
}

func (c *Cached) Search(ctx context.Context, query string) ([]types.Candidate, error) {
	key := searchKey(c.Indexer.Name(), query)
	if cached, ok, err := c.Cache.GetSearchCache(ctx, key, c.TTL); err != nil {
		log.Printf("[search] cache read %q: %v", key, err)
	} else if ok && len(cached) > 0 {
		log.Printf("[search] cache hit %q (%d results)", key, len(cached))
		return cached, nil
	}

	found, err := c.Indexer.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(found) > 0 {
		if err := c.Cache.PutSearchCache(ctx, key, found); err != nil {
			log.Printf("[search] cache write %q: %v", key, err)
		}
	}
	return found, nil
}

func searchKey(indexer, query string) string {
	return indexer + "|" + strings.ToLower(strings.Join(strings.Fields(query), " "))
}
