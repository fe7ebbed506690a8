package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"torrenter/pkg/types"
)

// GetSearchCache returns cached candidates younger than maxAge.
func (s *Store) GetSearchCache(ctx context.Context, key string, maxAge time.Duration) ([]types.Candidate, bool, error) {
	var raw string
	var fetched int64
	err := s.DB.QueryRowContext(ctx, `SELECT candidates, fetched_at FROM search_cache WHERE key=$1`, key).Scan(&raw, &fetched)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, err
	}
	if maxAge > 0 && time.Since(time.Unix(fetched, 0)) > maxAge {
		return nil, false, nil
	}
	var out []types.Candidate
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, false, err
	}
	return out, true, nil
}

func (s *Store) PutSearchCache(ctx context.Context, key string, cands []types.Candidate) error {
	raw, err := json.Marshal(cands)
	if err != nil {
		return err
	}
	_, err = s.DB.ExecContext(ctx, `
INSERT INTO search_cache (key, candidates, fetched_at) VALUES ($1,$2,$3)
ON CONFLICT (key) DO UPDATE SET candidates=EXCLUDED.candidates, fetched_at=EXCLUDED.fetched_at`,
		key, string(raw), time.Now().Unix())
	return err
}

// PruneSearchCache drops entries older than maxAge.
func (s *Store) PruneSearchCache(ctx context.Context, maxAge time.Duration) (int64, error) {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM search_cache WHERE fetched_at < $1`, time.Now().Add(-maxAge).Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
