package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"torrenter/pkg/types"
)

type HistoryRow struct {
	RunID   string
	Query   string
	Link    string
	Path    string
	Files   int
	Bytes   int64
	SavedAt time.Time
}

// RecordDownload stores one finished download under a fresh run id.
func (s *Store) RecordDownload(ctx context.Context, query, link string, res *types.DownloadResult) (string, error) {
	var total int64
	for _, f := range res.Files {
		total += f.Length
	}
	id := uuid.NewString()
	_, err := s.DB.ExecContext(ctx, `
INSERT INTO downloads (run_id, query, link, path, files, bytes, saved_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		id, query, link, res.Path, len(res.Files), total, time.Now().Unix())
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) RecentDownloads(ctx context.Context, limit int) ([]HistoryRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.DB.QueryContext(ctx, `
SELECT run_id, query, link, path, files, bytes, saved_at
FROM downloads
ORDER BY saved_at DESC
LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []HistoryRow
	for rows.Next() {
		var r HistoryRow
		var at int64
		if err := rows.Scan(&r.RunID, &r.Query, &r.Link, &r.Path, &r.Files, &r.Bytes, &at); err != nil {
			return nil, err
		}
		r.SavedAt = time.Unix(at, 0)
		out = append(out, r)
	}
	return out, rows.Err()
}

// TrimHistory keeps the newest keep rows and deletes the rest.
func (s *Store) TrimHistory(ctx context.Context, keep int) (int64, error) {
	res, err := s.DB.ExecContext(ctx, `
DELETE FROM downloads
WHERE run_id NOT IN (SELECT run_id FROM downloads ORDER BY saved_at DESC LIMIT $1)`, keep)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
