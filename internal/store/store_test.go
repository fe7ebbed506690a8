package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"torrenter/pkg/types"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "nested", "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestKV(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	assert.Equal(t, "sqlite", s.Driver())

	_, ok, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put(ctx, "k", "v1"))
	require.NoError(t, s.Put(ctx, "k", "v2"))
	v, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v2", v)
}

func TestSearchCacheRoundTrip(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	in := []types.Candidate{
		{FileName: "direct", Ref: types.DirectLink{Link: "magnet:?xt=urn:btih:A"}, Seeders: 4, Resolution: types.Res720p, Score: 0.7},
		{FileName: "site", Ref: types.SiteLink{Site: "http://x/details/1"}},
	}
	require.NoError(t, s.PutSearchCache(ctx, "q", in))

	got, ok, err := s.GetSearchCache(ctx, "q", time.Hour)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, in, got)

	_, ok, err = s.GetSearchCache(ctx, "other", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSearchCacheExpiry(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	require.NoError(t, s.PutSearchCache(ctx, "q", []types.Candidate{{FileName: "a", Ref: types.SiteLink{Site: "s"}}}))
	_, err := s.DB.ExecContext(ctx, `UPDATE search_cache SET fetched_at=$1`, time.Now().Add(-2*time.Hour).Unix())
	require.NoError(t, err)

	_, ok, err := s.GetSearchCache(ctx, "q", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := s.PruneSearchCache(ctx, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestRecordDownload(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	res := &types.DownloadResult{Path: "downloads", Files: []types.SavedFile{{Path: "a", Length: 3}, {Path: "b", Length: 4}}}
	id, err := s.RecordDownload(ctx, "ubuntu", "magnet:?x", res)
	require.NoError(t, err)
	assert.Len(t, id, 36)

	rows, err := s.RecentDownloads(ctx, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, id, rows[0].RunID)
	assert.Equal(t, 2, rows[0].Files)
	assert.Equal(t, int64(7), rows[0].Bytes)
	assert.Equal(t, "ubuntu", rows[0].Query)
}

func TestTrimHistoryKeepsNewest(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	for i, id := range []string{"old", "mid", "new"} {
		_, err := s.DB.ExecContext(ctx, `
INSERT INTO downloads (run_id, query, link, path, files, bytes, saved_at)
VALUES ($1,'q','l','p',1,1,$2)`, id, int64(1000+i))
		require.NoError(t, err)
	}

	n, err := s.TrimHistory(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	rows, err := s.RecentDownloads(ctx, 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "new", rows[0].RunID)
	assert.Equal(t, "mid", rows[1].RunID)
}
