package main

import (
	"context"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"torrenter/internal/console"
	"torrenter/internal/store"
)

const historyLimit = 20

func showHistory(ctx context.Context, out *console.Printer, st *store.Store) error {
	if st == nil {
		err := errors.New("state database is disabled (STATE_DSN=off)")
		out.Fatal(err)
		return err
	}
	rows, err := st.RecentDownloads(ctx, historyLimit)
	if err != nil {
		err = errors.Wrap(err, "read history")
		out.Fatal(err)
		return err
	}
	if len(rows) == 0 {
		out.Info("No downloads yet")
		return nil
	}
	for _, r := range rows {
		out.Info("%s  %s  %s, %d files", humanize.Time(r.SavedAt), r.Query, humanize.Bytes(uint64(r.Bytes)), r.Files)
		out.Tree([]string{out.Path(r.Path)})
	}
	return nil
}
