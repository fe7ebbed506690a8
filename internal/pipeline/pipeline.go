// Package pipeline runs one query through search, selection, resolution and download.
package pipeline

import (
	"context"
	"log"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"torrenter/internal/classify"
	"torrenter/internal/console"
	"torrenter/internal/prompt"
	"torrenter/internal/scoring"
	"torrenter/pkg/types"
)

type Searcher interface {
	Search(ctx context.Context, query string) ([]types.Candidate, error)
}

type Resolver interface {
	Resolve(ctx context.Context, ref types.Ref) (string, error)
}

type Downloader interface {
	Download(ctx context.Context, link, path string) (*types.DownloadResult, error)
}

type Recorder interface {
	RecordDownload(ctx context.Context, query, link string, res *types.DownloadResult) (string, error)
}

type Pipeline struct {
	Indexer    Searcher
	Prompter   prompt.Prompter
	Resolver   Resolver
	Downloader Downloader
	Console    *console.Printer
	History    Recorder // optional
}

// Run is the single place where failures are reported. Cancellation prints "Aborted!" and
// returns types.ErrCancelled; every other error is printed once as fatal and returned.
func (p *Pipeline) Run(ctx context.Context, query, dest string) (*types.DownloadResult, error) {
	res, err := p.run(ctx, query, dest)
	switch {
	case err == nil:
		return res, nil
	case errors.Is(err, types.ErrCancelled), errors.Is(err, context.Canceled):
		log.Printf("[pipeline] aborted: %v", err)
		p.Console.Info("Aborted!")
		return nil, types.ErrCancelled
	case errors.Is(err, types.ErrNoResults):
		log.Printf("[pipeline] %v", err)
		p.Console.Warn("%v", err)
		return nil, err
	default:
		log.Printf("[pipeline] fatal: %+v", err)
		p.Console.Fatal(err)
		return nil, err
	}
}

func (p *Pipeline) run(ctx context.Context, query, dest string) (*types.DownloadResult, error) {
	if strings.TrimSpace(query) == "" {
		q, err := prompt.Query(ctx, p.Prompter)
		if err != nil {
			return nil, err
		}
		query = q
	}

	q := classify.Classify(query)
	var ref types.Ref = types.DirectLink{Link: q.Value}
	if !q.Direct {
		c, err := p.choose(ctx, q.Value)
		if err != nil {
			return nil, err
		}
		ref = c.Ref
	}

	link, err := p.Resolver.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	log.Printf("[pipeline] resolved %.80s", link)

	res, err := p.Downloader.Download(ctx, link, dest)
	if err != nil {
		if !errors.Is(err, types.ErrDownload) && !errors.Is(err, context.Canceled) {
			err = errors.Wrap(downloadError{err}, "download")
		}
		return nil, err
	}

	p.Console.Success("File saved in %s", p.Console.Path(res.Path))
	files := make([]string, len(res.Files))
	for i, f := range res.Files {
		files[i] = relTo(res.Path, f.Path)
	}
	p.Console.Tree(files)

	if p.History != nil {
		if id, err := p.History.RecordDownload(ctx, q.Value, link, res); err != nil {
			log.Printf("[pipeline] history not saved: %v", err)
		} else {
			log.Printf("[pipeline] run %s recorded", id)
		}
	}
	return res, nil
}

func (p *Pipeline) choose(ctx context.Context, query string) (types.Candidate, error) {
	p.Console.Blank()
	p.Console.Await("Searching for %s", query)
	found, err := p.Indexer.Search(ctx, query)
	if err != nil {
		return types.Candidate{}, errors.Wrapf(err, "search %q", query)
	}
	p.Console.Info("Found %d torrents", len(found))
	if len(found) == 0 {
		return types.Candidate{}, errors.Wrapf(types.ErrNoResults, "for %q", query)
	}
	p.Console.Blank()

	ranked := scoring.Rank(found)
	c, err := prompt.Candidate(ctx, p.Prompter, ranked)
	if err != nil {
		return types.Candidate{}, err
	}
	log.Printf("[pipeline] selected %q (score=%v res=%s seeders=%d)", c.FileName, c.Score, c.Resolution, c.Seeders)
	return c, nil
}

func relTo(base, p string) string {
	if r, err := filepath.Rel(base, p); err == nil && !strings.HasPrefix(r, "..") {
		return r
	}
	return p
}

type downloadError struct{ cause error }

func (e downloadError) Error() string        { return e.cause.Error() }
func (e downloadError) Unwrap() error        { return e.cause }
func (e downloadError) Is(target error) bool { return target == types.ErrDownload }
