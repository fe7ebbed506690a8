package indexer

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"torrenter/pkg/types"
)

// JSONClient talks to a torrent-indexer style JSON search API.
type JSONClient struct {
	BaseURL string
	HTTP    *http.Client
}

type indexedTorrent struct {
	Title      string  `json:"title"`
	Details    string  `json:"details"`
	MagnetLink string  `json:"magnet_link"`
	Size       string  `json:"size"`
	Date       string  `json:"date"`
	SeedCount  int     `json:"seed_count"`
	LeechCount int     `json:"leech_count"`
	Similarity float32 `json:"similarity"`
}

type jsonResponse struct {
	Results []indexedTorrent `json:"results"`
}

func (c *JSONClient) Name() string { return "json" }

func (c *JSONClient) Search(ctx context.Context, query string) ([]types.Candidate, error) {
	u, err := url.Parse(strings.TrimRight(c.BaseURL, "/") + "/search")
	if err != nil {
		return nil, errors.Wrap(err, "indexer url")
	}
	u.RawQuery = url.Values{"q": {query}}.Encode()

	log.Printf("[search] json %s", u.String())
	body, err := get(ctx, c.HTTP, u.String())
	if err != nil {
		return nil, errors.Wrap(err, "json search")
	}
	var resp jsonResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.Wrap(err, "decode json results")
	}

	out := make([]types.Candidate, 0, len(resp.Results))
	for _, it := range resp.Results {
		ref, ok := types.NewRef(it.MagnetLink, it.Details)
		if !ok {
			log.Printf("[search] skip %q: no link or details page", it.Title)
			continue
		}
		out = append(out, finish(types.Candidate{
			FileName: strings.TrimSpace(it.Title),
			Ref:      ref,
			Seeders:  it.SeedCount,
			Leechers: it.LeechCount,
			Score:    float64(it.Similarity),
			Size:     it.Size,
			Uploaded: it.Date,
			Indexer:  c.Name(),
		}))
	}
	return out, nil
}

func (c *JSONClient) ResolveBySite(ctx context.Context, site string) (string, error) {
	return resolvePage(ctx, c.HTTP, site)
}
