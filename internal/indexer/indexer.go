package indexer

import (
	"bytes"
	"context"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"

	"torrenter/internal/httpx"
	"torrenter/internal/scoring"
	"torrenter/pkg/types"
)

// Indexer finds candidates for a keyword query and resolves site-only candidates.
type Indexer interface {
	Name() string
	Search(ctx context.Context, query string) ([]types.Candidate, error)
	ResolveBySite(ctx context.Context, site string) (string, error)
}

type Options struct {
	Kind    string // torznab|json
	BaseURL string
	APIKey  string
	Path    string
	HTTP    *http.Client
}

func New(o Options) (Indexer, error) {
	if o.HTTP == nil {
		o.HTTP = http.DefaultClient
	}
	if _, err := url.Parse(o.BaseURL); err != nil || o.BaseURL == "" {
		return nil, errors.Errorf("invalid indexer url %q", o.BaseURL)
	}
	switch strings.ToLower(o.Kind) {
	case "", "torznab":
		return &TorznabClient{BaseURL: o.BaseURL, APIKey: o.APIKey, Path: o.Path, HTTP: o.HTTP}, nil
	case "json":
		return &JSONClient{BaseURL: o.BaseURL, HTTP: o.HTTP}, nil
	default:
		return nil, errors.Errorf("unknown indexer kind %q", o.Kind)
	}
}

// finish fills derived fields and gives unscored candidates a heuristic score.
func finish(c types.Candidate) types.Candidate {
	scoring.Enrich(&c)
	if c.Score == 0 {
		c.Score = scoring.Score(c, scoring.DefaultParams).Total
	}
	return c
}

func get(ctx context.Context, cl *http.Client, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := cl.Do(req)
	if err != nil {
		return nil, httpx.RedactError(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, errors.Errorf("GET %s: %s", httpx.Redact(u), resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 16<<20))
}

// bare magnets in scripts or text; anchors are read from the parsed document first
var magnetRE = regexp.MustCompile(`magnet:\?xt=urn:[^"'<>\s]+`)

// resolvePage fetches a details page and pulls the first magnet or .torrent link from it.
func resolvePage(ctx context.Context, cl *http.Client, site string) (string, error) {
	page, err := url.Parse(site)
	if err != nil || page.Scheme == "" {
		return "", errors.Errorf("site %q is not a page url", site)
	}
	body, err := get(ctx, cl, site)
	if err != nil {
		return "", err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrapf(err, "parse %s", httpx.Redact(site))
	}

	if href, ok := doc.Find(`a[href^="magnet:"]`).First().Attr("href"); ok {
		return strings.TrimSpace(href), nil
	}
	var torrent string
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil || !strings.HasSuffix(strings.ToLower(ref.Path), ".torrent") {
			return true
		}
		torrent = page.ResolveReference(ref).String()
		return false
	})
	if torrent != "" {
		return torrent, nil
	}
	if m := magnetRE.Find(body); m != nil {
		return html.UnescapeString(string(m)), nil
	}
	return "", errors.Errorf("no magnet or torrent link on %s", httpx.Redact(site))
}
