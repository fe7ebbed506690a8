package indexer

import (
	"bytes"
	"context"
	"encoding/xml"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"torrenter/internal/httpx"
	"torrenter/pkg/types"
)

// TorznabClient queries a Prowlarr/Jackett torznab endpoint.
type TorznabClient struct {
	BaseURL string // e.g. http://localhost:9696
	APIKey  string
	Path    string // defaults to the Prowlarr aggregate endpoint
	HTTP    *http.Client
}

type torznabFeed struct {
	Channel struct {
		Items []torznabItem `xml:"item"`
	} `xml:"channel"`
}

type torznabItem struct {
	Title     string `xml:"title"`
	GUID      string `xml:"guid"`
	Link      string `xml:"link"`
	Comments  string `xml:"comments"`
	PubDate   string `xml:"pubDate"`
	Size      int64  `xml:"size"`
	Indexer   string `xml:"jackettindexer"`
	Enclosure struct {
		URL string `xml:"url,attr"`
	} `xml:"enclosure"`
	Attrs []struct {
		Name  string `xml:"name,attr"`
		Value string `xml:"value,attr"`
	} `xml:"attr"`
}

func (it torznabItem) attr(name string) string {
	for _, a := range it.Attrs {
		if strings.EqualFold(a.Name, name) {
			return a.Value
		}
	}
	return ""
}

func (c *TorznabClient) Name() string { return "torznab" }

func (c *TorznabClient) Search(ctx context.Context, query string) ([]types.Candidate, error) {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "indexer url")
	}
	u.Path = c.Path
	if u.Path == "" {
		u.Path = "/api/v1/indexers/all/results/torznab/api"
	}
	v := url.Values{}
	v.Set("apikey", c.APIKey)
	v.Set("t", "search")
	v.Set("q", query)
	u.RawQuery = v.Encode()

	log.Printf("[search] torznab %s", httpx.Redact(u.String()))
	body, err := get(ctx, c.HTTP, u.String())
	if err != nil {
		return nil, errors.Wrap(err, "torznab search")
	}
	return parseTorznab(body)
}

func parseTorznab(body []byte) ([]types.Candidate, error) {
	var feed torznabFeed
	dec := xml.NewDecoder(bytes.NewReader(body))
	dec.Strict = false
	if err := dec.Decode(&feed); err != nil {
		return nil, errors.Wrap(err, "decode torznab feed")
	}

	var out []types.Candidate
	for _, it := range feed.Channel.Items {
		ref, ok := torznabRef(it)
		if !ok {
			log.Printf("[search] skip %q: no link or details page", it.Title)
			continue
		}
		c := types.Candidate{
			FileName: strings.TrimSpace(it.Title),
			Ref:      ref,
			Seeders:  atoi(it.attr("seeders")),
			Leechers: atoi(it.attr("peers")) - atoi(it.attr("seeders")),
			Uploaded: it.PubDate,
			Indexer:  it.Indexer,
		}
		if c.Leechers < 0 {
			c.Leechers = 0
		}
		if it.Size > 0 {
			c.Size = humanize.Bytes(uint64(it.Size))
		}
		out = append(out, finish(c))
	}
	return out, nil
}

// torznabRef prefers magnets, then download links, then the details page.
func torznabRef(it torznabItem) (types.Ref, bool) {
	link := it.attr("magneturl")
	if link == "" {
		link = it.Link
	}
	if link == "" {
		link = it.Enclosure.URL
	}
	return types.NewRef(link, it.Comments)
}

func (c *TorznabClient) ResolveBySite(ctx context.Context, site string) (string, error) {
	return resolvePage(ctx, c.HTTP, site)
}

func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
