package types

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrCancelled  = errors.New("cancelled")
	ErrNoResults  = errors.New("no torrents found")
	ErrResolution = errors.New("link resolution failed")
	ErrDownload   = errors.New("download failed")
)

// Resolution is an ordinal quality marker; higher is better.
type Resolution int

const (
	ResUnknown Resolution = iota
	Res480p
	Res576p
	Res720p
	Res1080p
	Res2160p
)

var resNames = map[Resolution]string{
	Res480p:  "480p",
	Res576p:  "576p",
	Res720p:  "720p",
	Res1080p: "1080p",
	Res2160p: "2160p",
}

func (r Resolution) String() string {
	if s, ok := resNames[r]; ok {
		return s
	}
	return "unknown"
}

func ParseResolution(s string) Resolution {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "4k", "uhd":
		return Res2160p
	}
	for r, name := range resNames {
		if s == name {
			return r
		}
	}
	return ResUnknown
}

// Ref says how a candidate turns into a fetchable link.
type Ref interface{ isRef() }

// DirectLink carries a link usable as-is (magnet, .torrent URL, protected page URL).
type DirectLink struct{ Link string }

// SiteLink needs a secondary lookup on the indexer.
type SiteLink struct{ Site string }

func (DirectLink) isRef() {}
func (SiteLink) isRef()   {}

type Candidate struct {
	FileName   string
	Ref        Ref
	Seeders    int
	Leechers   int
	Resolution Resolution
	Score      float64
	Size       string
	Uploaded   string
	Source     string // "WEB-DL","BluRay",...
	Indexer    string
}

// Link returns the direct link, or "" for site candidates.
func (c Candidate) Link() string {
	if d, ok := c.Ref.(DirectLink); ok {
		return d.Link
	}
	return ""
}

// Site returns the secondary lookup id, or "" for direct candidates.
func (c Candidate) Site() string {
	if s, ok := c.Ref.(SiteLink); ok {
		return s.Site
	}
	return ""
}

type Attr struct{ Key, Value string }

// Attributes lists everything but the file name in display order. Empty values are skipped.
func (c Candidate) Attributes() []Attr {
	all := []Attr{
		{"link", c.Link()},
		{"site", c.Site()},
		{"seeders", strconv.Itoa(c.Seeders)},
		{"leechers", strconv.Itoa(c.Leechers)},
		{"resolution", c.Resolution.String()},
		{"score", strconv.FormatFloat(c.Score, 'f', -1, 64)},
		{"size", c.Size},
		{"uploaded", c.Uploaded},
		{"source", c.Source},
		{"indexer", c.Indexer},
	}
	out := all[:0]
	for _, a := range all {
		if a.Value != "" {
			out = append(out, a)
		}
	}
	return out
}

type candidateJSON struct {
	FileName   string  `json:"fileName"`
	Link       string  `json:"link,omitempty"`
	Site       string  `json:"site,omitempty"`
	Seeders    int     `json:"seeders"`
	Leechers   int     `json:"leechers"`
	Resolution string  `json:"resolution"`
	Score      float64 `json:"score"`
	Size       string  `json:"size,omitempty"`
	Uploaded   string  `json:"uploaded,omitempty"`
	Source     string  `json:"source,omitempty"`
	Indexer    string  `json:"indexer,omitempty"`
}

func (c Candidate) MarshalJSON() ([]byte, error) {
	return json.Marshal(candidateJSON{
		FileName: c.FileName, Link: c.Link(), Site: c.Site(),
		Seeders: c.Seeders, Leechers: c.Leechers,
		Resolution: c.Resolution.String(), Score: c.Score,
		Size: c.Size, Uploaded: c.Uploaded, Source: c.Source, Indexer: c.Indexer,
	})
}

func (c *Candidate) UnmarshalJSON(b []byte) error {
	var in candidateJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	ref, ok := NewRef(in.Link, in.Site)
	if !ok {
		return errors.Errorf("candidate %q has neither link nor site", in.FileName)
	}
	*c = Candidate{
		FileName: in.FileName, Ref: ref,
		Seeders: in.Seeders, Leechers: in.Leechers,
		Resolution: ParseResolution(in.Resolution), Score: in.Score,
		Size: in.Size, Uploaded: in.Uploaded, Source: in.Source, Indexer: in.Indexer,
	}
	return nil
}

// NewRef prefers the link; ok is false when both are blank.
func NewRef(link, site string) (Ref, bool) {
	if l := strings.TrimSpace(link); l != "" {
		return DirectLink{Link: l}, true
	}
	if s := strings.TrimSpace(site); s != "" {
		return SiteLink{Site: s}, true
	}
	return nil, false
}

type SavedFile struct {
	Path   string
	Length int64
}

type DownloadResult struct {
	Path  string
	Name  string
	Files []SavedFile
}
