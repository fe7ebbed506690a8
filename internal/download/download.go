package download

import (
	"bytes"
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/anacrolix/torrent"
	"github.com/anacrolix/torrent/metainfo"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"torrenter/internal/classify"
	"torrenter/internal/httpx"
	"torrenter/pkg/types"
)

type Progress struct {
	Name        string
	Done, Total int64
	Peers       int
}

func (p Progress) String() string {
	pct := 0.0
	if p.Total > 0 {
		pct = float64(p.Done) / float64(p.Total) * 100
	}
	return p.Name + " " + humanize.Bytes(uint64(p.Done)) + "/" + humanize.Bytes(uint64(p.Total)) +
		" (" + humanize.FtoaWithDigits(pct, 1) + "%) peers=" + humanize.Comma(int64(p.Peers))
}

// Downloader fetches a torrent with an anacrolix client that lives for one call.
type Downloader struct {
	TrackersMode     string // all|http|udp|none
	ListenPort       int    // 0 = any free port
	ProgressInterval time.Duration
	HTTP             *http.Client
	OnProgress       func(Progress)
}

func (d *Downloader) newClient(dir string) (*torrent.Client, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	cfg := torrent.NewDefaultClientConfig()
	cfg.DataDir = winLongPath(dir)
	cfg.ListenPort = d.ListenPort
	cfg.DisableTCP = false
	cfg.DisableUTP = true
	cfg.Seed = false
	cfg.NoUpload = false
	c, err := torrent.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	log.Printf("[download] client dataDir=%s trackersMode=%s", dir, d.TrackersMode)
	return c, nil
}

// Download blocks until every file of link is on disk under dir.
func (d *Downloader) Download(ctx context.Context, link, dir string) (*types.DownloadResult, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}
	cl, err := d.newClient(abs)
	if err != nil {
		return nil, errors.Wrapf(types.ErrDownload, "client: %v", err)
	}
	defer cl.Close()

	t, err := d.add(ctx, cl, link)
	if err != nil {
		return nil, err
	}
	log.Printf("[download] added ih=%s, waiting for metadata", t.InfoHash().HexString())
	if err := waitForInfo(ctx, t); err != nil {
		return nil, err
	}

	t.DownloadAll()
	if err := d.wait(ctx, t); err != nil {
		return nil, err
	}

	res := &types.DownloadResult{Path: abs, Name: t.Name()}
	for _, f := range t.Files() {
		res.Files = append(res.Files, types.SavedFile{Path: filepath.Join(abs, f.Path()), Length: f.Length()})
	}
	log.Printf("[download] complete %s (%d files, %s)", t.Name(), len(res.Files), humanize.Bytes(uint64(t.Length())))
	return res, nil
}

func waitForInfo(ctx context.Context, t *torrent.Torrent) error {
	select {
	case <-t.GotInfo():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Downloader) wait(ctx context.Context, t *torrent.Torrent) error {
	every := d.ProgressInterval
	if every <= 0 {
		every = 2 * time.Second
	}
	tick := time.NewTicker(every)
	defer tick.Stop()
	total := t.Length()
	for {
		done := t.BytesCompleted()
		if d.OnProgress != nil {
			d.OnProgress(Progress{Name: t.Name(), Done: done, Total: total, Peers: t.Stats().ActivePeers})
		}
		if done >= total {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick.C:
		}
	}
}

type sourceKind int

const (
	srcUnknown sourceKind = iota
	srcMagnet
	srcInfoHash
	srcURL
	srcMetainfo
	srcFile
)

func kindOf(link string) sourceKind {
	switch {
	case classify.IsMagnet(link) || strings.HasPrefix(link, "magnet:"):
		return srcMagnet
	case isInfoHash(link):
		return srcInfoHash
	case classify.IsURL(link):
		return srcURL
	case strings.HasPrefix(link, "d") && strings.Contains(link, "4:info"):
		return srcMetainfo
	}
	if st, err := os.Stat(link); err == nil && !st.IsDir() {
		return srcFile
	}
	return srcUnknown
}

func (d *Downloader) add(ctx context.Context, cl *torrent.Client, link string) (*torrent.Torrent, error) {
	switch kindOf(link) {
	case srcMagnet, srcInfoHash:
		src := link
		if !strings.HasPrefix(src, "magnet:") {
			src = "magnet:?xt=urn:btih:" + strings.ToUpper(src)
		}
		t, err := cl.AddMagnet(sanitizeMagnet(src, d.TrackersMode))
		if err != nil {
			return nil, errors.Wrapf(types.ErrDownload, "add magnet: %v", err)
		}
		if tiers := buildTrackerTiers(d.TrackersMode); len(tiers) != 0 {
			t.AddTrackers(tiers)
		}
		return t, nil
	case srcURL:
		mi, err := d.fetchMetainfo(ctx, link)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if err != nil {
			return nil, errors.Wrapf(types.ErrDownload, "fetch %s: %v", httpx.Redact(link), err)
		}
		return addMetainfo(cl, mi)
	case srcMetainfo:
		mi, err := metainfo.Load(strings.NewReader(link))
		if err != nil {
			return nil, errors.Wrapf(types.ErrDownload, "parse torrent body: %v", err)
		}
		return addMetainfo(cl, mi)
	case srcFile:
		t, err := cl.AddTorrentFromFile(link)
		if err != nil {
			return nil, errors.Wrapf(types.ErrDownload, "add %s: %v", link, err)
		}
		return t, nil
	}
	return nil, errors.Wrapf(types.ErrDownload, "unrecognized link %.60q", link)
}

func addMetainfo(cl *torrent.Client, mi *metainfo.MetaInfo) (*torrent.Torrent, error) {
	t, err := cl.AddTorrent(mi)
	if err != nil {
		return nil, errors.Wrapf(types.ErrDownload, "add torrent: %v", err)
	}
	return t, nil
}

func (d *Downloader) fetchMetainfo(ctx context.Context, u string) (*metainfo.MetaInfo, error) {
	hc := d.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, httpx.RedactError(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, errors.Errorf("status %s", resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return nil, err
	}
	return metainfo.Load(bytes.NewReader(body))
}

// trackers
var extraHTTP = []string{
	"http://tracker.opentrackr.org:1337/announce",
	"https://tracker.opentrackr.org:443/announce",
	"https://tracker.zemoj.com/announce",
}
var extraUDP = []string{
	"udp://tracker.opentrackr.org:1337/announce",
	"udp://open.stealth.si:80/announce",
	"udp://tracker.torrent.eu.org:451/announce",
	"udp://exodus.desync.com:6969/announce",
	"udp://open.demonii.com:1337/announce",
}

func buildTrackerTiers(mode string) [][]string {
	var tiers [][]string
	switch strings.ToLower(mode) {
	case "none":
		return tiers
	case "http":
		for _, s := range extraHTTP {
			tiers = append(tiers, []string{s})
		}
	case "udp":
		for _, s := range extraUDP {
			tiers = append(tiers, []string{s})
		}
	default: // "all"
		for _, s := range extraHTTP {
			tiers = append(tiers, []string{s})
		}
		for _, s := range extraUDP {
			tiers = append(tiers, []string{s})
		}
	}
	return tiers
}

// sanitizeMagnet filters the magnet's own trackers by mode.
func sanitizeMagnet(raw, mode string) string {
	if !strings.HasPrefix(raw, "magnet:") {
		return raw
	}
	m, err := metainfo.ParseMagnetURI(raw)
	if err != nil {
		return raw
	}
	mode = strings.ToLower(strings.TrimSpace(mode))
	keep := func(tr string) bool {
		trL := strings.ToLower(tr)
		switch mode {
		case "udp":
			return strings.HasPrefix(trL, "udp://")
		case "http":
			return strings.HasPrefix(trL, "http://") || strings.HasPrefix(trL, "https://")
		case "none":
			return false
		default:
			return true
		}
	}
	var trs []string
	for _, tr := range m.Trackers {
		if keep(tr) {
			trs = append(trs, tr)
		}
	}
	m.Trackers = trs
	return m.String()
}

func isInfoHash(s string) bool {
	switch len(s) {
	case 40:
		return strings.IndexFunc(s, func(r rune) bool {
			return !((r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F'))
		}) == -1
	case 32:
		return strings.IndexFunc(strings.ToUpper(s), func(r rune) bool {
			return !((r >= 'A' && r <= 'Z') || (r >= '2' && r <= '7'))
		}) == -1
	}
	return false
}

func winLongPath(p string) string {
	if os.PathSeparator != '\\' {
		return p
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		abs = p
	}
	if strings.HasPrefix(abs, `\\?\`) {
		return abs
	}
	if strings.HasPrefix(abs, `\\`) {
		return `\\?\UNC\` + strings.TrimPrefix(abs, `\\`)
	}
	return `\\?\` + abs
}
