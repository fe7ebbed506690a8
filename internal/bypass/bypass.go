// Package bypass fetches pages that may sit behind bot-mitigation challenges.
package bypass

import (
	"bytes"
	"context"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"torrenter/internal/httpx"
)

var ErrChallenge = errors.New("anti-bot challenge not solved")

type Response struct {
	Status int
	Body   string
}

// Solver completes a challenge out of process and returns the page body.
type Solver interface {
	Solve(ctx context.Context, url string, jar http.CookieJar) (Response, error)
}

type Fetcher struct {
	HTTP   *http.Client // should carry a cookie jar so clearance cookies stick
	Solver Solver       // optional
}

func New(cl *http.Client, s Solver) *Fetcher {
	f := &Fetcher{HTTP: cl, Solver: s}
	base := *cl
	base.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
			return http.ErrUseLastResponse
		}
		if len(via) >= 10 {
			return errors.New("stopped after 10 redirects")
		}
		return nil
	}
	f.HTTP = &base
	return f
}

// Get returns the body at url. A redirect to a non-HTTP target (a magnet link) yields
// the target itself as the body.
func (f *Fetcher) Get(ctx context.Context, url string) (Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Response{}, err
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,application/x-bittorrent,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	shown := httpx.Redact(url)
	resp, err := f.HTTP.Do(req)
	if err != nil {
		return Response{}, errors.Wrapf(httpx.RedactError(err), "fetch %s", shown)
	}
	defer resp.Body.Close()

	if isRedirect(resp.StatusCode) {
		if loc := resp.Header.Get("Location"); loc != "" {
			log.Printf("[bypass] %s redirected to %.60s", shown, httpx.Redact(loc))
			return Response{Status: resp.StatusCode, Body: loc}, nil
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return Response{}, errors.Wrapf(err, "read %s", shown)
	}

	if isChallenge(resp, body) {
		if f.Solver == nil {
			return Response{}, errors.Wrapf(ErrChallenge, "%s (status %d, no solver configured)", shown, resp.StatusCode)
		}
		log.Printf("[bypass] challenge at %s, delegating to solver", shown)
		return f.Solver.Solve(ctx, url, f.HTTP.Jar)
	}
	if resp.StatusCode/100 != 2 {
		return Response{}, errors.Errorf("fetch %s: %s", shown, resp.Status)
	}
	log.Printf("[bypass] %s -> %d bytes", shown, len(body))
	return Response{Status: resp.StatusCode, Body: string(body)}, nil
}

func isRedirect(code int) bool {
	switch code {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}

var challengeMarkers = [][]byte{
	[]byte("cf-chl"),
	[]byte("challenge-platform"),
	[]byte("Just a moment..."),
	[]byte("cf_chl_opt"),
	[]byte("DDoS-Guard"),
}

func isChallenge(resp *http.Response, body []byte) bool {
	switch resp.StatusCode {
	case http.StatusForbidden, http.StatusServiceUnavailable, http.StatusTooManyRequests:
	default:
		return false
	}
	if resp.Header.Get("cf-mitigated") == "challenge" {
		return true
	}
	server := strings.ToLower(resp.Header.Get("Server"))
	if strings.Contains(server, "cloudflare") || strings.Contains(server, "ddos-guard") {
		return true
	}
	for _, m := range challengeMarkers {
		if bytes.Contains(body, m) {
			return true
		}
	}
	return false
}
