// Package resolve turns a candidate or a direct reference into the link handed to the downloader.
package resolve

import (
	"context"
	"log"
	"strings"

	"github.com/pkg/errors"

	"torrenter/internal/bypass"
	"torrenter/internal/classify"
	"torrenter/internal/httpx"
	"torrenter/pkg/types"
)

type SiteLookup interface {
	ResolveBySite(ctx context.Context, site string) (string, error)
}

type Fetcher interface {
	Get(ctx context.Context, url string) (bypass.Response, error)
}

type Resolver struct {
	Sites  SiteLookup
	Bypass Fetcher
}

// Resolve expands a site reference once, then sends any exact URL through the bypass
// fetcher and uses the body in its place. Everything else passes through unchanged.
func (r *Resolver) Resolve(ctx context.Context, ref types.Ref) (string, error) {
	var link string
	switch v := ref.(type) {
	case types.DirectLink:
		link = v.Link
	case types.SiteLink:
		got, err := r.Sites.ResolveBySite(ctx, v.Site)
		if err != nil {
			return "", errors.Wrapf(wrapResolution(err), "site %s", v.Site)
		}
		link = strings.TrimSpace(got)
		if link == "" {
			return "", errors.Wrapf(types.ErrResolution, "site %s returned no link", v.Site)
		}
		log.Printf("[resolve] site %s -> %.60s", v.Site, httpx.Redact(link))
	default:
		return "", errors.Wrapf(types.ErrResolution, "unusable reference %T", ref)
	}
	return r.Finalize(ctx, link)
}

// Finalize is the last pass applied to whatever string is about to be downloaded.
func (r *Resolver) Finalize(ctx context.Context, link string) (string, error) {
	if !classify.IsURL(link) {
		return link, nil
	}
	shown := httpx.Redact(link)
	log.Printf("[resolve] fetching %s through bypass", shown)
	resp, err := r.Bypass.Get(ctx, link)
	if err != nil {
		return "", errors.Wrapf(wrapResolution(err), "bypass %s", shown)
	}
	body := strings.TrimSpace(resp.Body)
	if body == "" {
		return "", errors.Wrapf(types.ErrResolution, "bypass %s returned an empty body", shown)
	}
	return body, nil
}

type resolutionError struct{ cause error }

func (e *resolutionError) Error() string { return e.cause.Error() }
func (e *resolutionError) Unwrap() error { return e.cause }
func (e *resolutionError) Is(target error) bool {
	return target == types.ErrResolution
}

// wrapResolution keeps the cause reachable while marking the error as ErrResolution.
// Context cancellation is left alone so it still reads as an abort.
func wrapResolution(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	return &resolutionError{cause: err}
}
