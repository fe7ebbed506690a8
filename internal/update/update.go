// Package update checks for a newer release at most once per interval.
package update

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/pkg/errors"
	"golang.org/x/mod/semver"
)

const lastCheckKey = "update.last_check"

// KV persists the time of the last check.
type KV interface {
	Get(ctx context.Context, k string) (string, bool, error)
	Put(ctx context.Context, k, v string) error
}

type Notifier struct {
	Repo     string // owner/name on GitHub
	Current  string
	Interval time.Duration
	Store    KV // optional; without it every run checks
	HTTP     *http.Client
	APIBase  string // defaults to the go-github client base, https://api.github.com/

	once   sync.Once
	done   chan struct{}
	latest string
}

// Start runs the check in the background. Safe to call once.
func (n *Notifier) Start(ctx context.Context) {
	n.once.Do(func() {
		n.done = make(chan struct{})
		go func() {
			defer close(n.done)
			latest, err := n.check(ctx)
			if err != nil {
				log.Printf("[update] check skipped: %v", err)
				return
			}
			n.latest = latest
		}()
	})
}

// Available returns a newer version if the check has finished and found one. It never blocks.
func (n *Notifier) Available() (string, bool) {
	if n.done == nil {
		return "", false
	}
	select {
	case <-n.done:
	default:
		return "", false
	}
	if n.latest == "" {
		return "", false
	}
	return n.latest, true
}

func (n *Notifier) due(ctx context.Context) bool {
	if n.Store == nil || n.Interval <= 0 {
		return true
	}
	v, ok, err := n.Store.Get(ctx, lastCheckKey)
	if err != nil || !ok {
		return true
	}
	sec, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return true
	}
	return time.Since(time.Unix(sec, 0)) >= n.Interval
}

func (n *Notifier) check(ctx context.Context) (string, error) {
	cur := canonical(n.Current)
	if !semver.IsValid(cur) || semver.Prerelease(cur) == "-dev" {
		return "", errors.Errorf("current version %q is not a release", n.Current)
	}
	if !n.due(ctx) {
		return "", errors.New("checked recently")
	}

	owner, name, ok := strings.Cut(n.Repo, "/")
	if !ok || owner == "" || name == "" {
		return "", errors.Errorf("repo %q is not owner/name", n.Repo)
	}
	gh := github.NewClient(n.HTTP)
	if n.APIBase != "" {
		base, err := url.Parse(strings.TrimRight(n.APIBase, "/") + "/")
		if err != nil {
			return "", errors.Wrap(err, "api base")
		}
		gh.BaseURL = base
	}
	rel, _, err := gh.Repositories.GetLatestRelease(ctx, owner, name)
	if err != nil {
		return "", errors.Wrap(err, "latest release")
	}

	if n.Store != nil {
		if err := n.Store.Put(ctx, lastCheckKey, strconv.FormatInt(time.Now().Unix(), 10)); err != nil {
			log.Printf("[update] remember check: %v", err)
		}
	}

	latest := canonical(rel.GetTagName())
	if !semver.IsValid(latest) || semver.Compare(latest, cur) <= 0 {
		return "", nil
	}
	log.Printf("[update] %s available (current %s)", latest, cur)
	return latest, nil
}

func canonical(v string) string {
	v = strings.TrimSpace(v)
	if v != "" && !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}
