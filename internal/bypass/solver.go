package bypass

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"torrenter/internal/httpx"
)

// FlareSolverr drives a FlareSolverr-compatible service (POST /v1, cmd request.get).
type FlareSolverr struct {
	Endpoint string // e.g. http://localhost:8191
	Timeout  time.Duration
	HTTP     *http.Client
}

type solverRequest struct {
	Cmd        string `json:"cmd"`
	URL        string `json:"url"`
	MaxTimeout int64  `json:"maxTimeout"`
}

type solverResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Solution struct {
		URL      string `json:"url"`
		Status   int    `json:"status"`
		Response string `json:"response"`
		Cookies  []struct {
			Name   string `json:"name"`
			Value  string `json:"value"`
			Domain string `json:"domain"`
			Path   string `json:"path"`
		} `json:"cookies"`
	} `json:"solution"`
}

func (s *FlareSolverr) Solve(ctx context.Context, target string, jar http.CookieJar) (Response, error) {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	payload, _ := json.Marshal(solverRequest{Cmd: "request.get", URL: target, MaxTimeout: timeout.Milliseconds()})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(s.Endpoint, "/")+"/v1", bytes.NewReader(payload))
	if err != nil {
		return Response{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	cl := s.HTTP
	if cl == nil {
		cl = http.DefaultClient
	}
	resp, err := cl.Do(req)
	if err != nil {
		return Response{}, errors.Wrap(err, "solver request")
	}
	defer resp.Body.Close()

	var out solverResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Response{}, errors.Wrap(err, "decode solver response")
	}
	if out.Status != "ok" {
		return Response{}, errors.Wrapf(ErrChallenge, "solver: %s", out.Message)
	}

	if jar != nil && len(out.Solution.Cookies) > 0 {
		if u, err := url.Parse(target); err == nil {
			cookies := make([]*http.Cookie, 0, len(out.Solution.Cookies))
			for _, c := range out.Solution.Cookies {
				cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value, Path: c.Path})
			}
			jar.SetCookies(u, cookies)
		}
	}
	log.Printf("[bypass] solver returned %d bytes for %s", len(out.Solution.Response), httpx.Redact(target))
	return Response{Status: out.Solution.Status, Body: out.Solution.Response}, nil
}
