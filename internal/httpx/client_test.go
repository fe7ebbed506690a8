package httpx

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientSetsUserAgentAndKeepsCookies(t *testing.T) {
	var seenUA, seenCookie string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUA = r.UserAgent()
		if c, err := r.Cookie("cf_clearance"); err == nil {
			seenCookie = c.Value
		}
		http.SetCookie(w, &http.Cookie{Name: "cf_clearance", Value: "ok", Path: "/"})
		_, _ = io.WriteString(w, "hi")
	}))
	defer srv.Close()

	c := New(Options{UserAgent: "test-agent", Cookies: true})
	for i := 0; i < 2; i++ {
		resp, err := c.Get(srv.URL)
		require.NoError(t, err)
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}
	assert.Equal(t, "test-agent", seenUA)
	assert.Equal(t, "ok", seenCookie)
}
