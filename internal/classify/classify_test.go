package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyMagnet(t *testing.T) {
	for _, in := range []string{
		"magnet:?xt=urn:btih:ABC",
		"magnet:?",
		"magnet:?anything goes here, even spaces",
	} {
		q := Classify(in)
		assert.True(t, q.Direct, in)
		assert.Equal(t, in, q.Value)
	}
	assert.False(t, Classify("magnet: not really").Direct)
}

func TestClassifyURL(t *testing.T) {
	direct := []string{
		"https://host/page",
		"https://host.example/page",
		"http://nas:9696/download?id=1",
		"http://example.com",
		"https://example.com:8443/a/b.torrent?x=1#frag",
		"http://127.0.0.1:9696/api",
		"http://localhost/file.torrent",
		"ftp://mirror.example.org/pub/file.torrent",
	}
	for _, in := range direct {
		assert.True(t, Classify(in).Direct, in)
	}

	search := []string{
		"ubuntu iso",
		"get https://example.com/page now",
		"https://example.com/page trailing words",
		"see http://example.com",
		"example.com",
		"https://",
		"https:// host/page",
		"https://host/page extra",
		"http://-bad-/x",
	}
	for _, in := range search {
		assert.False(t, Classify(in).Direct, in)
	}
}

func TestClassifyTrims(t *testing.T) {
	q := Classify("  https://example.com/x  ")
	assert.True(t, q.Direct)
	assert.Equal(t, "https://example.com/x", q.Value)
}
