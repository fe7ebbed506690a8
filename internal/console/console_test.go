package console

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestPlainOutputWhenNotATerminal(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf)
	p.Info("Found %d torrents", 3)
	p.Fatal(errors.New("boom"))
	p.Tree([]string{"a/b.iso"})

	out := buf.String()
	assert.NotContains(t, out, "\x1b[")
	assert.Contains(t, out, "info     Found 3 torrents\n")
	assert.Contains(t, out, "fatal    boom\n")
	assert.Contains(t, out, " ├── a/b.iso\n")
}

func TestProgressPlain(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf)
	p.Progress("50%")
	p.Success("done")
	assert.Equal(t, "↓ 50%\n", strings.SplitAfter(buf.String(), "\n")[0])
}

func TestBanner(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).Banner("1.2.3", "https://github.com/sayem314/torrenter", "https://sayem.eu.org/donate")
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 7)
	assert.Contains(t, lines[1], "torrenter (1.2.3)")
	for _, l := range lines {
		assert.Equal(t, bannerWidth+2, len([]rune(l)), l)
	}
	assert.Contains(t, lines[3], "REPO")
	assert.Contains(t, lines[5], "DONATE")
}
