package prompt

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"torrenter/pkg/types"
)

func TestLabelTruncatesLongTitle(t *testing.T) {
	name := strings.Repeat("a", 80)
	l := Label(types.Candidate{FileName: name, Ref: types.DirectLink{Link: "magnet:?x"}})
	assert.True(t, strings.HasSuffix(l.Title, "..."))
	assert.Less(t, utf8.RuneCountInString(l.Title), 80)
	assert.Equal(t, 73, utf8.RuneCountInString(l.Title))
}

func TestLabelKeepsShortTitle(t *testing.T) {
	name := strings.Repeat("b", 75)
	l := Label(types.Candidate{FileName: name, Ref: types.SiteLink{Site: "x"}})
	assert.Equal(t, name, l.Title)
}

func TestLabelTruncatesRunesNotBytes(t *testing.T) {
	name := strings.Repeat("é", 76)
	l := Label(types.Candidate{FileName: name, Ref: types.SiteLink{Site: "x"}})
	assert.True(t, utf8.ValidString(l.Title))
	assert.Equal(t, strings.Repeat("é", 70)+"...", l.Title)
}

func TestLabelDescription(t *testing.T) {
	link := "https://example.com/" + strings.Repeat("x", 60)
	c := types.Candidate{
		FileName:   "Ubuntu",
		Ref:        types.DirectLink{Link: link},
		Seeders:    12,
		Resolution: types.Res1080p,
		Score:      0.5,
		Size:       "4 GB",
	}
	lines := strings.Split(Label(c).Description, "\n")
	assert.Equal(t, "link: "+link[:55]+"...", lines[0])
	assert.Contains(t, lines, "seeders: 12")
	assert.Contains(t, lines, "resolution: 1080p")
	assert.Contains(t, lines, "score: 0.5")
	assert.Contains(t, lines, "size: 4 GB")
	for _, l := range lines {
		assert.False(t, strings.HasPrefix(l, "fileName"), "title is not repeated")
		assert.False(t, strings.HasPrefix(l, "site:"), "empty site is skipped")
	}
}

func TestLabelShortLinkKept(t *testing.T) {
	l := Label(types.Candidate{FileName: "x", Ref: types.DirectLink{Link: "magnet:?xt=urn:btih:ABC"}})
	assert.Contains(t, l.Description, "link: magnet:?xt=urn:btih:ABC")
}

type scripted struct {
	text      string
	pick      int
	err       error
	gotChoice []Choice
	gotInit   int
}

func (s *scripted) Text(context.Context, string) (string, error) { return s.text, s.err }
func (s *scripted) Select(_ context.Context, _ string, c []Choice, initial int) (int, error) {
	s.gotChoice, s.gotInit = c, initial
	return s.pick, s.err
}

func TestCandidatePicksAndDefaultsToTop(t *testing.T) {
	ranked := []types.Candidate{
		{FileName: "top", Ref: types.DirectLink{Link: "magnet:?1"}},
		{FileName: "next", Ref: types.DirectLink{Link: "magnet:?2"}},
	}
	p := &scripted{pick: 1}
	got, err := Candidate(context.Background(), p, ranked)
	require.NoError(t, err)
	assert.Equal(t, "next", got.FileName)
	assert.Equal(t, 0, p.gotInit)
	assert.Equal(t, "top", p.gotChoice[0].Title)
}

func TestCandidateCancelled(t *testing.T) {
	p := &scripted{err: ErrCancelled}
	_, err := Candidate(context.Background(), p, []types.Candidate{{FileName: "a", Ref: types.SiteLink{Site: "s"}}})
	assert.True(t, errors.Is(err, types.ErrCancelled))
}

func TestCandidateEmpty(t *testing.T) {
	_, err := Candidate(context.Background(), &scripted{}, nil)
	assert.True(t, errors.Is(err, types.ErrNoResults))
}

func TestLinePrompterText(t *testing.T) {
	var out bytes.Buffer
	p := NewLine(strings.NewReader("\n  \nubuntu iso\n"), &out)
	got, err := p.Text(context.Background(), "Search torrent:")
	require.NoError(t, err)
	assert.Equal(t, "ubuntu iso", got)
	assert.Equal(t, 3, strings.Count(out.String(), "Search torrent:"))
}

func TestLinePrompterTextEOFCancels(t *testing.T) {
	p := NewLine(strings.NewReader(""), &bytes.Buffer{})
	_, err := p.Text(context.Background(), "Search torrent:")
	assert.True(t, errors.Is(err, ErrCancelled))
}

func TestLinePrompterSelect(t *testing.T) {
	choices := []Choice{{Title: "a"}, {Title: "b", Description: "seeders: 1"}, {Title: "c"}}

	var out bytes.Buffer
	idx, err := NewLine(strings.NewReader("9\nx\n2\n"), &out).Select(context.Background(), "Select:", choices, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	assert.Contains(t, out.String(), "seeders: 1")
	assert.Contains(t, out.String(), "between 1 and 3")

	idx, err = NewLine(strings.NewReader("\n"), &out).Select(context.Background(), "Select:", choices, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, idx)

	_, err = NewLine(strings.NewReader("q\n"), &out).Select(context.Background(), "Select:", choices, 0)
	assert.True(t, errors.Is(err, ErrCancelled))
}

func TestLinePrompterContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r, w := io.Pipe()
	defer w.Close()
	_, err := NewLine(r, &bytes.Buffer{}).Text(ctx, "q")
	assert.True(t, errors.Is(err, ErrCancelled))
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestSelectModelKeys(t *testing.T) {
	var m tea.Model = newSelectModel("Select:", []Choice{{Title: "a"}, {Title: "b"}, {Title: "c"}}, 0)
	m, _ = m.Update(key("up"))
	assert.Equal(t, 2, m.(selectModel).cursor, "wraps to the bottom")
	m, _ = m.Update(key("down"))
	m, _ = m.Update(key("down"))
	m, cmd := m.Update(key("enter"))
	assert.Equal(t, 1, m.(selectModel).cursor)
	assert.True(t, m.(selectModel).done)
	assert.NotNil(t, cmd)

	var c tea.Model = newSelectModel("Select:", []Choice{{Title: "a"}}, 5)
	assert.Equal(t, 0, c.(selectModel).cursor)
	c, _ = c.Update(key("ctrl+c"))
	assert.True(t, c.(selectModel).cancelled)
}

func TestSelectModelScrolls(t *testing.T) {
	choices := make([]Choice, 25)
	for i := range choices {
		choices[i] = Choice{Title: strings.Repeat("x", i+1)}
	}
	var m tea.Model = newSelectModel("Select:", choices, 0)
	for i := 0; i < 12; i++ {
		m, _ = m.Update(key("down"))
	}
	sm := m.(selectModel)
	assert.Equal(t, 12, sm.cursor)
	assert.Equal(t, 3, sm.offset)
	assert.NotContains(t, sm.View(), "\n  x\n")
}

func TestTextModelKeys(t *testing.T) {
	var m tea.Model = textModel{message: "Search torrent:"}
	m, _ = m.Update(key("enter"))
	assert.True(t, m.(textModel).invalid)
	for _, k := range []string{"u", "b", " ", "x", "backspace", "i"} {
		m, _ = m.Update(key(k))
	}
	assert.Equal(t, "ub i", string(m.(textModel).value))
	m, _ = m.Update(key("enter"))
	assert.True(t, m.(textModel).done)

	var c tea.Model = textModel{}
	c, _ = c.Update(key("esc"))
	assert.True(t, c.(textModel).cancelled)
}

func TestQuitWithoutConfirmIsCancel(t *testing.T) {
	// a quit from outside (SIGINT) leaves the model neither done nor cancelled
	var m tea.Model = newSelectModel("Select:", []Choice{{Title: "a"}, {Title: "b"}}, 0)
	m, _ = m.Update(key("down"))
	m, _ = m.Update(tea.QuitMsg{})
	idx, err := m.(selectModel).answer()
	assert.Equal(t, -1, idx)
	assert.True(t, errors.Is(err, ErrCancelled))

	var tm tea.Model = textModel{message: "Search torrent:"}
	tm, _ = tm.Update(key("ubu"))
	s, err := tm.(textModel).answer()
	assert.Empty(t, s)
	assert.True(t, errors.Is(err, ErrCancelled))

	tm, _ = tm.Update(key("enter"))
	s, err = tm.(textModel).answer()
	require.NoError(t, err)
	assert.Equal(t, "ubu", s)

	m, _ = m.Update(key("enter"))
	idx, err = m.(selectModel).answer()
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
}

func TestLinePrompterUsableAfterCancel(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	p := NewLine(r, &bytes.Buffer{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Text(ctx, "Search torrent:")
	require.True(t, errors.Is(err, ErrCancelled))

	go func() { _, _ = io.WriteString(w, "debian\n") }()
	got, err := p.Text(context.Background(), "Search torrent:")
	require.NoError(t, err)
	assert.Equal(t, "debian", got)
}
