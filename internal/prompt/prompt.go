// Package prompt asks the human for a query or a candidate.
package prompt

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"torrenter/pkg/types"
)

// ErrCancelled is returned when the user backs out of a prompt.
var ErrCancelled = types.ErrCancelled

type Choice struct {
	Title       string
	Description string
}

// Prompter suspends for human input.
type Prompter interface {
	// Text asks until a non-blank answer is given.
	Text(ctx context.Context, message string) (string, error)
	// Select returns the index of the picked choice.
	Select(ctx context.Context, message string, choices []Choice, initial int) (int, error)
}

// New picks the terminal UI when both ends are a TTY, the line reader otherwise.
func New(in *os.File, out io.Writer) Prompter {
	if isatty.IsTerminal(in.Fd()) || isatty.IsCygwinTerminal(in.Fd()) {
		if f, ok := out.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
			return &TeaPrompter{In: in, Out: out}
		}
	}
	return NewLine(in, out)
}

const (
	titleMax  = 75
	titleKeep = 70
	linkMax   = 60
	linkKeep  = 55
	ellipsis  = "..."
)

// truncate cuts s to keep runes plus an ellipsis when it is longer than max runes.
func truncate(s string, max, keep int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:keep]) + ellipsis
}

// Label renders a candidate as a choice: the file name as title and
// every other attribute as "key: value" lines.
func Label(c types.Candidate) Choice {
	attrs := c.Attributes()
	lines := make([]string, 0, len(attrs))
	for _, a := range attrs {
		v := a.Value
		if a.Key == "link" {
			v = truncate(v, linkMax, linkKeep)
		}
		lines = append(lines, a.Key+": "+v)
	}
	return Choice{
		Title:       truncate(c.FileName, titleMax, titleKeep),
		Description: strings.Join(lines, "\n"),
	}
}

// Query asks for a search term.
func Query(ctx context.Context, p Prompter) (string, error) {
	return p.Text(ctx, "Search torrent:")
}

// Candidate lets the user pick one of the ranked candidates, top-ranked preselected.
func Candidate(ctx context.Context, p Prompter, ranked []types.Candidate) (types.Candidate, error) {
	if len(ranked) == 0 {
		return types.Candidate{}, types.ErrNoResults
	}
	choices := make([]Choice, len(ranked))
	for i, c := range ranked {
		choices[i] = Label(c)
	}
	idx, err := p.Select(ctx, "Select a torrent:", choices, 0)
	if err != nil {
		return types.Candidate{}, err
	}
	if idx < 0 || idx >= len(ranked) {
		return types.Candidate{}, ErrCancelled
	}
	return ranked[idx], nil
}
