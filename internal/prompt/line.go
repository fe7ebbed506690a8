package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
)

// LinePrompter reads answers line by line; used when stdin is not a terminal.
// EOF counts as cancellation. A single goroutine owns the reader for the life of
// the prompter, so a prompt abandoned on cancellation leaves its line for the next one.
type LinePrompter struct {
	in    *bufio.Reader
	out   io.Writer
	once  sync.Once
	lines chan lineResult
}

func NewLine(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{in: bufio.NewReader(in), out: out}
}

type lineResult struct {
	s   string
	err error
}

func (p *LinePrompter) start() {
	p.once.Do(func() {
		p.lines = make(chan lineResult)
		go func() {
			defer close(p.lines)
			for {
				s, err := p.in.ReadString('\n')
				p.lines <- lineResult{s, err}
				if err != nil {
					return
				}
			}
		}()
	})
}

func (p *LinePrompter) readLine(ctx context.Context) (string, error) {
	p.start()
	select {
	case <-ctx.Done():
		return "", ErrCancelled
	case r, ok := <-p.lines:
		if !ok || (r.err != nil && (r.err != io.EOF || r.s == "")) {
			return "", ErrCancelled
		}
		return strings.TrimSpace(r.s), nil
	}
}

func (p *LinePrompter) Text(ctx context.Context, message string) (string, error) {
	for {
		fmt.Fprintf(p.out, "? %s ", message)
		s, err := p.readLine(ctx)
		if err != nil {
			return "", err
		}
		if s != "" {
			return s, nil
		}
	}
}

func (p *LinePrompter) Select(ctx context.Context, message string, choices []Choice, initial int) (int, error) {
	fmt.Fprintf(p.out, "? %s\n", message)
	for i, c := range choices {
		fmt.Fprintf(p.out, "%3d) %s\n", i+1, c.Title)
		for _, l := range strings.Split(c.Description, "\n") {
			if l != "" {
				fmt.Fprintf(p.out, "       %s\n", l)
			}
		}
	}
	for {
		fmt.Fprintf(p.out, "  Choice [%d]: ", initial+1)
		s, err := p.readLine(ctx)
		if err != nil {
			return -1, err
		}
		if s == "" {
			return initial, nil
		}
		if strings.EqualFold(s, "q") {
			return -1, ErrCancelled
		}
		n, err := strconv.Atoi(s)
		if err == nil && n >= 1 && n <= len(choices) {
			return n - 1, nil
		}
		fmt.Fprintf(p.out, "  enter a number between 1 and %d, or q to abort\n", len(choices))
	}
}
