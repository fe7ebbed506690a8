// Package console writes the user-facing lines of a run.
package console

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

type Printer struct {
	mu    sync.Mutex
	out   io.Writer
	color bool
	live  bool // a progress line is on screen
}

func New(out io.Writer) *Printer {
	color := false
	if f, ok := out.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) && os.Getenv("NO_COLOR") == ""
	}
	return &Printer{out: out, color: color}
}

var (
	awaitStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	fatalStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	cyanStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	grayStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	yellowStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	redStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func (p *Printer) paint(s lipgloss.Style, text string) string {
	if !p.color {
		return text
	}
	return s.Render(text)
}

func (p *Printer) line(s lipgloss.Style, badge, label, msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clearLive()
	fmt.Fprintf(p.out, "%s  %-8s %s\n", p.paint(s, badge), p.paint(s.Underline(true), label), msg)
}

func (p *Printer) clearLive() {
	if p.live {
		fmt.Fprint(p.out, "\n")
		p.live = false
	}
}

func (p *Printer) Await(format string, a ...any) {
	p.line(awaitStyle, "…", "await", fmt.Sprintf(format, a...))
}
func (p *Printer) Info(format string, a ...any) {
	p.line(infoStyle, "ℹ", "info", fmt.Sprintf(format, a...))
}
func (p *Printer) Success(format string, a ...any) {
	p.line(successStyle, "✔", "success", fmt.Sprintf(format, a...))
}
func (p *Printer) Warn(format string, a ...any) {
	p.line(warnStyle, "⚠", "warning", fmt.Sprintf(format, a...))
}
func (p *Printer) Fatal(err error) {
	p.line(fatalStyle, "✖", "fatal", err.Error())
}

func (p *Printer) Blank() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clearLive()
	fmt.Fprintln(p.out)
}

// Path renders a path highlighted.
func (p *Printer) Path(s string) string { return p.paint(cyanStyle, s) }

// Tree lists saved files under the success line.
func (p *Printer) Tree(paths []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clearLive()
	for _, s := range paths {
		fmt.Fprintln(p.out, p.paint(grayStyle, " ├── "+s))
	}
}

// Progress overwrites one status line on a terminal and prints plain lines otherwise.
func (p *Printer) Progress(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.color {
		fmt.Fprintf(p.out, "\r\x1b[2K%s %s", p.paint(awaitStyle, "↓"), msg)
		p.live = true
		return
	}
	fmt.Fprintf(p.out, "↓ %s\n", msg)
}

const bannerWidth = 58

// Banner prints the app box.
func (p *Printer) Banner(version, repo, donate string) {
	bar := strings.Repeat("═", bannerWidth)
	row := func(label, text string) string {
		pad := bannerWidth - 12 - len([]rune(text))
		if pad < 0 {
			pad = 0
		}
		return p.paint(redStyle, label) + p.paint(cyanStyle, "║") + " " + text + strings.Repeat(" ", pad) + p.paint(cyanStyle, "║")
	}
	title := fmt.Sprintf("torrenter (%s)", version)
	left := (bannerWidth - len([]rune(title))) / 2
	right := bannerWidth - left - len([]rune(title))
	if left < 0 {
		left, right = 0, 0
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, p.paint(cyanStyle, "╔"+bar+"╗"))
	fmt.Fprintln(p.out, p.paint(cyanStyle, "║")+p.paint(yellowStyle, strings.Repeat(" ", left)+title+strings.Repeat(" ", right))+p.paint(cyanStyle, "║"))
	fmt.Fprintln(p.out, p.paint(cyanStyle, "╠"+bar+"╣"))
	fmt.Fprintln(p.out, row(" ♥  REPO   ", repo))
	fmt.Fprintln(p.out, p.paint(cyanStyle, "╠"+bar+"╣"))
	fmt.Fprintln(p.out, row(" ♥  DONATE ", donate))
	fmt.Fprintln(p.out, p.paint(cyanStyle, "╚"+bar+"╝"))
	fmt.Fprintln(p.out)
}
