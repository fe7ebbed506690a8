package prompt

import (
	"context"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	qStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	selStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Underline(true)
	descStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	hintStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// TeaPrompter renders prompts with bubbletea. Ctrl+C and Esc cancel, and so does
// any quit that did not come from the user confirming an answer.
type TeaPrompter struct {
	In  io.Reader
	Out io.Writer
}

func (p *TeaPrompter) run(ctx context.Context, m tea.Model) (tea.Model, error) {
	prog := tea.NewProgram(m, tea.WithInput(p.In), tea.WithOutput(p.Out), tea.WithContext(ctx))
	final, err := prog.Run()
	if err != nil {
		// killed by context or signal
		return nil, ErrCancelled
	}
	return final, nil
}

func (p *TeaPrompter) Text(ctx context.Context, message string) (string, error) {
	final, err := p.run(ctx, textModel{message: message})
	if err != nil {
		return "", err
	}
	return final.(textModel).answer()
}

func (p *TeaPrompter) Select(ctx context.Context, message string, choices []Choice, initial int) (int, error) {
	if len(choices) == 0 {
		return -1, ErrCancelled
	}
	final, err := p.run(ctx, newSelectModel(message, choices, initial))
	if err != nil {
		return -1, err
	}
	return final.(selectModel).answer()
}

type textModel struct {
	message   string
	value     []rune
	invalid   bool
	done      bool
	cancelled bool
}

func (m textModel) Init() tea.Cmd { return nil }

// answer is the confirmed text; a program that quit any other way was cancelled.
func (m textModel) answer() (string, error) {
	if m.cancelled || !m.done {
		return "", ErrCancelled
	}
	return strings.TrimSpace(string(m.value)), nil
}

func (m textModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch k.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.cancelled = true
		return m, tea.Quit
	case tea.KeyEnter:
		if strings.TrimSpace(string(m.value)) == "" {
			m.invalid = true
			return m, nil
		}
		m.done = true
		return m, tea.Quit
	case tea.KeyBackspace:
		if len(m.value) > 0 {
			m.value = m.value[:len(m.value)-1]
		}
	case tea.KeySpace:
		m.value = append(m.value, ' ')
	case tea.KeyRunes:
		m.value = append(m.value, k.Runes...)
		m.invalid = false
	}
	return m, nil
}

func (m textModel) View() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s", qStyle.Render("?"), m.message, string(m.value))
	if m.done || m.cancelled {
		b.WriteString("\n")
		return b.String()
	}
	b.WriteString("█\n")
	if m.invalid {
		b.WriteString(errStyle.Render("  please type something") + "\n")
	}
	return b.String()
}

const pageSize = 10

type selectModel struct {
	message   string
	choices   []Choice
	cursor    int
	offset    int
	done      bool
	cancelled bool
}

func newSelectModel(message string, choices []Choice, initial int) selectModel {
	if initial < 0 || initial >= len(choices) {
		initial = 0
	}
	m := selectModel{message: message, choices: choices, cursor: initial}
	m.scroll()
	return m
}

func (m *selectModel) scroll() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+pageSize {
		m.offset = m.cursor - pageSize + 1
	}
}

func (m selectModel) Init() tea.Cmd { return nil }

func (m selectModel) answer() (int, error) {
	if m.cancelled || !m.done {
		return -1, ErrCancelled
	}
	return m.cursor, nil
}

func (m selectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch k.String() {
	case "ctrl+c", "esc", "q":
		m.cancelled = true
		return m, tea.Quit
	case "enter":
		m.done = true
		return m, tea.Quit
	case "up", "k", "shift+tab":
		m.cursor = (m.cursor - 1 + len(m.choices)) % len(m.choices)
	case "down", "j", "tab":
		m.cursor = (m.cursor + 1) % len(m.choices)
	case "home":
		m.cursor = 0
	case "end":
		m.cursor = len(m.choices) - 1
	}
	m.scroll()
	return m, nil
}

func (m selectModel) View() string {
	var b strings.Builder
	if m.done || m.cancelled {
		answer := ""
		if m.done {
			answer = selStyle.Render(m.choices[m.cursor].Title)
		}
		fmt.Fprintf(&b, "%s %s %s\n", qStyle.Render("?"), m.message, answer)
		return b.String()
	}
	fmt.Fprintf(&b, "%s %s %s\n", qStyle.Render("?"), m.message, hintStyle.Render("↑/↓ move, enter select, esc abort"))
	end := m.offset + pageSize
	if end > len(m.choices) {
		end = len(m.choices)
	}
	for i := m.offset; i < end; i++ {
		c := m.choices[i]
		if i == m.cursor {
			fmt.Fprintf(&b, "%s %s\n", qStyle.Render("❯"), selStyle.Render(c.Title))
			for _, l := range strings.Split(c.Description, "\n") {
				b.WriteString("    " + descStyle.Render(l) + "\n")
			}
			continue
		}
		fmt.Fprintf(&b, "  %s\n", c.Title)
	}
	return b.String()
}
