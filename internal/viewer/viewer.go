package viewer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"slidegen/internal/deck"
	"slidegen/internal/render"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	statusHeight  = 1
)

// Model pages through a finished deck one slide at a time. Keys scroll the
// current slide when it is taller than the terminal.
type Model struct {
	Deck *deck.Deck
	Page int

	pages    []string
	header   string
	viewport viewport.Model
}

func New(d *deck.Deck) Model {
	m := Model{
		Deck: d,
		pages: render.Slides(d, render.Options{ImageRef: func(i int) string {
			return fmt.Sprintf("slide %d image", i+1)
		}}),
		viewport: viewport.New(defaultWidth, defaultHeight),
	}
	m.resize(defaultWidth, defaultHeight)
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "right", "l", "n", " ", "pgdown":
			m.setPage(m.Page + 1)
			return m, nil
		case "left", "h", "p", "pgup":
			m.setPage(m.Page - 1)
			return m, nil
		case "home", "g":
			m.setPage(0)
			return m, nil
		case "end", "G":
			m.setPage(len(m.pages) - 1)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	return lipgloss.JoinVertical(lipgloss.Left, m.header, m.viewport.View(), m.status())
}

// Slide returns the rendered content of the current slide.
func (m Model) Slide() string {
	if len(m.pages) == 0 {
		return ""
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(m.viewport.Width),
	)
	if err != nil {
		return fmt.Sprintf("Error: could not create renderer (%v)", err)
	}
	out, err := r.Render(m.pages[m.Page])
	if err != nil {
		return fmt.Sprintf("Error: could not render slide (%v)", err)
	}
	return out
}

func (m *Model) setPage(page int) {
	if page < 0 || page >= len(m.pages) || page == m.Page {
		return
	}
	m.Page = page
	m.viewport.SetContent(m.Slide())
	m.viewport.GotoTop()
}

func (m *Model) resize(width, height int) {
	m.header = render.Header(m.Deck, width)
	m.viewport.Width = width
	m.viewport.Height = max(height-lipgloss.Height(m.header)-statusHeight, 1)
	m.viewport.SetContent(m.Slide())
}

func (m Model) status() string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(m.Deck.Theme.Colors.TextLight))
	if len(m.pages) == 0 {
		return style.Render("no slides · q quit")
	}
	return style.Render(strings.Join([]string{
		fmt.Sprintf("slide %d/%d", m.Page+1, len(m.pages)),
		"←/→ navigate",
		"q quit",
	}, " · "))
}

// Run opens the deck in a full-screen terminal viewer.
func Run(d *deck.Deck) error {
	if _, err := tea.NewProgram(New(d), tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("run viewer: %w", err)
	}
	return nil
}
