// Package tui provides an interactive terminal search interface: a query
// input on top, a scrollable results pane below, and live streaming of
// the generated answer.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/chengahtung/local-lode/internal/core/domain"
	"github.com/chengahtung/local-lode/internal/core/ports/driving"
)

// Options configure a TUI session.
type Options struct {
	// NResults is the number of candidates per query.
	NResults int

	// UseRerank enables cross-encoder reranking.
	UseRerank bool

	// UseLLM streams a generated answer below the results.
	UseLLM bool
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	resultStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	sourceStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true)
	answerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	spinnerGlyph = "…"
)

// Model is the bubbletea model for the search session.
type Model struct {
	query driving.QueryService
	opts  Options

	input    textinput.Model
	viewport viewport.Model

	searching bool
	results   []domain.FormattedResult
	answer    strings.Builder
	errText   string

	events <-chan domain.StreamEvent
	cancel context.CancelFunc

	width  int
	height int
	ready  bool
}

// New creates the TUI model.
func New(query driving.QueryService, opts Options) *Model {
	if opts.NResults <= 0 {
		opts.NResults = 5
	}

	input := textinput.New()
	input.Placeholder = "search your documents"
	input.Prompt = "> "
	input.Focus()

	return &Model{
		query: query,
		opts:  opts,
		input: input,
	}
}

// Run starts the program on the current terminal.
func (m *Model) Run() error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

// streamEventMsg carries one query stream event into the update loop.
type streamEventMsg struct {
	event domain.StreamEvent
	ok    bool
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		headerHeight := 3
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-headerHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - headerHeight
		}
		m.refreshContent()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.stopStream()
			return m, tea.Quit
		case tea.KeyEnter:
			if text := strings.TrimSpace(m.input.Value()); text != "" && !m.searching {
				return m, m.startSearch(text)
			}
			return m, nil
		}

	case streamEventMsg:
		return m.handleStreamEvent(msg)
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m *Model) View() string {
	if !m.ready {
		return "loading..."
	}

	header := titleStyle.Render("Local Lode") + "  " +
		promptStyle.Render("enter: search · esc: quit")
	return fmt.Sprintf("%s\n%s\n%s", header, m.input.View(), m.viewport.View())
}

func (m *Model) startSearch(text string) tea.Cmd {
	m.stopStream()
	m.searching = true
	m.results = nil
	m.answer.Reset()
	m.errText = ""
	m.refreshContent()

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.events = m.query.QueryStream(ctx, domain.QuerySpec{
		Text:      text,
		NResults:  m.opts.NResults,
		UseRerank: m.opts.UseRerank,
		UseLLM:    m.opts.UseLLM,
	})
	return m.nextEvent()
}

func (m *Model) nextEvent() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		event, ok := <-events
		return streamEventMsg{event: event, ok: ok}
	}
}

func (m *Model) handleStreamEvent(msg streamEventMsg) (tea.Model, tea.Cmd) {
	if !msg.ok {
		m.searching = false
		m.refreshContent()
		return m, nil
	}

	switch msg.event.Type {
	case domain.EventResults:
		if result, ok := msg.event.Payload.(*domain.QueryResult); ok {
			m.results = result.Results
		}
	case domain.EventChunk:
		if fragment, ok := msg.event.Payload.(string); ok {
			m.answer.WriteString(fragment)
		}
	case domain.EventError:
		m.errText = fmt.Sprintf("%v", msg.event.Payload)
		m.searching = false
	case domain.EventDone:
		m.searching = false
	}
	m.refreshContent()
	return m, m.nextEvent()
}

func (m *Model) stopStream() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

func (m *Model) refreshContent() {
	if !m.ready {
		return
	}

	var b strings.Builder
	if m.searching && len(m.results) == 0 {
		b.WriteString(promptStyle.Render("searching" + spinnerGlyph))
		b.WriteString("\n")
	}
	for _, r := range m.results {
		line := fmt.Sprintf("[%d] %s", r.Rank, r.Title)
		if r.Similarity != nil {
			line += fmt.Sprintf(" (%.2f)", *r.Similarity)
		}
		b.WriteString(resultStyle.Render(line))
		b.WriteString("\n")
		if r.Source != "" {
			b.WriteString(sourceStyle.Render("    " + r.Source))
			b.WriteString("\n")
		}
		if r.Snippet != "" {
			b.WriteString("    " + r.Snippet)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	if answer := m.answer.String(); answer != "" {
		b.WriteString(titleStyle.Render("Answer"))
		b.WriteString("\n")
		b.WriteString(answerStyle.Render(answer))
		b.WriteString("\n")
	}
	if m.errText != "" {
		b.WriteString(errorStyle.Render("error: " + m.errText))
		b.WriteString("\n")
	}

	m.viewport.SetContent(b.String())
}
