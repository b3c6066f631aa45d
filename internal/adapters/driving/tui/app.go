// Package tui provides an interactive ask session built on Bubbletea.
// It wraps the query service in a single view: type a question, read
// the answer with its provenance, ask again.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dochaven/docq-cli/internal/core/domain"
	"github.com/dochaven/docq-cli/internal/core/ports/driving"
)

// answerMsg carries the outcome of one question.
type answerMsg struct {
	response *domain.QueryResponse
	err      error
}

// App is the ask session model following the Elm architecture.
type App struct {
	queries    driving.QueryService
	collection string
	opts       driving.QueryOptions
	ctx        context.Context

	styles  *Styles
	input   textinput.Model
	spinner spinner.Model

	response *domain.QueryResponse
	err      error
	asking   bool

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates the ask session for one collection.
func NewApp(queries driving.QueryService, collection string, opts driving.QueryOptions) (*App, error) {
	if queries == nil {
		return nil, fmt.Errorf("creating app: query service is nil")
	}
	if strings.TrimSpace(collection) == "" {
		return nil, fmt.Errorf("creating app: collection name is empty")
	}

	s := DefaultStyles()

	ti := textinput.New()
	ti.Placeholder = "Ask a question..."
	ti.Focus()
	ti.CharLimit = 512
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(s.theme.Secondary)

	return &App{
		queries:    queries,
		collection: collection,
		opts:       opts,
		ctx:        context.Background(),
		styles:     s,
		input:      ti,
		spinner:    sp,
		width:      80,
		height:     24,
	}, nil
}

// WithContext sets the context used for queries.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init initialises the application.
func (a *App) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		return a, nil

	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case answerMsg:
		a.asking = false
		a.response = msg.response
		a.err = msg.err
		a.input.Focus()
		return a, nil

	case spinner.TickMsg:
		if !a.asking {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return a, tea.Quit

	case tea.KeyEnter:
		if a.asking {
			return a, nil
		}
		question := strings.TrimSpace(a.input.Value())
		if question == "" {
			return a, nil
		}
		a.asking = true
		a.err = nil
		a.response = nil
		a.input.Blur()
		return a, tea.Batch(a.spinner.Tick, a.ask(question))
	}

	if !a.asking {
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		return a, cmd
	}
	return a, nil
}

// ask runs the question against the query service off the UI loop.
func (a *App) ask(question string) tea.Cmd {
	return func() tea.Msg {
		resp, err := a.queries.Ask(a.ctx, a.collection, question, a.opts)
		return answerMsg{response: resp, err: err}
	}
}

// View renders the ask session.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 8)

	header := a.styles.Title.Render("docq") +
		a.styles.Muted.Render("  collection: "+a.collection)
	sections = append(sections, header, "")

	sections = append(sections, a.input.View(), "")

	switch {
	case a.asking:
		sections = append(sections, a.spinner.View()+a.styles.Muted.Render(" Thinking..."))

	case a.err != nil:
		sections = append(sections, a.styles.Error.Render("Error: "+a.err.Error()))

	case a.response != nil:
		sections = append(sections, a.renderResponse())
	}

	sections = append(sections, "",
		a.styles.Help.Render("enter: ask • esc: quit"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (a *App) renderResponse() string {
	resp := a.response

	var badge string
	if resp.FoundInDocs {
		badge = a.styles.Success.Render("[from documents]")
	} else {
		badge = a.styles.Warning.Render("[general knowledge]")
	}

	lines := []string{
		badge,
		"",
		a.styles.Normal.Render(wrapText(resp.Answer, a.width-6)),
	}

	if len(resp.Results) > 0 {
		lines = append(lines, "", a.styles.Subtitle.Render("Sources"))
		for i, result := range resp.Results {
			filename, _ := result.Metadata["filename"].(string)
			lines = append(lines, a.styles.Muted.Render(
				fmt.Sprintf("  %d. %s (%.2f)", i+1, filename, result.SimilarityScore)))
		}
	}

	return a.styles.Border.Padding(0, 1).Render(strings.Join(lines, "\n"))
}

// wrapText wraps text at width, preserving existing newlines.
func wrapText(text string, width int) string {
	if width < 20 {
		width = 20
	}

	var out []string
	for _, paragraph := range strings.Split(text, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}

		line := words[0]
		for _, word := range words[1:] {
			if len(line)+1+len(word) > width {
				out = append(out, line)
				line = word
				continue
			}
			line += " " + word
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// Run starts the ask session and blocks until the user quits.
func Run(queries driving.QueryService, collection string, opts driving.QueryOptions) error {
	app, err := NewApp(queries, collection, opts)
	if err != nil {
		return err
	}

	program := tea.NewProgram(app, tea.WithAltScreen())
	_, err = program.Run()
	return err
}
