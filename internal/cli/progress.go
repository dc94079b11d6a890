package cli

import (
	"context"
	"fmt"

	"charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"

	"github.com/raphaelgruber/postcraft/internal/corpus"
)

// Theme holds the color scheme for terminal output.
type Theme struct {
	Status  lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Hint    lipgloss.Color
	Heading lipgloss.Color
}

// defaultTheme provides default colors.
var defaultTheme = Theme{
	Status:  lipgloss.Color("#5FAFD7"), // light blue
	Success: lipgloss.Color("#00D787"), // green
	Warning: lipgloss.Color("#FFAF00"), // amber
	Error:   lipgloss.Color("#FF005F"), // red
	Hint:    lipgloss.Color("#6C6C6C"), // dim gray
	Heading: lipgloss.Color("#AF87FF"), // violet
}

// Style functions for dynamic theming
func (t Theme) statusStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Status)
}

func (t Theme) completedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

func (t Theme) warningStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Warning)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

func (t Theme) headingStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Heading).Bold(true)
}

// convertProgressMsg carries one per-file progress update.
type convertProgressMsg corpus.Progress

// convertDoneMsg carries the outcome of the whole batch.
type convertDoneMsg struct {
	res *corpus.Result
	err error
}

// convertModel is the bubbletea model for batch conversion progress.
type convertModel struct {
	progress progress.Model
	theme    Theme
	last     corpus.Progress
	skipped  int
	done     bool
	quitting bool
	err      error
}

func newConvertModel() convertModel {
	prog := progress.New(
		progress.WithDefaultBlend(),
		progress.WithWidth(40),
	)
	return convertModel{progress: prog, theme: defaultTheme}
}

// Init returns the initial command.
func (m convertModel) Init() tea.Cmd {
	return m.progress.Init()
}

// Update handles messages and returns the updated model.
func (m convertModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		}

	case convertProgressMsg:
		m.last = corpus.Progress(msg)
		if msg.Err != nil {
			m.skipped++
		}
		return m, nil

	case convertDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit

	case progress.FrameMsg:
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the progress display.
func (m convertModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

func (m convertModel) renderContent() string {
	if m.done || m.quitting {
		return m.finalView()
	}
	if m.last.Total == 0 {
		return m.theme.statusStyle().Render("Scanning exports...") + "\n"
	}

	pct := float64(m.last.Done) / float64(m.last.Total)
	status := m.theme.statusStyle().Render("[converting]")
	counts := fmt.Sprintf("%d/%d files", m.last.Done, m.last.Total)
	line := fmt.Sprintf("%s %s %s\n", status, m.progress.ViewAs(pct), counts)
	if m.last.File != "" {
		line += m.theme.hintStyle().Render(m.last.File) + "\n"
	}
	return line
}

func (m convertModel) finalView() string {
	if m.quitting {
		return m.theme.hintStyle().Render("\nConversion cancelled.\n")
	}
	if m.err != nil {
		return m.theme.errorStyle().Render(fmt.Sprintf("\n✗ Conversion failed: %s\n", m.err))
	}
	return m.theme.completedStyle().Render(fmt.Sprintf("✓ Processed %d files", m.last.Total)) + "\n"
}

// RunConvertProgress runs a conversion batch behind an interactive progress bar.
// Ctrl+C cancels the batch; files converted so far are kept.
func RunConvertProgress(ctx context.Context, dir string, opts corpus.Options) (*corpus.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newConvertModel())
	opts.Progress = func(pr corpus.Progress) {
		p.Send(convertProgressMsg(pr))
	}

	results := make(chan convertDoneMsg, 1)
	go func() {
		res, err := corpus.Convert(ctx, dir, opts)
		done := convertDoneMsg{res: res, err: err}
		results <- done
		p.Send(done)
	}()

	_, uiErr := p.Run()
	// Stops the batch when the UI exits first.
	cancel()
	done := <-results

	if uiErr != nil {
		return done.res, fmt.Errorf("progress UI error: %w", uiErr)
	}
	return done.res, done.err
}
