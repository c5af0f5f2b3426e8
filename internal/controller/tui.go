package controller

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	m "treedelta.dev/pkg/treedelta/internal/model"
)

// TUI implements UI for terminals. Output is buffered during a run and shown
// at Wait, in a scrollable pager when it does not fit the screen.
type TUI struct {
	cmd    *cobra.Command
	title  string
	buffer bytes.Buffer
	r      *renderer
}

// NewTUI creates a new TUI.
func NewTUI(cmd *cobra.Command) *TUI {
	t := &TUI{cmd: cmd, title: cmd.Root().Name()}
	t.r = newRenderer(&t.buffer, newStartConfig([]StartOption{WithColor(true)}))

	return t
}

// Start applies the display options of a run. Colors default to on.
func (p *TUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.buffer.Reset()
	p.r = newRenderer(&p.buffer, newStartConfig(append([]StartOption{WithColor(true)}, options...)))

	return nil
}

// Close writes out anything Wait has not shown.
func (p *TUI) Close(_ context.Context) {
	if p.buffer.Len() == 0 {
		return
	}

	_, _ = p.buffer.WriteTo(p.out())
}

// Wait shows the buffered output and blocks until the pager is closed.
func (p *TUI) Wait(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}

	content := p.buffer.String()
	p.buffer.Reset()

	if err := p.show(content); err != nil {
		_, _ = fmt.Fprint(p.out(), content)
	}
}

// DisplayTree renders one tree.
func (p *TUI) DisplayTree(ctx context.Context, name string, view m.TreeView) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.title = name

	return p.r.displayTree(view)
}

// DisplayMapping renders the matched node pairs of a report.
func (p *TUI) DisplayMapping(ctx context.Context, report m.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.title = report.Name

	return p.r.displayMapping(report)
}

// DisplayReport renders one report.
func (p *TUI) DisplayReport(ctx context.Context, report m.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return p.r.displayReport(report)
}

// DisplaySummary renders the summary table.
func (p *TUI) DisplaySummary(ctx context.Context, reports []m.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.title = fmt.Sprintf("%d reports", len(reports))

	return p.r.displaySummary(reports)
}

func (p *TUI) out() io.Writer {
	return p.cmd.OutOrStdout()
}

func (p *TUI) show(content string) error {
	out := p.out()

	model := newPagerModel(p.title, content)

	if f, ok := out.(*os.File); ok {
		width, height, err := term.GetSize(f.Fd())
		if err == nil {
			model = model.resize(width, height)
		}
	}

	// Structured output is never paged.
	if p.r.structured() || !model.needsPagination() {
		_, err := fmt.Fprint(out, content)
		return err
	}

	program := tea.NewProgram(model, tea.WithOutput(out), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return err
	}

	return nil
}

var (
	pagerTitleStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1).
			Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62"))
	pagerHelpStyle = lipgloss.NewStyle().Faint(true)
)

// pagerModel scrolls a rendered run inside a viewport.
type pagerModel struct {
	title    string
	content  string
	lines    int
	height   int
	viewport viewport.Model
}

func newPagerModel(title, content string) pagerModel {
	vp := viewport.New(0, 0)
	vp.SetContent(content)

	return pagerModel{
		title:    title,
		content:  content,
		lines:    strings.Count(content, "\n"),
		viewport: vp,
	}
}

// chrome is the number of lines taken by the header and the footer.
const chrome = 2

func (pm pagerModel) resize(width, height int) pagerModel {
	pm.height = height
	pm.viewport.Width = width
	pm.viewport.Height = max(height-chrome, 1)
	pm.viewport.SetContent(pm.content)

	return pm
}

// needsPagination reports whether the content is taller than the screen.
func (pm pagerModel) needsPagination() bool {
	return pm.height > 0 && pm.lines > pm.height
}

func (pm pagerModel) Init() tea.Cmd {
	return nil
}

func (pm pagerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return pm.resize(msg.Width, msg.Height), nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return pm, tea.Quit
		case "g", "home":
			pm.viewport.GotoTop()
			return pm, nil
		case "G", "end":
			pm.viewport.GotoBottom()
			return pm, nil
		}
	}

	var cmd tea.Cmd

	pm.viewport, cmd = pm.viewport.Update(msg)

	return pm, cmd
}

func (pm pagerModel) View() string {
	header := pagerTitleStyle.Render(pm.title)
	footer := pagerHelpStyle.Render(fmt.Sprintf("%3.f%% | ↑/k ↓/j pgup/pgdn g/G q: quit", pm.viewport.ScrollPercent()*100))

	return lipgloss.JoinVertical(lipgloss.Left, header, pm.viewport.View(), footer)
}
