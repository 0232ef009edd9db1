package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	statsdto "tdrill/internal/modules/stats/dto"
	"tdrill/internal/ui/theme"
)

const recentLimit = 10

// ─── port ────────────────────────────────────────────────────────────────────

type Port interface {
	Load(ctx context.Context, limit int) ([]statsdto.SessionOutput, statsdto.SummaryOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type LoadedMsg struct {
	Recent  []statsdto.SessionOutput
	Summary statsdto.SummaryOutput
	Err     error
}

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port     Port
	viewport viewport.Model
	renderer *glamour.TermRenderer
	markdown string
	width    int
	height   int
}

func New(port Port) Model {
	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().
		Background(theme.Mantle).
		Foreground(theme.Text)

	r, _ := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(0),
	)
	return Model{port: port, viewport: vp, renderer: r}
}

func (m Model) Init() tea.Cmd { return m.Reload() }

func (m Model) Reload() tea.Cmd {
	if m.port == nil {
		return nil
	}
	port := m.port
	return func() tea.Msg {
		recent, summary, err := port.Load(context.Background(), recentLimit)
		return LoadedMsg{Recent: recent, Summary: summary, Err: err}
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height
		if r, err := glamour.NewTermRenderer(
			glamour.WithStylePath("dark"),
			glamour.WithWordWrap(max(m.width-4, 20)),
		); err == nil {
			m.renderer = r
		}
		m.render()
		return m, nil

	case LoadedMsg:
		if msg.Err != nil {
			m.markdown = "# History\n\nFailed to load history: " + msg.Err.Error() + "\n"
		} else {
			m.markdown = Markdown(msg.Recent, msg.Summary)
		}
		m.render()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "R" {
			return m, m.Reload()
		}
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.markdown == "" {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			theme.Muted.Render("Loading history…"))
	}
	return m.viewport.View()
}

func (m *Model) render() {
	if m.markdown == "" {
		return
	}
	out := m.markdown
	if m.renderer != nil {
		if rendered, err := m.renderer.Render(m.markdown); err == nil {
			out = rendered
		}
	}
	m.viewport.SetContent(out)
}

// Markdown renders the summary and recent sessions as a markdown document.
func Markdown(recent []statsdto.SessionOutput, summary statsdto.SummaryOutput) string {
	var sb strings.Builder
	sb.WriteString("# History\n\n")
	if summary.Sessions == 0 {
		sb.WriteString("_No sessions recorded yet._\n")
		return sb.String()
	}

	sb.WriteString("## Summary\n\n")
	fmt.Fprintf(&sb, "- **Sessions:** %d\n", summary.Sessions)
	fmt.Fprintf(&sb, "- **Responses:** %d (%d correct)\n", summary.TotalResponses, summary.CorrectResponses)
	fmt.Fprintf(&sb, "- **Accuracy:** %s\n", percent(summary.Score))
	fmt.Fprintf(&sb, "- **Best session:** %s\n", percent(summary.BestScore))
	fmt.Fprintf(&sb, "- **Avg reaction:** %s\n", reaction(summary.AverageReactionMs))
	if !summary.LastPlayed.IsZero() {
		fmt.Fprintf(&sb, "- **Last played:** %s\n", summary.LastPlayed.Local().Format(time.DateTime))
	}

	sb.WriteString("\n## Recent sessions\n\n")
	sb.WriteString("| # | When | Correct | Accuracy | Avg reaction |\n")
	sb.WriteString("|---|------|---------|----------|--------------|\n")
	for _, s := range recent {
		fmt.Fprintf(&sb, "| %d | %s | %d/%d | %s | %s |\n",
			s.ID,
			s.Timestamp.Local().Format(time.DateTime),
			s.CorrectResponses, s.TotalResponses,
			percent(s.Score),
			reaction(s.AverageReactionMs))
	}
	sb.WriteString("\n_R to reload_\n")
	return sb.String()
}

func percent(score float64) string {
	return fmt.Sprintf("%.0f%%", score*100)
}

func reaction(ms *int64) string {
	if ms == nil {
		return "–"
	}
	return fmt.Sprintf("%d ms", *ms)
}
