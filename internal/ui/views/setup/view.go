package setup

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	prefsdto "tdrill/internal/modules/prefs/dto"
	"tdrill/internal/ui/theme"
)

const (
	minMinutes = 1
	maxMinutes = 30
)

// ─── port ────────────────────────────────────────────────────────────────────

type Port interface {
	Load(ctx context.Context) (prefsdto.PrefsOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type LoadedMsg struct {
	Prefs prefsdto.PrefsOutput
	Err   error
}

// StartMsg asks the root model to begin a session with the form values.
type StartMsg struct {
	IncludeVideos   bool
	IncludePhotos   bool
	DurationMinutes int
}

// ─── model ───────────────────────────────────────────────────────────────────

type field int

const (
	fieldVideos field = iota
	fieldPhotos
	fieldMinutes
	fieldStart
	fieldCount
)

type Model struct {
	port    Port
	videos  bool
	photos  bool
	minutes int
	labels  prefsdto.LabelsOutput
	focus   field
	notice  string
	width   int
	height  int
}

func New(port Port) Model {
	return Model{port: port, videos: true, photos: true, minutes: minMinutes, notice: "loading preferences…"}
}

func (m Model) Init() tea.Cmd {
	if m.port == nil {
		return nil
	}
	return func() tea.Msg {
		prefs, err := m.port.Load(context.Background())
		return LoadedMsg{Prefs: prefs, Err: err}
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case LoadedMsg:
		if msg.Err != nil {
			m.notice = "preferences: " + msg.Err.Error()
			return m, nil
		}
		m.apply(msg.Prefs)
		m.notice = ""

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			m.focus = (m.focus + fieldCount - 1) % fieldCount
		case "down", "j":
			m.focus = (m.focus + 1) % fieldCount
		case "left", "h", "-":
			if m.focus == fieldMinutes && m.minutes > minMinutes {
				m.minutes--
			}
		case "right", "l", "+":
			if m.focus == fieldMinutes && m.minutes < maxMinutes {
				m.minutes++
			}
		case " ", "x":
			switch m.focus {
			case fieldVideos:
				m.videos = !m.videos
			case fieldPhotos:
				m.photos = !m.photos
			}
		case "enter":
			if m.focus != fieldStart {
				m.focus = fieldStart
				return m, nil
			}
			return m, m.Submit()
		}
	}
	return m, nil
}

// Submit validates the form and emits a StartMsg.
func (m *Model) Submit() tea.Cmd {
	if !m.Valid() {
		m.notice = "select at least one media type"
		return nil
	}
	m.notice = ""
	msg := StartMsg{IncludeVideos: m.videos, IncludePhotos: m.photos, DurationMinutes: m.minutes}
	return func() tea.Msg { return msg }
}

func (m Model) Valid() bool {
	return (m.videos || m.photos) && m.minutes >= minMinutes && m.minutes <= maxMinutes
}

// Labels returns the active threat labels loaded with the preferences.
func (m Model) Labels() prefsdto.LabelsOutput { return m.labels }

// SetLabels replaces the labels after they change elsewhere.
func (m *Model) SetLabels(labels prefsdto.LabelsOutput) { m.labels = labels }

func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("New session") + "\n\n")
	sb.WriteString(m.row(fieldVideos, checkbox(m.videos)+" Videos") + "\n")
	sb.WriteString(m.row(fieldPhotos, checkbox(m.photos)+" Photos") + "\n")
	sb.WriteString(m.row(fieldMinutes, fmt.Sprintf("Duration  ‹ %2d min ›", m.minutes)) + "\n\n")
	start := "[ Start ]"
	if !m.Valid() {
		start = theme.Muted.Render(start)
	}
	sb.WriteString(m.row(fieldStart, start) + "\n\n")

	if m.labels.Threat != "" {
		sb.WriteString(theme.Muted.Render("labels: ") +
			theme.Bad.Render(m.labels.Threat) + theme.Muted.Render(" / ") + theme.Good.Render(m.labels.NonThreat) + "\n")
	}
	if m.notice != "" {
		sb.WriteString(theme.Warn.Render(m.notice) + "\n")
	}
	sb.WriteString("\n" + theme.Muted.Render("↑/↓ move  space toggle  ←/→ minutes  enter start"))

	pane := theme.PaneActive.Width(44).Render(sb.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, pane)
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m *Model) apply(prefs prefsdto.PrefsOutput) {
	m.labels = prefs.Labels
	m.videos = prefs.Session.IncludeVideos
	m.photos = prefs.Session.IncludePhotos
	m.minutes = prefs.Session.DurationMinutes
	if m.minutes < minMinutes || m.minutes > maxMinutes {
		m.minutes = minMinutes
	}
}

func (m Model) row(f field, text string) string {
	if f == m.focus {
		return theme.Hot.Render("› ") + text
	}
	return "  " + text
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}
