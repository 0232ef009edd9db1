package gallery

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	mediadto "tdrill/internal/modules/media/dto"
	prefsdto "tdrill/internal/modules/prefs/dto"
	"tdrill/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type Port interface {
	Gallery(ctx context.Context, input mediadto.GalleryInput) (mediadto.GalleryOutput, error)
	ToggleExcluded(ctx context.Context, entry mediadto.EntryOutput) (mediadto.EntryOutput, error)
	Reclassify(ctx context.Context, entry mediadto.EntryOutput) (mediadto.EntryOutput, error)
	Reset(ctx context.Context, entry mediadto.EntryOutput) error
	Open(ctx context.Context, location string) (string, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type LoadedMsg struct {
	Gallery mediadto.GalleryOutput
	Err     error
}

type changedMsg struct {
	entry mediadto.EntryOutput
	note  string
	err   error
}

type openedMsg struct {
	target string
	err    error
}

// ─── list item ───────────────────────────────────────────────────────────────

type entryItem struct {
	entry  mediadto.EntryOutput
	labels prefsdto.LabelsOutput
}

func (i entryItem) Title() string {
	name := i.entry.Name
	if i.entry.Excluded {
		name = "⊘ " + name
	}
	return name
}

func (i entryItem) Description() string {
	class := labelFor(i.labels, i.entry.Class)
	if i.entry.Class != i.entry.OriginalClass {
		class += " (was " + labelFor(i.labels, i.entry.OriginalClass) + ")"
	}
	return fmt.Sprintf("%s  %s  %s", strings.ToLower(i.entry.Kind), class, strings.ToLower(i.entry.Source))
}

func (i entryItem) FilterValue() string { return i.entry.Name + " " + i.entry.Location }

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port    Port
	list    list.Model
	spinner spinner.Model
	counts  mediadto.GalleryOutput
	labels  prefsdto.LabelsOutput
	loading bool
	notice  string
	width   int
	height  int
}

func New(port Port) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Media"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{
		port:    port,
		list:    l,
		spinner: sp,
		loading: true,
		labels:  prefsdto.LabelsOutput{Threat: "Threat", NonThreat: "Non-Threat"},
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.Reload(), m.spinner.Tick)
}

func (m *Model) SetLabels(labels prefsdto.LabelsOutput) {
	if labels.Threat == "" || labels.NonThreat == "" {
		return
	}
	m.labels = labels
	items := m.list.Items()
	for i, it := range items {
		if e, ok := it.(entryItem); ok {
			e.labels = labels
			items[i] = e
		}
	}
	m.list.SetItems(items)
}

// Reload fetches the full gallery again.
func (m Model) Reload() tea.Cmd {
	if m.port == nil {
		return nil
	}
	port := m.port
	return func() tea.Msg {
		out, err := port.Gallery(context.Background(), mediadto.GalleryInput{})
		return LoadedMsg{Gallery: out, Err: err}
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(m.width*6/10, m.height)

	case LoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.notice = "gallery: " + msg.Err.Error()
			return m, nil
		}
		m.counts = msg.Gallery
		items := make([]list.Item, len(msg.Gallery.Entries))
		for i, e := range msg.Gallery.Entries {
			items[i] = entryItem{entry: e, labels: m.labels}
		}
		cmds = append(cmds, m.list.SetItems(items))

	case changedMsg:
		if msg.err != nil {
			m.notice = msg.err.Error()
			return m, nil
		}
		m.notice = msg.note
		// Counts shift with every change; reload keeps them honest.
		return m, m.Reload()

	case openedMsg:
		if msg.err != nil {
			m.notice = "open: " + msg.err.Error()
		} else {
			m.notice = "opened " + msg.target
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if !m.Filtering() {
			if cmd, handled := m.handleKey(msg.String()); handled {
				return m, cmd
			}
		}
	}

	if !m.loading {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading media…")
	}
	listW := m.width * 6 / 10
	detailW := m.width - listW

	listPane := lipgloss.NewStyle().Width(listW).Height(m.height).Render(m.list.View())
	detailPane := theme.Pane.
		Width(max(detailW-4, 10)).
		Height(max(m.height-4, 1)).
		Render(m.renderDetail())
	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

// Filtering reports whether the list's search filter is currently active.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// Selected returns the highlighted entry, if any.
func (m Model) Selected() (mediadto.EntryOutput, bool) {
	if item, ok := m.list.SelectedItem().(entryItem); ok {
		return item.entry, true
	}
	return mediadto.EntryOutput{}, false
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m Model) handleKey(key string) (tea.Cmd, bool) {
	if key == "R" {
		return m.Reload(), true
	}
	entry, ok := m.Selected()
	if !ok || m.port == nil {
		return nil, false
	}
	port := m.port
	switch key {
	case "x":
		return func() tea.Msg {
			out, err := port.ToggleExcluded(context.Background(), entry)
			note := "included " + out.Name
			if out.Excluded {
				note = "excluded " + out.Name
			}
			return changedMsg{entry: out, note: note, err: err}
		}, true
	case "c":
		labels := m.labels
		return func() tea.Msg {
			out, err := port.Reclassify(context.Background(), entry)
			return changedMsg{entry: out, note: out.Name + " → " + labelFor(labels, out.Class), err: err}
		}, true
	case "r":
		return func() tea.Msg {
			err := port.Reset(context.Background(), entry)
			return changedMsg{entry: entry, note: "reset " + entry.Name, err: err}
		}, true
	case "enter", "o":
		return func() tea.Msg {
			target, err := port.Open(context.Background(), entry.Location)
			return openedMsg{target: target, err: err}
		}, true
	}
	return nil, false
}

func (m Model) renderDetail() string {
	c := m.counts
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Catalog") + "\n\n")
	sb.WriteString(fmt.Sprintf("%s%d\n", theme.Muted.Render("items:    "), c.Total))
	sb.WriteString(fmt.Sprintf("%s%d / %d\n", theme.Muted.Render("vid/pho:  "), c.Videos, c.Photos))
	sb.WriteString(fmt.Sprintf("%s%d\n", theme.Muted.Render(strings.ToLower(m.labels.Threat)+":   "), c.Threat))
	sb.WriteString(fmt.Sprintf("%s%d\n", theme.Muted.Render("excluded: "), c.Excluded))
	sb.WriteString(fmt.Sprintf("%s%d\n", theme.Muted.Render("imported: "), c.User))

	if e, ok := m.Selected(); ok {
		sb.WriteString("\n" + theme.Title.Render(e.Name) + "\n")
		sb.WriteString(theme.Muted.Render("location: ") + e.Location + "\n")
		sb.WriteString(theme.Muted.Render("class:    ") + labelFor(m.labels, e.Class) + "\n")
		if e.Overridden {
			sb.WriteString(theme.Warn.Render("override active") + "\n")
		}
	}
	if m.notice != "" {
		sb.WriteString("\n" + theme.Warn.Render(m.notice) + "\n")
	}
	sb.WriteString("\n" + theme.Muted.Render("x exclude  c reclassify  r reset  o open  R reload  / filter"))
	return sb.String()
}

func labelFor(labels prefsdto.LabelsOutput, class string) string {
	if class == "THREAT" {
		return labels.Threat
	}
	return labels.NonThreat
}
