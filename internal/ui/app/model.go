package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	mediadto "tdrill/internal/modules/media/dto"
	prefsdto "tdrill/internal/modules/prefs/dto"
	sessionin "tdrill/internal/modules/session/port/in"
	statsdto "tdrill/internal/modules/stats/dto"
	"tdrill/internal/ui/components"
	"tdrill/internal/ui/theme"
	galleryview "tdrill/internal/ui/views/gallery"
	historyview "tdrill/internal/ui/views/history"
	setupview "tdrill/internal/ui/views/setup"
	trainingview "tdrill/internal/ui/views/training"
)

// ─── ports ───────────────────────────────────────────────────────────────────
// Each port is the minimal interface that this orchestration layer requires.
// Sub-view ports are defined in their own packages and narrowed further.

type sessionPort interface {
	Start(ctx context.Context, includeVideos, includePhotos bool, durationMinutes int, onComplete func()) (sessionin.Session, error)
}

type mediaPort interface {
	Gallery(ctx context.Context, input mediadto.GalleryInput) (mediadto.GalleryOutput, error)
	ToggleExcluded(ctx context.Context, entry mediadto.EntryOutput) (mediadto.EntryOutput, error)
	Reclassify(ctx context.Context, entry mediadto.EntryOutput) (mediadto.EntryOutput, error)
	Reset(ctx context.Context, entry mediadto.EntryOutput) error
	Open(ctx context.Context, location string) (string, error)
}

type statsPort interface {
	Load(ctx context.Context, limit int) ([]statsdto.SessionOutput, statsdto.SummaryOutput, error)
	Clear(ctx context.Context) (int64, error)
}

type prefsPort interface {
	Load(ctx context.Context) (prefsdto.PrefsOutput, error)
	Remember(ctx context.Context, videos, photos bool, minutes int) (prefsdto.SessionDefaults, error)
}

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabSetup tabID = iota
	tabTrain
	tabGallery
	tabHistory
	tabCount
)

var tabLabels = [tabCount]string{
	"Setup", "Train", "Gallery", "History",
}

// ─── async messages ───────────────────────────────────────────────────────────

type rememberedMsg struct{ err error }

type historyClearedMsg struct {
	n   int64
	err error
}

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Tab      key.Binding
	Help     key.Binding
	Palette  key.Binding
	Quit     key.Binding
	Tap      key.Binding
	Swipe    key.Binding
	Ended    key.Binding
	Ack      key.Binding
	Stop     key.Binding
	Exclude  key.Binding
	Reclass  key.Binding
	Reset    key.Binding
	OpenItem key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette:  key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:     key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		Tap:      key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "threat (tap)")),
		Swipe:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "non-threat (swipe)")),
		Ended:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "video ended")),
		Ack:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "continue")),
		Stop:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "stop session")),
		Exclude:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "toggle exclude")),
		Reclass:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "reclassify")),
		Reset:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset override")),
		OpenItem: key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open in viewer")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tap, k.Swipe, k.Ended, k.Ack, k.Stop},
		{k.Exclude, k.Reclass, k.Reset, k.OpenItem},
		{k.Tab, k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It owns tab routing, the global help
// overlay and the command palette. Rendering is delegated to sub-views.
type Model struct {
	stats statsPort
	prefs prefsPort

	setupView   setupview.Model
	trainView   trainingview.Model
	galleryView galleryview.Model
	historyView historyview.Model

	activeTab tabID
	keys      keyMap
	help      help.Model
	showHelp  bool
	palette   components.Palette
	status    string
	width     int
	height    int
}

// ─── constructor ─────────────────────────────────────────────────────────────

func NewModel(session sessionPort, media mediaPort, stats statsPort, prefs prefsPort) Model {
	var (
		setupPort   setupview.Port
		trainPort   trainingview.Port
		opener      trainingview.Opener
		galleryPort galleryview.Port
		historyPort historyview.Port
	)
	if prefs != nil {
		setupPort = prefs
	}
	if session != nil {
		trainPort = sessionPortBridge{p: session}
	}
	if media != nil {
		opener = media
		galleryPort = media
	}
	if stats != nil {
		historyPort = stats
	}
	return Model{
		stats:       stats,
		prefs:       prefs,
		setupView:   setupview.New(setupPort),
		trainView:   trainingview.New(trainPort, opener),
		galleryView: galleryview.New(galleryPort),
		historyView: historyview.New(historyPort),
		activeTab:   tabSetup,
		keys:        defaultKeys(),
		help:        help.New(),
		palette:     components.NewPalette(),
		status:      "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.setupView.Init(),
		m.trainView.Init(),
		m.galleryView.Init(),
		m.historyView.Init(),
	)
}

// Shutdown stops a run still in progress. It covers exits that bypass Update,
// such as a cancelled program context.
func (m Model) Shutdown() {
	m.trainView.Shutdown()
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// The palette intercepts all input while open.
	if m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		if _, isKey := msg.(tea.KeyMsg); isKey {
			return m, cmd
		}
		cmds = append(cmds, cmd)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		return m, m.propagateSize()

	case setupview.LoadedMsg:
		var cmd tea.Cmd
		m.setupView, cmd = m.setupView.Update(msg)
		m.applyLabels(m.setupView.Labels())
		return m, cmd

	case setupview.StartMsg:
		m.activeTab = tabTrain
		m.status = "starting session"
		return m, tea.Batch(
			m.trainView.Begin(msg.IncludeVideos, msg.IncludePhotos, msg.DurationMinutes),
			m.rememberCmd(msg),
		)

	case rememberedMsg:
		if msg.err != nil {
			m.status = "save defaults: " + msg.err.Error()
		}
		return m, nil

	case trainingview.FinishedMsg:
		if msg.Stopped {
			m.status = fmt.Sprintf("stopped: %d/%d correct", msg.Correct, msg.Total)
		} else {
			m.status = fmt.Sprintf("complete: %d/%d correct", msg.Correct, msg.Total)
		}
		return m, m.historyView.Reload()

	case historyClearedMsg:
		if msg.err != nil {
			m.status = "clear history: " + msg.err.Error()
			return m, nil
		}
		m.status = fmt.Sprintf("cleared %d sessions", msg.n)
		return m, m.historyView.Reload()

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"
		return m, nil

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}

		// Yield to the gallery while its search filter is active.
		if m.activeTab == tabGallery && m.galleryView.Filtering() {
			var cmd tea.Cmd
			m.galleryView, cmd = m.galleryView.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "ctrl+c", "q":
			m.trainView.Shutdown()
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
			return m, nil
		case "?":
			m.showHelp = !m.showHelp
			return m, nil
		case ":":
			return m, m.palette.Open()
		}

		// Keys go to the active tab only.
		var cmd tea.Cmd
		switch m.activeTab {
		case tabSetup:
			m.setupView, cmd = m.setupView.Update(msg)
		case tabTrain:
			m.trainView, cmd = m.trainView.Update(msg)
		case tabGallery:
			m.galleryView, cmd = m.galleryView.Update(msg)
		case tabHistory:
			m.historyView, cmd = m.historyView.Update(msg)
		}
		return m, cmd
	}

	// Everything else is async traffic; each view ignores what it does not own.
	var cmd tea.Cmd
	m.setupView, cmd = m.setupView.Update(msg)
	cmds = append(cmds, cmd)
	m.trainView, cmd = m.trainView.Update(msg)
	cmds = append(cmds, cmd)
	m.galleryView, cmd = m.galleryView.Update(msg)
	cmds = append(cmds, cmd)
	m.historyView, cmd = m.historyView.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()
	contentH := m.height - lipgloss.Height(tabBar) - lipgloss.Height(statusBar)
	if contentH < 1 {
		contentH = 1
	}

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.palette.View())
	default:
		content = m.activeView()
	}

	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) activeView() string {
	switch m.activeTab {
	case tabSetup:
		return m.setupView.View()
	case tabTrain:
		return m.trainView.View()
	case tabGallery:
		return m.galleryView.View()
	case tabHistory:
		return m.historyView.View()
	}
	return ""
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		label := tabLabels[i]
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(" " + label + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + label + " ")
		}
	}
	sep := theme.Muted.Render(" │ ")
	bar := "tdrill  " + strings.Join(parts, sep)
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	if m.trainView.Active() {
		left = theme.Hot.Render("● training") + "  " + left
	}
	right := theme.Muted.Render("?:help  tab:switch  :::palette  q:quit")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ────────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	if strings.TrimSpace(input) == "" {
		return m, nil
	}
	parts := strings.Fields(input)

	switch parts[0] {
	case "session:start":
		m.activeTab = tabSetup
		return m, m.setupView.Submit()

	case "session:stop":
		if !m.trainView.Active() {
			m.status = "no session running"
			return m, nil
		}
		m.activeTab = tabTrain
		var cmd tea.Cmd
		m.trainView, cmd = m.trainView.Update(tea.KeyMsg{Type: tea.KeyEsc})
		return m, cmd

	case "media:reload":
		m.activeTab = tabGallery
		return m, m.galleryView.Reload()

	case "media:exclude", "media:reclassify", "media:reset", "media:open":
		keys := map[string]string{
			"media:exclude":    "x",
			"media:reclassify": "c",
			"media:reset":      "r",
			"media:open":       "o",
		}
		if _, ok := m.galleryView.Selected(); !ok {
			m.status = "no media selected"
			return m, nil
		}
		m.activeTab = tabGallery
		var cmd tea.Cmd
		m.galleryView, cmd = m.galleryView.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(keys[parts[0]])})
		return m, cmd

	case "history:reload":
		m.activeTab = tabHistory
		return m, m.historyView.Reload()

	case "history:clear":
		if len(parts) < 2 || parts[1] != "yes" {
			m.status = "usage: history:clear yes"
			return m, nil
		}
		m.activeTab = tabHistory
		return m, m.clearHistoryCmd()

	case "prefs:reload":
		return m, m.setupView.Init()

	default:
		m.status = "unknown command: " + parts[0]
	}
	return m, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

func (m *Model) applyLabels(labels prefsdto.LabelsOutput) {
	m.trainView.SetLabels(labels)
	m.galleryView.SetLabels(labels)
}

func (m *Model) propagateSize() tea.Cmd {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.setupView, cmd = m.setupView.Update(sz)
	cmds = append(cmds, cmd)
	m.trainView, cmd = m.trainView.Update(sz)
	cmds = append(cmds, cmd)
	m.galleryView, cmd = m.galleryView.Update(sz)
	cmds = append(cmds, cmd)
	m.historyView, cmd = m.historyView.Update(sz)
	cmds = append(cmds, cmd)
	return tea.Batch(cmds...)
}

// ─── async commands ───────────────────────────────────────────────────────────

func (m Model) rememberCmd(start setupview.StartMsg) tea.Cmd {
	if m.prefs == nil {
		return nil
	}
	prefs := m.prefs
	return func() tea.Msg {
		_, err := prefs.Remember(context.Background(), start.IncludeVideos, start.IncludePhotos, start.DurationMinutes)
		return rememberedMsg{err: err}
	}
}

func (m Model) clearHistoryCmd() tea.Cmd {
	if m.stats == nil {
		return nil
	}
	stats := m.stats
	return func() tea.Msg {
		n, err := stats.Clear(context.Background())
		return historyClearedMsg{n: n, err: err}
	}
}

// ─── port bridges ─────────────────────────────────────────────────────────────
// A bridge narrows a module port to the interface a sub-view declares, keeping
// view packages free of knowledge about the wider port surface.

type sessionPortBridge struct{ p sessionPort }

func (b sessionPortBridge) Start(ctx context.Context, videos, photos bool, minutes int, onComplete func()) (trainingview.Session, error) {
	s, err := b.p.Start(ctx, videos, photos, minutes, onComplete)
	if err != nil {
		return nil, err
	}
	return s, nil
}
