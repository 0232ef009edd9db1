package training

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	prefsdto "tdrill/internal/modules/prefs/dto"
	sessiondto "tdrill/internal/modules/session/dto"
	apperrors "tdrill/internal/platform/errors"
	"tdrill/internal/ui/theme"
)

// PollInterval is how often the view refreshes the engine snapshot.
const PollInterval = 200 * time.Millisecond

// ─── ports ───────────────────────────────────────────────────────────────────

type Session interface {
	Snapshot() sessiondto.Snapshot
	SubmitResponse(response string) error
	AcknowledgeFeedback()
	NotifyMediaPlaybackEnded()
	Stop(ctx context.Context)
	PeekNextItem() (sessiondto.MediaItemOutput, bool)
	ResolveURL(ctx context.Context, item sessiondto.MediaItemOutput) (string, error)
}

type Port interface {
	Start(ctx context.Context, includeVideos, includePhotos bool, durationMinutes int, onComplete func()) (Session, error)
}

type Opener interface {
	Open(ctx context.Context, location string) (string, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type startedMsg struct {
	gen     int
	session Session
	done    <-chan struct{}
	release func()
	err     error
}

type pollMsg struct{ gen int }

type doneMsg struct{ gen int }

type resolvedMsg struct {
	gen  int
	draw int
	url  string
	err  error
}

type openedMsg struct {
	target string
	err    error
}

// FinishedMsg reports that a run ended, either completed or stopped.
type FinishedMsg struct {
	Stopped bool
	Total   int
	Correct int
}

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port   Port
	opener Opener
	labels prefsdto.LabelsOutput

	session Session
	release func()
	gen     int
	snap    sessiondto.Snapshot
	current string
	drawn   int
	url     string

	autoOpen bool
	notice   string
	width    int
	height   int
}

func New(port Port, opener Opener) Model {
	return Model{
		port:     port,
		opener:   opener,
		autoOpen: opener != nil,
		labels:   prefsdto.LabelsOutput{Threat: "Threat", NonThreat: "Non-Threat"},
		notice:   "start a session from the Setup tab",
	}
}

func (m Model) Init() tea.Cmd { return nil }

// Active reports whether a run is in progress.
func (m Model) Active() bool { return m.session != nil }

func (m *Model) SetLabels(labels prefsdto.LabelsOutput) {
	if labels.Threat != "" && labels.NonThreat != "" {
		m.labels = labels
	}
}

// Begin starts a new run. Any run still in progress is stopped first.
func (m *Model) Begin(includeVideos, includePhotos bool, minutes int) tea.Cmd {
	m.Shutdown()
	m.gen++
	m.notice = "starting…"
	gen := m.gen
	port := m.port
	return func() tea.Msg {
		if port == nil {
			return startedMsg{gen: gen, err: errors.New("session engine not configured")}
		}
		done := make(chan struct{})
		var once sync.Once
		release := func() { once.Do(func() { close(done) }) }
		s, err := port.Start(context.Background(), includeVideos, includePhotos, minutes, release)
		return startedMsg{gen: gen, session: s, done: done, release: release, err: err}
	}
}

// Shutdown stops the current run, if any.
func (m *Model) Shutdown() {
	if m.session == nil {
		return
	}
	m.session.Stop(context.Background())
	m.clear()
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case startedMsg:
		if msg.gen != m.gen {
			if msg.session != nil {
				msg.session.Stop(context.Background())
			}
			return m, nil
		}
		if msg.err != nil {
			if errors.Is(msg.err, apperrors.ErrNoEligibleMedia) {
				m.notice = "no eligible media: import or include some media first"
			} else {
				m.notice = "start failed: " + msg.err.Error()
			}
			return m, nil
		}
		m.session = msg.session
		m.release = msg.release
		m.notice = ""
		done := msg.done
		gen := msg.gen
		wait := func() tea.Msg {
			<-done
			return doneMsg{gen: gen}
		}
		return m, tea.Batch(m.refresh(), m.poll(), wait)

	case pollMsg:
		if msg.gen != m.gen || m.session == nil {
			return m, nil
		}
		return m, tea.Batch(m.refresh(), m.poll())

	case doneMsg:
		if msg.gen != m.gen || m.session == nil {
			return m, nil
		}
		m.snap = m.session.Snapshot()
		finished := FinishedMsg{Total: m.snap.TotalResponses, Correct: m.snap.CorrectResponses}
		m.clear()
		m.notice = fmt.Sprintf("session complete: %d/%d correct", finished.Correct, finished.Total)
		return m, func() tea.Msg { return finished }

	case resolvedMsg:
		if msg.gen != m.gen || msg.draw != m.drawn {
			return m, nil
		}
		if msg.err != nil {
			m.notice = "resolve: " + msg.err.Error()
			return m, nil
		}
		m.url = msg.url

	case openedMsg:
		if msg.err != nil {
			m.notice = "open: " + msg.err.Error()
		}

	case tea.KeyMsg:
		if m.session == nil {
			return m, nil
		}
		switch msg.String() {
		case "t":
			m.respond(sessiondto.ResponseTap)
		case "s":
			m.respond(sessiondto.ResponseSwipe)
		case "e":
			m.session.NotifyMediaPlaybackEnded()
		case "enter", " ":
			m.session.AcknowledgeFeedback()
		case "o":
			return m, m.openCmd(m.current)
		case "a":
			m.autoOpen = !m.autoOpen && m.opener != nil
			return m, nil
		case "esc":
			m.session.Stop(context.Background())
			m.snap = m.session.Snapshot()
			finished := FinishedMsg{Stopped: true, Total: m.snap.TotalResponses, Correct: m.snap.CorrectResponses}
			m.clear()
			m.notice = fmt.Sprintf("session stopped: %d/%d correct", finished.Correct, finished.Total)
			return m, func() tea.Msg { return finished }
		default:
			return m, nil
		}
		return m, m.refresh()
	}
	return m, nil
}

func (m Model) View() string {
	if m.session == nil {
		body := theme.Title.Render("Train") + "\n\n" + theme.Muted.Render(m.notice)
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body)
	}
	s := m.snap

	header := fmt.Sprintf("%s   %s %d/%d",
		theme.Hot.Render(clockText(s.TimeRemainingSeconds)),
		theme.Muted.Render("score"), s.CorrectResponses, s.TotalResponses)

	var item string
	switch {
	case s.Current == nil:
		item = theme.Muted.Render("waiting for the next item…")
	default:
		item = theme.Title.Render(s.Current.Kind) + "\n" + path.Base(s.Current.Location)
		if m.url != "" {
			item += "\n" + theme.Muted.Render(m.url)
		}
	}
	banner := theme.Banner.Width(min(m.width-4, 72)).Render(item)

	var sb strings.Builder
	sb.WriteString(header + "\n\n" + banner + "\n\n")
	if s.ShowFeedback && s.LastResult != nil {
		sb.WriteString(m.renderResult(*s.LastResult) + "\n\n")
	}
	if s.IsSessionComplete {
		sb.WriteString(theme.Hot.Render("Time's up!") + "  " + theme.Muted.Render("enter to finish") + "\n")
	} else {
		sb.WriteString(m.renderHints(s) + "\n")
	}
	if m.notice != "" {
		sb.WriteString("\n" + theme.Warn.Render(m.notice))
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, sb.String())
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m *Model) clear() {
	if m.release != nil {
		m.release()
	}
	m.session = nil
	m.release = nil
	m.current = ""
	m.drawn = 0
	m.url = ""
	m.gen++
}

func (m *Model) respond(response string) {
	if err := m.session.SubmitResponse(response); err != nil {
		m.notice = err.Error()
	}
}

// refresh pulls a snapshot and, when a new draw is showing, resolves its URL,
// warms the next item and optionally opens the current one. A draw that
// repeats the previous location is still a new presentation.
func (m *Model) refresh() tea.Cmd {
	m.snap = m.session.Snapshot()
	if m.snap.Current == nil || m.snap.Draw == m.drawn {
		return nil
	}
	item := *m.snap.Current
	m.current = item.Location
	m.drawn = m.snap.Draw
	m.url = ""
	m.notice = ""

	session := m.session
	gen, draw := m.gen, m.drawn
	cmds := []tea.Cmd{func() tea.Msg {
		url, err := session.ResolveURL(context.Background(), item)
		return resolvedMsg{gen: gen, draw: draw, url: url, err: err}
	}}
	if next, ok := session.PeekNextItem(); ok && next.Location != item.Location {
		cmds = append(cmds, func() tea.Msg {
			// Materializes user media ahead of time; the result is not needed.
			_, _ = session.ResolveURL(context.Background(), next)
			return nil
		})
	}
	if m.autoOpen {
		cmds = append(cmds, m.openCmd(item.Location))
	}
	return tea.Batch(cmds...)
}

func (m Model) poll() tea.Cmd {
	gen := m.gen
	return tea.Tick(PollInterval, func(time.Time) tea.Msg { return pollMsg{gen: gen} })
}

func (m Model) openCmd(location string) tea.Cmd {
	if m.opener == nil || location == "" {
		return nil
	}
	opener := m.opener
	return func() tea.Msg {
		target, err := opener.Open(context.Background(), location)
		return openedMsg{target: target, err: err}
	}
}

func (m Model) labelFor(class string) string {
	if class == "THREAT" {
		return m.labels.Threat
	}
	return m.labels.NonThreat
}

func (m Model) renderResult(r sessiondto.ResultOutput) string {
	verdict := theme.Bad.Render("✗ Incorrect")
	if r.IsCorrect {
		verdict = theme.Good.Render("✓ Correct")
	}
	asserted := "THREAT"
	if r.Response == sessiondto.ResponseSwipe {
		asserted = "NON_THREAT"
	}
	line := fmt.Sprintf("%s   you: %s   actual: %s", verdict, m.labelFor(asserted), m.labelFor(r.Actual))
	if r.ReactionTimeMs != nil {
		line += theme.Muted.Render(fmt.Sprintf("   %d ms", *r.ReactionTimeMs))
	}
	return line + "\n" + theme.Muted.Render("enter to continue")
}

func (m Model) renderHints(s sessiondto.Snapshot) string {
	hints := []string{
		"t " + m.labels.Threat,
		"s " + m.labels.NonThreat,
	}
	if s.Current != nil && s.Current.Kind == "VIDEO" {
		hints = append(hints, "e video ended")
	}
	hints = append(hints, "o open")
	if m.autoOpen {
		hints = append(hints, "a auto-open on")
	} else {
		hints = append(hints, "a auto-open off")
	}
	hints = append(hints, "esc stop")
	return theme.Muted.Render(strings.Join(hints, "  "))
}

func clockText(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
