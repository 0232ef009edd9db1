package setup

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	prefsdto "tdrill/internal/modules/prefs/dto"
)

func press(m Model, keys ...string) (Model, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "left":
			msg = tea.KeyMsg{Type: tea.KeyLeft}
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m, cmd = m.Update(msg)
	}
	return m, cmd
}

func TestFormSubmission(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		keys    []string
		want    *StartMsg
		minutes int
	}{
		{
			name:    "defaults start with both kinds",
			keys:    []string{"enter", "enter"},
			want:    &StartMsg{IncludeVideos: true, IncludePhotos: true, DurationMinutes: 1},
			minutes: 1,
		},
		{
			name:    "photos only for three minutes",
			keys:    []string{"x", "down", "down", "+", "+", "enter", "enter"},
			want:    &StartMsg{IncludePhotos: true, DurationMinutes: 3},
			minutes: 3,
		},
		{
			name:    "no media kind is rejected",
			keys:    []string{"x", "down", "x", "enter", "enter"},
			minutes: 1,
		},
		{
			name:    "minutes stop at the lower bound",
			keys:    []string{"down", "down", "left", "-"},
			minutes: 1,
		},
		{
			name:    "minutes only change on the duration row",
			keys:    []string{"right", "+"},
			minutes: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m, cmd := press(New(nil), tt.keys...)
			assert.Equal(t, tt.minutes, m.minutes)
			if tt.want == nil {
				assert.Nil(t, cmd)
				return
			}
			require.NotNil(t, cmd)
			assert.Equal(t, *tt.want, cmd())
		})
	}
}

func TestInvalidSubmitExplains(t *testing.T) {
	t.Parallel()
	m, cmd := press(New(nil), "x", "down", "x", "down", "down", "enter")
	assert.Nil(t, cmd)
	assert.False(t, m.Valid())
	assert.Equal(t, "select at least one media type", m.notice)
}

func TestMinutesStopAtUpperBound(t *testing.T) {
	t.Parallel()
	m, _ := press(New(nil), "down", "down")
	for range 40 {
		m, _ = press(m, "right")
	}
	assert.Equal(t, maxMinutes, m.minutes)
	assert.True(t, m.Valid())
}

func TestLoadedPreferencesFillTheForm(t *testing.T) {
	t.Parallel()
	labels := prefsdto.LabelsOutput{Preset: "SHOOT_NO_SHOOT", Threat: "Shoot", NonThreat: "No-Shoot"}
	m, _ := New(nil).Update(LoadedMsg{Prefs: prefsdto.PrefsOutput{
		Labels:  labels,
		Session: prefsdto.SessionDefaults{IncludeVideos: true, DurationMinutes: 12},
	}})
	assert.True(t, m.videos)
	assert.False(t, m.photos)
	assert.Equal(t, 12, m.minutes)
	assert.Equal(t, labels, m.Labels())
	assert.Empty(t, m.notice)

	m, _ = m.Update(LoadedMsg{Prefs: prefsdto.PrefsOutput{Session: prefsdto.SessionDefaults{IncludePhotos: true, DurationMinutes: 90}}})
	assert.Equal(t, minMinutes, m.minutes, "out of range duration falls back")
}
