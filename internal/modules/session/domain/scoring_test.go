package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tdrill/internal/modules/session/domain"
)

func TestIsCorrect(t *testing.T) {
	t.Parallel()
	threat := domain.MediaItem{Location: "/photos/threat/a.jpg", Kind: domain.KindPhoto, Class: domain.Threat}
	safe := domain.MediaItem{Location: "/photos/non_threat/b.jpg", Kind: domain.KindPhoto, Class: domain.NonThreat}

	assert.True(t, domain.IsCorrect(threat, domain.Tap))
	assert.False(t, domain.IsCorrect(threat, domain.Swipe))
	assert.True(t, domain.IsCorrect(safe, domain.Swipe))
	assert.False(t, domain.IsCorrect(safe, domain.Tap))
}

func TestTimesReaction(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name    string
		item    domain.MediaItem
		resp    domain.UserResponse
		correct bool
		want    bool
	}{
		{"tap threat photo", domain.MediaItem{Kind: domain.KindPhoto, Class: domain.Threat}, domain.Tap, true, true},
		{"tap threat video", domain.MediaItem{Kind: domain.KindVideo, Class: domain.Threat}, domain.Tap, true, true},
		{"swipe safe photo", domain.MediaItem{Kind: domain.KindPhoto, Class: domain.NonThreat}, domain.Swipe, true, true},
		{"swipe safe video", domain.MediaItem{Kind: domain.KindVideo, Class: domain.NonThreat}, domain.Swipe, true, false},
		{"wrong tap", domain.MediaItem{Kind: domain.KindPhoto, Class: domain.NonThreat}, domain.Tap, false, false},
		{"wrong swipe", domain.MediaItem{Kind: domain.KindVideo, Class: domain.Threat}, domain.Swipe, false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, domain.TimesReaction(tc.item, tc.resp, tc.correct))
		})
	}
}

func TestReactionTime(t *testing.T) {
	t.Parallel()
	drawn := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	got := domain.ReactionTime(drawn, drawn.Add(450*time.Millisecond))
	require.NotNil(t, got)
	assert.EqualValues(t, 450, *got)

	assert.Nil(t, domain.ReactionTime(drawn, drawn))
	assert.Nil(t, domain.ReactionTime(drawn, drawn.Add(-time.Second)))
}

func TestAverageReactionTime(t *testing.T) {
	t.Parallel()
	assert.Nil(t, domain.AverageReactionTime(nil))

	avg := domain.AverageReactionTime([]int64{400, 600})
	require.NotNil(t, avg)
	assert.EqualValues(t, 500, *avg)

	rounded := domain.AverageReactionTime([]int64{100, 101})
	require.NotNil(t, rounded)
	assert.EqualValues(t, 101, *rounded)
}

func TestParseUserResponse(t *testing.T) {
	t.Parallel()
	r, err := domain.ParseUserResponse(" tap ")
	require.NoError(t, err)
	assert.Equal(t, domain.Tap, r)
	assert.Equal(t, domain.Threat, r.Asserts())

	r, err = domain.ParseUserResponse("SWIPE")
	require.NoError(t, err)
	assert.Equal(t, domain.NonThreat, r.Asserts())

	_, err = domain.ParseUserResponse("hold")
	assert.Error(t, err)
}
