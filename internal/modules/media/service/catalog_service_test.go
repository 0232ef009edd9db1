package service_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mediaout "tdrill/internal/modules/media/adapter/out"
	"tdrill/internal/modules/media/domain"
	"tdrill/internal/modules/media/service"
	"tdrill/internal/platform/clock"
	apperrors "tdrill/internal/platform/errors"
)

type seqID struct{ n int }

func (s *seqID) New() string {
	s.n++
	return fmt.Sprintf("id-%d", s.n)
}

type recordingLauncher struct{ opened []string }

func (l *recordingLauncher) Open(_ context.Context, target string) error {
	l.opened = append(l.opened, target)
	return nil
}

type fixture struct {
	root     string
	dataDir  string
	svc      *service.CatalogService
	launcher *recordingLauncher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	dataDir := t.TempDir()
	for _, rel := range []string{
		"videos/threat/v1.mp4",
		"videos/non_threat/v2.webm",
		"photos/threat/p1.jpg",
		"photos/non_threat/p2.png",
	} {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(rel), 0o644))
	}
	db, err := mediaout.OpenBolt(filepath.Join(dataDir, "media.bolt"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	now := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	clk := clock.Func(func() time.Time {
		now = now.Add(time.Second)
		return now
	})
	launcher := &recordingLauncher{}
	svc := service.NewCatalogService(
		clk,
		&seqID{},
		mediaout.NewYAMLManifestStore(filepath.Join(dataDir, "manifest.yaml")),
		mediaout.NewFSScanner(root),
		mediaout.NewBoltUserMediaStore(db),
		mediaout.NewBoltOverrideStore(db),
		mediaout.NewFileDisplayCache(filepath.Join(dataDir, "cache")),
		launcher,
		zerolog.Nop(),
	)
	return &fixture{root: root, dataDir: dataDir, svc: svc, launcher: launcher}
}

func locs(items []domain.Item) []string {
	out := make([]string, 0, len(items))
	for _, i := range items {
		out = append(out, i.Location)
	}
	return out
}

func TestEligibleFallsBackToLiveScan(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	items, err := f.svc.Eligible(ctx, true, true)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"/videos/threat/v1.mp4",
		"/videos/non_threat/v2.webm",
		"/photos/threat/p1.jpg",
		"/photos/non_threat/p2.png",
	}, locs(items))

	videos, err := f.svc.Eligible(ctx, true, false)
	require.NoError(t, err)
	assert.Len(t, videos, 2)
	none, err := f.svc.Eligible(ctx, false, false)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRescanPinsManifest(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	manifest, err := f.svc.Rescan(ctx)
	require.NoError(t, err)
	assert.Len(t, manifest.Items, 4)
	assert.Equal(t, f.root, manifest.Root)
	assert.FileExists(t, filepath.Join(f.dataDir, "manifest.yaml"))

	// Files added after the scan are not visible until the next scan.
	require.NoError(t, os.WriteFile(filepath.Join(f.root, "photos", "threat", "late.png"), []byte("x"), 0o644))
	items, err := f.svc.Eligible(ctx, false, true)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	_, err = f.svc.Rescan(ctx)
	require.NoError(t, err)
	items, err = f.svc.Eligible(ctx, false, true)
	require.NoError(t, err)
	assert.Len(t, items, 3)
}

func TestOverridesShapeEligiblePool(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	entry, err := f.svc.SetExcluded(ctx, "/photos/threat/p1.jpg", true)
	require.NoError(t, err)
	assert.True(t, entry.Excluded)

	threat := domain.Threat
	entry, err = f.svc.SetClass(ctx, "/photos/non_threat/p2.png", &threat)
	require.NoError(t, err)
	assert.Equal(t, domain.Threat, entry.Class)
	assert.Equal(t, domain.NonThreat, entry.OriginalClass)

	items, err := f.svc.Eligible(ctx, false, true)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "/photos/non_threat/p2.png", items[0].Location)
	assert.Equal(t, domain.Threat, items[0].Class)

	// Clearing both parts of an override removes it entirely.
	_, err = f.svc.SetExcluded(ctx, "/photos/threat/p1.jpg", false)
	require.NoError(t, err)
	entry, err = f.svc.SetClass(ctx, "/photos/non_threat/p2.png", nil)
	require.NoError(t, err)
	assert.False(t, entry.Overridden)

	excluded := true
	listed, counts, err := f.svc.Gallery(ctx, domain.Filter{Excluded: &excluded})
	require.NoError(t, err)
	assert.Empty(t, listed)
	assert.Equal(t, 4, counts.Total)
	assert.Zero(t, counts.Excluded)

	_, err = f.svc.SetExcluded(ctx, "/photos/threat/nope.jpg", true)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestClearOverride(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	nonThreat := domain.NonThreat

	_, err := f.svc.SetExcluded(ctx, "/videos/threat/v1.mp4", true)
	require.NoError(t, err)
	_, err = f.svc.SetClass(ctx, "/videos/threat/v1.mp4", &nonThreat)
	require.NoError(t, err)
	require.NoError(t, f.svc.ClearOverride(ctx, "/videos/threat/v1.mp4"))

	entry, err := f.svc.Entry(ctx, "/videos/threat/v1.mp4")
	require.NoError(t, err)
	assert.False(t, entry.Overridden)
	assert.Equal(t, domain.Threat, entry.Class)
}

func TestImportDisplayAndRemove(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Import(ctx, "clip.png", domain.KindVideo, domain.Threat, []byte("x"))
	require.ErrorIs(t, err, apperrors.ErrUnsupportedMedia)
	_, err = f.svc.Import(ctx, "empty.png", domain.KindPhoto, domain.Threat, nil)
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)

	media, err := f.svc.Import(ctx, "/home/me/Range Shot.PNG", domain.KindPhoto, domain.Threat, []byte("pixels"))
	require.NoError(t, err)
	assert.Equal(t, "user://id-1", media.Location())
	assert.Equal(t, "Range Shot.PNG", media.Name)

	items, err := f.svc.Eligible(ctx, false, true)
	require.NoError(t, err)
	assert.Equal(t, "user://id-1", items[len(items)-1].Location)

	url, err := f.svc.DisplayURL(ctx, media.Location())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "file://"))
	assert.True(t, strings.HasSuffix(url, "id-1-range-shot.png"), url)
	cached := filepath.Join(f.dataDir, "cache", "id-1-range-shot.png")
	raw, err := os.ReadFile(cached)
	require.NoError(t, err)
	assert.Equal(t, "pixels", string(raw))

	again, err := f.svc.DisplayURL(ctx, media.Location())
	require.NoError(t, err)
	assert.Equal(t, url, again)

	_, err = f.svc.SetExcluded(ctx, media.Location(), true)
	require.NoError(t, err)
	require.NoError(t, f.svc.Remove(ctx, media.Location()))

	_, err = f.svc.Entry(ctx, media.Location())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = os.Stat(cached)
	assert.True(t, os.IsNotExist(err))
	excluded := true
	listed, _, err := f.svc.Gallery(ctx, domain.Filter{Excluded: &excluded})
	require.NoError(t, err)
	assert.Empty(t, listed, "override removed with the media")

	assert.ErrorIs(t, f.svc.Remove(ctx, media.Location()), apperrors.ErrNotFound)
	assert.ErrorIs(t, f.svc.Remove(ctx, "/videos/threat/v1.mp4"), apperrors.ErrInvalidInput)
}

func TestOpenBuiltIn(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	target, err := f.svc.Open(context.Background(), "/photos/threat/p1.jpg")
	require.NoError(t, err)
	assert.Equal(t, []string{target}, f.launcher.opened)
	assert.True(t, strings.HasSuffix(target, "/photos/threat/p1.jpg"))
	assert.True(t, strings.HasPrefix(target, "file://"))

	_, err = f.svc.Open(context.Background(), "user://missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
