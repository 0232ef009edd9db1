package out_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mediaout "tdrill/internal/modules/media/adapter/out"
	"tdrill/internal/modules/media/domain"
	apperrors "tdrill/internal/platform/errors"
)

func writeFile(t *testing.T, root, rel string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte("x"), 0o644))
}

func TestFSScannerFollowsLayout(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFile(t, root, "videos/threat/b.mp4")
	writeFile(t, root, "videos/threat/a.webm")
	writeFile(t, root, "videos/threat/skip.mov")
	writeFile(t, root, "videos/threat/.hidden.mp4")
	writeFile(t, root, "videos/non_threat/c.mp4")
	writeFile(t, root, "photos/threat/d.JPG")
	writeFile(t, root, "photos/non_threat/e.webp")
	writeFile(t, root, "photos/non_threat/f.mp4")
	writeFile(t, root, "photos/other/g.png")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "photos/threat/nested.png"), 0o755))

	items, err := mediaout.NewFSScanner(root).Scan(context.Background())
	require.NoError(t, err)

	got := make([]string, 0, len(items))
	for _, item := range items {
		got = append(got, item.Location)
	}
	assert.Equal(t, []string{
		"/videos/threat/a.webm",
		"/videos/threat/b.mp4",
		"/videos/non_threat/c.mp4",
		"/photos/threat/d.JPG",
		"/photos/non_threat/e.webp",
	}, got)
	assert.Equal(t, domain.Item{Location: "/photos/threat/d.JPG", Name: "d.JPG", Kind: domain.KindPhoto, Class: domain.Threat}, items[3])
}

func TestFSScannerMissingRoot(t *testing.T) {
	t.Parallel()
	items, err := mediaout.NewFSScanner(filepath.Join(t.TempDir(), "absent")).Scan(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestFSScannerResolve(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFile(t, root, "photos/threat/a.png")
	scanner := mediaout.NewFSScanner(root)

	p, err := scanner.Resolve("/photos/threat/a.png")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "photos", "threat", "a.png"), p)

	_, err = scanner.Resolve("/photos/threat/missing.png")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = scanner.Resolve("/../etc/passwd")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	_, err = scanner.Resolve("photos/threat/a.png")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	_, err = scanner.Resolve("/photos/threat")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestYAMLManifestRoundTrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "manifest.yaml")
	store := mediaout.NewYAMLManifestStore(path)

	_, err := store.Load(context.Background())
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	manifest := domain.Manifest{
		GeneratedAt: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
		Root:        "/srv/media",
		Items: []domain.Item{
			{Location: "/videos/threat/a.mp4", Name: "a.mp4", Kind: domain.KindVideo, Class: domain.Threat},
		},
	}
	require.NoError(t, store.Save(context.Background(), manifest))
	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, manifest.GeneratedAt.Equal(loaded.GeneratedAt))
	assert.Equal(t, manifest.Root, loaded.Root)
	assert.Equal(t, manifest.Items, loaded.Items)
	assert.Equal(t, path, store.Path())
}

func TestYAMLManifestRejectsInvalidItems(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "manifest.yaml")
	require.NoError(t, os.WriteFile(path, []byte("items:\n  - location: /x.mp4\n    kind: AUDIO\n    class: THREAT\n"), 0o644))
	_, err := mediaout.NewYAMLManifestStore(path).Load(context.Background())
	assert.Error(t, err)
}

func TestBoltUserMediaStore(t *testing.T) {
	t.Parallel()
	db, err := mediaout.OpenBolt(filepath.Join(t.TempDir(), "media.bolt"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	store := mediaout.NewBoltUserMediaStore(db)
	ctx := context.Background()

	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	second := domain.UserMedia{ID: "b", Name: "b.png", Kind: domain.KindPhoto, Class: domain.Threat, Size: 3, ImportedAt: now.Add(time.Minute)}
	first := domain.UserMedia{ID: "z", Name: "z.mp4", Kind: domain.KindVideo, Class: domain.NonThreat, Size: 2, ImportedAt: now}
	require.NoError(t, store.Save(ctx, second, []byte("png")))
	require.NoError(t, store.Save(ctx, first, []byte("mp")))

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "z", list[0].ID)
	assert.Equal(t, "b", list[1].ID)

	got, err := store.Get(ctx, "b")
	require.NoError(t, err)
	assert.True(t, got.ImportedAt.Equal(second.ImportedAt))
	data, err := store.Content(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), data)

	require.NoError(t, store.Delete(ctx, "b"))
	_, err = store.Get(ctx, "b")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = store.Content(ctx, "b")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, "b"), apperrors.ErrNotFound)
}

func TestBoltOverrideStore(t *testing.T) {
	t.Parallel()
	db, err := mediaout.OpenBolt(filepath.Join(t.TempDir(), "media.bolt"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	store := mediaout.NewBoltOverrideStore(db)
	ctx := context.Background()

	_, err = store.Get(ctx, "/photos/threat/a.png")
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	class := domain.NonThreat
	o := domain.Override{Location: "/photos/threat/a.png", Class: &class, CreatedAt: time.Unix(10, 0).UTC(), UpdatedAt: time.Unix(20, 0).UTC()}
	require.NoError(t, store.Put(ctx, o))
	got, err := store.Get(ctx, o.Location)
	require.NoError(t, err)
	require.NotNil(t, got.Class)
	assert.Equal(t, domain.NonThreat, *got.Class)
	assert.False(t, got.Excluded)

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, store.Delete(ctx, o.Location))
	require.NoError(t, store.Delete(ctx, o.Location))
	list, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestFileDisplayCache(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	cache := mediaout.NewFileDisplayCache(dir)

	_, ok := cache.Lookup("user://1")
	assert.False(t, ok)

	p, err := cache.Materialize(context.Background(), "user://1", "1-a.png", []byte("data"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "1-a.png"), p)

	again, err := cache.Materialize(context.Background(), "user://1", "ignored.png", []byte("other"))
	require.NoError(t, err)
	assert.Equal(t, p, again)
	raw, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "data", string(raw))

	cached, ok := cache.Lookup("user://1")
	require.True(t, ok)
	assert.Equal(t, p, cached)

	require.NoError(t, cache.Evict("user://1"))
	_, err = os.Stat(p)
	assert.True(t, os.IsNotExist(err))
	require.NoError(t, cache.Evict("user://1"))
}
