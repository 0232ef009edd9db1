package out

import (
	"context"

	"tdrill/internal/modules/media/domain"
)

// ManifestStore persists the built-in catalog. Load returns
// apperrors.ErrNotFound when no manifest has been written yet.
type ManifestStore interface {
	Load(ctx context.Context) (domain.Manifest, error)
	Save(ctx context.Context, manifest domain.Manifest) error
	Path() string
}

// MediaScanner walks the media root.
type MediaScanner interface {
	Scan(ctx context.Context) ([]domain.Item, error)
	// Resolve maps a built-in location to a file on disk.
	Resolve(location string) (string, error)
	Root() string
}

type UserMediaStore interface {
	Save(ctx context.Context, media domain.UserMedia, data []byte) error
	Get(ctx context.Context, id string) (domain.UserMedia, error)
	Content(ctx context.Context, id string) ([]byte, error)
	List(ctx context.Context) ([]domain.UserMedia, error)
	Delete(ctx context.Context, id string) error
}

type OverrideStore interface {
	Get(ctx context.Context, location string) (domain.Override, error)
	List(ctx context.Context) ([]domain.Override, error)
	Put(ctx context.Context, override domain.Override) error
	Delete(ctx context.Context, location string) error
}

// DisplayCache materializes stored bytes as files a viewer can open.
type DisplayCache interface {
	Materialize(ctx context.Context, key, name string, data []byte) (string, error)
	Lookup(key string) (string, bool)
	Evict(key string) error
}

type Launcher interface {
	Open(ctx context.Context, target string) error
}
