package out

import (
	"context"

	"tdrill/internal/modules/prefs/domain"
)

// PrefsStore returns domain.Default() when nothing has been saved.
type PrefsStore interface {
	Load(ctx context.Context) (domain.Prefs, error)
	Save(ctx context.Context, prefs domain.Prefs) error
}
