package out

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	bolt "go.etcd.io/bbolt"

	"tdrill/internal/modules/media/domain"
	mediaout "tdrill/internal/modules/media/port/out"
	apperrors "tdrill/internal/platform/errors"
)

// BoltUserMediaStore keeps metadata and bytes in separate buckets so that
// listing never loads file contents.
type BoltUserMediaStore struct {
	db *bolt.DB
}

func NewBoltUserMediaStore(db *bolt.DB) mediaout.UserMediaStore {
	return &BoltUserMediaStore{db: db}
}

func (s *BoltUserMediaStore) Save(_ context.Context, media domain.UserMedia, data []byte) error {
	raw, err := json.Marshal(media)
	if err != nil {
		return fmt.Errorf("marshal user media: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(userMediaBucket).Put([]byte(media.ID), raw); err != nil {
			return fmt.Errorf("store user media %s: %w", media.ID, err)
		}
		if err := tx.Bucket(blobBucket).Put([]byte(media.ID), data); err != nil {
			return fmt.Errorf("store user media bytes %s: %w", media.ID, err)
		}
		return nil
	})
}

func (s *BoltUserMediaStore) Get(_ context.Context, id string) (domain.UserMedia, error) {
	var media domain.UserMedia
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(userMediaBucket).Get([]byte(id))
		if raw == nil {
			return fmt.Errorf("%w: user media %s", apperrors.ErrNotFound, id)
		}
		return json.Unmarshal(raw, &media)
	})
	if err != nil {
		return domain.UserMedia{}, err
	}
	return media, nil
}

func (s *BoltUserMediaStore) Content(_ context.Context, id string) ([]byte, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(blobBucket).Get([]byte(id))
		if raw == nil {
			return fmt.Errorf("%w: user media bytes %s", apperrors.ErrNotFound, id)
		}
		// raw is only valid inside the transaction
		data = slices.Clone(raw)
		return nil
	})
	return data, err
}

// List returns imported media oldest first.
func (s *BoltUserMediaStore) List(_ context.Context) ([]domain.UserMedia, error) {
	var out []domain.UserMedia
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(userMediaBucket).ForEach(func(k, v []byte) error {
			var media domain.UserMedia
			if err := json.Unmarshal(v, &media); err != nil {
				return fmt.Errorf("decode user media %s: %w", k, err)
			}
			out = append(out, media)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(out, func(a, b domain.UserMedia) int {
		if c := a.ImportedAt.Compare(b.ImportedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (s *BoltUserMediaStore) Delete(_ context.Context, id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		meta := tx.Bucket(userMediaBucket)
		if meta.Get([]byte(id)) == nil {
			return fmt.Errorf("%w: user media %s", apperrors.ErrNotFound, id)
		}
		if err := meta.Delete([]byte(id)); err != nil {
			return err
		}
		return tx.Bucket(blobBucket).Delete([]byte(id))
	})
}
