package out

import (
	"context"
	"encoding/json"
	"fmt"

	bolt "go.etcd.io/bbolt"

	"tdrill/internal/modules/media/domain"
	mediaout "tdrill/internal/modules/media/port/out"
	apperrors "tdrill/internal/platform/errors"
)

type BoltOverrideStore struct {
	db *bolt.DB
}

func NewBoltOverrideStore(db *bolt.DB) mediaout.OverrideStore {
	return &BoltOverrideStore{db: db}
}

func (s *BoltOverrideStore) Get(_ context.Context, location string) (domain.Override, error) {
	var o domain.Override
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(overrideBucket).Get([]byte(location))
		if raw == nil {
			return fmt.Errorf("%w: override %s", apperrors.ErrNotFound, location)
		}
		return json.Unmarshal(raw, &o)
	})
	if err != nil {
		return domain.Override{}, err
	}
	return o, nil
}

// List returns overrides in key order.
func (s *BoltOverrideStore) List(_ context.Context) ([]domain.Override, error) {
	var out []domain.Override
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(overrideBucket).ForEach(func(k, v []byte) error {
			var o domain.Override
			if err := json.Unmarshal(v, &o); err != nil {
				return fmt.Errorf("decode override %s: %w", k, err)
			}
			out = append(out, o)
			return nil
		})
	})
	return out, err
}

func (s *BoltOverrideStore) Put(_ context.Context, o domain.Override) error {
	raw, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("marshal override: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(overrideBucket).Put([]byte(o.Location), raw)
	})
}

// Delete is a no-op for unknown locations.
func (s *BoltOverrideStore) Delete(_ context.Context, location string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(overrideBucket).Delete([]byte(location))
	})
}
