package memory

import (
	"context"

	"gridwar/internal/app/ports"
)

type IgnoreRepo struct {
	store *Store
}

func NewIgnoreRepo(store *Store) IgnoreRepo {
	return IgnoreRepo{store: store}
}

func (r IgnoreRepo) Create(_ context.Context, record ports.IgnoreRecord) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.ignores[record.ID] = record
	return nil
}
