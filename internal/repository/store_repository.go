package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/store-rating/internal/model"
)

// StoreRepo encapsulates writes to the stores table. Stores are created
// by administrators only and never mutated afterwards.
type StoreRepo struct {
	db *sqlx.DB // db is the underlying database connection pool
}

// NewStoreRepo constructs a StoreRepo with the provided DB handle.
func NewStoreRepo(db *sqlx.DB) *StoreRepo {
	return &StoreRepo{db: db}
}

// Create inserts a new store and populates its ID. The owner reference
// and email uniqueness are checked by the database in the same statement:
// a missing owner yields ErrOwnerNotFound and a reused email
// ErrStoreEmailExists, and in both cases no row is written.
func (r *StoreRepo) Create(ctx context.Context, s *model.Store) error {
	s.Email = normalizeEmail(s.Email)
	const q = "INSERT INTO stores (name, email, address, owner_id) VALUES (?, ?, ?, ?)"
	res, err := r.db.ExecContext(ctx, q, s.Name, s.Email, s.Address, s.OwnerID)
	if err != nil {
		switch {
		case isForeignKeyViolation(err):
			return ErrOwnerNotFound
		case isDuplicateKey(err):
			return ErrStoreEmailExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}
