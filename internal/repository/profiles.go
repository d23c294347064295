package repository

import (
	"context"

	"github.com/jmehdipour/wifi-billing/internal/model"
	"github.com/jmoiron/sqlx"
)

type ProfilesRepository interface {
	List(ctx context.Context) ([]model.Profile, error)
	// Insert returns ErrDuplicate when the name is taken.
	Insert(ctx context.Context, name string) error
	Delete(ctx context.Context, name string) (bool, error)
}

type ProfilesRepositoryImpl struct {
	db *sqlx.DB
}

func NewProfilesRepository(db *sqlx.DB) *ProfilesRepositoryImpl {
	return &ProfilesRepositoryImpl{db: db}
}

var _ ProfilesRepository = (*ProfilesRepositoryImpl)(nil)

func (r *ProfilesRepositoryImpl) List(ctx context.Context) ([]model.Profile, error) {
	out := []model.Profile{}
	if err := r.db.SelectContext(ctx, &out, `SELECT name, created_at FROM profiles ORDER BY name`); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ProfilesRepositoryImpl) Insert(ctx context.Context, name string) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO profiles (name, created_at) VALUES (?, NOW(6))`, name)
	return mapWriteErr(err)
}

// Delete removes the profile; tagged customers fall back to no profile (FK SET NULL).
func (r *ProfilesRepositoryImpl) Delete(ctx context.Context, name string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM profiles WHERE name = ?`, name)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
