package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"gradtrack/internal/domain"
)

// ProfileRepository defines the persistence contract for profiles.
type ProfileRepository interface {
	Create(ctx context.Context, profile domain.Profile) error
	GetByUserID(ctx context.Context, userID string) (domain.Profile, error)
	UpdateAvatarURL(ctx context.Context, userID string, avatarURL *string) error
}

// PgProfileRepository implements ProfileRepository using pgxpool.
type PgProfileRepository struct {
	pool *pgxpool.Pool
}

func NewPgProfileRepository(pool *pgxpool.Pool) *PgProfileRepository {
	return &PgProfileRepository{pool: pool}
}

func (r *PgProfileRepository) Create(ctx context.Context, profile domain.Profile) error {
	const query = `
		INSERT INTO profiles (id, first_name, last_name, avatar_url, department, branch, phone)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		profile.UserID,
		profile.FirstName,
		profile.LastName,
		profile.AvatarURL,
		profile.Department,
		profile.Branch,
		profile.Phone,
	)
	return err
}

func (r *PgProfileRepository) GetByUserID(ctx context.Context, userID string) (domain.Profile, error) {
	const query = `
		SELECT id, first_name, last_name, avatar_url, department, branch, phone
		FROM profiles
		WHERE id = $1
	`
	var p domain.Profile
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&p.UserID,
		&p.FirstName,
		&p.LastName,
		&p.AvatarURL,
		&p.Department,
		&p.Branch,
		&p.Phone,
	)
	return p, err
}

func (r *PgProfileRepository) UpdateAvatarURL(ctx context.Context, userID string, avatarURL *string) error {
	const query = `UPDATE profiles SET avatar_url = $2 WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, userID, avatarURL)
	return err
}
