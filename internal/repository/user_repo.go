package repository

import (
	"context"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"gradtrack/internal/domain"
)

// UserRepository defines the persistence contract for users.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByCredentials(ctx context.Context, email, hashedPass string) (domain.User, error)
	UpdatePassword(ctx context.Context, id, hashedPass string, clearMustReset bool) error
	ListGraduates(ctx context.Context) ([]domain.Graduate, error)
}

// PgUserRepository implements UserRepository using pgxpool.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

func (r *PgUserRepository) Create(ctx context.Context, user domain.User) error {
	const query = `
		INSERT INTO users (id, email, hashed_pass, role, must_reset_password, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Email,
		user.HashedPass,
		user.Role,
		user.MustResetPassword,
		user.CreatedAt,
	)
	return err
}

const userColumns = `id, email, hashed_pass, role, must_reset_password, created_at`

func (r *PgUserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(ctx, query, id)
}

func (r *PgUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanUser(ctx, query, email)
}

func (r *PgUserRepository) GetByCredentials(ctx context.Context, email, hashedPass string) (domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1 AND hashed_pass = $2`
	return r.scanUser(ctx, query, email, hashedPass)
}

func (r *PgUserRepository) UpdatePassword(ctx context.Context, id, hashedPass string, clearMustReset bool) error {
	if clearMustReset {
		const query = `UPDATE users SET hashed_pass = $2, must_reset_password = false WHERE id = $1`
		_, err := r.pool.Exec(ctx, query, id, hashedPass)
		return err
	}
	const query = `UPDATE users SET hashed_pass = $2 WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id, hashedPass)
	return err
}

func (r *PgUserRepository) ListGraduates(ctx context.Context) ([]domain.Graduate, error) {
	const query = `
		SELECT u.id, u.email, p.first_name, p.last_name, p.avatar_url
		FROM users u
		JOIN profiles p ON p.id = u.id
		WHERE u.role = 'graduate'
		ORDER BY p.last_name, p.first_name
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var graduates []domain.Graduate
	for rows.Next() {
		var g domain.Graduate
		if err := rows.Scan(&g.ID, &g.Email, &g.FirstName, &g.LastName, &g.AvatarURL); err != nil {
			return nil, err
		}
		graduates = append(graduates, g)
	}
	return graduates, rows.Err()
}

func (r *PgUserRepository) scanUser(ctx context.Context, query string, args ...any) (domain.User, error) {
	var (
		u        domain.User
		resetRaw any
	)
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&u.ID,
		&u.Email,
		&u.HashedPass,
		&u.Role,
		&resetRaw,
		&u.CreatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}
	u.MustResetPassword = truthyFlag(resetRaw)
	return u, nil
}

// truthyFlag normalizes must_reset_password at the storage boundary.
// Historic writers stored it as a boolean, a 0/1 integer or a string
// token, so the column is scanned untyped and collapsed to a bool here.
func truthyFlag(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case int:
		return val != 0
	case int32:
		return val != 0
	case int64:
		return val != 0
	case float64:
		return val != 0
	case string:
		s := strings.ToLower(strings.TrimSpace(val))
		if s == "" {
			return false
		}
		if b, err := strconv.ParseBool(s); err == nil {
			return b
		}
		return s != "0" && s != "no" && s != "off"
	default:
		return false
	}
}
