package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"gradtrack/internal/domain"
)

// OTPRepository defines the persistence contract for one-time passcodes.
// "Active" means verified_at is null; GetActive surfaces pgx.ErrNoRows
// when no such record exists for the (user, purpose) pair.
type OTPRepository interface {
	Insert(ctx context.Context, rec domain.OTPRecord) error
	GetActive(ctx context.Context, userID string, purpose domain.OTPPurpose) (domain.OTPRecord, error)
	InvalidateActive(ctx context.Context, userID string, purpose domain.OTPPurpose, at time.Time) error
	IncrementAttempts(ctx context.Context, id string) error
	MarkVerified(ctx context.Context, id string, at time.Time) error
	DeleteExpired(ctx context.Context, now time.Time) error
	DeleteStale(ctx context.Context, userID string, now time.Time) error
}

// PgOTPRepository implements OTPRepository using pgxpool.
type PgOTPRepository struct {
	pool *pgxpool.Pool
}

func NewPgOTPRepository(pool *pgxpool.Pool) *PgOTPRepository {
	return &PgOTPRepository{pool: pool}
}

func (r *PgOTPRepository) Insert(ctx context.Context, rec domain.OTPRecord) error {
	const query = `
		INSERT INTO user_otp (id, user_id, purpose, otp_hash, expires_at, attempts, max_attempts, last_sent_at, verified_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.pool.Exec(ctx, query,
		rec.ID,
		rec.UserID,
		string(rec.Purpose),
		rec.OTPHash,
		rec.ExpiresAt,
		rec.Attempts,
		rec.MaxAttempts,
		rec.LastSentAt,
		rec.VerifiedAt,
	)
	return err
}

func (r *PgOTPRepository) GetActive(ctx context.Context, userID string, purpose domain.OTPPurpose) (domain.OTPRecord, error) {
	const query = `
		SELECT id, user_id, purpose, otp_hash, expires_at, attempts, max_attempts, last_sent_at, verified_at
		FROM user_otp
		WHERE user_id = $1 AND purpose = $2 AND verified_at IS NULL
		ORDER BY last_sent_at DESC
		LIMIT 1
	`
	var rec domain.OTPRecord
	err := r.pool.QueryRow(ctx, query, userID, string(purpose)).Scan(
		&rec.ID,
		&rec.UserID,
		&rec.Purpose,
		&rec.OTPHash,
		&rec.ExpiresAt,
		&rec.Attempts,
		&rec.MaxAttempts,
		&rec.LastSentAt,
		&rec.VerifiedAt,
	)
	return rec, err
}

// InvalidateActive supersedes any active record for the pair by stamping
// verified_at, preserving the row as an audit trail.
func (r *PgOTPRepository) InvalidateActive(ctx context.Context, userID string, purpose domain.OTPPurpose, at time.Time) error {
	const query = `
		UPDATE user_otp SET verified_at = $3
		WHERE user_id = $1 AND purpose = $2 AND verified_at IS NULL
	`
	_, err := r.pool.Exec(ctx, query, userID, string(purpose), at)
	return err
}

func (r *PgOTPRepository) IncrementAttempts(ctx context.Context, id string) error {
	const query = `UPDATE user_otp SET attempts = attempts + 1 WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func (r *PgOTPRepository) MarkVerified(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE user_otp SET verified_at = $2 WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id, at)
	return err
}

func (r *PgOTPRepository) DeleteExpired(ctx context.Context, now time.Time) error {
	const query = `DELETE FROM user_otp WHERE expires_at < $1`
	_, err := r.pool.Exec(ctx, query, now)
	return err
}

// DeleteStale removes a user's abandoned codes: unverified and already
// expired. Verified rows and other users' rows are untouched.
func (r *PgOTPRepository) DeleteStale(ctx context.Context, userID string, now time.Time) error {
	const query = `DELETE FROM user_otp WHERE user_id = $1 AND verified_at IS NULL AND expires_at < $2`
	_, err := r.pool.Exec(ctx, query, userID, now)
	return err
}
