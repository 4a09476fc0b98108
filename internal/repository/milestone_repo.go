package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"gradtrack/internal/domain"
)

// MilestoneRepository delegates task completion to stored procedures and
// exposes the counts behind the progress percentage.
type MilestoneRepository interface {
	CompleteTask(ctx context.Context, graduateID, taskID string) error
	UncompleteTask(ctx context.Context, graduateID, taskID string) error
	CountTasks(ctx context.Context) (int, error)
	CountCompleted(ctx context.Context, graduateID string) (int, error)
	Timeline(ctx context.Context, graduateID string) ([]domain.Milestone, error)
}

// PgMilestoneRepository implements MilestoneRepository using pgxpool.
type PgMilestoneRepository struct {
	pool *pgxpool.Pool
}

func NewPgMilestoneRepository(pool *pgxpool.Pool) *PgMilestoneRepository {
	return &PgMilestoneRepository{pool: pool}
}

func (r *PgMilestoneRepository) CompleteTask(ctx context.Context, graduateID, taskID string) error {
	_, err := r.pool.Exec(ctx, `SELECT complete_task($1, $2)`, graduateID, taskID)
	return err
}

func (r *PgMilestoneRepository) UncompleteTask(ctx context.Context, graduateID, taskID string) error {
	_, err := r.pool.Exec(ctx, `SELECT uncomplete_task($1, $2)`, graduateID, taskID)
	return err
}

func (r *PgMilestoneRepository) CountTasks(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM tasks`).Scan(&count)
	return count, err
}

func (r *PgMilestoneRepository) CountCompleted(ctx context.Context, graduateID string) (int, error) {
	const query = `SELECT count(*) FROM task_progress WHERE graduate_id = $1 AND completed`
	var count int
	err := r.pool.QueryRow(ctx, query, graduateID).Scan(&count)
	return count, err
}

// Timeline calls the get_graduate_timeline procedure, which assembles
// milestones with per-task completion for one graduate as JSON.
func (r *PgMilestoneRepository) Timeline(ctx context.Context, graduateID string) ([]domain.Milestone, error) {
	var raw []byte
	if err := r.pool.QueryRow(ctx, `SELECT get_graduate_timeline($1)`, graduateID).Scan(&raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}
	var milestones []domain.Milestone
	if err := json.Unmarshal(raw, &milestones); err != nil {
		return nil, err
	}
	return milestones, nil
}
