package service

import (
	"context"

	"go.uber.org/zap"

	"gradtrack/internal/domain"
	"gradtrack/internal/repository"
)

// ProgressService is a thin adapter over the milestone stored procedures
// plus the client-side progress percentage.
type ProgressService struct {
	logger     *zap.Logger
	milestones repository.MilestoneRepository
	users      repository.UserRepository
}

func NewProgressService(logger *zap.Logger, milestones repository.MilestoneRepository, users repository.UserRepository) *ProgressService {
	return &ProgressService{
		logger:     logger,
		milestones: milestones,
		users:      users,
	}
}

func (s *ProgressService) CompleteTask(ctx context.Context, graduateID, taskID string) error {
	return s.milestones.CompleteTask(ctx, graduateID, taskID)
}

func (s *ProgressService) UncompleteTask(ctx context.Context, graduateID, taskID string) error {
	return s.milestones.UncompleteTask(ctx, graduateID, taskID)
}

func (s *ProgressService) Timeline(ctx context.Context, graduateID string) ([]domain.Milestone, error) {
	return s.milestones.Timeline(ctx, graduateID)
}

// Progress returns completed/total as a truncated percentage. Zero total
// tasks yields 0, not an error.
func (s *ProgressService) Progress(ctx context.Context, graduateID string) (int, error) {
	total, err := s.milestones.CountTasks(ctx)
	if err != nil {
		return 0, err
	}
	if total == 0 {
		return 0, nil
	}
	completed, err := s.milestones.CountCompleted(ctx, graduateID)
	if err != nil {
		return 0, err
	}
	return completed * 100 / total, nil
}

// ListGraduates returns every graduate with the computed progress. A
// progress failure for one graduate is logged and reported as 0 rather
// than failing the whole listing.
func (s *ProgressService) ListGraduates(ctx context.Context) ([]domain.Graduate, error) {
	graduates, err := s.users.ListGraduates(ctx)
	if err != nil {
		return nil, err
	}
	for i := range graduates {
		pct, err := s.Progress(ctx, graduates[i].ID)
		if err != nil {
			s.logger.Warn("progress lookup failed", zap.Error(err), zap.String("graduate_id", graduates[i].ID))
			continue
		}
		graduates[i].Progress = pct
	}
	return graduates, nil
}
