package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"gradtrack/internal/domain"
)

type fakeMilestoneRepo struct {
	totalTasks    int
	completedBy   map[string]int
	completeCalls []string
	timeline      []domain.Milestone
	procErr       error
}

func newFakeMilestoneRepo() *fakeMilestoneRepo {
	return &fakeMilestoneRepo{completedBy: make(map[string]int)}
}

func (f *fakeMilestoneRepo) CompleteTask(_ context.Context, graduateID, taskID string) error {
	if f.procErr != nil {
		return f.procErr
	}
	f.completeCalls = append(f.completeCalls, graduateID+"/"+taskID)
	f.completedBy[graduateID]++
	return nil
}

func (f *fakeMilestoneRepo) UncompleteTask(_ context.Context, graduateID, _ string) error {
	if f.procErr != nil {
		return f.procErr
	}
	if f.completedBy[graduateID] > 0 {
		f.completedBy[graduateID]--
	}
	return nil
}

func (f *fakeMilestoneRepo) CountTasks(_ context.Context) (int, error) {
	return f.totalTasks, nil
}

func (f *fakeMilestoneRepo) CountCompleted(_ context.Context, graduateID string) (int, error) {
	return f.completedBy[graduateID], nil
}

func (f *fakeMilestoneRepo) Timeline(_ context.Context, _ string) ([]domain.Milestone, error) {
	return f.timeline, nil
}

func TestProgressZeroTasksIsZeroNotError(t *testing.T) {
	repo := newFakeMilestoneRepo()
	svc := NewProgressService(zap.NewNop(), repo, newFakeUserRepo())

	pct, err := svc.Progress(context.Background(), "g1")
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if pct != 0 {
		t.Fatalf("expected 0, got %d", pct)
	}
}

func TestProgressTruncatesToInt(t *testing.T) {
	repo := newFakeMilestoneRepo()
	repo.totalTasks = 3
	repo.completedBy["g1"] = 2
	svc := NewProgressService(zap.NewNop(), repo, newFakeUserRepo())

	pct, err := svc.Progress(context.Background(), "g1")
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if pct != 66 {
		t.Fatalf("expected 66 (truncated), got %d", pct)
	}
}

func TestProgressComplete(t *testing.T) {
	repo := newFakeMilestoneRepo()
	repo.totalTasks = 4
	repo.completedBy["g1"] = 4
	svc := NewProgressService(zap.NewNop(), repo, newFakeUserRepo())

	pct, err := svc.Progress(context.Background(), "g1")
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if pct != 100 {
		t.Fatalf("expected 100, got %d", pct)
	}
}

func TestCompleteTaskSurfacesProcedureError(t *testing.T) {
	repo := newFakeMilestoneRepo()
	repo.procErr = errors.New("task not found")
	svc := NewProgressService(zap.NewNop(), repo, newFakeUserRepo())

	if err := svc.CompleteTask(context.Background(), "g1", "t1"); err == nil {
		t.Fatalf("expected procedure error surfaced")
	}
}

func TestListGraduatesCarriesProgress(t *testing.T) {
	users := newFakeUserRepo()
	_ = users.Create(context.Background(), domain.User{ID: "g1", Email: "g1@x.com", Role: "graduate"})
	_ = users.Create(context.Background(), domain.User{ID: "adm", Email: "adm@x.com", Role: "admin"})

	repo := newFakeMilestoneRepo()
	repo.totalTasks = 2
	repo.completedBy["g1"] = 1
	svc := NewProgressService(zap.NewNop(), repo, users)

	graduates, err := svc.ListGraduates(context.Background())
	if err != nil {
		t.Fatalf("list graduates: %v", err)
	}
	if len(graduates) != 1 {
		t.Fatalf("expected only graduates listed, got %d", len(graduates))
	}
	if graduates[0].Progress != 50 {
		t.Fatalf("expected 50%% progress, got %d", graduates[0].Progress)
	}
}
