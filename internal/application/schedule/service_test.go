package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bughunter/bughunter/internal/domain/schedule"
	jsonrepo "github.com/bughunter/bughunter/internal/infrastructure/persistence/json"
	sharedErrors "github.com/bughunter/bughunter/internal/shared/errors"
)

func newService(t *testing.T) *Service {
	t.Helper()
	repo, err := jsonrepo.NewScheduleRepository(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}
	return NewService(repo)
}

func TestAddNormalizesTarget(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	sched, err := svc.Add(ctx, "example.com", schedule.FrequencyDaily, "alice")
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if sched.TargetURL != "http://example.com" {
		t.Errorf("expected normalized target, got %s", sched.TargetURL)
	}
}

func TestAddRejectsInvalidTarget(t *testing.T) {
	svc := newService(t)
	if _, err := svc.Add(context.Background(), "ftp://example.com", schedule.FrequencyDaily, "alice"); !errors.Is(err, sharedErrors.ErrInvalidTarget) {
		t.Errorf("expected ErrInvalidTarget, got %v", err)
	}
}

func TestDueAndMarkRun(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	sched, err := svc.Add(ctx, "https://example.com", schedule.FrequencyHourly, "alice")
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}

	due, err := svc.Due(ctx, sched.CreatedAt)
	if err != nil {
		t.Fatalf("due failed: %v", err)
	}
	if len(due) != 0 {
		t.Errorf("nothing should be due yet, got %d", len(due))
	}

	later := sched.NextRun.Add(time.Minute)
	due, err = svc.Due(ctx, later)
	if err != nil {
		t.Fatalf("due failed: %v", err)
	}
	if len(due) != 1 {
		t.Fatalf("expected 1 due schedule, got %d", len(due))
	}

	if err := svc.MarkRun(ctx, sched.ID, later); err != nil {
		t.Fatalf("mark run failed: %v", err)
	}

	due, _ = svc.Due(ctx, later)
	if len(due) != 0 {
		t.Errorf("schedule should not be due after a run, got %d", len(due))
	}
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	sched, _ := svc.Add(ctx, "https://example.com", schedule.FrequencyWeekly, "alice")
	if err := svc.Remove(ctx, sched.ID); err != nil {
		t.Fatalf("remove failed: %v", err)
	}

	list, _ := svc.List(ctx)
	if len(list) != 0 {
		t.Errorf("expected empty list after remove, got %d", len(list))
	}
}
