package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"

	"washops/internal/domain"
	"washops/internal/service"
	mock_service "washops/internal/service/mocks"
	"washops/pkg/e"
)

func TestStatsCounter_AdminUsesAggregate(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	stats := mock_service.NewMockStatsRepository(ctrl)
	requests := mock_service.NewMockRequestRepository(ctrl)

	stats.EXPECT().CountByStatus(gomock.Any()).Return(domain.RequestStats{
		Total:    3,
		ByStatus: map[domain.RequestStatus]int{domain.StatusPending: 2, domain.StatusCompleted: 1},
	}, nil)

	c := service.NewStatsCounter(stats, requests, defaultResolver())

	got, err := c.Get(context.Background(), adminActor)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got.Total != 3 || got.ByStatus[domain.StatusPending] != 2 {
		t.Fatalf("unexpected stats: %+v", got)
	}
	if len(got.ByStatus) != len(domain.AllStatuses) {
		t.Fatalf("expected every status key, got %v", got.ByStatus)
	}
}

func TestStatsCounter_ScopedCountsVisibleOnly(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	stats := mock_service.NewMockStatsRepository(ctrl)

	done := pendingRequest("Surat", "Palsana")
	done.Status = domain.StatusCompleted
	repo := newMemRequests(
		pendingRequest("Surat", "Palsana"),
		done,
		pendingRequest("Anand", "Borsad"),
	)

	c := service.NewStatsCounter(stats, repo, defaultResolver())

	got, err := c.Get(context.Background(), hrPalsana)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got.Total != 2 || got.ByStatus[domain.StatusPending] != 1 || got.ByStatus[domain.StatusCompleted] != 1 {
		t.Fatalf("unexpected stats: %+v", got)
	}
	if got.ByStatus[domain.StatusCancelled] != 0 {
		t.Fatalf("unexpected cancelled count: %+v", got)
	}
}

func TestStatsCounter_ErrorPropagated(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	stats := mock_service.NewMockStatsRepository(ctrl)
	stats.EXPECT().CountByStatus(gomock.Any()).Return(domain.RequestStats{}, e.ErrStorageUnavailable)

	c := service.NewStatsCounter(stats, nil, defaultResolver())

	_, err := c.Get(context.Background(), adminActor)
	if !errors.Is(err, e.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
}

func TestUserDirectory_List(t *testing.T) {
	t.Parallel()

	profiles := &memProfiles{actors: []domain.Actor{
		washer("w1", "Ravi", "Surat", "Palsana", 4.5),
		washer("w2", "Kiran", "Anand", "Borsad", 4.1),
		{ID: "hr-x", Role: domain.RoleHR, HomeCity: "Surat", HomeArea: "Palsana"},
	}}
	d := service.NewUserDirectory(profiles, defaultResolver())

	got, err := d.List(context.Background(), hrPalsana)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 profiles in Palsana, got %+v", got)
	}

	all, err := d.List(context.Background(), adminActor)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("admin should see everyone, got %d", len(all))
	}

	if _, err := d.List(context.Background(), customerC1); !errors.Is(err, e.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
