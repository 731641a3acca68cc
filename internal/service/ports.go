package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"washops/internal/domain"
)

//go:generate mockgen -source=ports.go -destination=mocks/ports_mock.go

type RequestRepository interface {
	Create(ctx context.Context, req *domain.EmergencyRequest) error
	Get(ctx context.Context, id uuid.UUID) (*domain.EmergencyRequest, error)
	List(ctx context.Context, status *domain.RequestStatus) ([]domain.EmergencyRequest, error)
	ListByAssignee(ctx context.Context, workerID string) ([]domain.EmergencyRequest, error)
	UpdateIfStatus(ctx context.Context, req *domain.EmergencyRequest, expected domain.RequestStatus) error
}

type ProfileRepository interface {
	GetActor(ctx context.Context, id string) (*domain.Actor, error)
	ListProfiles(ctx context.Context) ([]domain.Actor, error)
	ListWashersByArea(ctx context.Context, area string) ([]domain.Actor, error)
	UpdateAreas(ctx context.Context, id string, cities, talukas []string) error
}

type LocationRepository interface {
	LoadHierarchy(ctx context.Context) (map[string][]string, error)
	Seed(ctx context.Context, hierarchy map[string][]string) error
}

type StatsRepository interface {
	CountByStatus(ctx context.Context) (domain.RequestStats, error)
}

type HierarchyCache interface {
	Get(ctx context.Context) (map[string][]string, error)
	Set(ctx context.Context, hierarchy map[string][]string, ttl time.Duration) error
}

type EventQueue interface {
	Enqueue(ctx context.Context, ev domain.RequestEvent) error
}

type EventSource interface {
	BRPop(ctx context.Context, timeout time.Duration) (domain.RequestEvent, error)
}
