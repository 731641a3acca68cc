package service

import (
	"context"

	"github.com/google/uuid"

	"washops/internal/domain"
)

//go:generate mockgen -source=service.go -destination=mocks/mock.go

// RequestService covers the emergency request lifecycle as seen by each role.
type RequestService interface {
	Create(ctx context.Context, actor domain.Actor, req domain.CreateEmergencyRequest) (*domain.EmergencyRequest, error)
	Get(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.EmergencyRequest, error)
	List(ctx context.Context, actor domain.Actor, filter domain.ListRequestsFilter) (domain.ListRequestsResponse, error)
	WasherQueue(ctx context.Context, actor domain.Actor) ([]domain.EmergencyRequest, error)
	Start(ctx context.Context, actor domain.Actor, id uuid.UUID, beforeImages []string) (*domain.EmergencyRequest, error)
	Complete(ctx context.Context, actor domain.Actor, id uuid.UUID, afterImages []string) (*domain.EmergencyRequest, error)
	Cancel(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.EmergencyRequest, error)
	Update(ctx context.Context, actor domain.Actor, id uuid.UUID, body domain.UpdateRequestBody) (*domain.EmergencyRequest, error)
}

type AssignmentService interface {
	Assign(ctx context.Context, requestID uuid.UUID, workerID string, actor domain.Actor) (*domain.EmergencyRequest, error)
	Candidates(ctx context.Context, requestID uuid.UUID, actor domain.Actor) ([]domain.Worker, error)
}

type MatcherService interface {
	FindEligible(ctx context.Context, area string) ([]domain.Worker, error)
	FindEligibleInScope(ctx context.Context, actor domain.Actor, area string) ([]domain.Worker, error)
}

type AreaService interface {
	Get(ctx context.Context, actor domain.Actor, employeeID string) (domain.AreaAssignment, error)
	Update(ctx context.Context, actor domain.Actor, employeeID string, req domain.UpdateAreasRequest) (domain.AreaAssignment, error)
}

type LocationService interface {
	Current() *domain.LocationHierarchy
	Refresh(ctx context.Context) error
	Reload(ctx context.Context) error
}

type UserService interface {
	List(ctx context.Context, actor domain.Actor) ([]domain.Actor, error)
}

type StatsService interface {
	Get(ctx context.Context, actor domain.Actor) (domain.RequestStats, error)
}

type Service struct {
	Requests   RequestService
	Assignment AssignmentService
	Matcher    MatcherService
	Areas      AreaService
	Locations  LocationService
	Users      UserService
	Stats      StatsService
}

func NewService(
	requests RequestService,
	assignment AssignmentService,
	matcher MatcherService,
	areas AreaService,
	locations LocationService,
	users UserService,
	stats StatsService,
) *Service {
	return &Service{
		Requests:   requests,
		Assignment: assignment,
		Matcher:    matcher,
		Areas:      areas,
		Locations:  locations,
		Users:      users,
		Stats:      stats,
	}
}
