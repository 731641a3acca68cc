package postgres

import (
	"context"

	"github.com/google/uuid"

	"washops/internal/domain"
)

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

func (p *Postgres) RequestsRepo() RequestRepository   { return p.Requests }
func (p *Postgres) ProfilesRepo() ProfileRepository   { return p.Profiles }
func (p *Postgres) LocationsRepo() LocationRepository { return p.Locations }
func (p *Postgres) Stats() StatsRepository            { return p.Stat }
