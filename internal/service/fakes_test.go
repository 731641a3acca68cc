package service_test

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"washops/internal/domain"
	"washops/internal/scope"
	"washops/pkg/e"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func defaultResolver() *scope.Resolver {
	return scope.NewResolver(scope.Static(domain.DefaultHierarchy()))
}

func strPtr(s string) *string { return &s }

// memRequests is an in-memory RequestRepository whose UpdateIfStatus is a
// compare-and-set under a mutex, like the conditional UPDATE in Postgres.
type memRequests struct {
	mu   sync.Mutex
	rows map[uuid.UUID]domain.EmergencyRequest
}

func newMemRequests(reqs ...domain.EmergencyRequest) *memRequests {
	m := &memRequests{rows: make(map[uuid.UUID]domain.EmergencyRequest)}
	for _, r := range reqs {
		m.rows[r.ID] = r.Clone()
	}
	return m
}

func (m *memRequests) Create(_ context.Context, req *domain.EmergencyRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[req.ID]; ok {
		return e.ErrConflict
	}
	m.rows[req.ID] = req.Clone()
	return nil
}

func (m *memRequests) Get(_ context.Context, id uuid.UUID) (*domain.EmergencyRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return nil, e.ErrNotFound
	}
	c := r.Clone()
	return &c, nil
}

func (m *memRequests) List(_ context.Context, status *domain.RequestStatus) ([]domain.EmergencyRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.EmergencyRequest, 0, len(m.rows))
	for _, r := range m.rows {
		if status != nil && r.Status != *status {
			continue
		}
		out = append(out, r.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

func (m *memRequests) ListByAssignee(_ context.Context, workerID string) ([]domain.EmergencyRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.EmergencyRequest
	for _, r := range m.rows {
		if r.AssignedWorker() == workerID {
			out = append(out, r.Clone())
		}
	}
	return out, nil
}

func (m *memRequests) UpdateIfStatus(_ context.Context, req *domain.EmergencyRequest, expected domain.RequestStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.rows[req.ID]
	if !ok {
		return e.ErrNotFound
	}
	if cur.Status != expected {
		return e.ErrConflict
	}
	m.rows[req.ID] = req.Clone()
	return nil
}

func (m *memRequests) stored(id uuid.UUID) domain.EmergencyRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rows[id].Clone()
}

// memProfiles serves washers to the real matcher.
type memProfiles struct {
	actors []domain.Actor
}

func (m *memProfiles) GetActor(_ context.Context, id string) (*domain.Actor, error) {
	for _, a := range m.actors {
		if a.ID == id {
			c := a
			return &c, nil
		}
	}
	return nil, e.ErrNotFound
}

func (m *memProfiles) ListProfiles(context.Context) ([]domain.Actor, error) {
	return append([]domain.Actor(nil), m.actors...), nil
}

func (m *memProfiles) ListWashersByArea(_ context.Context, area string) ([]domain.Actor, error) {
	var out []domain.Actor
	for _, a := range m.actors {
		if domain.SameArea(a.HomeArea, area) || domain.SameArea(a.HomeCity, area) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memProfiles) UpdateAreas(context.Context, string, []string, []string) error {
	return nil
}

// recordingQueue collects enqueued events.
type recordingQueue struct {
	mu     sync.Mutex
	events []domain.RequestEvent
}

func (q *recordingQueue) Enqueue(_ context.Context, ev domain.RequestEvent) error {
	q.mu.Lock()
	q.events = append(q.events, ev)
	q.mu.Unlock()
	return nil
}

func (q *recordingQueue) kinds() []domain.RequestEventKind {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]domain.RequestEventKind, 0, len(q.events))
	for _, ev := range q.events {
		out = append(out, ev.Kind)
	}
	return out
}

var (
	adminActor = domain.Actor{ID: "admin-1", Role: domain.RoleAdmin, Active: true}
	hrPalsana  = domain.Actor{ID: "hr-1", Role: domain.RoleHR, AssignedTalukas: []string{"Palsana"}, Active: true}
	hrBorsad   = domain.Actor{ID: "hr-2", Role: domain.RoleHR, AssignedTalukas: []string{"Borsad"}, Active: true}
	customerC1 = domain.Actor{ID: "c1", Role: domain.RoleCustomer, Active: true}
)

func washer(id, name, city, area string, rating float64) domain.Actor {
	return domain.Actor{
		ID:           id,
		Name:         name,
		Role:         domain.RoleEmployee,
		EmployeeType: domain.EmployeeWasher,
		HomeCity:     city,
		HomeArea:     area,
		Active:       true,
		Rating:       rating,
	}
}

func pendingRequest(city, area string) domain.EmergencyRequest {
	return domain.EmergencyRequest{
		ID:         uuid.New(),
		CustomerID: "c1",
		Address:    "12 Station Road",
		City:       city,
		Area:       area,
		CarModel:   "Swift",
		CarPlate:   "GJ05AB1234",
		Status:     domain.StatusPending,
	}
}
