package service

import (
	"context"
	"fmt"
	"log/slog"

	"washops/internal/domain"
	"washops/internal/scope"
	"washops/pkg/e"
)

// AreaManager maintains assignedCities / assignedTalukas. Admins may edit
// anyone who carries areas; sub-admins only hr, salesperson and employee
// profiles, and only with areas inside their own scope.
type AreaManager struct {
	profiles  ProfileRepository
	resolver  *scope.Resolver
	hierarchy scope.HierarchyProvider
	logger    *slog.Logger
}

func NewAreaManager(profiles ProfileRepository, resolver *scope.Resolver, hierarchy scope.HierarchyProvider, logger *slog.Logger) *AreaManager {
	return &AreaManager{profiles: profiles, resolver: resolver, hierarchy: hierarchy, logger: logger}
}

func (m *AreaManager) Get(ctx context.Context, actor domain.Actor, employeeID string) (domain.AreaAssignment, error) {
	const op = "service.AreaManager.Get"

	target, err := m.loadTarget(ctx, actor, employeeID)
	if err != nil {
		return domain.AreaAssignment{}, fmt.Errorf("%s: %w", op, err)
	}
	return toAssignment(target), nil
}

func (m *AreaManager) Update(ctx context.Context, actor domain.Actor, employeeID string, req domain.UpdateAreasRequest) (domain.AreaAssignment, error) {
	const op = "service.AreaManager.Update"

	target, err := m.loadTarget(ctx, actor, employeeID)
	if err != nil {
		return domain.AreaAssignment{}, fmt.Errorf("%s: %w", op, err)
	}

	cities := dedupeNames(req.AssignedCities)
	talukas := dedupeNames(req.AssignedTalukas)

	if target.Role != domain.RoleSubAdmin && len(cities) > 0 {
		return domain.AreaAssignment{}, fmt.Errorf("%s: %s profiles take talukas only: %w", op, target.Role, e.ErrInvalidInput)
	}

	h := m.hierarchy.Current()
	for _, c := range cities {
		if !h.HasCity(c) {
			return domain.AreaAssignment{}, fmt.Errorf("%s: unknown city %q: %w", op, c, e.ErrInvalidInput)
		}
	}
	for _, t := range talukas {
		if !h.HasTaluka(t) {
			return domain.AreaAssignment{}, fmt.Errorf("%s: unknown taluka %q: %w", op, t, e.ErrInvalidInput)
		}
	}

	if actor.Role == domain.RoleSubAdmin {
		own := m.resolver.Resolve(actor)
		for _, c := range cities {
			if !own.HasCity(c) {
				return domain.AreaAssignment{}, fmt.Errorf("%s: city %q: %w", op, c, e.ErrOutOfScope)
			}
		}
		for _, t := range talukas {
			if !own.HasTaluka(t) {
				return domain.AreaAssignment{}, fmt.Errorf("%s: taluka %q: %w", op, t, e.ErrOutOfScope)
			}
		}
	}

	if err := m.profiles.UpdateAreas(ctx, target.ID, cities, talukas); err != nil {
		return domain.AreaAssignment{}, fmt.Errorf("%s: %w", op, err)
	}

	target.AssignedCities = cities
	target.AssignedTalukas = talukas
	m.logger.Info("areas updated",
		slog.String("employee_id", target.ID),
		slog.String("actor_id", actor.ID),
		slog.Int("cities", len(cities)),
		slog.Int("talukas", len(talukas)),
	)
	return toAssignment(target), nil
}

func (m *AreaManager) loadTarget(ctx context.Context, actor domain.Actor, employeeID string) (*domain.Actor, error) {
	if actor.Role != domain.RoleAdmin && actor.Role != domain.RoleSubAdmin {
		return nil, e.ErrForbidden
	}

	target, err := m.profiles.GetActor(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	switch target.Role {
	case domain.RoleSubAdmin:
		if actor.Role != domain.RoleAdmin {
			return nil, e.ErrForbidden
		}
	case domain.RoleHR, domain.RoleSalesperson, domain.RoleEmployee:
	default:
		return nil, fmt.Errorf("%s profiles carry no areas: %w", target.Role, e.ErrInvalidInput)
	}

	// A sub-admin sees only people homed inside its scope. Profiles with no
	// home location yet are manageable so they can be given their first areas.
	if actor.Role == domain.RoleSubAdmin && (target.HomeCity != "" || target.HomeArea != "") {
		if !scope.Covers(m.resolver.Resolve(actor), target) {
			return nil, e.ErrOutOfScope
		}
	}
	return target, nil
}

func toAssignment(a *domain.Actor) domain.AreaAssignment {
	cities := a.AssignedCities
	if cities == nil {
		cities = []string{}
	}
	talukas := a.AssignedTalukas
	if talukas == nil {
		talukas = []string{}
	}
	return domain.AreaAssignment{
		EmployeeID:      a.ID,
		Role:            a.Role,
		HomeCity:        a.HomeCity,
		HomeArea:        a.HomeArea,
		AssignedCities:  cities,
		AssignedTalukas: talukas,
	}
}

// dedupeNames canonicalizes names and drops blanks and case-insensitive
// duplicates, keeping the first spelling.
func dedupeNames(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, n := range in {
		c := domain.CanonicalArea(n)
		k := domain.AreaKey(c)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, c)
	}
	return out
}
