package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"washops/internal/domain"
	"washops/internal/scope"
	"washops/pkg/e"
)

// WasherMatcher finds the washers eligible for an area.
type WasherMatcher struct {
	profiles ProfileRepository
	resolver *scope.Resolver
	logger   *slog.Logger
}

func NewWasherMatcher(profiles ProfileRepository, resolver *scope.Resolver, logger *slog.Logger) *WasherMatcher {
	return &WasherMatcher{profiles: profiles, resolver: resolver, logger: logger}
}

// FindEligible returns active washers whose taluka or city equals area,
// best rated first. No match is an empty slice, not an error.
func (m *WasherMatcher) FindEligible(ctx context.Context, area string) ([]domain.Worker, error) {
	const op = "service.WasherMatcher.FindEligible"

	area = domain.CanonicalArea(area)
	if area == "" {
		return []domain.Worker{}, nil
	}

	profiles, err := m.profiles.ListWashersByArea(ctx, area)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	workers := make([]domain.Worker, 0, len(profiles))
	for _, p := range profiles {
		w, ok := p.AsWorker()
		if !ok || !w.ServesArea(area) {
			continue
		}
		workers = append(workers, w)
	}
	sortWorkers(workers)

	m.logger.Debug("matcher done", slog.String("area", area), slog.Int("candidates", len(workers)))
	return workers, nil
}

// FindEligibleInScope is FindEligible for a dashboard user: the area must lie
// inside the caller's scope.
func (m *WasherMatcher) FindEligibleInScope(ctx context.Context, actor domain.Actor, area string) ([]domain.Worker, error) {
	if domain.CanonicalArea(area) == "" {
		return nil, fmt.Errorf("%w: area required", e.ErrInvalidInput)
	}
	if !scope.CoversArea(m.resolver.Resolve(actor), area) {
		return nil, fmt.Errorf("area %q: %w", area, e.ErrOutOfScope)
	}
	return m.FindEligible(ctx, area)
}

// sortWorkers orders by rating desc, then name asc, then id asc so equal
// inputs always give the same order.
func sortWorkers(ws []domain.Worker) {
	sort.SliceStable(ws, func(i, j int) bool {
		a, b := ws[i], ws[j]
		if a.Rating != b.Rating {
			return a.Rating > b.Rating
		}
		an, bn := strings.ToLower(a.Name), strings.ToLower(b.Name)
		if an != bn {
			return an < bn
		}
		return a.ID < b.ID
	})
}
