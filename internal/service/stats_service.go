package service

import (
	"context"
	"fmt"

	"washops/internal/domain"
	"washops/internal/scope"
)

// StatsCounter reports request counts per status within the caller's scope.
type StatsCounter struct {
	stats    StatsRepository
	requests RequestRepository
	resolver *scope.Resolver
}

func NewStatsCounter(stats StatsRepository, requests RequestRepository, resolver *scope.Resolver) *StatsCounter {
	return &StatsCounter{stats: stats, requests: requests, resolver: resolver}
}

func (c *StatsCounter) Get(ctx context.Context, actor domain.Actor) (domain.RequestStats, error) {
	const op = "service.StatsCounter.Get"

	sc := c.resolver.Resolve(actor)
	if sc.IsUnrestricted() {
		st, err := c.stats.CountByStatus(ctx)
		if err != nil {
			return domain.RequestStats{}, fmt.Errorf("%s: %w", op, err)
		}
		return withAllStatuses(st), nil
	}

	all, err := c.requests.List(ctx, nil)
	if err != nil {
		return domain.RequestStats{}, fmt.Errorf("%s: %w", op, err)
	}
	st := domain.RequestStats{ByStatus: make(map[domain.RequestStatus]int)}
	for _, r := range scope.Filter(sc, all) {
		st.ByStatus[r.Status]++
		st.Total++
	}
	return withAllStatuses(st), nil
}

// withAllStatuses fills zero counts so dashboards always get every key.
func withAllStatuses(st domain.RequestStats) domain.RequestStats {
	if st.ByStatus == nil {
		st.ByStatus = make(map[domain.RequestStatus]int)
	}
	for _, s := range domain.AllStatuses {
		if _, ok := st.ByStatus[s]; !ok {
			st.ByStatus[s] = 0
		}
	}
	return st
}
