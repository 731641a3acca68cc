package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"washops/internal/domain"
)

// HierarchyStore keeps the hierarchy in memory. It loads from the Redis
// cache first, then Postgres, and falls back to the built-in reference data
// when the locations table is empty.
type HierarchyStore struct {
	repo   LocationRepository
	cache  HierarchyCache
	ttl    time.Duration
	logger *slog.Logger

	mu      sync.RWMutex
	current *domain.LocationHierarchy
}

func NewHierarchyStore(repo LocationRepository, cache HierarchyCache, ttl time.Duration, logger *slog.Logger) *HierarchyStore {
	return &HierarchyStore{
		repo:    repo,
		cache:   cache,
		ttl:     ttl,
		logger:  logger,
		current: domain.DefaultHierarchy(),
	}
}

func (s *HierarchyStore) Current() *domain.LocationHierarchy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *HierarchyStore) set(h *domain.LocationHierarchy) {
	s.mu.Lock()
	s.current = h
	s.mu.Unlock()
}

// Refresh is used at startup: a warm cache wins over the database.
func (s *HierarchyStore) Refresh(ctx context.Context) error {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx)
		if err != nil {
			s.logger.Warn("hierarchy cache read failed", slog.Any("error", err))
		} else if len(cached) > 0 {
			s.set(domain.NewLocationHierarchy(cached))
			s.logger.Info("hierarchy loaded from cache", slog.Int("cities", len(cached)))
			return nil
		}
	}
	return s.Reload(ctx)
}

// Reload reads Postgres and rewrites the cache. On a storage error the
// hierarchy in memory is left as it was.
func (s *HierarchyStore) Reload(ctx context.Context) error {
	stored, err := s.repo.LoadHierarchy(ctx)
	if err != nil {
		s.logger.Error("hierarchy load failed, keeping current", slog.Any("error", err))
		return err
	}

	var h *domain.LocationHierarchy
	if len(stored) == 0 {
		h = domain.DefaultHierarchy()
		if err := s.repo.Seed(ctx, h.Map()); err != nil {
			s.logger.Warn("seeding locations failed", slog.Any("error", err))
		} else {
			s.logger.Info("locations table seeded", slog.Int("cities", h.Len()))
		}
	} else {
		h = domain.NewLocationHierarchy(stored)
	}
	s.set(h)

	if s.cache != nil {
		if err := s.cache.Set(ctx, h.Map(), s.ttl); err != nil {
			s.logger.Warn("hierarchy cache write failed", slog.Any("error", err))
		}
	}
	s.logger.Info("hierarchy reloaded", slog.Int("cities", h.Len()))
	return nil
}
