package service

import (
	"context"
	"fmt"

	"washops/internal/domain"
	"washops/internal/scope"
	"washops/pkg/e"
)

// UserDirectory lists profiles visible to the caller.
type UserDirectory struct {
	profiles ProfileRepository
	resolver *scope.Resolver
}

func NewUserDirectory(profiles ProfileRepository, resolver *scope.Resolver) *UserDirectory {
	return &UserDirectory{profiles: profiles, resolver: resolver}
}

func (d *UserDirectory) List(ctx context.Context, actor domain.Actor) ([]domain.Actor, error) {
	const op = "service.UserDirectory.List"

	if actor.Role == domain.RoleCustomer {
		return nil, fmt.Errorf("%s: %w", op, e.ErrForbidden)
	}
	all, err := d.profiles.ListProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return scope.Filter(d.resolver.Resolve(actor), all), nil
}
