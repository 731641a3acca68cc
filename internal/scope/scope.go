// Package scope decides which cities and talukas an actor may act upon.
// Every list endpoint, the matcher and the assignment coordinator go
// through Resolve and Filter so there is one place where visibility is decided.
package scope

import (
	"washops/internal/domain"
)

// HierarchyProvider returns the hierarchy currently in effect.
type HierarchyProvider interface {
	Current() *domain.LocationHierarchy
}

type staticHierarchy struct {
	h *domain.LocationHierarchy
}

func (s staticHierarchy) Current() *domain.LocationHierarchy { return s.h }

// Static wraps a fixed hierarchy.
func Static(h *domain.LocationHierarchy) HierarchyProvider {
	return staticHierarchy{h: h}
}

type Resolver struct {
	hierarchy HierarchyProvider
}

func NewResolver(hierarchy HierarchyProvider) *Resolver {
	return &Resolver{hierarchy: hierarchy}
}

// Resolve computes the actor's scope. Scoped roles without any assignment
// data, and unknown roles, get an empty scope.
func (r *Resolver) Resolve(actor domain.Actor) domain.ScopeSet {
	switch actor.Role {
	case domain.RoleAdmin:
		return domain.Unrestricted()

	case domain.RoleSubAdmin:
		// Talukas derived from the assigned cities are unioned with any
		// explicitly assigned talukas.
		talukas := append([]string{}, actor.AssignedTalukas...)
		h := r.current()
		for _, city := range actor.AssignedCities {
			talukas = append(talukas, h.TalukasOf(city)...)
		}
		return domain.AreaScope(actor.AssignedCities, talukas)

	case domain.RoleHR:
		return domain.AreaScope(nil, actor.AssignedTalukas)

	case domain.RoleEmployee, domain.RoleSalesperson:
		talukas := append([]string{actor.HomeArea}, actor.AssignedTalukas...)
		return domain.AreaScope(nil, talukas)

	case domain.RoleCustomer:
		return domain.OwnerScope(actor.ID)
	}
	return domain.EmptyScope()
}

func (r *Resolver) current() *domain.LocationHierarchy {
	if r == nil || r.hierarchy == nil {
		return nil
	}
	return r.hierarchy.Current()
}
