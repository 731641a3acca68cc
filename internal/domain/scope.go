package domain

import "sort"

type ScopeKind int

const (
	// ScopeArea restricts to named cities and talukas. With both sets empty
	// it admits nothing.
	ScopeArea ScopeKind = iota
	ScopeUnrestricted
	// ScopeOwner admits only records owned by OwnerID.
	ScopeOwner
)

// ScopeSet is the set of areas an actor may act upon.
type ScopeSet struct {
	Kind    ScopeKind
	OwnerID string

	cities  map[string]string
	talukas map[string]string
}

func Unrestricted() ScopeSet {
	return ScopeSet{Kind: ScopeUnrestricted}
}

func OwnerScope(ownerID string) ScopeSet {
	return ScopeSet{Kind: ScopeOwner, OwnerID: ownerID}
}

func EmptyScope() ScopeSet {
	return ScopeSet{Kind: ScopeArea}
}

func AreaScope(cities, talukas []string) ScopeSet {
	return ScopeSet{
		Kind:    ScopeArea,
		cities:  nameSet(cities),
		talukas: nameSet(talukas),
	}
}

func nameSet(names []string) map[string]string {
	out := make(map[string]string, len(names))
	for _, n := range names {
		c := CanonicalArea(n)
		if c == "" {
			continue
		}
		k := AreaKey(c)
		if _, ok := out[k]; !ok {
			out[k] = c
		}
	}
	return out
}

func (s ScopeSet) IsUnrestricted() bool { return s.Kind == ScopeUnrestricted }

// IsEmpty reports a scope that admits nothing.
func (s ScopeSet) IsEmpty() bool {
	switch s.Kind {
	case ScopeUnrestricted:
		return false
	case ScopeOwner:
		return s.OwnerID == ""
	default:
		return len(s.cities) == 0 && len(s.talukas) == 0
	}
}

func (s ScopeSet) HasCity(name string) bool {
	if s.Kind == ScopeUnrestricted {
		return true
	}
	_, ok := s.cities[AreaKey(name)]
	return ok
}

func (s ScopeSet) HasTaluka(name string) bool {
	if s.Kind == ScopeUnrestricted {
		return true
	}
	_, ok := s.talukas[AreaKey(name)]
	return ok
}

// CoversName is used where only a bare area name is known (matcher lookups):
// it may be either a taluka or a city.
func (s ScopeSet) CoversName(name string) bool {
	return s.HasTaluka(name) || s.HasCity(name)
}

func (s ScopeSet) Cities() []string  { return sortedValues(s.cities) }
func (s ScopeSet) Talukas() []string { return sortedValues(s.talukas) }

func sortedValues(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
