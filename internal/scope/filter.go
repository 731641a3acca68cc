package scope

import (
	"washops/internal/domain"
)

// Covers reports whether a single record is visible in s. In an area scope a
// record passes when its city is in the city set or its taluka is in the
// taluka set; blank fields never match.
func Covers(s domain.ScopeSet, rec domain.GeoTagged) bool {
	switch s.Kind {
	case domain.ScopeUnrestricted:
		return true
	case domain.ScopeOwner:
		return s.OwnerID != "" && rec.OwnerID() == s.OwnerID
	default:
		return s.HasCity(rec.GeoCity()) || s.HasTaluka(rec.GeoArea())
	}
}

// Filter keeps the records covered by s, preserving order. An unrestricted
// scope returns records as is.
func Filter[T domain.GeoTagged](s domain.ScopeSet, records []T) []T {
	if s.IsUnrestricted() {
		return records
	}
	out := make([]T, 0, len(records))
	if s.IsEmpty() {
		return out
	}
	for _, rec := range records {
		if Covers(s, rec) {
			out = append(out, rec)
		}
	}
	return out
}

// CoversArea reports whether a bare area name (taluka or city) lies inside s.
// Owner scopes never cover an area.
func CoversArea(s domain.ScopeSet, area string) bool {
	if s.Kind == domain.ScopeOwner {
		return false
	}
	return s.CoversName(area)
}
