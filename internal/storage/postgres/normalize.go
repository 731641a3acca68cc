package postgres

import (
	"washops/internal/domain"
)

// normalizeArea folds the column spellings the dashboards have used for the
// sub-city unit into the canonical area. The first non-blank wins.
func normalizeArea(area, taluko string) string {
	return domain.AreaFields{Area: area, Taluko: taluko}.Value()
}

// keySQL folds a text expression the way domain.AreaKey does.
func keySQL(expr string) string {
	return `lower(btrim(regexp_replace(` + expr + `, '\s+', ' ', 'g')))`
}

// statusKeySQL is compared against RequestStatus.Spellings.
var statusKeySQL = keySQL("status")

func parseStatus(raw string) domain.RequestStatus {
	if s, ok := domain.ParseRequestStatus(raw); ok {
		return s
	}
	return domain.RequestStatus(raw)
}

func parseRole(raw string) domain.Role {
	if r, ok := domain.ParseRole(raw); ok {
		return r
	}
	return domain.Role(raw)
}

// packImages collapses the fixed image columns into a slice, skipping empty slots.
func packImages(cols [domain.MaxImages]*string) []string {
	out := make([]string, 0, domain.MaxImages)
	for _, c := range cols {
		if c != nil && *c != "" {
			out = append(out, *c)
		}
	}
	return out
}

// spreadImages is the inverse of packImages. Missing slots become NULL.
func spreadImages(images []string) [domain.MaxImages]*string {
	var cols [domain.MaxImages]*string
	for i := 0; i < len(images) && i < domain.MaxImages; i++ {
		v := images[i]
		cols[i] = &v
	}
	return cols
}

func nullIfBlank(s string) *string {
	c := domain.CanonicalArea(s)
	if c == "" {
		return nil
	}
	return &c
}
