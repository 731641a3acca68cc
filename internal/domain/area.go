package domain

import "strings"

// CanonicalArea trims and collapses inner whitespace. Case is preserved for display.
func CanonicalArea(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// AreaKey is the comparison key for city and taluka names.
func AreaKey(s string) string {
	return strings.ToLower(CanonicalArea(s))
}

// SameArea reports a case-insensitive exact match. Blank names never match.
func SameArea(a, b string) bool {
	ka := AreaKey(a)
	return ka != "" && ka == AreaKey(b)
}

// AreaFields accepts every spelling the dashboards use for the sub-city unit.
// Only the canonical value returned by Value travels further into the core.
type AreaFields struct {
	Area   string `json:"area,omitempty" validate:"omitempty,area"`
	Taluka string `json:"taluka,omitempty" validate:"omitempty,area"`
	Taluko string `json:"taluko,omitempty" validate:"omitempty,area"`
}

func (f AreaFields) Value() string {
	for _, v := range []string{f.Area, f.Taluka, f.Taluko} {
		if c := CanonicalArea(v); c != "" {
			return c
		}
	}
	return ""
}
