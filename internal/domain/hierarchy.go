package domain

import "sort"

// LocationHierarchy maps each city to its talukas. Lookups are case-insensitive.
type LocationHierarchy struct {
	cities  map[string]string
	talukas map[string][]string
	parent  map[string]string
}

func NewLocationHierarchy(src map[string][]string) *LocationHierarchy {
	h := &LocationHierarchy{
		cities:  make(map[string]string, len(src)),
		talukas: make(map[string][]string, len(src)),
		parent:  make(map[string]string),
	}
	for city, talukas := range src {
		h.Add(city, talukas...)
	}
	return h
}

// Add registers a city and any talukas under it.
func (h *LocationHierarchy) Add(city string, talukas ...string) {
	c := CanonicalArea(city)
	if c == "" {
		return
	}
	ck := AreaKey(c)
	if _, ok := h.cities[ck]; !ok {
		h.cities[ck] = c
	}
	for _, t := range talukas {
		tc := CanonicalArea(t)
		if tc == "" {
			continue
		}
		tk := AreaKey(tc)
		if _, dup := h.parent[tk]; dup && SameArea(h.parent[tk], c) {
			continue
		}
		h.parent[tk] = h.cities[ck]
		h.talukas[ck] = append(h.talukas[ck], tc)
	}
	sort.Strings(h.talukas[ck])
}

func (h *LocationHierarchy) TalukasOf(city string) []string {
	if h == nil {
		return nil
	}
	src := h.talukas[AreaKey(city)]
	out := make([]string, len(src))
	copy(out, src)
	return out
}

func (h *LocationHierarchy) HasCity(city string) bool {
	if h == nil {
		return false
	}
	_, ok := h.cities[AreaKey(city)]
	return ok
}

func (h *LocationHierarchy) HasTaluka(taluka string) bool {
	if h == nil {
		return false
	}
	_, ok := h.parent[AreaKey(taluka)]
	return ok
}

// CityOf returns the city a taluka belongs to.
func (h *LocationHierarchy) CityOf(taluka string) (string, bool) {
	if h == nil {
		return "", false
	}
	c, ok := h.parent[AreaKey(taluka)]
	return c, ok
}

func (h *LocationHierarchy) Cities() []string {
	if h == nil {
		return nil
	}
	return sortedValues(h.cities)
}

func (h *LocationHierarchy) Len() int {
	if h == nil {
		return 0
	}
	return len(h.cities)
}

// Map is the serializable form, used for caching and the /locations endpoint.
func (h *LocationHierarchy) Map() map[string][]string {
	out := make(map[string][]string)
	if h == nil {
		return out
	}
	for k, city := range h.cities {
		out[city] = append([]string{}, h.talukas[k]...)
	}
	return out
}

// DefaultHierarchy is the built-in reference data used when the locations
// table is empty.
func DefaultHierarchy() *LocationHierarchy {
	return NewLocationHierarchy(map[string][]string{
		"Surat":     {"Surat", "Palsana", "Mangrol", "Bardoli"},
		"Anand":     {"Anand", "Borsad", "Petlad", "Khambhat", "Umreth", "Sojitra"},
		"Vadodara":  {"Vadodara", "Padra", "Karjan", "Savli", "Dabhoi", "Waghodia"},
		"Ahmedabad": {"Ahmedabad City", "Daskroi", "Sanand", "Dholka", "Bavla", "Viramgam"},
		"Navsari":   {"Navsari", "Jalalpore", "Gandevi", "Chikhli", "Vansda"},
		"Kheda":     {"Nadiad", "Kheda", "Matar", "Mahudha", "Kapadvanj"},
	})
}
