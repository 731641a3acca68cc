package domain

// GeoTagged is any record the dashboards list: profiles, cars, bookings,
// emergency requests. The engine only reads these three fields.
type GeoTagged interface {
	GeoCity() string
	GeoArea() string
	OwnerID() string
}

// GeoRecord is a plain GeoTagged value for records the engine does not own
// (cars, bookings) and for tests.
type GeoRecord struct {
	ID    string `json:"id"`
	City  string `json:"city"`
	Area  string `json:"area"`
	Owner string `json:"ownerId"`
}

func (r GeoRecord) GeoCity() string { return r.City }
func (r GeoRecord) GeoArea() string { return r.Area }
func (r GeoRecord) OwnerID() string { return r.Owner }
