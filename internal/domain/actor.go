package domain

type Role string

const (
	RoleAdmin       Role = "admin"
	RoleSubAdmin    Role = "sub-admin"
	RoleHR          Role = "hr"
	RoleEmployee    Role = "employee"
	RoleSalesperson Role = "salesperson"
	RoleCustomer    Role = "customer"
)

// ParseRole accepts the spellings stored by older dashboards ("subadmin", "HR").
func ParseRole(s string) (Role, bool) {
	switch AreaKey(s) {
	case "admin":
		return RoleAdmin, true
	case "sub-admin", "subadmin", "sub_admin":
		return RoleSubAdmin, true
	case "hr":
		return RoleHR, true
	case "employee":
		return RoleEmployee, true
	case "salesperson", "sales":
		return RoleSalesperson, true
	case "customer", "user":
		return RoleCustomer, true
	}
	return "", false
}

type EmployeeType string

const (
	EmployeeWasher EmployeeType = "washer"
	EmployeeRider  EmployeeType = "rider"
)

// Actor is any authenticated principal, loaded from profiles.
type Actor struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	Role            Role         `json:"role"`
	EmployeeType    EmployeeType `json:"employeeType,omitempty"`
	HomeCity        string       `json:"homeCity,omitempty"`
	HomeArea        string       `json:"homeArea,omitempty"`
	AssignedCities  []string     `json:"assignedCities"`
	AssignedTalukas []string     `json:"assignedTalukas"`
	Active          bool         `json:"active"`
	Rating          float64      `json:"rating"`
}

func (a Actor) GeoCity() string { return a.HomeCity }
func (a Actor) GeoArea() string { return a.HomeArea }
func (a Actor) OwnerID() string { return a.ID }

// IsSupervisor covers the roles allowed to cancel and override requests.
func (a Actor) IsSupervisor() bool {
	return a.Role == RoleAdmin || a.Role == RoleSubAdmin || a.Role == RoleHR
}

func (a Actor) IsWasher() bool {
	return a.Role == RoleEmployee && a.EmployeeType == EmployeeWasher
}

// AsWorker projects a washer profile onto the matcher's view.
func (a Actor) AsWorker() (Worker, bool) {
	if !a.IsWasher() {
		return Worker{}, false
	}
	return Worker{
		ID:     a.ID,
		Name:   a.Name,
		City:   a.HomeCity,
		Area:   a.HomeArea,
		Active: a.Active,
		Rating: a.Rating,
	}, true
}

// Worker is a washer as seen by the matcher.
type Worker struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	City   string  `json:"city"`
	Area   string  `json:"area"`
	Active bool    `json:"active"`
	Rating float64 `json:"rating"`
}

// ServesArea is the single matching rule: an active washer whose taluka or
// city equals the area, case-insensitively. Some profiles only record a city.
func (w Worker) ServesArea(area string) bool {
	if !w.Active {
		return false
	}
	return SameArea(w.Area, area) || SameArea(w.City, area)
}

// AreaAssignment is what GET/PUT /areas/{employeeId} exchange.
type AreaAssignment struct {
	EmployeeID      string   `json:"employeeId"`
	Role            Role     `json:"role"`
	HomeCity        string   `json:"homeCity,omitempty"`
	HomeArea        string   `json:"homeArea,omitempty"`
	AssignedCities  []string `json:"assignedCities"`
	AssignedTalukas []string `json:"assignedTalukas"`
}

type UpdateAreasRequest struct {
	AssignedCities  []string `json:"assignedCities" validate:"max=50,dive,area"`
	AssignedTalukas []string `json:"assignedTalukas" validate:"max=200,dive,area"`
}
