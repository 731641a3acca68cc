package scope_test

import (
	"reflect"
	"testing"

	"washops/internal/domain"
	"washops/internal/scope"
)

func newResolver() *scope.Resolver {
	return scope.NewResolver(scope.Static(domain.DefaultHierarchy()))
}

func records() []domain.GeoRecord {
	return []domain.GeoRecord{
		{ID: "1", City: "Surat", Area: "Palsana", Owner: "c1"},
		{ID: "2", City: "", Area: "Bardoli", Owner: "c2"},
		{ID: "3", City: "Anand", Area: "Borsad", Owner: "c1"},
		{ID: "4", City: "Vadodara", Area: "", Owner: "c3"},
		{ID: "5", City: "", Area: "", Owner: "c4"},
	}
}

func ids(recs []domain.GeoRecord) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.ID)
	}
	return out
}

func TestResolve_AdminIsUnrestricted(t *testing.T) {
	t.Parallel()

	s := newResolver().Resolve(domain.Actor{ID: "a", Role: domain.RoleAdmin})
	if !s.IsUnrestricted() {
		t.Fatalf("expected unrestricted scope")
	}

	in := records()
	out := scope.Filter(s, in)
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("admin filter must be identity, got %v", ids(out))
	}
}

func TestResolve_SubAdminDerivesTalukasFromCities(t *testing.T) {
	t.Parallel()

	s := newResolver().Resolve(domain.Actor{
		ID:             "sa",
		Role:           domain.RoleSubAdmin,
		AssignedCities: []string{"Surat"},
	})

	want := []string{"Bardoli", "Mangrol", "Palsana", "Surat"}
	if got := s.Talukas(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected talukas %v, got %v", want, got)
	}

	// record 2 has a blank city but its taluka belongs to Surat
	if got := ids(scope.Filter(s, records())); !reflect.DeepEqual(got, []string{"1", "2"}) {
		t.Fatalf("unexpected visible records: %v", got)
	}
}

func TestResolve_SubAdminUnionsExplicitTalukas(t *testing.T) {
	t.Parallel()

	s := newResolver().Resolve(domain.Actor{
		Role:            domain.RoleSubAdmin,
		AssignedCities:  []string{"surat"},
		AssignedTalukas: []string{"Borsad"},
	})

	if !s.HasTaluka("Borsad") || !s.HasTaluka("Palsana") {
		t.Fatalf("expected derived and explicit talukas, got %v", s.Talukas())
	}
	if s.HasCity("Anand") {
		t.Fatalf("explicit taluka must not widen the city set")
	}
	if got := ids(scope.Filter(s, records())); !reflect.DeepEqual(got, []string{"1", "2", "3"}) {
		t.Fatalf("unexpected visible records: %v", got)
	}
}

func TestResolve_HRStaysInsideAllowList(t *testing.T) {
	t.Parallel()

	s := newResolver().Resolve(domain.Actor{
		Role:            domain.RoleHR,
		AssignedCities:  []string{"Vadodara"}, // ignored for hr
		AssignedTalukas: []string{"Borsad", "Palsana"},
	})

	for _, rec := range scope.Filter(s, records()) {
		if !s.HasTaluka(rec.Area) {
			t.Fatalf("hr saw record %s outside the allow-list", rec.ID)
		}
	}
	if got := ids(scope.Filter(s, records())); !reflect.DeepEqual(got, []string{"1", "3"}) {
		t.Fatalf("unexpected visible records: %v", got)
	}
	if len(s.Cities()) != 0 {
		t.Fatalf("hr must not have cities, got %v", s.Cities())
	}
}

func TestResolve_EmployeeHomePlusAssigned(t *testing.T) {
	t.Parallel()

	s := newResolver().Resolve(domain.Actor{
		Role:            domain.RoleSalesperson,
		HomeArea:        "Bardoli",
		AssignedTalukas: []string{"BORSAD"},
	})
	if got := ids(scope.Filter(s, records())); !reflect.DeepEqual(got, []string{"2", "3"}) {
		t.Fatalf("unexpected visible records: %v", got)
	}
}

func TestResolve_CustomerSeesOwnRecords(t *testing.T) {
	t.Parallel()

	s := newResolver().Resolve(domain.Actor{ID: "c1", Role: domain.RoleCustomer})
	if got := ids(scope.Filter(s, records())); !reflect.DeepEqual(got, []string{"1", "3"}) {
		t.Fatalf("unexpected visible records: %v", got)
	}
	if scope.CoversArea(s, "Palsana") {
		t.Fatalf("owner scope must not cover areas")
	}
}

func TestResolve_FailsClosed(t *testing.T) {
	t.Parallel()

	cases := map[string]domain.Actor{
		"hr_without_talukas":      {Role: domain.RoleHR},
		"subadmin_without_cities": {Role: domain.RoleSubAdmin},
		"employee_without_areas":  {Role: domain.RoleEmployee},
		"unknown_role":            {Role: domain.Role("auditor"), AssignedTalukas: []string{"Palsana"}},
		"customer_without_id":     {Role: domain.RoleCustomer},
		"subadmin_unknown_city":   {Role: domain.RoleSubAdmin, AssignedCities: []string{"   "}},
	}
	for name, actor := range cases {
		name, actor := name, actor
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			s := newResolver().Resolve(actor)
			if !s.IsEmpty() {
				t.Fatalf("expected empty scope")
			}
			if got := scope.Filter(s, records()); len(got) != 0 {
				t.Fatalf("empty scope admitted %v", ids(got))
			}
		})
	}
}

func TestCoversArea(t *testing.T) {
	t.Parallel()

	s := newResolver().Resolve(domain.Actor{Role: domain.RoleSubAdmin, AssignedCities: []string{"Anand"}})
	if !scope.CoversArea(s, "borsad") || !scope.CoversArea(s, "Anand") {
		t.Fatalf("expected taluka and city to be covered")
	}
	if scope.CoversArea(s, "Palsana") || scope.CoversArea(s, "") {
		t.Fatalf("unexpected coverage")
	}
}

func TestFilter_WorksOnRequests(t *testing.T) {
	t.Parallel()

	reqs := []domain.EmergencyRequest{
		{City: "Anand", Area: "Borsad", CustomerID: "c1"},
		{City: "Surat", Area: "Palsana", CustomerID: "c2"},
	}
	s := domain.AreaScope(nil, []string{"Palsana"})
	out := scope.Filter(s, reqs)
	if len(out) != 1 || out[0].CustomerID != "c2" {
		t.Fatalf("unexpected filter result: %+v", out)
	}
}
