package service_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/golang/mock/gomock"

	"washops/internal/domain"
	"washops/internal/scope"
	"washops/internal/service"
	mock_service "washops/internal/service/mocks"
	"washops/pkg/e"
)

var subAdminSurat = domain.Actor{ID: "sa-1", Role: domain.RoleSubAdmin, AssignedCities: []string{"Surat"}, Active: true}

func newAreaManager(t *testing.T) (*mock_service.MockProfileRepository, *service.AreaManager) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	profiles := mock_service.NewMockProfileRepository(ctrl)
	h := scope.Static(domain.DefaultHierarchy())
	return profiles, service.NewAreaManager(profiles, scope.NewResolver(h), h, discardLogger())
}

func TestAreaManager_Get(t *testing.T) {
	t.Parallel()
	profiles, m := newAreaManager(t)

	target := domain.Actor{ID: "hr-9", Role: domain.RoleHR, HomeCity: "Surat", HomeArea: "Bardoli"}
	profiles.EXPECT().GetActor(gomock.Any(), "hr-9").Return(&target, nil)

	got, err := m.Get(context.Background(), subAdminSurat, "hr-9")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got.AssignedCities == nil || got.AssignedTalukas == nil {
		t.Fatalf("expected non-nil slices: %#v", got)
	}
	if got.EmployeeID != "hr-9" || got.Role != domain.RoleHR {
		t.Fatalf("unexpected assignment: %+v", got)
	}
}

func TestAreaManager_Update_OK(t *testing.T) {
	t.Parallel()
	profiles, m := newAreaManager(t)

	target := domain.Actor{ID: "hr-9", Role: domain.RoleHR, HomeCity: "Surat"}
	profiles.EXPECT().GetActor(gomock.Any(), "hr-9").Return(&target, nil)
	profiles.EXPECT().
		UpdateAreas(gomock.Any(), "hr-9", []string{}, []string{"Palsana", "Mangrol"}).
		Return(nil)

	got, err := m.Update(context.Background(), subAdminSurat, "hr-9", domain.UpdateAreasRequest{
		AssignedTalukas: []string{" Palsana", "palsana", "Mangrol", ""},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !reflect.DeepEqual(got.AssignedTalukas, []string{"Palsana", "Mangrol"}) {
		t.Fatalf("unexpected talukas: %v", got.AssignedTalukas)
	}
}

func TestAreaManager_Update_AdminGivesSubAdminCities(t *testing.T) {
	t.Parallel()
	profiles, m := newAreaManager(t)

	target := domain.Actor{ID: "sa-2", Role: domain.RoleSubAdmin}
	profiles.EXPECT().GetActor(gomock.Any(), "sa-2").Return(&target, nil)
	profiles.EXPECT().
		UpdateAreas(gomock.Any(), "sa-2", []string{"Anand", "Kheda"}, []string{}).
		Return(nil)

	got, err := m.Update(context.Background(), adminActor, "sa-2", domain.UpdateAreasRequest{
		AssignedCities: []string{"Anand", "Kheda"},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got.AssignedCities) != 2 {
		t.Fatalf("unexpected cities: %v", got.AssignedCities)
	}
}

func TestAreaManager_Rejections(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		actor   domain.Actor
		target  *domain.Actor
		req     domain.UpdateAreasRequest
		wantErr error
	}{
		{
			name:    "hr cannot manage areas",
			actor:   hrPalsana,
			req:     domain.UpdateAreasRequest{AssignedTalukas: []string{"Palsana"}},
			wantErr: e.ErrForbidden,
		},
		{
			name:    "sub-admin cannot edit sub-admin",
			actor:   subAdminSurat,
			target:  &domain.Actor{ID: "t", Role: domain.RoleSubAdmin},
			wantErr: e.ErrForbidden,
		},
		{
			name:    "customers carry no areas",
			actor:   adminActor,
			target:  &domain.Actor{ID: "t", Role: domain.RoleCustomer},
			wantErr: e.ErrInvalidInput,
		},
		{
			name:    "target homed elsewhere",
			actor:   subAdminSurat,
			target:  &domain.Actor{ID: "t", Role: domain.RoleEmployee, HomeCity: "Anand", HomeArea: "Borsad"},
			req:     domain.UpdateAreasRequest{AssignedTalukas: []string{"Palsana"}},
			wantErr: e.ErrOutOfScope,
		},
		{
			name:    "cities only for sub-admins",
			actor:   adminActor,
			target:  &domain.Actor{ID: "t", Role: domain.RoleHR},
			req:     domain.UpdateAreasRequest{AssignedCities: []string{"Surat"}},
			wantErr: e.ErrInvalidInput,
		},
		{
			name:    "unknown taluka",
			actor:   adminActor,
			target:  &domain.Actor{ID: "t", Role: domain.RoleHR},
			req:     domain.UpdateAreasRequest{AssignedTalukas: []string{"Atlantis"}},
			wantErr: e.ErrInvalidInput,
		},
		{
			name:    "sub-admin grants outside own scope",
			actor:   subAdminSurat,
			target:  &domain.Actor{ID: "t", Role: domain.RoleHR, HomeCity: "Surat"},
			req:     domain.UpdateAreasRequest{AssignedTalukas: []string{"Borsad"}},
			wantErr: e.ErrOutOfScope,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			profiles, m := newAreaManager(t)
			if tc.target != nil {
				profiles.EXPECT().GetActor(gomock.Any(), "t").Return(tc.target, nil)
			}

			_, err := m.Update(context.Background(), tc.actor, "t", tc.req)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestAreaManager_NotFound(t *testing.T) {
	t.Parallel()
	profiles, m := newAreaManager(t)

	profiles.EXPECT().GetActor(gomock.Any(), "ghost").Return(nil, e.ErrNotFound)

	_, err := m.Get(context.Background(), adminActor, "ghost")
	if !errors.Is(err, e.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
