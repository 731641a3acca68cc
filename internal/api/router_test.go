package api_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"

	"washops/internal/api"
	"washops/internal/api/handlers/http/admin"
	"washops/internal/api/handlers/http/public"
	"washops/internal/api/handlers/http/requests"
	"washops/internal/api/handlers/http/system"
	"washops/internal/config"
	"washops/internal/domain"
	"washops/internal/middleware"
	mock_service "washops/internal/service/mocks"
	"washops/pkg/e"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type mapLoader map[string]domain.Actor

func (m mapLoader) GetActor(_ context.Context, id string) (*domain.Actor, error) {
	a, ok := m[id]
	if !ok {
		return nil, e.ErrNotFound
	}
	return &a, nil
}

type fixture struct {
	router   http.Handler
	requests *mock_service.MockRequestService
	matcher  *mock_service.MockMatcherService
	stats    *mock_service.MockStatsService
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	logger := slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), &slog.HandlerOptions{Level: slog.LevelError}))
	cfg := &config.Config{
		Http: config.HttpConfig{
			CORSOrigins:    []string{"*"},
			RateLimitRPS:   1000,
			RateLimitBurst: 1000,
		},
		Auth: config.AuthConfig{JWTSecret: testSecret, Issuer: "washops"},
	}

	f := fixture{
		requests: mock_service.NewMockRequestService(ctrl),
		matcher:  mock_service.NewMockMatcherService(ctrl),
		stats:    mock_service.NewMockStatsService(ctrl),
	}
	locations := mock_service.NewMockLocationService(ctrl)
	locations.EXPECT().Current().Return(domain.DefaultHierarchy()).AnyTimes()

	h := api.Handlers{
		Requests: requests.NewHandler(logger, f.requests, mock_service.NewMockAssignmentService(ctrl)),
		Admin: admin.NewHandler(logger, f.matcher, mock_service.NewMockUserService(ctrl),
			mock_service.NewMockAreaService(ctrl), f.stats),
		Public: public.NewHandler(logger, locations),
		System: system.NewHandler(logger, nil, nil),
	}
	actors := mapLoader{
		"admin-1": {ID: "admin-1", Role: domain.RoleAdmin, Active: true},
		"hr-1":    {ID: "hr-1", Role: domain.RoleHR, AssignedTalukas: []string{"Palsana"}, Active: true},
		"w1":      {ID: "w1", Role: domain.RoleEmployee, Active: true},
		"c1":      {ID: "c1", Role: domain.RoleCustomer, Active: true},
	}
	f.router = api.InitRouter(ctx, cfg, h, actors, logger)
	return f
}

func do(t *testing.T, h http.Handler, method, path, subject, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if subject != "" {
		tok, err := middleware.SignActorToken([]byte(testSecret), "washops", subject, time.Minute)
		if err != nil {
			t.Fatalf("sign token: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRouter_HealthIsPublic(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	if rr := do(t, f.router, http.MethodGet, "/api/v1/health", "", ""); rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rr.Code)
	}
}

func TestRouter_RequiresToken(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	for _, path := range []string{"/api/v1/requests", "/api/v1/locations", "/api/v1/stats"} {
		if rr := do(t, f.router, http.MethodGet, path, "", ""); rr.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401 got %d", path, rr.Code)
		}
	}
}

func TestRouter_RoleGates(t *testing.T) {
	t.Parallel()

	id := uuid.New().String()
	tests := []struct {
		name    string
		method  string
		path    string
		subject string
		body    string
	}{
		{"customer stats", http.MethodGet, "/api/v1/stats", "c1", ""},
		{"customer assign", http.MethodPost, "/api/v1/requests/" + id + "/assign", "c1", `{"workerId":"w1"}`},
		{"washer candidates", http.MethodGet, "/api/v1/requests/" + id + "/candidates", "w1", ""},
		{"washer match", http.MethodGet, "/api/v1/washers/match-customer-city/Palsana", "w1", ""},
		{"hr areas", http.MethodGet, "/api/v1/areas/w1", "hr-1", ""},
		{"admin creates request", http.MethodPost, "/api/v1/requests", "admin-1", `{"address":"x"}`},
		{"customer washer queue", http.MethodGet, "/api/v1/washer/requests", "c1", ""},
		{"customer users", http.MethodGet, "/api/v1/users", "c1", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)

			rr := do(t, f.router, tt.method, tt.path, tt.subject, tt.body)
			if rr.Code != http.StatusForbidden {
				t.Fatalf("expected 403 got %d, body=%s", rr.Code, rr.Body.String())
			}
		})
	}
}

func TestRouter_Routes(t *testing.T) {
	t.Parallel()

	t.Run("stats for admin", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.stats.EXPECT().Get(gomock.Any(), gomock.Any()).Return(domain.RequestStats{Total: 1}, nil)

		if rr := do(t, f.router, http.MethodGet, "/api/v1/stats", "admin-1", ""); rr.Code != http.StatusOK {
			t.Fatalf("expected 200 got %d", rr.Code)
		}
	})

	t.Run("match washers for hr", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.matcher.EXPECT().
			FindEligibleInScope(gomock.Any(), gomock.Any(), "Palsana").
			Return([]domain.Worker{{ID: "w1"}}, nil)

		rr := do(t, f.router, http.MethodGet, "/api/v1/washers/match-customer-city/Palsana", "hr-1", "")
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200 got %d, body=%s", rr.Code, rr.Body.String())
		}
	})

	t.Run("washer queue", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.requests.EXPECT().WasherQueue(gomock.Any(), gomock.Any()).Return(nil, nil)

		rr := do(t, f.router, http.MethodGet, "/api/v1/washer/requests", "w1", "")
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200 got %d", rr.Code)
		}
	})

	t.Run("get request", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		id := uuid.New()
		f.requests.EXPECT().Get(gomock.Any(), gomock.Any(), id).Return(&domain.EmergencyRequest{ID: id}, nil)

		rr := do(t, f.router, http.MethodGet, "/api/v1/requests/"+id.String(), "c1", "")
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200 got %d, body=%s", rr.Code, rr.Body.String())
		}
	})

	t.Run("start without body", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		id := uuid.New()
		f.requests.EXPECT().Start(gomock.Any(), gomock.Any(), id, gomock.Nil()).
			Return(&domain.EmergencyRequest{ID: id, Status: domain.StatusInProgress}, nil)

		rr := do(t, f.router, http.MethodPost, "/api/v1/requests/"+id.String()+"/start", "w1", "")
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200 got %d, body=%s", rr.Code, rr.Body.String())
		}
	})

	t.Run("locations", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		if rr := do(t, f.router, http.MethodGet, "/api/v1/locations?city=Anand", "w1", ""); rr.Code != http.StatusOK {
			t.Fatalf("expected 200 got %d", rr.Code)
		}
	})
}
