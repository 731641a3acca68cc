package requests_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"

	"washops/internal/api/handlers/http/requests"
	"washops/internal/domain"
	"washops/internal/middleware"
	mock_service "washops/internal/service/mocks"
	"washops/pkg/e"
)

var (
	admin    = domain.Actor{ID: "admin-1", Role: domain.RoleAdmin, Active: true}
	customer = domain.Actor{ID: "c1", Role: domain.RoleCustomer, Active: true}
	w1       = domain.Actor{ID: "w1", Role: domain.RoleEmployee, EmployeeType: domain.EmployeeWasher, HomeArea: "Palsana", Active: true}
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Code    string          `json:"code"`
	Error   string          `json:"error"`
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) envelope {
	t.Helper()
	var out envelope
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid json response: %v, body=%s", err, rr.Body.String())
	}
	return out
}

func newRequest(method, target, body string, actor *domain.Actor, params map[string]string) *http.Request {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, bytes.NewBufferString(body))
		r.Header.Set("Content-Type", "application/json")
	}
	ctx := r.Context()
	if actor != nil {
		ctx = middleware.WithActor(ctx, *actor)
	}
	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	return r.WithContext(ctx)
}

func serve[T any](h http.HandlerFunc, r *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	middleware.BindJSON[T]()(h).ServeHTTP(rr, r)
	return rr
}

func TestRequestCreate_OK(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	reqSvc := mock_service.NewMockRequestService(ctrl)
	h := requests.NewHandler(newTestLogger(), reqSvc, mock_service.NewMockAssignmentService(ctrl))

	want := &domain.EmergencyRequest{ID: uuid.New(), CustomerID: "c1", City: "Surat", Area: "Palsana", Status: domain.StatusPending}

	reqSvc.EXPECT().
		Create(gomock.Any(), customer, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ domain.Actor, in domain.CreateEmergencyRequest) (*domain.EmergencyRequest, error) {
			if in.AreaFields.Value() != "Palsana" || in.CarPlate != "GJ05AB1234" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return want, nil
		})

	body := `{"address":"12 Station Road","taluko":"Palsana","carModel":"Swift","carPlate":"GJ05AB1234"}`
	rr := serve[domain.CreateEmergencyRequest](h.RequestCreate, newRequest(http.MethodPost, "/api/v1/requests", body, &customer, nil))

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected %d got %d, body=%s", http.StatusCreated, rr.Code, rr.Body.String())
	}
	env := decode(t, rr)
	var got domain.EmergencyRequest
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if !env.Success || got.ID != want.ID {
		t.Fatalf("unexpected response: %+v", env)
	}
}

func TestRequestCreate_ValidationError_400(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := requests.NewHandler(newTestLogger(), mock_service.NewMockRequestService(ctrl), mock_service.NewMockAssignmentService(ctrl))

	body := `{"address":"x","carModel":"m","carPlate":"p","beforeImages":["a","b","c","d","e"]}`
	rr := serve[domain.CreateEmergencyRequest](h.RequestCreate, newRequest(http.MethodPost, "/api/v1/requests", body, &customer, nil))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d, body=%s", rr.Code, rr.Body.String())
	}
}

func TestRequestCreate_NoActor_401(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := requests.NewHandler(newTestLogger(), mock_service.NewMockRequestService(ctrl), mock_service.NewMockAssignmentService(ctrl))

	body := `{"address":"x","city":"Surat","carModel":"m","carPlate":"p"}`
	rr := serve[domain.CreateEmergencyRequest](h.RequestCreate, newRequest(http.MethodPost, "/api/v1/requests", body, nil, nil))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rr.Code)
	}
}

func TestRequestList_ParsesQuery(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	reqSvc := mock_service.NewMockRequestService(ctrl)
	h := requests.NewHandler(newTestLogger(), reqSvc, mock_service.NewMockAssignmentService(ctrl))

	reqSvc.EXPECT().
		List(gomock.Any(), admin, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ domain.Actor, f domain.ListRequestsFilter) (domain.ListRequestsResponse, error) {
			if f.Status == nil || *f.Status != domain.StatusInProgress || f.Page != 2 || f.Limit != 5 {
				t.Fatalf("unexpected filter: %+v", f)
			}
			return domain.ListRequestsResponse{Requests: []domain.EmergencyRequest{}, Page: 2, Limit: 5}, nil
		})

	rr := httptest.NewRecorder()
	h.RequestList(rr, newRequest(http.MethodGet, "/api/v1/requests?status=in_progress&page=2&limit=5", "", &admin, nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d, body=%s", rr.Code, rr.Body.String())
	}
}

func TestRequestList_BadStatus_400(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := requests.NewHandler(newTestLogger(), mock_service.NewMockRequestService(ctrl), mock_service.NewMockAssignmentService(ctrl))

	rr := httptest.NewRecorder()
	h.RequestList(rr, newRequest(http.MethodGet, "/api/v1/requests?status=archived", "", &admin, nil))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rr.Code)
	}
}

func TestRequestGet_InvalidID_400(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := requests.NewHandler(newTestLogger(), mock_service.NewMockRequestService(ctrl), mock_service.NewMockAssignmentService(ctrl))

	rr := httptest.NewRecorder()
	h.RequestGet(rr, newRequest(http.MethodGet, "/api/v1/requests/nope", "", &admin, map[string]string{"id": "nope"}))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rr.Code)
	}
}

func TestRequestGet_OutOfScope_403(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	reqSvc := mock_service.NewMockRequestService(ctrl)
	h := requests.NewHandler(newTestLogger(), reqSvc, mock_service.NewMockAssignmentService(ctrl))

	id := uuid.New()
	reqSvc.EXPECT().Get(gomock.Any(), customer, id).Return(nil, fmt.Errorf("service.Requests.Get: %w", e.ErrOutOfScope))

	rr := httptest.NewRecorder()
	h.RequestGet(rr, newRequest(http.MethodGet, "/api/v1/requests/"+id.String(), "", &customer, map[string]string{"id": id.String()}))

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rr.Code)
	}
	if env := decode(t, rr); env.Success || env.Code != "out_of_scope" {
		t.Fatalf("unexpected body: %+v", env)
	}
}

func TestRequestAssign_ErrorMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err    error
		status int
		code   string
	}{
		{err: e.ErrAlreadyAssigned, status: http.StatusConflict, code: "already_assigned"},
		{err: e.ErrInvalidTransition, status: http.StatusConflict, code: "invalid_transition"},
		{err: e.ErrWorkerNotEligible, status: http.StatusUnprocessableEntity, code: "worker_not_eligible"},
		{err: e.ErrOutOfScope, status: http.StatusForbidden, code: "out_of_scope"},
		{err: e.ErrNotFound, status: http.StatusNotFound, code: "not_found"},
		{err: e.ErrStorageUnavailable, status: http.StatusServiceUnavailable, code: "storage_unavailable"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.code, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			assign := mock_service.NewMockAssignmentService(ctrl)
			h := requests.NewHandler(newTestLogger(), mock_service.NewMockRequestService(ctrl), assign)

			id := uuid.New()
			assign.EXPECT().
				Assign(gomock.Any(), id, "w1", admin).
				Return(nil, fmt.Errorf("service.Coordinator.Assign: %w", tc.err))

			r := newRequest(http.MethodPost, "/api/v1/requests/"+id.String()+"/assign", `{"workerId":"w1"}`, &admin, map[string]string{"id": id.String()})
			rr := serve[domain.AssignRequestBody](h.RequestAssign, r)

			if rr.Code != tc.status {
				t.Fatalf("expected %d got %d, body=%s", tc.status, rr.Code, rr.Body.String())
			}
			if env := decode(t, rr); env.Code != tc.code {
				t.Fatalf("expected code %s got %s", tc.code, env.Code)
			}
		})
	}
}

func TestRequestCandidates_NoneEligible_404(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	assign := mock_service.NewMockAssignmentService(ctrl)
	h := requests.NewHandler(newTestLogger(), mock_service.NewMockRequestService(ctrl), assign)

	id := uuid.New()
	assign.EXPECT().Candidates(gomock.Any(), id, admin).Return([]domain.Worker{}, e.ErrNoEligibleWorkers)

	rr := httptest.NewRecorder()
	h.RequestCandidates(rr, newRequest(http.MethodGet, "/", "", &admin, map[string]string{"id": id.String()}))

	if rr.Code != http.StatusNotFound || decode(t, rr).Code != "no_eligible_workers" {
		t.Fatalf("unexpected response %d %s", rr.Code, rr.Body.String())
	}
}

func TestRequestStart_EmptyBody(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	reqSvc := mock_service.NewMockRequestService(ctrl)
	h := requests.NewHandler(newTestLogger(), reqSvc, mock_service.NewMockAssignmentService(ctrl))

	id := uuid.New()
	reqSvc.EXPECT().
		Start(gomock.Any(), w1, id, gomock.Nil()).
		Return(&domain.EmergencyRequest{ID: id, Status: domain.StatusInProgress}, nil)

	rr := serve[domain.StartRequestBody](h.RequestStart, newRequest(http.MethodPost, "/", "", &w1, map[string]string{"id": id.String()}))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d, body=%s", rr.Code, rr.Body.String())
	}
}

func TestRequestComplete_MissingEvidence_422(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	reqSvc := mock_service.NewMockRequestService(ctrl)
	h := requests.NewHandler(newTestLogger(), reqSvc, mock_service.NewMockAssignmentService(ctrl))

	id := uuid.New()
	reqSvc.EXPECT().
		Complete(gomock.Any(), w1, id, gomock.Any()).
		Return(nil, e.ErrMissingCompletionEvidence)

	rr := serve[domain.CompleteRequestBody](h.RequestComplete, newRequest(http.MethodPost, "/", `{"afterImages":[]}`, &w1, map[string]string{"id": id.String()}))

	if rr.Code != http.StatusUnprocessableEntity || decode(t, rr).Code != "missing_completion_evidence" {
		t.Fatalf("unexpected response %d %s", rr.Code, rr.Body.String())
	}
}

func TestRequestUpdate_PassesBody(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	reqSvc := mock_service.NewMockRequestService(ctrl)
	h := requests.NewHandler(newTestLogger(), reqSvc, mock_service.NewMockAssignmentService(ctrl))

	id := uuid.New()
	reqSvc.EXPECT().
		Update(gomock.Any(), admin, id, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ domain.Actor, _ uuid.UUID, body domain.UpdateRequestBody) (*domain.EmergencyRequest, error) {
			if body.Status != "Assigned" || body.AssignedTo == nil || *body.AssignedTo != "w1" {
				t.Fatalf("unexpected body: %+v", body)
			}
			return &domain.EmergencyRequest{ID: id, Status: domain.StatusAssigned, AssignedTo: body.AssignedTo}, nil
		})

	r := newRequest(http.MethodPut, "/", `{"status":"Assigned","assignedTo":"w1"}`, &admin, map[string]string{"id": id.String()})
	rr := serve[domain.UpdateRequestBody](h.RequestUpdate, r)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d, body=%s", rr.Code, rr.Body.String())
	}
}

func TestRequestCancel_Forbidden_403(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	reqSvc := mock_service.NewMockRequestService(ctrl)
	h := requests.NewHandler(newTestLogger(), reqSvc, mock_service.NewMockAssignmentService(ctrl))

	id := uuid.New()
	reqSvc.EXPECT().Cancel(gomock.Any(), w1, id).Return(nil, e.ErrForbidden)

	rr := httptest.NewRecorder()
	h.RequestCancel(rr, newRequest(http.MethodPost, "/", "", &w1, map[string]string{"id": id.String()}))

	if rr.Code != http.StatusForbidden || decode(t, rr).Code != "forbidden" {
		t.Fatalf("unexpected response %d %s", rr.Code, rr.Body.String())
	}
}

func TestWasherQueue_EmptyIsList(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	reqSvc := mock_service.NewMockRequestService(ctrl)
	h := requests.NewHandler(newTestLogger(), reqSvc, mock_service.NewMockAssignmentService(ctrl))

	reqSvc.EXPECT().WasherQueue(gomock.Any(), w1).Return(nil, nil)

	rr := httptest.NewRecorder()
	h.WasherQueue(rr, newRequest(http.MethodGet, "/api/v1/washer/requests", "", &w1, nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rr.Code)
	}
	if got := string(decode(t, rr).Data); got != "[]" {
		t.Fatalf("expected empty list, got %s", got)
	}
}
