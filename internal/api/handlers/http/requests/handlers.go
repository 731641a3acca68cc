package requests

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"washops/internal/domain"
	"washops/internal/middleware"
	"washops/internal/render"
	"washops/internal/service"
)

type Handler struct {
	logger     *slog.Logger
	Requests   service.RequestService
	Assignment service.AssignmentService
}

func NewHandler(logger *slog.Logger, requests service.RequestService, assignment service.AssignmentService) *Handler {
	return &Handler{
		logger:     logger,
		Requests:   requests,
		Assignment: assignment,
	}
}

func (h *Handler) log(r *http.Request) *slog.Logger {
	reqID := chimw.GetReqID(r.Context())
	if reqID == "" {
		return h.logger
	}
	return h.logger.With(slog.String("request_id", reqID))
}

func (h *Handler) RequestCreate(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	l.Debug("RequestCreate", slog.String("remote", r.RemoteAddr))

	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	body, ok := bound[domain.CreateEmergencyRequest](w, r)
	if !ok {
		return
	}

	req, err := h.Requests.Create(r.Context(), actor, body)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	l.Info("request created", slog.String("id", req.ID.String()), slog.String("area", req.MatchArea()))
	render.OK(w, http.StatusCreated, req)
}

func (h *Handler) RequestList(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	l.Debug("RequestList", slog.String("query", r.URL.RawQuery), slog.String("remote", r.RemoteAddr))

	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := domain.ListRequestsFilter{
		Page:  parseInt(q.Get("page"), 1),
		Limit: parseInt(q.Get("limit"), 20),
	}
	if raw := q.Get("status"); raw != "" {
		st, ok := domain.ParseRequestStatus(raw)
		if !ok {
			l.Warn("invalid status filter", slog.String("status", raw))
			render.Fail(w, http.StatusBadRequest, render.CodeInvalidInput, "unknown status")
			return
		}
		filter.Status = &st
	}

	resp, err := h.Requests.List(r.Context(), actor, filter)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	l.Info("requests listed", slog.Int("count", len(resp.Requests)), slog.Int("total", resp.Total))
	render.OK(w, http.StatusOK, resp)
}

func (h *Handler) RequestGet(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.requestID(w, r)
	if !ok {
		return
	}

	req, err := h.Requests.Get(r.Context(), actor, id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	render.OK(w, http.StatusOK, req)
}

// RequestUpdate is PUT /requests/{id}: the body's status picks the transition.
func (h *Handler) RequestUpdate(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)

	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.requestID(w, r)
	if !ok {
		return
	}
	body, ok := bound[domain.UpdateRequestBody](w, r)
	if !ok {
		return
	}

	l.Info("updating request",
		slog.String("id", id.String()),
		slog.String("status", body.Status),
		slog.Bool("with_assignee", body.AssignedTo != nil),
	)

	req, err := h.Requests.Update(r.Context(), actor, id, body)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	render.OK(w, http.StatusOK, req)
}

func (h *Handler) RequestAssign(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)

	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.requestID(w, r)
	if !ok {
		return
	}
	body, ok := bound[domain.AssignRequestBody](w, r)
	if !ok {
		return
	}

	req, err := h.Assignment.Assign(r.Context(), id, body.WorkerID, actor)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	l.Info("request assigned", slog.String("id", id.String()), slog.String("worker_id", body.WorkerID))
	render.OK(w, http.StatusOK, req)
}

func (h *Handler) RequestCandidates(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.requestID(w, r)
	if !ok {
		return
	}

	workers, err := h.Assignment.Candidates(r.Context(), id, actor)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	render.OK(w, http.StatusOK, workers)
}

func (h *Handler) RequestStart(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.requestID(w, r)
	if !ok {
		return
	}
	body, ok := bound[domain.StartRequestBody](w, r)
	if !ok {
		return
	}

	req, err := h.Requests.Start(r.Context(), actor, id, body.BeforeImages)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	render.OK(w, http.StatusOK, req)
}

func (h *Handler) RequestComplete(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.requestID(w, r)
	if !ok {
		return
	}
	body, ok := bound[domain.CompleteRequestBody](w, r)
	if !ok {
		return
	}

	req, err := h.Requests.Complete(r.Context(), actor, id, body.AfterImages)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	render.OK(w, http.StatusOK, req)
}

func (h *Handler) RequestCancel(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)

	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.requestID(w, r)
	if !ok {
		return
	}

	req, err := h.Requests.Cancel(r.Context(), actor, id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	l.Info("request cancelled", slog.String("id", id.String()), slog.String("actor_id", actor.ID))
	render.OK(w, http.StatusOK, req)
}

// WasherQueue is GET /washer/requests for the calling washer.
func (h *Handler) WasherQueue(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	reqs, err := h.Requests.WasherQueue(r.Context(), actor)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if reqs == nil {
		reqs = []domain.EmergencyRequest{}
	}
	render.OK(w, http.StatusOK, reqs)
}

func (h *Handler) actor(w http.ResponseWriter, r *http.Request) (domain.Actor, bool) {
	a, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		render.Fail(w, http.StatusUnauthorized, render.CodeUnauthorized, "not authenticated")
	}
	return a, ok
}

func (h *Handler) requestID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		h.log(r).Warn("invalid id", slog.String("id", idStr), slog.String("error", err.Error()))
		render.Fail(w, http.StatusBadRequest, render.CodeInvalidInput, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}
