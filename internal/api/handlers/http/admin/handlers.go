package admin

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"washops/internal/domain"
	"washops/internal/middleware"
	"washops/internal/render"
	"washops/internal/service"
)

// Handler serves the dashboard endpoints: washer matching, user lists, area
// assignments and stats.
type Handler struct {
	logger  *slog.Logger
	Matcher service.MatcherService
	Users   service.UserService
	Areas   service.AreaService
	Stats   service.StatsService
}

func NewHandler(logger *slog.Logger, matcher service.MatcherService, users service.UserService, areas service.AreaService, stats service.StatsService) *Handler {
	return &Handler{
		logger:  logger,
		Matcher: matcher,
		Users:   users,
		Areas:   areas,
		Stats:   stats,
	}
}

func (h *Handler) log(r *http.Request) *slog.Logger {
	reqID := chimw.GetReqID(r.Context())
	if reqID == "" {
		return h.logger
	}
	return h.logger.With(slog.String("request_id", reqID))
}

// MatchWashers is GET /washers/match-customer-city/{area}.
func (h *Handler) MatchWashers(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)

	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	area := chi.URLParam(r, "area")
	if v, err := url.PathUnescape(area); err == nil {
		area = v
	}
	area = strings.TrimSpace(area)
	l.Debug("MatchWashers", slog.String("area", area), slog.String("actor_id", actor.ID))

	workers, err := h.Matcher.FindEligibleInScope(r.Context(), actor, area)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if workers == nil {
		workers = []domain.Worker{}
	}

	l.Info("washers matched", slog.String("area", area), slog.Int("count", len(workers)))
	render.OK(w, http.StatusOK, workers)
}

func (h *Handler) UserList(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	users, err := h.Users.List(r.Context(), actor)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if users == nil {
		users = []domain.Actor{}
	}
	render.OK(w, http.StatusOK, users)
}

func (h *Handler) AreaGet(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	assignment, err := h.Areas.Get(r.Context(), actor, chi.URLParam(r, "employeeId"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	render.OK(w, http.StatusOK, assignment)
}

func (h *Handler) AreaUpdate(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)

	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	body, ok := middleware.Body[domain.UpdateAreasRequest](r.Context())
	if !ok {
		render.Fail(w, http.StatusBadRequest, render.CodeInvalidPayload, "missing body")
		return
	}

	employeeID := chi.URLParam(r, "employeeId")
	assignment, err := h.Areas.Update(r.Context(), actor, employeeID, body)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	l.Info("areas updated",
		slog.String("employee_id", employeeID),
		slog.Int("cities", len(assignment.AssignedCities)),
		slog.Int("talukas", len(assignment.AssignedTalukas)),
	)
	render.OK(w, http.StatusOK, assignment)
}

func (h *Handler) AdminStats(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)

	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	stats, err := h.Stats.Get(r.Context(), actor)
	if err != nil {
		l.Error("Stats.Get failed", slog.Any("error", err))
		h.handleError(w, r, err)
		return
	}

	l.Info("stats success", slog.Int("total", stats.Total))
	render.OK(w, http.StatusOK, stats)
}

func (h *Handler) actor(w http.ResponseWriter, r *http.Request) (domain.Actor, bool) {
	a, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		render.Fail(w, http.StatusUnauthorized, render.CodeUnauthorized, "not authenticated")
	}
	return a, ok
}
