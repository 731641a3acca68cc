package public

import (
	"log/slog"
	"net/http"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"

	"washops/internal/domain"
	"washops/internal/render"
)

// HierarchySource is the read side of the location store.
type HierarchySource interface {
	Current() *domain.LocationHierarchy
}

type Handler struct {
	logger    *slog.Logger
	Hierarchy HierarchySource
}

func NewHandler(logger *slog.Logger, hierarchy HierarchySource) *Handler {
	return &Handler{
		logger:    logger,
		Hierarchy: hierarchy,
	}
}

type CityView struct {
	City    string   `json:"city"`
	Talukas []string `json:"talukas"`
}

// LocationList is GET /locations, optionally narrowed with ?city=.
func (h *Handler) LocationList(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)

	hier := h.Hierarchy.Current()
	city := strings.TrimSpace(r.URL.Query().Get("city"))

	if city != "" {
		if !hier.HasCity(city) {
			l.Info("unknown city requested", slog.String("city", city))
			render.Fail(w, http.StatusNotFound, render.CodeNotFound, "unknown city")
			return
		}
		render.OK(w, http.StatusOK, []CityView{h.view(hier, city)})
		return
	}

	cities := hier.Cities()
	out := make([]CityView, 0, len(cities))
	for _, c := range cities {
		out = append(out, h.view(hier, c))
	}
	l.Debug("locations listed", slog.Int("cities", len(out)))
	render.OK(w, http.StatusOK, out)
}

func (h *Handler) view(hier *domain.LocationHierarchy, city string) CityView {
	name := city
	for _, c := range hier.Cities() {
		if domain.SameArea(c, city) {
			name = c
			break
		}
	}
	talukas := hier.TalukasOf(city)
	if talukas == nil {
		talukas = []string{}
	}
	return CityView{City: name, Talukas: talukas}
}

func (h *Handler) log(r *http.Request) *slog.Logger {
	reqID := chimw.GetReqID(r.Context())
	if reqID == "" {
		return h.logger
	}
	return h.logger.With(slog.String("request_id", reqID))
}
