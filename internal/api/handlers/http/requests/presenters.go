package requests

import (
	"log/slog"
	"net/http"
	"strconv"

	"washops/internal/middleware"
	"washops/internal/render"
)

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	l := h.log(r)

	status, code := render.Status(err)
	attrs := []any{
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("code", code),
		slog.Any("error", err),
	}
	if status >= http.StatusInternalServerError {
		l.Error("handler error", attrs...)
	} else {
		l.Info("request rejected", attrs...)
	}

	render.Error(w, err)
}

func bound[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	body, ok := middleware.Body[T](r.Context())
	if !ok {
		render.Fail(w, http.StatusBadRequest, render.CodeInvalidPayload, "missing body")
	}
	return body, ok
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
