package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"washops/internal/render"
	"washops/pkg/validator"
)

type bodyKey struct{}

// maxBodyBytes bounds JSON payloads; image references are URLs, not blobs.
const maxBodyBytes = 1 << 20

// BindJSON decodes the body into a fresh T, validates it and stores it in the
// request context for Body to pick up. An empty body binds the zero value.
func BindJSON[T any]() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var target T
			err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&target)
			if err != nil && !errors.Is(err, io.EOF) {
				render.Fail(w, http.StatusBadRequest, render.CodeInvalidPayload, "invalid JSON")
				return
			}

			if err := validator.ValidateStruct(&target); err != nil {
				render.Fail(w, http.StatusBadRequest, render.CodeInvalidInput, err.Error())
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), bodyKey{}, target)))
		})
	}
}

// Body returns the payload bound by BindJSON[T].
func Body[T any](ctx context.Context) (T, bool) {
	v, ok := ctx.Value(bodyKey{}).(T)
	return v, ok
}
