// Package render writes the JSON envelope every endpoint answers with:
// {"success": true, "data": ...} or {"success": false, "code": ..., "error": ...}.
package render

import (
	"encoding/json"
	"errors"
	"net/http"

	"washops/pkg/e"
)

const (
	CodeInvalidPayload            = "invalid_payload"
	CodeInvalidInput              = "invalid_input"
	CodeUnauthorized              = "unauthorized"
	CodeForbidden                 = "forbidden"
	CodeNotFound                  = "not_found"
	CodeConflict                  = "conflict"
	CodeRateLimited               = "rate_limit_exceeded"
	CodeInvalidTransition         = "invalid_transition"
	CodeAlreadyAssigned           = "already_assigned"
	CodeOutOfScope                = "out_of_scope"
	CodeWorkerNotEligible         = "worker_not_eligible"
	CodeNoEligibleWorkers         = "no_eligible_workers"
	CodeMissingCompletionEvidence = "missing_completion_evidence"
	CodeStorageUnavailable        = "storage_unavailable"
	CodeInternal                  = "internal_error"
)

type successBody struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type errorBody struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Error   string `json:"error"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func OK(w http.ResponseWriter, status int, data any) {
	JSON(w, status, successBody{Success: true, Data: data})
}

func Fail(w http.ResponseWriter, status int, code, msg string) {
	JSON(w, status, errorBody{Success: false, Code: code, Error: msg})
}

// Status maps a service error onto an HTTP status and a stable code.
// AlreadyAssigned is tested before InvalidTransition since it wraps it.
func Status(err error) (int, string) {
	switch {
	case errors.Is(err, e.ErrAlreadyAssigned):
		return http.StatusConflict, CodeAlreadyAssigned
	case errors.Is(err, e.ErrInvalidTransition):
		return http.StatusConflict, CodeInvalidTransition
	case errors.Is(err, e.ErrConflict):
		return http.StatusConflict, CodeConflict
	case errors.Is(err, e.ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, e.ErrInvalidInput):
		return http.StatusBadRequest, CodeInvalidInput
	case errors.Is(err, e.ErrMissingCompletionEvidence):
		return http.StatusUnprocessableEntity, CodeMissingCompletionEvidence
	case errors.Is(err, e.ErrWorkerNotEligible):
		return http.StatusUnprocessableEntity, CodeWorkerNotEligible
	case errors.Is(err, e.ErrNoEligibleWorkers):
		return http.StatusNotFound, CodeNoEligibleWorkers
	case errors.Is(err, e.ErrOutOfScope):
		return http.StatusForbidden, CodeOutOfScope
	case errors.Is(err, e.ErrForbidden):
		return http.StatusForbidden, CodeForbidden
	case errors.Is(err, e.ErrUnauthorized):
		return http.StatusUnauthorized, CodeUnauthorized
	case errors.Is(err, e.ErrStorageUnavailable):
		return http.StatusServiceUnavailable, CodeStorageUnavailable
	}
	return http.StatusInternalServerError, CodeInternal
}

// Error writes err through Status. Internal details never reach the client;
// the message is the sentinel's text.
func Error(w http.ResponseWriter, err error) {
	status, code := Status(err)
	Fail(w, status, code, publicMessage(code))
}

func publicMessage(code string) string {
	switch code {
	case CodeAlreadyAssigned:
		return e.ErrAlreadyAssigned.Error()
	case CodeInvalidTransition:
		return e.ErrInvalidTransition.Error()
	case CodeConflict:
		return e.ErrConflict.Error()
	case CodeNotFound:
		return e.ErrNotFound.Error()
	case CodeInvalidInput:
		return e.ErrInvalidInput.Error()
	case CodeMissingCompletionEvidence:
		return e.ErrMissingCompletionEvidence.Error()
	case CodeWorkerNotEligible:
		return e.ErrWorkerNotEligible.Error()
	case CodeNoEligibleWorkers:
		return e.ErrNoEligibleWorkers.Error()
	case CodeOutOfScope:
		return e.ErrOutOfScope.Error()
	case CodeForbidden:
		return e.ErrForbidden.Error()
	case CodeUnauthorized:
		return e.ErrUnauthorized.Error()
	case CodeStorageUnavailable:
		return e.ErrStorageUnavailable.Error()
	}
	return e.ErrInternal.Error()
}
