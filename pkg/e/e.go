package e

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func Wrap(message string, err error) error {
	return fmt.Errorf("%s: %w", message, err)
}

var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrInvalidInput    = errors.New("invalid input")
	ErrInternal        = errors.New("internal error")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrEventQueueEmpty = errors.New("event queue is empty")

	// Storage failures the caller may retry. The core never retries on its own.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// Request lifecycle and assignment outcomes. All of them are recoverable and
// rendered to the dashboard with a specific message.
var (
	ErrInvalidTransition         = errors.New("invalid transition")
	ErrOutOfScope                = errors.New("out of scope")
	ErrWorkerNotEligible         = errors.New("worker not eligible")
	ErrNoEligibleWorkers         = errors.New("no eligible workers")
	ErrMissingCompletionEvidence = errors.New("missing completion evidence")

	// ErrAlreadyAssigned is an invalid transition too: errors.Is matches both.
	ErrAlreadyAssigned = fmt.Errorf("%w: already assigned", ErrInvalidTransition)
)

func WrapError(ctx context.Context, op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w: %v", op, ErrStorageUnavailable, err)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%s: %w", op, ErrConflict)
		case "23503", "23514", "22P02":
			return fmt.Errorf("%s: %w", op, ErrInvalidInput)
		default:
			return fmt.Errorf("%s: pg error %s: %w", op, pgErr.Code, ErrStorageUnavailable)
		}
	}
	return fmt.Errorf("%s: %w: %v", op, ErrStorageUnavailable, err)
}
