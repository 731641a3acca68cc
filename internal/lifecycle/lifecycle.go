// Package lifecycle holds the emergency request state machine. It is pure:
// callers persist the result with a conditional write keyed on the status
// the transition started from.
package lifecycle

import (
	"fmt"
	"strings"
	"time"

	"washops/internal/domain"
	"washops/pkg/e"
)

type EventKind int

const (
	EventAssign EventKind = iota + 1
	EventStart
	EventComplete
	EventCancel
	EventSetStatus
)

func (k EventKind) String() string {
	switch k {
	case EventAssign:
		return "assign"
	case EventStart:
		return "start"
	case EventComplete:
		return "complete"
	case EventCancel:
		return "cancel"
	case EventSetStatus:
		return "setStatus"
	}
	return fmt.Sprintf("event(%d)", int(k))
}

type Event struct {
	Kind         EventKind
	WorkerID     string
	Target       domain.RequestStatus
	BeforeImages []string
	AfterImages  []string
}

func Assign(workerID string) Event {
	return Event{Kind: EventAssign, WorkerID: workerID}
}

func Start(beforeImages []string) Event {
	return Event{Kind: EventStart, BeforeImages: beforeImages}
}

func Complete(afterImages []string) Event {
	return Event{Kind: EventComplete, AfterImages: afterImages}
}

func Cancel() Event {
	return Event{Kind: EventCancel}
}

// SetStatus is the supervisor override. assignee, before and after are optional.
func SetStatus(target domain.RequestStatus, assignee string, before, after []string) Event {
	return Event{Kind: EventSetStatus, Target: target, WorkerID: assignee, BeforeImages: before, AfterImages: after}
}

// Next returns the status reached from `from` by ev.
func Next(from domain.RequestStatus, ev Event) (domain.RequestStatus, error) {
	switch ev.Kind {
	case EventAssign:
		switch from {
		case domain.StatusPending:
			return domain.StatusAssigned, nil
		case domain.StatusAssigned:
			return from, e.ErrAlreadyAssigned
		}
	case EventStart:
		if from == domain.StatusAssigned {
			return domain.StatusInProgress, nil
		}
	case EventComplete:
		if from == domain.StatusInProgress {
			return domain.StatusCompleted, nil
		}
	case EventCancel:
		switch from {
		case domain.StatusPending, domain.StatusAssigned, domain.StatusInProgress:
			return domain.StatusCancelled, nil
		}
	case EventSetStatus:
		if s, ok := domain.ParseRequestStatus(string(ev.Target)); !ok || s != ev.Target {
			return from, fmt.Errorf("%w: unknown status %q", e.ErrInvalidInput, ev.Target)
		}
		if !from.Terminal() {
			return ev.Target, nil
		}
	}
	return from, fmt.Errorf("%w: %s from %s", e.ErrInvalidTransition, ev.Kind, from)
}

// Apply runs ev against req and returns the updated copy. On error the
// returned request is the unchanged input.
func Apply(req domain.EmergencyRequest, ev Event, now time.Time) (domain.EmergencyRequest, error) {
	if len(ev.BeforeImages) > domain.MaxImages || len(ev.AfterImages) > domain.MaxImages {
		return req, fmt.Errorf("%w: at most %d images per slot", e.ErrInvalidInput, domain.MaxImages)
	}

	to, err := Next(req.Status, ev)
	if err != nil {
		return req, err
	}

	out := req.Clone()
	switch ev.Kind {
	case EventAssign:
		worker := strings.TrimSpace(ev.WorkerID)
		if worker == "" {
			return req, fmt.Errorf("%w: worker id required", e.ErrInvalidInput)
		}
		out.AssignedTo = &worker

	case EventStart:
		if len(ev.BeforeImages) > 0 {
			out.BeforeImages = append([]string(nil), ev.BeforeImages...)
		}

	case EventComplete:
		if len(ev.AfterImages) == 0 {
			return req, e.ErrMissingCompletionEvidence
		}
		out.AfterImages = append([]string(nil), ev.AfterImages...)

	case EventCancel:
		out.AssignedTo = nil

	case EventSetStatus:
		if err := applyOverride(&out, to, ev); err != nil {
			return req, err
		}
	}

	out.Status = to
	out.UpdatedAt = now
	if to == domain.StatusCompleted && out.CompletedAt == nil {
		t := now
		out.CompletedAt = &t
	}
	return out, nil
}

func applyOverride(out *domain.EmergencyRequest, to domain.RequestStatus, ev Event) error {
	if len(ev.AfterImages) > 0 && to != domain.StatusCompleted {
		return fmt.Errorf("%w: after images only allowed when completing", e.ErrInvalidInput)
	}

	if worker := strings.TrimSpace(ev.WorkerID); worker != "" {
		if !to.HasAssignee() {
			return fmt.Errorf("%w: %s requests carry no assignee", e.ErrInvalidInput, to)
		}
		out.AssignedTo = &worker
	}
	if to.HasAssignee() && out.AssignedWorker() == "" {
		return fmt.Errorf("%w: %s requires an assignee", e.ErrInvalidInput, to)
	}
	if !to.HasAssignee() {
		out.AssignedTo = nil
	}

	if len(ev.BeforeImages) > 0 {
		out.BeforeImages = append([]string(nil), ev.BeforeImages...)
	}
	if to == domain.StatusCompleted {
		if len(ev.AfterImages) > 0 {
			out.AfterImages = append([]string(nil), ev.AfterImages...)
		}
		if len(out.AfterImages) == 0 {
			return e.ErrMissingCompletionEvidence
		}
	}
	return nil
}
