package domain

import (
	"time"

	"github.com/google/uuid"
)

type RequestEventKind string

const (
	EventCreated   RequestEventKind = "created"
	EventAssigned  RequestEventKind = "assigned"
	EventStarted   RequestEventKind = "started"
	EventCompleted RequestEventKind = "completed"
	EventCancelled RequestEventKind = "cancelled"
	EventOverride  RequestEventKind = "status_override"
)

// RequestEvent is published after every persisted transition.
type RequestEvent struct {
	Kind       RequestEventKind `json:"kind"`
	RequestID  uuid.UUID        `json:"requestId"`
	Status     RequestStatus    `json:"status"`
	AssignedTo *string          `json:"assignedTo,omitempty"`
	ActorID    string           `json:"actorId"`
	City       string           `json:"city"`
	Area       string           `json:"area"`
	At         time.Time        `json:"at"`
}
