package domain

import (
	"time"

	"github.com/google/uuid"
)

type RequestStatus string

const (
	StatusPending    RequestStatus = "Pending"
	StatusAssigned   RequestStatus = "Assigned"
	StatusInProgress RequestStatus = "InProgress"
	StatusCompleted  RequestStatus = "Completed"
	StatusCancelled  RequestStatus = "Cancelled"
)

// MaxImages is the number of before/after image slots per request.
const MaxImages = 4

var AllStatuses = []RequestStatus{StatusPending, StatusAssigned, StatusInProgress, StatusCompleted, StatusCancelled}

// statusSpellings lists every stored spelling of each status as its AreaKey.
// Parsing and the storage filters both read this table.
var statusSpellings = map[RequestStatus][]string{
	StatusPending:    {"pending"},
	StatusAssigned:   {"assigned"},
	StatusInProgress: {"inprogress", "in_progress", "in-progress", "in progress"},
	StatusCompleted:  {"completed", "complete"},
	StatusCancelled:  {"cancelled", "canceled"},
}

// ParseRequestStatus accepts the status spellings found in stored rows
// ("in_progress", "canceled", lowercase variants).
func ParseRequestStatus(s string) (RequestStatus, bool) {
	key := AreaKey(s)
	for _, st := range AllStatuses {
		for _, sp := range statusSpellings[st] {
			if sp == key {
				return st, true
			}
		}
	}
	return "", false
}

// Spellings returns the lowercased stored forms that parse to s.
func (s RequestStatus) Spellings() []string {
	return append([]string(nil), statusSpellings[s]...)
}

func (s RequestStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// HasAssignee reports whether a request in this status must carry assignedTo.
func (s RequestStatus) HasAssignee() bool {
	return s == StatusAssigned || s == StatusInProgress || s == StatusCompleted
}

type EmergencyRequest struct {
	ID           uuid.UUID     `json:"id"`
	CustomerID   string        `json:"customerId"`
	Address      string        `json:"address"`
	City         string        `json:"city"`
	Area         string        `json:"area"`
	CarModel     string        `json:"carModel"`
	CarPlate     string        `json:"carPlate"`
	Description  string        `json:"description"`
	Status       RequestStatus `json:"status"`
	AssignedTo   *string       `json:"assignedTo"`
	BeforeImages []string      `json:"beforeImages"`
	AfterImages  []string      `json:"afterImages"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
	CompletedAt  *time.Time    `json:"completedAt"`
}

func (r EmergencyRequest) GeoCity() string { return r.City }
func (r EmergencyRequest) GeoArea() string { return r.Area }
func (r EmergencyRequest) OwnerID() string { return r.CustomerID }

// MatchArea is the name the matcher searches on: the taluka, or the city
// when the taluka was never recorded.
func (r EmergencyRequest) MatchArea() string {
	if a := CanonicalArea(r.Area); a != "" {
		return a
	}
	return CanonicalArea(r.City)
}

func (r EmergencyRequest) AssignedWorker() string {
	if r.AssignedTo == nil {
		return ""
	}
	return *r.AssignedTo
}

// Clone returns a deep copy so a failed transition never leaks into the caller's value.
func (r EmergencyRequest) Clone() EmergencyRequest {
	out := r
	if r.AssignedTo != nil {
		v := *r.AssignedTo
		out.AssignedTo = &v
	}
	if r.CompletedAt != nil {
		v := *r.CompletedAt
		out.CompletedAt = &v
	}
	out.BeforeImages = append([]string(nil), r.BeforeImages...)
	out.AfterImages = append([]string(nil), r.AfterImages...)
	return out
}
