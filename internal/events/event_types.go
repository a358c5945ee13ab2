package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventProcessSaved   EventType = "process_saved"
	EventProcessDeleted EventType = "process_deleted"
	EventOrgChanged     EventType = "org_changed"
	EventRaciChanged    EventType = "raci_changed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SubjectID string      `json:"subject_id"`
	ActorID   string      `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// New builds an event with a fresh id and timestamp.
func New(eventType EventType, subjectID, actorID string, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SubjectID: subjectID,
		ActorID:   actorID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// ProcessSavedPayload payload.
type ProcessSavedPayload struct {
	Title              string `json:"title"`
	Steps              int    `json:"steps"`
	DraftDepartments   int    `json:"draft_departments"`
	DraftRoles         int    `json:"draft_roles"`
	RepairedReferences int    `json:"repaired_references"`
}

// OrgChangedPayload payload.
type OrgChangedPayload struct {
	Entity string `json:"entity"`
	Action string `json:"action"`
}

// RaciChangedPayload payload.
type RaciChangedPayload struct {
	DepartmentID string `json:"department_id"`
	ActionID     string `json:"action_id"`
}
