package domain

import (
	"encoding/json"
	"time"
)

// Activity is one audit entry: something happened to a subject (a process,
// department, role or manual action).
type Activity struct {
	ID        string          `json:"id"`
	SubjectID string          `json:"subjectId"`
	EventType string          `json:"eventType"`
	ActorID   string          `json:"actorId,omitempty"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"createdAt"`
}
