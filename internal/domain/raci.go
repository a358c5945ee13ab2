package domain

import "time"

// Responsibility is one RACI letter. The empty value means unset.
type Responsibility string

const (
	ResponsibilityNone        Responsibility = ""
	ResponsibilityResponsible Responsibility = "R"
	ResponsibilityAccountable Responsibility = "A"
	ResponsibilityConsulted   Responsibility = "C"
	ResponsibilityInformed    Responsibility = "I"
)

// Valid reports whether r is one of R, A, C, I or unset.
func (r Responsibility) Valid() bool {
	switch r {
	case ResponsibilityNone, ResponsibilityResponsible, ResponsibilityAccountable,
		ResponsibilityConsulted, ResponsibilityInformed:
		return true
	}
	return false
}

// RoleActionItem is one process step a role is assigned to.
type RoleActionItem struct {
	ProcessID      string         `json:"processId"`
	ProcessTitle   string         `json:"processTitle"`
	StepID         string         `json:"stepId"`
	StepLabel      string         `json:"stepLabel"`
	Responsibility Responsibility `json:"responsibility"`
}

// RoleActions is the RACI source record for one role.
type RoleActions struct {
	RoleID         string           `json:"roleId"`
	DepartmentID   string           `json:"departmentId"`
	DepartmentName string           `json:"departmentName"`
	Actions        []RoleActionItem `json:"actions"`
}

// ManualAction is a RACI row declared by hand, not tied to a process step.
type ManualAction struct {
	ID           string                    `json:"id"`
	DepartmentID string                    `json:"departmentId"`
	Label        string                    `json:"label"`
	Position     int                       `json:"position"`
	Cells        map[string]Responsibility `json:"cells"`
	CreatedAt    time.Time                 `json:"createdAt,omitempty"`
	UpdatedAt    time.Time                 `json:"updatedAt,omitempty"`
}
