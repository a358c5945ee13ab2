package domain

import "time"

// Department represents an organizational unit that owns roles and process steps.
// A Department without a persisted row is a draft: it only exists because a step
// references it by name and is materialized when the process is saved.
type Department struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	Roles     []Role    `json:"roles"`
	Draft     bool      `json:"draft,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// Role is a position inside a department.
type Role struct {
	ID           string    `json:"id"`
	DepartmentID string    `json:"departmentId"`
	Name         string    `json:"name"`
	Color        string    `json:"color"`
	Draft        bool      `json:"draft,omitempty"`
	CreatedAt    time.Time `json:"createdAt,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt,omitempty"`
}

// RoleByID returns the role with the given id when it belongs to the department.
func (d Department) RoleByID(id string) (Role, bool) {
	for _, role := range d.Roles {
		if role.ID == id {
			return role, true
		}
	}
	return Role{}, false
}

// CloneDepartments returns a deep copy so callers can mutate roles freely.
func CloneDepartments(departments []Department) []Department {
	out := make([]Department, len(departments))
	for i, dept := range departments {
		out[i] = dept
		out[i].Roles = append([]Role(nil), dept.Roles...)
	}
	return out
}
