package domain

import "time"

// MemberRole is the access level of a user within the organization.
type MemberRole string

const (
	MemberRoleOwner  MemberRole = "OWNER"
	MemberRoleEditor MemberRole = "EDITOR"
	MemberRoleViewer MemberRole = "VIEWER"
)

// CanEdit reports whether the role may mutate processes and the org chart.
func (r MemberRole) CanEdit() bool {
	return r == MemberRoleOwner || r == MemberRoleEditor
}

// User is an authenticated member of the organization.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         MemberRole
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
