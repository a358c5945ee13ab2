package dto

import (
	"github.com/spec-kit/process-raci/internal/domain"
)

// CreateProcessRequest payload. Steps are optional; a new process starts as
// start followed by finish.
type CreateProcessRequest struct {
	Title string       `json:"title" validate:"required,max=200"`
	Steps domain.Steps `json:"steps"`
}

// UpdateProcessRequest payload. Absent fields are left unchanged.
type UpdateProcessRequest struct {
	Title *string      `json:"title" validate:"omitempty,min=1,max=200"`
	Steps domain.Steps `json:"steps"`
}

// InsertStepRequest payload.
type InsertStepRequest struct {
	Index               int             `json:"index" validate:"gte=0"`
	Type                domain.StepType `json:"type" validate:"omitempty,oneof=action decision"`
	Label               *string         `json:"label" validate:"omitempty,max=500"`
	DepartmentID        *string         `json:"departmentId"`
	RoleID              *string         `json:"roleId"`
	DraftDepartmentName *string         `json:"draftDepartmentName" validate:"omitempty,max=120"`
	DraftRoleName       *string         `json:"draftRoleName" validate:"omitempty,max=120"`
}

// UpdateStepRequest payload. Absent fields are left unchanged; clearAssignment
// removes the department and role.
type UpdateStepRequest struct {
	Type                domain.StepType `json:"type" validate:"omitempty,oneof=action decision"`
	Label               *string         `json:"label" validate:"omitempty,max=500"`
	DepartmentID        *string         `json:"departmentId"`
	RoleID              *string         `json:"roleId"`
	DraftDepartmentName *string         `json:"draftDepartmentName" validate:"omitempty,max=120"`
	DraftRoleName       *string         `json:"draftRoleName" validate:"omitempty,max=120"`
	ClearAssignment     bool            `json:"clearAssignment"`
}

// MoveStepRequest payload.
type MoveStepRequest struct {
	From int `json:"from" validate:"gte=1"`
	To   int `json:"to" validate:"gte=1"`
}

// BranchRequest points a decision branch at a step; a null target falls through.
type BranchRequest struct {
	Branch   string  `json:"branch" validate:"required,oneof=yes no"`
	TargetID *string `json:"targetId"`
}

// ProposalRequest asks for an AI rewrite of the process.
type ProposalRequest struct {
	Instruction string `json:"instruction" validate:"required,max=4000"`
}

// ApplyProposalRequest persists a previewed candidate.
type ApplyProposalRequest struct {
	Title string       `json:"title" validate:"max=200"`
	Steps domain.Steps `json:"steps" validate:"required,min=2"`
}
