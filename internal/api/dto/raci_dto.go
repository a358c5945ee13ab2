package dto

import "github.com/spec-kit/process-raci/internal/domain"

// ActionRequest creates or renames a manual RACI action.
type ActionRequest struct {
	Label string `json:"label" validate:"required,max=300"`
}

// CellRequest sets one cell; an empty value clears it.
type CellRequest struct {
	Value domain.Responsibility `json:"value" validate:"omitempty,oneof=R A C I r a c i"`
}
