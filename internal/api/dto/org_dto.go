package dto

// EntityRequest creates a department or a role. An empty color is assigned
// from the palette.
type EntityRequest struct {
	Name  string `json:"name" validate:"required,max=120"`
	Color string `json:"color" validate:"omitempty,color"`
}

// EntityPatchRequest renames or recolors a department or a role.
type EntityPatchRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=1,max=120"`
	Color *string `json:"color" validate:"omitempty,color"`
}
