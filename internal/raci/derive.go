package raci

import "github.com/spec-kit/process-raci/internal/domain"

// DeriveRoleActions builds the source records from saved processes: every
// action step a role is assigned to counts as R, every decision step as A.
// Roles are returned in department then role order, including roles with no
// assignments.
func DeriveRoleActions(processes []domain.Process, departments []domain.Department) []domain.RoleActions {
	byRole := make(map[string][]domain.RoleActionItem)
	for _, p := range processes {
		for _, step := range p.Steps {
			a, ok := domain.AssignmentOf(step)
			if !ok || a.RoleID == nil || *a.RoleID == "" {
				continue
			}
			letter := domain.ResponsibilityResponsible
			if step.StepType() == domain.StepTypeDecision {
				letter = domain.ResponsibilityAccountable
			}
			byRole[*a.RoleID] = append(byRole[*a.RoleID], domain.RoleActionItem{
				ProcessID:      p.ID,
				ProcessTitle:   p.Title,
				StepID:         step.StepID(),
				StepLabel:      step.StepLabel(),
				Responsibility: letter,
			})
		}
	}

	var out []domain.RoleActions
	for _, dept := range departments {
		for _, role := range dept.Roles {
			actions := byRole[role.ID]
			if actions == nil {
				actions = []domain.RoleActionItem{}
			}
			out = append(out, domain.RoleActions{
				RoleID:         role.ID,
				DepartmentID:   dept.ID,
				DepartmentName: dept.Name,
				Actions:        actions,
			})
		}
	}
	return out
}
