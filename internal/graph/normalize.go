package graph

import (
	"strings"

	"github.com/spec-kit/process-raci/internal/domain"
	"github.com/spec-kit/process-raci/internal/registry"
)

// Normalize validates the anchors of steps and returns a normalized copy.
func Normalize(steps []domain.Step, reg *registry.Registry) ([]domain.Step, error) {
	if err := Validate(steps); err != nil {
		return nil, err
	}
	ids := StepIDs(steps)
	out := make([]domain.Step, len(steps))
	for i, step := range steps {
		out[i] = NormalizeStep(step, reg, ids)
	}
	return out, nil
}

// NormalizeStep repairs the references of one step against reg and the ids
// of its process:
//   - draft department/role names resolve to ids once a matching entity exists
//   - ids that no longer resolve are cleared
//   - a role outside the step's department is dropped; a role alone brings its department
//   - decision targets missing from ids fall back to nil (next step in order)
//
// Applying it twice yields the same step.
func NormalizeStep(step domain.Step, reg *registry.Registry, ids IDSet) domain.Step {
	switch s := step.(type) {
	case domain.ActionStep:
		s.Assignment = normalizeAssignment(s.Assignment, reg)
		return s
	case domain.DecisionStep:
		s.Assignment = normalizeAssignment(s.Assignment, reg)
		s.YesTargetID = normalizeTarget(s.YesTargetID, ids)
		s.NoTargetID = normalizeTarget(s.NoTargetID, ids)
		return s
	default:
		return step
	}
}

func normalizeTarget(target *string, ids IDSet) *string {
	if target == nil || *target == "" || !ids.Has(*target) {
		return nil
	}
	v := *target
	return &v
}

func normalizeAssignment(in domain.Assignment, reg *registry.Registry) domain.Assignment {
	a := domain.Assignment{
		DepartmentID:        nonEmpty(in.DepartmentID),
		RoleID:              nonEmpty(in.RoleID),
		DraftDepartmentName: trimmed(in.DraftDepartmentName),
		DraftRoleName:       trimmed(in.DraftRoleName),
	}

	if a.DepartmentID != nil {
		if _, ok := reg.Department(*a.DepartmentID); ok {
			a.DraftDepartmentName = nil
		} else {
			a.DepartmentID = nil
		}
	}
	if a.DepartmentID == nil && a.DraftDepartmentName != nil {
		if dept, ok := reg.DepartmentByName(*a.DraftDepartmentName); ok && dept.ID != "" {
			a.DepartmentID = domain.StringPtr(dept.ID)
			a.DraftDepartmentName = nil
		}
	}

	if a.RoleID != nil {
		role, ok := reg.Role(*a.RoleID)
		switch {
		case !ok:
			a.RoleID = nil
		case a.DepartmentID == nil && a.DraftDepartmentName == nil:
			if _, deptOK := reg.Department(role.DepartmentID); deptOK {
				a.DepartmentID = domain.StringPtr(role.DepartmentID)
			} else {
				a.RoleID = nil
			}
		case a.DepartmentID == nil || *a.DepartmentID != role.DepartmentID:
			a.RoleID = nil
		}
	}
	if a.RoleID == nil && a.DraftRoleName != nil {
		if role, ok := resolveRoleName(a, reg); ok {
			a.RoleID = domain.StringPtr(role.ID)
			if a.DepartmentID == nil {
				a.DepartmentID = domain.StringPtr(role.DepartmentID)
			}
		}
	}
	if a.RoleID != nil {
		a.DraftRoleName = nil
	}
	return a
}

func resolveRoleName(a domain.Assignment, reg *registry.Registry) (domain.Role, bool) {
	name := *a.DraftRoleName
	if a.DepartmentID != nil {
		role, ok := reg.RoleByName(*a.DepartmentID, name)
		return role, ok && role.ID != ""
	}
	if a.DraftDepartmentName != nil {
		return domain.Role{}, false
	}
	candidates := reg.RolesNamed(name)
	if len(candidates) != 1 || candidates[0].ID == "" {
		return domain.Role{}, false
	}
	if _, ok := reg.Department(candidates[0].DepartmentID); !ok {
		return domain.Role{}, false
	}
	return candidates[0], true
}

func nonEmpty(p *string) *string {
	if p == nil || *p == "" {
		return nil
	}
	v := *p
	return &v
}

func trimmed(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}
