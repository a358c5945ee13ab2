package graph

import (
	"strings"

	"github.com/google/uuid"

	"github.com/spec-kit/process-raci/internal/domain"
	"github.com/spec-kit/process-raci/internal/palette"
	"github.com/spec-kit/process-raci/internal/registry"
)

var draftNamespace = uuid.MustParse("6f1c3f1e-7d0a-4a52-9d1e-8c6b0f8a2d41")

// DraftDepartmentID is the stable client-side id of a draft department.
func DraftDepartmentID(name string) string {
	return uuid.NewSHA1(draftNamespace, []byte("department:"+registry.NameKey(name))).String()
}

// DraftRoleID is the stable client-side id of a draft role inside a department.
func DraftRoleID(departmentID, name string) string {
	return uuid.NewSHA1(draftNamespace, []byte("role:"+departmentID+":"+registry.NameKey(name))).String()
}

// MergeDraftEntitiesFromSteps returns existing plus a draft department for
// every draft department name the steps reference that does not resolve, and
// a draft role for every unresolved draft role name whose department is known.
// New entities take their colors from pal; a nil pal starts after existing.
// The input slice is not modified.
func MergeDraftEntitiesFromSteps(steps []domain.Step, existing []domain.Department, pal *palette.Palette) []domain.Department {
	out := domain.CloneDepartments(existing)
	if pal == nil {
		pal = palette.New(nil, len(existing))
	}

	byID := make(map[string]int, len(out))
	byKey := make(map[string]int, len(out))
	for i, dept := range out {
		if _, ok := byID[dept.ID]; !ok {
			byID[dept.ID] = i
		}
		if key := registry.NameKey(dept.Name); key != "" {
			if _, ok := byKey[key]; !ok {
				byKey[key] = i
			}
		}
	}

	for _, step := range steps {
		a, ok := domain.AssignmentOf(step)
		if !ok {
			continue
		}
		deptIndex := -1
		switch {
		case a.DepartmentID != nil:
			if i, found := byID[*a.DepartmentID]; found {
				deptIndex = i
			}
		case a.DraftDepartmentName != nil:
			name := strings.TrimSpace(*a.DraftDepartmentName)
			key := registry.NameKey(name)
			if key == "" {
				break
			}
			if i, found := byKey[key]; found {
				deptIndex = i
				break
			}
			dept := domain.Department{
				ID:    DraftDepartmentID(name),
				Name:  name,
				Color: pal.Next(),
				Draft: true,
			}
			out = append(out, dept)
			deptIndex = len(out) - 1
			byID[dept.ID] = deptIndex
			byKey[key] = deptIndex
		}

		if deptIndex < 0 || a.RoleID != nil || a.DraftRoleName == nil {
			continue
		}
		name := strings.TrimSpace(*a.DraftRoleName)
		key := registry.NameKey(name)
		if key == "" || hasRoleNamed(out[deptIndex], key) {
			continue
		}
		dept := &out[deptIndex]
		dept.Roles = append(dept.Roles, domain.Role{
			ID:           DraftRoleID(dept.ID, name),
			DepartmentID: dept.ID,
			Name:         name,
			Color:        pal.Next(),
			Draft:        true,
		})
	}
	return out
}

func hasRoleNamed(dept domain.Department, key string) bool {
	for _, role := range dept.Roles {
		if registry.NameKey(role.Name) == key {
			return true
		}
	}
	return false
}

// DraftEntities returns only the draft departments and the draft roles of
// persisted departments, in order.
func DraftEntities(departments []domain.Department) (drafts []domain.Department, roles []domain.Role) {
	for _, dept := range departments {
		if dept.Draft {
			drafts = append(drafts, dept)
			continue
		}
		for _, role := range dept.Roles {
			if role.Draft {
				roles = append(roles, role)
			}
		}
	}
	return drafts, roles
}

// DraftNames rewrites references to draft entities of departments back into
// draft names, so the steps can be saved later without the drafts at hand.
func DraftNames(steps []domain.Step, departments []domain.Department) []domain.Step {
	draftDepts := make(map[string]string)
	draftRoles := make(map[string]string)
	for _, dept := range departments {
		if dept.Draft {
			draftDepts[dept.ID] = dept.Name
		}
		for _, role := range dept.Roles {
			if role.Draft {
				draftRoles[role.ID] = role.Name
			}
		}
	}

	out := make([]domain.Step, len(steps))
	for i, step := range steps {
		a, ok := domain.AssignmentOf(step)
		if !ok {
			out[i] = step
			continue
		}
		a = a.Clone()
		if a.DepartmentID != nil {
			if name, found := draftDepts[*a.DepartmentID]; found {
				a.DepartmentID = nil
				a.DraftDepartmentName = domain.StringPtr(name)
			}
		}
		if a.RoleID != nil {
			if name, found := draftRoles[*a.RoleID]; found {
				a.RoleID = nil
				a.DraftRoleName = domain.StringPtr(name)
			}
		}
		out[i] = domain.WithAssignment(step, a)
	}
	return out
}
