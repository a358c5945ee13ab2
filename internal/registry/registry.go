// Package registry indexes the departments and roles known to an editing
// session, persisted and draft alike, by id and by normalized name.
package registry

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/spec-kit/process-raci/internal/domain"
)

// Registry is a read-only snapshot. Build a new one after the org chart changes.
type Registry struct {
	departments []domain.Department
	deptByID    map[string]int
	deptByKey   map[string]int
	roleByID    map[string]domain.Role
	roleByKey   map[string]domain.Role
}

// New indexes departments. Roles are re-parented to their containing
// department; on duplicate names the first entry wins.
func New(departments []domain.Department) *Registry {
	r := &Registry{
		departments: domain.CloneDepartments(departments),
		deptByID:    make(map[string]int, len(departments)),
		deptByKey:   make(map[string]int, len(departments)),
		roleByID:    make(map[string]domain.Role),
		roleByKey:   make(map[string]domain.Role),
	}
	for i := range r.departments {
		dept := &r.departments[i]
		if _, exists := r.deptByID[dept.ID]; !exists && dept.ID != "" {
			r.deptByID[dept.ID] = i
		}
		if key := NameKey(dept.Name); key != "" {
			if _, exists := r.deptByKey[key]; !exists {
				r.deptByKey[key] = i
			}
		}
		for j := range dept.Roles {
			role := &dept.Roles[j]
			role.DepartmentID = dept.ID
			if _, exists := r.roleByID[role.ID]; !exists && role.ID != "" {
				r.roleByID[role.ID] = *role
			}
			if key := NameKey(role.Name); key != "" {
				rk := roleKey(dept.ID, key)
				if _, exists := r.roleByKey[rk]; !exists {
					r.roleByKey[rk] = *role
				}
			}
		}
	}
	return r
}

// Departments returns a copy of the indexed departments in input order.
func (r *Registry) Departments() []domain.Department {
	if r == nil {
		return nil
	}
	return domain.CloneDepartments(r.departments)
}

// Department looks a department up by id.
func (r *Registry) Department(id string) (domain.Department, bool) {
	if r == nil {
		return domain.Department{}, false
	}
	i, ok := r.deptByID[id]
	if !ok {
		return domain.Department{}, false
	}
	return r.departments[i], true
}

// DepartmentByName looks a department up by normalized name.
func (r *Registry) DepartmentByName(name string) (domain.Department, bool) {
	if r == nil {
		return domain.Department{}, false
	}
	i, ok := r.deptByKey[NameKey(name)]
	if !ok {
		return domain.Department{}, false
	}
	return r.departments[i], true
}

// Role looks a role up by id.
func (r *Registry) Role(id string) (domain.Role, bool) {
	if r == nil {
		return domain.Role{}, false
	}
	role, ok := r.roleByID[id]
	return role, ok
}

// RoleByName looks a role up by normalized name inside one department.
func (r *Registry) RoleByName(departmentID, name string) (domain.Role, bool) {
	if r == nil {
		return domain.Role{}, false
	}
	role, ok := r.roleByKey[roleKey(departmentID, NameKey(name))]
	return role, ok
}

// RolesNamed returns every role, across departments, whose name matches.
func (r *Registry) RolesNamed(name string) []domain.Role {
	if r == nil {
		return nil
	}
	key := NameKey(name)
	var out []domain.Role
	for _, dept := range r.departments {
		if role, ok := r.roleByKey[roleKey(dept.ID, key)]; ok {
			out = append(out, role)
		}
	}
	return out
}

func roleKey(departmentID, key string) string {
	return departmentID + "\x00" + key
}

// NameKey folds case, diacritics and whitespace so "  Finánce " and "finance"
// compare equal.
func NameKey(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}
