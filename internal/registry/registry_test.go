package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/process-raci/internal/domain"
)

func sampleDepartments() []domain.Department {
	return []domain.Department{
		{ID: "d-fin", Name: "Finance", Color: "#2563eb", Roles: []domain.Role{
			{ID: "r-ctrl", DepartmentID: "d-fin", Name: "Controller"},
			{ID: "r-acc", DepartmentID: "wrong", Name: "Accountant"},
		}},
		{ID: "d-ops", Name: "Opérations", Color: "#16a34a", Roles: []domain.Role{
			{ID: "r-mgr", Name: "Manager"},
		}},
		{ID: "d-draft", Name: "Legal", Draft: true, Roles: []domain.Role{
			{ID: "r-mgr2", Name: "manager", Draft: true},
		}},
	}
}

func TestNameKey(t *testing.T) {
	assert.Equal(t, "finance", NameKey("Finance"))
	assert.Equal(t, "finance", NameKey("  FINÁNCE "))
	assert.Equal(t, "operations", NameKey("Opérations"))
	assert.Equal(t, "human resources", NameKey("Human\t  Resources"))
	assert.Equal(t, "", NameKey("   "))
}

func TestLookups(t *testing.T) {
	reg := New(sampleDepartments())

	dept, ok := reg.DepartmentByName("operations")
	require.True(t, ok)
	assert.Equal(t, "d-ops", dept.ID)

	_, ok = reg.Department("missing")
	assert.False(t, ok)

	role, ok := reg.Role("r-acc")
	require.True(t, ok)
	assert.Equal(t, "d-fin", role.DepartmentID, "roles are re-parented to their containing department")

	role, ok = reg.RoleByName("d-ops", "MANAGER")
	require.True(t, ok)
	assert.Equal(t, "r-mgr", role.ID)

	_, ok = reg.RoleByName("d-fin", "manager")
	assert.False(t, ok)

	named := reg.RolesNamed("Manager")
	require.Len(t, named, 2)
	assert.Equal(t, "r-mgr", named[0].ID)
	assert.Equal(t, "r-mgr2", named[1].ID)

	draft, ok := reg.DepartmentByName("legal")
	require.True(t, ok)
	assert.True(t, draft.Draft)
}

func TestDepartmentsIsACopy(t *testing.T) {
	reg := New(sampleDepartments())
	depts := reg.Departments()
	depts[0].Roles[0].Name = "changed"

	role, ok := reg.Role("r-ctrl")
	require.True(t, ok)
	assert.Equal(t, "Controller", role.Name)
}

func TestNilRegistry(t *testing.T) {
	var reg *Registry
	_, ok := reg.Department("x")
	assert.False(t, ok)
	assert.Nil(t, reg.Departments())
}
