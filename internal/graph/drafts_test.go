package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/process-raci/internal/domain"
	"github.com/spec-kit/process-raci/internal/palette"
	"github.com/spec-kit/process-raci/internal/registry"
)

func TestMergeDraftEntitiesFromSteps(t *testing.T) {
	existing := testRegistry().Departments()
	steps := []domain.Step{
		domain.StartStep{},
		domain.ActionStep{ID: "a", Assignment: domain.Assignment{DraftDepartmentName: ptr("Legal"), DraftRoleName: ptr("Counsel")}},
		domain.ActionStep{ID: "b", Assignment: domain.Assignment{DraftDepartmentName: ptr("légal "), DraftRoleName: ptr("counsel")}},
		domain.ActionStep{ID: "c", Assignment: domain.Assignment{DepartmentID: ptr("d-fin"), DraftRoleName: ptr("Auditor")}},
		domain.DecisionStep{ID: "d", Assignment: domain.Assignment{DraftDepartmentName: ptr("finance")}},
		domain.ActionStep{ID: "e", Assignment: domain.Assignment{DraftRoleName: ptr("Orphan")}},
		domain.FinishStep{},
	}

	pal := palette.New([]string{"#111111", "#222222", "#333333"}, 0)
	merged := MergeDraftEntitiesFromSteps(steps, existing, pal)

	require.Len(t, merged, 3)
	legal := merged[2]
	assert.True(t, legal.Draft)
	assert.Equal(t, "Legal", legal.Name)
	assert.Equal(t, DraftDepartmentID("LEGAL"), legal.ID)
	assert.Equal(t, "#111111", legal.Color)
	require.Len(t, legal.Roles, 1)
	assert.Equal(t, "Counsel", legal.Roles[0].Name)
	assert.Equal(t, legal.ID, legal.Roles[0].DepartmentID)

	fin := merged[0]
	require.Len(t, fin.Roles, 2)
	assert.Equal(t, "Auditor", fin.Roles[1].Name)
	assert.True(t, fin.Roles[1].Draft)
	assert.Equal(t, "#333333", fin.Roles[1].Color)

	assert.Len(t, existing[0].Roles, 1, "input untouched")

	again := MergeDraftEntitiesFromSteps(steps, merged, nil)
	assert.Equal(t, merged, again, "merging twice adds nothing")

	normalized, err := Normalize(steps, registry.New(merged))
	require.NoError(t, err)
	a, _ := domain.AssignmentOf(normalized[1])
	assert.Equal(t, domain.Assignment{DepartmentID: ptr(legal.ID), RoleID: ptr(legal.Roles[0].ID)}, a)
	e, _ := domain.AssignmentOf(normalized[5])
	assert.Equal(t, domain.Assignment{DraftRoleName: ptr("Orphan")}, e)

	drafts, roles := DraftEntities(merged)
	require.Len(t, drafts, 1)
	require.Len(t, roles, 1)
	assert.Equal(t, "Auditor", roles[0].Name)
}

func TestDraftIDsAreStable(t *testing.T) {
	assert.Equal(t, DraftDepartmentID("Finance"), DraftDepartmentID(" finánce"))
	assert.NotEqual(t, DraftRoleID("d1", "Clerk"), DraftRoleID("d2", "Clerk"))
}

func TestDraftNamesReversesResolution(t *testing.T) {
	existing := testRegistry().Departments()
	steps := []domain.Step{
		domain.StartStep{},
		domain.ActionStep{ID: "a", Assignment: domain.Assignment{DraftDepartmentName: ptr("Legal"), DraftRoleName: ptr("Counsel")}},
		domain.ActionStep{ID: "c", Assignment: domain.Assignment{DepartmentID: ptr("d-fin"), DraftRoleName: ptr("Auditor")}},
		domain.FinishStep{},
	}
	merged := MergeDraftEntitiesFromSteps(steps, existing, nil)
	normalized, err := Normalize(steps, registry.New(merged))
	require.NoError(t, err)

	named := DraftNames(normalized, merged)
	a, _ := domain.AssignmentOf(named[1])
	assert.Equal(t, domain.Assignment{DraftDepartmentName: ptr("Legal"), DraftRoleName: ptr("Counsel")}, a)
	c, _ := domain.AssignmentOf(named[2])
	assert.Equal(t, domain.Assignment{DepartmentID: ptr("d-fin"), DraftRoleName: ptr("Auditor")}, c)

	again, err := Normalize(named, registry.New(MergeDraftEntitiesFromSteps(named, existing, nil)))
	require.NoError(t, err)
	assert.Equal(t, normalized, again, "names resolve to the same draft ids")
}
