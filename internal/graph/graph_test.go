package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/process-raci/internal/domain"
	"github.com/spec-kit/process-raci/internal/registry"
)

func ptr(s string) *string { return &s }

func testRegistry() *registry.Registry {
	return registry.New([]domain.Department{
		{ID: "d-fin", Name: "Finance", Color: "#2563eb", Roles: []domain.Role{
			{ID: "r-ctrl", Name: "Controller", Color: "#f59e0b"},
		}},
		{ID: "d-sales", Name: "Sales", Color: "#16a34a", Roles: []domain.Role{
			{ID: "r-rep", Name: "Sales Rep", Color: "#dc2626"},
		}},
	})
}

// salesProcess is [start, A, D(yes->finish, no->A), finish].
func salesProcess() []domain.Step {
	return []domain.Step{
		domain.StartStep{Label: "Start"},
		domain.ActionStep{ID: "A", Label: "Prepare quote", Assignment: domain.Assignment{DepartmentID: ptr("d-sales")}},
		domain.DecisionStep{ID: "D", Label: "Approved?", Assignment: domain.Assignment{DepartmentID: ptr("d-sales")},
			YesTargetID: ptr(domain.FinishStepID), NoTargetID: ptr("A")},
		domain.FinishStep{Label: "Finish"},
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(NewSteps("", "")))
	assert.NoError(t, Validate(salesProcess()))

	assert.ErrorIs(t, Validate(nil), ErrMissingStart)
	assert.ErrorIs(t, Validate([]domain.Step{domain.FinishStep{}}), ErrMissingStart)
	assert.ErrorIs(t, Validate([]domain.Step{domain.StartStep{}}), ErrMissingFinish)
	assert.ErrorIs(t, Validate([]domain.Step{domain.StartStep{}, domain.ActionStep{ID: "x"}}), ErrMissingFinish)
	assert.ErrorIs(t, Validate([]domain.Step{domain.StartStep{}, domain.StartStep{}, domain.FinishStep{}}), ErrDuplicateAnchor)
	assert.ErrorIs(t, Validate([]domain.Step{domain.StartStep{}, domain.ActionStep{}, domain.FinishStep{}}), ErrInvalidStepID)
	assert.ErrorIs(t, Validate([]domain.Step{
		domain.StartStep{}, domain.ActionStep{ID: "a"}, domain.ActionStep{ID: "a"}, domain.FinishStep{},
	}), ErrInvalidStepID)
	assert.ErrorIs(t, Validate([]domain.Step{domain.StartStep{}, domain.ActionStep{ID: "finish"}, domain.FinishStep{}}), ErrInvalidStepID)
}

func TestNewSteps(t *testing.T) {
	steps := NewSteps("", "")
	require.Len(t, steps, 2)
	assert.Equal(t, domain.StartStep{Label: DefaultStartLabel}, steps[0])
	assert.Equal(t, domain.FinishStep{Label: DefaultFinishLabel}, steps[1])
}

func TestEnsureIDs(t *testing.T) {
	steps := []domain.Step{
		domain.StartStep{},
		domain.ActionStep{ID: ""},
		domain.ActionStep{ID: "a"},
		domain.DecisionStep{ID: "a"},
		domain.ActionStep{ID: "start"},
		domain.FinishStep{},
	}
	out := EnsureIDs(steps)
	require.NoError(t, Validate(out))
	assert.Equal(t, "a", out[2].StepID())
	assert.NotEqual(t, "a", out[3].StepID())
	assert.Equal(t, "", steps[1].StepID(), "input untouched")
}

func TestStepsJSONRoundTripKeepsNulls(t *testing.T) {
	data, err := domain.Steps(salesProcess()[:3]).MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"id":"start","type":"start","label":"Start"},
		{"id":"A","type":"action","label":"Prepare quote","departmentId":"d-sales","roleId":null,"draftDepartmentName":null,"draftRoleName":null},
		{"id":"D","type":"decision","label":"Approved?","departmentId":"d-sales","roleId":null,"draftDepartmentName":null,"draftRoleName":null,"yesTargetId":"finish","noTargetId":"A"}
	]`, string(data))

	var decoded domain.Steps
	require.NoError(t, decoded.UnmarshalJSON(data))
	assert.Equal(t, domain.Steps(salesProcess()[:3]), decoded)

	assert.Error(t, decoded.UnmarshalJSON([]byte(`[{"id":"x","type":"loop","label":""}]`)))
}

func testRegistryWithout(departmentID string) *registry.Registry {
	var kept []domain.Department
	for _, dept := range testRegistry().Departments() {
		if dept.ID != departmentID {
			kept = append(kept, dept)
		}
	}
	return registry.New(kept)
}
