package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/process-raci/internal/domain"
)

func TestNormalizeStepAssignment(t *testing.T) {
	reg := testRegistry()
	ids := IDSet{}

	tests := []struct {
		name string
		in   domain.Assignment
		want domain.Assignment
	}{
		{
			name: "draft department resolves ignoring case and diacritics",
			in:   domain.Assignment{DraftDepartmentName: ptr(" FINÁNCE ")},
			want: domain.Assignment{DepartmentID: ptr("d-fin")},
		},
		{
			name: "draft role resolves inside department",
			in:   domain.Assignment{DepartmentID: ptr("d-fin"), DraftRoleName: ptr("controller")},
			want: domain.Assignment{DepartmentID: ptr("d-fin"), RoleID: ptr("r-ctrl")},
		},
		{
			name: "draft role alone resolves with its department",
			in:   domain.Assignment{DraftRoleName: ptr("sales rep")},
			want: domain.Assignment{DepartmentID: ptr("d-sales"), RoleID: ptr("r-rep")},
		},
		{
			name: "unknown draft names stay drafts",
			in:   domain.Assignment{DraftDepartmentName: ptr("Legal"), DraftRoleName: ptr("Counsel")},
			want: domain.Assignment{DraftDepartmentName: ptr("Legal"), DraftRoleName: ptr("Counsel")},
		},
		{
			name: "role of another department is dropped",
			in:   domain.Assignment{DepartmentID: ptr("d-fin"), RoleID: ptr("r-rep")},
			want: domain.Assignment{DepartmentID: ptr("d-fin")},
		},
		{
			name: "role alone brings its department",
			in:   domain.Assignment{RoleID: ptr("r-ctrl")},
			want: domain.Assignment{DepartmentID: ptr("d-fin"), RoleID: ptr("r-ctrl")},
		},
		{
			name: "dangling ids are cleared",
			in:   domain.Assignment{DepartmentID: ptr("gone"), RoleID: ptr("gone-too")},
			want: domain.Assignment{},
		},
		{
			name: "id wins over draft name",
			in:   domain.Assignment{DepartmentID: ptr("d-sales"), DraftDepartmentName: ptr("Finance")},
			want: domain.Assignment{DepartmentID: ptr("d-sales")},
		},
		{
			name: "blank values are unset",
			in:   domain.Assignment{DepartmentID: ptr(""), DraftRoleName: ptr("   ")},
			want: domain.Assignment{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeStep(domain.ActionStep{ID: "x", Assignment: tt.in}, reg, ids)
			assert.Equal(t, domain.ActionStep{ID: "x", Assignment: tt.want}, got)
			assert.Equal(t, got, NormalizeStep(got, reg, ids), "idempotent")
		})
	}
}

func TestNormalizeRepairsDanglingTargets(t *testing.T) {
	steps := []domain.Step{
		domain.StartStep{},
		domain.DecisionStep{ID: "D", YesTargetID: ptr("removed"), NoTargetID: ptr(domain.FinishStepID)},
		domain.ActionStep{ID: "B"},
		domain.FinishStep{},
	}
	out, err := Normalize(steps, testRegistry())
	require.NoError(t, err)

	d := out[1].(domain.DecisionStep)
	assert.Nil(t, d.YesTargetID)
	assert.Equal(t, ptr(domain.FinishStepID), d.NoTargetID)
	assert.Equal(t, ptr("removed"), steps[1].(domain.DecisionStep).YesTargetID, "input untouched")

	again, err := Normalize(out, testRegistry())
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestNormalizeRequiresAnchors(t *testing.T) {
	_, err := Normalize([]domain.Step{domain.ActionStep{ID: "a"}, domain.FinishStep{}}, testRegistry())
	assert.ErrorIs(t, err, ErrMissingStart)
}

func TestNormalizeAfterDepartmentDeleted(t *testing.T) {
	out, err := Normalize(salesProcess(), testRegistryWithout("d-sales"))
	require.NoError(t, err)
	a, _ := domain.AssignmentOf(out[1])
	assert.True(t, a.IsZero())
}

func TestAssign(t *testing.T) {
	reg := testRegistry()
	step := domain.ActionStep{ID: "x", Assignment: domain.Assignment{DraftDepartmentName: ptr("Legal")}}

	got := Assign(step, ptr("d-fin"), ptr("r-rep"), reg)
	a, _ := domain.AssignmentOf(got)
	assert.Equal(t, domain.Assignment{DepartmentID: ptr("d-fin")}, a)

	got = Assign(step, nil, ptr("r-rep"), reg)
	a, _ = domain.AssignmentOf(got)
	assert.Equal(t, domain.Assignment{DepartmentID: ptr("d-sales"), RoleID: ptr("r-rep")}, a)

	got = AssignDraft(step, "finance", "Auditor", reg)
	a, _ = domain.AssignmentOf(got)
	assert.Equal(t, domain.Assignment{DepartmentID: ptr("d-fin"), DraftRoleName: ptr("Auditor")}, a)

	assert.Equal(t, domain.StartStep{}, Assign(domain.StartStep{}, ptr("d-fin"), nil, reg))
}
