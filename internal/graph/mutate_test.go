package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/process-raci/internal/domain"
)

func ids(steps []domain.Step) []string {
	out := make([]string, len(steps))
	for i, s := range steps {
		out[i] = s.StepID()
	}
	return out
}

func TestInsertStepStaysBetweenAnchors(t *testing.T) {
	steps := NewSteps("", "")

	out, err := InsertStep(steps, 0, domain.ActionStep{ID: "a"})
	require.NoError(t, err)
	out, err = InsertStep(out, 99, domain.ActionStep{ID: "b"})
	require.NoError(t, err)
	out, err = InsertStep(out, 2, domain.DecisionStep{ID: "c"})
	require.NoError(t, err)

	assert.Equal(t, []string{"start", "a", "c", "b", "finish"}, ids(out))
	assert.Len(t, steps, 2)

	_, err = InsertStep(out, 1, domain.ActionStep{ID: "a"})
	assert.ErrorIs(t, err, ErrInvalidStepID)
	_, err = InsertStep(out, 1, domain.StartStep{})
	assert.ErrorIs(t, err, ErrAnchorImmutable)
}

func TestRemoveStepClearsBranchTargets(t *testing.T) {
	out, err := RemoveStep(salesProcess(), "A")
	require.NoError(t, err)

	assert.Equal(t, []string{"start", "D", "finish"}, ids(out))
	d := out[1].(domain.DecisionStep)
	assert.Nil(t, d.NoTargetID)
	assert.Equal(t, ptr(domain.FinishStepID), d.YesTargetID)

	_, err = RemoveStep(out, "missing")
	assert.ErrorIs(t, err, ErrUnknownStep)
	_, err = RemoveStep(out, domain.FinishStepID)
	assert.ErrorIs(t, err, ErrAnchorImmutable)
}

func TestMoveStep(t *testing.T) {
	steps := []domain.Step{
		domain.StartStep{},
		domain.ActionStep{ID: "a"},
		domain.ActionStep{ID: "b"},
		domain.ActionStep{ID: "c"},
		domain.FinishStep{},
	}

	out, ok := MoveStep(steps, 1, 3)
	require.True(t, ok)
	assert.Equal(t, []string{"start", "b", "c", "a", "finish"}, ids(out))

	out, ok = MoveStep(steps, 3, 1)
	require.True(t, ok)
	assert.Equal(t, []string{"start", "c", "a", "b", "finish"}, ids(out))

	for _, move := range [][2]int{{0, 2}, {2, 0}, {4, 1}, {1, 4}, {-1, 2}, {2, 9}} {
		out, ok = MoveStep(steps, move[0], move[1])
		assert.False(t, ok, "%v", move)
		assert.Equal(t, ids(steps), ids(out))
	}
	assert.Equal(t, []string{"start", "a", "b", "c", "finish"}, ids(steps), "input untouched")
}

func TestSetBranchTarget(t *testing.T) {
	steps := salesProcess()

	out, err := SetBranchTarget(steps, "D", BranchNo, nil)
	require.NoError(t, err)
	assert.Nil(t, out[2].(domain.DecisionStep).NoTargetID)
	assert.Equal(t, ptr("A"), steps[2].(domain.DecisionStep).NoTargetID)

	out, err = SetBranchTarget(steps, "D", BranchYes, ptr("A"))
	require.NoError(t, err)
	assert.Equal(t, ptr("A"), out[2].(domain.DecisionStep).YesTargetID)

	_, err = SetBranchTarget(steps, "A", BranchYes, nil)
	assert.ErrorIs(t, err, ErrNotDecision)
	_, err = SetBranchTarget(steps, "D", BranchYes, ptr("nope"))
	assert.ErrorIs(t, err, ErrUnknownStep)
	_, err = SetBranchTarget(steps, "D", BranchYes, ptr("D"))
	assert.ErrorIs(t, err, ErrInvalidTarget)
	_, err = SetBranchTarget(steps, "D", Branch("maybe"), nil)
	assert.ErrorIs(t, err, ErrInvalidTarget)
}

func TestConvertAndRename(t *testing.T) {
	steps := salesProcess()

	out, err := ConvertType(steps, "D", domain.StepTypeAction)
	require.NoError(t, err)
	action, ok := out[2].(domain.ActionStep)
	require.True(t, ok)
	assert.Equal(t, "Approved?", action.Label)
	assert.Equal(t, ptr("d-sales"), action.DepartmentID)

	out, err = ConvertType(out, "D", domain.StepTypeDecision)
	require.NoError(t, err)
	decision := out[2].(domain.DecisionStep)
	assert.Nil(t, decision.YesTargetID)

	_, err = ConvertType(steps, domain.StartStepID, domain.StepTypeAction)
	assert.ErrorIs(t, err, ErrAnchorImmutable)

	out, err = RenameStep(steps, domain.FinishStepID, "Done")
	require.NoError(t, err)
	assert.Equal(t, "Done", out[3].StepLabel())
}

func TestRemapEntities(t *testing.T) {
	steps := []domain.Step{
		domain.StartStep{},
		domain.ActionStep{ID: "a", Assignment: domain.Assignment{DepartmentID: ptr("draft-d"), RoleID: ptr("draft-r")}},
		domain.FinishStep{},
	}
	out := RemapEntities(steps, map[string]string{"draft-d": "d-1", "draft-r": "r-1"})
	a, _ := domain.AssignmentOf(out[1])
	assert.Equal(t, ptr("d-1"), a.DepartmentID)
	assert.Equal(t, ptr("r-1"), a.RoleID)

	orig, _ := domain.AssignmentOf(steps[1])
	assert.Equal(t, ptr("draft-d"), orig.DepartmentID)
}
