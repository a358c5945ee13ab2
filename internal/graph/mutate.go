package graph

import (
	"fmt"

	"github.com/spec-kit/process-raci/internal/domain"
	"github.com/spec-kit/process-raci/internal/registry"
)

// Branch names one outgoing edge of a decision.
type Branch string

const (
	BranchYes Branch = "yes"
	BranchNo  Branch = "no"
)

// InsertStep inserts step at index, clamped so it always lands between the
// anchors. The input slice is not modified.
func InsertStep(steps []domain.Step, index int, step domain.Step) ([]domain.Step, error) {
	if err := Validate(steps); err != nil {
		return nil, err
	}
	if domain.IsAnchor(step) {
		return nil, ErrAnchorImmutable
	}
	id := step.StepID()
	if id == "" || id == domain.StartStepID || id == domain.FinishStepID || StepIDs(steps).Has(id) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStepID, id)
	}
	if index < 1 {
		index = 1
	}
	if index > len(steps)-1 {
		index = len(steps) - 1
	}
	out := make([]domain.Step, 0, len(steps)+1)
	out = append(out, steps[:index]...)
	out = append(out, step)
	out = append(out, steps[index:]...)
	return out, nil
}

// RemoveStep removes the step with id and clears every decision branch that
// targeted it.
func RemoveStep(steps []domain.Step, id string) ([]domain.Step, error) {
	index, ok := IndexByID(steps)[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStep, id)
	}
	if domain.IsAnchor(steps[index]) {
		return nil, ErrAnchorImmutable
	}
	out := make([]domain.Step, 0, len(steps)-1)
	for i, step := range steps {
		if i == index {
			continue
		}
		if d, isDecision := step.(domain.DecisionStep); isDecision {
			if d.YesTargetID != nil && *d.YesTargetID == id {
				d.YesTargetID = nil
			}
			if d.NoTargetID != nil && *d.NoTargetID == id {
				d.NoTargetID = nil
			}
			step = d
		}
		out = append(out, step)
	}
	return out, nil
}

// MoveStep moves the step at from to position to. Both positions must lie in
// [1, len-2] so the anchors never move; otherwise the input is returned
// unchanged with false.
func MoveStep(steps []domain.Step, from, to int) ([]domain.Step, bool) {
	last := len(steps) - 2
	if from < 1 || from > last || to < 1 || to > last {
		return steps, false
	}
	out := append([]domain.Step(nil), steps...)
	if from == to {
		return out, true
	}
	moved := out[from]
	if from < to {
		copy(out[from:to], out[from+1:to+1])
	} else {
		copy(out[to+1:from+1], out[to:from])
	}
	out[to] = moved
	return out, true
}

// SetBranchTarget points one branch of a decision at target. A nil target
// restores the fall-through to the next step.
func SetBranchTarget(steps []domain.Step, decisionID string, branch Branch, target *string) ([]domain.Step, error) {
	index := IndexByID(steps)
	i, ok := index[decisionID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStep, decisionID)
	}
	d, isDecision := steps[i].(domain.DecisionStep)
	if !isDecision {
		return nil, ErrNotDecision
	}
	if target != nil {
		if _, exists := index[*target]; !exists {
			return nil, fmt.Errorf("%w: %q", ErrUnknownStep, *target)
		}
		if *target == decisionID || *target == domain.StartStepID {
			return nil, fmt.Errorf("%w: %q", ErrInvalidTarget, *target)
		}
		target = clonePtr(target)
	}
	switch branch {
	case BranchYes:
		d.YesTargetID = target
	case BranchNo:
		d.NoTargetID = target
	default:
		return nil, fmt.Errorf("%w: branch %q", ErrInvalidTarget, branch)
	}
	out := append([]domain.Step(nil), steps...)
	out[i] = d
	return out, nil
}

// RenameStep changes the label of the step with id.
func RenameStep(steps []domain.Step, id, label string) ([]domain.Step, error) {
	i, ok := IndexByID(steps)[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStep, id)
	}
	out := append([]domain.Step(nil), steps...)
	out[i] = domain.WithLabel(out[i], label)
	return out, nil
}

// ConvertType switches a step between action and decision, keeping its id,
// label and assignment. Branch targets are dropped when leaving decision.
func ConvertType(steps []domain.Step, id string, to domain.StepType) ([]domain.Step, error) {
	i, ok := IndexByID(steps)[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStep, id)
	}
	out := append([]domain.Step(nil), steps...)
	switch s := steps[i].(type) {
	case domain.ActionStep:
		if to == domain.StepTypeDecision {
			out[i] = domain.DecisionStep{ID: s.ID, Label: s.Label, Assignment: s.Assignment}
		} else if to != domain.StepTypeAction {
			return nil, ErrAnchorImmutable
		}
	case domain.DecisionStep:
		if to == domain.StepTypeAction {
			out[i] = domain.ActionStep{ID: s.ID, Label: s.Label, Assignment: s.Assignment}
		} else if to != domain.StepTypeDecision {
			return nil, ErrAnchorImmutable
		}
	default:
		return nil, ErrAnchorImmutable
	}
	return out, nil
}

// Assign sets the department and role ids of step, enforcing that the role
// belongs to the department. Draft names are cleared.
func Assign(step domain.Step, departmentID, roleID *string, reg *registry.Registry) domain.Step {
	if _, ok := domain.AssignmentOf(step); !ok {
		return step
	}
	a := domain.Assignment{DepartmentID: clonePtr(departmentID), RoleID: clonePtr(roleID)}
	return domain.WithAssignment(step, normalizeAssignment(a, reg))
}

// AssignDraft references a department and role by name. Names that already
// resolve in reg are turned into ids right away.
func AssignDraft(step domain.Step, departmentName, roleName string, reg *registry.Registry) domain.Step {
	if _, ok := domain.AssignmentOf(step); !ok {
		return step
	}
	a := domain.Assignment{
		DraftDepartmentName: domain.StringPtr(departmentName),
		DraftRoleName:       domain.StringPtr(roleName),
	}
	return domain.WithAssignment(step, normalizeAssignment(a, reg))
}

// RemapEntities rewrites department and role ids through mapping, used when
// draft entities are materialized under persisted ids.
func RemapEntities(steps []domain.Step, mapping map[string]string) []domain.Step {
	out := make([]domain.Step, len(steps))
	for i, step := range steps {
		a, ok := domain.AssignmentOf(step)
		if !ok {
			out[i] = step
			continue
		}
		a = a.Clone()
		if a.DepartmentID != nil {
			if id, found := mapping[*a.DepartmentID]; found {
				a.DepartmentID = domain.StringPtr(id)
			}
		}
		if a.RoleID != nil {
			if id, found := mapping[*a.RoleID]; found {
				a.RoleID = domain.StringPtr(id)
			}
		}
		out[i] = domain.WithAssignment(step, a)
	}
	return out
}
