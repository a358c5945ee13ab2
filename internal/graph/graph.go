// Package graph holds the ordered step model of a process and the normalizer
// that keeps it consistent after every mutation.
//
// Order is the only source of "next step" semantics: an action flows to the
// step after it, and a decision branch whose target is nil does the same.
// The first step is always the start anchor and the last one the finish anchor.
package graph

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/spec-kit/process-raci/internal/domain"
)

// Default anchor labels.
const (
	DefaultStartLabel  = "Start"
	DefaultFinishLabel = "Finish"
)

// IDSet is the set of step ids of one process.
type IDSet map[string]struct{}

// Has reports whether id is in the set.
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// StepIDs collects the ids of steps.
func StepIDs(steps []domain.Step) IDSet {
	ids := make(IDSet, len(steps))
	for _, step := range steps {
		ids[step.StepID()] = struct{}{}
	}
	return ids
}

// IndexByID maps every step id to its position.
func IndexByID(steps []domain.Step) map[string]int {
	index := make(map[string]int, len(steps))
	for i, step := range steps {
		if _, exists := index[step.StepID()]; !exists {
			index[step.StepID()] = i
		}
	}
	return index
}

// NewSteps returns the step sequence of a brand-new process.
func NewSteps(startLabel, finishLabel string) []domain.Step {
	if startLabel == "" {
		startLabel = DefaultStartLabel
	}
	if finishLabel == "" {
		finishLabel = DefaultFinishLabel
	}
	return []domain.Step{
		domain.StartStep{Label: startLabel},
		domain.FinishStep{Label: finishLabel},
	}
}

// NewID returns a fresh step id.
func NewID() string {
	return uuid.NewString()
}

// NewAction builds an unassigned action step with a fresh id.
func NewAction(label string) domain.ActionStep {
	return domain.ActionStep{ID: NewID(), Label: label}
}

// NewDecision builds an unassigned decision step with a fresh id whose
// branches both fall through.
func NewDecision(label string) domain.DecisionStep {
	return domain.DecisionStep{ID: NewID(), Label: label}
}

// Validate checks the anchors and step ids of steps.
func Validate(steps []domain.Step) error {
	if len(steps) == 0 || steps[0].StepType() != domain.StepTypeStart {
		return ErrMissingStart
	}
	if len(steps) < 2 || steps[len(steps)-1].StepType() != domain.StepTypeFinish {
		return ErrMissingFinish
	}
	seen := make(map[string]struct{}, len(steps))
	for i, step := range steps {
		if i > 0 && i < len(steps)-1 && domain.IsAnchor(step) {
			return fmt.Errorf("%w: position %d", ErrDuplicateAnchor, i)
		}
		id := step.StepID()
		if id == "" {
			return fmt.Errorf("%w: empty id at position %d", ErrInvalidStepID, i)
		}
		if !domain.IsAnchor(step) && (id == domain.StartStepID || id == domain.FinishStepID) {
			return fmt.Errorf("%w: %q is reserved", ErrInvalidStepID, id)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: %q repeated", ErrInvalidStepID, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// EnsureIDs gives a fresh id to every action or decision whose id is empty,
// reserved or already used earlier in the sequence. Branch targets keep
// pointing at the first step that carried a repeated id.
func EnsureIDs(steps []domain.Step) []domain.Step {
	out := make([]domain.Step, len(steps))
	seen := make(map[string]struct{}, len(steps))
	for i, step := range steps {
		id := step.StepID()
		_, dup := seen[id]
		reserved := !domain.IsAnchor(step) && (id == domain.StartStepID || id == domain.FinishStepID)
		if !domain.IsAnchor(step) && (id == "" || dup || reserved) {
			step = withID(step, NewID())
		}
		seen[step.StepID()] = struct{}{}
		out[i] = step
	}
	return out
}

func withID(step domain.Step, id string) domain.Step {
	switch s := step.(type) {
	case domain.ActionStep:
		s.ID = id
		return s
	case domain.DecisionStep:
		s.ID = id
		return s
	default:
		return step
	}
}

// Clone copies steps deeply enough that mutating the result never alters the input.
func Clone(steps []domain.Step) []domain.Step {
	out := make([]domain.Step, len(steps))
	for i, step := range steps {
		switch s := step.(type) {
		case domain.ActionStep:
			s.Assignment = s.Assignment.Clone()
			out[i] = s
		case domain.DecisionStep:
			s.Assignment = s.Assignment.Clone()
			s.YesTargetID = clonePtr(s.YesTargetID)
			s.NoTargetID = clonePtr(s.NoTargetID)
			out[i] = s
		default:
			out[i] = step
		}
	}
	return out
}

func clonePtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
