package domain

import (
	"encoding/json"
	"fmt"
)

// StepType discriminates the kinds of process steps.
type StepType string

const (
	StepTypeStart    StepType = "start"
	StepTypeFinish   StepType = "finish"
	StepTypeAction   StepType = "action"
	StepTypeDecision StepType = "decision"
)

// Fixed identifiers of the two anchor steps.
const (
	StartStepID  = "start"
	FinishStepID = "finish"
)

// Step is one node of a process. Concrete kinds are StartStep, FinishStep,
// ActionStep and DecisionStep.
type Step interface {
	StepID() string
	StepType() StepType
	StepLabel() string
}

// Assignment holds the department and role references of a step. Each side is
// either an id, a draft name, or unset; never both.
type Assignment struct {
	DepartmentID        *string
	RoleID              *string
	DraftDepartmentName *string
	DraftRoleName       *string
}

// Clone copies the pointed-to values so the result shares no memory with a.
func (a Assignment) Clone() Assignment {
	return Assignment{
		DepartmentID:        clonePtr(a.DepartmentID),
		RoleID:              clonePtr(a.RoleID),
		DraftDepartmentName: clonePtr(a.DraftDepartmentName),
		DraftRoleName:       clonePtr(a.DraftRoleName),
	}
}

// IsZero reports whether nothing is assigned.
func (a Assignment) IsZero() bool {
	return a.DepartmentID == nil && a.RoleID == nil && a.DraftDepartmentName == nil && a.DraftRoleName == nil
}

// StartStep is the single entry point of a process.
type StartStep struct {
	Label string
}

// FinishStep is the single terminal of a process.
type FinishStep struct {
	Label string
}

// ActionStep is a linear step; its successor is the next step in order.
type ActionStep struct {
	ID    string
	Label string
	Assignment
}

// DecisionStep branches to YesTargetID / NoTargetID. A nil target falls
// through to the next step in order.
type DecisionStep struct {
	ID    string
	Label string
	Assignment
	YesTargetID *string
	NoTargetID  *string
}

func (StartStep) StepID() string       { return StartStepID }
func (StartStep) StepType() StepType   { return StepTypeStart }
func (s StartStep) StepLabel() string  { return s.Label }
func (FinishStep) StepID() string      { return FinishStepID }
func (FinishStep) StepType() StepType  { return StepTypeFinish }
func (s FinishStep) StepLabel() string { return s.Label }

func (s ActionStep) StepID() string      { return s.ID }
func (ActionStep) StepType() StepType    { return StepTypeAction }
func (s ActionStep) StepLabel() string   { return s.Label }
func (s DecisionStep) StepID() string    { return s.ID }
func (DecisionStep) StepType() StepType  { return StepTypeDecision }
func (s DecisionStep) StepLabel() string { return s.Label }

// AssignmentOf returns the assignment of action and decision steps.
func AssignmentOf(step Step) (Assignment, bool) {
	switch s := step.(type) {
	case ActionStep:
		return s.Assignment, true
	case DecisionStep:
		return s.Assignment, true
	default:
		return Assignment{}, false
	}
}

// WithAssignment returns a copy of step carrying a. Anchors are returned unchanged.
func WithAssignment(step Step, a Assignment) Step {
	switch s := step.(type) {
	case ActionStep:
		s.Assignment = a
		return s
	case DecisionStep:
		s.Assignment = a
		return s
	default:
		return step
	}
}

// WithLabel returns a copy of step with a new label.
func WithLabel(step Step, label string) Step {
	switch s := step.(type) {
	case StartStep:
		s.Label = label
		return s
	case FinishStep:
		s.Label = label
		return s
	case ActionStep:
		s.Label = label
		return s
	case DecisionStep:
		s.Label = label
		return s
	default:
		return step
	}
}

// IsAnchor reports whether step is the start or finish step.
func IsAnchor(step Step) bool {
	t := step.StepType()
	return t == StepTypeStart || t == StepTypeFinish
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}

// StringValue dereferences p, returning "" for nil.
func StringValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func clonePtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Steps is the ordered step sequence of a process. It encodes as the JSON
// tagged union used at the persistence boundary, with explicit nulls.
type Steps []Step

type anchorRecord struct {
	ID    string   `json:"id"`
	Type  StepType `json:"type"`
	Label string   `json:"label"`
}

type actionRecord struct {
	ID                  string   `json:"id"`
	Type                StepType `json:"type"`
	Label               string   `json:"label"`
	DepartmentID        *string  `json:"departmentId"`
	RoleID              *string  `json:"roleId"`
	DraftDepartmentName *string  `json:"draftDepartmentName"`
	DraftRoleName       *string  `json:"draftRoleName"`
}

type decisionRecord struct {
	actionRecord
	YesTargetID *string `json:"yesTargetId"`
	NoTargetID  *string `json:"noTargetId"`
}

// MarshalJSON implements json.Marshaler.
func (s Steps) MarshalJSON() ([]byte, error) {
	records := make([]any, 0, len(s))
	for _, step := range s {
		record, err := stepToRecord(step)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return json.Marshal(records)
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Steps) UnmarshalJSON(data []byte) error {
	var records []decisionRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return err
	}
	if records == nil {
		*s = nil
		return nil
	}
	out := make(Steps, 0, len(records))
	for i, record := range records {
		step, err := recordToStep(record)
		if err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
		out = append(out, step)
	}
	*s = out
	return nil
}

func stepToRecord(step Step) (any, error) {
	switch v := step.(type) {
	case StartStep:
		return anchorRecord{ID: StartStepID, Type: StepTypeStart, Label: v.Label}, nil
	case FinishStep:
		return anchorRecord{ID: FinishStepID, Type: StepTypeFinish, Label: v.Label}, nil
	case ActionStep:
		return newActionRecord(v.ID, StepTypeAction, v.Label, v.Assignment), nil
	case DecisionStep:
		return decisionRecord{
			actionRecord: newActionRecord(v.ID, StepTypeDecision, v.Label, v.Assignment),
			YesTargetID:  v.YesTargetID,
			NoTargetID:   v.NoTargetID,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported step %T", step)
	}
}

func newActionRecord(id string, t StepType, label string, a Assignment) actionRecord {
	return actionRecord{
		ID:                  id,
		Type:                t,
		Label:               label,
		DepartmentID:        a.DepartmentID,
		RoleID:              a.RoleID,
		DraftDepartmentName: a.DraftDepartmentName,
		DraftRoleName:       a.DraftRoleName,
	}
}

func recordToStep(r decisionRecord) (Step, error) {
	a := Assignment{
		DepartmentID:        r.DepartmentID,
		RoleID:              r.RoleID,
		DraftDepartmentName: r.DraftDepartmentName,
		DraftRoleName:       r.DraftRoleName,
	}
	switch r.Type {
	case StepTypeStart:
		return StartStep{Label: r.Label}, nil
	case StepTypeFinish:
		return FinishStep{Label: r.Label}, nil
	case StepTypeAction:
		return ActionStep{ID: r.ID, Label: r.Label, Assignment: a}, nil
	case StepTypeDecision:
		return DecisionStep{ID: r.ID, Label: r.Label, Assignment: a, YesTargetID: r.YesTargetID, NoTargetID: r.NoTargetID}, nil
	default:
		return nil, fmt.Errorf("unknown step type %q", r.Type)
	}
}
