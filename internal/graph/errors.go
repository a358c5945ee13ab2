package graph

import "errors"

// Sentinel errors for programmatic checking via errors.Is().
var (
	// ErrMissingStart indicates the sequence does not begin with the start step.
	ErrMissingStart = errors.New("process has no start step")

	// ErrMissingFinish indicates the sequence does not end with the finish step.
	ErrMissingFinish = errors.New("process has no finish step")

	// ErrDuplicateAnchor indicates a start or finish step in the middle of the sequence.
	ErrDuplicateAnchor = errors.New("process has more than one start or finish step")

	// ErrInvalidStepID indicates an empty, reserved or repeated step id.
	ErrInvalidStepID = errors.New("invalid step id")

	// ErrUnknownStep indicates a step id that is not part of the process.
	ErrUnknownStep = errors.New("unknown step")

	// ErrNotDecision indicates a branch operation on a non-decision step.
	ErrNotDecision = errors.New("step is not a decision")

	// ErrAnchorImmutable indicates an attempt to insert, remove or convert an anchor.
	ErrAnchorImmutable = errors.New("start and finish steps cannot be changed")

	// ErrInvalidTarget indicates a branch target that cannot be used.
	ErrInvalidTarget = errors.New("invalid branch target")
)
