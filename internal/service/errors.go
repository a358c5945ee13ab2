package service

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/process-raci/internal/graph"
	"github.com/spec-kit/process-raci/internal/proposal"
	"github.com/spec-kit/process-raci/internal/raci"
	apperrors "github.com/spec-kit/process-raci/pkg/util/errorutil"
)

// mapError translates core and storage errors into DomainErrors. resource
// names the entity used for not-found errors.
func mapError(err error, resource string) error {
	if err == nil {
		return nil
	}
	var domainErr *apperrors.DomainError
	switch {
	case errors.As(err, &domainErr):
		return err
	case errors.Is(err, pgx.ErrNoRows):
		return apperrors.NewNotFound(resource, nil)
	case errors.Is(err, graph.ErrUnknownStep):
		return apperrors.NewNotFound("step", map[string]any{"reason": err.Error()})
	case errors.Is(err, graph.ErrMissingStart),
		errors.Is(err, graph.ErrMissingFinish),
		errors.Is(err, graph.ErrDuplicateAnchor),
		errors.Is(err, graph.ErrInvalidStepID),
		errors.Is(err, graph.ErrNotDecision),
		errors.Is(err, graph.ErrAnchorImmutable),
		errors.Is(err, graph.ErrInvalidTarget),
		errors.Is(err, raci.ErrUnknownRole),
		errors.Is(err, raci.ErrInvalidResponsibility):
		return apperrors.NewValidationError(err.Error(), nil)
	case errors.Is(err, proposal.ErrDisabled):
		return apperrors.NewUnavailable("proposals are not configured", err)
	case errors.Is(err, proposal.ErrBadResponse):
		return &apperrors.DomainError{
			Code:       "PROPOSAL_FAILED",
			Message:    "proposal endpoint returned an unusable answer",
			HTTPStatus: http.StatusBadGateway,
			Err:        err,
		}
	}
	return apperrors.NewInternalError(err)
}
