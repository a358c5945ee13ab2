package dto

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/process-raci/pkg/util/errorutil"
)

func TestValidateReportsJSONFieldNames(t *testing.T) {
	err := Validate(&EntityRequest{Color: "#12"})
	require.Error(t, err)

	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
	assert.Equal(t, map[string]any{"name": "required", "color": "color"}, domainErr.Details)
}

func TestValidateAcceptsValidPayloads(t *testing.T) {
	assert.NoError(t, Validate(&EntityRequest{Name: "Sales", Color: "abc"}))
	assert.NoError(t, Validate(&EntityRequest{Name: "Sales"}))
	assert.NoError(t, Validate(&CellRequest{Value: "r"}))
	assert.NoError(t, Validate(&BranchRequest{Branch: "no"}))
}

func TestValidateRules(t *testing.T) {
	assert.Error(t, Validate(&MoveStepRequest{From: 0, To: 2}))
	assert.Error(t, Validate(&BranchRequest{Branch: "maybe"}))
	assert.Error(t, Validate(&CellRequest{Value: "X"}))
	assert.Error(t, Validate(&SetRoleRequest{Role: "ADMIN"}))
	assert.Error(t, Validate(&UserRegisterRequest{Name: "A", Email: "not-an-email", Password: "longenough"}))
}
