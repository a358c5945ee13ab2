package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/process-raci/internal/config"
	"github.com/spec-kit/process-raci/internal/domain"
	"github.com/spec-kit/process-raci/internal/repository/repotest"
)

func newAuthService() *AuthService {
	return NewAuthService(config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 5, BcryptCost: 4},
		AuthDependencies{UserRepo: &repotest.Users{}})
}

func TestRegisterAssignsOwnerThenViewer(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()

	first, err := svc.Register(ctx, " Ada ", "Ada@Example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, domain.MemberRoleOwner, first.User.Role)
	assert.Equal(t, "ada@example.com", first.User.Email)
	assert.Equal(t, "Ada", first.User.Name)
	assert.NotEmpty(t, first.Token)
	assert.NotEqual(t, "s3cret-pass", first.User.PasswordHash)

	claims, err := svc.TokenManager().ParseToken(first.Token)
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, claims.Subject)

	second, err := svc.Register(ctx, "Bob", "bob@example.com", "another-pass")
	require.NoError(t, err)
	assert.Equal(t, domain.MemberRoleViewer, second.User.Role)

	_, err = svc.Register(ctx, "Ada again", "ADA@example.com", "whatever-pass")
	requireCode(t, err, "CONFLICT")
}

func TestLogin(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()
	_, err := svc.Register(ctx, "Ada", "ada@example.com", "s3cret-pass")
	require.NoError(t, err)

	res, err := svc.Login(ctx, "ADA@example.com ", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, domain.MemberRoleOwner, res.Meta.Role)

	_, err = svc.Login(ctx, "ada@example.com", "wrong")
	requireCode(t, err, "UNAUTHORIZED")
	_, err = svc.Login(ctx, "nobody@example.com", "s3cret-pass")
	requireCode(t, err, "UNAUTHORIZED")
}

func TestSetRole(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()
	owner, err := svc.Register(ctx, "Ada", "ada@example.com", "s3cret-pass")
	require.NoError(t, err)
	viewer, err := svc.Register(ctx, "Bob", "bob@example.com", "s3cret-pass")
	require.NoError(t, err)

	updated, err := svc.SetRole(ctx, owner.User, viewer.User.ID, domain.MemberRoleEditor)
	require.NoError(t, err)
	assert.Equal(t, domain.MemberRoleEditor, updated.Role)

	_, err = svc.SetRole(ctx, updated, owner.User.ID, domain.MemberRoleViewer)
	requireCode(t, err, "FORBIDDEN")
	_, err = svc.SetRole(ctx, owner.User, owner.User.ID, domain.MemberRoleEditor)
	requireCode(t, err, "CONFLICT")
	_, err = svc.SetRole(ctx, owner.User, viewer.User.ID, "ADMIN")
	requireCode(t, err, "VALIDATION_FAILED")
	_, err = svc.SetRole(ctx, owner.User, "missing", domain.MemberRoleViewer)
	requireCode(t, err, "NOT_FOUND")
}
