package services

import (
	"context"
	"testing"

	"github.com/Dosada05/checkmate-cup/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestAuthorizeAdmin(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	svc := NewAccessService(env.roles, string(hash), nil)

	admin := uuid.New()
	player := uuid.New()
	require.NoError(t, svc.EnsureAdmin(ctx, admin))
	require.NoError(t, env.roles.Grant(ctx, nil, player, models.RolePlayer))

	assert.NoError(t, svc.AuthorizeAdmin(ctx, &admin, ""))
	assert.ErrorIs(t, svc.AuthorizeAdmin(ctx, &player, ""), ErrAdminRequired)
	assert.ErrorIs(t, svc.AuthorizeAdmin(ctx, nil, ""), ErrAuthenticationFailed)
	assert.ErrorIs(t, svc.AuthorizeAdmin(ctx, nil, "wrong"), ErrAuthenticationFailed)
	assert.NoError(t, svc.AuthorizeAdmin(ctx, nil, "s3cret"))
	assert.NoError(t, svc.AuthorizeAdmin(ctx, &player, "s3cret"))
}

func TestAuthorizeAdmin_NoHashConfigured(t *testing.T) {
	env := newTestEnv()
	svc := NewAccessService(env.roles, "", nil)
	assert.ErrorIs(t, svc.AuthorizeAdmin(context.Background(), nil, "anything"), ErrAuthenticationFailed)
}

func TestEnsureAdmin_Idempotent(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	svc := NewAccessService(env.roles, "", nil)
	id := uuid.New()

	require.NoError(t, svc.EnsureAdmin(ctx, id))
	require.NoError(t, svc.EnsureAdmin(ctx, id))
	assert.Len(t, env.store.roles, 1)

	ok, err := svc.IsAdmin(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)
}
