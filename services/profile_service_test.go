package services

import (
	"context"
	"testing"

	"github.com/Dosada05/checkmate-cup/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureProfile_CreatesOnce(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	svc := NewProfileService(env.tx, env.profiles, env.roles, nil)
	id := Identity{UserID: uuid.New(), Email: "magnus@example.com", FullName: "Magnus Carlsen"}

	p, err := svc.EnsureProfile(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "magnus", p.Username)
	assert.Equal(t, models.DefaultRating, p.Rating)
	require.NotNil(t, p.AvatarInitials)
	assert.Equal(t, "MC", *p.AvatarInitials)

	again, err := svc.EnsureProfile(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, p.ID, again.ID)
	assert.Len(t, env.store.profiles, 1)

	ok, err := env.roles.HasRole(ctx, nil, id.UserID, models.RolePlayer)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEnsureProfile_UsernameTaken(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	svc := NewProfileService(env.tx, env.profiles, env.roles, nil)

	_, err := svc.EnsureProfile(ctx, Identity{UserID: uuid.New(), Username: "hikaru"})
	require.NoError(t, err)

	second := Identity{UserID: uuid.New(), Username: "hikaru"}
	p, err := svc.EnsureProfile(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, "hikaru-"+second.UserID.String()[:4], p.Username)
}

func TestEnsureProfile_NoIdentity(t *testing.T) {
	env := newTestEnv()
	svc := NewProfileService(env.tx, env.profiles, env.roles, nil)
	_, err := svc.EnsureProfile(context.Background(), Identity{})
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestBaseUsername(t *testing.T) {
	id := uuid.MustParse("12345678-1234-1234-1234-123456789abc")
	assert.Equal(t, "bob", baseUsername(Identity{UserID: id, Username: " bob "}))
	assert.Equal(t, "alice", baseUsername(Identity{UserID: id, Email: "alice@x.org"}))
	assert.Equal(t, "player-12345678", baseUsername(Identity{UserID: id}))
}
