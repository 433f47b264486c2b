package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActorFromClaims(t *testing.T) {
	actor, err := ActorFromClaims(&Claims{EditorID: "ed-1", Email: "ed@example.com", Role: "admin"})

	require.NoError(t, err)
	assert.Equal(t, Actor{ID: "ed-1", Email: "ed@example.com", Role: "admin"}, actor)
}

func TestActorFromClaims_FailsClosed(t *testing.T) {
	_, err := ActorFromClaims(nil)
	assert.ErrorIs(t, err, ErrMissingIdentity)

	_, err = ActorFromClaims(&Claims{Email: "ed@example.com"})
	assert.ErrorIs(t, err, ErrMissingIdentity)
}

func TestSystemActor(t *testing.T) {
	actor := SystemActor()

	assert.Equal(t, SystemActorID, actor.ID)
	assert.Equal(t, "system", actor.Role)
	assert.Empty(t, actor.Email)
}
