package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestCheckSecretHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("checkmate"), bcrypt.MinCost)
	require.NoError(t, err)

	assert.True(t, CheckSecretHash("checkmate", string(hash)))
	assert.False(t, CheckSecretHash("stalemate", string(hash)))
	assert.False(t, CheckSecretHash("", string(hash)))
	assert.False(t, CheckSecretHash("checkmate", ""))
}

func TestPtr(t *testing.T) {
	p := Ptr(42)
	require.NotNil(t, p)
	assert.Equal(t, 42, *p)
}
