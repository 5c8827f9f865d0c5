package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCheckPassword(t *testing.T) {
	BcryptCost = bcrypt.MinCost

	h, err := HashPassword("Passw0rd1")
	require.NoError(t, err)
	assert.NotEqual(t, "Passw0rd1", h)
	assert.True(t, CheckPassword("Passw0rd1", h))
	assert.False(t, CheckPassword("wrong", h))
	assert.False(t, CheckPassword("Passw0rd1", ""))

	_, err = HashPassword("")
	assert.Error(t, err)
}

func TestIsUUID(t *testing.T) {
	assert.True(t, IsUUID(NewID()))
	assert.False(t, IsUUID("not-a-uuid"))
	assert.False(t, IsUUID(""))
}
