package utils

import (
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "golang.org/x/crypto/bcrypt"
)

func TestHashPasswordRoundTrip(t *testing.T) {
    hash, err := HashPassword("s3cret", bcrypt.MinCost)
    require.NoError(t, err)

    assert.True(t, VerifyPassword(hash, "s3cret"))
    assert.False(t, VerifyPassword(hash, "wrong"))
}

func TestHashPasswordClampsInvalidCost(t *testing.T) {
    hash, err := HashPassword("s3cret", 99)
    require.NoError(t, err)

    cost, err := bcrypt.Cost([]byte(hash))
    require.NoError(t, err)
    assert.Equal(t, bcrypt.DefaultCost, cost)
    assert.True(t, VerifyPassword(hash, "s3cret"))
}
