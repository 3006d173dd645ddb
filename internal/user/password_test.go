package user_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/shopping-mall/internal/user"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword_UsesConfiguredCost(t *testing.T) {
	hash, err := user.HashPassword("s3cret-pass")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, user.PasswordCost, cost)
	assert.GreaterOrEqual(t, cost, 12)
	assert.NotContains(t, hash, "s3cret-pass")
}

func TestHashPassword_IsSalted(t *testing.T) {
	first, err := user.HashPassword("same-password")
	require.NoError(t, err)
	second, err := user.HashPassword("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, user.VerifyPassword("same-password", first))
	assert.True(t, user.VerifyPassword("same-password", second))
}

func TestVerifyPassword(t *testing.T) {
	hash, err := user.HashPassword("correct horse")
	require.NoError(t, err)

	tests := []struct {
		name  string
		plain string
		hash  string
		want  bool
	}{
		{name: "match", plain: "correct horse", hash: hash, want: true},
		{name: "mismatch", plain: "battery staple", hash: hash, want: false},
		{name: "empty_plain", plain: "", hash: hash, want: false},
		{name: "case_sensitive", plain: "Correct horse", hash: hash, want: false},
		{name: "malformed_hash", plain: "correct horse", hash: "not-a-bcrypt-hash", want: false},
		{name: "empty_hash", plain: "correct horse", hash: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, user.VerifyPassword(tt.plain, tt.hash))
		})
	}
}

func TestHashPassword_RejectsOverlongInput(t *testing.T) {
	_, err := user.HashPassword(strings.Repeat("a", user.MaxPasswordBytes+1))
	assert.Error(t, err)
}
