package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/apperror"
)

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret", time.Minute)

	token, err := m.GenerateAccessToken("user-1", RoleAdmin)
	require.NoError(t, err)

	claims, err := m.ParseAndValidate(token)
	require.NoError(t, err)
	assert.Equal(t, Actor{ID: "user-1", Role: RoleAdmin}, claims.Actor())
}

func TestJWTRejectsForeignAndExpiredTokens(t *testing.T) {
	issuer := NewJWTManager("secret-a", time.Minute)
	token, err := issuer.GenerateAccessToken("user-1", RoleUser)
	require.NoError(t, err)

	_, err = NewJWTManager("secret-b", time.Minute).ParseAndValidate(token)
	assert.Error(t, err)

	expired := NewJWTManager("secret-a", -time.Minute)
	token, err = expired.GenerateAccessToken("user-1", RoleUser)
	require.NoError(t, err)
	_, err = expired.ParseAndValidate(token)
	assert.Error(t, err)
}

func TestJWTRejectsUnknownRole(t *testing.T) {
	m := NewJWTManager("secret", time.Minute)
	token, err := m.GenerateAccessToken("user-1", Role("owner"))
	require.NoError(t, err)

	_, err = m.ParseAndValidate(token)
	assert.Error(t, err)
}

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptPasswordHasher(4)

	hash, err := h.Hash("hunter22")
	require.NoError(t, err)
	assert.NoError(t, h.Compare(hash, "hunter22"))
	assert.Error(t, h.Compare(hash, "hunter23"))
}

func TestBcryptHasherClampsCost(t *testing.T) {
	assert.Equal(t, bcrypt.MinCost, NewBcryptPasswordHasher(0).Cost())
	assert.Equal(t, bcrypt.MaxCost, NewBcryptPasswordHasher(99).Cost())
	assert.Equal(t, 10, NewBcryptPasswordHasher(10).Cost())

	_, err := NewBcryptPasswordHasher(-3).Hash("hunter22")
	assert.NoError(t, err, "an out-of-range cost still hashes")
}

func TestBcryptHasherRejectsLongPasswords(t *testing.T) {
	_, err := NewBcryptPasswordHasher(bcrypt.MinCost).Hash(strings.Repeat("a", 73))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}
