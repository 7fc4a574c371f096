package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gdugdh24/barter-backend/internal/domain"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestIssueAndVerify(t *testing.T) {
	uc := NewTokenUseCase(secret)

	token, expiresAt, err := uc.IssueToken("alice", time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	id, err := uc.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", id)
}

func TestVerifyRejects(t *testing.T) {
	uc := NewTokenUseCase(secret)

	expired, _, err := uc.IssueToken("alice", -time.Minute)
	require.NoError(t, err)

	otherKey, _, err := NewTokenUseCase("another-secret-another-secret-xx").IssueToken("alice", time.Hour)
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(secret))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "alice",
	}).SignedString([]byte(secret))
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":    "not-a-token",
		"expired":    expired,
		"wrong key":  otherKey,
		"no subject": noSubject,
		"no expiry":  noExpiry,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := uc.VerifyToken(token)
			assert.ErrorIs(t, err, domain.ErrInvalidToken)
		})
	}
}
