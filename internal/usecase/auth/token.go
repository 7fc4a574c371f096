package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/gdugdh24/barter-backend/internal/domain"
)

// TokenUseCase verifies access tokens issued by the identity provider. The
// profile id is carried in the "sub" claim.
type TokenUseCase struct {
	secret []byte
	now    func() time.Time
}

func NewTokenUseCase(secret string) *TokenUseCase {
	return &TokenUseCase{secret: []byte(secret), now: time.Now}
}

// IssueToken signs an HS256 token for profileID. Used by tooling and tests;
// production tokens come from the identity provider sharing the secret.
func (uc *TokenUseCase) IssueToken(profileID string, ttl time.Duration) (string, time.Time, error) {
	now := uc.now()
	expiresAt := now.Add(ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   profileID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})

	tokenString, err := token.SignedString(uc.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// VerifyToken verifies the token and returns the profile id
func (uc *TokenUseCase) VerifyToken(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrInvalidToken
		}
		return uc.secret, nil
	}, jwt.WithTimeFunc(uc.now), jwt.WithExpirationRequired())

	if err != nil || !token.Valid {
		return "", domain.ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", domain.ErrInvalidToken
	}
	return claims.Subject, nil
}
