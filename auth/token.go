package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/Mohammad-Harkous/chat-app/errors"
)

// TokenService issues and verifies the JWTs used by both the REST binding
// and the websocket handshake. HS256, subject = user id.
type TokenService struct {
	key      []byte
	duration time.Duration
}

type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

func NewTokenService(secret string, duration time.Duration) *TokenService {
	return &TokenService{key: []byte(secret), duration: duration}
}

// Issue creates a signed JWT for a specific user.
func (s *TokenService) Issue(userID string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.duration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "chat-app",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.key)
}

// Verify parses the token, checks signature and expiration, and returns the
// subject user id. Any failure collapses into ErrUnauthorized: callers never
// learn why a token was rejected.
func (s *TokenService) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return s.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", apperrors.ErrUnauthorized
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return "", apperrors.ErrUnauthorized
	}
	return claims.UserID, nil
}
