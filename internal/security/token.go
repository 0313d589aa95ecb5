package security

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the bearer-token payload. The "id" claim carries the user
// identifier and is the only claim clients may rely on.
type TokenClaims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// IssueToken signs a self-contained bearer credential for userID. It is
// stateless: nothing is persisted and the token cannot be revoked before
// its expiry.
func IssueToken(secret string, userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := TokenClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign jwt: %w", err)
	}
	return signed, nil
}

// ParseToken verifies signature and expiry and returns the embedded claims.
// It fails closed: any structural, signature, or expiry problem is an error.
// It does not check that the user still exists.
func ParseToken(tokenStr string, secret string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*TokenClaims); ok && token.Valid && claims.UserID != "" {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}
