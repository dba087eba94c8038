// Package auth mints and parses the signed bearer tokens used for sessions.
// Tokens are HS256 JWTs carrying the user ID and a random token ID; any
// bit-flip breaks the signature, so a parsed token is tamper-evident.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims extends the registered claims with the owning user's ID.
type Claims struct {
	jwt.RegisteredClaims
	UserID string
}

// GenerateToken produces a signed token for userID. A zero validity omits
// the expiry claim: revocation is then the only way a token dies, and expiry
// can be switched on later without changing this signature.
func GenerateToken(userID string, secretKey []byte, validity time.Duration) (string, error) {
	tokenID, err := common.MakeRandHexString(16)
	if err != nil {
		return "", err
	}

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       tokenID,
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
		UserID: userID,
	}
	if validity > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(validity))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secretKey)
}

// GetUserIDFromToken verifies the signature and returns the embedded user ID.
func GetUserIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, common.ErrorUnauthenticated
		}
		return secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrorUnauthenticated
		}
		return "", err
	}

	if !token.Valid {
		return "", common.ErrorUnauthenticated
	}

	return claims.UserID, nil
}
