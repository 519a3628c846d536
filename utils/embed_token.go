package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
)

// EmbedClaims is what the host platform signs into the widget embed token:
// its own session flag plus any remote identity it has already bridged.
type EmbedClaims struct {
	IsLoggedIn   bool   `json:"isLoggedIn"`
	RemoteUserID int    `json:"remoteUserId,omitempty"`
	RemoteToken  string `json:"remoteToken,omitempty"`
	FullName     string `json:"fullName,omitempty"`
	CountryCode  string `json:"countryCode,omitempty"`
	Mobile       string `json:"mobile,omitempty"`
	Email        string `json:"email,omitempty"`
	jwt.StandardClaims
}

// MintEmbedToken signs an embed token; used by the host-platform shim and tests.
func MintEmbedToken(secret string, claims EmbedClaims, ttl time.Duration) (string, error) {
	claims.ExpiresAt = time.Now().Add(ttl).Unix()
	claims.IssuedAt = time.Now().Unix()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign embed token: %w", err)
	}
	return signed, nil
}

// ParseEmbedToken validates an embed token and returns its claims.
func ParseEmbedToken(secret, tokenString string) (*EmbedClaims, error) {
	claims := &EmbedClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid embed token")
	}
	return claims, nil
}
