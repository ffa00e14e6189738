package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTypeRefresh marks refresh tokens via the "type" claim. Access tokens
// carry no type claim.
const TokenTypeRefresh = "refresh"

// Claims is the JWT claim set for both access and refresh tokens.
type Claims struct {
	jwt.RegisteredClaims
	Type string `json:"type,omitempty"`
}

// TokenIssuer issues and parses HMAC-signed JWTs for the account service.
type TokenIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenIssuer(secret string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// IssueAccess creates a short-lived access token for the given username.
func (i *TokenIssuer) IssueAccess(username string) (string, error) {
	return i.sign(username, "", i.accessTTL)
}

// IssueRefresh creates a long-lived refresh token for the given username.
func (i *TokenIssuer) IssueRefresh(username string) (string, error) {
	return i.sign(username, TokenTypeRefresh, i.refreshTTL)
}

func (i *TokenIssuer) sign(username, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Type: tokenType,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse validates the token signature and expiry and returns its claims.
func (i *TokenIssuer) Parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// ParseRefresh validates a token and requires it to be a refresh token.
func (i *TokenIssuer) ParseRefresh(tokenStr string) (*Claims, error) {
	claims, err := i.Parse(tokenStr)
	if err != nil {
		return nil, err
	}
	if claims.Type != TokenTypeRefresh {
		return nil, fmt.Errorf("not a refresh token")
	}
	return claims, nil
}
