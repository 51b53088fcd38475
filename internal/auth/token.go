// Package auth covers credentials: password hashing, the access/refresh
// token pair and request validation.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Igor-Gurskiy/UrbanConnect/internal/apperr"
)

const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 24 * time.Hour

	// "Remember me" stretches both tokens.
	RememberAccessTTL  = 30 * 24 * time.Hour
	RememberRefreshTTL = 60 * 24 * time.Hour
)

type Claims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// TokenIssuer signs and verifies the token pair. Access and refresh
// tokens use separate secrets so a leaked access secret cannot mint
// long-lived refresh tokens.
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
}

func NewTokenIssuer(accessSecret, refreshSecret string) *TokenIssuer {
	return &TokenIssuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
	}
}

func (t *TokenIssuer) GenerateTokens(userID string, accessTTL, refreshTTL time.Duration) (*TokenPair, error) {
	access, err := sign(userID, t.accessSecret, accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := sign(userID, t.refreshSecret, refreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (t *TokenIssuer) VerifyAccess(token string) (*Claims, error) {
	return verify(token, t.accessSecret)
}

func (t *TokenIssuer) VerifyRefresh(token string) (*Claims, error) {
	return verify(token, t.refreshSecret)
}

func sign(userID string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "urbanconnect",
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func verify(tokenString string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, apperr.ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, apperr.ErrInvalidToken
}
