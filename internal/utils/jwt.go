package utils

import (
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the payload carried by both access and refresh tokens
type TokenClaims struct {
	UserID uint   `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func jwtSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-secret-change-me"
	}
	return []byte(secret)
}

func refreshSecret() []byte {
	secret := os.Getenv("JWT_REFRESH_SECRET")
	if secret == "" {
		return jwtSecret()
	}
	return []byte(secret)
}

// GenerateAccessToken signs a short-lived access token (24h)
func GenerateAccessToken(userID uint, email, role string) (string, error) {
	return signToken(userID, email, role, jwtSecret(), 24*time.Hour)
}

// GenerateRefreshToken signs a long-lived refresh token (7d)
func GenerateRefreshToken(userID uint, email, role string) (string, error) {
	return signToken(userID, email, role, refreshSecret(), 7*24*time.Hour)
}

func signToken(userID uint, email, role string, secret []byte, ttl time.Duration) (string, error) {
	claims := TokenClaims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// VerifyAccessToken parses and validates an access token
func VerifyAccessToken(tokenStr string) (*TokenClaims, error) {
	return verifyToken(tokenStr, jwtSecret())
}

// VerifyRefreshToken parses and validates a refresh token
func VerifyRefreshToken(tokenStr string) (*TokenClaims, error) {
	return verifyToken(tokenStr, refreshSecret())
}

func verifyToken(tokenStr string, secret []byte) (*TokenClaims, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		// Accept only HMAC signing
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
