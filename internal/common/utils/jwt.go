// internal/common/utils/jwt.go
// JWT token generation and validation for the API boundary.
// Token issuance itself belongs to the account service; this core only
// needs to mint tokens in tests and verify them in the auth middleware.

package utils

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// JWTClaims is the subset of claims the matching core cares about
type JWTClaims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Type     string `json:"type"` // "access" or "refresh"
}

// GenerateJWT creates a signed access token for the given claims
func GenerateJWT(claims *JWTClaims, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  fmt.Sprintf("%d", claims.UserID),
		"username": claims.Username,
		"type":     claims.Type,
		"exp":      now.Add(ttl).Unix(),
		"iat":      now.Unix(),
		"sub":      fmt.Sprintf("%d", claims.UserID),
	})

	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateJWT validates a JWT token and returns its claims
func ValidateJWT(tokenString string, secret string) (*JWTClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return nil, errors.New("invalid user_id in token")
	}
	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil {
		return nil, errors.New("invalid user_id format")
	}

	out := &JWTClaims{UserID: userID}
	if username, ok := claims["username"].(string); ok {
		out.Username = username
	}
	if typ, ok := claims["type"].(string); ok {
		out.Type = typ
	}

	return out, nil
}
