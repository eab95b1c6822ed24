package utils

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingAuthHeader = errors.New("missing or malformed Authorization header")
	ErrInvalidToken      = errors.New("invalid token")
	ErrInvalidClaims     = errors.New("invalid token claims")
)

// CreateWatchToken issues a short-lived token that grants a recruiter
// read access to one session's live stream.
func CreateWatchToken(sessionID, secret string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":   sessionID,
		"scope": "watch",
		"exp":   time.Now().Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// VerifyWatchToken validates a watch token and returns the session ID it
// grants access to. Tokens may arrive via the Authorization header or the
// "token" query parameter (websocket clients cannot set headers).
func VerifyWatchToken(r *http.Request, secret string) (string, error) {
	tokenStr := bearerToken(r)
	if tokenStr == "" {
		tokenStr = r.URL.Query().Get("token")
	}
	if tokenStr == "" {
		return "", ErrMissingAuthHeader
	}

	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidClaims
	}
	if scope, _ := claims["scope"].(string); scope != "watch" {
		return "", ErrInvalidClaims
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", ErrInvalidClaims
	}
	return sub, nil
}

func bearerToken(r *http.Request) string {
	authz := r.Header.Get("Authorization")
	if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(authz, "Bearer ")
}
