package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const adminSubject = "predictcore-admin"

// IssueAdminToken mints a signed admin JWT. Only the login handler calls
// this, after checking the configured password hash.
func IssueAdminToken(secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   adminSubject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateAdminToken checks the bearer token on privileged routes (fee
// withdrawal, emergency drain). Nil means authorized.
func ValidateAdminToken(r *http.Request, secret string) *HTTPError {
	if secret == "" {
		return &HTTPError{
			StatusCode: http.StatusForbidden,
			Message:    "Admin access is not configured",
		}
	}

	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return &HTTPError{
			StatusCode: http.StatusUnauthorized,
			Message:    "Admin bearer token required",
		}
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid || claims.Subject != adminSubject {
		return &HTTPError{
			StatusCode: http.StatusUnauthorized,
			Message:    "Invalid or expired admin token",
		}
	}
	return nil
}
