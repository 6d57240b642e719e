package middleware

import (
	"net/http"
	"strings"

	"gorm.io/gorm"

	"predictcore/models"
)

// HTTPError is an authentication/authorization failure carrying the status
// code the handler should respond with.
type HTTPError struct {
	StatusCode int
	Message    string
}

// ValidateTraderAPIKey validates a trader's API key and returns the trader.
func ValidateTraderAPIKey(r *http.Request, db *gorm.DB) (*models.Trader, *HTTPError) {
	// Try X-API-Key header first
	apiKey := r.Header.Get("X-API-Key")

	// Fallback to Authorization bearer token
	if apiKey == "" {
		authHeader := r.Header.Get("Authorization")
		if strings.HasPrefix(authHeader, "Bearer pm_sk_") {
			apiKey = strings.TrimPrefix(authHeader, "Bearer ")
		}
	}

	if apiKey == "" {
		return nil, &HTTPError{
			StatusCode: http.StatusUnauthorized,
			Message:    "Trader API key required. Use X-API-Key header or 'Bearer <key>' in Authorization header",
		}
	}

	if !strings.HasPrefix(apiKey, "pm_sk_") {
		return nil, &HTTPError{
			StatusCode: http.StatusUnauthorized,
			Message:    "Invalid API key format",
		}
	}

	var trader models.Trader
	result := db.Where("api_key = ?", apiKey).First(&trader)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, &HTTPError{
				StatusCode: http.StatusUnauthorized,
				Message:    "Invalid trader API key",
			}
		}
		return nil, &HTTPError{
			StatusCode: http.StatusInternalServerError,
			Message:    "Database error validating trader",
		}
	}

	if !trader.IsActive {
		return nil, &HTTPError{
			StatusCode: http.StatusForbidden,
			Message:    "Trader account is deactivated",
		}
	}

	return &trader, nil
}
