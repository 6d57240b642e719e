package traders

import (
	"encoding/json"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"predictcore/middleware"
	"predictcore/models"
	"predictcore/setup"
)

// RegisterRequest is the request body for trader registration.
type RegisterRequest struct {
	Name string `json:"name"`
}

// RegisterResponse is returned after successful registration. The API key is
// shown exactly once.
type RegisterResponse struct {
	Trader    models.TraderPublic `json:"trader"`
	APIKey    string              `json:"apiKey"`
	Important string              `json:"important"`
}

// RegisterHandler handles POST /v0/traders/register
func RegisterHandler(db *gorm.DB, cfg *setup.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		req.Name = strings.TrimSpace(req.Name)
		if len(req.Name) < 3 || len(req.Name) > 50 {
			http.Error(w, "Trader name must be 3-50 characters", http.StatusBadRequest)
			return
		}

		apiKey, err := models.GenerateAPIKey()
		if err != nil {
			http.Error(w, "Failed to generate API key", http.StatusInternalServerError)
			return
		}
		address, err := models.GenerateAddress()
		if err != nil {
			http.Error(w, "Failed to generate address", http.StatusInternalServerError)
			return
		}

		balance, err := cfg.InitialTraderBalanceBig()
		if err != nil {
			http.Error(w, "Server misconfiguration", http.StatusInternalServerError)
			return
		}

		trader := models.Trader{
			Name:           req.Name,
			Address:        address,
			APIKey:         apiKey,
			AccountBalance: models.NewNumeric(balance),
			IsActive:       true,
		}
		if err := db.Create(&trader).Error; err != nil {
			http.Error(w, "Failed to register trader", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(RegisterResponse{
			Trader:    trader.ToPublic(),
			APIKey:    apiKey,
			Important: "Store this API key now. It cannot be retrieved again.",
		})
	}
}

// MeHandler handles GET /v0/traders/me — the authenticated trader's account
// and open positions.
func MeHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		trader, httpErr := middleware.ValidateTraderAPIKey(r, db)
		if httpErr != nil {
			http.Error(w, httpErr.Message, httpErr.StatusCode)
			return
		}

		var positions []models.Position
		if err := db.Where("trader_address = ?", trader.Address).Order("market_id ASC").Find(&positions).Error; err != nil {
			http.Error(w, "Failed to fetch positions", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"trader":    trader.ToPublic(),
			"positions": positions,
		})
	}
}
