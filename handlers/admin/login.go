package adminhandlers

import (
	"encoding/json"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"predictcore/middleware"
	"predictcore/setup"
)

// LoginRequest carries the admin password.
type LoginRequest struct {
	Password string `json:"password"`
}

// LoginResponse carries the bearer token for privileged routes.
type LoginResponse struct {
	Token string `json:"token"`
}

// LoginHandler handles POST /v0/admin/login
func LoginHandler(cfg *setup.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if cfg.Admin.PasswordHash == "" || cfg.Admin.JWTSecret == "" {
			http.Error(w, "Admin access is not configured", http.StatusForbidden)
			return
		}

		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		if bcrypt.CompareHashAndPassword([]byte(cfg.Admin.PasswordHash), []byte(req.Password)) != nil {
			http.Error(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}

		token, err := middleware.IssueAdminToken(cfg.Admin.JWTSecret, cfg.Admin.TokenTTL)
		if err != nil {
			http.Error(w, "Failed to issue token", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(LoginResponse{Token: token})
	}
}
