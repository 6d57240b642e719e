package adminhandlers

import (
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"predictcore/events"
	"predictcore/middleware"
	"predictcore/models"
	"predictcore/setup"
)

var errInsufficientFees = errors.New("requested amount exceeds accumulated fees")

// WithdrawFeesRequest asks for an exact amount out of the accumulated
// platform fees.
type WithdrawFeesRequest struct {
	Amount models.Numeric `json:"amount"`
}

// FeeBalanceHandler handles GET /v0/admin/fees
func FeeBalanceHandler(db *gorm.DB, cfg *setup.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if httpErr := middleware.ValidateAdminToken(r, cfg.Admin.JWTSecret); httpErr != nil {
			http.Error(w, httpErr.Message, httpErr.StatusCode)
			return
		}

		var pool models.FeePool
		if err := db.First(&pool, 1).Error; err != nil {
			http.Error(w, "Fee pool unavailable", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(pool)
	}
}

// WithdrawFeesHandler handles POST /v0/admin/fees/withdraw
//
// Debits exactly the requested amount from the cross-market accumulator;
// asking for more than has accumulated fails with no state change.
func WithdrawFeesHandler(db *gorm.DB, cfg *setup.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if httpErr := middleware.ValidateAdminToken(r, cfg.Admin.JWTSecret); httpErr != nil {
			http.Error(w, httpErr.Message, httpErr.StatusCode)
			return
		}

		var req WithdrawFeesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		amount := req.Amount.Big()
		if amount.Sign() <= 0 {
			http.Error(w, "Withdrawal amount must be positive", http.StatusBadRequest)
			return
		}

		var remaining *big.Int
		err := db.Transaction(func(tx *gorm.DB) error {
			var pool models.FeePool
			if err := tx.First(&pool, 1).Error; err != nil {
				return err
			}
			if pool.Balance.Big().Cmp(amount) < 0 {
				return errInsufficientFees
			}
			pool.Balance = models.NewNumeric(new(big.Int).Sub(pool.Balance.Big(), amount))
			pool.Withdrawn = models.NewNumeric(new(big.Int).Add(pool.Withdrawn.Big(), amount))
			if err := tx.Save(&pool).Error; err != nil {
				return err
			}
			remaining = pool.Balance.Big()

			events.Emit(tx, models.EventFeesWithdrawn, 0, "", map[string]interface{}{
				"amount": amount.String(),
			})
			return nil
		})
		if errors.Is(err, errInsufficientFees) {
			http.Error(w, "Requested amount exceeds accumulated fees", http.StatusConflict)
			return
		}
		if err != nil {
			http.Error(w, "Withdrawal failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":   true,
			"withdrawn": models.NewNumeric(amount),
			"remaining": models.NewNumeric(remaining),
		})
	}
}

// EmergencyWithdrawHandler handles POST /v0/admin/markets/{id}/emergency-withdraw
//
// Escape hatch: drains whatever has not been claimed from one market. The
// drain is recorded against PaidOut so later claims cannot oversubscribe.
func EmergencyWithdrawHandler(db *gorm.DB, cfg *setup.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if httpErr := middleware.ValidateAdminToken(r, cfg.Admin.JWTSecret); httpErr != nil {
			http.Error(w, httpErr.Message, httpErr.StatusCode)
			return
		}

		marketID, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
		if err != nil || marketID == 0 {
			http.Error(w, "Invalid market ID", http.StatusBadRequest)
			return
		}

		var drained *big.Int
		err = db.Transaction(func(tx *gorm.DB) error {
			var market models.Market
			if err := tx.First(&market, marketID).Error; err != nil {
				return err
			}
			drained = new(big.Int).Sub(market.MarketBalance.Big(), market.PaidOut.Big())
			if drained.Sign() < 0 {
				drained = big.NewInt(0)
			}
			market.PaidOut = market.MarketBalance
			if err := tx.Save(&market).Error; err != nil {
				return err
			}

			events.Emit(tx, models.EventEmergencyWithdrawal, marketID, "", map[string]interface{}{
				"amount": drained.String(),
			})
			return nil
		})
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "Market not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, "Emergency withdrawal failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":  true,
			"marketId": marketID,
			"drained":  models.NewNumeric(drained),
		})
	}
}
