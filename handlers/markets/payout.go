package markets

import (
	"errors"
	"math/big"
	"net/http"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"predictcore/handlers/math/fixedpoint"
	"predictcore/middleware"
	"predictcore/models"
)

// TraderPayoutResponse reports one trader's claimable payout.
type TraderPayoutResponse struct {
	MarketID uint64         `json:"marketId"`
	Trader   string         `json:"trader"`
	Resolved bool           `json:"resolved"`
	Payout   models.Numeric `json:"payout"`
	Redeemed bool           `json:"redeemed"`
}

// TotalPayoutResponse reports the market-wide distributable total.
type TotalPayoutResponse struct {
	MarketID uint64         `json:"marketId"`
	Resolved bool           `json:"resolved"`
	Total    models.Numeric `json:"total"`
	PaidOut  models.Numeric `json:"paidOut"`
}

// ClaimPayoutResponse is returned after a successful claim.
type ClaimPayoutResponse struct {
	Success    bool           `json:"success"`
	MarketID   uint64         `json:"marketId"`
	Payout     models.Numeric `json:"payout"`
	NewBalance models.Numeric `json:"newBalance"`
}

// traderPayout computes the proportional payout for one position:
// winnerShares * marketBalance / totalWinningShares, rounded down. The
// round-down at every position is what keeps the sum of payouts at or below
// the market balance, with at most one minimal unit of dust per winner left
// attributed to the market.
func traderPayout(market *models.Market, position *models.Position) (*big.Int, error) {
	outcome, winningShares, ok := market.Resolution()
	if !ok {
		return big.NewInt(0), nil
	}
	if winningShares.Sign() == 0 {
		// No winners exist; funds stay with the market.
		return big.NewInt(0), nil
	}

	winnerShares := position.NoShares.Big()
	if outcome {
		winnerShares = position.YesShares.Big()
	}
	if winnerShares.Sign() == 0 {
		return big.NewInt(0), nil
	}
	return fixedpoint.MulDiv(winnerShares, market.MarketBalance.Big(), winningShares)
}

// TraderPayoutHandler handles GET /v0/markets/{id}/payout/{address}
//
// O(1): one market row, one position row, no participant scan — the
// winning-shares cache was frozen at resolution.
func TraderPayoutHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		marketID, ok := marketIDFromRequest(r)
		if !ok {
			http.Error(w, "Invalid market ID", http.StatusBadRequest)
			return
		}
		address := mux.Vars(r)["address"]

		market, err := loadMarket(db, marketID)
		if err != nil {
			writeLedgerError(w, err)
			return
		}

		resp := TraderPayoutResponse{MarketID: marketID, Trader: address, Resolved: market.Resolved()}

		var position models.Position
		err = db.Where("market_id = ? AND trader_address = ?", marketID, address).First(&position).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			resp.Payout = models.NewNumeric(big.NewInt(0))
			respondJSON(w, http.StatusOK, resp)
			return
		}
		if err != nil {
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}

		payout, err := traderPayout(market, &position)
		if err != nil {
			http.Error(w, "Payout computation failed", http.StatusInternalServerError)
			return
		}
		resp.Payout = models.NewNumeric(payout)
		resp.Redeemed = position.Redeemed
		respondJSON(w, http.StatusOK, resp)
	}
}

// TotalPayoutHandler handles GET /v0/markets/{id}/payout
func TotalPayoutHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		marketID, ok := marketIDFromRequest(r)
		if !ok {
			http.Error(w, "Invalid market ID", http.StatusBadRequest)
			return
		}

		market, err := loadMarket(db, marketID)
		if err != nil {
			writeLedgerError(w, err)
			return
		}

		total := big.NewInt(0)
		if market.Resolved() {
			total = market.MarketBalance.Big()
		}
		respondJSON(w, http.StatusOK, TotalPayoutResponse{
			MarketID: marketID,
			Resolved: market.Resolved(),
			Total:    models.NewNumeric(total),
			PaidOut:  market.PaidOut,
		})
	}
}

// ClaimPayoutHandler handles POST /v0/markets/{id}/claim
//
// Credits the caller's account with their payout, once per position.
func ClaimPayoutHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		trader, httpErr := middleware.ValidateTraderAPIKey(r, db)
		if httpErr != nil {
			http.Error(w, httpErr.Message, httpErr.StatusCode)
			return
		}

		marketID, ok := marketIDFromRequest(r)
		if !ok {
			http.Error(w, "Invalid market ID", http.StatusBadRequest)
			return
		}

		var resp ClaimPayoutResponse
		err := db.Transaction(func(tx *gorm.DB) error {
			market, err := loadMarket(tx, marketID)
			if err != nil {
				return err
			}
			if !market.Resolved() {
				return ErrNothingToClaim
			}

			var position models.Position
			err = tx.Where("market_id = ? AND trader_address = ?", marketID, trader.Address).First(&position).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNothingToClaim
			}
			if err != nil {
				return err
			}
			if position.Redeemed {
				return ErrAlreadyClaimed
			}

			payout, err := traderPayout(market, &position)
			if err != nil {
				return err
			}
			if payout.Sign() == 0 {
				return ErrNothingToClaim
			}

			// PaidOut can never pass MarketBalance: an emergency drain
			// advances it to the full balance, and any claim that would
			// oversubscribe what the market still holds is refused.
			remaining := new(big.Int).Sub(market.MarketBalance.Big(), market.PaidOut.Big())
			if payout.Cmp(remaining) > 0 {
				return ErrNothingToClaim
			}

			position.Redeemed = true
			if err := tx.Save(&position).Error; err != nil {
				return err
			}

			market.PaidOut = models.NewNumeric(new(big.Int).Add(market.PaidOut.Big(), payout))
			if err := tx.Save(market).Error; err != nil {
				return err
			}

			newBalance := new(big.Int).Add(trader.AccountBalance.Big(), payout)
			trader.AccountBalance = models.NewNumeric(newBalance)
			if err := tx.Save(trader).Error; err != nil {
				return err
			}

			resp = ClaimPayoutResponse{
				Success:    true,
				MarketID:   marketID,
				Payout:     models.NewNumeric(payout),
				NewBalance: models.NewNumeric(newBalance),
			}
			return nil
		})
		if err != nil {
			writeLedgerError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, resp)
	}
}
