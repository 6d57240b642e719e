package markets

import (
	"errors"
	"math/big"
	"net/http"
	"time"

	"gorm.io/gorm"

	"predictcore/events"
	"predictcore/models"
	"predictcore/oracle"
)

// ResolveMarketResponse is returned after a successful resolution.
type ResolveMarketResponse struct {
	Success       bool           `json:"success"`
	MarketID      uint64         `json:"marketId"`
	Outcome       string         `json:"outcome"`
	Reading       models.Numeric `json:"reading"`
	TargetValue   models.Numeric `json:"targetValue"`
	WinningShares models.Numeric `json:"winningShares"`
}

// ResolveMarketHandler handles POST /v0/markets/{id}/resolve
//
// Anyone may trigger resolution once the deadline has passed. The oracle is
// consulted before any state is touched: if the adapter fails, the market
// stays open and the call can simply be retried later. The terminal write —
// state, outcome and the winning-shares cache — happens exactly once.
func ResolveMarketHandler(db *gorm.DB, adapters oracle.Adapters) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

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
		if market.Resolved() {
			writeLedgerError(w, ErrMarketAlreadyResolved)
			return
		}
		if time.Now().Before(market.Deadline) {
			writeLedgerError(w, ErrDeadlineNotReached)
			return
		}

		// Oracle read happens outside the transaction; a failure here leaves
		// the ledger untouched.
		reading, err := currentReading(r, market, adapters)
		if err != nil {
			if errors.Is(err, oracle.ErrInvalidFeedID) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "Resolution data unavailable, retry later: "+err.Error(), http.StatusServiceUnavailable)
			return
		}

		// Ties favor YES.
		outcome := reading.Cmp(market.TargetValue.Big()) >= 0

		var resp ResolveMarketResponse
		err = db.Transaction(func(tx *gorm.DB) error {
			fresh, err := loadMarket(tx, marketID)
			if err != nil {
				return err
			}
			if fresh.Resolved() {
				return ErrMarketAlreadyResolved
			}

			// The cache converts payout lookups to O(1); it is written even
			// when it is zero (no winners).
			winning := fresh.QNo.Big()
			if outcome {
				winning = fresh.QYes.Big()
			}

			now := time.Now()
			winningShares := models.NewNumeric(winning)
			fresh.State = models.MarketStateResolved
			fresh.Outcome = &outcome
			fresh.WinningShares = &winningShares
			fresh.ResolvedAt = &now
			if err := tx.Save(fresh).Error; err != nil {
				return err
			}

			events.Emit(tx, models.EventMarketResolved, marketID, "", map[string]interface{}{
				"outcome":       outcomeLabel(outcome),
				"reading":       reading.String(),
				"winningShares": winning.String(),
			})

			resp = ResolveMarketResponse{
				Success:       true,
				MarketID:      marketID,
				Outcome:       outcomeLabel(outcome),
				Reading:       models.NewNumeric(reading),
				TargetValue:   fresh.TargetValue,
				WinningShares: winningShares,
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

// currentReading fetches the comparison value from the adapter configured
// for this market's kind.
func currentReading(r *http.Request, market *models.Market, adapters oracle.Adapters) (*big.Int, error) {
	switch market.Kind {
	case models.MarketKindLiquidity:
		if adapters.Pool == nil {
			return nil, oracle.ErrUnavailable
		}
		return adapters.Pool.Liquidity(r.Context())
	default:
		if adapters.Prices == nil {
			return nil, oracle.ErrUnavailable
		}
		reading, err := adapters.Prices.Reading(r.Context(), market.FeedID)
		if err != nil {
			return nil, err
		}
		return reading.Value, nil
	}
}

func outcomeLabel(outcome bool) string {
	if outcome {
		return "yes"
	}
	return "no"
}
