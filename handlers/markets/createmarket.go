package markets

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"predictcore/events"
	"predictcore/middleware"
	"predictcore/models"
	"predictcore/oracle"
	"predictcore/setup"
)

var validate = validator.New()

// CreateMarketRequest is the request body for creating a market.
type CreateMarketRequest struct {
	Description string         `json:"description" validate:"required"`
	Kind        string         `json:"kind" validate:"required,oneof=price liquidity"`
	FeedID      string         `json:"feedId"`
	TargetValue models.Numeric `json:"targetValue"`
	Deadline    time.Time      `json:"deadline" validate:"required"`
	Liquidity   models.Numeric `json:"liquidity"`
}

// CreateMarketResponse is returned after creating a market.
type CreateMarketResponse struct {
	Success bool          `json:"success"`
	Market  models.Market `json:"market"`
}

// CreateMarketHandler handles POST /v0/markets
func CreateMarketHandler(db *gorm.DB, cfg *setup.Config) http.HandlerFunc {
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

		var req CreateMarketRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
			return
		}
		if err := validate.Struct(&req); err != nil {
			http.Error(w, "Invalid market data: "+err.Error(), http.StatusBadRequest)
			return
		}

		econ := cfg.Economics
		// Bounds are in characters, so multi-byte descriptions are not
		// penalized for their encoding.
		length := utf8.RuneCountInString(req.Description)
		if length < econ.MinDescriptionLen || length > econ.MaxDescriptionLen {
			http.Error(w, fmt.Sprintf("Description must be %d-%d characters",
				econ.MinDescriptionLen, econ.MaxDescriptionLen), http.StatusBadRequest)
			return
		}

		now := time.Now()
		if !req.Deadline.After(now.Add(econ.MinDeadlineLead)) ||
			!req.Deadline.Before(now.Add(econ.MaxDeadlineWindow)) {
			http.Error(w, ErrInvalidDeadline.Error(), http.StatusBadRequest)
			return
		}

		minLiquidity, err := cfg.MinLiquidityBig()
		if err != nil {
			http.Error(w, "Server misconfiguration", http.StatusInternalServerError)
			return
		}
		if req.Liquidity.Big().Cmp(minLiquidity) < 0 {
			http.Error(w, ErrInvalidLiquidityParam.Error(), http.StatusBadRequest)
			return
		}

		if req.TargetValue.Big().Sign() <= 0 {
			http.Error(w, ErrInvalidTargetValue.Error(), http.StatusBadRequest)
			return
		}

		if req.Kind == models.MarketKindPrice && !oracle.ValidFeedID(req.FeedID) {
			http.Error(w, "Price markets require a valid feed id", http.StatusBadRequest)
			return
		}

		newMarket := models.Market{
			Description:    req.Description,
			Kind:           req.Kind,
			FeedID:         req.FeedID,
			TargetValue:    req.TargetValue,
			Deadline:       req.Deadline,
			Liquidity:      req.Liquidity,
			CreatorAddress: trader.Address,
			State:          models.MarketStateOpen,
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&newMarket).Error; err != nil {
				return err
			}
			events.Emit(tx, models.EventMarketCreated, newMarket.ID, trader.Address, map[string]interface{}{
				"kind":        newMarket.Kind,
				"targetValue": newMarket.TargetValue.Int.String(),
				"deadline":    newMarket.Deadline,
			})
			return nil
		})
		if err != nil {
			http.Error(w, "Error creating market: "+err.Error(), http.StatusInternalServerError)
			return
		}

		respondJSON(w, http.StatusCreated, CreateMarketResponse{Success: true, Market: newMarket})
	}
}
