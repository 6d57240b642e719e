package markets

import (
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"time"

	"gorm.io/gorm"

	"predictcore/events"
	"predictcore/handlers/math/probabilities/lmsr"
	"predictcore/middleware"
	"predictcore/models"
	"predictcore/setup"
)

// BuySharesRequest is the request body for buying shares. Payment is the
// attached native value; anything above the LMSR cost is refunded in the
// same call.
type BuySharesRequest struct {
	Side    string         `json:"side" validate:"required,oneof=yes no"`
	Shares  models.Numeric `json:"shares"`
	Payment models.Numeric `json:"payment"`
}

// BuySharesResponse is returned after a successful trade.
type BuySharesResponse struct {
	Success     bool           `json:"success"`
	MarketID    uint64         `json:"marketId"`
	Side        string         `json:"side"`
	Shares      models.Numeric `json:"shares"`
	CostCharged models.Numeric `json:"costCharged"`
	Fee         models.Numeric `json:"fee"`
	Refund      models.Numeric `json:"refund"`
	NewBalance  models.Numeric `json:"newBalance"`
	PriceYes    models.Numeric `json:"priceYes"`
	PriceNo     models.Numeric `json:"priceNo"`
}

// BuySharesHandler handles POST /v0/markets/{id}/buy
//
// The whole trade is one transaction: quantities, balances, the position,
// the participant set, the whale record and the fee pool move together or
// not at all.
func BuySharesHandler(db *gorm.DB, cfg *setup.Config) http.HandlerFunc {
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

		var req BuySharesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(&req); err != nil {
			http.Error(w, "Invalid trade data: "+err.Error(), http.StatusBadRequest)
			return
		}
		if req.Shares.Big().Sign() <= 0 {
			http.Error(w, ErrInvalidShareAmount.Error(), http.StatusBadRequest)
			return
		}

		var resp BuySharesResponse
		err := db.Transaction(func(tx *gorm.DB) error {
			market, err := loadMarket(tx, marketID)
			if err != nil {
				return err
			}
			if market.Resolved() {
				return ErrMarketAlreadyResolved
			}
			now := time.Now()
			if !now.Before(market.Deadline) {
				return ErrDeadlinePassed
			}

			side := lmsr.Side(req.Side)
			maker, err := makerFor(market)
			if err != nil {
				return err
			}
			cost, err := maker.CostToBuy(market.QYes.Big(), market.QNo.Big(), side, req.Shares.Big())
			if err != nil {
				return err
			}

			payment := req.Payment.Big()
			if payment.Cmp(cost) < 0 {
				return ErrInsufficientPayment
			}
			if trader.AccountBalance.Big().Cmp(payment) < 0 {
				return ErrInsufficientBalance
			}
			refund := new(big.Int).Sub(payment, cost)

			fee, netToMarket := splitFee(cost, cfg.Economics.FeeRateBps)

			// Quantities and balances
			if side == lmsr.Yes {
				market.QYes = models.NewNumeric(new(big.Int).Add(market.QYes.Big(), req.Shares.Big()))
			} else {
				market.QNo = models.NewNumeric(new(big.Int).Add(market.QNo.Big(), req.Shares.Big()))
			}
			market.MarketBalance = models.NewNumeric(new(big.Int).Add(market.MarketBalance.Big(), netToMarket))
			market.FeeBalance = models.NewNumeric(new(big.Int).Add(market.FeeBalance.Big(), fee))
			if err := tx.Save(market).Error; err != nil {
				return err
			}

			// Trader pays the attached value and keeps the refund, a net
			// debit of exactly the cost.
			newBalance := new(big.Int).Sub(trader.AccountBalance.Big(), cost)
			trader.AccountBalance = models.NewNumeric(newBalance)
			if err := tx.Save(trader).Error; err != nil {
				return err
			}

			// Position
			position, err := upsertPosition(tx, marketID, trader.Address)
			if err != nil {
				return err
			}
			if side == lmsr.Yes {
				position.YesShares = models.NewNumeric(new(big.Int).Add(position.YesShares.Big(), req.Shares.Big()))
			} else {
				position.NoShares = models.NewNumeric(new(big.Int).Add(position.NoShares.Big(), req.Shares.Big()))
			}
			position.TotalStaked = models.NewNumeric(new(big.Int).Add(position.TotalStaked.Big(), cost))
			if err := tx.Save(position).Error; err != nil {
				return err
			}

			// Participant set (idempotent)
			if err := registerParticipant(tx, marketID, trader.Address, now); err != nil {
				return err
			}

			// Whale record: strictly larger single-trade cost replaces it.
			if err := updateWhaleRecord(tx, market, req.Side, trader.Address, cost, now); err != nil {
				return err
			}

			// Cross-market fee accumulator
			if err := accrueFee(tx, fee); err != nil {
				return err
			}

			py, pn, err := prices(market)
			if err != nil {
				return err
			}

			events.Emit(tx, models.EventSharesPurchased, marketID, trader.Address, map[string]interface{}{
				"side":   req.Side,
				"shares": req.Shares.Int.String(),
				"cost":   cost.String(),
				"fee":    fee.String(),
			})

			resp = BuySharesResponse{
				Success:     true,
				MarketID:    marketID,
				Side:        req.Side,
				Shares:      req.Shares,
				CostCharged: models.NewNumeric(cost),
				Fee:         models.NewNumeric(fee),
				Refund:      models.NewNumeric(refund),
				NewBalance:  models.NewNumeric(newBalance),
				PriceYes:    models.NewNumeric(py),
				PriceNo:     models.NewNumeric(pn),
			}
			return nil
		})
		if err != nil {
			writeLedgerError(w, err)
			return
		}

		respondJSON(w, http.StatusCreated, resp)
	}
}

func upsertPosition(tx *gorm.DB, marketID uint64, address string) (*models.Position, error) {
	var position models.Position
	err := tx.Where("market_id = ? AND trader_address = ?", marketID, address).First(&position).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		position = models.Position{MarketID: marketID, TraderAddress: address}
		if err := tx.Create(&position).Error; err != nil {
			return nil, err
		}
		return &position, nil
	}
	if err != nil {
		return nil, err
	}
	return &position, nil
}

func registerParticipant(tx *gorm.DB, marketID uint64, address string, now time.Time) error {
	var count int64
	err := tx.Model(&models.Participant{}).
		Where("market_id = ? AND trader_address = ?", marketID, address).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return tx.Create(&models.Participant{
		MarketID:      marketID,
		TraderAddress: address,
		FirstTradeAt:  now,
	}).Error
}

func updateWhaleRecord(tx *gorm.DB, market *models.Market, side, address string, cost *big.Int, now time.Time) error {
	var record models.WhaleBet
	err := tx.Where("market_id = ? AND side = ?", market.ID, side).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		record = models.WhaleBet{
			MarketID:   market.ID,
			Side:       side,
			Address:    address,
			Amount:     models.NewNumeric(cost),
			RecordedAt: now,
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		events.Emit(tx, models.EventWhaleBetUpdated, market.ID, address, map[string]interface{}{
			"side": side, "amount": cost.String(),
		})
		return nil
	}
	if err != nil {
		return err
	}

	// Ties keep the incumbent.
	if cost.Cmp(record.Amount.Big()) <= 0 {
		return nil
	}
	record.Address = address
	record.Amount = models.NewNumeric(cost)
	record.RecordedAt = now
	if err := tx.Save(&record).Error; err != nil {
		return err
	}
	events.Emit(tx, models.EventWhaleBetUpdated, market.ID, address, map[string]interface{}{
		"side": side, "amount": cost.String(),
	})
	return nil
}

func accrueFee(tx *gorm.DB, fee *big.Int) error {
	if fee.Sign() == 0 {
		return nil
	}
	var pool models.FeePool
	if err := tx.First(&pool, 1).Error; err != nil {
		return err
	}
	pool.Balance = models.NewNumeric(new(big.Int).Add(pool.Balance.Big(), fee))
	return tx.Save(&pool).Error
}

// writeLedgerError maps ledger errors onto HTTP statuses, keeping unknown
// failures as 500s.
func writeLedgerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrMarketNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrMarketAlreadyResolved),
		errors.Is(err, ErrDeadlinePassed),
		errors.Is(err, ErrDeadlineNotReached),
		errors.Is(err, ErrAlreadyClaimed),
		errors.Is(err, ErrNothingToClaim):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrInsufficientPayment),
		errors.Is(err, ErrInsufficientBalance):
		http.Error(w, err.Error(), http.StatusPaymentRequired)
	case errors.Is(err, ErrInvalidShareAmount),
		errors.Is(err, lmsr.ErrInvalidShareAmount),
		errors.Is(err, lmsr.ErrInvalidLiquidity):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "Internal error: "+err.Error(), http.StatusInternalServerError)
	}
}
