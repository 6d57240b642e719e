package markets

import (
	"net/http"
	"time"

	"gorm.io/gorm"

	"predictcore/models"
	"predictcore/security"
)

// ListMarketsResponse wraps a market listing.
type ListMarketsResponse struct {
	Markets []models.Market `json:"markets"`
	Count   int             `json:"count"`
	Status  string          `json:"status"`
}

// ListMarketsHandler handles GET /v0/markets?status=active|expired|resolved
//
// Each listing is served off the (state, deadline) index — the cost is
// linear in the matching subset, never in the total market count.
func ListMarketsHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := r.URL.Query().Get("status")
		if status == "" {
			status = "active"
		}

		now := time.Now()
		query := db.Order("id ASC")
		switch status {
		case "active":
			query = query.Where("state = ? AND deadline > ?", models.MarketStateOpen, now)
		case "expired":
			query = query.Where("state = ? AND deadline <= ?", models.MarketStateOpen, now)
		case "resolved":
			query = query.Where("state = ?", models.MarketStateResolved)
		case "all":
		default:
			http.Error(w, "Status must be active, expired, resolved or all", http.StatusBadRequest)
			return
		}

		var list []models.Market
		if err := query.Find(&list).Error; err != nil {
			http.Error(w, "Failed to fetch markets", http.StatusInternalServerError)
			return
		}

		respondJSON(w, http.StatusOK, ListMarketsResponse{
			Markets: list,
			Count:   len(list),
			Status:  status,
		})
	}
}

// MarketDetailResponse is the full market view including live prices and a
// sanitized HTML rendering of the description.
type MarketDetailResponse struct {
	Market          models.Market     `json:"market"`
	DescriptionHTML string            `json:"descriptionHtml"`
	PriceYes        models.Numeric    `json:"priceYes"`
	PriceNo         models.Numeric    `json:"priceNo"`
	Expired         bool              `json:"expired"`
	Participants    int64             `json:"participants"`
	WhaleBets       []models.WhaleBet `json:"whaleBets"`
}

// MarketDetailHandler handles GET /v0/markets/{id}
func MarketDetailHandler(db *gorm.DB) http.HandlerFunc {
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

		py, pn, err := prices(market)
		if err != nil {
			http.Error(w, "Price computation failed", http.StatusInternalServerError)
			return
		}

		var participants int64
		db.Model(&models.Participant{}).Where("market_id = ?", marketID).Count(&participants)

		var whales []models.WhaleBet
		db.Where("market_id = ?", marketID).Order("side ASC").Find(&whales)

		respondJSON(w, http.StatusOK, MarketDetailResponse{
			Market:          *market,
			DescriptionHTML: security.RenderDescription(market.Description),
			PriceYes:        models.NewNumeric(py),
			PriceNo:         models.NewNumeric(pn),
			Expired:         market.Expired(time.Now()),
			Participants:    participants,
			WhaleBets:       whales,
		})
	}
}

// ParticipantsHandler handles GET /v0/markets/{id}/participants — the
// distinct traders of a market in first-trade order.
func ParticipantsHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		marketID, ok := marketIDFromRequest(r)
		if !ok {
			http.Error(w, "Invalid market ID", http.StatusBadRequest)
			return
		}
		if _, err := loadMarket(db, marketID); err != nil {
			writeLedgerError(w, err)
			return
		}

		var participants []models.Participant
		if err := db.Where("market_id = ?", marketID).Order("id ASC").Find(&participants).Error; err != nil {
			http.Error(w, "Failed to fetch participants", http.StatusInternalServerError)
			return
		}

		respondJSON(w, http.StatusOK, map[string]interface{}{
			"marketId":     marketID,
			"participants": participants,
			"count":        len(participants),
		})
	}
}

// WhaleBetsHandler handles GET /v0/markets/{id}/whales
func WhaleBetsHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		marketID, ok := marketIDFromRequest(r)
		if !ok {
			http.Error(w, "Invalid market ID", http.StatusBadRequest)
			return
		}
		if _, err := loadMarket(db, marketID); err != nil {
			writeLedgerError(w, err)
			return
		}

		var whales []models.WhaleBet
		if err := db.Where("market_id = ?", marketID).Order("side ASC").Find(&whales).Error; err != nil {
			http.Error(w, "Failed to fetch whale bets", http.StatusInternalServerError)
			return
		}

		respondJSON(w, http.StatusOK, map[string]interface{}{
			"marketId":  marketID,
			"whaleBets": whales,
		})
	}
}
