package markets

import (
	"math/big"
	"net/http"
	"sort"

	"gorm.io/gorm"

	"predictcore/models"
)

// LeaderboardEntry ranks one trader inside one market.
type LeaderboardEntry struct {
	Rank        int            `json:"rank"`
	Trader      string         `json:"trader"`
	YesShares   models.Numeric `json:"yesShares"`
	NoShares    models.Numeric `json:"noShares"`
	TotalStaked models.Numeric `json:"totalStaked"`
	Payout      models.Numeric `json:"payout"`
}

// LeaderboardHandler handles GET /v0/markets/{id}/leaderboard
//
// For a resolved market, traders rank by payout; while trading is open they
// rank by total stake.
func LeaderboardHandler(db *gorm.DB) http.HandlerFunc {
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

		var positions []models.Position
		if err := db.Where("market_id = ?", marketID).Find(&positions).Error; err != nil {
			http.Error(w, "Failed to fetch positions", http.StatusInternalServerError)
			return
		}

		entries := make([]LeaderboardEntry, 0, len(positions))
		for i := range positions {
			p := &positions[i]
			payout := big.NewInt(0)
			if market.Resolved() {
				payout, err = traderPayout(market, p)
				if err != nil {
					http.Error(w, "Payout computation failed", http.StatusInternalServerError)
					return
				}
			}
			entries = append(entries, LeaderboardEntry{
				Trader:      p.TraderAddress,
				YesShares:   p.YesShares,
				NoShares:    p.NoShares,
				TotalStaked: p.TotalStaked,
				Payout:      models.NewNumeric(payout),
			})
		}

		if market.Resolved() {
			sort.SliceStable(entries, func(i, j int) bool {
				return entries[i].Payout.Int.Cmp(&entries[j].Payout.Int) > 0
			})
		} else {
			sort.SliceStable(entries, func(i, j int) bool {
				return entries[i].TotalStaked.Int.Cmp(&entries[j].TotalStaked.Int) > 0
			})
		}
		for i := range entries {
			entries[i].Rank = i + 1
		}

		respondJSON(w, http.StatusOK, map[string]interface{}{
			"marketId":    marketID,
			"resolved":    market.Resolved(),
			"leaderboard": entries,
		})
	}
}
