package markets

import (
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"predictcore/handlers/math/probabilities/lmsr"
	"predictcore/models"
)

// feeDenominator converts basis points to a fraction.
var feeDenominator = big.NewInt(10000)

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// marketIDFromRequest parses the {id} path variable.
func marketIDFromRequest(r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// loadMarket fetches one market, mapping a missing row to ErrMarketNotFound.
func loadMarket(db *gorm.DB, id uint64) (*models.Market, error) {
	var market models.Market
	if err := db.First(&market, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMarketNotFound
		}
		return nil, err
	}
	return &market, nil
}

// makerFor builds the LMSR pricer for a market's liquidity parameter.
func makerFor(market *models.Market) (*lmsr.LMSR, error) {
	return lmsr.New(market.Liquidity.Big())
}

// prices returns the current YES and NO prices for a market.
func prices(market *models.Market) (*big.Int, *big.Int, error) {
	maker, err := makerFor(market)
	if err != nil {
		return nil, nil, err
	}
	py, err := maker.PriceYes(market.QYes.Big(), market.QNo.Big())
	if err != nil {
		return nil, nil, err
	}
	pn, err := maker.PriceNo(market.QYes.Big(), market.QNo.Big())
	if err != nil {
		return nil, nil, err
	}
	return py, pn, nil
}

// splitFee divides a trade cost into the platform fee and the market's net
// share. The fee rounds down, so netToMarket absorbs the dust.
func splitFee(cost *big.Int, feeRateBps int64) (fee, netToMarket *big.Int) {
	fee = new(big.Int).Mul(cost, big.NewInt(feeRateBps))
	fee.Quo(fee, feeDenominator)
	netToMarket = new(big.Int).Sub(cost, fee)
	return fee, netToMarket
}
