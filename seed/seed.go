// Package seed populates a fresh database with demo traders and markets for
// local development.
package seed

import (
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/brianvoe/gofakeit"
	"gorm.io/gorm"

	"predictcore/models"
	"predictcore/setup"
)

// Run creates demo traders and open markets. It is a no-op when markets
// already exist.
func Run(db *gorm.DB, cfg *setup.Config) error {
	var count int64
	if err := db.Model(&models.Market{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("seed: markets already present, skipping")
		return nil
	}

	gofakeit.Seed(time.Now().UnixNano())

	balance, err := cfg.InitialTraderBalanceBig()
	if err != nil {
		return err
	}

	traders := make([]models.Trader, 0, 5)
	for i := 0; i < 5; i++ {
		apiKey, err := models.GenerateAPIKey()
		if err != nil {
			return err
		}
		address, err := models.GenerateAddress()
		if err != nil {
			return err
		}
		trader := models.Trader{
			Name:           gofakeit.Username(),
			Address:        address,
			APIKey:         apiKey,
			AccountBalance: models.NewNumeric(balance),
			IsActive:       true,
		}
		if err := db.Create(&trader).Error; err != nil {
			return err
		}
		log.Printf("seed: trader %s apiKey=%s", trader.Name, apiKey)
		traders = append(traders, trader)
	}

	ten := new(big.Int).Mul(big.NewInt(10), big.NewInt(1e18))
	for i := 0; i < 3; i++ {
		target := new(big.Int).Mul(big.NewInt(int64(gofakeit.Number(500, 5000))), big.NewInt(1e18))
		market := models.Market{
			Description:    fmt.Sprintf("Will %s trade above the target before the deadline?", gofakeit.Currency().Short),
			Kind:           models.MarketKindPrice,
			FeedID:         fmt.Sprintf("feed-%d", i+1),
			TargetValue:    models.NewNumeric(target),
			Deadline:       time.Now().Add(time.Duration(gofakeit.Number(2, 72)) * time.Hour),
			Liquidity:      models.NewNumeric(ten),
			CreatorAddress: traders[i%len(traders)].Address,
			State:          models.MarketStateOpen,
		}
		if err := db.Create(&market).Error; err != nil {
			return err
		}
	}

	log.Println("seed: created 5 traders and 3 markets")
	return nil
}
