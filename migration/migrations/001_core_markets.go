package migrations

import (
	"log"

	"gorm.io/gorm"

	"predictcore/migration"
	"predictcore/models"
)

func init() {
	if err := migration.Register("001_core_markets", Migration001CoreMarkets); err != nil {
		log.Fatalf("Failed to register migration 001_core_markets: %v", err)
	}
}

// Migration001CoreMarkets creates the core engine tables and seeds the
// singleton fee pool row.
func Migration001CoreMarkets(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Trader{},
		&models.Market{},
		&models.Position{},
		&models.Participant{},
		&models.WhaleBet{},
		&models.Event{},
		&models.FeePool{},
	); err != nil {
		return err
	}

	// Listing queries filter on state and deadline together.
	db.Exec("CREATE INDEX IF NOT EXISTS idx_markets_state_deadline ON markets(state, deadline)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_events_market_type ON events(market_id, type)")

	// The cross-market fee accumulator is a single fixed row.
	var count int64
	if err := db.Model(&models.FeePool{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		if err := db.Create(&models.FeePool{ID: 1}).Error; err != nil {
			return err
		}
	}
	return nil
}
