package models

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// Trader is an account that can fund trades. The AccountBalance is the
// native-value wallet the value-transfer boundary debits payments from and
// credits refunds and payouts back into (1e18-scaled).
type Trader struct {
	ID        uint64    `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`

	Address string `json:"address" gorm:"unique;not null;size:100"`
	Name    string `json:"name" gorm:"size:50"`

	// Authentication
	APIKey string `json:"apiKey,omitempty" gorm:"unique;not null"`

	AccountBalance Numeric `json:"accountBalance"`

	IsActive bool `json:"isActive" gorm:"default:true"`
}

func (Trader) TableName() string {
	return "traders"
}

// TraderPublic is the public-facing trader profile (no API key).
type TraderPublic struct {
	ID             uint64  `json:"id"`
	Address        string  `json:"address"`
	Name           string  `json:"name"`
	AccountBalance Numeric `json:"accountBalance"`
	IsActive       bool    `json:"isActive"`
}

// ToPublic converts Trader to TraderPublic (hides the API key).
func (t *Trader) ToPublic() TraderPublic {
	return TraderPublic{
		ID:             t.ID,
		Address:        t.Address,
		Name:           t.Name,
		AccountBalance: t.AccountBalance,
		IsActive:       t.IsActive,
	}
}

// GenerateAPIKey creates a secure random API key for a trader.
func GenerateAPIKey() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return "pm_sk_" + hex.EncodeToString(bytes), nil
}

// GenerateAddress mints a random 20-byte account identity in hex form.
func GenerateAddress() (string, error) {
	bytes := make([]byte, 20)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return "0x" + hex.EncodeToString(bytes), nil
}
