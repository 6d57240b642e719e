// Package events appends engine events for off-chain indexers. Emission is
// fire-and-forget: a failed insert is logged and never aborts the enclosing
// state transition.
package events

import (
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"predictcore/models"
)

// Emit appends one event row on the given (usually transactional) handle.
func Emit(db *gorm.DB, eventType string, marketID uint64, trader string, payload interface{}) {
	var body string
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			log.Printf("events: marshal %s payload: %v", eventType, err)
		} else {
			body = string(b)
		}
	}

	event := models.Event{
		EventID:   uuid.NewString(),
		Type:      eventType,
		MarketID:  marketID,
		Trader:    trader,
		Payload:   body,
		CreatedAt: time.Now(),
	}
	if err := db.Create(&event).Error; err != nil {
		log.Printf("events: emit %s: %v", eventType, err)
	}
}
