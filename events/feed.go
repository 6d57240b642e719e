package events

import (
	"encoding/json"
	"net/http"
	"strconv"

	"gorm.io/gorm"

	"predictcore/models"
)

// FeedHandler handles GET /v0/events?after=<id>&type=<type>&limit=<n>
//
// Indexers poll this cursor-style feed; "after" is the last internal ID they
// have seen.
func FeedHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := db.Order("id ASC")

		if after := r.URL.Query().Get("after"); after != "" {
			cursor, err := strconv.ParseUint(after, 10, 64)
			if err != nil {
				http.Error(w, "Invalid cursor", http.StatusBadRequest)
				return
			}
			query = query.Where("id > ?", cursor)
		}
		if eventType := r.URL.Query().Get("type"); eventType != "" {
			query = query.Where("type = ?", eventType)
		}

		limit := 100
		if l := r.URL.Query().Get("limit"); l != "" {
			if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 500 {
				limit = parsed
			}
		}

		var list []models.Event
		if err := query.Limit(limit).Find(&list).Error; err != nil {
			http.Error(w, "Failed to fetch events", http.StatusInternalServerError)
			return
		}

		cursor := uint64(0)
		if len(list) > 0 {
			cursor = list[len(list)-1].ID
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"events": list,
			"count":  len(list),
			"cursor": cursor,
		})
	}
}
