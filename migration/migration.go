// Package migration is an ordered, run-once schema migration registry.
// Migration files register themselves by name from init(); RunAll applies
// any not yet recorded in the migration_records table, in name order.
package migration

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"
)

// Func applies one migration inside the transaction it is given.
type Func func(db *gorm.DB) error

// Record marks an applied migration.
type Record struct {
	ID        uint64 `gorm:"primaryKey"`
	Name      string `gorm:"unique;not null"`
	AppliedAt time.Time
}

func (Record) TableName() string {
	return "migration_records"
}

var (
	mu       sync.Mutex
	registry = map[string]Func{}
)

// Register adds a migration under a unique name. Names sort lexically, so
// files are prefixed with a sequence number.
func Register(name string, fn Func) error {
	mu.Lock()
	defer mu.Unlock()
	if _, dup := registry[name]; dup {
		return fmt.Errorf("migration: duplicate name %q", name)
	}
	registry[name] = fn
	return nil
}

// RunAll applies every registered migration that has not run yet.
func RunAll(db *gorm.DB) error {
	if err := db.AutoMigrate(&Record{}); err != nil {
		return fmt.Errorf("migration: create records table: %w", err)
	}

	mu.Lock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	mu.Unlock()
	sort.Strings(names)

	for _, name := range names {
		var count int64
		if err := db.Model(&Record{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := registry[name](tx); err != nil {
				return err
			}
			return tx.Create(&Record{Name: name, AppliedAt: time.Now()}).Error
		})
		if err != nil {
			return fmt.Errorf("migration: %s: %w", name, err)
		}
	}
	return nil
}
