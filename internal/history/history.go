// Package history persists per-book export watermarks across runs. A book
// is re-exported only when its newest highlight timestamp strictly exceeds
// the stored watermark, which makes repeated runs idempotent and cheap.
package history

import (
	"fmt"
	"log"
	"os"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Record maps a book title to the last-exported watermark timestamp
// (epoch milliseconds).
type Record struct {
	Title     string `gorm:"primaryKey"`
	Watermark int64
}

func (Record) TableName() string {
	return "export_history"
}

// Store holds the watermark mapping in memory for the duration of a run
// and rewrites it fully on Save. Mutations between Load and Save are only
// applied for books that rendered successfully, so a killed or failed run
// leaves their entries untouched and the next run retries them.
type Store struct {
	db         *gorm.DB
	watermarks map[string]int64
}

// Open loads the watermark store at path. A missing store is a first run;
// an unreadable one is treated as empty and recreated, per the tolerance
// the pipeline needs (losing history only costs a full re-export).
func Open(path string) (*Store, error) {
	db, err := openDatabase(path)
	if err != nil {
		log.Printf("History store unreadable, starting empty: %v", err)
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			return nil, fmt.Errorf("failed to reset history store: %w", rmErr)
		}
		if db, err = openDatabase(path); err != nil {
			return nil, fmt.Errorf("failed to recreate history store: %w", err)
		}
	}

	var records []Record
	if err := db.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	watermarks := make(map[string]int64, len(records))
	for _, r := range records {
		watermarks[r.Title] = r.Watermark
	}

	return &Store{db: db, watermarks: watermarks}, nil
}

func openDatabase(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open history store: %w", err)
	}
	if err := db.AutoMigrate(&Record{}); err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			sqlDB.Close()
		}
		return nil, fmt.Errorf("failed to migrate history store: %w", err)
	}
	return db, nil
}

// ShouldProcess reports whether a book has highlights newer than its stored
// watermark. An absent entry counts as watermark 0: always export.
func (s *Store) ShouldProcess(title string, latest int64) bool {
	return latest > s.watermarks[title]
}

// Update records a new watermark for a book. Only call it after the book's
// page has been written.
func (s *Store) Update(title string, latest int64) {
	s.watermarks[title] = latest
}

// Save rewrites the full mapping in one transaction.
func (s *Store) Save() error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&Record{}).Error; err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}
		for title, watermark := range s.watermarks {
			if err := tx.Create(&Record{Title: title, Watermark: watermark}).Error; err != nil {
				return fmt.Errorf("failed to store history for %q: %w", title, err)
			}
		}
		return nil
	})
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Len reports the number of tracked books.
func (s *Store) Len() int {
	return len(s.watermarks)
}
