// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate queries used for
// conditional responses (ETag generation) in the HTTP layer.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-error-catalog/internal/domain"
)

// ErrorsStats returns aggregate metadata for the catalog: the total number of
// entries and the maximum UpdatedAt among them. When the catalog is empty the
// returned count is 0 and maxUpdatedAt is nil.
//
// Votes bump UpdatedAt (GORM sets it on Update), so a vote changes the ETag.
func ErrorsStats(ctx context.Context, db *gorm.DB) (count int64, maxUpdatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.ErrorEntry{})

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest updated_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		UpdatedAt time.Time
	}
	if err = db.WithContext(ctx).Model(&domain.ErrorEntry{}).
		Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}

// StatsSource binds ErrorsStats to a database handle.
type StatsSource struct {
	DB *gorm.DB
}

// ErrorsStats proxies ErrorsStats.
func (s *StatsSource) ErrorsStats(ctx context.Context) (int64, *time.Time, error) {
	return ErrorsStats(ctx, s.DB)
}
