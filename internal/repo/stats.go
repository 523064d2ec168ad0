// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate/statistics queries used
// for conditional responses (ETag generation) in the HTTP layer.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/policy-tracker-backend/internal/domain"
)

// PoliciesStats returns aggregate metadata for an owner's policies: the total
// number of rows and the newest CreatedAt among them. Policies are immutable,
// so the pair changes exactly when the owner's list changes.
//
// When the owner has no policies, the returned count is 0 and latest is nil.
func PoliciesStats(ctx context.Context, db *gorm.DB, ownerID string) (count int64, latest *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.Policy{}).Where("owner_id = ?", ownerID)

	// Count
	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest created_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		CreatedAt time.Time
	}
	if err = db.WithContext(ctx).Model(&domain.Policy{}).
		Where("owner_id = ?", ownerID).
		Select("created_at").Order("created_at DESC").Limit(1).
		Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.CreatedAt, nil
}
