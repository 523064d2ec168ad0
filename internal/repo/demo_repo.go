package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/policy-tracker-backend/internal/domain"
)

// CreateDemoRequest stores a landing-page lead. Demo requests are write-only;
// nothing in the application reads them back.
func CreateDemoRequest(ctx context.Context, db *gorm.DB, r *domain.DemoRequest) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(r).Error
}
