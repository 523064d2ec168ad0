// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Policy model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only
// persistence and query composition. Every query is scoped by owner.
//
// Error semantics:
//   - When a policy is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
//
// Functions:
//
//   - CreatePolicy(ctx, db, p) -> error
//     Inserts a policy, assigning a UUID and UTC creation time.
//
//   - ListPolicies(ctx, db, ownerID) -> []domain.Policy, error
//     Returns all of an owner's policies, newest first.
//
//   - ListPoliciesEndingBetween(ctx, db, ownerID, from, to) -> []domain.Policy, error
//     Returns policies whose end date lies in [from, to], soonest first.
//
//   - CountPolicies / ListPoliciesPage / GetPolicy
//     Pagination and single-row lookup.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/policy-tracker-backend/internal/domain"
)

// newestFirst orders by creation time, breaking ties on id so pages are stable.
const newestFirst = "created_at desc, id desc"

// CreatePolicy inserts p. ID and CreatedAt are assigned here when empty; the
// caller supplies every other field, including OwnerID.
func CreatePolicy(ctx context.Context, db *gorm.DB, p *domain.Policy) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(p).Error
}

// ListPolicies returns all policies belonging to ownerID, newest first.
// It returns an empty slice if the owner has none.
func ListPolicies(ctx context.Context, db *gorm.DB, ownerID string) ([]domain.Policy, error) {
	out := []domain.Policy{}
	err := db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order(newestFirst).
		Find(&out).Error
	return out, err
}

// ListPoliciesEndingBetween returns ownerID's policies whose end date lies in
// the inclusive range [from, to], ordered by end date ascending. Bounds are
// calendar dates at midnight UTC, the same form end dates are stored in.
func ListPoliciesEndingBetween(ctx context.Context, db *gorm.DB, ownerID string, from, to time.Time) ([]domain.Policy, error) {
	out := []domain.Policy{}
	err := db.WithContext(ctx).
		Where("owner_id = ? AND end_date >= ? AND end_date <= ?", ownerID, from.UTC(), to.UTC()).
		Order("end_date asc, created_at asc").
		Find(&out).Error
	return out, err
}

// CountPolicies returns the total number of policies owned by ownerID.
func CountPolicies(ctx context.Context, db *gorm.DB, ownerID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Policy{}).
		Where("owner_id = ?", ownerID).
		Count(&total).Error
	return total, err
}

// ListPoliciesPage returns a page of ownerID's policies, newest first.
// The caller computes offset and limit (e.g., (page-1)*pageSize).
func ListPoliciesPage(ctx context.Context, db *gorm.DB, ownerID string, offset, limit int) ([]domain.Policy, error) {
	out := []domain.Policy{}
	err := db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order(newestFirst).
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// GetPolicy fetches a single policy by id and owner. A policy owned by someone
// else is reported as ErrNotFound.
func GetPolicy(ctx context.Context, db *gorm.DB, id, ownerID string) (*domain.Policy, error) {
	var p domain.Policy
	err := db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}
