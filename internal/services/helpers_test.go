package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/policy-tracker-backend/internal/domain"
	"github.com/tbourn/policy-tracker-backend/internal/expiry"
	"github.com/tbourn/policy-tracker-backend/internal/repo"
)

// trt is Turkey time without relying on the host zoneinfo database.
var trt = time.FixedZone("TRT", 3*60*60)

func newServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func newTestPolicyService(t *testing.T) *PolicyService {
	t.Helper()
	return NewPolicyService(newServiceDB(t), dbPolicyRepo{}, expiry.Calculator{WindowDays: 7, Location: trt})
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func validInput(customer string, end time.Time) NewPolicy {
	return NewPolicy{
		CustomerName: customer,
		Phone:        "0532 111 22 33",
		Company:      "Anadolu Sigorta",
		PolicyType:   "Kasko",
		StartDate:    end.AddDate(-1, 0, 0),
		EndDate:      end,
	}
}

// ----- store-backed repos (same delegation the router uses) -----

type dbPolicyRepo struct{}

func (dbPolicyRepo) CreatePolicy(ctx context.Context, db *gorm.DB, p *domain.Policy) error {
	return repo.CreatePolicy(ctx, db, p)
}
func (dbPolicyRepo) ListPolicies(ctx context.Context, db *gorm.DB, ownerID string) ([]domain.Policy, error) {
	return repo.ListPolicies(ctx, db, ownerID)
}
func (dbPolicyRepo) ListPoliciesEndingBetween(ctx context.Context, db *gorm.DB, ownerID string, from, to time.Time) ([]domain.Policy, error) {
	return repo.ListPoliciesEndingBetween(ctx, db, ownerID, from, to)
}
func (dbPolicyRepo) CountPolicies(ctx context.Context, db *gorm.DB, ownerID string) (int64, error) {
	return repo.CountPolicies(ctx, db, ownerID)
}
func (dbPolicyRepo) ListPoliciesPage(ctx context.Context, db *gorm.DB, ownerID string, offset, limit int) ([]domain.Policy, error) {
	return repo.ListPoliciesPage(ctx, db, ownerID, offset, limit)
}
func (dbPolicyRepo) GetPolicy(ctx context.Context, db *gorm.DB, id, ownerID string) (*domain.Policy, error) {
	return repo.GetPolicy(ctx, db, id, ownerID)
}
func (dbPolicyRepo) PoliciesStats(ctx context.Context, db *gorm.DB, ownerID string) (int64, *time.Time, error) {
	return repo.PoliciesStats(ctx, db, ownerID)
}
func (dbPolicyRepo) GetIdempotency(ctx context.Context, db *gorm.DB, userID, scope, key string, now time.Time) (*domain.Idempotency, error) {
	return repo.GetIdempotency(ctx, db, userID, scope, key, now)
}
func (dbPolicyRepo) CreateIdempotency(ctx context.Context, db *gorm.DB, userID, scope, key, resourceID string, status int, ttl time.Duration) (*domain.Idempotency, error) {
	return repo.CreateIdempotency(ctx, db, userID, scope, key, resourceID, status, ttl)
}

type dbUserRepo struct{}

func (dbUserRepo) CreateUser(ctx context.Context, db *gorm.DB, email, agencyName, hash string) (*domain.User, error) {
	return repo.CreateUser(ctx, db, email, agencyName, hash)
}
func (dbUserRepo) GetUserByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.User, error) {
	return repo.GetUserByEmail(ctx, db, email)
}
func (dbUserRepo) GetUser(ctx context.Context, db *gorm.DB, id string) (*domain.User, error) {
	return repo.GetUser(ctx, db, id)
}

type dbDemoRepo struct{}

func (dbDemoRepo) CreateDemoRequest(ctx context.Context, db *gorm.DB, r *domain.DemoRequest) error {
	return repo.CreateDemoRequest(ctx, db, r)
}

// ----- failing repo -----

// downPolicyRepo fails every call with err, as an unreachable store would.
type downPolicyRepo struct{ err error }

func (r downPolicyRepo) CreatePolicy(context.Context, *gorm.DB, *domain.Policy) error { return r.err }
func (r downPolicyRepo) ListPolicies(context.Context, *gorm.DB, string) ([]domain.Policy, error) {
	return nil, r.err
}
func (r downPolicyRepo) ListPoliciesEndingBetween(context.Context, *gorm.DB, string, time.Time, time.Time) ([]domain.Policy, error) {
	return nil, r.err
}
func (r downPolicyRepo) CountPolicies(context.Context, *gorm.DB, string) (int64, error) {
	return 0, r.err
}
func (r downPolicyRepo) ListPoliciesPage(context.Context, *gorm.DB, string, int, int) ([]domain.Policy, error) {
	return nil, r.err
}
func (r downPolicyRepo) GetPolicy(context.Context, *gorm.DB, string, string) (*domain.Policy, error) {
	return nil, r.err
}
func (r downPolicyRepo) PoliciesStats(context.Context, *gorm.DB, string) (int64, *time.Time, error) {
	return 0, nil, r.err
}
func (r downPolicyRepo) GetIdempotency(context.Context, *gorm.DB, string, string, string, time.Time) (*domain.Idempotency, error) {
	return nil, r.err
}
func (r downPolicyRepo) CreateIdempotency(context.Context, *gorm.DB, string, string, string, string, int, time.Duration) (*domain.Idempotency, error) {
	return nil, r.err
}
