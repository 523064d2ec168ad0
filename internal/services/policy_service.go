// Package services – PolicyService
//
// This file implements PolicyService, the single query path for policies.
// Every listing the views show goes through it, so ownership scoping, the
// error taxonomy, and the derivation of status and days remaining (via
// expiry.Calculator) are enforced in one place.
//
// Time and owner are explicit parameters on every operation; nothing here
// reads a global clock or a global session.
//
// Observability: all public methods are OpenTelemetry-instrumented; spans
// carry the owner id and the query parameters.
package services

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/policy-tracker-backend/internal/catalog"
	"github.com/tbourn/policy-tracker-backend/internal/domain"
	"github.com/tbourn/policy-tracker-backend/internal/expiry"
	"github.com/tbourn/policy-tracker-backend/internal/repo"
	"github.com/tbourn/policy-tracker-backend/internal/search"
)

// ScopePolicies is the idempotency scope used for policy creation.
const ScopePolicies = "policies"

// maxTextRunes caps free-text fields to the column width.
const maxTextRunes = 255

// PolicyRepo defines the repository contract required by PolicyService.
type PolicyRepo interface {
	CreatePolicy(ctx context.Context, db *gorm.DB, p *domain.Policy) error
	ListPolicies(ctx context.Context, db *gorm.DB, ownerID string) ([]domain.Policy, error)
	ListPoliciesEndingBetween(ctx context.Context, db *gorm.DB, ownerID string, from, to time.Time) ([]domain.Policy, error)
	CountPolicies(ctx context.Context, db *gorm.DB, ownerID string) (int64, error)
	ListPoliciesPage(ctx context.Context, db *gorm.DB, ownerID string, offset, limit int) ([]domain.Policy, error)
	GetPolicy(ctx context.Context, db *gorm.DB, id, ownerID string) (*domain.Policy, error)
	PoliciesStats(ctx context.Context, db *gorm.DB, ownerID string) (int64, *time.Time, error)

	GetIdempotency(ctx context.Context, db *gorm.DB, userID, scope, key string, now time.Time) (*domain.Idempotency, error)
	CreateIdempotency(ctx context.Context, db *gorm.DB, userID, scope, key, resourceID string, status int, ttl time.Duration) (*domain.Idempotency, error)
}

// AnnotatedPolicy is a stored policy plus its derived state at a reference instant.
type AnnotatedPolicy struct {
	domain.Policy
	Status        expiry.Status `json:"status"`
	DaysRemaining int           `json:"days_remaining"`
}

// NewPolicy carries the fields of a policy submission. Dates are calendar
// dates; only their year, month and day are used.
type NewPolicy struct {
	CustomerName string
	Phone        string
	Company      string
	PolicyType   string
	StartDate    time.Time
	EndDate      time.Time
}

// PolicyService answers policy queries and records new policies.
type PolicyService struct {
	DB      *gorm.DB
	Repo    PolicyRepo
	Calc    expiry.Calculator
	Catalog *catalog.Catalog

	// StoreTimeout bounds every store round trip; <= 0 disables the bound.
	StoreTimeout time.Duration
	// IdempotencyTTL is how long an Idempotency-Key replays its first result.
	IdempotencyTTL time.Duration
}

// NewPolicyService constructs a PolicyService with the default catalog and a
// 24h idempotency window.
func NewPolicyService(db *gorm.DB, r PolicyRepo, calc expiry.Calculator) *PolicyService {
	return &PolicyService{
		DB:             db,
		Repo:           r,
		Calc:           calc,
		Catalog:        catalog.Default(),
		IdempotencyTTL: 24 * time.Hour,
	}
}

// Annotate derives status and days remaining for p at now.
func (s *PolicyService) Annotate(p domain.Policy, now time.Time) AnnotatedPolicy {
	r := s.Calc.Evaluate(p.EndDate, now)
	return AnnotatedPolicy{Policy: p, Status: r.Status, DaysRemaining: r.DaysRemaining}
}

// ListExpiringWithin returns ownerID's policies whose days remaining at asOf
// lie in [0, days], soonest first. days must be >= 0. An empty result is an
// empty slice, never an error.
func (s *PolicyService) ListExpiringWithin(ctx context.Context, ownerID string, days int, asOf time.Time) ([]AnnotatedPolicy, error) {
	ctx, span := s.start(ctx, "ListExpiringWithin", ownerID, attribute.Int("days", days))
	defer span.End()

	if ownerID == "" {
		return nil, ErrAuthentication
	}
	if days < 0 {
		return nil, invalid("days", "must be >= 0")
	}

	from, to := s.Calc.Range(asOf, days)
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()
	rows, err := s.Repo.ListPoliciesEndingBetween(ctx, s.DB, ownerID, from, to)
	if err != nil {
		return nil, s.fail(span, storeErr("list expiring policies", err))
	}

	out := make([]AnnotatedPolicy, 0, len(rows))
	for _, p := range rows {
		a := s.Annotate(p, asOf)
		if a.DaysRemaining < 0 || a.DaysRemaining > days {
			continue
		}
		out = append(out, a)
	}
	span.SetAttributes(attribute.Int("result.count", len(out)))
	return out, nil
}

// ListAll returns every policy owned by ownerID, newest first, annotated at asOf.
func (s *PolicyService) ListAll(ctx context.Context, ownerID string, asOf time.Time) ([]AnnotatedPolicy, error) {
	ctx, span := s.start(ctx, "ListAll", ownerID)
	defer span.End()

	if ownerID == "" {
		return nil, ErrAuthentication
	}
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()
	rows, err := s.Repo.ListPolicies(ctx, s.DB, ownerID)
	if err != nil {
		return nil, s.fail(span, storeErr("list policies", err))
	}
	return s.annotateAll(rows, asOf), nil
}

// ListPage returns one page of ownerID's policies (newest first) and the total.
// It applies defaults for invalid page/pageSize.
func (s *PolicyService) ListPage(ctx context.Context, ownerID string, page, pageSize int, asOf time.Time) ([]AnnotatedPolicy, int64, error) {
	ctx, span := s.start(ctx, "ListPage", ownerID,
		attribute.Int("page", page),
		attribute.Int("page_size", pageSize),
	)
	defer span.End()

	if ownerID == "" {
		return nil, 0, ErrAuthentication
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	ctx, cancel := s.storeCtx(ctx)
	defer cancel()
	total, err := s.Repo.CountPolicies(ctx, s.DB, ownerID)
	if err != nil {
		return nil, 0, s.fail(span, storeErr("count policies", err))
	}
	if total == 0 {
		return []AnnotatedPolicy{}, 0, nil
	}
	rows, err := s.Repo.ListPoliciesPage(ctx, s.DB, ownerID, offset, pageSize)
	if err != nil {
		return nil, 0, s.fail(span, storeErr("list policies page", err))
	}
	return s.annotateAll(rows, asOf), total, nil
}

// Get returns one of ownerID's policies.
func (s *PolicyService) Get(ctx context.Context, ownerID, id string, asOf time.Time) (*AnnotatedPolicy, error) {
	ctx, span := s.start(ctx, "Get", ownerID, attribute.String("policy.id", id))
	defer span.End()

	if ownerID == "" {
		return nil, ErrAuthentication
	}
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()
	p, err := s.Repo.GetPolicy(ctx, s.DB, id, ownerID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrPolicyNotFound
	}
	if err != nil {
		return nil, s.fail(span, storeErr("get policy", err))
	}
	a := s.Annotate(*p, asOf)
	return &a, nil
}

// Stats returns the owner's policy count and newest creation time, used for
// conditional responses.
func (s *PolicyService) Stats(ctx context.Context, ownerID string) (int64, *time.Time, error) {
	if ownerID == "" {
		return 0, nil, ErrAuthentication
	}
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()
	n, latest, err := s.Repo.PoliciesStats(ctx, s.DB, ownerID)
	if err != nil {
		return 0, nil, storeErr("policy stats", err)
	}
	return n, latest, nil
}

// Search ranks ownerID's policies against q by customer name, phone, company
// and policy type. A blank query is a validation error.
func (s *PolicyService) Search(ctx context.Context, ownerID, q string, limit int, asOf time.Time) ([]AnnotatedPolicy, error) {
	ctx, span := s.start(ctx, "Search", ownerID, attribute.Int("limit", limit))
	defer span.End()

	if ownerID == "" {
		return nil, ErrAuthentication
	}
	q = normalizeText(q)
	if q == "" {
		return nil, invalid("q", "must not be empty")
	}
	if utf8.RuneCountInString(q) > 100 {
		return nil, invalid("q", "must be at most 100 characters")
	}

	ctx, cancel := s.storeCtx(ctx)
	defer cancel()
	rows, err := s.Repo.ListPolicies(ctx, s.DB, ownerID)
	if err != nil {
		return nil, s.fail(span, storeErr("list policies", err))
	}

	byID := make(map[string]domain.Policy, len(rows))
	docs := make([]search.Document, 0, len(rows))
	for _, p := range rows {
		byID[p.ID] = p
		docs = append(docs, search.Document{
			ID:   p.ID,
			Text: strings.Join([]string{p.CustomerName, p.Phone, p.Company, p.PolicyType}, " "),
		})
	}
	hits := search.New(docs).TopK(q, limit)

	out := make([]AnnotatedPolicy, 0, len(hits))
	for _, h := range hits {
		out = append(out, s.Annotate(byID[h.ID], asOf))
	}
	span.SetAttributes(attribute.Int("result.count", len(out)))
	return out, nil
}

// Create validates in and stores it as a new policy owned by ownerID.
func (s *PolicyService) Create(ctx context.Context, ownerID string, in NewPolicy) (*domain.Policy, error) {
	p, _, err := s.CreateIdempotent(ctx, ownerID, "", in)
	return p, err
}

// CreateIdempotent is Create with an optional idempotency key. When key was
// already used by ownerID within IdempotencyTTL, the originally created policy
// is returned with replayed=true and nothing new is written. The policy row
// and its idempotency record are written in one transaction.
//
// Checks run in order: owner present (ErrAuthentication), fields valid
// (*ValidationError), then the store (*StoreError).
func (s *PolicyService) CreateIdempotent(ctx context.Context, ownerID, key string, in NewPolicy) (p *domain.Policy, replayed bool, err error) {
	ctx, span := s.start(ctx, "Create", ownerID, attribute.Bool("idempotent", key != ""))
	defer span.End()

	if ownerID == "" {
		return nil, false, ErrAuthentication
	}
	p, err = s.validate(in)
	if err != nil {
		span.SetAttributes(attribute.String("validation.error", err.Error()))
		return nil, false, err
	}
	p.OwnerID = ownerID

	ctx, cancel := s.storeCtx(ctx)
	defer cancel()

	var existing *domain.Policy
	err = s.inTx(ctx, func(tx *gorm.DB) error {
		if key != "" {
			prev, err := s.replay(ctx, tx, ownerID, key)
			if err != nil {
				return err
			}
			if prev != nil {
				existing = prev
				return nil
			}
		}
		if err := s.Repo.CreatePolicy(ctx, tx, p); err != nil {
			return err
		}
		if key != "" {
			if _, err := s.Repo.CreateIdempotency(ctx, tx, ownerID, ScopePolicies, key, p.ID, http.StatusCreated, s.IdempotencyTTL); err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, repo.ErrDuplicate) {
		// A concurrent request with the same key won; serve its result.
		prev, rerr := s.replay(ctx, s.DB, ownerID, key)
		if rerr == nil && prev != nil {
			return prev, true, nil
		}
	}
	if err != nil {
		return nil, false, s.fail(span, storeErr("create policy", err))
	}
	if existing != nil {
		span.SetAttributes(attribute.Bool("idempotency.replayed", true))
		return existing, true, nil
	}
	span.SetAttributes(attribute.String("policy.id", p.ID))
	return p, false, nil
}

// replay returns the policy previously created under key, or nil.
func (s *PolicyService) replay(ctx context.Context, db *gorm.DB, ownerID, key string) (*domain.Policy, error) {
	rec, err := s.Repo.GetIdempotency(ctx, db, ownerID, ScopePolicies, key, time.Now().UTC())
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s.Repo.GetPolicy(ctx, db, rec.ResourceID, ownerID)
}

// validate normalizes in and returns the policy to store, or a *ValidationError
// for the first offending field.
func (s *PolicyService) validate(in NewPolicy) (*domain.Policy, error) {
	name := normalizeText(in.CustomerName)
	phone := normalizeText(in.Phone)
	company := normalizeText(in.Company)
	kind := normalizeText(in.PolicyType)

	switch {
	case name == "":
		return nil, invalid("customer_name", "is required")
	case utf8.RuneCountInString(name) > maxTextRunes:
		return nil, invalid("customer_name", "is too long")
	case phone == "":
		return nil, invalid("phone", "is required")
	case !phoneRE.MatchString(phone):
		return nil, invalid("phone", "must be a phone number such as 0532 111 22 33")
	case company == "":
		return nil, invalid("company", "is required")
	case utf8.RuneCountInString(company) > maxTextRunes:
		return nil, invalid("company", "is too long")
	case kind == "":
		return nil, invalid("policy_type", "is required")
	case in.StartDate.IsZero():
		return nil, invalid("start_date", "is required")
	case in.EndDate.IsZero():
		return nil, invalid("end_date", "is required")
	}

	cat := s.Catalog
	if cat == nil {
		cat = catalog.Default()
	}
	canonical, ok := cat.Canonical(kind)
	if !ok {
		return nil, invalid("policy_type", "must be one of: "+strings.Join(cat.Names(), ", "))
	}

	start := expiry.Date(in.StartDate, in.StartDate.Location())
	end := expiry.Date(in.EndDate, in.EndDate.Location())
	if !end.After(start) {
		return nil, invalid("end_date", "must be after start_date")
	}

	return &domain.Policy{
		CustomerName: name,
		Phone:        phone,
		Company:      company,
		PolicyType:   canonical,
		StartDate:    start,
		EndDate:      end,
	}, nil
}

func (s *PolicyService) annotateAll(rows []domain.Policy, asOf time.Time) []AnnotatedPolicy {
	out := make([]AnnotatedPolicy, len(rows))
	for i, p := range rows {
		out[i] = s.Annotate(p, asOf)
	}
	return out
}

func (s *PolicyService) inTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if s.DB == nil {
		return fn(nil)
	}
	return s.DB.WithContext(ctx).Transaction(fn)
}

func (s *PolicyService) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.StoreTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.StoreTimeout)
}

func (s *PolicyService) start(ctx context.Context, name, ownerID string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tr := otel.Tracer("services/PolicyService")
	attrs = append(attrs, attribute.String("owner.id", ownerID))
	return tr.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *PolicyService) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// normalizeText trims whitespace and collapses runs of whitespace to one space.
func normalizeText(s string) string {
	return whitespaceRE.ReplaceAllString(strings.TrimSpace(s), " ")
}

var (
	// whitespaceRE collapses consecutive whitespace to a single space.
	whitespaceRE = regexp.MustCompile(`\s+`)
	phoneRE      = regexp.MustCompile(`^\+?[0-9][0-9 ()\-]{5,22}[0-9]$`)
)
