// Package handlers exposes the policy tracker's REST endpoints. Handlers are
// transport-thin: they parse the request, call a service or view builder with
// the authenticated owner and the "as of" date, and map the result or error
// onto JSON.
package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/policy-tracker-backend/internal/catalog"
	"github.com/tbourn/policy-tracker-backend/internal/domain"
	"github.com/tbourn/policy-tracker-backend/internal/expiry"
	"github.com/tbourn/policy-tracker-backend/internal/http/middleware"
	"github.com/tbourn/policy-tracker-backend/internal/services"
	"github.com/tbourn/policy-tracker-backend/internal/utils"
	"github.com/tbourn/policy-tracker-backend/internal/views"
)

// PolicyService is the part of services.PolicyService the handlers call.
type PolicyService interface {
	Annotate(p domain.Policy, now time.Time) services.AnnotatedPolicy
	Get(ctx context.Context, ownerID, id string, asOf time.Time) (*services.AnnotatedPolicy, error)
	Search(ctx context.Context, ownerID, q string, limit int, asOf time.Time) ([]services.AnnotatedPolicy, error)
	Stats(ctx context.Context, ownerID string) (int64, *time.Time, error)
	CreateIdempotent(ctx context.Context, ownerID, key string, in services.NewPolicy) (*domain.Policy, bool, error)
}

// ViewBuilder renders the panel screens.
type ViewBuilder interface {
	Dashboard(ctx context.Context, ownerID string, days int, asOf time.Time) (*views.Dashboard, error)
	Calendar(ctx context.Context, ownerID string, asOf time.Time) (*views.Calendar, error)
	Table(ctx context.Context, ownerID string, page, pageSize int, asOf time.Time) (*views.PolicyTable, error)
	Reminders(ctx context.Context, ownerID string, asOf time.Time) (*views.Reminders, error)
}

// AuthService signs agencies up and in.
type AuthService interface {
	SignUp(ctx context.Context, email, password, agencyName string) (*domain.User, error)
	SignIn(ctx context.Context, email, password string) (*services.Session, error)
	CurrentUser(ctx context.Context, userID string) (*domain.User, error)
}

// DemoService records demo requests.
type DemoService interface {
	Submit(ctx context.Context, in services.DemoInput) (*domain.DemoRequest, error)
}

// Deps are the collaborators of Handlers. Calc decides what "today" is.
type Deps struct {
	Policies PolicyService
	Views    ViewBuilder
	Auth     AuthService
	Demo     DemoService
	Catalog  *catalog.Catalog
	Calc     expiry.Calculator
	// Now defaults to time.Now.
	Now func() time.Time
}

// Handlers groups the HTTP endpoints.
type Handlers struct {
	policies PolicyService
	views    ViewBuilder
	auth     AuthService
	demo     DemoService
	catalog  *catalog.Catalog
	calc     expiry.Calculator
	now      func() time.Time
}

// New binds handlers to their services.
func New(d Deps) *Handlers {
	h := &Handlers{
		policies: d.Policies,
		views:    d.Views,
		auth:     d.Auth,
		demo:     d.Demo,
		catalog:  d.Catalog,
		calc:     d.Calc,
		now:      d.Now,
	}
	if h.now == nil {
		h.now = time.Now
	}
	if h.catalog == nil {
		h.catalog = catalog.Default()
	}
	return h
}

// owner is the authenticated user, "" when the route is not behind
// RequireAuth. Services reject "" with ErrAuthentication.
func owner(c *gin.Context) string {
	uid, _ := middleware.UserID(c)
	return uid
}

// asOf reads the optional as_of=YYYY-MM-DD query parameter. Without it the
// current instant is used. A given date means the start of that day in the
// calculator's zone.
func (h *Handlers) asOf(c *gin.Context) (time.Time, error) {
	raw := strings.TrimSpace(c.Query("as_of"))
	if raw == "" {
		return h.now(), nil
	}
	d, err := utils.ParseDate(raw)
	if err != nil {
		return time.Time{}, &services.ValidationError{Field: "as_of", Reason: "must be a date in YYYY-MM-DD form"}
	}
	return h.calc.Midnight(d), nil
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// clampPagination parses page and page_size, falling back to defaults and
// capping page_size.
func clampPagination(c *gin.Context) (page, pageSize int) {
	page = utils.AtoiDefault(c.Query("page"), 1)
	if page < 1 {
		page = 1
	}
	pageSize = utils.Clamp(utils.AtoiDefault(c.Query("page_size"), defaultPageSize), 1, maxPageSize)
	return page, pageSize
}
