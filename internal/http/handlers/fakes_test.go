package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/policy-tracker-backend/internal/domain"
	"github.com/tbourn/policy-tracker-backend/internal/expiry"
	"github.com/tbourn/policy-tracker-backend/internal/http/middleware"
	"github.com/tbourn/policy-tracker-backend/internal/services"
	"github.com/tbourn/policy-tracker-backend/internal/views"
)

func init() { gin.SetMode(gin.TestMode) }

var (
	istanbul = time.FixedZone("TRT", 3*3600)
	calc     = expiry.Calculator{WindowDays: 7, Location: istanbul}
	// 2025-02-07 09:30 in Istanbul.
	fixedNow = time.Date(2025, 2, 7, 6, 30, 0, 0, time.UTC)
)

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func samplePolicy(id string) domain.Policy {
	return domain.Policy{
		ID: id, OwnerID: "u1", CustomerName: "Ahmet Yılmaz", Phone: "0532 111 22 33",
		Company: "Anadolu", PolicyType: "Kasko",
		StartDate: day(2024, 2, 10), EndDate: day(2025, 2, 10),
		CreatedAt: fixedNow.Add(-time.Hour),
	}
}

// ---- policies ----

type fakePolicies struct {
	getErr     error
	searchErr  error
	statsErr   error
	createErr  error
	replayed   bool
	count      int64
	latest     *time.Time
	gotQ       string
	gotLimit   int
	gotKey     string
	gotOwner   string
	gotNew     services.NewPolicy
	gotAsOf    time.Time
	statsCalls int
}

func (f *fakePolicies) Annotate(p domain.Policy, now time.Time) services.AnnotatedPolicy {
	r := calc.Evaluate(p.EndDate, now)
	return services.AnnotatedPolicy{Policy: p, Status: r.Status, DaysRemaining: r.DaysRemaining}
}

func (f *fakePolicies) Get(_ context.Context, ownerID, id string, asOf time.Time) (*services.AnnotatedPolicy, error) {
	f.gotOwner, f.gotAsOf = ownerID, asOf
	if f.getErr != nil {
		return nil, f.getErr
	}
	a := f.Annotate(samplePolicy(id), asOf)
	return &a, nil
}

func (f *fakePolicies) Search(_ context.Context, ownerID, q string, limit int, asOf time.Time) ([]services.AnnotatedPolicy, error) {
	f.gotOwner, f.gotQ, f.gotLimit = ownerID, q, limit
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return []services.AnnotatedPolicy{f.Annotate(samplePolicy("p1"), asOf)}, nil
}

func (f *fakePolicies) Stats(_ context.Context, ownerID string) (int64, *time.Time, error) {
	f.statsCalls++
	return f.count, f.latest, f.statsErr
}

func (f *fakePolicies) CreateIdempotent(_ context.Context, ownerID, key string, in services.NewPolicy) (*domain.Policy, bool, error) {
	f.gotOwner, f.gotKey, f.gotNew = ownerID, key, in
	if f.createErr != nil {
		return nil, false, f.createErr
	}
	p := samplePolicy("3f2b8c1e-9a4d-4c3b-8e2f-1a2b3c4d5e6f")
	return &p, f.replayed, nil
}

// ---- views ----

type fakeViews struct {
	err      error
	gotDays  int
	gotAsOf  time.Time
	gotPage  int
	gotSize  int
	gotOwner string
	// during runs inside the builder call, e.g. to cancel the request.
	during func()
}

func (f *fakeViews) run() {
	if f.during != nil {
		f.during()
	}
}

func (f *fakeViews) Dashboard(_ context.Context, ownerID string, days int, asOf time.Time) (*views.Dashboard, error) {
	f.gotOwner, f.gotDays, f.gotAsOf = ownerID, days, asOf
	f.run()
	if f.err != nil {
		return nil, f.err
	}
	return &views.Dashboard{State: views.StateEmpty, Message: views.MsgDashboardEmpty, WindowDays: days, Items: []views.PolicyCard{}}, nil
}

func (f *fakeViews) Calendar(_ context.Context, ownerID string, asOf time.Time) (*views.Calendar, error) {
	f.gotOwner, f.gotAsOf = ownerID, asOf
	f.run()
	if f.err != nil {
		return nil, f.err
	}
	return &views.Calendar{State: views.StateReady, Days: []views.CalendarDay{{Date: "2025-02-10", Label: "10.02.2025"}}}, nil
}

func (f *fakeViews) Table(_ context.Context, ownerID string, page, pageSize int, asOf time.Time) (*views.PolicyTable, error) {
	f.gotOwner, f.gotPage, f.gotSize, f.gotAsOf = ownerID, page, pageSize, asOf
	f.run()
	if f.err != nil {
		return nil, f.err
	}
	return &views.PolicyTable{State: views.StateEmpty, Message: views.MsgTableEmpty, Items: []views.PolicyCard{}, Page: page, PageSize: pageSize}, nil
}

func (f *fakeViews) Reminders(_ context.Context, ownerID string, asOf time.Time) (*views.Reminders, error) {
	f.gotOwner, f.gotAsOf = ownerID, asOf
	f.run()
	if f.err != nil {
		return nil, f.err
	}
	return &views.Reminders{State: views.StateReady, Items: []views.Reminder{{PolicyID: "p1", Text: views.ReminderText("Ahmet Yılmaz", "Kasko", 3)}}}, nil
}

// ---- auth + demo ----

type fakeAuth struct {
	err error
}

func (f *fakeAuth) SignUp(_ context.Context, email, _, agency string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.User{ID: "u1", Email: email, AgencyName: agency}, nil
}

func (f *fakeAuth) SignIn(_ context.Context, email, _ string) (*services.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &services.Session{Token: "tok", ExpiresAt: fixedNow.Add(time.Hour), User: &domain.User{ID: "u1", Email: email}}, nil
}

func (f *fakeAuth) CurrentUser(_ context.Context, userID string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if userID == "" {
		return nil, services.ErrAuthentication
	}
	return &domain.User{ID: userID, Email: "ajans@example.com"}, nil
}

type fakeDemo struct {
	err error
	got services.DemoInput
}

func (f *fakeDemo) Submit(_ context.Context, in services.DemoInput) (*domain.DemoRequest, error) {
	f.got = in
	if f.err != nil {
		return nil, f.err
	}
	return &domain.DemoRequest{ID: "d1", FullName: in.FullName}, nil
}

// ---- harness ----

type tokens struct{}

func (tokens) ParseToken(tok string) (string, error) {
	if tok == "t1" {
		return "u1", nil
	}
	return "", errors.New("bad token")
}

type harness struct {
	r        *gin.Engine
	policies *fakePolicies
	views    *fakeViews
	auth     *fakeAuth
	demo     *fakeDemo
}

func newHarness() *harness {
	hs := &harness{
		policies: &fakePolicies{},
		views:    &fakeViews{},
		auth:     &fakeAuth{},
		demo:     &fakeDemo{},
	}
	h := New(Deps{
		Policies: hs.policies,
		Views:    hs.views,
		Auth:     hs.auth,
		Demo:     hs.demo,
		Calc:     calc,
		Now:      func() time.Time { return fixedNow },
	})

	r := gin.New()
	r.Use(middleware.RequestID())
	api := r.Group("/api/v1")
	api.POST("/auth/signup", h.SignUp)
	api.POST("/auth/login", h.Login)
	api.POST("/demo-requests", h.CreateDemoRequest)
	api.GET("/policy-types", h.PolicyTypes)
	// Deliberately outside RequireAuth: handlers must not invent an owner.
	api.GET("/open/dashboard", h.Dashboard)

	authed := api.Group("", middleware.RequireAuth(tokens{}))
	authed.Use(middleware.IdempotencyValidator(services.ScopePolicies, middleware.IdempotencyOptions{}, nil))
	authed.GET("/auth/me", h.Me)
	authed.GET("/dashboard", h.Dashboard)
	authed.GET("/calendar", h.Calendar)
	authed.GET("/reminders", h.Reminders)
	authed.GET("/policies", h.ListPolicies)
	authed.GET("/policies/search", h.SearchPolicies)
	authed.GET("/policies/:id", h.GetPolicy)
	authed.POST("/policies", h.CreatePolicy)
	hs.r = r
	return hs
}

func (hs *harness) do(method, path, body string, hdr ...string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer t1")
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	w := httptest.NewRecorder()
	hs.r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func expectError(t *testing.T, w *httptest.ResponseRecorder, status int, code, field string) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("status=%d want %d body=%s", w.Code, status, w.Body.String())
	}
	e := decode[ErrorResponse](t, w)
	if e.Code != code || e.Field != field {
		t.Fatalf("error=%+v want code=%s field=%s", e, code, field)
	}
	if e.RequestID == "" {
		t.Fatalf("missing request_id")
	}
}

func storeDown() error {
	return &services.StoreError{Op: "list policies", Err: errors.New("dial tcp: connection refused")}
}
