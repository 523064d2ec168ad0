package views

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbourn/policy-tracker-backend/internal/domain"
	"github.com/tbourn/policy-tracker-backend/internal/expiry"
	"github.com/tbourn/policy-tracker-backend/internal/services"
)

type fakeQuerier struct {
	expiring []services.AnnotatedPolicy
	all      []services.AnnotatedPolicy
	total    int64
	err      error

	gotDays     int
	gotOwner    string
	gotPage     int
	gotPageSize int
}

func (f *fakeQuerier) ListExpiringWithin(_ context.Context, ownerID string, days int, _ time.Time) ([]services.AnnotatedPolicy, error) {
	f.gotOwner, f.gotDays = ownerID, days
	return f.expiring, f.err
}

func (f *fakeQuerier) ListAll(_ context.Context, ownerID string, _ time.Time) ([]services.AnnotatedPolicy, error) {
	f.gotOwner = ownerID
	return f.all, f.err
}

func (f *fakeQuerier) ListPage(_ context.Context, ownerID string, page, pageSize int, _ time.Time) ([]services.AnnotatedPolicy, int64, error) {
	f.gotOwner, f.gotPage, f.gotPageSize = ownerID, page, pageSize
	return f.all, f.total, f.err
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func annotated(id, customer, kind string, end time.Time, days int, st expiry.Status) services.AnnotatedPolicy {
	return services.AnnotatedPolicy{
		Policy: domain.Policy{
			ID: id, OwnerID: "u1", CustomerName: customer, Phone: "0532 111 22 33",
			Company: "Anadolu", PolicyType: kind, StartDate: end.AddDate(-1, 0, 0), EndDate: end,
		},
		Status:        st,
		DaysRemaining: days,
	}
}

var asOf = time.Date(2025, 2, 7, 9, 0, 0, 0, time.UTC)

func TestDashboard_AsOfIsCalculatorDay(t *testing.T) {
	// 22:30 UTC on the 6th is already the 7th in Istanbul.
	late := time.Date(2025, 2, 6, 22, 30, 0, 0, time.UTC)
	b := &Builder{
		Policies: &fakeQuerier{},
		Calc:     expiry.Calculator{Location: time.FixedZone("TRT", 3*60*60)},
	}

	v, err := b.Dashboard(context.Background(), "u1", 7, late)
	require.NoError(t, err)
	assert.Equal(t, "2025-02-07", v.AsOf)

	b.Calc = expiry.Calculator{}
	v, err = b.Dashboard(context.Background(), "u1", 7, late)
	require.NoError(t, err)
	assert.Equal(t, "2025-02-06", v.AsOf)
}

func TestCard_DatesReadInUTC(t *testing.T) {
	west := time.FixedZone("EST", -5*60*60)
	p := annotated("a", "Ahmet Yılmaz", "Kasko", day(2025, 3, 10).In(west), 7, expiry.StatusExpiringSoon)
	p.StartDate = p.StartDate.In(west)

	c := Card(p)
	assert.Equal(t, "2025-03-10", c.EndDate)
	assert.Equal(t, "10.03.2025", c.EndDateLabel)
	assert.Equal(t, "2024-03-10", c.StartDate)

	days := groupByEndDate([]services.AnnotatedPolicy{p})
	require.Len(t, days, 1)
	assert.Equal(t, "2025-03-10", days[0].Date)
}

func TestDashboard_ReadyKeepsUrgencyOrder(t *testing.T) {
	q := &fakeQuerier{expiring: []services.AnnotatedPolicy{
		annotated("a", "Ahmet Yılmaz", "Kasko", day(2025, 2, 7), 0, expiry.StatusExpiringSoon),
		annotated("b", "Mehmet Kaya", "Trafik", day(2025, 2, 10), 3, expiry.StatusExpiringSoon),
	}}
	b := &Builder{Policies: q, WindowDays: 7}

	v, err := b.Dashboard(context.Background(), "u1", -1, asOf)
	require.NoError(t, err)
	assert.Equal(t, 7, q.gotDays, "negative days falls back to the window")
	assert.Equal(t, "u1", q.gotOwner)
	assert.Equal(t, StateReady, v.State)
	assert.Empty(t, v.Message)
	assert.Equal(t, "2025-02-07", v.AsOf)
	require.Len(t, v.Items, 2)
	assert.Equal(t, "a", v.Items[0].ID)
	assert.Equal(t, "07.02.2025", v.Items[0].EndDateLabel)
	assert.Equal(t, "2025-02-07", v.Items[0].EndDate)
	assert.Equal(t, "#f97316", v.Items[0].Color)
}

func TestDashboard_EmptyIsDistinctFromFailure(t *testing.T) {
	q := &fakeQuerier{expiring: []services.AnnotatedPolicy{}}
	b := &Builder{Policies: q}

	v, err := b.Dashboard(context.Background(), "u1", 14, asOf)
	require.NoError(t, err)
	assert.Equal(t, 14, q.gotDays)
	assert.Equal(t, StateEmpty, v.State)
	assert.Equal(t, MsgDashboardEmpty, v.Message)
	assert.NotNil(t, v.Items)

	q.err = services.ErrStoreUnavailable
	v, err = b.Dashboard(context.Background(), "u1", 7, asOf)
	assert.Nil(t, v)
	assert.True(t, errors.Is(err, services.ErrStoreUnavailable))
}

func TestCalendar_GroupsByEndDateAscending(t *testing.T) {
	// ListAll order is newest-created first, not by end date.
	q := &fakeQuerier{all: []services.AnnotatedPolicy{
		annotated("c", "Ayşe Demir", "DASK", day(2025, 2, 20), 13, expiry.StatusActive),
		annotated("a", "Ahmet Yılmaz", "Kasko", day(2025, 2, 10), 3, expiry.StatusExpiringSoon),
		annotated("b", "Mehmet Kaya", "Trafik", day(2025, 2, 14), 7, expiry.StatusExpiringSoon),
		annotated("d", "Zeynep Ak", "Sağlık", day(2025, 2, 10), 3, expiry.StatusExpiringSoon),
		annotated("e", "Ali Veli", "Kasko", day(2025, 1, 30), -8, expiry.StatusExpired),
	}}
	b := &Builder{Policies: q}

	v, err := b.Calendar(context.Background(), "u1", asOf)
	require.NoError(t, err)
	assert.Equal(t, StateReady, v.State)
	require.Len(t, v.Days, 4)

	var dates, labels []string
	for _, d := range v.Days {
		dates = append(dates, d.Date)
		labels = append(labels, d.Label)
	}
	assert.Equal(t, []string{"2025-01-30", "2025-02-10", "2025-02-14", "2025-02-20"}, dates)
	assert.Equal(t, []string{"30.01.2025", "10.02.2025", "14.02.2025", "20.02.2025"}, labels)

	require.Len(t, v.Days[1].Policies, 2)
	assert.Equal(t, "a", v.Days[1].Policies[0].ID)
	assert.Equal(t, "d", v.Days[1].Policies[1].ID)
	assert.Equal(t, "#ef4444", v.Days[0].Policies[0].Color)
	assert.Equal(t, "#2563eb", v.Days[3].Policies[0].Color)
}

func TestCalendar_EmptyAndError(t *testing.T) {
	b := &Builder{Policies: &fakeQuerier{}}
	v, err := b.Calendar(context.Background(), "u1", asOf)
	require.NoError(t, err)
	assert.Equal(t, StateEmpty, v.State)
	assert.Equal(t, MsgCalendarEmpty, v.Message)

	b = &Builder{Policies: &fakeQuerier{err: services.ErrAuthentication}}
	_, err = b.Calendar(context.Background(), "", asOf)
	assert.ErrorIs(t, err, services.ErrAuthentication)
}

func TestTable_PaginationAndCreatePath(t *testing.T) {
	q := &fakeQuerier{
		all: []services.AnnotatedPolicy{
			annotated("a", "Ahmet Yılmaz", "Kasko", day(2025, 2, 10), 3, expiry.StatusExpiringSoon),
		},
		total: 21,
	}
	b := &Builder{Policies: q, CreatePath: "/api/v1/policies"}

	v, err := b.Table(context.Background(), "u1", 2, 20, asOf)
	require.NoError(t, err)
	assert.Equal(t, 2, q.gotPage)
	assert.Equal(t, 20, q.gotPageSize)
	assert.Equal(t, StateReady, v.State)
	assert.Equal(t, int64(21), v.Total)
	assert.Equal(t, 2, v.TotalPages)
	assert.Equal(t, "/api/v1/policies", v.CreatePath)

	q.all, q.total = nil, 0
	v, err = b.Table(context.Background(), "u1", 1, 20, asOf)
	require.NoError(t, err)
	assert.Equal(t, StateEmpty, v.State)
	assert.Equal(t, MsgTableEmpty, v.Message)
	assert.Equal(t, "/api/v1/policies", v.CreatePath, "empty table still offers creation")
}

func TestReminders_Lines(t *testing.T) {
	q := &fakeQuerier{expiring: []services.AnnotatedPolicy{
		annotated("a", "Ahmet Yılmaz", "Kasko", day(2025, 2, 7), 0, expiry.StatusExpiringSoon),
		annotated("b", "Ahmet Yılmaz", "Kasko", day(2025, 2, 10), 3, expiry.StatusExpiringSoon),
		annotated("c", "Mehmet Kaya", "DASK", day(2025, 2, 14), 7, expiry.StatusExpiringSoon),
	}}
	b := &Builder{Policies: q, WindowDays: 10}

	v, err := b.Reminders(context.Background(), "u1", asOf)
	require.NoError(t, err)
	assert.Equal(t, 10, q.gotDays)
	require.Len(t, v.Items, 3)
	assert.Equal(t, "Ahmet Yılmaz – Kasko bugün bitiyor", v.Items[0].Text)
	assert.Equal(t, "Ahmet Yılmaz – Kasko bitiyor (3 gün kaldı)", v.Items[1].Text)
	assert.Equal(t, "Mehmet Kaya – DASK bitiyor (7 gün kaldı)", v.Items[2].Text)

	q.expiring = nil
	v, err = b.Reminders(context.Background(), "u1", asOf)
	require.NoError(t, err)
	assert.Equal(t, StateEmpty, v.State)
	assert.Equal(t, MsgRemindersEmpty, v.Message)
}

func TestDashboard_ZeroDaysMeansToday(t *testing.T) {
	q := &fakeQuerier{}
	b := &Builder{Policies: q, WindowDays: 7}
	v, err := b.Dashboard(context.Background(), "u1", 0, asOf)
	require.NoError(t, err)
	assert.Equal(t, 0, q.gotDays)
	assert.Equal(t, 0, v.WindowDays)
}

func TestBuilder_DefaultWindow(t *testing.T) {
	q := &fakeQuerier{}
	b := &Builder{Policies: q}
	_, err := b.Reminders(context.Background(), "u1", asOf)
	require.NoError(t, err)
	assert.Equal(t, expiry.DefaultWindowDays, q.gotDays)
}
