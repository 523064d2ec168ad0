// Package views shapes policy query results for the three screens of the
// agency panel (dashboard, calendar, policy table) and the reminders list.
//
// Builders are thin: every date-derived value (status, days remaining, the
// "expiring soon" window) comes from services.PolicyService, which routes it
// through the expiry calculator. Nothing here does date arithmetic.
//
// A view is either ready (has items) or empty (the query succeeded with no
// rows). A failed query is returned as an error, never as an empty view.
package views

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/tbourn/policy-tracker-backend/internal/expiry"
	"github.com/tbourn/policy-tracker-backend/internal/services"
	"github.com/tbourn/policy-tracker-backend/internal/utils"
)

// State tells clients which body to render.
type State string

const (
	StateReady State = "ready"
	StateEmpty State = "empty"
)

// Messages shown for empty views.
const (
	MsgDashboardEmpty = "Yaklaşan poliçe yok"
	MsgCalendarEmpty  = "Takvimde poliçe yok"
	MsgTableEmpty     = "Henüz poliçe yok"
	MsgRemindersEmpty = "Bekleyen hatırlatma yok"
)

// PolicyQuerier is the slice of services.PolicyService the builders use.
type PolicyQuerier interface {
	ListExpiringWithin(ctx context.Context, ownerID string, days int, asOf time.Time) ([]services.AnnotatedPolicy, error)
	ListAll(ctx context.Context, ownerID string, asOf time.Time) ([]services.AnnotatedPolicy, error)
	ListPage(ctx context.Context, ownerID string, page, pageSize int, asOf time.Time) ([]services.AnnotatedPolicy, int64, error)
}

// PolicyCard is one policy as every view renders it.
type PolicyCard struct {
	ID            string        `json:"id"`
	CustomerName  string        `json:"customer_name"`
	Phone         string        `json:"phone"`
	Company       string        `json:"company"`
	PolicyType    string        `json:"policy_type"`
	StartDate     string        `json:"start_date"`
	EndDate       string        `json:"end_date"`
	EndDateLabel  string        `json:"end_date_label"`
	Status        expiry.Status `json:"status"`
	DaysRemaining int           `json:"days_remaining"`
	Color         string        `json:"color"`
}

// Dashboard is the urgent list: policies due within the window, soonest first.
type Dashboard struct {
	State      State        `json:"state"`
	Message    string       `json:"message,omitempty"`
	AsOf       string       `json:"as_of"`
	WindowDays int          `json:"window_days"`
	Items      []PolicyCard `json:"items"`
}

// CalendarDay groups the policies ending on one date.
type CalendarDay struct {
	Date     string       `json:"date"`
	Label    string       `json:"label"`
	Policies []PolicyCard `json:"policies"`
}

// Calendar is every policy regrouped by end date, earliest date first.
type Calendar struct {
	State   State         `json:"state"`
	Message string        `json:"message,omitempty"`
	Days    []CalendarDay `json:"days"`
}

// PolicyTable is one page of the full policy list, newest first.
type PolicyTable struct {
	State      State        `json:"state"`
	Message    string       `json:"message,omitempty"`
	Items      []PolicyCard `json:"items"`
	Page       int          `json:"page"`
	PageSize   int          `json:"page_size"`
	Total      int64        `json:"total"`
	TotalPages int          `json:"total_pages"`
	// CreatePath is where the "new policy" form submits.
	CreatePath string `json:"create_path"`
}

// Reminder is one line of the reminders list.
type Reminder struct {
	PolicyID      string `json:"policy_id"`
	Text          string `json:"text"`
	DaysRemaining int    `json:"days_remaining"`
	Phone         string `json:"phone"`
}

// Reminders lists the renewal reminders an agent should act on.
type Reminders struct {
	State   State      `json:"state"`
	Message string     `json:"message,omitempty"`
	Items   []Reminder `json:"items"`
}

// Builder assembles views from policy queries.
type Builder struct {
	Policies   PolicyQuerier
	WindowDays int
	// Calc names the calendar day a view is "as of"; its zero value uses UTC.
	Calc expiry.Calculator
	// CreatePath is advertised on the policy table.
	CreatePath string
}

// Dashboard lists the owner's policies due within days (the builder's window
// when days is negative) as of asOf. Zero days means due today.
func (b *Builder) Dashboard(ctx context.Context, ownerID string, days int, asOf time.Time) (*Dashboard, error) {
	if days < 0 {
		days = b.window()
	}
	rows, err := b.Policies.ListExpiringWithin(ctx, ownerID, days, asOf)
	if err != nil {
		return nil, err
	}
	v := &Dashboard{
		State:      StateReady,
		AsOf:       utils.FormatDate(b.Calc.Today(asOf)),
		WindowDays: days,
		Items:      Cards(rows),
	}
	if len(v.Items) == 0 {
		v.State, v.Message = StateEmpty, MsgDashboardEmpty
	}
	return v, nil
}

// Calendar groups all of the owner's policies by end date.
func (b *Builder) Calendar(ctx context.Context, ownerID string, asOf time.Time) (*Calendar, error) {
	rows, err := b.Policies.ListAll(ctx, ownerID, asOf)
	if err != nil {
		return nil, err
	}
	v := &Calendar{State: StateReady, Days: groupByEndDate(rows)}
	if len(v.Days) == 0 {
		v.State, v.Message = StateEmpty, MsgCalendarEmpty
	}
	return v, nil
}

// Table returns one page of the owner's policies.
func (b *Builder) Table(ctx context.Context, ownerID string, page, pageSize int, asOf time.Time) (*PolicyTable, error) {
	rows, total, err := b.Policies.ListPage(ctx, ownerID, page, pageSize, asOf)
	if err != nil {
		return nil, err
	}
	v := &PolicyTable{
		State:      StateReady,
		Items:      Cards(rows),
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: utils.TotalPages(total, pageSize),
		CreatePath: b.CreatePath,
	}
	if total == 0 {
		v.State, v.Message = StateEmpty, MsgTableEmpty
	}
	return v, nil
}

// Reminders renders one line per policy due within the builder's window.
func (b *Builder) Reminders(ctx context.Context, ownerID string, asOf time.Time) (*Reminders, error) {
	rows, err := b.Policies.ListExpiringWithin(ctx, ownerID, b.window(), asOf)
	if err != nil {
		return nil, err
	}
	v := &Reminders{State: StateReady, Items: make([]Reminder, 0, len(rows))}
	for _, p := range rows {
		v.Items = append(v.Items, Reminder{
			PolicyID:      p.ID,
			Text:          ReminderText(p.CustomerName, p.PolicyType, p.DaysRemaining),
			DaysRemaining: p.DaysRemaining,
			Phone:         p.Phone,
		})
	}
	if len(v.Items) == 0 {
		v.State, v.Message = StateEmpty, MsgRemindersEmpty
	}
	return v, nil
}

// ReminderText formats a reminder line, e.g.
// "Ahmet Yılmaz – Kasko bitiyor (3 gün kaldı)".
func ReminderText(customer, policyType string, daysRemaining int) string {
	if daysRemaining == 0 {
		return fmt.Sprintf("%s – %s bugün bitiyor", customer, policyType)
	}
	return fmt.Sprintf("%s – %s bitiyor (%d gün kaldı)", customer, policyType, daysRemaining)
}

func (b *Builder) window() int {
	if b.WindowDays <= 0 {
		return expiry.DefaultWindowDays
	}
	return b.WindowDays
}

// Card renders one annotated policy.
func Card(p services.AnnotatedPolicy) PolicyCard {
	return PolicyCard{
		ID:            p.ID,
		CustomerName:  p.CustomerName,
		Phone:         p.Phone,
		Company:       p.Company,
		PolicyType:    p.PolicyType,
		StartDate:     utils.FormatDate(p.StartDate.UTC()),
		EndDate:       utils.FormatDate(p.EndDate.UTC()),
		EndDateLabel:  utils.FormatDateTR(p.EndDate.UTC()),
		Status:        p.Status,
		DaysRemaining: p.DaysRemaining,
		Color:         statusColor(p.Status),
	}
}

// Cards renders rows in order. The result is never nil.
func Cards(rows []services.AnnotatedPolicy) []PolicyCard {
	out := make([]PolicyCard, 0, len(rows))
	for _, p := range rows {
		out = append(out, Card(p))
	}
	return out
}

// groupByEndDate buckets rows by end date. Buckets are ordered by date; within
// a bucket rows keep their input order.
func groupByEndDate(rows []services.AnnotatedPolicy) []CalendarDay {
	idx := make(map[string]int, len(rows))
	days := make([]CalendarDay, 0)
	for _, p := range rows {
		key := utils.FormatDate(p.EndDate.UTC())
		i, ok := idx[key]
		if !ok {
			i = len(days)
			idx[key] = i
			days = append(days, CalendarDay{Date: key, Label: utils.FormatDateTR(p.EndDate.UTC())})
		}
		days[i].Policies = append(days[i].Policies, Card(p))
	}
	// ISO dates sort lexically.
	sort.SliceStable(days, func(a, b int) bool { return days[a].Date < days[b].Date })
	return days
}

func statusColor(s expiry.Status) string {
	switch s {
	case expiry.StatusExpired:
		return "#ef4444"
	case expiry.StatusExpiringSoon:
		return "#f97316"
	default:
		return "#2563eb"
	}
}
