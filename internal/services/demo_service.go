// Package services – DemoService
//
// This file implements DemoService, which records demo requests submitted
// from the public landing page. Requests are write-only.
package services

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/tbourn/policy-tracker-backend/internal/domain"
)

// DemoRepo defines the repository contract required by DemoService.
type DemoRepo interface {
	CreateDemoRequest(ctx context.Context, db *gorm.DB, r *domain.DemoRequest) error
}

// DemoInput is an anonymous demo request submission.
type DemoInput struct {
	FullName   string `validate:"required,max=255"`
	AgencyName string `validate:"required,max=255"`
	Email      string `validate:"required,email,max=320"`
	Phone      string `validate:"omitempty,max=32"`
}

// DemoService stores demo requests.
type DemoService struct {
	DB   *gorm.DB
	Repo DemoRepo

	validate *validator.Validate
}

// NewDemoService constructs a DemoService.
func NewDemoService(db *gorm.DB, r DemoRepo) *DemoService {
	return &DemoService{DB: db, Repo: r, validate: validator.New()}
}

// Submit validates in and stores it.
func (s *DemoService) Submit(ctx context.Context, in DemoInput) (*domain.DemoRequest, error) {
	in.FullName = normalizeText(in.FullName)
	in.AgencyName = normalizeText(in.AgencyName)
	in.Email = normalizeEmail(in.Email)
	in.Phone = normalizeText(in.Phone)

	v := s.validate
	if v == nil {
		v = validator.New()
	}
	if err := v.Struct(in); err != nil {
		return nil, demoValidationError(err)
	}
	if in.Phone != "" && !phoneRE.MatchString(in.Phone) {
		return nil, invalid("phone", "must be a phone number such as 0532 111 22 33")
	}

	r := &domain.DemoRequest{
		FullName:   in.FullName,
		AgencyName: in.AgencyName,
		Email:      in.Email,
		Phone:      in.Phone,
	}
	if err := s.Repo.CreateDemoRequest(ctx, s.DB, r); err != nil {
		return nil, storeErr("create demo request", err)
	}
	return r, nil
}

// demoValidationError converts the first validator failure into a
// *ValidationError with a snake_case field name.
func demoValidationError(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return invalid("request", err.Error())
	}
	fe := verrs[0]
	field := snake(fe.Field())
	switch fe.Tag() {
	case "required":
		return invalid(field, "is required")
	case "email":
		return invalid(field, "must be a valid email address")
	case "max":
		return invalid(field, "is too long")
	default:
		return invalid(field, "is invalid")
	}
}

func snake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

