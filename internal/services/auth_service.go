// Package services – AuthService
//
// This file implements AuthService, which owns agency accounts and sessions.
// Passwords are stored as bcrypt hashes; a successful sign-in yields an HS256
// JWT whose subject is the user id. The HTTP layer parses the token on every
// request and passes the user id down as the policy owner.
package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/tbourn/policy-tracker-backend/internal/domain"
	"github.com/tbourn/policy-tracker-backend/internal/repo"
)

// MinPasswordLen is the shortest accepted password.
const MinPasswordLen = 6

// UserRepo defines the repository contract required by AuthService.
type UserRepo interface {
	CreateUser(ctx context.Context, db *gorm.DB, email, agencyName, passwordHash string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.User, error)
	GetUser(ctx context.Context, db *gorm.DB, id string) (*domain.User, error)
}

// Session is the result of a successful sign-in.
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *domain.User `json:"user"`
}

// AuthService signs agencies up and in and resolves the current user.
type AuthService struct {
	DB   *gorm.DB
	Repo UserRepo

	Secret   []byte
	Issuer   string
	TokenTTL time.Duration

	// BcryptCost defaults to bcrypt.DefaultCost when zero.
	BcryptCost int
	// Now is the clock used for token timestamps; nil means time.Now.
	Now func() time.Time

	validate *validator.Validate
}

// NewAuthService constructs an AuthService signing tokens with secret.
func NewAuthService(db *gorm.DB, r UserRepo, secret []byte, issuer string, ttl time.Duration) *AuthService {
	return &AuthService{
		DB:       db,
		Repo:     r,
		Secret:   secret,
		Issuer:   issuer,
		TokenTTL: ttl,
		validate: validator.New(),
	}
}

// SignUp creates an agency account. The email is trimmed and lower-cased.
func (s *AuthService) SignUp(ctx context.Context, email, password, agencyName string) (*domain.User, error) {
	email = normalizeEmail(email)
	agencyName = normalizeText(agencyName)

	if err := s.checkEmail(email); err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(password) < MinPasswordLen {
		return nil, invalid("password", "must be at least 6 characters")
	}
	if len(password) > 72 {
		return nil, invalid("password", "must be at most 72 bytes")
	}
	if agencyName == "" {
		return nil, invalid("agency_name", "is required")
	}
	if utf8.RuneCountInString(agencyName) > maxTextRunes {
		return nil, invalid("agency_name", "is too long")
	}

	cost := s.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, err
	}

	u, err := s.Repo.CreateUser(ctx, s.DB, email, agencyName, string(hash))
	if errors.Is(err, repo.ErrDuplicate) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, storeErr("create user", err)
	}
	return u, nil
}

// SignIn verifies credentials and issues a session token.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := s.Repo.GetUserByEmail(ctx, s.DB, email)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, storeErr("get user", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	exp := now.Add(s.TokenTTL)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   u.ID,
		Issuer:    s.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	signed, err := tok.SignedString(s.Secret)
	if err != nil {
		return nil, err
	}
	return &Session{Token: signed, ExpiresAt: exp, User: u}, nil
}

// ParseToken validates a session token and returns its user id.
func (s *AuthService) ParseToken(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.Issuer))
	}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.Secret, nil
	}, opts...)
	if err != nil || claims.Subject == "" {
		return "", ErrAuthentication
	}
	return claims.Subject, nil
}

// CurrentUser returns the account for userID, or ErrAuthentication when no
// such account exists.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, ErrAuthentication
	}
	u, err := s.Repo.GetUser(ctx, s.DB, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrAuthentication
	}
	if err != nil {
		return nil, storeErr("get user", err)
	}
	return u, nil
}

func (s *AuthService) checkEmail(email string) error {
	if email == "" {
		return invalid("email", "is required")
	}
	v := s.validate
	if v == nil {
		v = validator.New()
	}
	if err := v.Var(email, "email,max=320"); err != nil {
		return invalid("email", "must be a valid email address")
	}
	return nil
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
