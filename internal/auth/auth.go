// Package auth signs users in through an external provider and records the
// session in the application context.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/tgienger/synergy/internal/appstate"
	"github.com/tgienger/synergy/internal/models"
)

var (
	ErrStateMismatch      = errors.New("invalid state received")
	ErrNoCode             = errors.New("no code received")
	ErrDenied             = errors.New("sign-in denied")
	ErrInvalidCredentials = errors.New("invalid email address")
	ErrNotConfigured      = errors.New("provider is not configured")
)

// Provider performs one sign-in attempt
type Provider interface {
	Name() string
	SignIn(ctx context.Context) (models.User, error)
}

// FailureTitle is the notification title for a failed provider sign-in
func FailureTitle(p Provider) string {
	return p.Name() + " Sign-In Failed"
}

// Service records successful sign-ins. A failed attempt leaves the stored
// session as it was.
type Service struct {
	state *appstate.Context
	log   *zap.Logger
}

func NewService(state *appstate.Context, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{state: state, log: log}
}

func (s *Service) SignIn(ctx context.Context, p Provider) (models.User, error) {
	u, err := p.SignIn(ctx)
	if err != nil {
		s.log.Warn("sign-in failed", zap.String("provider", p.Name()), zap.Error(err))
		return models.User{}, err
	}
	if err := s.state.SignIn(u); err != nil {
		return models.User{}, fmt.Errorf("save session: %w", err)
	}
	s.log.Info("signed in", zap.String("provider", p.Name()), zap.String("email", u.Email))
	return u, nil
}

func (s *Service) SignOut() error {
	s.log.Info("signed out")
	return s.state.SignOut()
}

// PasswordProvider is the demo email/password provider. There is no
// account backend: any well-formed email is accepted after Delay.
type PasswordProvider struct {
	Email    string
	Password string
	FullName string // set by sign-up; derived from the email otherwise
	Delay    time.Duration
}

func (PasswordProvider) Name() string { return "Email" }

func (p PasswordProvider) SignIn(ctx context.Context) (models.User, error) {
	email := strings.TrimSpace(p.Email)
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" || !strings.Contains(domain, ".") || p.Password == "" {
		return models.User{}, ErrInvalidCredentials
	}
	if p.Delay > 0 {
		t := time.NewTimer(p.Delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return models.User{}, ctx.Err()
		case <-t.C:
		}
	}
	name := strings.TrimSpace(p.FullName)
	if name == "" {
		name = DisplayName(email)
	}
	return models.User{Name: name, Email: email}, nil
}

// DisplayName turns "jane.doe@x.io" into "Jane Doe"
func DisplayName(email string) string {
	local, _, _ := strings.Cut(email, "@")
	parts := strings.FieldsFunc(local, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+' || unicode.IsDigit(r)
	})
	for i, p := range parts {
		rs := []rune(strings.ToLower(p))
		rs[0] = unicode.ToUpper(rs[0])
		parts[i] = string(rs)
	}
	if len(parts) == 0 {
		return email
	}
	return strings.Join(parts, " ")
}
