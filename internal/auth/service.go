package auth

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Routes the client navigates to after a successful flow.
const (
	RouteOfferPage = "/offer-page"
	RouteLogin     = "/login"
)

// Authenticator is the login/register contract of the backend.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (string, error)
	Register(ctx context.Context, email, password string) error
}

// Outcome tells the client where to go next.
type Outcome struct {
	Route   string   `json:"route"`
	Session *Session `json:"-"`
}

// Service runs the login and register flows and guards authenticated routes.
type Service struct {
	backend  Authenticator
	sessions *Sessions
	logger   *zap.Logger
}

// NewService wires the flows to a backend and a session registry.
func NewService(backend Authenticator, sessions *Sessions, logger *zap.Logger) *Service {
	return &Service{
		backend:  backend,
		sessions: sessions,
		logger:   logger,
	}
}

// Login validates the form, authenticates against the backend and opens a session.
func (s *Service) Login(ctx context.Context, f LoginForm) (Outcome, error) {
	if err := f.Validate().Err(); err != nil {
		return Outcome{}, err
	}

	backendToken, err := s.backend.Login(ctx, f.Username, f.Password)
	if err != nil {
		s.logger.Warn("login failed", zap.String("username", f.Username), zap.Error(err))
		return Outcome{}, fmt.Errorf("login: %w", err)
	}

	session := s.sessions.Issue(f.Username, backendToken, f.Remember)
	s.logger.Info("login successful", zap.String("username", f.Username), zap.Time("expires_at", session.ExpiresAt))
	return Outcome{Route: RouteOfferPage, Session: &session}, nil
}

// Register validates the form and creates the account on the backend.
func (s *Service) Register(ctx context.Context, f *RegisterForm) (Outcome, error) {
	if err := f.Validate().Err(); err != nil {
		return Outcome{}, err
	}

	email := f.Value(FieldEmail)
	if err := s.backend.Register(ctx, email, f.Value(FieldPassword)); err != nil {
		s.logger.Warn("registration failed", zap.String("email", email), zap.Error(err))
		return Outcome{}, fmt.Errorf("register: %w", err)
	}

	s.logger.Info("registration successful", zap.String("email", email))
	return Outcome{Route: RouteLogin}, nil
}

// Authenticated reports whether token belongs to a live session.
func (s *Service) Authenticated(token string) bool {
	_, ok := s.sessions.Lookup(token)
	return ok
}

// Logout ends the session of token.
func (s *Service) Logout(token string) {
	s.sessions.Revoke(token)
}
